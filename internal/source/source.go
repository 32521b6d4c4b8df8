// Package source loads backdrop pages: PDF pages through go-fitz, or plain
// images from a file or directory.
package source

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
)

type Source interface {
	PageCount() int
	GetPageDimensions(index int) (width, height float64, err error)
	RenderPage(index int, dpi int) (image.Image, error)
	Close() error
}

// Open picks the source by extension: .pdf goes to go-fitz, anything else
// is treated as an image file or a directory of images
func Open(path string) (Source, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return NewFitzPDFSource(path)
	}
	return NewImageSource(path)
}

type FitzPDFSource struct {
	doc  *fitz.Document
	path string
}

func NewFitzPDFSource(path string) (*FitzPDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	return &FitzPDFSource{doc: doc, path: path}, nil
}

func (f *FitzPDFSource) PageCount() int {
	return f.doc.NumPage()
}

// GetPageDimensions returns the page size in points (1/72 inch)
func (f *FitzPDFSource) GetPageDimensions(index int) (float64, float64, error) {
	rect, err := f.doc.Bound(index)
	if err != nil {
		return 0, 0, err
	}
	return float64(rect.Dx()), float64(rect.Dy()), nil
}

// RenderPage opens its own document handle: fitz documents are not safe
// for concurrent use
func (f *FitzPDFSource) RenderPage(index int, dpi int) (image.Image, error) {
	workerDoc, err := fitz.New(f.path)
	if err != nil {
		return nil, err
	}
	defer workerDoc.Close()
	return workerDoc.ImageDPI(index, float64(dpi))
}

func (f *FitzPDFSource) Close() error {
	return f.doc.Close()
}

// RenderFit renders page at the lowest DPI that still covers w x h
func RenderFit(src Source, page, w, h int) (image.Image, error) {
	if page < 0 || page >= src.PageCount() {
		return nil, fmt.Errorf("page %d out of range (%d pages)", page, src.PageCount())
	}
	pw, ph, err := src.GetPageDimensions(page)
	if err != nil {
		return nil, err
	}
	return src.RenderPage(page, fitDPI(pw, ph, w, h))
}

func fitDPI(pw, ph float64, w, h int) int {
	if pw <= 0 || ph <= 0 {
		return 72
	}
	scale := math.Max(float64(w)/pw, float64(h)/ph)
	dpi := int(math.Ceil(72 * scale))
	return min(max(dpi, 36), 600)
}

// Placeholder is a vertical gradient used when an asset cannot be loaded
func Placeholder(w, h int, top, bottom color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		f := 0.0
		if h > 1 {
			f = float64(y) / float64(h-1)
		}
		c := color.RGBA{
			R: mix(top.R, bottom.R, f),
			G: mix(top.G, bottom.G, f),
			B: mix(top.B, bottom.B, f),
			A: mix(top.A, bottom.A, f),
		}
		row := img.Pix[y*img.Stride : y*img.Stride+4*w]
		for x := 0; x < w; x++ {
			row[4*x], row[4*x+1], row[4*x+2], row[4*x+3] = c.R, c.G, c.B, c.A
		}
	}
	return img
}

func mix(a, b uint8, f float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*f))
}
