package system

import (
	"image"
	"sync"
)

// ImagePool переиспользует кадровые буферы *image.RGBA одного размера,
// чтобы растеризация тысяч кадров не нагружала GC.
type ImagePool struct {
	mu    sync.Mutex
	pools map[image.Point]*sync.Pool
}

// NewImagePool creates an empty pool
func NewImagePool() *ImagePool {
	return &ImagePool{pools: make(map[image.Point]*sync.Pool)}
}

var frames = NewImagePool()

// GetImage берет буфер w x h из общего пула
func GetImage(w, h int) *image.RGBA {
	return frames.Get(w, h)
}

// PutImage возвращает буфер в общий пул
func PutImage(img *image.RGBA) {
	frames.Put(img)
}

func (p *ImagePool) pool(size image.Point) *sync.Pool {
	p.mu.Lock()
	defer p.mu.Unlock()

	pl, ok := p.pools[size]
	if !ok {
		pl = &sync.Pool{
			New: func() any {
				return image.NewRGBA(image.Rectangle{Max: size})
			},
		}
		p.pools[size] = pl
	}
	return pl
}

// Get returns a w x h buffer anchored at the origin. Its contents are
// undefined: callers overwrite every pixel.
func (p *ImagePool) Get(w, h int) *image.RGBA {
	return p.pool(image.Point{X: w, Y: h}).Get().(*image.RGBA)
}

// Put recycles img. Sub-images and foreign strides are dropped.
func (p *ImagePool) Put(img *image.RGBA) {
	if img == nil || img.Rect.Min != (image.Point{}) || img.Stride != 4*img.Rect.Dx() {
		return
	}
	p.pool(img.Rect.Max).Put(img)
}
