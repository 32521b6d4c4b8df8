package analyzer

import (
	"image"
	"image/color"
	"math"
)

// ContrastDetector finds blocks of detail with Sobel edges, dilation and
// connected components. As a Scorer it rates a candidate by how much of it
// is covered by detected blocks.
type ContrastDetector struct {
	MinBlockArea  int     // Minimum area in pixels²
	EdgeThreshold float64 // Gradient magnitude threshold
}

// NewContrastDetector creates a new contrast-based detector with default settings
func NewContrastDetector() *ContrastDetector {
	return &ContrastDetector{
		MinBlockArea:  500,  // ~22x22 pixels minimum
		EdgeThreshold: 30.0, // Moderate sensitivity
	}
}

// Detect finds regions of detail using edge detection and morphology
func (d *ContrastDetector) Detect(img image.Image) ([]Block, error) {
	gray := toGrayscale(img)
	edges := sobelEdgeDetection(gray, d.EdgeThreshold)

	// Connect nearby edges into solid regions
	dilated := dilate(edges, 5, 2)

	var blocks []Block
	for _, rect := range findContours(dilated) {
		if rect.Dx()*rect.Dy() >= d.MinBlockArea {
			blocks = append(blocks, Block{Rect: rect, Confidence: 0.7})
		}
	}

	return blocks, nil
}

// Scores returns the covered fraction of each candidate
func (d *ContrastDetector) Scores(img image.Image, candidates []image.Rectangle) ([]float64, error) {
	blocks, err := d.Detect(img)
	if err != nil {
		return nil, err
	}

	scores := make([]float64, len(candidates))
	for i, c := range candidates {
		area := c.Dx() * c.Dy()
		if area == 0 {
			scores[i] = math.Inf(1)
			continue
		}
		covered := 0
		for _, b := range blocks {
			in := b.Rect.Intersect(c)
			covered += in.Dx() * in.Dy()
		}
		scores[i] = float64(covered) / float64(area)
	}
	return scores, nil
}

// toGrayscale converts an image to grayscale
func toGrayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)

	if rgba, ok := img.(*image.RGBA); ok {
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				c := rgba.RGBAAt(x, y)
				gray.SetGray(x, y, color.GrayModel.Convert(c).(color.Gray))
			}
		}
		return gray
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x, y, color.GrayModel.Convert(img.At(x, y)))
		}
	}

	return gray
}

// Sobel kernels
var (
	sobelX = [3][3]int{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY = [3][3]int{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}
)

// sobelEdgeDetection marks pixels whose gradient magnitude exceeds threshold
func sobelEdgeDetection(gray *image.Gray, threshold float64) *image.Gray {
	bounds := gray.Bounds()
	edges := image.NewGray(bounds)

	for y := bounds.Min.Y + 1; y < bounds.Max.Y-1; y++ {
		for x := bounds.Min.X + 1; x < bounds.Max.X-1; x++ {
			var sumX, sumY float64

			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					pixel := float64(gray.GrayAt(x+kx, y+ky).Y)
					sumX += pixel * float64(sobelX[ky+1][kx+1])
					sumY += pixel * float64(sobelY[ky+1][kx+1])
				}
			}

			if math.Hypot(sumX, sumY) > threshold {
				edges.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}

	return edges
}

// dilate performs morphological dilation to connect nearby edges
func dilate(img *image.Gray, kernelSize, iterations int) *image.Gray {
	bounds := img.Bounds()
	result := image.NewGray(bounds)
	copy(result.Pix, img.Pix)

	half := kernelSize / 2

	for iter := 0; iter < iterations; iter++ {
		temp := image.NewGray(bounds)

		for y := bounds.Min.Y + half; y < bounds.Max.Y-half; y++ {
			for x := bounds.Min.X + half; x < bounds.Max.X-half; x++ {
				maxVal := uint8(0)
				for ky := -half; ky <= half && maxVal < 255; ky++ {
					for kx := -half; kx <= half; kx++ {
						if val := result.GrayAt(x+kx, y+ky).Y; val > maxVal {
							maxVal = val
						}
					}
				}
				temp.SetGray(x, y, color.Gray{Y: maxVal})
			}
		}

		result = temp
	}

	return result
}

// findContours finds bounding rectangles of connected white regions
func findContours(img *image.Gray) []image.Rectangle {
	bounds := img.Bounds()
	visited := make([]bool, bounds.Dx()*bounds.Dy())

	var contours []image.Rectangle
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			idx := (y-bounds.Min.Y)*bounds.Dx() + (x - bounds.Min.X)
			if img.GrayAt(x, y).Y > 128 && !visited[idx] {
				contours = append(contours, floodFill(img, visited, x, y))
			}
		}
	}

	return contours
}

// floodFill marks one 4-connected component and returns its bounding rectangle
func floodFill(img *image.Gray, visited []bool, startX, startY int) image.Rectangle {
	bounds := img.Bounds()
	r := image.Rect(startX, startY, startX+1, startY+1)

	stack := []image.Point{{X: startX, Y: startY}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !p.In(bounds) {
			continue
		}
		idx := (p.Y-bounds.Min.Y)*bounds.Dx() + (p.X - bounds.Min.X)
		if visited[idx] || img.GrayAt(p.X, p.Y).Y <= 128 {
			continue
		}
		visited[idx] = true

		r = r.Union(image.Rect(p.X, p.Y, p.X+1, p.Y+1))

		stack = append(stack,
			image.Point{X: p.X + 1, Y: p.Y},
			image.Point{X: p.X - 1, Y: p.Y},
			image.Point{X: p.X, Y: p.Y + 1},
			image.Point{X: p.X, Y: p.Y - 1},
		)
	}

	return r
}
