// Package renderer rasterizes one flythrough frame in software: sky, stars,
// backdrop, bricks and overlay panels.
package renderer

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"math/rand"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/image/draw"

	"github.com/ivlev/scroll2video/internal/analyzer"
	"github.com/ivlev/scroll2video/internal/overlay"
	"github.com/ivlev/scroll2video/internal/rig"
	"github.com/ivlev/scroll2video/internal/scene"
	"github.com/ivlev/scroll2video/internal/source"
	"github.com/ivlev/scroll2video/internal/system"
)

// FrameState is everything that changes between frames
type FrameState struct {
	Index      int
	Time       float64
	Progress   float64
	Pose       rig.Pose
	Activation []float64
	Overlays   []overlay.State
}

// Assets are loaded before rendering starts
type Assets struct {
	Backdrop image.Image         // nil for none
	QR       map[int]image.Image // QR code per overlay index
}

type star struct {
	dir   mgl64.Vec3
	alpha float64
}

type brick struct {
	center       mgl64.Vec3
	axisX, axisZ mgl64.Vec3 // horizontal brick axes, Y is world up
}

// Renderer holds the immutable per-scene data. Render is safe for
// concurrent use.
type Renderer struct {
	w, h   int
	colors scene.Colors
	proj   mgl64.Mat4
	near   float64
	far    float64

	background *image.RGBA
	stars      []star
	bricks     []brick
	size       mgl64.Vec3
	drop       float64
	panels     []*panel
}

var lightDir = mgl64.Vec3{0.3, 1, 0.5}.Normalize()

// New prepares the background, stars, bricks and overlay panels. Overlays
// anchored "auto" are placed over the quietest corner of the background
// according to scorer; a nil scorer keeps the first corner.
func New(s *scene.Scene, assets Assets, scorer analyzer.Scorer) (*Renderer, error) {
	colors, err := s.Palette.Colors()
	if err != nil {
		return nil, err
	}

	positions, err := s.Bricks.Positions()
	if err != nil {
		return nil, fmt.Errorf("bricks: %w", err)
	}

	r := &Renderer{
		w:      s.Width,
		h:      s.Height,
		colors: colors,
		proj: mgl64.Perspective(
			mgl64.DegToRad(s.Camera.FOV),
			float64(s.Width)/float64(s.Height),
			s.Camera.Near,
			s.Camera.Far,
		),
		near:   s.Camera.Near,
		far:    s.Camera.Far,
		size:   s.Bricks.Size,
		drop:   s.Bricks.Drop,
		bricks: orientBricks(positions),
		stars:  makeStars(s.Stars, s.Seed),
	}

	r.background = source.Placeholder(s.Width, s.Height, colors.SkyTop, colors.SkyBottom)
	if assets.Backdrop != nil && s.Backdrop != nil {
		compositeBackdrop(r.background, assets.Backdrop, s.Backdrop.Opacity)
	}

	if err := r.buildPanels(s.Overlays, assets.QR, scorer); err != nil {
		return nil, err
	}

	return r, nil
}

// Size is the frame size in pixels
func (r *Renderer) Size() (int, int) {
	return r.w, r.h
}

// Background is the static sky and backdrop layer; do not modify it
func (r *Renderer) Background() *image.RGBA {
	return r.background
}

// PanelRect returns where overlay i is drawn when fully revealed
func (r *Renderer) PanelRect(i int) image.Rectangle {
	return r.panels[i].rect
}

// PanelAnchor returns the resolved anchor of overlay i
func (r *Renderer) PanelAnchor(i int) string {
	return r.panels[i].anchor
}

// NewFrame takes a frame buffer from the shared pool
func (r *Renderer) NewFrame() *image.RGBA {
	return system.GetImage(r.w, r.h)
}

// Release returns a frame buffer to the pool
func (r *Renderer) Release(img *image.RGBA) {
	system.PutImage(img)
}

// Render draws the frame described by st into dst, which must be w x h
func (r *Renderer) Render(dst *image.RGBA, st FrameState) {
	copy(dst.Pix, r.background.Pix)

	cam := newCamera(r.proj, st.Pose, r.near, r.w, r.h)
	r.drawStars(dst, cam)
	r.drawBricks(dst, cam, st.Activation)

	for _, o := range st.Overlays {
		if o.Index < len(r.panels) {
			drawPanel(dst, r.panels[o.Index], o.Reveal)
		}
	}
}

func makeStars(n int, seed int64) []star {
	rng := rand.New(rand.NewSource(seed))
	out := make([]star, n)
	for i := range out {
		// Uniform on the sphere
		z := rng.Float64()*2 - 1
		a := rng.Float64() * 2 * math.Pi
		rxy := math.Sqrt(1 - z*z)
		out[i] = star{
			dir:   mgl64.Vec3{rxy * math.Cos(a), z, rxy * math.Sin(a)},
			alpha: 0.3 + 0.7*rng.Float64(),
		}
	}
	return out
}

func orientBricks(positions []mgl64.Vec3) []brick {
	out := make([]brick, len(positions))
	for i, p := range positions {
		prev, next := p, p
		if i > 0 {
			prev = positions[i-1]
		}
		if i+1 < len(positions) {
			next = positions[i+1]
		}

		t := next.Sub(prev)
		t[1] = 0
		axisX := mgl64.Vec3{1, 0, 0}
		if t.Len() > 1e-9 {
			axisX = t.Normalize()
		}
		out[i] = brick{
			center: p,
			axisX:  axisX,
			axisZ:  axisX.Cross(mgl64.Vec3{0, 1, 0}),
		}
	}
	return out
}

func compositeBackdrop(dst *image.RGBA, src image.Image, opacity float64) {
	// Scale to cover the frame, cropping the overflow around the center
	sb := src.Bounds()
	scale := math.Max(float64(dst.Rect.Dx())/float64(sb.Dx()), float64(dst.Rect.Dy())/float64(sb.Dy()))
	cw := int(math.Round(float64(dst.Rect.Dx()) / scale))
	ch := int(math.Round(float64(dst.Rect.Dy()) / scale))
	crop := image.Rect(0, 0, cw, ch).Add(sb.Min).Add(image.Pt((sb.Dx()-cw)/2, (sb.Dy()-ch)/2))

	scaled := image.NewRGBA(dst.Rect)
	draw.CatmullRom.Scale(scaled, scaled.Rect, src, crop, draw.Src, nil)

	mask := image.NewUniform(color.Alpha{A: uint8(clamp01(opacity)*255 + 0.5)})
	draw.DrawMask(dst, dst.Rect, scaled, dst.Rect.Min, mask, image.Point{}, draw.Over)
}

func (r *Renderer) drawStars(dst *image.RGBA, cam camera) {
	for _, s := range r.stars {
		p, ok := cam.projectDir(s.dir)
		if !ok {
			continue
		}
		blendPixel(dst, int(p.X), int(p.Y), r.colors.Star, s.alpha)
	}
}

// face lists corner indices in polygon order and the local normal
var boxFaces = []struct {
	idx    [4]int
	normal [3]float64 // along axisX, up, axisZ
}{
	{[4]int{1, 3, 7, 5}, [3]float64{1, 0, 0}},
	{[4]int{0, 4, 6, 2}, [3]float64{-1, 0, 0}},
	{[4]int{2, 6, 7, 3}, [3]float64{0, 1, 0}},
	{[4]int{0, 1, 5, 4}, [3]float64{0, -1, 0}},
	{[4]int{4, 5, 7, 6}, [3]float64{0, 0, 1}},
	{[4]int{0, 2, 3, 1}, [3]float64{0, 0, -1}},
}

func (r *Renderer) drawBricks(dst *image.RGBA, cam camera, activation []float64) {
	type item struct {
		i    int
		dist float64
	}

	up := mgl64.Vec3{0, 1, 0}
	centers := make([]mgl64.Vec3, len(r.bricks))
	order := make([]item, 0, len(r.bricks))
	for i, b := range r.bricks {
		a := 1.0
		if i < len(activation) {
			a = activation[i]
		}
		centers[i] = b.center.Sub(up.Mul((1 - a) * r.drop))
		order = append(order, item{i, centers[i].Sub(cam.eye).Len()})
	}
	// Painter's order: far to near
	sort.Slice(order, func(a, b int) bool { return order[a].dist > order[b].dist })

	half := r.size.Mul(0.5)
	var corners [8]mgl64.Vec3
	var screen [8]point
	var visible [8]bool

	for _, it := range order {
		if it.dist > r.far {
			continue
		}
		b := r.bricks[it.i]
		c := centers[it.i]

		for k := 0; k < 8; k++ {
			sx, sy, sz := -1.0, -1.0, -1.0
			if k&1 != 0 {
				sx = 1
			}
			if k&2 != 0 {
				sy = 1
			}
			if k&4 != 0 {
				sz = 1
			}
			corners[k] = c.
				Add(b.axisX.Mul(sx * half.X())).
				Add(up.Mul(sy * half.Y())).
				Add(b.axisZ.Mul(sz * half.Z()))
			screen[k], _, visible[k] = cam.project(corners[k])
		}

		a := 1.0
		if it.i < len(activation) {
			a = activation[it.i]
		}
		fog := clamp01((it.dist - 0.1*r.far) / (0.8 * r.far))

		for _, f := range boxFaces {
			n := b.axisX.Mul(f.normal[0]).Add(up.Mul(f.normal[1])).Add(b.axisZ.Mul(f.normal[2]))
			mid := corners[f.idx[0]].Add(corners[f.idx[2]]).Mul(0.5)
			if n.Dot(mid.Sub(cam.eye)) >= 0 {
				continue // back face
			}

			poly := make([]point, 0, 4)
			for _, k := range f.idx {
				if !visible[k] {
					poly = nil
					break
				}
				poly = append(poly, screen[k])
			}
			if poly == nil {
				continue
			}

			light := (0.55 + 0.45*math.Max(0, n.Dot(lightDir))) * (0.45 + 0.55*a)
			fillConvex(dst, poly, shade(r.colors.Brick, light, r.colors.SkyBottom, fog))
		}
	}
}

func (r *Renderer) buildPanels(overlays []scene.Overlay, qr map[int]image.Image, scorer analyzer.Scorer) error {
	frame := image.Rect(0, 0, r.w, r.h)
	scale := max(1, r.h/360)

	r.panels = make([]*panel, len(overlays))
	for i, o := range overlays {
		img := layoutPanel(o, qr[i], r.colors, scale)
		size := img.Rect.Size()

		anchor := o.Anchor
		if anchor == "auto" {
			anchor = autoAnchors[0]
			if scorer != nil {
				candidates := make([]image.Rectangle, len(autoAnchors))
				for k, a := range autoAnchors {
					candidates[k] = anchorRect(a, size, frame)
				}
				best, err := analyzer.PickQuietest(scorer, r.background, candidates)
				if err != nil {
					return fmt.Errorf("overlay %d: %w", i, err)
				}
				anchor = autoAnchors[best]
			}
		}

		r.panels[i] = &panel{img: img, rect: anchorRect(anchor, size, frame), anchor: anchor}
	}
	return nil
}
