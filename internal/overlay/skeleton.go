package overlay

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/vector"

	"github.com/junsooki/posecast/internal/pose"
)

// Style controls skeleton drawing.
type Style struct {
	LineWidth     float64
	PointRadius   float64
	BoxWidth      float64
	LinkColor     color.RGBA
	KeypointColor color.RGBA
	BoxColor      color.RGBA
}

// DefaultStyle is used by the inference engine for its own annotations.
var DefaultStyle = Style{
	LineWidth:     3,
	PointRadius:   4,
	BoxWidth:      2,
	LinkColor:     color.RGBA{R: 0, G: 175, B: 255, A: 255},
	KeypointColor: color.RGBA{R: 255, G: 200, B: 0, A: 255},
	BoxColor:      color.RGBA{R: 255, G: 255, B: 255, A: 255},
}

// Painter draws pose annotations into RGBA frames.
type Painter struct {
	style Style
	r     *vector.Rasterizer
}

// NewPainter creates a Painter with the given style.
func NewPainter(style Style) *Painter {
	return &Painter{style: style}
}

// DrawPoses draws the parts of each pose selected by flags.
func (p *Painter) DrawPoses(img *image.RGBA, poses []pose.Pose, flags pose.OverlayFlags) {
	if img == nil || flags == pose.OverlayNone {
		return
	}
	for i := range poses {
		ps := &poses[i]
		if flags.Has(pose.OverlayBoxes) {
			p.Rect(img, ps.Left, ps.Top, ps.Right, ps.Bottom, p.style.BoxWidth, p.style.BoxColor)
		}
		if flags.Has(pose.OverlayLinks) {
			for _, l := range ps.Links {
				a, b := ps.Keypoints[l[0]], ps.Keypoints[l[1]]
				p.Line(img, a.X, a.Y, b.X, b.Y, p.style.LineWidth, p.style.LinkColor)
			}
		}
		if flags.Has(pose.OverlayKeypoints) {
			for _, k := range ps.Keypoints {
				p.Circle(img, k.X, k.Y, p.style.PointRadius, p.style.KeypointColor)
			}
		}
	}
}

// Line draws a segment of the given width.
func (p *Painter) Line(img *image.RGBA, x0, y0, x1, y1, width float64, c color.RGBA) {
	dx, dy := x1-x0, y1-y0
	length := math.Hypot(dx, dy)
	if length == 0 {
		p.Circle(img, x0, y0, width/2, c)
		return
	}
	// Unit normal scaled to half the width.
	nx, ny := -dy/length*width/2, dx/length*width/2
	p.fill(img, c, [][2]float64{
		{x0 + nx, y0 + ny},
		{x1 + nx, y1 + ny},
		{x1 - nx, y1 - ny},
		{x0 - nx, y0 - ny},
	})
}

// Circle draws a filled circle.
func (p *Painter) Circle(img *image.RGBA, cx, cy, radius float64, c color.RGBA) {
	const segments = 16
	pts := make([][2]float64, segments)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / segments
		pts[i] = [2]float64{cx + radius*math.Cos(a), cy + radius*math.Sin(a)}
	}
	p.fill(img, c, pts)
}

// Rect draws a rectangle outline.
func (p *Painter) Rect(img *image.RGBA, left, top, right, bottom, width float64, c color.RGBA) {
	p.Line(img, left, top, right, top, width, c)
	p.Line(img, right, top, right, bottom, width, c)
	p.Line(img, right, bottom, left, bottom, width, c)
	p.Line(img, left, bottom, left, top, width, c)
}

func (p *Painter) fill(img *image.RGBA, c color.RGBA, pts [][2]float64) {
	b := img.Bounds()
	if p.r == nil || p.r.Size() != b.Size() {
		p.r = vector.NewRasterizer(b.Dx(), b.Dy())
	} else {
		p.r.Reset(b.Dx(), b.Dy())
	}

	ox, oy := float64(b.Min.X), float64(b.Min.Y)
	local := make([][2]float64, len(pts))
	for i, pt := range pts {
		local[i] = [2]float64{pt[0] - ox, pt[1] - oy}
	}
	// The rasterizer only accepts points inside its own bounds.
	local = clipPolygon(local, float64(b.Dx()), float64(b.Dy()))
	if len(local) < 3 {
		return
	}

	p.r.MoveTo(float32(local[0][0]), float32(local[0][1]))
	for _, pt := range local[1:] {
		p.r.LineTo(float32(pt[0]), float32(pt[1]))
	}
	p.r.ClosePath()
	p.r.Draw(img, b, image.NewUniform(c), image.Point{})
}

// clipPolygon clips a convex polygon to [0,w]x[0,h] (Sutherland-Hodgman).
func clipPolygon(pts [][2]float64, w, h float64) [][2]float64 {
	edges := []struct {
		inside func(p [2]float64) bool
		cross  func(a, b [2]float64) [2]float64
	}{
		{func(p [2]float64) bool { return p[0] >= 0 }, func(a, b [2]float64) [2]float64 { return atX(a, b, 0) }},
		{func(p [2]float64) bool { return p[0] <= w }, func(a, b [2]float64) [2]float64 { return atX(a, b, w) }},
		{func(p [2]float64) bool { return p[1] >= 0 }, func(a, b [2]float64) [2]float64 { return atY(a, b, 0) }},
		{func(p [2]float64) bool { return p[1] <= h }, func(a, b [2]float64) [2]float64 { return atY(a, b, h) }},
	}

	out := pts
	for _, e := range edges {
		if len(out) == 0 {
			break
		}
		in := out
		out = make([][2]float64, 0, len(in)+4)
		prev := in[len(in)-1]
		for _, cur := range in {
			switch {
			case e.inside(cur) && e.inside(prev):
				out = append(out, cur)
			case e.inside(cur):
				out = append(out, e.cross(prev, cur), cur)
			case e.inside(prev):
				out = append(out, e.cross(prev, cur))
			}
			prev = cur
		}
	}
	return out
}

func atX(a, b [2]float64, x float64) [2]float64 {
	t := (x - a[0]) / (b[0] - a[0])
	return [2]float64{x, a[1] + t*(b[1]-a[1])}
}

func atY(a, b [2]float64, y float64) [2]float64 {
	t := (y - a[1]) / (b[1] - a[1])
	return [2]float64{a[0] + t*(b[0]-a[0]), y}
}
