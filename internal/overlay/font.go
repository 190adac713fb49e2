package overlay

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// DefaultScale enlarges the 7x13 bitmap face to a size readable on video.
const DefaultScale = 2

const padding = 2

// Font draws text labels over a filled background box.
type Font struct {
	face  font.Face
	scale int
}

// NewFont creates a Font using the basic bitmap face enlarged scale times.
func NewFont(scale int) *Font {
	if scale < 1 {
		scale = 1
	}
	return &Font{face: basicfont.Face7x13, scale: scale}
}

// Measure returns the size in pixels of text including the background box.
func (f *Font) Measure(text string) image.Point {
	m := f.face.Metrics()
	w := font.MeasureString(f.face, text).Ceil() + 2*padding
	h := (m.Ascent + m.Descent).Ceil() + 2*padding
	return image.Pt(w*f.scale, h*f.scale)
}

// OverlayText draws text with its top-left corner at (x, y). The label is
// clipped to width x height and to the image bounds.
func (f *Font) OverlayText(img *image.RGBA, width, height int, text string, x, y int, fg, bg color.RGBA) {
	if img == nil || text == "" {
		return
	}

	size := f.Measure(text)
	label := image.NewRGBA(image.Rect(0, 0, size.X/f.scale, size.Y/f.scale))
	d := &font.Drawer{
		Dst:  label,
		Src:  image.NewUniform(fg),
		Face: f.face,
		Dot:  fixed.P(padding, padding+f.face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)

	dst := image.Rectangle{Min: image.Pt(x, y), Max: image.Pt(x+size.X, y+size.Y)}
	clip := image.Rect(0, 0, width, height).Intersect(img.Bounds())
	if dst.Intersect(clip).Empty() {
		return
	}

	draw.Draw(img, dst.Intersect(clip), image.NewUniform(bg), image.Point{}, draw.Over)
	sub := img.SubImage(clip).(*image.RGBA)
	xdraw.NearestNeighbor.Scale(sub, dst, label, label.Bounds(), xdraw.Over, nil)
}
