package inference

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Letterbox maps between frame and model input coordinates.
type Letterbox struct {
	Scale float64
	PadX  float64
	PadY  float64
}

// NewLetterbox fits a w x h frame into the model input preserving aspect ratio.
func NewLetterbox(w, h int) Letterbox {
	scale := min(float64(InputWidth)/float64(w), float64(InputHeight)/float64(h))
	return Letterbox{
		Scale: scale,
		PadX:  (float64(InputWidth) - float64(w)*scale) / 2,
		PadY:  (float64(InputHeight) - float64(h)*scale) / 2,
	}
}

// ToFrame converts a model input coordinate to frame pixels.
func (l Letterbox) ToFrame(x, y float64) (float64, float64) {
	return (x - l.PadX) / l.Scale, (y - l.PadY) / l.Scale
}

// letterbox resizes img into a padded model-sized canvas.
func letterbox(img image.Image) (*image.NRGBA, Letterbox) {
	b := img.Bounds()
	lb := NewLetterbox(b.Dx(), b.Dy())

	w := int(float64(b.Dx())*lb.Scale + 0.5)
	h := int(float64(b.Dy())*lb.Scale + 0.5)
	resized := imaging.Resize(img, w, h, imaging.Linear)

	canvas := imaging.New(InputWidth, InputHeight, color.NRGBA{R: padValue, G: padValue, B: padValue, A: 255})
	canvas = imaging.Paste(canvas, resized, image.Pt(int(lb.PadX), int(lb.PadY)))
	return canvas, lb
}

// fillTensor writes pic into dst as planar RGB scaled to [0, 1].
func fillTensor(dst []float32, pic *image.NRGBA) {
	channelSize := InputWidth * InputHeight
	for y := 0; y < InputHeight; y++ {
		row := pic.Pix[y*pic.Stride:]
		offset := y * InputWidth
		for x := 0; x < InputWidth; x++ {
			i := offset + x
			p := row[x*4 : x*4+3]
			dst[i] = float32(p[0]) / 255.0
			dst[channelSize+i] = float32(p[1]) / 255.0
			dst[channelSize*2+i] = float32(p[2]) / 255.0
		}
	}
}
