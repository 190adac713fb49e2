package display

import (
	"image"
	"math"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
)

// EbitenDisplay shows frames in a desktop window using Ebitengine.
type EbitenDisplay struct {
	mu          sync.Mutex
	frame       *image.RGBA
	title       string
	titleDirty  bool
	closed      bool
	ebitenImage *ebiten.Image

	width  int
	height int
}

// NewEbitenDisplay creates a display whose window starts at width x height.
func NewEbitenDisplay(title string, width, height int) *EbitenDisplay {
	return &EbitenDisplay{
		title:  title,
		width:  width,
		height: height,
	}
}

// SetFrame updates the displayed frame. Safe to call from any goroutine.
func (d *EbitenDisplay) SetFrame(img *image.RGBA) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frame = img
}

// SetTitle updates the window title on the next update.
func (d *EbitenDisplay) SetTitle(title string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.title = title
	d.titleDirty = true
}

// Closed reports whether the window has been closed.
func (d *EbitenDisplay) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// Close asks the window to close on its next update.
func (d *EbitenDisplay) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
}

// Run starts the Ebitengine game loop and blocks until the window closes.
// Must be called from the main goroutine.
func (d *EbitenDisplay) Run() error {
	ebiten.SetWindowSize(d.width, d.height)
	ebiten.SetWindowTitle(d.title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	err := ebiten.RunGame(d)

	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	if err == ebiten.Termination {
		return nil
	}
	return err
}

// --- ebiten.Game interface ---

func (d *EbitenDisplay) Update() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ebiten.Termination
	}
	if d.titleDirty {
		ebiten.SetWindowTitle(d.title)
		d.titleDirty = false
	}
	return nil
}

func (d *EbitenDisplay) Draw(screen *ebiten.Image) {
	d.mu.Lock()
	frame := d.frame
	d.mu.Unlock()

	if frame == nil {
		return
	}

	if d.ebitenImage == nil ||
		d.ebitenImage.Bounds().Dx() != frame.Bounds().Dx() ||
		d.ebitenImage.Bounds().Dy() != frame.Bounds().Dy() {
		d.ebitenImage = ebiten.NewImage(frame.Bounds().Dx(), frame.Bounds().Dy())
	}
	d.ebitenImage.WritePixels(frame.Pix)

	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	fw, fh := float64(frame.Bounds().Dx()), float64(frame.Bounds().Dy())
	scale, offsetX, offsetY := aspectFitTransform(float64(sw), float64(sh), fw, fh)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(offsetX, offsetY)
	screen.DrawImage(d.ebitenImage, op)
}

func (d *EbitenDisplay) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// aspectFitTransform returns scale and offsets to fit frame into view with letterboxing.
func aspectFitTransform(viewW, viewH, frameW, frameH float64) (scale, offsetX, offsetY float64) {
	scale = math.Min(viewW/frameW, viewH/frameH)
	offsetX = (viewW - frameW*scale) / 2
	offsetY = (viewH - frameH*scale) / 2
	return
}
