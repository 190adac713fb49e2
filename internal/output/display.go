package output

import (
	"image"

	"github.com/junsooki/posecast/internal/display"
)

// DisplaySink shows frames in a desktop window. The window's Run method must
// be called on the main goroutine.
type DisplaySink struct {
	window *display.EbitenDisplay
}

// NewDisplaySink creates a window sink. Zero sizes default to 1280x720.
func NewDisplaySink(title string, width, height int) *DisplaySink {
	if width <= 0 || height <= 0 {
		width, height = 1280, 720
	}
	return &DisplaySink{window: display.NewEbitenDisplay(title, width, height)}
}

// Window returns the underlying window for the caller to run.
func (s *DisplaySink) Window() *display.EbitenDisplay {
	return s.window
}

func (s *DisplaySink) Render(img *image.RGBA) error {
	s.window.SetFrame(img)
	return nil
}

// SetStatus shows text as the window title.
func (s *DisplaySink) SetStatus(text string) {
	s.window.SetTitle(text)
}

// IsStreaming reports false once the window is closed.
func (s *DisplaySink) IsStreaming() bool {
	return !s.window.Closed()
}

func (s *DisplaySink) Close() error {
	s.window.Close()
	return nil
}
