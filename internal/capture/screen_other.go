//go:build !darwin

package capture

import (
	"fmt"
	"image"
)

// ScreenCapturer is only available on macOS.
type ScreenCapturer struct{}

// NewScreenCapturer reports that display capture is unsupported.
func NewScreenCapturer(displayIndex int, fps int) (*ScreenCapturer, error) {
	return nil, fmt.Errorf("%w: screen capture requires macOS", ErrUnsupportedURI)
}

func (c *ScreenCapturer) Capture() (*image.RGBA, error) { return nil, nil }
func (c *ScreenCapturer) IsStreaming() bool             { return false }
func (c *ScreenCapturer) Close() error                  { return nil }
