package pipeline

import (
	"image"

	"github.com/junsooki/posecast/internal/pose"
)

// Source produces frames. Capture returns a nil image with a nil error when
// no frame is ready yet.
type Source interface {
	Capture() (*image.RGBA, error)
	IsStreaming() bool
}

// Sink consumes annotated frames.
type Sink interface {
	Render(img *image.RGBA) error
	SetStatus(text string)
	IsStreaming() bool
}

// Engine runs pose estimation on a frame, optionally drawing its own
// annotations into the frame.
type Engine interface {
	Process(img *image.RGBA, overlay pose.OverlayFlags) ([]pose.Pose, error)
	NetworkFPS() float64
	PrintProfilerTimes()
}
