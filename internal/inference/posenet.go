package inference

import (
	"fmt"
	"image"
	"log"
	"time"

	"github.com/junsooki/posecast/internal/overlay"
	"github.com/junsooki/posecast/internal/pose"
)

// Timings holds the duration of each stage of the last Process call.
type Timings struct {
	Preprocess  time.Duration
	Inference   time.Duration
	Postprocess time.Duration
	Overlay     time.Duration
}

// Total returns the sum of all stages.
func (t Timings) Total() time.Duration {
	return t.Preprocess + t.Inference + t.Postprocess + t.Overlay
}

// Options configures a PoseNet.
type Options struct {
	Network           string
	ModelPath         string
	Threshold         float32
	KeypointThreshold float32
	// Profile prints stage timings on every PrintProfilerTimes call.
	Profile bool
}

// PoseNet runs a YOLO-pose style ONNX model.
type PoseNet struct {
	opts    Options
	model   *modelSession
	painter *overlay.Painter
	timings Timings
}

// NewPoseNet loads the model at opts.ModelPath. InitEnvironment must have
// been called.
func NewPoseNet(opts Options) (*PoseNet, error) {
	if opts.KeypointThreshold == 0 {
		opts.KeypointThreshold = DefaultKeypointThreshold
	}
	model, err := newModelSession(opts.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", opts.Network, err)
	}
	return &PoseNet{
		opts:    opts,
		model:   model,
		painter: overlay.NewPainter(overlay.DefaultStyle),
	}, nil
}

// Process estimates poses in img and draws the annotations selected by flags
// into it.
func (n *PoseNet) Process(img *image.RGBA, flags pose.OverlayFlags) ([]pose.Pose, error) {
	var t Timings

	start := time.Now()
	input, lb := letterbox(img)
	fillTensor(n.model.input.GetData(), input)
	t.Preprocess = time.Since(start)

	start = time.Now()
	if err := n.model.session.Run(); err != nil {
		return nil, &ProcessingError{Stage: "model inference", Cause: err}
	}
	t.Inference = time.Since(start)

	start = time.Now()
	out := n.model.output.GetData()
	if len(out) != NumChannels*NumAnchors {
		return nil, &ProcessingError{
			Stage: "process predictions",
			Cause: fmt.Errorf("unexpected output length: got %d, want %d", len(out), NumChannels*NumAnchors),
		}
	}
	poses := decodePoses(out, NumAnchors, DecodeOptions{
		Threshold:         n.opts.Threshold,
		KeypointThreshold: n.opts.KeypointThreshold,
		IoUThreshold:      DefaultIoUThreshold,
	}, lb)
	t.Postprocess = time.Since(start)

	start = time.Now()
	n.painter.DrawPoses(img, poses, flags)
	t.Overlay = time.Since(start)

	n.timings = t
	return poses, nil
}

// NetworkFPS returns the model throughput implied by the last inference.
func (n *PoseNet) NetworkFPS() float64 {
	if n.timings.Inference <= 0 {
		return 0
	}
	return float64(time.Second) / float64(n.timings.Inference)
}

// Timings returns the stage durations of the last Process call.
func (n *PoseNet) Timings() Timings {
	return n.timings
}

// PrintProfilerTimes logs the last stage timings when profiling is enabled.
func (n *PoseNet) PrintProfilerTimes() {
	if !n.opts.Profile {
		return
	}
	t := n.timings
	log.Printf("[profile] %s\n"+
		"\tPreprocess:  %v\n"+
		"\tInference:   %v\n"+
		"\tPostprocess: %v\n"+
		"\tOverlay:     %v\n"+
		"\tTotal:       %v",
		n.opts.Network,
		t.Preprocess,
		t.Inference,
		t.Postprocess,
		t.Overlay,
		t.Total())
}

// Close releases the model session.
func (n *PoseNet) Close() {
	if n.model != nil {
		n.model.destroy()
		n.model = nil
	}
}
