package inference

import (
	"errors"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/junsooki/posecast/internal/pose"
)

// tensor builds a [NumChannels x anchors] output with every score zero.
type tensor struct {
	data    []float32
	anchors int
}

func newTensor(anchors int) *tensor {
	return &tensor{data: make([]float32, NumChannels*anchors), anchors: anchors}
}

func (t *tensor) set(ch, i int, v float32) { t.data[ch*t.anchors+i] = v }

func (t *tensor) box(i int, cx, cy, w, h, score float32) {
	t.set(0, i, cx)
	t.set(1, i, cy)
	t.set(2, i, w)
	t.set(3, i, h)
	t.set(4, i, score)
}

func (t *tensor) keypoint(i, k int, x, y, conf float32) {
	t.set(5+3*k, i, x)
	t.set(5+3*k+1, i, y)
	t.set(5+3*k+2, i, conf)
}

var identity = Letterbox{Scale: 1}

func TestDecodePoses_ThresholdAndKeypoints(t *testing.T) {
	out := newTensor(4)
	out.box(0, 100, 100, 50, 80, 0.9)
	out.keypoint(0, 5, 90, 70, 0.95)  // left_shoulder
	out.keypoint(0, 7, 90, 100, 0.8)  // left_elbow
	out.keypoint(0, 9, 120, 100, 0.3) // left_wrist, below keypoint threshold
	out.box(1, 400, 300, 40, 40, 0.1) // below box threshold

	poses := decodePoses(out.data, out.anchors, DecodeOptions{
		Threshold:         0.15,
		KeypointThreshold: 0.5,
		IoUThreshold:      DefaultIoUThreshold,
	}, identity)

	if len(poses) != 1 {
		t.Fatalf("expected 1 pose, got %d", len(poses))
	}
	p := poses[0]
	if p.Left != 75 || p.Top != 60 || p.Right != 125 || p.Bottom != 140 {
		t.Errorf("unexpected box: %v %v %v %v", p.Left, p.Top, p.Right, p.Bottom)
	}
	if len(p.Keypoints) != 2 {
		t.Fatalf("expected 2 keypoints, got %d", len(p.Keypoints))
	}
	if p.FindKeypoint("left_wrist") != -1 {
		t.Error("expected low-confidence wrist to be dropped")
	}
	elbow := p.Keypoints[p.FindKeypoint("left_elbow")]
	if elbow.X != 90 || elbow.Y != 100 || elbow.ID != 7 {
		t.Errorf("unexpected elbow %+v", elbow)
	}
	if len(p.Links) != 1 || p.Links[0] != [2]int{0, 1} {
		t.Errorf("expected one shoulder-elbow link, got %v", p.Links)
	}
}

func TestDecodePoses_NMSKeepsBestAndOrders(t *testing.T) {
	out := newTensor(3)
	out.box(0, 100, 100, 100, 100, 0.6)
	out.box(1, 105, 105, 100, 100, 0.8) // overlaps anchor 0
	out.box(2, 500, 500, 100, 100, 0.7)

	poses := decodePoses(out.data, out.anchors, DecodeOptions{Threshold: 0.5, KeypointThreshold: 0.5, IoUThreshold: 0.45}, identity)
	if len(poses) != 2 {
		t.Fatalf("expected 2 poses, got %d", len(poses))
	}
	if poses[0].Left != 55 || poses[1].Left != 450 {
		t.Errorf("expected highest score first, got lefts %v, %v", poses[0].Left, poses[1].Left)
	}
	if poses[0].ID != 0 || poses[1].ID != 1 {
		t.Errorf("expected sequential IDs, got %d, %d", poses[0].ID, poses[1].ID)
	}
}

func TestIoU(t *testing.T) {
	a := candidate{left: 0, top: 0, right: 10, bottom: 10}
	b := candidate{left: 5, top: 0, right: 15, bottom: 10}
	if got := iou(a, b); math.Abs(got-50.0/150.0) > 1e-9 {
		t.Errorf("expected 1/3, got %v", got)
	}
	c := candidate{left: 20, top: 20, right: 30, bottom: 30}
	if got := iou(a, c); got != 0 {
		t.Errorf("expected 0 for disjoint boxes, got %v", got)
	}
}

func TestLetterbox(t *testing.T) {
	lb := NewLetterbox(1280, 720)
	if lb.Scale != 0.5 {
		t.Errorf("expected scale 0.5, got %v", lb.Scale)
	}
	if lb.PadX != 0 || lb.PadY != 140 {
		t.Errorf("expected pad (0, 140), got (%v, %v)", lb.PadX, lb.PadY)
	}
	x, y := lb.ToFrame(320, 320)
	if x != 640 || y != 360 {
		t.Errorf("expected model center to map to (640, 360), got (%v, %v)", x, y)
	}
}

func TestLetterboxImageAndTensor(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 320, 160))
	for y := 0; y < 160; y++ {
		for x := 0; x < 320; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 255, A: 255})
		}
	}

	canvas, lb := letterbox(img)
	if canvas.Bounds().Dx() != InputWidth || canvas.Bounds().Dy() != InputHeight {
		t.Fatalf("expected %dx%d canvas, got %v", InputWidth, InputHeight, canvas.Bounds())
	}
	if lb.Scale != 2 || lb.PadY != 160 {
		t.Errorf("unexpected letterbox %+v", lb)
	}

	buf := make([]float32, 3*InputWidth*InputHeight)
	fillTensor(buf, canvas)

	plane := InputWidth * InputHeight
	center := 320*InputWidth + 320
	if buf[center] != 1 || buf[plane+center] != 0 || buf[2*plane+center] != 0 {
		t.Errorf("expected red at center, got %v %v %v", buf[center], buf[plane+center], buf[2*plane+center])
	}
	pad := 10*InputWidth + 320
	want := float32(padValue) / 255
	if buf[pad] != want || buf[plane+pad] != want {
		t.Errorf("expected padding value %v, got %v", want, buf[pad])
	}
}

func TestResolveModel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "yolov8n-pose.onnx")
	if err := os.WriteFile(path, []byte("onnx"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ResolveModel("yolov8n-pose", dir)
	if err != nil {
		t.Fatalf("ResolveModel() failed: %v", err)
	}
	if got != path {
		t.Errorf("expected %s, got %s", path, got)
	}

	got, err = ResolveModel(path, "elsewhere")
	if err != nil || got != path {
		t.Errorf("expected explicit path to be used, got %s, %v", got, err)
	}

	if _, err := ResolveModel("missing", dir); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestProcessingError(t *testing.T) {
	cause := errors.New("device lost")
	err := error(&ProcessingError{Stage: "model inference", Cause: cause})
	if err.Error() != "model inference: device lost" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestTimingsTotal(t *testing.T) {
	tm := Timings{Preprocess: 1, Inference: 2, Postprocess: 3, Overlay: 4}
	if tm.Total() != 10 {
		t.Errorf("expected 10, got %v", tm.Total())
	}
}

func TestNumChannelsMatchesTopology(t *testing.T) {
	if NumChannels != 56 || pose.NumKeypoints != 17 {
		t.Errorf("expected 56 channels for 17 keypoints, got %d for %d", NumChannels, pose.NumKeypoints)
	}
}
