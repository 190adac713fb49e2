//go:build gocv

package capture

import (
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"

	"github.com/junsooki/posecast/internal/decoder"
)

// maxReadFailures is how many consecutive failed reads end a live stream.
const maxReadFailures = 100

// VideoSource reads frames through OpenCV from a camera, network stream or
// video file.
type VideoSource struct {
	mu        sync.Mutex
	vc        *gocv.VideoCapture
	mat       gocv.Mat
	live      bool
	failures  int
	streaming bool
}

func newVideoSource(device interface{}, live bool) (*VideoSource, error) {
	vc, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("open video capture %v: %w", device, err)
	}
	return &VideoSource{
		vc:        vc,
		mat:       gocv.NewMat(),
		live:      live,
		streaming: true,
	}, nil
}

func openDevice(index int) (Source, error) {
	vs, err := newVideoSource(index, true)
	if err != nil {
		return nil, err
	}
	return vs, nil
}

func openVideo(uri string) (Source, error) {
	vs, err := newVideoSource(uri, !isVideoFile(uri))
	if err != nil {
		return nil, err
	}
	return vs, nil
}

// Capture reads the next frame. A failed read ends a file immediately; live
// sources tolerate maxReadFailures consecutive failures first.
func (v *VideoSource) Capture() (*image.RGBA, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.streaming {
		return nil, nil
	}
	if ok := v.vc.Read(&v.mat); !ok || v.mat.Empty() {
		v.failures++
		if !v.live || v.failures >= maxReadFailures {
			v.streaming = false
		}
		return nil, nil
	}
	v.failures = 0

	img, err := v.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert frame: %w", err)
	}
	return decoder.ToRGBA(img), nil
}

func (v *VideoSource) IsStreaming() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.streaming
}

func (v *VideoSource) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.streaming = false
	v.mat.Close()
	return v.vc.Close()
}
