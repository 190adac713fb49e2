//go:build gocv

package output

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"sync"

	"gocv.io/x/gocv"
)

// VideoSink encodes frames into a video file through OpenCV. The writer is
// opened on the first frame, once the frame size is known.
type VideoSink struct {
	mu     sync.Mutex
	path   string
	fps    float64
	writer *gocv.VideoWriter
	size   image.Point
	status string
	closed bool
}

func openVideo(path string, fps int) (Sink, error) {
	if fps <= 0 {
		fps = 30
	}
	return &VideoSink{path: path, fps: float64(fps)}, nil
}

func fourcc(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".avi":
		return "MJPG"
	case ".mkv":
		return "X264"
	}
	return "mp4v"
}

func (v *VideoSink) Render(img *image.RGBA) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return fmt.Errorf("video sink closed")
	}

	size := img.Bounds().Size()
	if v.writer == nil {
		w, err := gocv.VideoWriterFile(v.path, fourcc(v.path), v.fps, size.X, size.Y, true)
		if err != nil {
			return fmt.Errorf("open video writer %s: %w", v.path, err)
		}
		v.writer = w
		v.size = size
	}
	if size != v.size {
		return fmt.Errorf("frame size changed from %v to %v", v.size, size)
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return fmt.Errorf("convert frame: %w", err)
	}
	defer mat.Close()
	return v.writer.Write(mat)
}

func (v *VideoSink) SetStatus(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.status = text
}

func (v *VideoSink) IsStreaming() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return !v.closed
}

func (v *VideoSink) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	if v.writer == nil {
		return nil
	}
	return v.writer.Close()
}
