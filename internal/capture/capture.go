package capture

import (
	"errors"
	"fmt"
	"image"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ErrUnsupportedURI is returned for inputs no source can open.
var ErrUnsupportedURI = errors.New("unsupported input URI")

// Frame represents a captured frame.
type Frame struct {
	Image     *image.RGBA
	Timestamp time.Time
}

// Source produces frames on demand. Capture returns a nil image with a nil
// error when no frame is ready yet.
type Source interface {
	Capture() (*image.RGBA, error)
	IsStreaming() bool
	Close() error
}

// Options configures sources opened by URI.
type Options struct {
	FPS  int
	Loop bool // restart image sequences at the end
}

// Open returns a source for uri. An empty uri captures the primary display.
//
// Supported forms: file://path or a bare path to an image or directory of
// images; screen://N; and, when built with the gocv tag, camera devices
// (/dev/videoN, v4l2://N, csi://N), network streams and video files.
func Open(uri string, opts Options) (Source, error) {
	if uri == "" {
		uri = "screen://0"
	}

	u, err := url.Parse(uri)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		return openPath(uri, opts)
	}

	switch u.Scheme {
	case "file":
		return openPath(u.Host+u.Path, opts)
	case "screen", "display":
		idx, err := deviceIndex(u)
		if err != nil {
			return nil, err
		}
		sc, err := NewScreenCapturer(idx, opts.FPS)
		if err != nil {
			return nil, err
		}
		return sc, nil
	case "v4l2", "csi":
		idx, err := deviceIndex(u)
		if err != nil {
			return nil, err
		}
		return openDevice(idx)
	case "rtsp", "rtmp", "http", "https":
		return openVideo(uri)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedURI, uri)
}

func openPath(path string, opts Options) (Source, error) {
	if strings.HasPrefix(path, "/dev/video") {
		idx, err := strconv.Atoi(strings.TrimPrefix(path, "/dev/video"))
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedURI, path)
		}
		return openDevice(idx)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	if info.IsDir() || isImageFile(path) {
		seq, err := NewImageSequence(path, opts.Loop)
		if err != nil {
			return nil, err
		}
		return seq, nil
	}
	if isVideoFile(path) {
		return openVideo(path)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedURI, path)
}

func deviceIndex(u *url.URL) (int, error) {
	s := u.Host + strings.TrimPrefix(u.Path, "/")
	s = strings.TrimPrefix(s, "dev/video")
	if s == "" {
		return 0, nil
	}
	idx, err := strconv.Atoi(s)
	if err != nil || idx < 0 {
		return 0, fmt.Errorf("invalid device index %q", s)
	}
	return idx, nil
}

func isImageFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

func isVideoFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".avi", ".mkv", ".mov", ".webm", ".h264":
		return true
	}
	return false
}
