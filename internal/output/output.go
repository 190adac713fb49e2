package output

import (
	"errors"
	"fmt"
	"image"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/junsooki/posecast/internal/encoder"
)

// ErrUnsupportedURI is returned for outputs no sink can open.
var ErrUnsupportedURI = errors.New("unsupported output URI")

// Sink consumes annotated frames.
type Sink interface {
	Render(img *image.RGBA) error
	SetStatus(text string)
	IsStreaming() bool
	Close() error
}

// Options configures sinks opened by URI.
type Options struct {
	Quality      int    // JPEG quality for file and WebRTC sinks
	FPS          int    // frame rate for video files
	Title        string // initial window title
	Width        int    // initial window size
	Height       int
	SignalingURL string // WebRTC signaling server
	PublisherID  string // WebRTC publisher ID
}

// Open returns a sink for uri. An empty uri opens a display window.
//
// Supported forms: display://; webrtc:// (optionally webrtc://<publisher-id>);
// file://path or a bare path naming a directory, an image file or a
// printf-style image pattern; and, when built with the gocv tag, video files.
func Open(uri string, opts Options) (Sink, error) {
	if uri == "" {
		uri = "display://"
	}

	u, err := url.Parse(uri)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		return openPath(uri, opts)
	}

	switch u.Scheme {
	case "display":
		return NewDisplaySink(opts.Title, opts.Width, opts.Height), nil
	case "webrtc":
		if u.Host != "" {
			opts.PublisherID = u.Host
		}
		ws, err := NewWebRTCSink(opts.SignalingURL, opts.PublisherID, opts.Quality)
		if err != nil {
			return nil, err
		}
		return ws, nil
	case "file":
		return openPath(u.Host+u.Path, opts)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedURI, uri)
}

func openPath(path string, opts Options) (Sink, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrUnsupportedURI)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".jpg", ".jpeg":
		return newFileSink(path, encoder.NewJPEGEncoder(opts.Quality))
	case ".mp4", ".avi", ".mkv", ".mov":
		return openVideo(path, opts.FPS)
	case "":
		return NewDirSink(path, opts.Quality)
	default:
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return NewDirSink(path, opts.Quality)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedURI, path)
}
