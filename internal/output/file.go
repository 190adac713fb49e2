package output

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/junsooki/posecast/internal/encoder"
)

// FileSink writes every frame as a JPEG. A pattern containing a printf verb
// yields numbered files; a plain name is overwritten each frame.
type FileSink struct {
	mu      sync.Mutex
	pattern string
	enc     encoder.Encoder
	written int
	status  string
	closed  bool
}

func newFileSink(pattern string, enc encoder.Encoder) (*FileSink, error) {
	if dir := filepath.Dir(pattern); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}
	return &FileSink{pattern: pattern, enc: enc}, nil
}

// NewDirSink writes frames as frame_000000.jpg, frame_000001.jpg, ... in dir.
func NewDirSink(dir string, quality int) (*FileSink, error) {
	return newFileSink(filepath.Join(dir, "frame_%06d.jpg"), encoder.NewJPEGEncoder(quality))
}

func (s *FileSink) Render(img *image.RGBA) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("file sink closed")
	}

	data, err := s.enc.Encode(img)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	name := s.pattern
	if strings.Contains(name, "%") {
		name = fmt.Sprintf(s.pattern, s.written)
	}
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	s.written++
	return nil
}

// SetStatus keeps the latest status line; files have nowhere to show it.
func (s *FileSink) SetStatus(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = text
}

// Status returns the latest status line.
func (s *FileSink) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Written returns how many frames have been written.
func (s *FileSink) Written() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.written
}

func (s *FileSink) IsStreaming() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
