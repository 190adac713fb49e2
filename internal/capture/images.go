package capture

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/junsooki/posecast/internal/decoder"
)

// ImageSequence replays still images from a file or directory in name order.
type ImageSequence struct {
	mu     sync.Mutex
	files  []string
	next   int
	loop   bool
	dec    *decoder.ImageDecoder
	closed bool
}

// NewImageSequence opens path, which is either an image file or a directory
// containing .jpg, .jpeg or .png files.
func NewImageSequence(path string, loop bool) (*ImageSequence, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open image sequence: %w", err)
	}

	var files []string
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("read image directory: %w", err)
		}
		for _, e := range entries {
			if !e.IsDir() && isImageFile(e.Name()) {
				files = append(files, filepath.Join(path, e.Name()))
			}
		}
		sort.Strings(files)
	} else {
		files = []string{path}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no images found in %s", path)
	}

	return &ImageSequence{
		files: files,
		loop:  loop,
		dec:   decoder.NewImageDecoder(),
	}, nil
}

// Len returns the number of images in the sequence.
func (s *ImageSequence) Len() int {
	return len(s.files)
}

// Capture decodes the next image. It returns nil once the sequence has
// ended.
func (s *ImageSequence) Capture() (*image.RGBA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, nil
	}
	if s.next >= len(s.files) {
		if !s.loop {
			return nil, nil
		}
		s.next = 0
	}

	path := s.files[s.next]
	s.next++

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	img, err := s.dec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// IsStreaming reports whether more images remain.
func (s *ImageSequence) IsStreaming() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && (s.loop || s.next < len(s.files))
}

func (s *ImageSequence) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
