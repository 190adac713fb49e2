//go:build !gocv

package output

import "fmt"

func openVideo(path string, fps int) (Sink, error) {
	return nil, fmt.Errorf("%w: %s (rebuild with -tags gocv)", ErrUnsupportedURI, path)
}
