//go:build !gocv

package capture

import "fmt"

func openDevice(index int) (Source, error) {
	return nil, fmt.Errorf("%w: camera %d (rebuild with -tags gocv)", ErrUnsupportedURI, index)
}

func openVideo(uri string) (Source, error) {
	return nil, fmt.Errorf("%w: %s (rebuild with -tags gocv)", ErrUnsupportedURI, uri)
}
