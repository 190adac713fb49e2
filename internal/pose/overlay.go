package pose

import (
	"fmt"
	"strings"
)

// OverlayFlags selects which annotations the inference engine burns into a frame.
type OverlayFlags uint8

const (
	OverlayLinks OverlayFlags = 1 << iota
	OverlayKeypoints
	OverlayBoxes

	OverlayNone OverlayFlags = 0
	// OverlayDefault matches "links,keypoints".
	OverlayDefault = OverlayLinks | OverlayKeypoints
)

// ParseOverlay parses a comma-separated list of links, keypoints, boxes and none.
func ParseOverlay(s string) (OverlayFlags, error) {
	var flags OverlayFlags
	for _, tok := range strings.Split(s, ",") {
		switch strings.ToLower(strings.TrimSpace(tok)) {
		case "links":
			flags |= OverlayLinks
		case "keypoints":
			flags |= OverlayKeypoints
		case "boxes", "box":
			flags |= OverlayBoxes
		case "none", "":
		default:
			return 0, fmt.Errorf("invalid overlay flag %q (valid: links, keypoints, boxes, none)", tok)
		}
	}
	return flags, nil
}

// Has reports whether all bits of f are set.
func (o OverlayFlags) Has(f OverlayFlags) bool {
	return f != 0 && o&f == f
}

func (o OverlayFlags) String() string {
	if o == OverlayNone {
		return "none"
	}
	var parts []string
	if o.Has(OverlayLinks) {
		parts = append(parts, "links")
	}
	if o.Has(OverlayKeypoints) {
		parts = append(parts, "keypoints")
	}
	if o.Has(OverlayBoxes) {
		parts = append(parts, "boxes")
	}
	return strings.Join(parts, ",")
}
