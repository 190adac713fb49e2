package pose

import "image/color"

// Side selects the left or right half of a body.
type Side int

const (
	Left Side = iota
	Right
)

// Sides lists both sides in reporting order.
var Sides = []Side{Left, Right}

func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// Title returns the capitalized side name used in labels.
func (s Side) Title() string {
	if s == Right {
		return "Right"
	}
	return "Left"
}

// Color returns the label color for the side.
func (s Side) Color() color.RGBA {
	if s == Right {
		return color.RGBA{R: 255, A: 255}
	}
	return color.RGBA{G: 255, A: 255}
}

// Shoulder, Elbow and Wrist return the keypoint names for this side.
func (s Side) Shoulder() string { return s.String() + "_shoulder" }
func (s Side) Elbow() string    { return s.String() + "_elbow" }
func (s Side) Wrist() string    { return s.String() + "_wrist" }
