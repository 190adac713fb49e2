package inference

import "github.com/junsooki/posecast/internal/pose"

const (
	InputWidth  = 640
	InputHeight = 640

	// NumAnchors is the number of candidate detections per frame for a
	// 640x640 input (80x80 + 40x40 + 20x20 grid cells).
	NumAnchors = 8400
	// NumChannels is box (4) + score (1) + x, y, confidence per keypoint.
	NumChannels = 5 + 3*pose.NumKeypoints

	DefaultIoUThreshold      = 0.45
	DefaultKeypointThreshold = 0.5

	inputName  = "images"
	outputName = "output0"
	padValue   = 114
)
