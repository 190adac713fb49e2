package pose

import "github.com/junsooki/posecast/internal/geometry"

// Keypoint is one detected skeletal landmark.
type Keypoint struct {
	ID         int // index into the topology
	Name       string
	X          float64
	Y          float64
	Confidence float32
}

// Point returns the keypoint position.
func (k Keypoint) Point() geometry.Point {
	return geometry.Point{X: k.X, Y: k.Y}
}

// Pose is the set of keypoints estimated for one person in one frame.
// Keypoints below the detection threshold are omitted, so indices into
// Keypoints do not match topology IDs.
type Pose struct {
	ID     int
	Left   float64
	Top    float64
	Right  float64
	Bottom float64

	Keypoints []Keypoint
	// Links are pairs of indices into Keypoints.
	Links [][2]int
}

// FindKeypoint returns the index into Keypoints of the named keypoint,
// or -1 if it was not detected.
func (p *Pose) FindKeypoint(name string) int {
	for i := range p.Keypoints {
		if p.Keypoints[i].Name == name {
			return i
		}
	}
	return -1
}

// FindKeypointID is like FindKeypoint but matches the topology ID.
func (p *Pose) FindKeypointID(id int) int {
	for i := range p.Keypoints {
		if p.Keypoints[i].ID == id {
			return i
		}
	}
	return -1
}
