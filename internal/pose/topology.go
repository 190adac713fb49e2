package pose

// KeypointNames is the COCO 17-keypoint topology, indexed by keypoint ID.
var KeypointNames = [...]string{
	"nose",
	"left_eye",
	"right_eye",
	"left_ear",
	"right_ear",
	"left_shoulder",
	"right_shoulder",
	"left_elbow",
	"right_elbow",
	"left_wrist",
	"right_wrist",
	"left_hip",
	"right_hip",
	"left_knee",
	"right_knee",
	"left_ankle",
	"right_ankle",
}

// NumKeypoints is the number of keypoints in the topology.
const NumKeypoints = len(KeypointNames)

// Skeleton lists the keypoint ID pairs joined by a limb.
var Skeleton = [][2]int{
	{15, 13}, {13, 11}, {16, 14}, {14, 12}, {11, 12},
	{5, 11}, {6, 12}, {5, 6}, {5, 7}, {6, 8},
	{7, 9}, {8, 10}, {1, 2}, {0, 1}, {0, 2},
	{1, 3}, {2, 4}, {3, 5}, {4, 6},
}

// BuildLinks fills p.Links from Skeleton using only keypoints present in p.
func (p *Pose) BuildLinks() {
	p.Links = p.Links[:0]
	for _, l := range Skeleton {
		a := p.FindKeypointID(l[0])
		b := p.FindKeypointID(l[1])
		if a < 0 || b < 0 {
			continue
		}
		p.Links = append(p.Links, [2]int{a, b})
	}
}
