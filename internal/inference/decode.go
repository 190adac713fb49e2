package inference

import (
	"sort"

	"github.com/junsooki/posecast/internal/pose"
)

// DecodeOptions controls how raw network output becomes poses.
type DecodeOptions struct {
	Threshold         float32
	KeypointThreshold float32
	IoUThreshold      float64
}

type candidate struct {
	score                    float32
	left, top, right, bottom float64
	anchor                   int
}

// decodePoses converts a [NumChannels x anchors] output tensor into poses in
// frame coordinates, sorted by descending score.
func decodePoses(out []float32, anchors int, opts DecodeOptions, lb Letterbox) []pose.Pose {
	at := func(ch, i int) float32 { return out[ch*anchors+i] }

	var cands []candidate
	for i := 0; i < anchors; i++ {
		score := at(4, i)
		if score < opts.Threshold {
			continue
		}
		cx, cy := float64(at(0, i)), float64(at(1, i))
		w, h := float64(at(2, i)), float64(at(3, i))
		l, t := lb.ToFrame(cx-w/2, cy-h/2)
		r, b := lb.ToFrame(cx+w/2, cy+h/2)
		cands = append(cands, candidate{score: score, left: l, top: t, right: r, bottom: b, anchor: i})
	}

	kept := nms(cands, opts.IoUThreshold)

	poses := make([]pose.Pose, 0, len(kept))
	for n, c := range kept {
		p := pose.Pose{ID: n, Left: c.left, Top: c.top, Right: c.right, Bottom: c.bottom}
		for k := 0; k < pose.NumKeypoints; k++ {
			conf := at(5+3*k+2, c.anchor)
			if conf < opts.KeypointThreshold {
				continue
			}
			x, y := lb.ToFrame(float64(at(5+3*k, c.anchor)), float64(at(5+3*k+1, c.anchor)))
			p.Keypoints = append(p.Keypoints, pose.Keypoint{
				ID:         k,
				Name:       pose.KeypointNames[k],
				X:          x,
				Y:          y,
				Confidence: conf,
			})
		}
		p.BuildLinks()
		poses = append(poses, p)
	}
	return poses
}

// nms keeps the highest scoring candidates, dropping any that overlap a kept
// one by more than iouThreshold.
func nms(cands []candidate, iouThreshold float64) []candidate {
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].score > cands[j].score })

	var kept []candidate
	for _, c := range cands {
		overlaps := false
		for _, k := range kept {
			if iou(c, k) > iouThreshold {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, c)
		}
	}
	return kept
}

func iou(a, b candidate) float64 {
	l := max(a.left, b.left)
	t := max(a.top, b.top)
	r := min(a.right, b.right)
	bt := min(a.bottom, b.bottom)
	if r <= l || bt <= t {
		return 0
	}
	inter := (r - l) * (bt - t)
	union := (a.right-a.left)*(a.bottom-a.top) + (b.right-b.left)*(b.bottom-b.top) - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}
