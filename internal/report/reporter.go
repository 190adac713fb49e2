package report

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/junsooki/posecast/internal/geometry"
	"github.com/junsooki/posecast/internal/pose"
)

// TextOverlay draws a text label into an image in place.
type TextOverlay interface {
	OverlayText(img *image.RGBA, width, height int, text string, x, y int, fg, bg color.RGBA)
}

// Label placement relative to the elbow.
const (
	LeftOffsetX  = -50
	RightOffsetX = 10
	OffsetY      = -30
)

// LabelBackground is the semi-transparent box drawn behind labels.
var LabelBackground = color.RGBA{A: 128}

// Reporter measures elbow angles and annotates frames with them.
type Reporter struct {
	out io.Writer
}

// NewReporter creates a Reporter that writes status lines to out.
// A nil out discards them.
func NewReporter(out io.Writer) *Reporter {
	if out == nil {
		out = io.Discard
	}
	return &Reporter{out: out}
}

// ReportSideAngle measures the elbow angle on one side of p and draws it
// next to the elbow. It returns false without drawing when the shoulder,
// elbow or wrist is missing, or when the arm is degenerate.
func (r *Reporter) ReportSideAngle(p *pose.Pose, side pose.Side, font TextOverlay, img *image.RGBA) (float64, bool) {
	shoulder := p.FindKeypoint(side.Shoulder())
	elbow := p.FindKeypoint(side.Elbow())
	wrist := p.FindKeypoint(side.Wrist())
	if shoulder < 0 || elbow < 0 || wrist < 0 {
		return 0, false
	}

	elbowPt := p.Keypoints[elbow].Point()
	angle, ok := geometry.JointAngle(p.Keypoints[shoulder].Point(), elbowPt, p.Keypoints[wrist].Point())
	if !ok {
		return 0, false
	}

	fmt.Fprintf(r.out, "%s arm angle: %.2f°\n", side.Title(), angle)

	x, y := LabelAnchor(side, elbowPt)
	if font != nil && img != nil {
		b := img.Bounds()
		font.OverlayText(img, b.Dx(), b.Dy(),
			fmt.Sprintf("%s: %.1f°", side.Title(), angle),
			x, y, side.Color(), LabelBackground)
	}
	return angle, true
}

// LabelAnchor returns the top-left text position for a label at elbow.
func LabelAnchor(side pose.Side, elbow geometry.Point) (x, y int) {
	dx := LeftOffsetX
	if side == pose.Right {
		dx = RightOffsetX
	}
	return int(elbow.X + float64(dx)), int(elbow.Y + OffsetY)
}
