package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/junsooki/posecast/internal/pose"
)

// Config holds all runtime configuration for the annotation loop.
type Config struct {
	Input  string
	Output string

	Network   string
	Overlay   pose.OverlayFlags
	Threshold float64
	FPS       int

	ModelDir     string
	ORTLib       string
	SignalingURL string
	PublisherID  string
	Quality      int
	Loop         bool
	StatusAddr   string
	Profile      bool
}

// Parse parses the posecast command line: [flags] [input_URI] [output_URI].
// Usage and errors are written to errOut.
func Parse(args []string, errOut io.Writer) (*Config, error) {
	cfg := &Config{}
	var overlay string

	fs := flag.NewFlagSet("posecast", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: posecast [flags] [input_URI] [output_URI]\n\n")
		fs.PrintDefaults()
	}
	fs.StringVar(&cfg.Network, "network", "yolov8n-pose", "Pose model name or path to an .onnx file")
	fs.StringVar(&overlay, "overlay", "links,keypoints", "Overlay flags: links, keypoints, boxes, none")
	fs.Float64Var(&cfg.Threshold, "threshold", 0.15, "Minimum detection confidence (0-1)")
	fs.IntVar(&cfg.FPS, "fps", 30, "Target frames per second")
	fs.StringVar(&cfg.ModelDir, "model-dir", "models", "Directory searched for <network>.onnx")
	fs.StringVar(&cfg.ORTLib, "ort-lib", os.Getenv("ONNXRUNTIME_LIB"), "Path to the ONNX Runtime shared library")
	fs.StringVar(&cfg.SignalingURL, "signaling", "ws://localhost:8080", "Signaling server WebSocket URL")
	fs.StringVar(&cfg.PublisherID, "id", "", "Publisher ID for webrtc:// output (auto-generated if empty)")
	fs.IntVar(&cfg.Quality, "quality", 80, "JPEG quality (1-100)")
	fs.BoolVar(&cfg.Loop, "loop", false, "Repeat image sequences")
	fs.StringVar(&cfg.StatusAddr, "status-addr", "", "Serve /metrics on this address (disabled if empty)")
	fs.BoolVar(&cfg.Profile, "profile", false, "Print profiler times every frame")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	rest := fs.Args()
	if len(rest) > 2 {
		return nil, usageError(fs, "too many arguments: %q", rest[2:])
	}
	if len(rest) > 0 {
		cfg.Input = rest[0]
	}
	if len(rest) > 1 {
		cfg.Output = rest[1]
	}

	flags, err := pose.ParseOverlay(overlay)
	if err != nil {
		return nil, usageError(fs, "%v", err)
	}
	cfg.Overlay = flags

	if cfg.Threshold < 0 || cfg.Threshold > 1 {
		return nil, usageError(fs, "threshold must be in [0,1], got %v", cfg.Threshold)
	}
	if cfg.FPS <= 0 {
		return nil, usageError(fs, "fps must be positive, got %d", cfg.FPS)
	}
	if cfg.Quality < 1 || cfg.Quality > 100 {
		return nil, usageError(fs, "quality must be in [1,100], got %d", cfg.Quality)
	}
	if cfg.Network == "" {
		return nil, usageError(fs, "network must not be empty")
	}

	if cfg.PublisherID == "" {
		cfg.PublisherID = fmt.Sprintf("posecast-%s", randomID())
	}
	return cfg, nil
}

// ViewerConfig holds configuration for the viewer binary.
type ViewerConfig struct {
	SignalingURL string
	ViewerID     string
	PublisherID  string
}

// ParseViewer parses flags for the viewer binary.
func ParseViewer(args []string, errOut io.Writer) (*ViewerConfig, error) {
	cfg := &ViewerConfig{}
	fs := flag.NewFlagSet("viewer", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.StringVar(&cfg.SignalingURL, "signaling", "ws://localhost:8080", "Signaling server WebSocket URL")
	fs.StringVar(&cfg.ViewerID, "id", "", "Viewer ID (auto-generated if empty)")
	fs.StringVar(&cfg.PublisherID, "publisher", "", "Publisher ID to connect to (required)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.PublisherID == "" {
		return nil, usageError(fs, "-publisher is required")
	}
	if cfg.ViewerID == "" {
		cfg.ViewerID = fmt.Sprintf("viewer-%s", randomID())
	}
	return cfg, nil
}

func usageError(fs *flag.FlagSet, format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	fmt.Fprintf(fs.Output(), "%v\n", err)
	fs.Usage()
	return err
}

// IsHelp reports whether err came from -h or -help.
func IsHelp(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}

func randomID() string {
	b := make([]byte, 4)
	rand.Read(b)
	return hex.EncodeToString(b)
}
