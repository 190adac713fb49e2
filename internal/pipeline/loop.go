package pipeline

import (
	"context"
	"fmt"
	"image"
	"io"
	"strings"
	"time"

	"github.com/junsooki/posecast/internal/pose"
	"github.com/junsooki/posecast/internal/report"
)

var separator = strings.Repeat("-", 78)

// Config holds the loop settings.
type Config struct {
	Network string
	Overlay pose.OverlayFlags
	FPS     int
}

// Interval returns the target time per frame.
func (c Config) Interval() time.Duration {
	if c.FPS <= 0 {
		return 0
	}
	return time.Second / time.Duration(c.FPS)
}

// Loop captures, annotates and renders frames one at a time.
type Loop struct {
	cfg      Config
	source   Source
	sink     Sink
	engine   Engine
	font     report.TextOverlay
	reporter *report.Reporter
	out      io.Writer

	now   func() time.Time
	sleep func(time.Duration)

	stats statsRecorder
}

// Option customizes a Loop.
type Option func(*Loop)

// WithOutput sets where per-frame console lines are written.
func WithOutput(w io.Writer) Option {
	return func(l *Loop) {
		l.out = w
	}
}

// WithClock replaces the wall clock and sleep used for pacing.
func WithClock(now func() time.Time, sleep func(time.Duration)) Option {
	return func(l *Loop) {
		l.now = now
		l.sleep = sleep
	}
}

// New creates a Loop.
func New(cfg Config, source Source, sink Sink, engine Engine, font report.TextOverlay, opts ...Option) *Loop {
	l := &Loop{
		cfg:    cfg,
		source: source,
		sink:   sink,
		engine: engine,
		font:   font,
		out:    io.Discard,
		now:    time.Now,
		sleep:  time.Sleep,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.reporter = report.NewReporter(l.out)
	return l
}

// Stats returns a snapshot of loop progress. Safe for concurrent use.
func (l *Loop) Stats() Stats {
	return l.stats.snapshot()
}

// frameContext is the state of one loop iteration.
type frameContext struct {
	img          *image.RGBA
	poses        []pose.Pose
	start        time.Time
	measurements int
}

// Run processes frames until the source or sink stops streaming, or ctx is
// cancelled. Both are checked between iterations only. Errors from the
// source, engine or sink are returned unchanged in meaning.
func (l *Loop) Run(ctx context.Context) error {
	interval := l.cfg.Interval()

	for {
		fc := frameContext{start: l.now()}

		img, err := l.source.Capture()
		if err != nil {
			return fmt.Errorf("capture: %w", err)
		}
		if img == nil {
			l.stats.miss()
			l.sleep(interval)
			if l.stopped(ctx) {
				return nil
			}
			continue
		}
		fc.img = img

		fc.poses, err = l.engine.Process(fc.img, l.cfg.Overlay)
		if err != nil {
			return fmt.Errorf("inference: %w", err)
		}

		fmt.Fprintf(l.out, "Detected %d objects in frame\n", len(fc.poses))
		for i := range fc.poses {
			fmt.Fprintln(l.out, separator)
			for _, side := range pose.Sides {
				if _, ok := l.reporter.ReportSideAngle(&fc.poses[i], side, l.font, fc.img); ok {
					fc.measurements++
				}
			}
			fmt.Fprintln(l.out, separator)
		}

		if err := l.sink.Render(fc.img); err != nil {
			return fmt.Errorf("render: %w", err)
		}

		networkFPS := l.engine.NetworkFPS()
		processingFPS := fps(l.now().Sub(fc.start))
		l.sink.SetStatus(fmt.Sprintf("%s | Network FPS: %.0f | Processing FPS: %.1f", l.cfg.Network, networkFPS, processingFPS))

		l.engine.PrintProfilerTimes()

		if elapsed := l.now().Sub(fc.start); elapsed < interval {
			l.sleep(interval - elapsed)
		}
		l.stats.frame(len(fc.poses), fc.measurements, networkFPS, processingFPS, fc.start)

		if l.stopped(ctx) {
			return nil
		}
	}
}

func (l *Loop) stopped(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	return !l.source.IsStreaming() || !l.sink.IsStreaming()
}

func fps(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(time.Second) / float64(d)
}
