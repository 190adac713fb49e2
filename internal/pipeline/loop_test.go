package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/junsooki/posecast/internal/pose"
)

// fakeClock advances only when the loop sleeps or an engine call simulates work.
type fakeClock struct {
	t      time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1700000000, 0)}
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) sleep(d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	c.t = c.t.Add(d)
}

type fakeSource struct {
	frames    []*image.RGBA // nil entries are capture misses
	calls     int
	streaming func(calls int) bool
	err       error
}

func (s *fakeSource) Capture() (*image.RGBA, error) {
	if s.err != nil {
		return nil, s.err
	}
	i := s.calls
	s.calls++
	if i < len(s.frames) {
		return s.frames[i], nil
	}
	return image.NewRGBA(image.Rect(0, 0, 320, 240)), nil
}

func (s *fakeSource) IsStreaming() bool {
	if s.streaming == nil {
		return true
	}
	return s.streaming(s.calls)
}

type fakeSink struct {
	rendered  int
	statuses  []string
	streaming func(rendered int) bool
	err       error
}

func (s *fakeSink) Render(img *image.RGBA) error {
	if s.err != nil {
		return s.err
	}
	s.rendered++
	return nil
}

func (s *fakeSink) SetStatus(text string) {
	s.statuses = append(s.statuses, text)
}

func (s *fakeSink) IsStreaming() bool {
	if s.streaming == nil {
		return true
	}
	return s.streaming(s.rendered)
}

type fakeEngine struct {
	clock    *fakeClock
	latency  time.Duration
	poses    []pose.Pose
	err      error
	calls    int
	profiled int
	overlays []pose.OverlayFlags
}

func (e *fakeEngine) Process(img *image.RGBA, overlay pose.OverlayFlags) ([]pose.Pose, error) {
	e.calls++
	e.overlays = append(e.overlays, overlay)
	if e.clock != nil {
		e.clock.t = e.clock.t.Add(e.latency)
	}
	if e.err != nil {
		return nil, e.err
	}
	return e.poses, nil
}

func (e *fakeEngine) NetworkFPS() float64 { return 42 }

func (e *fakeEngine) PrintProfilerTimes() { e.profiled++ }

type drawCall struct {
	text string
	fg   color.RGBA
}

type fakeFont struct {
	calls []drawCall
}

func (f *fakeFont) OverlayText(img *image.RGBA, width, height int, text string, x, y int, fg, bg color.RGBA) {
	f.calls = append(f.calls, drawCall{text, fg})
}

func bothArms() pose.Pose {
	return pose.Pose{Keypoints: []pose.Keypoint{
		{Name: "left_shoulder", X: 100, Y: 60},
		{Name: "left_elbow", X: 100, Y: 100},
		{Name: "left_wrist", X: 140, Y: 100},
		{Name: "right_shoulder", X: 200, Y: 60},
		{Name: "right_elbow", X: 200, Y: 100},
		{Name: "right_wrist", X: 200, Y: 140},
	}}
}

func stopAfterFrames(n int) func(int) bool {
	return func(rendered int) bool { return rendered < n }
}

func TestRun_CaptureMissesSleepThenProcess(t *testing.T) {
	clock := newFakeClock()
	src := &fakeSource{frames: []*image.RGBA{nil, nil, nil}}
	sink := &fakeSink{streaming: stopAfterFrames(1)}
	engine := &fakeEngine{clock: clock}

	loop := New(Config{Network: "net", FPS: 10}, src, sink, engine, &fakeFont{}, WithClock(clock.now, clock.sleep))

	engineCallsAtMiss := []int{}
	origSleep := loop.sleep
	loop.sleep = func(d time.Duration) {
		engineCallsAtMiss = append(engineCallsAtMiss, engine.calls)
		origSleep(d)
	}

	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if src.calls != 4 {
		t.Errorf("expected 4 capture calls, got %d", src.calls)
	}
	if engine.calls != 1 {
		t.Errorf("expected 1 inference call, got %d", engine.calls)
	}
	if sink.rendered != 1 {
		t.Errorf("expected 1 render, got %d", sink.rendered)
	}
	// Three miss sleeps, then one pacing sleep for the processed frame.
	if len(clock.sleeps) != 4 {
		t.Fatalf("expected 4 sleeps, got %d: %v", len(clock.sleeps), clock.sleeps)
	}
	for i := 0; i < 3; i++ {
		if clock.sleeps[i] != 100*time.Millisecond {
			t.Errorf("sleep %d: expected 100ms, got %v", i, clock.sleeps[i])
		}
		if engineCallsAtMiss[i] != 0 {
			t.Errorf("sleep %d: expected no inference before it, got %d calls", i, engineCallsAtMiss[i])
		}
	}
	if got := loop.Stats().CaptureMisses; got != 3 {
		t.Errorf("expected 3 capture misses, got %d", got)
	}
}

func TestRun_PacingSleepsRemainder(t *testing.T) {
	clock := newFakeClock()
	engine := &fakeEngine{clock: clock, latency: 30 * time.Millisecond}
	sink := &fakeSink{streaming: stopAfterFrames(1)}

	loop := New(Config{FPS: 10}, &fakeSource{}, sink, engine, nil, WithClock(clock.now, clock.sleep))
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if len(clock.sleeps) != 1 || clock.sleeps[0] != 70*time.Millisecond {
		t.Errorf("expected one 70ms sleep, got %v", clock.sleeps)
	}
}

func TestRun_SlowIterationNotPaced(t *testing.T) {
	clock := newFakeClock()
	engine := &fakeEngine{clock: clock, latency: 250 * time.Millisecond}
	sink := &fakeSink{streaming: stopAfterFrames(2)}

	loop := New(Config{FPS: 10}, &fakeSource{}, sink, engine, nil, WithClock(clock.now, clock.sleep))
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if len(clock.sleeps) != 0 {
		t.Errorf("expected no pacing sleeps, got %v", clock.sleeps)
	}
	if sink.rendered != 2 {
		t.Errorf("expected 2 renders, got %d", sink.rendered)
	}
}

func TestRun_StopsWhenSourceEnds(t *testing.T) {
	clock := newFakeClock()
	src := &fakeSource{streaming: func(calls int) bool { return calls < 3 }}
	sink := &fakeSink{}
	engine := &fakeEngine{poses: []pose.Pose{bothArms()}}

	loop := New(Config{FPS: 30}, src, sink, engine, &fakeFont{}, WithClock(clock.now, clock.sleep))
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if sink.rendered != 3 {
		t.Errorf("expected 3 renders before stopping, got %d", sink.rendered)
	}
}

func TestRun_StopsWhenSinkEnds(t *testing.T) {
	clock := newFakeClock()
	sink := &fakeSink{streaming: stopAfterFrames(2)}
	engine := &fakeEngine{}

	loop := New(Config{FPS: 30}, &fakeSource{}, sink, engine, nil, WithClock(clock.now, clock.sleep))
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if engine.calls != 2 {
		t.Errorf("expected 2 inference calls, got %d", engine.calls)
	}
}

func TestRun_StopsWhenBothEndpointsEnd(t *testing.T) {
	clock := newFakeClock()
	src := &fakeSource{streaming: func(int) bool { return false }}
	sink := &fakeSink{streaming: func(int) bool { return false }}
	engine := &fakeEngine{}

	loop := New(Config{FPS: 30}, src, sink, engine, nil, WithClock(clock.now, clock.sleep))
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if sink.rendered != 1 {
		t.Errorf("expected exactly 1 render, got %d", sink.rendered)
	}
}

func TestRun_EndedSourceWithoutFramesStops(t *testing.T) {
	clock := newFakeClock()
	src := &fakeSource{
		frames:    []*image.RGBA{nil, nil, nil, nil, nil},
		streaming: func(calls int) bool { return calls < 2 },
	}
	engine := &fakeEngine{}

	loop := New(Config{FPS: 30}, src, &fakeSink{}, engine, nil, WithClock(clock.now, clock.sleep))
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if src.calls != 2 {
		t.Errorf("expected 2 capture calls, got %d", src.calls)
	}
	if engine.calls != 0 {
		t.Errorf("expected no inference, got %d calls", engine.calls)
	}
}

func TestRun_ReportsLeftBeforeRightPerPose(t *testing.T) {
	clock := newFakeClock()
	var out bytes.Buffer
	font := &fakeFont{}
	engine := &fakeEngine{poses: []pose.Pose{bothArms(), bothArms()}}
	sink := &fakeSink{streaming: stopAfterFrames(1)}

	loop := New(Config{Network: "yolov8n-pose", FPS: 30}, &fakeSource{}, sink, engine, font,
		WithClock(clock.now, clock.sleep), WithOutput(&out))
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if len(font.calls) != 4 {
		t.Fatalf("expected 4 overlay calls, got %d", len(font.calls))
	}
	wantPrefix := []string{"Left", "Right", "Left", "Right"}
	for i, c := range font.calls {
		if !strings.HasPrefix(c.text, wantPrefix[i]) {
			t.Errorf("call %d: expected %s label, got %q", i, wantPrefix[i], c.text)
		}
	}

	console := out.String()
	if !strings.HasPrefix(console, "Detected 2 objects in frame\n") {
		t.Errorf("unexpected console output: %q", console)
	}
	if n := strings.Count(console, separator); n != 4 {
		t.Errorf("expected 4 separators, got %d", n)
	}
	if got := loop.Stats().Measurements; got != 4 {
		t.Errorf("expected 4 measurements, got %d", got)
	}
}

func TestRun_StatusAndProfiler(t *testing.T) {
	clock := newFakeClock()
	engine := &fakeEngine{clock: clock, latency: 50 * time.Millisecond}
	sink := &fakeSink{streaming: stopAfterFrames(1)}

	loop := New(Config{Network: "resnet18-body", Overlay: pose.OverlayBoxes, FPS: 10}, &fakeSource{}, sink, engine, nil,
		WithClock(clock.now, clock.sleep))
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if len(sink.statuses) != 1 {
		t.Fatalf("expected 1 status, got %d", len(sink.statuses))
	}
	want := "resnet18-body | Network FPS: 42 | Processing FPS: 20.0"
	if sink.statuses[0] != want {
		t.Errorf("expected status %q, got %q", want, sink.statuses[0])
	}
	if engine.profiled != 1 {
		t.Errorf("expected 1 profiler print, got %d", engine.profiled)
	}
	if engine.overlays[0] != pose.OverlayBoxes {
		t.Errorf("expected overlay flags to be passed through, got %v", engine.overlays[0])
	}
}

func TestRun_PropagatesCollaboratorErrors(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name   string
		source *fakeSource
		sink   *fakeSink
		engine *fakeEngine
	}{
		{"capture", &fakeSource{err: boom}, &fakeSink{}, &fakeEngine{}},
		{"inference", &fakeSource{}, &fakeSink{}, &fakeEngine{err: boom}},
		{"render", &fakeSource{}, &fakeSink{err: boom}, &fakeEngine{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newFakeClock()
			loop := New(Config{FPS: 30}, tt.source, tt.sink, tt.engine, nil, WithClock(clock.now, clock.sleep))
			err := loop.Run(context.Background())
			if !errors.Is(err, boom) {
				t.Fatalf("expected wrapped boom error, got %v", err)
			}
			if !strings.HasPrefix(err.Error(), tt.name+":") {
				t.Errorf("expected %q prefix, got %q", tt.name, err.Error())
			}
		})
	}
}

func TestRun_ContextCancelStopsAtBoundary(t *testing.T) {
	clock := newFakeClock()
	ctx, cancel := context.WithCancel(context.Background())
	sink := &fakeSink{}
	engine := &fakeEngine{}

	loop := New(Config{FPS: 30}, &fakeSource{}, sink, engine, nil, WithClock(clock.now, func(d time.Duration) {
		clock.sleep(d)
		cancel()
	}))
	if err := loop.Run(ctx); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if sink.rendered != 1 {
		t.Errorf("expected the in-flight frame to finish, got %d renders", sink.rendered)
	}
}

func TestConfigInterval(t *testing.T) {
	if got := (Config{FPS: 30}).Interval(); got != time.Second/30 {
		t.Errorf("expected %v, got %v", time.Second/30, got)
	}
	if got := (Config{}).Interval(); got != 0 {
		t.Errorf("expected 0 for unset fps, got %v", got)
	}
}
