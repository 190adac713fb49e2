package status

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/junsooki/posecast/internal/pipeline"
)

type fixedStats pipeline.Stats

func (f fixedStats) Stats() pipeline.Stats { return pipeline.Stats(f) }

func TestMetrics(t *testing.T) {
	want := pipeline.Stats{
		Frames:        12,
		CaptureMisses: 3,
		Poses:         5,
		Measurements:  8,
		NetworkFPS:    41.5,
		ProcessingFPS: 29.9,
		LastFrame:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	r := NewRouter(fixedStats(want))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}
	var got pipeline.Stats
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !got.LastFrame.Equal(want.LastFrame) {
		t.Errorf("expected last frame %v, got %v", want.LastFrame, got.LastFrame)
	}
	got.LastFrame = want.LastFrame
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestMetricsRejectsPost(t *testing.T) {
	r := NewRouter(fixedStats{})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/metrics", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	r := NewRouter(fixedStats{})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestServerStartShutdown(t *testing.T) {
	s := NewServer("127.0.0.1:0", fixedStats{Frames: 1})
	if err := s.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if err := s.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() failed: %v", err)
	}
}
