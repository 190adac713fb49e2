package pipeline

import (
	"sync"
	"time"
)

// Stats summarizes loop progress.
type Stats struct {
	Frames        int64     `json:"frames"`
	CaptureMisses int64     `json:"capture_misses"`
	Poses         int64     `json:"poses"`
	Measurements  int64     `json:"measurements"`
	NetworkFPS    float64   `json:"network_fps"`
	ProcessingFPS float64   `json:"processing_fps"`
	LastFrame     time.Time `json:"last_frame"`
}

type statsRecorder struct {
	mu    sync.Mutex
	stats Stats
}

func (r *statsRecorder) miss() {
	r.mu.Lock()
	r.stats.CaptureMisses++
	r.mu.Unlock()
}

func (r *statsRecorder) frame(poses, measurements int, networkFPS, processingFPS float64, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.Frames++
	r.stats.Poses += int64(poses)
	r.stats.Measurements += int64(measurements)
	r.stats.NetworkFPS = networkFPS
	r.stats.ProcessingFPS = processingFPS
	r.stats.LastFrame = at
}

func (r *statsRecorder) snapshot() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}
