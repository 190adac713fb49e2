package status

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/junsooki/posecast/internal/pipeline"
)

// StatsProvider reports loop progress.
type StatsProvider interface {
	Stats() pipeline.Stats
}

// Server exposes loop statistics over HTTP.
type Server struct {
	srv *http.Server
}

// NewRouter returns the status routes.
func NewRouter(p StatsProvider) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/metrics", handleMetrics(p)).Methods("GET")
	r.HandleFunc("/healthz", handleHealth).Methods("GET")
	return r
}

// NewServer creates a status server bound to addr.
func NewServer(addr string, p StatsProvider) *Server {
	return &Server{
		srv: &http.Server{
			Handler:      NewRouter(p),
			Addr:         addr,
			WriteTimeout: 10 * time.Second,
			ReadTimeout:  10 * time.Second,
		},
	}
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	log.Printf("Status server listening on %s", ln.Addr())
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("status server: %v", err)
		}
	}()
	return nil
}

// Shutdown stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func handleMetrics(p StatsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(p.Stats())
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
