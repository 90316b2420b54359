package observability

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Health is the /health payload.
type Health struct {
	Status    string    `json:"status"`
	LastRun   string    `json:"last_run,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Server exposes Prometheus metrics and a health probe.
type Server struct {
	addr   string
	health func(context.Context) Health
	server *http.Server
}

func NewServer(addr string, health func(context.Context) Health) *Server {
	return &Server{addr: addr, health: health}
}

// Handler builds the mux without starting a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		status := Health{Status: "up"}
		if s.health != nil {
			status = s.health(r.Context())
		}
		status.CheckedAt = time.Now().UTC()
		w.Header().Set("Content-Type", "application/json")
		if status.Status != "up" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(status)
	})
	return mux
}

func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	slog.Info("observability server starting", "addr", s.addr)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("observability server failed", "error", err)
		}
	}()

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
