// Package health serves the liveness endpoint next to the bot.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/m3rciful/pixbot/core/logger"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping() error
}

// Server exposes /healthz on its own listener.
type Server struct {
	srv *http.Server
}

func NewServer(listen string, db Pinger) *Server {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		if db != nil {
			if err := db.Ping(); err != nil {
				status = http.StatusServiceUnavailable
				body = map[string]string{"status": "degraded", "db": err.Error()}
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	})

	return &Server{srv: &http.Server{
		Addr:              listen,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

// Start serves in the background until Shutdown.
func (s *Server) Start() {
	go func() {
		logger.TG.Info("health endpoint up",
			slog.String("event", "health.start"),
			slog.String("listen", s.srv.Addr),
		)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.TG.Error("health endpoint failed",
				slog.String("event", "health.serve"),
				slog.String("err", err.Error()),
			)
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
