package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/tahcohcat/tgrelay/config"
	"github.com/tahcohcat/tgrelay/internal/logger"
)

// Status is the static process information exposed by /status.
type Status struct {
	Provider string   `json:"provider"`
	Models   []string `json:"models"`
}

// Server hosts the diagnostics endpoints and the local websocket chat.
type Server struct {
	cfg     *config.ServerConfig
	status  Status
	started time.Time
	router  *mux.Router
	logger  *logger.Log
}

func New(cfg *config.ServerConfig, status Status) *Server {
	s := &Server{
		cfg:     cfg,
		status:  status,
		started: time.Now(),
		router:  mux.NewRouter(),
		logger:  logger.New(),
	}

	s.router.HandleFunc("/healthz", s.health).Methods("GET")
	s.router.HandleFunc("/status", s.getStatus).Methods("GET")

	return s
}

// Router exposes the mux so transports can mount extra routes (e.g. /ws).
func (s *Server) Router() *mux.Router {
	return s.router
}

// GET /healthz
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// GET /status
func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"provider":       s.status.Provider,
		"models":         s.status.Models,
		"uptime_seconds": int(time.Since(s.started).Seconds()),
	})
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	// CORS setup for development dashboards
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	srv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: c.Handler(s.router),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("diagnostics server listening on " + s.cfg.Addr)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
