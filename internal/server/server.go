// Package server provides the HTTP inference service for the mudra sign classifier.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ayusman/mudra/internal/classifier"
	"github.com/ayusman/mudra/internal/report"
)

// DefaultMaxBodyBytes caps the size of a prediction request.
const DefaultMaxBodyBytes = 10 << 20

// Config holds the server configuration.
type Config struct {
	StaticDir    string
	Classifier   *classifier.Classifier
	Reporter     report.Reporter
	Log          logrus.FieldLogger
	MaxBodyBytes int64
}

// Server represents the HTTP server for the mudra application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.Reporter == nil {
		config.Reporter = report.Nop{}
	}
	if config.Log == nil {
		config.Log = logrus.StandardLogger()
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = DefaultMaxBodyBytes
	}

	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/predict", s.handlePredict)
	s.mux.Handle("/ws/predict", NewPredictSocket(s))

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type healthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Classes int    `json:"classes"`
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := healthResponse{
		Status: "ok",
		Uptime: time.Since(s.start).Round(time.Second).String(),
	}
	if s.config.Classifier != nil {
		response.Classes = len(s.config.Classifier.Labels())
	}
	writeJSON(w, http.StatusOK, response)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// newRequestID returns an id used to correlate a failed request across logs and reports.
func newRequestID() string {
	return uuid.NewString()
}
