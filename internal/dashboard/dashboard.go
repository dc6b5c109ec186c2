package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"stock-signal-bot/internal/logger"
	"stock-signal-bot/internal/publish"
	"stock-signal-bot/internal/store"
)

// Server serves the latest run's signals as a local web dashboard.
type Server struct {
	cfg     *store.Config
	history *store.History
}

// NewServer creates a dashboard over the run history.
func NewServer(cfg *store.Config, history *store.History) *Server {
	return &Server{cfg: cfg, history: history}
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/signals.json", s.handleSignalsJSON)

	srv := &http.Server{
		Addr:         s.cfg.Dashboard.Addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info(ctx, "Dashboard listening", "addr", s.cfg.Dashboard.Addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	ranAt, signals, ok, err := s.history.LatestRun()
	if err != nil {
		logger.ErrorWithErr(r.Context(), "Failed to load latest run", err)
		http.Error(w, "failed to load signals", http.StatusInternalServerError)
		return
	}

	lastUpdated := "never"
	if ok {
		lastUpdated = ranAt.UTC().Format("January 02, 2006 at 15:04 UTC")
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = publish.PageTemplate.Execute(w, publish.PageData{
		LastUpdated: lastUpdated,
		Sections:    s.cfg.Sections(),
		Signals:     signals,
	})
	if err != nil {
		logger.ErrorWithErr(r.Context(), "Failed to render dashboard", err)
	}
}

func (s *Server) handleSignalsJSON(w http.ResponseWriter, r *http.Request) {
	ranAt, signals, ok, err := s.history.LatestRun()
	if err != nil {
		http.Error(w, "failed to load signals", http.StatusInternalServerError)
		return
	}

	resp := map[string]any{"signals": signals}
	if ok {
		resp["last_updated"] = ranAt.UTC().Format(time.RFC3339)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
