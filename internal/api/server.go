// Package api exposes the task store as a local JSON HTTP API.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/cors"
	"github.com/sandeepkv93/thetask/internal/model"
	"github.com/sandeepkv93/thetask/internal/scheduler"
	"github.com/sandeepkv93/thetask/internal/store"
	"github.com/sirupsen/logrus"
)

type Assistant interface {
	DecomposeGoal(ctx context.Context, goal string) ([]model.TaskDraft, error)
	SuggestHint(ctx context.Context, title, description string) (string, error)
}

type Options struct {
	Store       *store.Store
	Assistant   Assistant
	Monitor     *scheduler.Monitor
	Logger      logrus.FieldLogger
	CORSOrigins []string
	Now         func() time.Time
}

type Server struct {
	store     *store.Store
	assistant Assistant
	monitor   *scheduler.Monitor
	log       logrus.FieldLogger
	now       func() time.Time
	handler   http.Handler
}

func New(opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, errors.New("api: store is required")
	}
	if opts.Logger == nil {
		opts.Logger = logrus.New()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Server{
		store:     opts.Store,
		assistant: opts.Assistant,
		monitor:   opts.Monitor,
		log:       opts.Logger.WithField("component", "api"),
		now:       opts.Now,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /tasks", s.listTasks)
	mux.HandleFunc("POST /tasks", s.createTask)
	mux.HandleFunc("GET /tasks/{id}", s.getTask)
	mux.HandleFunc("PUT /tasks/{id}", s.updateTask)
	mux.HandleFunc("DELETE /tasks/{id}", s.deleteTask)
	mux.HandleFunc("PATCH /tasks/{id}/inline", s.inlineEdit)
	mux.HandleFunc("POST /tasks/{id}/status", s.setStatus)
	mux.HandleFunc("GET /tasks/{id}/calendar", s.calendar)
	mux.HandleFunc("POST /tasks/{id}/hint", s.hint)
	mux.HandleFunc("POST /board/drag", s.drag)
	mux.HandleFunc("GET /analytics", s.analytics)
	mux.HandleFunc("POST /ai/decompose", s.decompose)
	mux.HandleFunc("GET /theme", s.getTheme)
	mux.HandleFunc("PUT /theme", s.putTheme)

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	s.handler = s.logRequests(c.Handler(mux))
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("api listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api: serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("api: shutdown: %w", err)
		}
		return nil
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		entry := s.log.WithFields(logrus.Fields{
			"method":  r.Method,
			"path":    r.URL.Path,
			"status":  rec.status,
			"elapsed": time.Since(started).String(),
		})
		if rec.status >= http.StatusInternalServerError {
			entry.Warn("request failed")
			return
		}
		entry.Debug("request served")
	})
}

func (s *Server) triggerMonitor() {
	if s.monitor != nil {
		_ = s.monitor.Trigger()
	}
}
