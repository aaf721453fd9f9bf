package http

// this is entry point of the http request handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"gitlab.com/fcv-grader.net/internal/config"
	"gitlab.com/fcv-grader.net/internal/core/ports/primary"
	"gitlab.com/fcv-grader.net/internal/core/services/submission"
	"gitlab.com/fcv-grader.net/internal/handlers/submissions"
)

type ServiceProvider struct {
	submissionService submission.ISubmissionService
}

func NewServiceProvider(submissionService submission.ISubmissionService) *ServiceProvider {
	return &ServiceProvider{
		submissionService: submissionService,
	}
}

type Server struct {
	srv             *http.Server
	cfg             *config.HTTPConfig
	ServiceProvider ServiceProvider
	logger          primary.Logger
}

func NewServer(cfg *config.HTTPConfig, serviceProvider ServiceProvider, logger primary.Logger) *Server {
	return &Server{
		cfg:             cfg,
		ServiceProvider: serviceProvider,
		logger:          logger,
	}
}

func (s *Server) Init() error {
	if s.ServiceProvider.submissionService == nil {
		return errors.New("submission service is required")
	}

	r := mux.NewRouter()
	submissions.
		NewSubmissionHandler(s.ServiceProvider.submissionService, s.logger).
		RegisterRoutes(r)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("GET")

	var h http.Handler = r
	h = handlers.CustomLoggingHandler(io.Discard, h, s.logRequest)
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{s.logger}))(h)
	h = handlers.CompressHandler(h)

	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      h,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	return nil
}

// Handler exposes the fully wrapped handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Start serves until the server is stopped
func (s *Server) Start(_ context.Context) error {
	s.logger.Info("Server listening", "addr", s.srv.Addr, "service", s.cfg.ServiceName)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("Server error", "error", err)
		return fmt.Errorf("failed to serve http: %w", err)
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down http server...")
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown http server: %w", err)
	}
	return nil
}

func (s *Server) logRequest(_ io.Writer, p handlers.LogFormatterParams) {
	s.logger.Info("HTTP request",
		"method", p.Request.Method,
		"path", p.URL.Path,
		"status", p.StatusCode,
		"size", p.Size,
		"duration", time.Since(p.TimeStamp).String())
}

type recoveryLogger struct {
	logger primary.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Error("Recovered from panic in handler", "panic", fmt.Sprint(v...))
}
