// Package server serves the dashboard over HTTP: HTML pages with inline SVG
// charts, the same pages as JSON, and the CSV files for download.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Khayman1/titanic-streamlit/chart"
	"github.com/Khayman1/titanic-streamlit/views"
)

// Options configure the listener.
type Options struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server routes dashboard requests to views.
type Server struct {
	data      *views.Data
	logger    *zap.Logger
	chartSize chart.Size
	pages     *renderer
	handler   http.Handler
}

// New returns a server rendering from data.
func New(data *views.Data, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		data:      data,
		logger:    logger,
		chartSize: chart.DefaultSize,
	}
	s.pages = newRenderer(s.chartSize, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /views/{slug}", s.handleView)
	mux.HandleFunc("GET /api/views/{slug}", s.handleAPIView)
	mux.HandleFunc("GET /api/schema", s.handleSchema)
	mux.HandleFunc("GET /download/{resource}", s.handleDownload)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	s.handler = chain(mux,
		s.recoverPanics,
		s.logRequests,
		requestID,
	)
	return s
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler { return s.handler }

// Run listens on opts.Addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, opts Options) error {
	ln, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", opts.Addr, err)
	}
	return s.Serve(ctx, ln, opts)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener, opts Options) error {
	srv := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		ErrorLog:     zap.NewStdLog(s.logger),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard listening", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("shutting down", zap.Duration("timeout", timeout))
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
