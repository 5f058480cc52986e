// Copyright 2026 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package server exposes the pipeline engine over HTTP: submitting and
// dry-running step lists, planning from natural language, and the combined
// query endpoint that plans and executes in one call.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/tombee/cascade/internal/operation"
	"github.com/tombee/cascade/internal/planner"
	"github.com/tombee/cascade/pkg/pipeline"
)

// Options configures the HTTP server.
type Options struct {
	// Addr is the listen address.
	Addr string
	// ShutdownTimeout bounds graceful shutdown; zero means 10s.
	ShutdownTimeout time.Duration
	// Version is reported by the health endpoint.
	Version string
}

// Server is the Cascade daemon.
type Server struct {
	opts     Options
	logger   *slog.Logger
	engine   *pipeline.Engine
	registry *operation.Registry
	planner  planner.Planner
	metrics  *prometheus.Registry

	httpServer *http.Server
}

// New assembles a server. The prometheus registry is created here so the
// process metrics and operation metrics share one /metrics endpoint; attach
// operation metrics with Metrics before registering operations.
func New(opts Options, registry *operation.Registry, pl planner.Planner, logger *slog.Logger) *Server {
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &Server{
		opts:     opts,
		logger:   logger,
		engine:   pipeline.New(registry).WithLogger(logger),
		registry: registry,
		planner:  pl,
		metrics:  promRegistry,
	}
	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Metrics returns the server's prometheus registry, for wiring operation
// instrumentation.
func (s *Server) Metrics() *prometheus.Registry {
	return s.metrics
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("daemon listening", slog.String("addr", s.opts.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	return s.httpServer.Shutdown(shutdownCtx)
}
