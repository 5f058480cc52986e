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

// cascaded is the Cascade daemon: it serves the pipeline engine, the
// operation catalog, and the natural-language planner over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tombee/cascade/internal/builtin"
	"github.com/tombee/cascade/internal/config"
	"github.com/tombee/cascade/internal/log"
	"github.com/tombee/cascade/internal/operation"
	"github.com/tombee/cascade/internal/planner"
	"github.com/tombee/cascade/internal/server"
	"github.com/tombee/cascade/internal/tracing"
)

// Version information (injected via ldflags at build time)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	addr := flag.String("addr", "", "listen address (overrides config)")
	traceEnabled := flag.Bool("trace", false, "export spans to stdout")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("cascaded %s (commit %s, built %s)\n", version, commit, buildDate)
		return
	}

	if err := run(*configPath, *addr, *traceEnabled); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(configPath, addr string, traceEnabled bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	logCfg := log.FromEnv()
	if cfg.Log.Level != "" {
		logCfg.Level = cfg.Log.Level
	}
	if cfg.Log.Format != "" {
		logCfg.Format = log.Format(cfg.Log.Format)
	}
	logger := log.New(logCfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		Enabled:        traceEnabled,
		ServiceName:    "cascaded",
		ServiceVersion: version,
	})
	if err != nil {
		return err
	}
	defer shutdownTracing(context.Background())

	pl := planner.NewOllama(cfg.Planner).WithLogger(logger)
	if err := pl.Ping(ctx); err != nil {
		logger.Warn("ollama not reachable at startup, planner will degrade to keyword fallback",
			slog.String("host", cfg.Planner.Host),
			slog.Any("error", err))
	}

	registry := operation.NewRegistry()
	srv := server.New(server.Options{
		Addr:            cfg.Server.Addr,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Version:         version,
	}, registry, pl, logger)

	registry.WithMetrics(operation.NewMetrics(srv.Metrics()))
	if err := builtin.Register(registry, builtin.Config{
		RandomSeed: cfg.RandomSeed,
		Mailer:     cfg.Mailer(),
		DataDir:    cfg.DataDir,
	}); err != nil {
		return err
	}

	logger.Info("starting cascaded",
		slog.String("version", version),
		slog.String("addr", cfg.Server.Addr),
		slog.String("ollama", cfg.Planner.Host))
	return srv.Start(ctx)
}
