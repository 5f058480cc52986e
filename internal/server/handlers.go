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

package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/tombee/cascade/internal/planner"
	"github.com/tombee/cascade/internal/server/httputil"
	"github.com/tombee/cascade/pkg/pipeline"
)

// pinger is the connectivity check some planners expose.
type pinger interface {
	Ping(ctx context.Context) error
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	// Planners without a connectivity check (the keyword fallback, stubs)
	// are always reachable.
	plannerStatus := "ok"
	if p, ok := s.planner.(pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			plannerStatus = "unavailable"
		}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"version":    s.opts.Version,
		"operations": len(s.registry.Names()),
		"planner":    plannerStatus,
	})
}

func (s *Server) handleListOperations(w http.ResponseWriter, r *http.Request) {
	metadata := s.registry.Metadata()
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"operations": metadata,
		"count":      len(metadata),
	})
}

type runRequest struct {
	Steps []pipeline.Step `json:"steps"`
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Steps) == 0 {
		httputil.WriteError(w, http.StatusBadRequest, "steps must not be empty")
		return
	}

	result := s.engine.Execute(r.Context(), req.Steps)
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (s *Server) handleDryRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, s.engine.DryRun(req.Steps))
}

type planRequest struct {
	Query string `json:"query"`
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Query == "" {
		httputil.WriteError(w, http.StatusBadRequest, "query must not be empty")
		return
	}

	steps := s.plan(r, req.Query)
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"query": req.Query,
		"steps": steps,
		"count": len(steps),
	})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Query == "" {
		httputil.WriteError(w, http.StatusBadRequest, "query must not be empty")
		return
	}

	steps := s.plan(r, req.Query)
	if len(steps) == 0 {
		httputil.WriteError(w, http.StatusUnprocessableEntity, "could not map the query to any operations")
		return
	}
	if ok, message := s.engine.Validate(steps); !ok {
		httputil.WriteError(w, http.StatusUnprocessableEntity, "planned pipeline failed validation: "+message)
		return
	}

	result := s.engine.Execute(r.Context(), steps)
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"query":  req.Query,
		"steps":  steps,
		"result": result,
	})
}

// plan asks the configured planner and degrades to keyword planning when the
// model is unreachable or errors out.
func (s *Server) plan(r *http.Request, query string) []pipeline.Step {
	steps, err := s.planner.Plan(r.Context(), query, s.registry.Metadata())
	if err != nil {
		s.logger.Warn("planner unavailable, using keyword fallback", slog.Any("error", err))
		steps, _ = planner.Fallback{}.Plan(r.Context(), query, nil)
	}
	return steps
}
