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

package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tombee/cascade/internal/planner"
	"github.com/tombee/cascade/pkg/pipeline"
)

func newPlanCommand(opts *rootOptions) *cobra.Command {
	var execute bool
	var offline bool

	cmd := &cobra.Command{
		Use:   "plan <query>",
		Short: "Plan a pipeline from a natural-language query",
		Long:  "Ask the configured Ollama model to turn a query into a pipeline.\nWith --offline the keyword planner is used instead of the model.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			registry, err := opts.registry(cfg)
			if err != nil {
				return err
			}
			logger := opts.logger()

			var pl planner.Planner
			if offline {
				pl = planner.Fallback{}
			} else {
				pl = planner.NewOllama(cfg.Planner).WithLogger(logger)
			}

			steps, err := pl.Plan(cmd.Context(), query, registry.Metadata())
			if err != nil {
				logger.Warn("planner unavailable, using keyword fallback", "error", err)
				steps, _ = planner.Fallback{}.Plan(cmd.Context(), query, nil)
			}
			if len(steps) == 0 {
				return fmt.Errorf("could not map the query to any operations")
			}

			encoded, err := json.MarshalIndent(steps, "", "  ")
			if err != nil {
				return err
			}
			cmd.Println(string(encoded))

			if !execute {
				return nil
			}

			result := pipeline.New(registry).WithLogger(logger).Execute(cmd.Context(), steps)
			cmd.Println()
			cmd.Println(result.Summary())
			if !result.Success {
				return fmt.Errorf("pipeline failed at step %d: %s", *result.FailedStep, result.Error)
			}
			if result.FinalOutput != nil {
				final, err := json.MarshalIndent(result.FinalOutput, "", "  ")
				if err != nil {
					return err
				}
				cmd.Printf("\nFinal output:\n%s\n", final)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&execute, "execute", false, "execute the planned pipeline")
	cmd.Flags().BoolVar(&offline, "offline", false, "plan with keyword heuristics instead of the model")
	return cmd
}
