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

	"github.com/spf13/cobra"

	"github.com/tombee/cascade/pkg/pipeline"
)

func newValidateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <pipeline-file>",
		Short: "Validate a pipeline and preview its execution plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, err := loadSteps(args[0])
			if err != nil {
				return err
			}
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			registry, err := opts.registry(cfg)
			if err != nil {
				return err
			}

			report := pipeline.New(registry).DryRun(steps)

			if opts.jsonOutput {
				encoded, err := json.MarshalIndent(report, "", "  ")
				if err != nil {
					return err
				}
				cmd.Println(string(encoded))
			} else if report.Valid {
				cmd.Printf("✓ %s (%d steps)\n", report.Message, report.TotalSteps)
				for _, step := range report.Plan {
					cmd.Printf("  %d. %s", step.Step, step.Operation)
					if step.Description != "" {
						cmd.Printf(" - %s", step.Description)
					}
					cmd.Println()
				}
			} else {
				cmd.Printf("✗ %s\n", report.Error)
			}

			if !report.Valid {
				return fmt.Errorf("pipeline is invalid")
			}
			return nil
		},
	}
}
