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

func newRunCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run <pipeline-file>",
		Short: "Execute a pipeline from a YAML or JSON file",
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

			engine := pipeline.New(registry).WithLogger(opts.logger())
			result := engine.Execute(cmd.Context(), steps)

			if opts.jsonOutput {
				encoded, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				cmd.Println(string(encoded))
			} else {
				cmd.Println(result.Summary())
				if result.Success && result.FinalOutput != nil {
					encoded, err := json.MarshalIndent(result.FinalOutput, "", "  ")
					if err != nil {
						return err
					}
					cmd.Printf("\nFinal output:\n%s\n", encoded)
				}
			}

			if !result.Success {
				return fmt.Errorf("pipeline failed at step %d: %s", *result.FailedStep, result.Error)
			}
			return nil
		},
	}
}
