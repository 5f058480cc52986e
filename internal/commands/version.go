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

	"github.com/spf13/cobra"
)

func newVersionCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.jsonOutput {
				encoded, err := json.MarshalIndent(map[string]string{
					"version":    opts.build.Version,
					"commit":     opts.build.Commit,
					"build_date": opts.build.BuildDate,
				}, "", "  ")
				if err != nil {
					return err
				}
				cmd.Println(string(encoded))
				return nil
			}
			cmd.Printf("cascade %s (commit %s, built %s)\n",
				opts.build.Version, opts.build.Commit, opts.build.BuildDate)
			return nil
		},
	}
}
