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
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

func newOperationsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "operations",
		Aliases: []string{"ops"},
		Short:   "List the available operations",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			registry, err := opts.registry(cfg)
			if err != nil {
				return err
			}
			metadata := registry.Metadata()

			if opts.jsonOutput {
				encoded, err := json.MarshalIndent(metadata, "", "  ")
				if err != nil {
					return err
				}
				cmd.Println(string(encoded))
				return nil
			}

			names := make([]string, 0, len(metadata))
			for name := range metadata {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				info := metadata[name]
				cmd.Printf("%-24s %s\n", name, info.Description)
				inputs := make([]string, 0, len(info.Inputs)+len(info.Optional))
				for input := range info.Inputs {
					inputs = append(inputs, input)
				}
				sort.Strings(inputs)
				optional := make([]string, 0, len(info.Optional))
				for input := range info.Optional {
					optional = append(optional, input+" (optional)")
				}
				sort.Strings(optional)
				inputs = append(inputs, optional...)
				if len(inputs) > 0 {
					cmd.Printf("%-24s inputs: %s\n", "", strings.Join(inputs, ", "))
				}
			}
			return nil
		},
	}
}
