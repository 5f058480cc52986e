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

// Package commands implements the cascade CLI.
package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tombee/cascade/internal/builtin"
	"github.com/tombee/cascade/internal/config"
	"github.com/tombee/cascade/internal/log"
	"github.com/tombee/cascade/internal/operation"
	"github.com/tombee/cascade/pkg/pipeline"
)

// BuildInfo carries version metadata injected at build time.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

type rootOptions struct {
	configPath string
	jsonOutput bool
	build      BuildInfo
}

// NewRootCommand assembles the cascade CLI.
func NewRootCommand(build BuildInfo) *cobra.Command {
	opts := &rootOptions{build: build}

	cmd := &cobra.Command{
		Use:           "cascade",
		Short:         "Run and plan operation pipelines",
		Long:          "Cascade executes ordered operation pipelines with data threaded between steps,\nand can plan pipelines from natural language via a local Ollama model.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file")
	cmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "emit JSON output")

	cmd.AddCommand(
		newRunCommand(opts),
		newValidateCommand(opts),
		newPlanCommand(opts),
		newOperationsCommand(opts),
		newVersionCommand(opts),
	)
	return cmd
}

func (o *rootOptions) config() (*config.Config, error) {
	return config.Load(o.configPath)
}

func (o *rootOptions) logger() *slog.Logger {
	return log.New(log.FromEnv())
}

func (o *rootOptions) registry(cfg *config.Config) (*operation.Registry, error) {
	registry := operation.NewRegistry()
	err := builtin.Register(registry, builtin.Config{
		RandomSeed: cfg.RandomSeed,
		Mailer:     cfg.Mailer(),
		DataDir:    cfg.DataDir,
	})
	if err != nil {
		return nil, fmt.Errorf("registering operations: %w", err)
	}
	return registry, nil
}

// stepsFile is the on-disk pipeline format: either a bare step list or a
// document with a steps key.
type stepsFile struct {
	Steps []pipeline.Step `yaml:"steps" json:"steps"`
}

// loadSteps reads a pipeline definition from a YAML or JSON file. YAML is a
// superset of JSON here, so one parser covers both.
func loadSteps(path string) ([]pipeline.Step, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pipeline file: %w", err)
	}

	var doc stepsFile
	if err := yaml.Unmarshal(data, &doc); err == nil && len(doc.Steps) > 0 {
		return doc.Steps, nil
	}

	var bare []pipeline.Step
	if err := yaml.Unmarshal(data, &bare); err != nil {
		return nil, fmt.Errorf("parsing pipeline file %s: %w", path, err)
	}
	if len(bare) == 0 {
		return nil, fmt.Errorf("pipeline file %s contains no steps", path)
	}
	return bare, nil
}
