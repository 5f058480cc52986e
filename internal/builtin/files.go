package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tombee/cascade/internal/operation"
)

// File operations report I/O problems inside their outputs rather than
// failing the step, so a pipeline that saves a report still completes and
// carries the error text in its result.

func saveToFile(cfg Config) operation.Definition {
	return operation.Definition{
		Name:        "save_to_file",
		Description: "Save data to a JSON file",
		Inputs: map[string]string{
			"data":     "value to save",
			"filename": "file name within the data directory",
		},
		Outputs: map[string]string{
			"filepath": "where the file was written, or an error description",
		},
		Run: func(_ context.Context, inputs map[string]any) (map[string]any, error) {
			data, ok := inputs["data"]
			if !ok {
				return nil, fmt.Errorf("missing input %q", "data")
			}
			filename, err := stringInput(inputs, "filename")
			if err != nil {
				return nil, err
			}
			path := filepath.Join(cfg.dataDir(), filepath.Base(filename))
			payload, err := json.MarshalIndent(data, "", "  ")
			if err != nil {
				return map[string]any{"filepath": fmt.Sprintf("Error saving file: %v", err)}, nil
			}
			if err := os.MkdirAll(cfg.dataDir(), 0o755); err != nil {
				return map[string]any{"filepath": fmt.Sprintf("Error saving file: %v", err)}, nil
			}
			if err := os.WriteFile(path, payload, 0o644); err != nil {
				return map[string]any{"filepath": fmt.Sprintf("Error saving file: %v", err)}, nil
			}
			return map[string]any{"filepath": path}, nil
		},
	}
}

func readFromFile(cfg Config) operation.Definition {
	return operation.Definition{
		Name:        "read_from_file",
		Description: "Read data from a JSON file",
		Inputs: map[string]string{
			"filename": "file name within the data directory",
		},
		Outputs: map[string]string{
			"data": "the decoded file contents, or an error description",
		},
		Run: func(_ context.Context, inputs map[string]any) (map[string]any, error) {
			filename, err := stringInput(inputs, "filename")
			if err != nil {
				return nil, err
			}
			path := filepath.Join(cfg.dataDir(), filepath.Base(filename))
			payload, err := os.ReadFile(path)
			if err != nil {
				return map[string]any{"data": fmt.Sprintf("Error reading file: %v", err)}, nil
			}
			var data any
			if err := json.Unmarshal(payload, &data); err != nil {
				return map[string]any{"data": fmt.Sprintf("Error reading file: %v", err)}, nil
			}
			return map[string]any{"data": data}, nil
		},
	}
}
