package builtin

import (
	"context"
	"strconv"

	"github.com/tombee/cascade/internal/operation"
)

func getCurrentTime(cfg Config) operation.Definition {
	return operation.Definition{
		Name:        "get_current_time",
		Description: "Get the current date and time",
		Inputs:      map[string]string{},
		Outputs: map[string]string{
			"current_time": "ISO-like date and time",
			"timestamp":    "Unix timestamp in seconds",
			"formatted":    "long human-readable form",
		},
		Run: func(_ context.Context, _ map[string]any) (map[string]any, error) {
			now := cfg.now()
			return map[string]any{
				"current_time": now.Format("2006-01-02 15:04:05"),
				"timestamp":    strconv.FormatInt(now.Unix(), 10),
				"formatted":    now.Format("Monday, January 02, 2006 at 03:04:05 PM"),
			}, nil
		},
	}
}
