package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/tombee/cascade/pkg/errors"
	"github.com/tombee/cascade/pkg/pipeline"
)

// OllamaConfig configures the Ollama-backed planner.
type OllamaConfig struct {
	Host    string        `yaml:"host"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

const (
	defaultOllamaHost  = "http://localhost:11434"
	defaultOllamaModel = "mistral:7b"
)

// OllamaPlanner plans pipelines by prompting a model served by a local
// Ollama instance over its chat API.
type OllamaPlanner struct {
	cfg    OllamaConfig
	client *http.Client
	logger *slog.Logger
}

// NewOllama creates a planner for the given Ollama instance. Zero config
// fields get defaults: localhost:11434, mistral:7b, 60s timeout.
func NewOllama(cfg OllamaConfig) *OllamaPlanner {
	if cfg.Host == "" {
		cfg.Host = defaultOllamaHost
	}
	if cfg.Model == "" {
		cfg.Model = defaultOllamaModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &OllamaPlanner{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: slog.Default(),
	}
}

// WithLogger sets the planner's logger.
func (p *OllamaPlanner) WithLogger(logger *slog.Logger) *OllamaPlanner {
	p.logger = logger
	return p
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string         `json:"model"`
	Messages []chatMessage  `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Error   string      `json:"error,omitempty"`
}

// Plan implements Planner. Malformed model output falls back to keyword
// extraction over the response text before giving up.
func (p *OllamaPlanner) Plan(ctx context.Context, query string, metadata map[string]pipeline.OperationInfo) ([]pipeline.Step, error) {
	content, err := p.chat(ctx, chatRequest{
		Model: p.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a function planning AI. Analyze user queries and return a JSON array of function calls."},
			{Role: "user", Content: buildPrompt(query, metadata)},
		},
		Options: map[string]any{
			"temperature": 0.1,
			"top_p":       0.9,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "planning query")
	}

	steps, ok := extractSteps(content)
	if !ok {
		p.logger.Warn("model output was not a JSON plan, trying keyword extraction",
			slog.Int("response_bytes", len(content)))
		return keywordSteps(content), nil
	}
	p.logger.Debug("planned pipeline", slog.Int("steps", len(steps)))
	return steps, nil
}

// Summarize asks the model for a short natural-language summary of data.
func (p *OllamaPlanner) Summarize(ctx context.Context, data any, contextNote string) (string, error) {
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "encoding data for summary")
	}
	prompt := fmt.Sprintf("Generate a clear, concise summary of the following data:\n\nContext: %s\nData: %s\n\nProvide a human-readable summary in 2-3 sentences.\n",
		contextNote, encoded)

	content, err := p.chat(ctx, chatRequest{
		Model: p.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a data analyst that creates clear, concise summaries."},
			{Role: "user", Content: prompt},
		},
		Options: map[string]any{"temperature": 0.3},
	})
	if err != nil {
		return "", errors.Wrap(err, "generating summary")
	}
	return content, nil
}

// Ping reports whether the Ollama instance is reachable and serves the
// configured model.
func (p *OllamaPlanner) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.Host+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "connecting to ollama")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return errors.Wrap(err, "decoding model list")
	}
	for _, model := range tags.Models {
		if model.Name == p.cfg.Model {
			return nil
		}
	}
	return &errors.NotFoundError{Resource: "model", ID: p.cfg.Model}
}

func (p *OllamaPlanner) chat(ctx context.Context, request chatRequest) (string, error) {
	request.Stream = false
	body, err := json.Marshal(request)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.Host+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("ollama chat returned status %d: %s", resp.StatusCode, payload)
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", errors.Wrap(err, "decoding chat response")
	}
	if decoded.Error != "" {
		return "", fmt.Errorf("ollama: %s", decoded.Error)
	}
	return decoded.Message.Content, nil
}
