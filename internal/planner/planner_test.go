package planner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/cascade/pkg/pipeline"
)

var testMetadata = map[string]pipeline.OperationInfo{
	"get_invoices": {
		Description: "Retrieve invoices for a specific month",
		Inputs:      map[string]string{"month": "month name"},
		Outputs:     map[string]string{"invoices": "list of invoices"},
	},
	"calculate_total": {
		Description: "Calculate the total of a field",
		Inputs:      map[string]string{"items": "records", "field": "field name"},
		Outputs:     map[string]string{"total": "sum"},
	},
	"generate_id": {
		Description: "Generate a unique identifier",
		Inputs:      map[string]string{},
		Optional:    map[string]string{"prefix": "string prepended to the id"},
		Outputs:     map[string]string{"id": "a fresh id"},
	},
}

func TestBuildPromptListsOperations(t *testing.T) {
	prompt := buildPrompt("total invoices for March", testMetadata)
	assert.Contains(t, prompt, "Operation: calculate_total")
	assert.Contains(t, prompt, "Operation: get_invoices")
	assert.Contains(t, prompt, `"total invoices for March"`)
	assert.Contains(t, prompt, "$output_0")
	assert.Contains(t, prompt, "Optional inputs: prefix")
}

func TestExtractSteps(t *testing.T) {
	t.Run("bare array", func(t *testing.T) {
		steps, ok := extractSteps(`[{"function": "get_invoices", "inputs": {"month": "March"}}]`)
		require.True(t, ok)
		require.Len(t, steps, 1)
		assert.Equal(t, "get_invoices", steps[0].Operation)
		assert.Equal(t, "March", steps[0].Inputs["month"])
	})

	t.Run("array wrapped in prose and fences", func(t *testing.T) {
		text := "Here is the plan:\n```json\n[\n" +
			`{"function": "get_invoices", "inputs": {"month": "March"}},` + "\n" +
			`{"function": "calculate_total", "inputs": {"items": "$output_0.invoices", "field": "amount"}, "output_alias": "totals"}` +
			"\n]\n```\nLet me know if you need changes."
		steps, ok := extractSteps(text)
		require.True(t, ok)
		require.Len(t, steps, 2)
		assert.Equal(t, "totals", steps[1].OutputAlias)
	})

	t.Run("invalid entries dropped", func(t *testing.T) {
		steps, ok := extractSteps(`[{"function": "get_invoices", "inputs": {"month": "May"}}, {"inputs": {}}, {"function": "x"}]`)
		require.True(t, ok)
		assert.Len(t, steps, 1)
	})

	t.Run("no array", func(t *testing.T) {
		_, ok := extractSteps("I cannot help with that.")
		assert.False(t, ok)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, ok := extractSteps(`[{"function": get_invoices}]`)
		assert.False(t, ok)
	})
}

func ollamaStub(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		assert.NotEmpty(t, req.Model)
		require.Len(t, req.Messages, 2)
		json.NewEncoder(w).Encode(chatResponse{
			Message: chatMessage{Role: "assistant", Content: reply},
		})
	})
	mux.HandleFunc("GET /api/tags", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"models": [{"name": "mistral:7b"}, {"name": "llama3:8b"}]}`))
	})
	return httptest.NewServer(mux)
}

func TestOllamaPlan(t *testing.T) {
	server := ollamaStub(t, `Sure! [{"function": "get_invoices", "inputs": {"month": "March"}}]`)
	defer server.Close()

	p := NewOllama(OllamaConfig{Host: server.URL})
	steps, err := p.Plan(context.Background(), "get invoices for March", testMetadata)
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, "get_invoices", steps[0].Operation)
}

func TestOllamaPlanFallsBackOnProse(t *testing.T) {
	server := ollamaStub(t, "I think you want the current time now.")
	defer server.Close()

	p := NewOllama(OllamaConfig{Host: server.URL})
	steps, err := p.Plan(context.Background(), "what time is it", testMetadata)
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, "get_current_time", steps[0].Operation)
}

func TestOllamaPlanServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	p := NewOllama(OllamaConfig{Host: server.URL})
	_, err := p.Plan(context.Background(), "anything", testMetadata)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestOllamaPing(t *testing.T) {
	server := ollamaStub(t, "")
	defer server.Close()

	t.Run("model present", func(t *testing.T) {
		p := NewOllama(OllamaConfig{Host: server.URL, Model: "mistral:7b"})
		assert.NoError(t, p.Ping(context.Background()))
	})

	t.Run("model missing", func(t *testing.T) {
		p := NewOllama(OllamaConfig{Host: server.URL, Model: "gemma:2b"})
		err := p.Ping(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "gemma:2b")
	})
}

func TestOllamaSummarize(t *testing.T) {
	server := ollamaStub(t, "Four invoices totaling 7890.00, mostly paid.")
	defer server.Close()

	p := NewOllama(OllamaConfig{Host: server.URL})
	summary, err := p.Summarize(context.Background(), map[string]any{"total": 7890.0}, "invoice report")
	require.NoError(t, err)
	assert.Contains(t, summary, "7890")
}

func TestFallbackPlan(t *testing.T) {
	var f Fallback
	plan := func(query string) []pipeline.Step {
		steps, err := f.Plan(context.Background(), query, nil)
		require.NoError(t, err)
		return steps
	}

	t.Run("email validation extracts the address", func(t *testing.T) {
		steps := plan("is this email valid: alice@example.org?")
		require.Len(t, steps, 1)
		assert.Equal(t, "validate_email", steps[0].Operation)
		assert.Equal(t, "alice@example.org", steps[0].Inputs["email"])
	})

	t.Run("invoice summary chain", func(t *testing.T) {
		steps := plan("summarize the invoices for December and send email to finance@example.com")
		require.Len(t, steps, 3)
		assert.Equal(t, "get_invoices", steps[0].Operation)
		assert.Equal(t, "December", steps[0].Inputs["month"])
		assert.Equal(t, "summarize_invoices", steps[1].Operation)
		assert.Equal(t, "send_email", steps[2].Operation)
		assert.Equal(t, "$output_1", steps[2].Inputs["content"])
		assert.Equal(t, "finance@example.com", steps[2].Inputs["recipient"])
	})

	t.Run("prime check", func(t *testing.T) {
		steps := plan("is 17 prime?")
		require.Len(t, steps, 1)
		assert.Equal(t, "check_prime", steps[0].Operation)
	})

	t.Run("unmatched query", func(t *testing.T) {
		assert.Empty(t, plan("translate this to French"))
	})
}

func TestFallbackIsCaseInsensitive(t *testing.T) {
	steps := keywordSteps("CONVERT THIS TO UPPERCASE")
	if len(steps) != 1 || steps[0].Operation != "uppercase_string" {
		t.Fatalf("steps = %+v", steps)
	}
	if !strings.Contains(steps[0].Inputs["text"].(string), "hello") {
		t.Errorf("placeholder text missing: %v", steps[0].Inputs)
	}
}
