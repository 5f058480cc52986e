package builtin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/cascade/pkg/pipeline"
)

// End-to-end runs of the engine against the full catalog.

func TestInvoiceTotalPipeline(t *testing.T) {
	engine := pipeline.New(testCatalog(t, Config{}))
	result := engine.Execute(context.Background(), []pipeline.Step{
		{Operation: "get_invoices", Inputs: map[string]any{"month": "March"}},
		{Operation: "calculate_total", Inputs: map[string]any{"items": "$output_0.invoices", "field": "amount"}},
	})

	require.True(t, result.Success, "pipeline failed: %s", result.Error)
	final := result.FinalOutput.(map[string]any)
	assert.Equal(t, 7890.00, final["total"])
	assert.Equal(t, 4, final["count"])
}

func TestInvoiceReportPipelineWithAliases(t *testing.T) {
	mailer := &RecordingMailer{}
	engine := pipeline.New(testCatalog(t, Config{Mailer: mailer}))
	result := engine.Execute(context.Background(), []pipeline.Step{
		{Operation: "get_invoices", Inputs: map[string]any{"month": "December"}, OutputAlias: "invoices"},
		{Operation: "summarize_invoices", Inputs: map[string]any{"invoices": "{{invoices.invoices}}"}, OutputAlias: "report"},
		{Operation: "evaluate", Inputs: map[string]any{
			"expression": "total > 5000",
			"variables":  map[string]any{"total": "{{report.total_amount}}"},
		}},
		{Operation: "send_email", Inputs: map[string]any{
			"content":   "$output_1.summary",
			"recipient": "finance@example.com",
			"subject":   "December invoices",
		}},
	})

	require.True(t, result.Success, "pipeline failed: %s", result.Error)
	assert.Equal(t, true, result.History[2].Outputs["result"])
	require.Len(t, mailer.Messages, 1)
	assert.Contains(t, mailer.Messages[0].Body, "total_amount: 7890")

	// Aliased and positional bindings are both visible in the outputs.
	assert.Contains(t, result.Outputs, "invoices")
	assert.Contains(t, result.Outputs, "report")
	assert.Contains(t, result.Outputs, "output_3")
}

func TestHighValueInvoicePipeline(t *testing.T) {
	engine := pipeline.New(testCatalog(t, Config{}))
	result := engine.Execute(context.Background(), []pipeline.Step{
		{Operation: "get_invoices", Inputs: map[string]any{"month": "March"}},
		{
			Operation:   "filter_invoices_by_amount",
			Inputs:      map[string]any{"invoices": "$output_0.invoices", "min_amount": 2000.0},
			OutputAlias: "high_value",
		},
		{Operation: "calculate_total", Inputs: map[string]any{
			"items": "{{high_value.filtered_invoices}}",
			"field": "amount",
		}},
	})

	require.True(t, result.Success, "pipeline failed: %s", result.Error)
	final := result.FinalOutput.(map[string]any)
	assert.Equal(t, 5500.00, final["total"])
	assert.Equal(t, 2, final["count"])
}

func TestGroupAndPersistPipeline(t *testing.T) {
	dir := t.TempDir()
	engine := pipeline.New(testCatalog(t, Config{DataDir: dir}))
	result := engine.Execute(context.Background(), []pipeline.Step{
		{Operation: "get_invoices", Inputs: map[string]any{"month": "March"}},
		{Operation: "group_by_field", Inputs: map[string]any{"data": "$output_0.invoices", "field": "status"}},
		{Operation: "save_to_file", Inputs: map[string]any{"data": "$output_1.grouped_data", "filename": "by_status.json"}},
		{Operation: "read_from_file", Inputs: map[string]any{"filename": "by_status.json"}},
	})

	require.True(t, result.Success, "pipeline failed: %s", result.Error)
	final := result.FinalOutput.(map[string]any)
	restored := final["data"].(map[string]any)
	assert.Len(t, restored["paid"], 2)
}

func TestPipelineIdempotentForPureOperations(t *testing.T) {
	steps := []pipeline.Step{
		{Operation: "get_invoices", Inputs: map[string]any{"month": "March"}},
		{Operation: "summarize_invoices", Inputs: map[string]any{"invoices": "$output_0.invoices"}},
		{Operation: "check_prime", Inputs: map[string]any{"number": "$output_1.count"}},
	}
	first := pipeline.New(testCatalog(t, Config{})).Execute(context.Background(), steps)
	second := pipeline.New(testCatalog(t, Config{})).Execute(context.Background(), steps)

	require.True(t, first.Success)
	require.True(t, second.Success)
	assert.Equal(t, first.FinalOutput, second.FinalOutput)
	assert.Equal(t, first.Outputs, second.Outputs)
}

func TestPipelineFailureAttribution(t *testing.T) {
	engine := pipeline.New(testCatalog(t, Config{}))
	result := engine.Execute(context.Background(), []pipeline.Step{
		{Operation: "get_invoices", Inputs: map[string]any{"month": "March"}},
		{Operation: "add_numbers", Inputs: map[string]any{"a": "$output_0.count", "b": "$output_0.invoices.amount"}},
	})

	require.False(t, result.Success)
	require.NotNil(t, result.FailedStep)
	assert.Equal(t, 1, *result.FailedStep)
	assert.Len(t, result.History, 2)
	assert.Contains(t, result.Summary(), "✗ step 1: add_numbers")
}
