package builtin

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/cascade/internal/operation"
)

func testCatalog(t *testing.T, cfg Config) *operation.Registry {
	t.Helper()
	reg := operation.NewRegistry()
	require.NoError(t, Register(reg, cfg))
	return reg
}

func invokeOp(t *testing.T, reg *operation.Registry, name string, inputs map[string]any) map[string]any {
	t.Helper()
	op, err := reg.Lookup(name)
	require.NoError(t, err)
	out, err := op.Invoke(context.Background(), inputs)
	require.NoError(t, err)
	return out
}

func TestGetInvoices(t *testing.T) {
	reg := testCatalog(t, Config{})
	out := invokeOp(t, reg, "get_invoices", map[string]any{"month": "March"})

	invoices := out["invoices"].([]any)
	assert.Len(t, invoices, 4)
	assert.Equal(t, 4, out["count"])
	assert.Equal(t, "March", out["month"])

	var total float64
	for _, item := range invoices {
		inv := item.(map[string]any)
		total += inv["amount"].(float64)
		assert.Contains(t, inv["date"], "2024-03-")
	}
	assert.Equal(t, 7890.00, total)
}

func TestSummarizeInvoices(t *testing.T) {
	reg := testCatalog(t, Config{})
	fetched := invokeOp(t, reg, "get_invoices", map[string]any{"month": "December"})
	out := invokeOp(t, reg, "summarize_invoices", map[string]any{"invoices": fetched["invoices"]})

	assert.Equal(t, 7890.00, out["total_amount"])
	assert.Equal(t, 4, out["count"])
	summary := out["summary"].(map[string]any)
	assert.Equal(t, 4, summary["total_invoices"])
	assert.Equal(t, 2, summary["paid_invoices"])
	assert.Equal(t, 1, summary["pending_invoices"])
	assert.InDelta(t, 1972.50, summary["average_amount"], 0.001)
}

func TestSummarizeInvoicesEmpty(t *testing.T) {
	reg := testCatalog(t, Config{})
	out := invokeOp(t, reg, "summarize_invoices", map[string]any{"invoices": []any{}})
	assert.Equal(t, "No invoices found", out["summary"])
	assert.Equal(t, 0.0, out["total_amount"])
	assert.Equal(t, 0, out["count"])
}

func TestCalculateTotal(t *testing.T) {
	reg := testCatalog(t, Config{})
	items := []any{
		map[string]any{"amount": 10.5},
		map[string]any{"amount": 4},
		map[string]any{"amount": "not a number"},
		map[string]any{"other": 99.0},
	}
	out := invokeOp(t, reg, "calculate_total", map[string]any{"items": items, "field": "amount"})
	assert.Equal(t, 14.5, out["total"])
	assert.Equal(t, 4, out["count"])
	assert.Equal(t, "amount", out["field"])
}

func TestAddNumbers(t *testing.T) {
	reg := testCatalog(t, Config{})
	out := invokeOp(t, reg, "add_numbers", map[string]any{"a": 2.5, "b": 4})
	assert.Equal(t, 6.5, out["result"])
	assert.Equal(t, "2.5 + 4 = 6.5", out["operation"])
}

func TestAddNumbersRejectsStrings(t *testing.T) {
	reg := testCatalog(t, Config{})
	op, err := reg.Lookup("add_numbers")
	require.NoError(t, err)
	_, err = op.Invoke(context.Background(), map[string]any{"a": "two", "b": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"a"`)
}

func TestCheckPrime(t *testing.T) {
	reg := testCatalog(t, Config{})
	tests := []struct {
		number int
		prime  bool
	}{
		{-3, false}, {0, false}, {1, false}, {2, true}, {3, true},
		{4, false}, {17, true}, {25, false}, {7919, true},
	}
	for _, tt := range tests {
		out := invokeOp(t, reg, "check_prime", map[string]any{"number": tt.number})
		assert.Equal(t, tt.prime, out["is_prime"], "number %d", tt.number)
		assert.Equal(t, tt.number, out["number"])
		assert.NotEmpty(t, out["explanation"])
	}
}

func TestGenerateRandomNumber(t *testing.T) {
	reg := testCatalog(t, Config{RandomSeed: 42})
	out := invokeOp(t, reg, "generate_random_number", map[string]any{"min_val": 1.0, "max_val": 10.0})
	n := out["random_number"].(float64)
	assert.GreaterOrEqual(t, n, 1.0)
	assert.LessOrEqual(t, n, 10.0)
	assert.Equal(t, "between 1 and 10", out["range"])

	// Inverted bounds are swapped, not rejected.
	out = invokeOp(t, reg, "generate_random_number", map[string]any{"min_val": 10.0, "max_val": 1.0})
	n = out["random_number"].(float64)
	assert.GreaterOrEqual(t, n, 1.0)
	assert.LessOrEqual(t, n, 10.0)
}

func TestGenerateRandomNumberDeterministicWithSeed(t *testing.T) {
	inputs := map[string]any{"min_val": 0.0, "max_val": 100.0}
	first := invokeOp(t, testCatalog(t, Config{RandomSeed: 7}), "generate_random_number", inputs)
	second := invokeOp(t, testCatalog(t, Config{RandomSeed: 7}), "generate_random_number", inputs)
	assert.Equal(t, first["random_number"], second["random_number"])
}

func TestUppercaseString(t *testing.T) {
	reg := testCatalog(t, Config{})
	out := invokeOp(t, reg, "uppercase_string", map[string]any{"text": "hello Cascade"})
	assert.Equal(t, "HELLO CASCADE", out["uppercase_text"])
	assert.Equal(t, "hello Cascade", out["original"])
}

func TestGetCurrentTimeUsesInjectedClock(t *testing.T) {
	fixed := time.Date(2024, 3, 15, 14, 30, 5, 0, time.UTC)
	reg := testCatalog(t, Config{Now: func() time.Time { return fixed }})
	out := invokeOp(t, reg, "get_current_time", map[string]any{})
	assert.Equal(t, "2024-03-15 14:30:05", out["current_time"])
	assert.Equal(t, "1710513005", out["timestamp"])
	assert.Equal(t, "Friday, March 15, 2024 at 02:30:05 PM", out["formatted"])
}

func TestValidateEmail(t *testing.T) {
	reg := testCatalog(t, Config{})
	tests := []struct {
		email string
		valid bool
	}{
		{"user@example.com", true},
		{"first.last+tag@sub.domain.co", true},
		{"no-at-sign", false},
		{"missing@tld", false},
		{"@example.com", false},
		{"user @example.com", false},
	}
	for _, tt := range tests {
		out := invokeOp(t, reg, "validate_email", map[string]any{"email": tt.email})
		assert.Equal(t, tt.valid, out["is_valid"], "email %q", tt.email)
		assert.Equal(t, tt.email, out["email"])
	}
}

func TestSendEmail(t *testing.T) {
	mailer := &RecordingMailer{}
	reg := testCatalog(t, Config{Mailer: mailer})
	out := invokeOp(t, reg, "send_email", map[string]any{
		"content":   map[string]any{"total": 7890.0, "invoices": []any{"INV-001"}},
		"recipient": "finance@example.com",
		"subject":   "Monthly report",
	})

	assert.Equal(t, "Email sent successfully", out["status"])
	assert.Equal(t, "finance@example.com", out["recipient"])
	require.Len(t, mailer.Messages, 1)
	msg := mailer.Messages[0]
	assert.Equal(t, "Monthly report", msg.Subject)
	assert.Contains(t, msg.Body, "total: 7890")
	assert.Contains(t, msg.Body, "INV-001")
}

func TestSendEmailDeliveryFailureReportedInStatus(t *testing.T) {
	mailer := &RecordingMailer{Err: assert.AnError}
	reg := testCatalog(t, Config{Mailer: mailer})
	out := invokeOp(t, reg, "send_email", map[string]any{
		"content":   "report",
		"recipient": "finance@example.com",
		"subject":   "Report",
	})
	// A failed delivery does not fail the step.
	assert.Contains(t, out["status"], "Error")
}

func TestSendEmailDefaultSubject(t *testing.T) {
	mailer := &RecordingMailer{}
	reg := testCatalog(t, Config{Mailer: mailer})
	out := invokeOp(t, reg, "send_email", map[string]any{
		"content":   "report",
		"recipient": "a@b.co",
		"subject":   "",
	})
	assert.Equal(t, "Automated Report", out["subject"])
}

func TestGenerateID(t *testing.T) {
	reg := testCatalog(t, Config{})
	first := invokeOp(t, reg, "generate_id", map[string]any{})
	second := invokeOp(t, reg, "generate_id", map[string]any{})
	assert.NotEqual(t, first["id"], second["id"])

	prefixed := invokeOp(t, reg, "generate_id", map[string]any{"prefix": "run"})
	assert.True(t, strings.HasPrefix(prefixed["id"].(string), "run-"))
}

func TestTransformJSON(t *testing.T) {
	reg := testCatalog(t, Config{})
	data := map[string]any{
		"invoices": []any{
			map[string]any{"amount": 100.0},
			map[string]any{"amount": 250.0},
		},
	}

	out := invokeOp(t, reg, "transform_json", map[string]any{
		"data":  data,
		"query": ".invoices | length",
	})
	assert.EqualValues(t, 2, out["result"])

	out = invokeOp(t, reg, "transform_json", map[string]any{
		"data":  data,
		"query": ".invoices[].amount",
	})
	assert.Equal(t, []any{100.0, 250.0}, out["result"])
}

func TestTransformJSONInvalidQuery(t *testing.T) {
	reg := testCatalog(t, Config{})
	op, err := reg.Lookup("transform_json")
	require.NoError(t, err)
	_, err = op.Invoke(context.Background(), map[string]any{"data": 1, "query": ".["})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jq")
}

func TestEvaluate(t *testing.T) {
	reg := testCatalog(t, Config{})

	out := invokeOp(t, reg, "evaluate", map[string]any{
		"expression": "total > 5000 && count >= 2",
		"variables":  map[string]any{"total": 7890.0, "count": 4},
	})
	assert.Equal(t, true, out["result"])

	out = invokeOp(t, reg, "evaluate", map[string]any{
		"expression": "1 + 2 * 3",
	})
	assert.EqualValues(t, 7, out["result"])
}

func TestEvaluateBadExpression(t *testing.T) {
	reg := testCatalog(t, Config{})
	op, err := reg.Lookup("evaluate")
	require.NoError(t, err)
	_, err = op.Invoke(context.Background(), map[string]any{"expression": "1 +"})
	require.Error(t, err)
}

func TestFilterInvoicesByAmount(t *testing.T) {
	reg := testCatalog(t, Config{})
	fetched := invokeOp(t, reg, "get_invoices", map[string]any{"month": "March"})
	out := invokeOp(t, reg, "filter_invoices_by_amount", map[string]any{
		"invoices":   fetched["invoices"],
		"min_amount": 1000.0,
	})

	filtered := out["filtered_invoices"].([]any)
	require.Len(t, filtered, 3)
	for _, item := range filtered {
		inv := item.(map[string]any)
		assert.GreaterOrEqual(t, inv["amount"].(float64), 1000.0)
	}
}

func TestFilterInvoicesByAmountKeepsNoneAboveMax(t *testing.T) {
	reg := testCatalog(t, Config{})
	fetched := invokeOp(t, reg, "get_invoices", map[string]any{"month": "March"})
	out := invokeOp(t, reg, "filter_invoices_by_amount", map[string]any{
		"invoices":   fetched["invoices"],
		"min_amount": 5000.0,
	})
	assert.Empty(t, out["filtered_invoices"])
}

func TestGroupByField(t *testing.T) {
	reg := testCatalog(t, Config{})
	fetched := invokeOp(t, reg, "get_invoices", map[string]any{"month": "March"})
	out := invokeOp(t, reg, "group_by_field", map[string]any{
		"data":  fetched["invoices"],
		"field": "status",
	})

	grouped := out["grouped_data"].(map[string]any)
	assert.Len(t, grouped["paid"], 2)
	assert.Len(t, grouped["pending"], 1)
	assert.Len(t, grouped["overdue"], 1)
}

func TestGroupByFieldMissingFieldIsUnknown(t *testing.T) {
	reg := testCatalog(t, Config{})
	out := invokeOp(t, reg, "group_by_field", map[string]any{
		"data":  []any{map[string]any{"other": 1.0}},
		"field": "status",
	})
	grouped := out["grouped_data"].(map[string]any)
	assert.Len(t, grouped["unknown"], 1)
}

func TestFilterByDateRange(t *testing.T) {
	reg := testCatalog(t, Config{})
	fetched := invokeOp(t, reg, "get_invoices", map[string]any{"month": "March"})
	out := invokeOp(t, reg, "filter_by_date_range", map[string]any{
		"data":       fetched["invoices"],
		"date_field": "date",
		"start_date": "2024-03-10",
		"end_date":   "2024-03-25",
	})

	filtered := out["filtered_data"].([]any)
	require.Len(t, filtered, 2)
	assert.Equal(t, "INV-002", filtered[0].(map[string]any)["id"])
	assert.Equal(t, "INV-003", filtered[1].(map[string]any)["id"])
}

func TestFilterByDateRangeSkipsRecordsWithoutDate(t *testing.T) {
	reg := testCatalog(t, Config{})
	out := invokeOp(t, reg, "filter_by_date_range", map[string]any{
		"data":       []any{map[string]any{"id": "X-1"}},
		"date_field": "date",
		"start_date": "2024-01-01",
		"end_date":   "2024-12-31",
	})
	assert.Empty(t, out["filtered_data"])
}

func TestSaveAndReadFile(t *testing.T) {
	reg := testCatalog(t, Config{DataDir: t.TempDir()})
	data := map[string]any{"total": 7890.0, "month": "March"}

	saved := invokeOp(t, reg, "save_to_file", map[string]any{
		"data":     data,
		"filename": "report.json",
	})
	path, ok := saved["filepath"].(string)
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(path, "report.json"))

	read := invokeOp(t, reg, "read_from_file", map[string]any{"filename": "report.json"})
	assert.Equal(t, data, read["data"])
}

func TestReadFromMissingFileReportsInOutput(t *testing.T) {
	reg := testCatalog(t, Config{DataDir: t.TempDir()})
	out := invokeOp(t, reg, "read_from_file", map[string]any{"filename": "absent.json"})
	// I/O problems surface in the output, not as step failures.
	assert.Contains(t, out["data"], "Error reading file")
}

func TestConvertCurrency(t *testing.T) {
	reg := testCatalog(t, Config{})
	tests := []struct {
		from, to string
		want     float64
	}{
		{"USD", "EUR", 85.0},
		{"EUR", "USD", 118.0},
		{"gbp", "usd", 137.0},
		{"USD", "JPY", 100.0}, // unknown pair converts at 1.0
	}
	for _, tt := range tests {
		out := invokeOp(t, reg, "convert_currency", map[string]any{
			"amount":        100.0,
			"from_currency": tt.from,
			"to_currency":   tt.to,
		})
		assert.InDelta(t, tt.want, out["converted_amount"], 0.001, "%s->%s", tt.from, tt.to)
	}
}

func TestCatalogAdvertisesOptionalInputs(t *testing.T) {
	reg := testCatalog(t, Config{})
	metadata := reg.Metadata()

	assert.Contains(t, metadata["evaluate"].Optional, "variables")
	assert.NotContains(t, metadata["evaluate"].Inputs, "variables")
	assert.Contains(t, metadata["generate_id"].Optional, "prefix")
}
