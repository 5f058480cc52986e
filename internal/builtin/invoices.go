package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/tombee/cascade/internal/operation"
)

var monthNumbers = map[string]string{
	"january": "01", "february": "02", "march": "03", "april": "04",
	"may": "05", "june": "06", "july": "07", "august": "08",
	"september": "09", "october": "10", "november": "11", "december": "12",
}

func monthNumber(month string) string {
	if n, ok := monthNumbers[strings.ToLower(month)]; ok {
		return n
	}
	return "01"
}

// getInvoices serves fixture invoice data. The four amounts total 7890.00,
// which downstream consumers rely on.
func getInvoices() operation.Definition {
	return operation.Definition{
		Name:        "get_invoices",
		Description: "Retrieve invoices for a specific month",
		Inputs:      map[string]string{"month": "month name, e.g. \"March\""},
		Outputs: map[string]string{
			"invoices": "list of invoice records",
			"count":    "number of invoices",
			"month":    "the requested month",
		},
		Run: func(_ context.Context, inputs map[string]any) (map[string]any, error) {
			month, err := stringInput(inputs, "month")
			if err != nil {
				return nil, err
			}
			mm := monthNumber(month)
			invoices := []any{
				map[string]any{
					"id": "INV-001", "date": fmt.Sprintf("2024-%s-01", mm),
					"amount": 1500.00, "client": "ABC Corp", "status": "paid",
				},
				map[string]any{
					"id": "INV-002", "date": fmt.Sprintf("2024-%s-15", mm),
					"amount": 2300.00, "client": "XYZ Ltd", "status": "pending",
				},
				map[string]any{
					"id": "INV-003", "date": fmt.Sprintf("2024-%s-20", mm),
					"amount": 890.00, "client": "Tech Solutions", "status": "paid",
				},
				map[string]any{
					"id": "INV-004", "date": fmt.Sprintf("2024-%s-28", mm),
					"amount": 3200.00, "client": "Global Inc", "status": "overdue",
				},
			}
			return map[string]any{
				"invoices": invoices,
				"count":    len(invoices),
				"month":    month,
			}, nil
		},
	}
}

func filterInvoicesByAmount() operation.Definition {
	return operation.Definition{
		Name:        "filter_invoices_by_amount",
		Description: "Filter invoices by minimum amount",
		Inputs: map[string]string{
			"invoices":   "list of invoice records",
			"min_amount": "lowest amount to keep",
		},
		Outputs: map[string]string{
			"filtered_invoices": "invoices with amount >= min_amount",
		},
		Run: func(_ context.Context, inputs map[string]any) (map[string]any, error) {
			invoices, err := sliceInput(inputs, "invoices")
			if err != nil {
				return nil, err
			}
			min, err := numberInput(inputs, "min_amount")
			if err != nil {
				return nil, err
			}
			filtered := []any{}
			for _, item := range invoices {
				inv, ok := item.(map[string]any)
				if !ok {
					continue
				}
				if amount, ok := numberValue(inv["amount"]); ok && amount >= min {
					filtered = append(filtered, inv)
				}
			}
			return map[string]any{"filtered_invoices": filtered}, nil
		},
	}
}

func summarizeInvoices() operation.Definition {
	return operation.Definition{
		Name:        "summarize_invoices",
		Description: "Create a summary of invoice data with totals and statistics",
		Inputs:      map[string]string{"invoices": "list of invoice records"},
		Outputs: map[string]string{
			"summary":      "aggregate statistics",
			"total_amount": "sum of all invoice amounts",
			"count":        "number of invoices",
		},
		Run: func(_ context.Context, inputs map[string]any) (map[string]any, error) {
			invoices, err := sliceInput(inputs, "invoices")
			if err != nil {
				return nil, err
			}
			if len(invoices) == 0 {
				return map[string]any{
					"summary":      "No invoices found",
					"total_amount": 0.0,
					"count":        0,
				}, nil
			}

			var total float64
			statusCounts := map[string]int{}
			for _, item := range invoices {
				inv, ok := item.(map[string]any)
				if !ok {
					continue
				}
				if amount, ok := inv["amount"].(float64); ok {
					total += amount
				}
				status, _ := inv["status"].(string)
				if status == "" {
					status = "unknown"
				}
				statusCounts[status]++
			}

			summary := map[string]any{
				"total_invoices":   len(invoices),
				"total_amount":     total,
				"paid_invoices":    statusCounts["paid"],
				"pending_invoices": statusCounts["pending"],
				"status_breakdown": statusCounts,
				"average_amount":   total / float64(len(invoices)),
			}
			return map[string]any{
				"summary":      summary,
				"total_amount": total,
				"count":        len(invoices),
			}, nil
		},
	}
}
