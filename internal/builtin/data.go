package builtin

import (
	"context"
	"fmt"

	"github.com/tombee/cascade/internal/operation"
)

func groupByField() operation.Definition {
	return operation.Definition{
		Name:        "group_by_field",
		Description: "Group data by a specific field",
		Inputs: map[string]string{
			"data":  "list of records",
			"field": "field name to group on",
		},
		Outputs: map[string]string{
			"grouped_data": "map from field value to the records sharing it",
		},
		Run: func(_ context.Context, inputs map[string]any) (map[string]any, error) {
			data, err := sliceInput(inputs, "data")
			if err != nil {
				return nil, err
			}
			field, err := stringInput(inputs, "field")
			if err != nil {
				return nil, err
			}
			grouped := map[string]any{}
			for _, item := range data {
				record, ok := item.(map[string]any)
				if !ok {
					continue
				}
				key := "unknown"
				if v, present := record[field]; present && v != nil {
					key = fmt.Sprint(v)
				}
				group, _ := grouped[key].([]any)
				grouped[key] = append(group, record)
			}
			return map[string]any{"grouped_data": grouped}, nil
		},
	}
}

// filterByDateRange keeps records whose date field falls inside an inclusive
// range. Dates compare lexically, which is correct for ISO 8601 strings.
func filterByDateRange() operation.Definition {
	return operation.Definition{
		Name:        "filter_by_date_range",
		Description: "Filter data by date range",
		Inputs: map[string]string{
			"data":       "list of records",
			"date_field": "field holding the record's date",
			"start_date": "inclusive lower bound, e.g. \"2024-03-01\"",
			"end_date":   "inclusive upper bound, e.g. \"2024-03-31\"",
		},
		Outputs: map[string]string{
			"filtered_data": "records whose date is within the range",
		},
		Run: func(_ context.Context, inputs map[string]any) (map[string]any, error) {
			data, err := sliceInput(inputs, "data")
			if err != nil {
				return nil, err
			}
			dateField, err := stringInput(inputs, "date_field")
			if err != nil {
				return nil, err
			}
			start, err := stringInput(inputs, "start_date")
			if err != nil {
				return nil, err
			}
			end, err := stringInput(inputs, "end_date")
			if err != nil {
				return nil, err
			}
			filtered := []any{}
			for _, item := range data {
				record, ok := item.(map[string]any)
				if !ok {
					continue
				}
				date, ok := record[dateField].(string)
				if !ok || date == "" {
					continue
				}
				if start <= date && date <= end {
					filtered = append(filtered, record)
				}
			}
			return map[string]any{"filtered_data": filtered}, nil
		},
	}
}
