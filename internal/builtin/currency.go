package builtin

import (
	"context"
	"strings"

	"github.com/tombee/cascade/internal/operation"
)

type currencyPair struct {
	from, to string
}

// Fixed rates for the mock catalog. Unknown pairs convert at 1.0.
var exchangeRates = map[currencyPair]float64{
	{"USD", "EUR"}: 0.85,
	{"EUR", "USD"}: 1.18,
	{"USD", "GBP"}: 0.73,
	{"GBP", "USD"}: 1.37,
	{"EUR", "GBP"}: 0.86,
	{"GBP", "EUR"}: 1.16,
}

func convertCurrency() operation.Definition {
	return operation.Definition{
		Name:        "convert_currency",
		Description: "Convert amount between currencies",
		Inputs: map[string]string{
			"amount":        "amount to convert",
			"from_currency": "source currency code, e.g. \"USD\"",
			"to_currency":   "target currency code, e.g. \"EUR\"",
		},
		Outputs: map[string]string{
			"converted_amount": "the amount in the target currency",
		},
		Run: func(_ context.Context, inputs map[string]any) (map[string]any, error) {
			amount, err := numberInput(inputs, "amount")
			if err != nil {
				return nil, err
			}
			from, err := stringInput(inputs, "from_currency")
			if err != nil {
				return nil, err
			}
			to, err := stringInput(inputs, "to_currency")
			if err != nil {
				return nil, err
			}
			rate, ok := exchangeRates[currencyPair{strings.ToUpper(from), strings.ToUpper(to)}]
			if !ok {
				rate = 1.0
			}
			return map[string]any{"converted_amount": amount * rate}, nil
		},
	}
}
