package dashboard

import (
	"fmt"
	"net/url"
	"strings"
)

type currencyResponse struct {
	Date  string              `json:"date"`
	Rates map[string]*float64 `json:"rates"`
}

// NewCurrencyProvider fetches the latest USD to EUR rate.
func NewCurrencyProvider(client JSONGetter, endpoint string) Provider {
	const (
		base   = "USD"
		symbol = "EUR"
	)
	return &JSONSource[currencyResponse]{
		Name:   "Exchange rate API",
		Client: client,
		Loading: func(WidgetContext) string {
			return "Fetching " + base + "→" + symbol + " rate…"
		},
		Endpoint: func(WidgetContext) (string, error) {
			return withQuery(endpoint, url.Values{"base": {base}, "symbols": {symbol}})
		},
		Validate: func(_ WidgetContext, payload currencyResponse) error {
			rate := payload.Rates[symbol]
			if rate == nil || *rate == 0 || strings.TrimSpace(payload.Date) == "" {
				return ShapeError("Rate not found.")
			}
			return nil
		},
		Render: func(_ WidgetContext, payload currencyResponse) (Fragment, error) {
			return Fragment{
				Title:       fmt.Sprintf("1 %s = %.4f %s", base, *payload.Rates[symbol], symbol),
				Attribution: "Date: " + payload.Date + " · " + attribution("exchangerate.host"),
			}, nil
		},
	}
}
