// Package pricing provides monthly cost values and the static price tables
// for providers whose APIs do not publish monthly prices.
package pricing

import (
	"fmt"
	"strconv"
)

// Currency codes.
const (
	CurrencyUSD = "USD"
	CurrencyEUR = "EUR"
)

// Money is a monthly amount in a currency. The zero value means unknown.
type Money struct {
	Amount   float64
	Currency string
}

// USD returns an amount in US dollars.
func USD(amount float64) Money {
	return Money{Amount: amount, Currency: CurrencyUSD}
}

// EUR returns an amount in euros.
func EUR(amount float64) Money {
	return Money{Amount: amount, Currency: CurrencyEUR}
}

// IsZero reports whether the cost is unknown.
func (m Money) IsZero() bool {
	return m.Currency == ""
}

// String formats the amount as "4.35 EUR/mo", or "unknown".
func (m Money) String() string {
	if m.IsZero() {
		return "unknown"
	}
	return fmt.Sprintf("%.2f %s/mo", m.Amount, m.Currency)
}

// ParsePrice converts a provider price string (e.g. "4.3500") to Money.
func ParsePrice(s, currency string) (Money, error) {
	if s == "" {
		return Money{}, fmt.Errorf("empty price")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Money{}, fmt.Errorf("invalid price %q: %w", s, err)
	}
	return Money{Amount: f, Currency: currency}, nil
}
