package currency

import (
	"errors"
	"fmt"
	"sort"
)

// Code is an ISO 4217 currency code from the supported set
type Code string

// Supported currency codes
const (
	USD Code = "USD"
	EUR Code = "EUR"
	GBP Code = "GBP"
	INR Code = "INR"
	JPY Code = "JPY"
)

// ErrUnknownCurrency is returned when a code is outside the supported set
var ErrUnknownCurrency = errors.New("unknown currency code")

// staticRates expresses each currency relative to USD (USD = 1).
var staticRates = map[Code]float64{
	USD: 1,
	EUR: 0.92,
	GBP: 0.79,
	INR: 83.5,
	JPY: 150.0,
}

var symbols = map[Code]string{
	USD: "$",
	EUR: "€",
	GBP: "£",
	INR: "₹",
	JPY: "¥",
}

// Table holds the static exchange rates used for conversion. Conversion is
// a pure function over the table; a Table is safe for concurrent use.
type Table struct {
	rates map[Code]float64
}

// DefaultTable returns a table with the built-in static rates
func DefaultTable() *Table {
	return &Table{rates: staticRates}
}

// NewTable builds a table from an explicit rate set, e.g. one loaded from a
// rates file. Every rate must be positive.
func NewTable(rates map[string]float64) (*Table, error) {
	if len(rates) == 0 {
		return nil, fmt.Errorf("rate table must not be empty")
	}
	out := make(map[Code]float64, len(rates))
	for code, rate := range rates {
		if rate <= 0 {
			return nil, fmt.Errorf("rate for %s must be positive (got %v)", code, rate)
		}
		out[Code(code)] = rate
	}
	return &Table{rates: out}, nil
}

// Valid reports whether the code is in the supported set
func (t *Table) Valid(code Code) bool {
	_, ok := t.rates[code]
	return ok
}

// Codes returns the supported codes in sorted order
func (t *Table) Codes() []Code {
	codes := make([]Code, 0, len(t.rates))
	for code := range t.rates {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// Symbol returns the display symbol for a code, falling back to the code itself
func Symbol(code Code) string {
	if s, ok := symbols[code]; ok {
		return s
	}
	return string(code)
}

// Convert converts amount from one currency to another. Entries in overrides
// take precedence over the static table. Converting a currency to itself
// returns the amount unchanged to avoid a floating round trip.
func (t *Table) Convert(amount float64, from, to Code, overrides map[Code]float64) (float64, error) {
	if !t.Valid(from) {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCurrency, from)
	}
	if !t.Valid(to) {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCurrency, to)
	}

	if from == to {
		return amount, nil
	}

	return (amount / t.effectiveRate(from, overrides)) * t.effectiveRate(to, overrides), nil
}

func (t *Table) effectiveRate(code Code, overrides map[Code]float64) float64 {
	if rate, ok := overrides[code]; ok && rate > 0 {
		return rate
	}
	return t.rates[code]
}
