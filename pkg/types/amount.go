package types

import (
	"bytes"

	"github.com/shopspring/decimal"
)

// Amount is a decimal value that serializes as a bare JSON number.
type Amount struct {
	decimal.Decimal
}

// NewAmount wraps d.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

// AmountFromInt builds an Amount from a whole number.
func AmountFromInt(v int64) Amount {
	return Amount{Decimal: decimal.NewFromInt(v)}
}

// MarshalJSON implements json.Marshaler.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

// UnmarshalJSON accepts numbers, numeric strings and null (zero).
func (a *Amount) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		a.Decimal = decimal.Zero
		return nil
	}
	return a.Decimal.UnmarshalJSON(trimmed)
}
