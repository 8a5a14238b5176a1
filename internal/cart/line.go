package cart

import (
	"bytes"
	"encoding/json"
	"math"

	product "github.com/angelmondragon/storefront/internal/products"
	"github.com/angelmondragon/storefront/pkg/types"
	"github.com/shopspring/decimal"
)

// DefaultPlaceholderImage is used for products without an image.
const DefaultPlaceholderImage = "/placeholder.jpg"

// Line is one cart row. Display fields are copied from the product when it is added.
type Line struct {
	ID                 string       `json:"id"`
	Name               string       `json:"name"`
	Price              types.Amount `json:"price"`
	Quantity           int          `json:"quantity"`
	ImageURL           string       `json:"imageUrl"`
	Description        string       `json:"description,omitempty"`
	DiscountPercentage types.Amount `json:"discountPercentage"`
	Tags               []string     `json:"tags,omitempty"`
}

// Subtotal is price times quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func newLine(p product.Product, placeholder string) Line {
	image := p.ImageURL
	if image == "" {
		image = placeholder
	}
	var tags []string
	if len(p.Tags) > 0 {
		tags = append(tags, p.Tags...)
	}
	return Line{
		ID:                 p.ID,
		Name:               p.Name,
		Price:              p.Price,
		Quantity:           1,
		ImageURL:           image,
		Description:        p.Description,
		DiscountPercentage: p.DiscountPercentage,
		Tags:               tags,
	}
}

// UnmarshalJSON decodes a persisted line. Missing, fractional, non-numeric or
// non-positive quantities load as 1.
func (l *Line) UnmarshalJSON(data []byte) error {
	type plain Line
	var aux struct {
		plain
		Quantity json.RawMessage `json:"quantity"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*l = Line(aux.plain)
	l.Quantity = coerceQuantity(aux.Quantity)
	return nil
}

func coerceQuantity(raw json.RawMessage) int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 1
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 1
	}
	if f < 1 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 1
	}
	return int(f)
}

func cloneLines(lines []Line) []Line {
	out := make([]Line, len(lines))
	for i, line := range lines {
		out[i] = line
		if line.Tags != nil {
			out[i].Tags = append([]string(nil), line.Tags...)
		}
	}
	return out
}
