package product

import (
	"github.com/angelmondragon/storefront/pkg/types"
	"github.com/shopspring/decimal"
)

// Product is the read-only catalog record served by the content API.
type Product struct {
	ID                 string       `json:"id"`
	Name               string       `json:"name"`
	Price              types.Amount `json:"price"`
	Description        string       `json:"description"`
	DiscountPercentage types.Amount `json:"discountPercentage"`
	ImageURL           string       `json:"imageUrl,omitempty"`
	Tags               []string     `json:"tags"`
}

var hundred = decimal.NewFromInt(100)

// DiscountedPrice applies the discount percentage and rounds to two places.
func (p Product) DiscountedPrice() decimal.Decimal {
	factor := hundred.Sub(p.DiscountPercentage.Decimal).Div(hundred)
	return p.Price.Mul(factor).Round(2)
}

// ProductDTO is the API projection of a product.
type ProductDTO struct {
	Product
	DiscountedPrice types.Amount `json:"discountedPrice"`
}

func NewProductDTO(p Product) ProductDTO {
	return ProductDTO{Product: p, DiscountedPrice: types.NewAmount(p.DiscountedPrice())}
}

// ProductListResult wraps a filtered catalog page.
type ProductListResult struct {
	Products []ProductDTO `json:"products"`
	Total    int          `json:"total"`
}

// rawProduct mirrors the query projection.
type rawProduct struct {
	ID                 string   `json:"_id"`
	Name               string   `json:"name"`
	Price              *float64 `json:"price"`
	ImageURL           string   `json:"imageUrl"`
	Description        string   `json:"description"`
	DiscountPercentage *float64 `json:"discountPercentage"`
	Image              *struct {
		Asset *struct {
			URL string `json:"url"`
		} `json:"asset"`
	} `json:"image"`
	Tags []string `json:"tags"`
}

func (r rawProduct) toProduct() Product {
	p := Product{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		ImageURL:    r.ImageURL,
		Tags:        r.Tags,
	}
	if r.Image != nil && r.Image.Asset != nil && r.Image.Asset.URL != "" {
		p.ImageURL = r.Image.Asset.URL
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if r.Price != nil && *r.Price > 0 {
		p.Price = types.NewAmount(decimal.NewFromFloat(*r.Price))
	}
	if r.DiscountPercentage != nil {
		discount := decimal.NewFromFloat(*r.DiscountPercentage)
		switch {
		case discount.IsNegative():
			discount = decimal.Zero
		case discount.GreaterThan(hundred):
			discount = hundred
		}
		p.DiscountPercentage = types.NewAmount(discount)
	}
	return p
}
