package product

import (
	"context"
	"sort"
	"strings"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

const (
	SortBestMatch    = "best-match"
	SortPriceLowHigh = "price-low-high"
	SortPriceHighLow = "price-high-low"

	MaxListLimit = 100
)

// ListParams narrows and orders the catalog.
type ListParams struct {
	Search string
	Tag    string
	Sort   string
	Limit  int
}

// Service exposes catalog reads.
type Service interface {
	ListProducts(ctx context.Context, params ListParams) (*ProductListResult, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
}

type service struct {
	catalog Catalog
}

// NewService builds a catalog service over the provided source.
func NewService(catalog Catalog) (Service, error) {
	if catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog is required")
	}
	return &service{catalog: catalog}, nil
}

func (s *service) ListProducts(ctx context.Context, params ListParams) (*ProductListResult, error) {
	if err := params.normalize(); err != nil {
		return nil, err
	}
	all, err := s.catalog.List(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]Product, 0, len(all))
	for _, p := range all {
		if params.matches(p) {
			filtered = append(filtered, p)
		}
	}

	switch params.Sort {
	case SortPriceLowHigh:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].Price.LessThan(filtered[j].Price.Decimal)
		})
	case SortPriceHighLow:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].Price.GreaterThan(filtered[j].Price.Decimal)
		})
	}

	total := len(filtered)
	if params.Limit > 0 && len(filtered) > params.Limit {
		filtered = filtered[:params.Limit]
	}

	out := make([]ProductDTO, 0, len(filtered))
	for _, p := range filtered {
		out = append(out, NewProductDTO(p))
	}
	return &ProductListResult{Products: out, Total: total}, nil
}

func (s *service) GetProduct(ctx context.Context, id string) (*Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	return s.catalog.Get(ctx, id)
}

func (p *ListParams) normalize() error {
	p.Search = strings.ToLower(strings.TrimSpace(p.Search))
	p.Tag = strings.TrimSpace(p.Tag)
	p.Sort = strings.ToLower(strings.TrimSpace(p.Sort))
	switch p.Sort {
	case "":
		p.Sort = SortBestMatch
	case SortBestMatch, SortPriceLowHigh, SortPriceHighLow:
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, "unsupported sort").
			WithDetails(map[string]any{"sort": p.Sort, "allowed": []string{SortBestMatch, SortPriceLowHigh, SortPriceHighLow}})
	}
	if p.Limit < 0 || p.Limit > MaxListLimit {
		return pkgerrors.New(pkgerrors.CodeValidation, "limit must be between 1 and 100").
			WithDetails(map[string]any{"limit": p.Limit})
	}
	return nil
}

func (p ListParams) matches(product Product) bool {
	if p.Tag != "" {
		found := false
		for _, tag := range product.Tags {
			if strings.EqualFold(tag, p.Tag) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if p.Search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(product.Name), p.Search) ||
		strings.Contains(strings.ToLower(product.Description), p.Search)
}
