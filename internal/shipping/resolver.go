// Package shipping resolves flat shipping fees from a city and postal code.
package shipping

import (
	"errors"
	"fmt"
	"strings"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	ErrCityNotFound       = errors.New("city not found")
	ErrPostalCodeNotFound = errors.New("no shipping charge available for this postal code")
)

// Resolver answers fee lookups against an immutable rate table.
type Resolver struct {
	cities []City
	fees   map[string]map[string]decimal.Decimal
}

// NewResolver indexes table. A nil table selects DefaultTable.
func NewResolver(table []City) *Resolver {
	if table == nil {
		table = DefaultTable
	}
	r := &Resolver{
		cities: make([]City, 0, len(table)),
		fees:   make(map[string]map[string]decimal.Decimal, len(table)),
	}
	for _, city := range table {
		codes := make(map[string]decimal.Decimal, len(city.Rates))
		rates := make([]Rate, len(city.Rates))
		copy(rates, city.Rates)
		for _, rate := range rates {
			codes[rate.PostalCode] = decimal.NewFromInt(rate.Fee)
		}
		r.fees[city.Name] = codes
		r.cities = append(r.cities, City{Name: city.Name, Rates: rates})
	}
	return r
}

// Resolve returns the flat fee for the pair. Lookups are exact: no trimming or case folding.
func (r *Resolver) Resolve(city, postalCode string) (decimal.Decimal, error) {
	codes, ok := r.fees[city]
	if !ok {
		return decimal.Zero, ErrCityNotFound
	}
	fee, ok := codes[postalCode]
	if !ok {
		return decimal.Zero, ErrPostalCodeNotFound
	}
	return fee, nil
}

// Quote validates the input and wraps lookup failures in typed errors for the API.
func (r *Resolver) Quote(city, postalCode string) (decimal.Decimal, error) {
	if strings.TrimSpace(city) == "" || strings.TrimSpace(postalCode) == "" {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "please select both city and postal code")
	}
	fee, err := r.Resolve(city, postalCode)
	if err != nil {
		details := map[string]string{"city": city, "postal_code": postalCode}
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, err.Error()).WithDetails(details)
	}
	return fee, nil
}

// Cities returns the table in its configured order.
func (r *Resolver) Cities() []City {
	out := make([]City, len(r.cities))
	for i, city := range r.cities {
		rates := make([]Rate, len(city.Rates))
		copy(rates, city.Rates)
		out[i] = City{Name: city.Name, Rates: rates}
	}
	return out
}

// PostalCodes lists the codes served in city, in table order.
func (r *Resolver) PostalCodes(city string) ([]string, error) {
	for _, c := range r.cities {
		if c.Name != city {
			continue
		}
		codes := make([]string, len(c.Rates))
		for i, rate := range c.Rates {
			codes[i] = rate.PostalCode
		}
		return codes, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrCityNotFound, city)
}
