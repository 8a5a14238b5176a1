package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	"github.com/angelmondragon/storefront/internal/session"
	"github.com/angelmondragon/storefront/internal/shipping"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/types"
)

type cityResponse struct {
	Name  string         `json:"name"`
	Rates []rateResponse `json:"rates"`
}

type rateResponse struct {
	PostalCode string       `json:"postal_code"`
	Fee        types.Amount `json:"fee"`
}

// ShippingCities lists the destinations and their postal codes.
func ShippingCities(svc session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cities := svc.Cities()
		out := make([]cityResponse, 0, len(cities))
		for _, city := range cities {
			rates := make([]rateResponse, 0, len(city.Rates))
			for _, rate := range city.Rates {
				rates = append(rates, rateResponse{PostalCode: rate.PostalCode, Fee: types.AmountFromInt(rate.Fee)})
			}
			out = append(out, cityResponse{Name: city.Name, Rates: rates})
		}
		responses.WriteSuccess(w, map[string]any{"country": shipping.Country, "cities": out})
	}
}

func ShippingQuote(svc session.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload destinationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quote, err := svc.QuoteShipping(r.Context(), payload.City, payload.PostalCode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}
