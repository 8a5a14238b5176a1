package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	productsvc "github.com/angelmondragon/storefront/internal/products"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
)

const maxSearchLength = 100

// ProductsList returns the catalog filtered by q, tag, sort and limit.
func ProductsList(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, productsvc.MaxListLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sort, err := validators.ParseQueryEnum(r, "sort", productsvc.SortBestMatch,
			productsvc.SortBestMatch, productsvc.SortPriceLowHigh, productsvc.SortPriceHighLow)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := r.URL.Query()
		params := productsvc.ListParams{
			Search: validators.SanitizeString(query.Get("q"), maxSearchLength),
			Tag:    validators.SanitizeString(query.Get("tag"), maxSearchLength),
			Sort:   sort,
			Limit:  limit,
		}

		result, err := svc.ListProducts(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ProductDetail(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		product, err := svc.GetProduct(r.Context(), chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, productsvc.NewProductDTO(*product))
	}
}
