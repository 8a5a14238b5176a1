package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront/api/middleware"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

func sessionID(r *http.Request) (string, error) {
	id := middleware.SessionIDFromContext(r.Context())
	if id == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "session context missing")
	}
	return id, nil
}

func productIDParam(r *http.Request) (string, error) {
	id := strings.TrimSpace(chi.URLParam(r, "productId"))
	if id == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	return id, nil
}

type productRequest struct {
	ProductID string `json:"product_id" validate:"required,max=128"`
}

type destinationRequest struct {
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
}
