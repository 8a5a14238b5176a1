package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront/api/middleware"
	"github.com/angelmondragon/storefront/api/responses"
	product "github.com/angelmondragon/storefront/internal/products"
	"github.com/angelmondragon/storefront/internal/session"
	"github.com/angelmondragon/storefront/internal/storage"
	"github.com/angelmondragon/storefront/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/types"
)

type stubProducts struct {
	items      map[string]product.Product
	lastParams product.ListParams
	listErr    error
}

func newStubProducts() *stubProducts {
	return &stubProducts{items: map[string]product.Product{
		"p1": {ID: "p1", Name: "Lamp", Price: types.AmountFromInt(1000), Tags: []string{}},
		"p2": {ID: "p2", Name: "Chair", Price: types.AmountFromInt(2500), DiscountPercentage: types.AmountFromInt(10), Tags: []string{}},
	}}
}

func (s *stubProducts) ListProducts(ctx context.Context, params product.ListParams) (*product.ProductListResult, error) {
	s.lastParams = params
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := &product.ProductListResult{}
	for _, id := range []string{"p1", "p2"} {
		out.Products = append(out.Products, product.NewProductDTO(s.items[id]))
	}
	out.Total = len(out.Products)
	return out, nil
}

func (s *stubProducts) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	p, ok := s.items[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return &p, nil
}

func newSessionService(t *testing.T) session.Service {
	t.Helper()
	svc, err := session.NewService(session.ServiceParams{
		Backend:  storage.NewMemoryBackend(),
		Products: newStubProducts(),
	})
	require.NoError(t, err)
	return svc
}

type routeParam struct{ key, value string }

func newRequest(method, target, body, sessionID string, params ...routeParam) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	ctx := req.Context()
	if sessionID != "" {
		ctx = middleware.WithSessionID(ctx, sessionID)
	}
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for _, p := range params {
			rctx.URLParams.Add(p.key, p.value)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var env struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env.Data
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) responses.APIError {
	t.Helper()
	var env responses.ErrorEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env.Error
}

func TestHealthLive(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	rec := serve(HealthLive(cfg), httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "test", rec.Header().Get(envHeader))
	require.Equal(t, "live", decodeData(t, rec)["status"])
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })

	rec := serve(HealthReady(cfg, nil, map[string]Pinger{"storage": ok, "redis": nil}), httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(HealthReady(cfg, nil, map[string]Pinger{"storage": ok, "redis": down}), httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	apiErr := decodeError(t, rec)
	require.Equal(t, string(pkgerrors.CodeDependency), apiErr.Code)
}

func TestProductsListParsesQuery(t *testing.T) {
	products := newStubProducts()
	rec := serve(ProductsList(products, nil), newRequest(http.MethodGet, "/api/v1/products?q=+lamp+&tag=home&sort=price-low-high&limit=5", "", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "lamp", products.lastParams.Search)
	require.Equal(t, "home", products.lastParams.Tag)
	require.Equal(t, "price-low-high", products.lastParams.Sort)
	require.Equal(t, 5, products.lastParams.Limit)

	data := decodeData(t, rec)
	require.EqualValues(t, 2, data["total"])
}

func TestProductsListRejectsBadLimit(t *testing.T) {
	rec := serve(ProductsList(newStubProducts(), nil), newRequest(http.MethodGet, "/api/v1/products?limit=abc", "", ""))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(ProductsList(newStubProducts(), nil), newRequest(http.MethodGet, "/api/v1/products?limit=1000", "", ""))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductsListDependencyFailure(t *testing.T) {
	products := newStubProducts()
	products.listErr = pkgerrors.New(pkgerrors.CodeDependency, "content query failed")
	rec := serve(ProductsList(products, nil), newRequest(http.MethodGet, "/api/v1/products", "", ""))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestProductDetail(t *testing.T) {
	rec := serve(ProductDetail(newStubProducts(), nil), newRequest(http.MethodGet, "/api/v1/products/p2", "", "", routeParam{"productId", "p2"}))
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeData(t, rec)
	require.Equal(t, "Chair", data["name"])
	require.EqualValues(t, 2250, data["discountedPrice"])

	rec = serve(ProductDetail(newStubProducts(), nil), newRequest(http.MethodGet, "/api/v1/products/nope", "", "", routeParam{"productId", "nope"}))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCartFlow(t *testing.T) {
	svc := newSessionService(t)
	const sid = "session-1"

	rec := serve(CartAddItem(svc, nil), newRequest(http.MethodPost, "/api/v1/cart/items", `{"product_id":"p1"}`, sid))
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = serve(CartAddItem(svc, nil), newRequest(http.MethodPost, "/api/v1/cart/items", `{"product_id":"p1"}`, sid))
	require.Equal(t, http.StatusCreated, rec.Code)
	data := decodeData(t, rec)
	require.EqualValues(t, 2, data["count"])
	require.EqualValues(t, 2000, data["subtotal"])

	rec = serve(CartUpdateItem(svc, nil), newRequest(http.MethodPatch, "/api/v1/cart/items/p1", `{"quantity":5}`, sid, routeParam{"productId", "p1"}))
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 5, decodeData(t, rec)["count"])

	rec = serve(CartUpdateItem(svc, nil), newRequest(http.MethodPatch, "/api/v1/cart/items/p1", `{"quantity":0}`, sid, routeParam{"productId", "p1"}))
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 5, decodeData(t, rec)["count"])

	rec = serve(CartGet(svc, nil), newRequest(http.MethodGet, "/api/v1/cart", "", sid))
	require.Equal(t, http.StatusOK, rec.Code)
	lines := decodeData(t, rec)["lines"].([]any)
	require.Len(t, lines, 1)

	rec = serve(CartRemoveItem(svc, nil), newRequest(http.MethodDelete, "/api/v1/cart/items/p1", "", sid, routeParam{"productId", "p1"}))
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 0, decodeData(t, rec)["count"])

	serve(CartAddItem(svc, nil), newRequest(http.MethodPost, "/api/v1/cart/items", `{"product_id":"p2"}`, sid))
	rec = serve(CartClear(svc, nil), newRequest(http.MethodDelete, "/api/v1/cart", "", sid))
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 0, decodeData(t, rec)["count"])
}

func TestCartAddItemValidation(t *testing.T) {
	svc := newSessionService(t)

	rec := serve(CartAddItem(svc, nil), newRequest(http.MethodPost, "/api/v1/cart/items", `{}`, "s"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "is required", decodeError(t, rec).Details.(map[string]any)["product_id"])

	rec = serve(CartAddItem(svc, nil), newRequest(http.MethodPost, "/api/v1/cart/items", `{"product_id":"p1","extra":true}`, "s"))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(CartAddItem(svc, nil), newRequest(http.MethodPost, "/api/v1/cart/items", `{"product_id":"missing"}`, "s"))
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(CartUpdateItem(svc, nil), newRequest(http.MethodPatch, "/api/v1/cart/items/p1", `{}`, "s", routeParam{"productId", "p1"}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartRequiresSession(t *testing.T) {
	rec := serve(CartGet(newSessionService(t), nil), newRequest(http.MethodGet, "/api/v1/cart", "", ""))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "session context missing", decodeError(t, rec).Message)
}

func TestWishlistFlow(t *testing.T) {
	svc := newSessionService(t)
	const sid = "session-2"

	rec := serve(WishlistToggle(svc, nil), newRequest(http.MethodPost, "/api/v1/wishlist/toggle", `{"product_id":"p2"}`, sid))
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeData(t, rec)
	require.Equal(t, true, data["wishlisted"])

	rec = serve(WishlistContains(svc, nil), newRequest(http.MethodGet, "/api/v1/wishlist/items/p2", "", sid, routeParam{"productId", "p2"}))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, decodeData(t, rec)["wishlisted"])

	rec = serve(WishlistToggle(svc, nil), newRequest(http.MethodPost, "/api/v1/wishlist/toggle", `{"product_id":"p2"}`, sid))
	require.Equal(t, false, decodeData(t, rec)["wishlisted"])

	serve(WishlistToggle(svc, nil), newRequest(http.MethodPost, "/api/v1/wishlist/toggle", `{"product_id":"p1"}`, sid))
	serve(WishlistToggle(svc, nil), newRequest(http.MethodPost, "/api/v1/wishlist/toggle", `{"product_id":"p2"}`, sid))

	rec = serve(WishlistGet(svc, nil), newRequest(http.MethodGet, "/api/v1/wishlist", "", sid))
	require.EqualValues(t, 2, decodeData(t, rec)["count"])

	rec = serve(WishlistRemove(svc, nil), newRequest(http.MethodDelete, "/api/v1/wishlist/items/p1", "", sid, routeParam{"productId", "p1"}))
	require.EqualValues(t, 1, decodeData(t, rec)["count"])

	rec = serve(WishlistClear(svc, nil), newRequest(http.MethodDelete, "/api/v1/wishlist", "", sid))
	require.EqualValues(t, 0, decodeData(t, rec)["count"])
}

func TestShippingCities(t *testing.T) {
	rec := serve(ShippingCities(newSessionService(t)), newRequest(http.MethodGet, "/api/v1/shipping/cities", "", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeData(t, rec)
	require.Equal(t, "Pakistan", data["country"])
	cities := data["cities"].([]any)
	require.Len(t, cities, 8)
	first := cities[0].(map[string]any)
	require.Len(t, first["rates"].([]any), 4)
}

func TestShippingQuote(t *testing.T) {
	svc := newSessionService(t)

	rec := serve(ShippingQuote(svc, nil), newRequest(http.MethodPost, "/api/v1/shipping/quote", `{"city":"Karachi","postal_code":"74400"}`, ""))
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeData(t, rec)
	require.EqualValues(t, 100, data["fee"])
	require.Equal(t, "Pakistan", data["country"])

	rec = serve(ShippingQuote(svc, nil), newRequest(http.MethodPost, "/api/v1/shipping/quote", `{"city":"Karachi","postal_code":"99999"}`, ""))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "no shipping charge available for this postal code", decodeError(t, rec).Message)

	rec = serve(ShippingQuote(svc, nil), newRequest(http.MethodPost, "/api/v1/shipping/quote", `{"city":"","postal_code":""}`, ""))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "please select both city and postal code", decodeError(t, rec).Message)
}

func TestCheckout(t *testing.T) {
	svc := newSessionService(t)
	const sid = "session-3"

	rec := serve(Checkout(svc, nil), newRequest(http.MethodPost, "/api/v1/checkout", `{"city":"Karachi","postal_code":"74400"}`, sid))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, "cart is empty", decodeError(t, rec).Message)

	serve(CartAddItem(svc, nil), newRequest(http.MethodPost, "/api/v1/cart/items", `{"product_id":"p1"}`, sid))

	rec = serve(Checkout(svc, nil), newRequest(http.MethodPost, "/api/v1/checkout", `{"city":"Karachi","postal_code":"99999"}`, sid))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = serve(Checkout(svc, nil), newRequest(http.MethodPost, "/api/v1/checkout", `{"city":"Karachi","postal_code":"74400"}`, sid))
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeData(t, rec)
	require.EqualValues(t, 1100, data["total"])
}

func TestProductsListRejectsUnknownSort(t *testing.T) {
	rec := serve(ProductsList(newStubProducts(), nil), newRequest(http.MethodGet, "/api/v1/products?sort=newest", "", ""))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
