// Package session applies one shopper action at a time against persisted cart
// and wishlist state.
package session

import (
	"context"
	"errors"
	"strings"

	"github.com/angelmondragon/storefront/internal/cart"
	product "github.com/angelmondragon/storefront/internal/products"
	"github.com/angelmondragon/storefront/internal/shipping"
	"github.com/angelmondragon/storefront/internal/storage"
	"github.com/angelmondragon/storefront/internal/wishlist"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/types"
)

// MaxIDLength bounds session ids to what every storage backend can key on.
const MaxIDLength = 128

// Recorder receives domain counters. *metrics.StorefrontMetrics satisfies it.
type Recorder interface {
	IncCartMutation(op string)
	IncWishlistMutation(op string)
	IncShippingLookup(outcome string)
	IncParseFailure(slot string)
}

type productGetter interface {
	GetProduct(ctx context.Context, id string) (*product.Product, error)
}

// Service exposes every shopper-facing cart, wishlist and shipping action.
type Service interface {
	Cart(ctx context.Context, sessionID string) (CartView, error)
	AddToCart(ctx context.Context, sessionID, productID string) (CartView, error)
	SetQuantity(ctx context.Context, sessionID, productID string, quantity int) (CartView, error)
	RemoveFromCart(ctx context.Context, sessionID, productID string) (CartView, error)
	ClearCart(ctx context.Context, sessionID string) (CartView, error)

	Wishlist(ctx context.Context, sessionID string) (WishlistView, error)
	ToggleWishlist(ctx context.Context, sessionID, productID string) (ToggleResult, error)
	RemoveFromWishlist(ctx context.Context, sessionID, productID string) (WishlistView, error)
	ClearWishlist(ctx context.Context, sessionID string) (WishlistView, error)
	WishlistContains(ctx context.Context, sessionID, productID string) (bool, error)

	Cities() []shipping.City
	QuoteShipping(ctx context.Context, city, postalCode string) (ShippingQuote, error)
	Checkout(ctx context.Context, sessionID, city, postalCode string) (CheckoutSummary, error)
}

// ServiceParams groups dependencies for the session service.
type ServiceParams struct {
	Backend  storage.Backend
	Products productGetter
	Resolver *shipping.Resolver
	Cart     cart.Options
	Metrics  Recorder
	Logger   *logger.Logger
}

type service struct {
	backend  storage.Backend
	products productGetter
	resolver *shipping.Resolver
	cartOpts cart.Options
	metrics  Recorder
	logg     *logger.Logger
	locks    stripedLock
}

// NewService builds a session service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Backend == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "storage backend is required")
	}
	if params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product source is required")
	}
	if params.Resolver == nil {
		params.Resolver = shipping.NewResolver(nil)
	}
	if params.Metrics == nil {
		params.Metrics = noopRecorder{}
	}
	return &service{
		backend:  params.Backend,
		products: params.Products,
		resolver: params.Resolver,
		cartOpts: params.Cart,
		metrics:  params.Metrics,
		logg:     params.Logger,
	}, nil
}

func (s *service) Cart(ctx context.Context, sessionID string) (CartView, error) {
	return s.withCart(ctx, sessionID, nil)
}

func (s *service) AddToCart(ctx context.Context, sessionID, productID string) (CartView, error) {
	if err := validateSessionID(sessionID); err != nil {
		return CartView{}, err
	}
	p, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return CartView{}, err
	}
	return s.withCart(ctx, sessionID, func(m *cart.Manager) error {
		return m.Add(ctx, *p)
	})
}

func (s *service) SetQuantity(ctx context.Context, sessionID, productID string, quantity int) (CartView, error) {
	return s.withCart(ctx, sessionID, func(m *cart.Manager) error {
		return m.SetQuantity(ctx, productID, quantity)
	})
}

func (s *service) RemoveFromCart(ctx context.Context, sessionID, productID string) (CartView, error) {
	return s.withCart(ctx, sessionID, func(m *cart.Manager) error {
		return m.Remove(ctx, productID)
	})
}

func (s *service) ClearCart(ctx context.Context, sessionID string) (CartView, error) {
	return s.withCart(ctx, sessionID, func(m *cart.Manager) error {
		return m.Clear(ctx)
	})
}

func (s *service) Wishlist(ctx context.Context, sessionID string) (WishlistView, error) {
	var view WishlistView
	err := s.withWishlist(ctx, sessionID, func(m *wishlist.Manager) error {
		view = wishlistView(m)
		return nil
	})
	return view, err
}

func (s *service) ToggleWishlist(ctx context.Context, sessionID, productID string) (ToggleResult, error) {
	if err := validateSessionID(sessionID); err != nil {
		return ToggleResult{}, err
	}
	p, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return ToggleResult{}, err
	}
	var result ToggleResult
	err = s.withWishlist(ctx, sessionID, func(m *wishlist.Manager) error {
		wishlisted, err := m.Toggle(ctx, *p)
		if err != nil {
			return err
		}
		result = ToggleResult{Wishlisted: wishlisted, Wishlist: wishlistView(m)}
		return nil
	})
	return result, err
}

func (s *service) RemoveFromWishlist(ctx context.Context, sessionID, productID string) (WishlistView, error) {
	var view WishlistView
	err := s.withWishlist(ctx, sessionID, func(m *wishlist.Manager) error {
		if err := m.Remove(ctx, productID); err != nil {
			return err
		}
		view = wishlistView(m)
		return nil
	})
	return view, err
}

func (s *service) ClearWishlist(ctx context.Context, sessionID string) (WishlistView, error) {
	var view WishlistView
	err := s.withWishlist(ctx, sessionID, func(m *wishlist.Manager) error {
		if err := m.Clear(ctx); err != nil {
			return err
		}
		view = wishlistView(m)
		return nil
	})
	return view, err
}

func (s *service) WishlistContains(ctx context.Context, sessionID, productID string) (bool, error) {
	var contains bool
	err := s.withWishlist(ctx, sessionID, func(m *wishlist.Manager) error {
		contains = m.Contains(productID)
		return nil
	})
	return contains, err
}

func (s *service) Cities() []shipping.City {
	return s.resolver.Cities()
}

func (s *service) QuoteShipping(ctx context.Context, city, postalCode string) (ShippingQuote, error) {
	fee, err := s.resolver.Quote(city, postalCode)
	s.metrics.IncShippingLookup(lookupOutcome(err))
	if err != nil {
		return ShippingQuote{}, err
	}
	return ShippingQuote{Country: shipping.Country, City: city, PostalCode: postalCode, Fee: types.NewAmount(fee)}, nil
}

// Checkout totals the cart with the shipping fee for the destination. It is
// refused while the cart is empty or the fee cannot be calculated.
func (s *service) Checkout(ctx context.Context, sessionID, city, postalCode string) (CheckoutSummary, error) {
	view, err := s.Cart(ctx, sessionID)
	if err != nil {
		return CheckoutSummary{}, err
	}
	if len(view.Lines) == 0 {
		return CheckoutSummary{}, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
	}

	selection := shipping.Selection{City: city, PostalCode: postalCode}
	calcErr := selection.Calculate(s.resolver)
	s.metrics.IncShippingLookup(lookupOutcome(calcErr))
	if !selection.CheckoutReady() {
		details := map[string]string{"city": city, "postal_code": postalCode}
		if typed := pkgerrors.As(calcErr); typed != nil {
			details["reason"] = typed.Message()
		}
		return CheckoutSummary{}, pkgerrors.Wrap(pkgerrors.CodeStateConflict, calcErr, "shipping charge has not been calculated").
			WithDetails(details)
	}

	quote := ShippingQuote{Country: shipping.Country, City: city, PostalCode: postalCode, Fee: types.NewAmount(selection.Fee)}
	return CheckoutSummary{
		Cart:     view,
		Shipping: quote,
		Total:    types.NewAmount(view.Subtotal.Add(selection.Fee)),
	}, nil
}

func (s *service) withCart(ctx context.Context, sessionID string, fn func(*cart.Manager) error) (CartView, error) {
	if err := validateSessionID(sessionID); err != nil {
		return CartView{}, err
	}
	unlock := s.locks.lock(sessionID)
	defer unlock()

	opts := s.cartOpts
	opts.OnCorrupt = s.corruptionHook(sessionID)
	m := cart.NewManager(storage.Scope(s.backend, sessionID), opts)
	if err := m.Hydrate(ctx); err != nil {
		return CartView{}, err
	}
	if fn != nil {
		unsubscribe := m.Subscribe(func(e cart.Event) { s.metrics.IncCartMutation(e.Op) })
		defer unsubscribe()
		if err := fn(m); err != nil {
			return CartView{}, err
		}
	}
	return cartView(m), nil
}

func (s *service) withWishlist(ctx context.Context, sessionID string, fn func(*wishlist.Manager) error) error {
	if err := validateSessionID(sessionID); err != nil {
		return err
	}
	unlock := s.locks.lock(sessionID)
	defer unlock()

	m := wishlist.NewManager(storage.Scope(s.backend, sessionID), wishlist.Options{OnCorrupt: s.corruptionHook(sessionID)})
	if err := m.Hydrate(ctx); err != nil {
		return err
	}
	unsubscribe := m.Subscribe(func(e wishlist.Event) { s.metrics.IncWishlistMutation(e.Op) })
	defer unsubscribe()
	return fn(m)
}

func (s *service) corruptionHook(sessionID string) storage.CorruptionHook {
	return func(ctx context.Context, perr *storage.ParseError) {
		s.metrics.IncParseFailure(perr.Slot)
		if s.logg == nil {
			return
		}
		ctx = s.logg.WithSessionID(ctx, sessionID)
		ctx = s.logg.WithSlot(ctx, perr.Slot)
		s.logg.Error(ctx, "stored slot is malformed, resetting to empty", pkgerrors.Wrap(pkgerrors.CodeCorrupted, perr, "decode storage slot"))
		if perr.ResetErr != nil {
			s.logg.Warn(s.logg.WithField(ctx, "reset_error", perr.ResetErr.Error()), "failed to remove malformed slot")
		}
	}
}

func validateSessionID(id string) error {
	if strings.TrimSpace(id) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if len(id) > MaxIDLength {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is too long")
	}
	return nil
}

func lookupOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, shipping.ErrCityNotFound):
		return "city_not_found"
	case errors.Is(err, shipping.ErrPostalCodeNotFound):
		return "postal_code_not_found"
	default:
		return "invalid"
	}
}

type noopRecorder struct{}

func (noopRecorder) IncCartMutation(string)     {}
func (noopRecorder) IncWishlistMutation(string) {}
func (noopRecorder) IncShippingLookup(string)   {}
func (noopRecorder) IncParseFailure(string)     {}
