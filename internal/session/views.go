package session

import (
	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/wishlist"
	"github.com/angelmondragon/storefront/pkg/types"
)

// CartView is the cart as rendered to the shopper.
type CartView struct {
	Lines    []cart.Line  `json:"lines"`
	Count    int          `json:"count"`
	Subtotal types.Amount `json:"subtotal"`
}

type WishlistView struct {
	Entries []wishlist.Entry `json:"entries"`
	Count   int              `json:"count"`
}

// ToggleResult reports the wishlist after a toggle and whether the product is now in it.
type ToggleResult struct {
	Wishlisted bool         `json:"wishlisted"`
	Wishlist   WishlistView `json:"wishlist"`
}

// ShippingQuote is a resolved flat shipping fee.
type ShippingQuote struct {
	Country    string       `json:"country"`
	City       string       `json:"city"`
	PostalCode string       `json:"postal_code"`
	Fee        types.Amount `json:"fee"`
}

// CheckoutSummary totals the cart with its shipping charge.
type CheckoutSummary struct {
	Cart     CartView      `json:"cart"`
	Shipping ShippingQuote `json:"shipping"`
	Total    types.Amount  `json:"total"`
}

func cartView(m *cart.Manager) CartView {
	return CartView{Lines: m.Lines(), Count: m.Count(), Subtotal: types.NewAmount(m.Total())}
}

func wishlistView(m *wishlist.Manager) WishlistView {
	entries := m.Entries()
	return WishlistView{Entries: entries, Count: len(entries)}
}
