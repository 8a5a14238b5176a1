package shipping

import "github.com/shopspring/decimal"

// Selection is the shopper's destination choice. A zero Fee means the charge
// has not been calculated yet.
type Selection struct {
	City       string          `json:"city"`
	PostalCode string          `json:"postal_code"`
	Fee        decimal.Decimal `json:"fee"`
}

// Calculate resolves the fee for the current city and postal code. On failure
// the fee is reset to zero and the error is returned.
func (s *Selection) Calculate(r *Resolver) error {
	fee, err := r.Quote(s.City, s.PostalCode)
	if err != nil {
		s.Fee = decimal.Zero
		return err
	}
	s.Fee = fee
	return nil
}

// CheckoutReady reports whether a shipping charge has been calculated.
func (s Selection) CheckoutReady() bool {
	return s.Fee.IsPositive()
}
