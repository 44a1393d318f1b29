// Package pricing decides what a shopper pays. Every function is pure: the
// viewer is passed in explicitly, never read from request-global state.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/rigparts/app/models"
	"github.com/shashiranjanraj/rigparts/pkg/auth"
)

var (
	// HSTRate is the Ontario harmonized sales tax applied to every order.
	HSTRate = decimal.RequireFromString("0.13")
	// ShippingSurcharge is the flat fee for the shipping delivery method.
	ShippingSurcharge = decimal.RequireFromString("50.00")
	// CustomerDiscount is the list-price policy for account holders.
	CustomerDiscount = decimal.RequireFromString("0.05")
)

// Viewer identifies who is looking at a price.
type Viewer struct {
	CustomerID uint
	Email      string
	Role       string
}

// Anonymous is a signed-out shopper.
func Anonymous() Viewer { return Viewer{} }

// ViewerFromClaims builds a viewer from verified token claims; nil claims
// yield an anonymous viewer.
func ViewerFromClaims(c *auth.Claims) Viewer {
	if c == nil {
		return Anonymous()
	}
	return Viewer{CustomerID: c.UserID, Email: c.Email, Role: c.Role}
}

// Authenticated reports whether the viewer is a signed-in customer. Staff
// accounts browsing the storefront see retail prices.
func (v Viewer) Authenticated() bool {
	return v.CustomerID != 0 && v.Role == models.RoleCustomer
}

// PriceFor is the unit price v pays for p.
func PriceFor(p models.Product, v Viewer) decimal.Decimal {
	if v.Authenticated() {
		return p.CustomerPrice
	}
	return p.RetailPrice
}

// CustomerPriceFor applies the list policy to a retail price.
func CustomerPriceFor(retail decimal.Decimal) decimal.Decimal {
	return retail.Mul(decimal.NewFromInt(1).Sub(CustomerDiscount)).Round(2)
}

// Tax is HST on subtotal, rounded to cents.
func Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(HSTRate).Round(2)
}

// Shipping is the surcharge for a delivery method.
func Shipping(method string) decimal.Decimal {
	if method == models.DeliveryShipping {
		return ShippingSurcharge
	}
	return decimal.Zero
}

// Totals is the money breakdown of an order.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

// TotalsFor computes tax, shipping and total for a subtotal.
func TotalsFor(subtotal decimal.Decimal, method string) Totals {
	subtotal = subtotal.Round(2)
	tax := Tax(subtotal)
	ship := Shipping(method)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: ship,
		Total:    subtotal.Add(tax).Add(ship),
	}
}
