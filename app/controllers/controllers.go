// Package controllers holds the HTTP handlers. Each controller adapts a
// service: bind and validate the request, call the service, shape the
// response through app/resources.
package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/rigparts/app/cart"
	"github.com/shashiranjanraj/rigparts/app/pricing"
	"github.com/shashiranjanraj/rigparts/app/services"
	"github.com/shashiranjanraj/rigparts/pkg/ctx"
	"github.com/shashiranjanraj/rigparts/pkg/session"
	"github.com/shashiranjanraj/rigparts/pkg/validate"
)

// fail maps a service error onto the response envelope. Anything it does
// not recognise is logged and reported as a retryable 500.
func fail(c *ctx.Context, err error) {
	var verr *validate.Error
	switch {
	case errors.As(err, &verr):
		c.ValidationError(verr.Fields)
	case errors.Is(err, services.ErrNotFound):
		c.NotFound()
	case errors.Is(err, services.ErrEmptyCart):
		c.ValidationError(map[string]string{"cart": "Your cart is empty."})
	case errors.Is(err, session.ErrTooLarge):
		c.ValidationError(map[string]string{"cart": "Your cart is too large to save. Remove some items and try again."})
	case errors.Is(err, cart.ErrInvalidQuantity):
		c.ValidationError(map[string]string{"quantity": "The quantity must be at least 1."})
	case errors.Is(err, services.ErrCampaignSent):
		c.Error(http.StatusConflict, "This campaign has already been sent.")
	case errors.Is(err, services.ErrNoRecipients):
		c.Error(http.StatusConflict, "There are no subscribed customers to send to.")
	case errors.Is(err, services.ErrInvalidCredentials):
		c.Unauthorized("These credentials do not match our records.")
	case errors.Is(err, services.ErrInvalidToken):
		c.NotFound("This link is invalid or has expired.")
	case errors.Is(err, services.ErrVINUndecodable):
		c.NotFound("No vehicle data was found for this VIN.")
	default:
		c.Log().Error("request failed", "error", err)
		c.Error(http.StatusInternalServerError, "Something went wrong. Please try again.")
	}
}

// viewer is the identity storefront prices are resolved against.
func viewer(c *ctx.Context) pricing.Viewer {
	claims, _ := c.Claims()
	return pricing.ViewerFromClaims(claims)
}

// openCart loads the shopper's ledger from their session.
func openCart(c *ctx.Context, catalog cart.Catalog) (*cart.Ledger, error) {
	sess := session.FromCtx(c.Context())
	if sess == nil {
		return nil, errors.New("controllers: no session on request")
	}
	return cart.Open(c.Context(), viewer(c), cart.NewSessionStore(sess, catalog))
}

// actor names the staff member behind an admin request for audit trails.
func actor(c *ctx.Context) string {
	if claims, ok := c.Claims(); ok && claims.Email != "" {
		return claims.Email
	}
	return "system"
}

// idParam reads {id}, writing a 404 when it is malformed.
func idParam(c *ctx.Context) (uint, bool) {
	id, ok := c.ParamUint("id")
	if !ok {
		c.NotFound()
	}
	return id, ok
}

func isNotFound(err error) bool {
	return errors.Is(err, services.ErrInvalidToken) || errors.Is(err, services.ErrNotFound)
}
