package controllers

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/rigparts/app/resources"
	"github.com/shashiranjanraj/rigparts/app/services"
	"github.com/shashiranjanraj/rigparts/pkg/bind"
	"github.com/shashiranjanraj/rigparts/pkg/ctx"
)

type CheckoutController struct {
	checkout *services.CheckoutService
	catalog  *services.CatalogService
}

func NewCheckoutController(db *gorm.DB) *CheckoutController {
	return &CheckoutController{
		checkout: services.NewCheckoutService(db),
		catalog:  services.NewCatalogService(db),
	}
}

// Store places an order from the session cart. The cart is cleared only
// once the order is stored; on any failure it is left as it was.
func (cc *CheckoutController) Store(c *ctx.Context) {
	// Field rules depend on the delivery method and the cart, so the service
	// validates the whole input in one pass.
	var in services.PlaceOrderInput
	if _, err := bind.JSON(c.R, &in); err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return
	}

	l, err := openCart(c, cc.catalog)
	if err != nil {
		fail(c, err)
		return
	}

	order, err := cc.checkout.PlaceOrder(c.Context(), l.Snapshot(), in)
	if err != nil {
		fail(c, err)
		return
	}

	if err := l.Clear(c.Context()); err != nil {
		c.Log().Warn("checkout: order placed but cart not cleared", "order_id", order.ID, "error", err)
	}
	c.Created(resources.OrderResource{}.ToArray(*order))
}
