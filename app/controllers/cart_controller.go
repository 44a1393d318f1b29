package controllers

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/rigparts/app/models"
	"github.com/shashiranjanraj/rigparts/app/resources"
	"github.com/shashiranjanraj/rigparts/app/services"
	"github.com/shashiranjanraj/rigparts/pkg/ctx"
)

type CartController struct {
	catalog *services.CatalogService
}

func NewCartController(db *gorm.DB) *CartController {
	return &CartController{catalog: services.NewCatalogService(db)}
}

type addItemRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity"   validate:"nullable,gte=1,lte=999"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity" validate:"lte=999"`
}

// deliveryMethod is the method totals are previewed for; pickup unless the
// shopper asks otherwise.
func deliveryMethod(c *ctx.Context) string {
	if m := c.Query("delivery_method"); models.ValidDeliveryMethod(m) {
		return m
	}
	return models.DeliveryPickup
}

// Show returns the cart with totals for ?delivery_method=.
func (cc *CartController) Show(c *ctx.Context) {
	l, err := openCart(c, cc.catalog)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(resources.Cart(l, deliveryMethod(c)))
}

// Add puts a product in the cart at the caller's current price.
func (cc *CartController) Add(c *ctx.Context) {
	var req addItemRequest
	if !c.BindJSON(&req) {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	p, err := cc.catalog.Product(c.Context(), req.ProductID)
	if err != nil {
		fail(c, err)
		return
	}
	if p.StockStatus == models.StockOutOfStock {
		c.ValidationError(map[string]string{"product_id": "This product is out of stock."})
		return
	}

	l, err := openCart(c, cc.catalog)
	if err != nil {
		fail(c, err)
		return
	}
	if err := l.Add(c.Context(), p, req.Quantity); err != nil {
		fail(c, err)
		return
	}
	c.Success(resources.Cart(l, deliveryMethod(c)))
}

// Update sets a line's quantity; zero or less removes it.
func (cc *CartController) Update(c *ctx.Context) {
	productID, ok := c.ParamUint("product")
	if !ok {
		c.NotFound()
		return
	}
	var req updateItemRequest
	if !c.BindJSON(&req) {
		return
	}

	l, err := openCart(c, cc.catalog)
	if err != nil {
		fail(c, err)
		return
	}
	if err := l.UpdateQuantity(c.Context(), productID, req.Quantity); err != nil {
		fail(c, err)
		return
	}
	c.Success(resources.Cart(l, deliveryMethod(c)))
}

func (cc *CartController) Remove(c *ctx.Context) {
	productID, ok := c.ParamUint("product")
	if !ok {
		c.NotFound()
		return
	}
	l, err := openCart(c, cc.catalog)
	if err != nil {
		fail(c, err)
		return
	}
	if err := l.Remove(c.Context(), productID); err != nil {
		fail(c, err)
		return
	}
	c.Success(resources.Cart(l, deliveryMethod(c)))
}

func (cc *CartController) Clear(c *ctx.Context) {
	l, err := openCart(c, cc.catalog)
	if err != nil {
		fail(c, err)
		return
	}
	if err := l.Clear(c.Context()); err != nil {
		fail(c, err)
		return
	}
	c.Success(resources.Cart(l, deliveryMethod(c)))
}
