package controllers

import (
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/rigparts/app/repositories"
	"github.com/shashiranjanraj/rigparts/app/resources"
	"github.com/shashiranjanraj/rigparts/app/services"
	"github.com/shashiranjanraj/rigparts/pkg/ctx"
	"github.com/shashiranjanraj/rigparts/pkg/resource"
)

const dateLayout = "2006-01-02"

type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(db *gorm.DB) *OrderController {
	return &OrderController{orders: services.NewOrderService(db)}
}

// Index lists orders, filtered by ?status= and the inclusive date range
// ?from=YYYY-MM-DD&to=YYYY-MM-DD.
func (oc *OrderController) Index(c *ctx.Context) {
	f := repositories.OrderFilter{
		Status: c.Query("status"),
		Page:   c.QueryInt("page", 1),
		Limit:  c.QueryInt("limit", 20),
	}

	errs := map[string]string{}
	if v := c.Query("from"); v != "" {
		t, err := time.ParseInLocation(dateLayout, v, time.Local)
		if err != nil {
			errs["from"] = "The from field must be a date (YYYY-MM-DD)."
		}
		f.From = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.ParseInLocation(dateLayout, v, time.Local)
		if err != nil {
			errs["to"] = "The to field must be a date (YYYY-MM-DD)."
		}
		f.To = t.AddDate(0, 0, 1)
	}
	if len(errs) > 0 {
		c.ValidationError(errs)
		return
	}

	orders, pg, err := oc.orders.List(c.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}
	c.Paginated(resource.Collection(resources.OrderResource{}, orders), pg)
}

// Show returns the order with its status history.
func (oc *OrderController) Show(c *ctx.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	order, err := oc.orders.Get(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	history, err := oc.orders.History(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(resource.New(resources.OrderResource{}, order).With("history", history))
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (oc *OrderController) UpdateStatus(c *ctx.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req statusRequest
	if !c.BindJSON(&req) {
		return
	}
	order, err := oc.orders.UpdateStatus(c.Context(), id, req.Status, actor(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(resources.OrderResource{}.ToArray(order))
}

// Mine lists the signed-in customer's own orders.
func (oc *OrderController) Mine(c *ctx.Context) {
	claims, ok := c.Claims()
	if !ok {
		c.Unauthorized()
		return
	}
	orders, err := oc.orders.ForCustomer(c.Context(), claims.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(resource.Collection(resources.OrderResource{}, orders))
}
