package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/rigparts/app/cart"
	"github.com/shashiranjanraj/rigparts/app/models"
	"github.com/shashiranjanraj/rigparts/app/pricing"
	"github.com/shashiranjanraj/rigparts/app/repositories"
	"github.com/shashiranjanraj/rigparts/config"
	"github.com/shashiranjanraj/rigparts/pkg/event"
	"github.com/shashiranjanraj/rigparts/pkg/logger"
	"github.com/shashiranjanraj/rigparts/pkg/metrics"
	"github.com/shashiranjanraj/rigparts/pkg/validate"
)

// EventOrderPlaced fires with the *models.Order after a successful checkout.
const EventOrderPlaced = "order.placed"

// PlaceOrderInput is the contact and delivery part of a checkout.
type PlaceOrderInput struct {
	Name           string `json:"name"            validate:"required,max=255"`
	Email          string `json:"email"           validate:"required,email,max=255"`
	Phone          string `json:"phone"           validate:"required,max=50"`
	Company        string `json:"company"         validate:"nullable,max=255"`
	DeliveryMethod string `json:"delivery_method" validate:"required,in=pickup|delivery|shipping"`
	Address        string `json:"address"         validate:"nullable,max=255"`
	City           string `json:"city"            validate:"nullable,max=100"`
	Province       string `json:"province"        validate:"nullable,max=100"`
	PostalCode     string `json:"postal_code"     validate:"nullable,max=20"`
	Notes          string `json:"notes"           validate:"nullable,max=2000"`
}

// Validate checks the tags plus the address rule: every method except
// pickup needs a full address. An unknown method only reports itself.
func (in PlaceOrderInput) Validate() error {
	verr := &validate.Error{Fields: validate.Struct(in)}
	if models.ValidDeliveryMethod(in.DeliveryMethod) && in.DeliveryMethod != models.DeliveryPickup {
		for field, v := range map[string]string{
			"address":     in.Address,
			"city":        in.City,
			"province":    in.Province,
			"postal_code": in.PostalCode,
		} {
			if strings.TrimSpace(v) == "" {
				verr.Add(field, fmt.Sprintf("The %s field is required for %s orders.", field, in.DeliveryMethod))
			}
		}
	}
	return verr.OrNil()
}

// CheckoutService turns a cart snapshot into a persisted order.
type CheckoutService struct {
	orders  *repositories.OrderRepository
	timeout time.Duration
}

func NewCheckoutService(db *gorm.DB) *CheckoutService {
	return &CheckoutService{
		orders:  repositories.NewOrderRepository(db),
		timeout: config.Duration("DB_TIMEOUT", 10*time.Second),
	}
}

// Preview prices a snapshot for a delivery method without persisting.
func (s *CheckoutService) Preview(snapshot cart.Snapshot, method string) pricing.Totals {
	return pricing.TotalsFor(snapshot.Subtotal(), method)
}

// PlaceOrder validates, prices and stores the order with its line items in
// one transaction. Line items copy the cart's names, codes and unit prices.
// The caller clears the cart only when err is nil.
func (s *CheckoutService) PlaceOrder(ctx context.Context, snapshot cart.Snapshot, in PlaceOrderInput) (*models.Order, error) {
	if snapshot.Empty() {
		return nil, ErrEmptyCart
	}
	in = in.normalized()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	totals := pricing.TotalsFor(snapshot.Subtotal(), in.DeliveryMethod)

	order := &models.Order{
		ContactName:    in.Name,
		ContactEmail:   in.Email,
		ContactPhone:   in.Phone,
		ContactCompany: in.Company,
		DeliveryMethod: in.DeliveryMethod,
		Subtotal:       totals.Subtotal,
		Tax:            totals.Tax,
		Shipping:       totals.Shipping,
		Total:          totals.Total,
		Status:         models.OrderPending,
		Notes:          in.Notes,
	}
	if in.DeliveryMethod != models.DeliveryPickup {
		order.Address = in.Address
		order.City = in.City
		order.Province = in.Province
		order.PostalCode = in.PostalCode
	}
	if v := snapshot.Viewer; v.Authenticated() {
		id := v.CustomerID
		order.CustomerID = &id
	}

	for _, ln := range snapshot.Lines {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   ln.ProductID,
			ProductName: ln.Name,
			SKU:         ln.Code,
			Quantity:    ln.Quantity,
			UnitPrice:   ln.UnitPrice,
			Subtotal:    ln.Subtotal(),
		})
	}

	dbctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.orders.CreateWithItems(dbctx, order); err != nil {
		return nil, fmt.Errorf("checkout: place order: %w", err)
	}

	metrics.OrderPlaced(order.DeliveryMethod)
	logger.WithCtx(ctx).Info("checkout: order placed",
		"order_id", order.ID, "total", order.Total.StringFixed(2), "method", order.DeliveryMethod)
	event.FireAsync(ctx, EventOrderPlaced, order)

	return order, nil
}

func (in PlaceOrderInput) normalized() PlaceOrderInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Company = strings.TrimSpace(in.Company)
	in.DeliveryMethod = strings.ToLower(strings.TrimSpace(in.DeliveryMethod))
	in.Address = strings.TrimSpace(in.Address)
	in.City = strings.TrimSpace(in.City)
	in.Province = strings.TrimSpace(in.Province)
	in.PostalCode = strings.ToUpper(strings.TrimSpace(in.PostalCode))
	return in
}
