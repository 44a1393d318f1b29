package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/rigparts/app/models"
	"github.com/shashiranjanraj/rigparts/app/repositories"
	"github.com/shashiranjanraj/rigparts/pkg/event"
	"github.com/shashiranjanraj/rigparts/pkg/logger"
	"github.com/shashiranjanraj/rigparts/pkg/orm"
	"github.com/shashiranjanraj/rigparts/pkg/validate"
)

// EventOrderStatusChanged fires with an OrderStatusChanged after a transition.
const EventOrderStatusChanged = "order.status_changed"

// OrderStatusChanged is the payload of EventOrderStatusChanged.
type OrderStatusChanged struct {
	Order models.Order
	From  string
	To    string
	Actor string
}

// OrderService drives the admin order workflow. Any status may move to any
// other; completed and cancelled are terminal by convention only.
type OrderService struct {
	orders *repositories.OrderRepository
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{orders: repositories.NewOrderRepository(db)}
}

func (s *OrderService) Get(ctx context.Context, id uint) (models.Order, error) {
	return s.orders.Find(ctx, id)
}

func (s *OrderService) List(ctx context.Context, f repositories.OrderFilter) ([]models.Order, orm.Pagination, error) {
	if f.Status != "" && !models.ValidOrderStatus(f.Status) {
		return nil, orm.Pagination{}, validate.Field("status", "The selected status is invalid.")
	}
	return s.orders.List(ctx, f)
}

// ForCustomer lists the orders placed by a signed-in customer.
func (s *OrderService) ForCustomer(ctx context.Context, customerID uint) ([]models.Order, error) {
	return s.orders.ForCustomer(ctx, customerID)
}

func (s *OrderService) History(ctx context.Context, id uint) ([]models.OrderStatusChange, error) {
	if _, err := s.orders.Find(ctx, id); err != nil {
		return nil, err
	}
	return s.orders.History(ctx, id)
}

// UpdateStatus moves order id to status on behalf of actor.
func (s *OrderService) UpdateStatus(ctx context.Context, id uint, status, actor string) (models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return models.Order{}, validate.Field("status", "The selected status is invalid.")
	}

	order, from, err := s.orders.UpdateStatus(ctx, id, status, actor)
	if err != nil {
		return models.Order{}, err
	}
	if from == status {
		return order, nil
	}

	logger.WithCtx(ctx).Info("orders: status changed", "order_id", id, "from", from, "to", status, "by", actor)
	event.FireAsync(ctx, EventOrderStatusChanged, OrderStatusChanged{Order: order, From: from, To: status, Actor: actor})
	return order, nil
}
