package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shashiranjanraj/rigparts/app/models"
	"github.com/shashiranjanraj/rigparts/pkg/orm"
)

// OrderFilter narrows the admin order list. Zero values mean "any".
type OrderFilter struct {
	Status string
	From   time.Time
	To     time.Time
	Page   int
	Limit  int
}

// OrderRepository persists orders and their audit trail.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateWithItems writes the order header and every line item in one
// transaction. On error nothing is persisted.
func (r *OrderRepository) CreateWithItems(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := o.Items
		if err := tx.Omit("Items").Create(o).Error; err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		for i := range items {
			items[i].OrderID = o.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return fmt.Errorf("insert order items: %w", err)
			}
		}
		o.Items = items
		return nil
	})
}

// Find loads an order with its line items.
func (r *OrderRepository) Find(ctx context.Context, id uint) (models.Order, error) {
	var o models.Order
	err := orm.On(r.db).WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Where("id = ?", id).
		First(&o)
	return o, notFound(err)
}

// List returns one page of orders, newest first.
func (r *OrderRepository) List(ctx context.Context, f OrderFilter) ([]models.Order, orm.Pagination, error) {
	var orders []models.Order
	pg, err := orm.On(r.db).WithContext(ctx).Model(&models.Order{}).
		WhereIf(f.Status != "", "status = ?", f.Status).
		WhereIf(!f.From.IsZero(), "created_at >= ?", f.From).
		WhereIf(!f.To.IsZero(), "created_at < ?", f.To).
		Order("created_at desc, id desc").
		Paginate(f.Page, f.Limit, &orders)
	return orders, pg, err
}

// ForCustomer lists a customer's own orders, newest first.
func (r *OrderRepository) ForCustomer(ctx context.Context, customerID uint) ([]models.Order, error) {
	var orders []models.Order
	err := orm.On(r.db).WithContext(ctx).
		Preload("Items").
		Where("customer_id = ?", customerID).
		Order("created_at desc, id desc").
		Get(&orders)
	return orders, err
}

// UpdateStatus moves an order to status and records the change, atomically.
// It returns the updated order and its previous status. Setting the current
// status again writes nothing.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id uint, status, actor string) (models.Order, string, error) {
	var (
		o    models.Order
		from string
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&o, id).Error; err != nil {
			return notFound(err)
		}
		from = o.Status
		if from == status {
			return nil
		}

		now := time.Now()
		if err := tx.Model(&o).Updates(map[string]any{"status": status, "updated_at": now}).Error; err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		o.Status = status
		o.UpdatedAt = now

		change := models.OrderStatusChange{OrderID: o.ID, From: from, To: status, ChangedBy: actor}
		if err := tx.Create(&change).Error; err != nil {
			return fmt.Errorf("insert status change: %w", err)
		}
		return nil
	})
	return o, from, err
}

// History returns the status changes of an order, oldest first.
func (r *OrderRepository) History(ctx context.Context, orderID uint) ([]models.OrderStatusChange, error) {
	var hs []models.OrderStatusChange
	err := orm.On(r.db).WithContext(ctx).Where("order_id = ?", orderID).Order("id asc").Get(&hs)
	return hs, err
}
