package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DeliveryPickup   = "pickup"
	DeliveryLocal    = "delivery"
	DeliveryShipping = "shipping"
)

const (
	OrderPending    = "pending"
	OrderPaid       = "paid"
	OrderProcessing = "processing"
	OrderReady      = "ready"
	OrderCompleted  = "completed"
	OrderCancelled  = "cancelled"
)

// OrderStatuses lists every order state in workflow order.
var OrderStatuses = []string{
	OrderPending, OrderPaid, OrderProcessing, OrderReady, OrderCompleted, OrderCancelled,
}

func ValidOrderStatus(s string) bool {
	for _, st := range OrderStatuses {
		if st == s {
			return true
		}
	}
	return false
}

func ValidDeliveryMethod(m string) bool {
	return m == DeliveryPickup || m == DeliveryLocal || m == DeliveryShipping
}

// Order is a placed order. Contact fields are a snapshot taken at checkout.
type Order struct {
	ID             uint            `gorm:"primaryKey"                      json:"id"`
	CustomerID     *uint           `gorm:"index"                           json:"customer_id"`
	ContactName    string          `gorm:"size:255;not null"               json:"contact_name"`
	ContactEmail   string          `gorm:"size:255;not null;index"         json:"contact_email"`
	ContactPhone   string          `gorm:"size:50;not null"                json:"contact_phone"`
	ContactCompany string          `gorm:"size:255"                        json:"contact_company"`
	DeliveryMethod string          `gorm:"size:20;not null"                json:"delivery_method"`
	Address        string          `gorm:"size:255"                        json:"address"`
	City           string          `gorm:"size:100"                        json:"city"`
	Province       string          `gorm:"size:100"                        json:"province"`
	PostalCode     string          `gorm:"size:20"                         json:"postal_code"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"     json:"subtotal"`
	Tax            decimal.Decimal `gorm:"type:decimal(12,2);not null"     json:"tax"`
	Shipping       decimal.Decimal `gorm:"type:decimal(12,2);not null"     json:"shipping"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null"     json:"total"`
	Status         string          `gorm:"size:20;not null;index"          json:"status"`
	Notes          string          `gorm:"type:text"                       json:"notes"`
	CreatedAt      time.Time       `gorm:"index"                           json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Items          []OrderItem     `gorm:"foreignKey:OrderID"              json:"items,omitempty"`
}

// OrderItem is an immutable line of an order.
type OrderItem struct {
	ID          uint            `gorm:"primaryKey"                  json:"id"`
	OrderID     uint            `gorm:"not null;index"              json:"order_id"`
	ProductID   uint            `gorm:"not null"                    json:"product_id"`
	ProductName string          `gorm:"size:255;not null"           json:"product_name"`
	SKU         string          `gorm:"size:100"                    json:"sku"`
	Quantity    int             `gorm:"not null"                    json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	CreatedAt   time.Time       `json:"created_at"`
}

// OrderStatusChange is one entry in an order's audit trail.
type OrderStatusChange struct {
	ID        uint      `gorm:"primaryKey"            json:"id"`
	OrderID   uint      `gorm:"not null;index"        json:"order_id"`
	From      string    `gorm:"column:from_status;size:20" json:"from"`
	To        string    `gorm:"column:to_status;size:20"   json:"to"`
	ChangedBy string    `gorm:"size:255"              json:"changed_by"`
	CreatedAt time.Time `json:"created_at"`
}
