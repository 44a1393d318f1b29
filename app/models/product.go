package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	KindPart  = "part"
	KindTruck = "truck"
)

const (
	StockInStock    = "in_stock"
	StockLowStock   = "low_stock"
	StockOutOfStock = "out_of_stock"
)

// Category groups catalog items.
type Category struct {
	gorm.Model
	Name        string `gorm:"size:255;not null"            json:"name"`
	Slug        string `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	Description string `gorm:"type:text"                    json:"description"`
}

// Product is a catalog item: a part, or a used truck listed for sale.
type Product struct {
	gorm.Model
	Kind          string          `gorm:"size:20;not null;default:part;index" json:"kind"`
	Name          string          `gorm:"size:255;not null;index"             json:"name"`
	Description   string          `gorm:"type:text"                           json:"description"`
	SKU           *string         `gorm:"size:100;uniqueIndex"                json:"sku"`
	VIN           string          `gorm:"size:17;index"                       json:"vin"`
	RetailPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"         json:"retail_price"`
	CustomerPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"         json:"customer_price"`
	StockStatus   string          `gorm:"size:20;not null;default:in_stock"   json:"stock_status"`
	CategoryID    *uint           `gorm:"index"                               json:"category_id"`
	Category      *Category       `json:"category,omitempty"`
	Images        StringList      `gorm:"type:text"                           json:"images"`

	// truck details
	Make         string `gorm:"size:100" json:"make,omitempty"`
	TruckModel   string `gorm:"size:100" json:"model,omitempty"`
	Year         int    `json:"year,omitempty"`
	Engine       string `gorm:"size:255" json:"engine,omitempty"`
	Transmission string `gorm:"size:255" json:"transmission,omitempty"`
	GVW          string `gorm:"size:100" json:"gvw,omitempty"`
}

// Code is the identifier shown next to the name: the SKU for parts, the VIN
// for trucks.
func (p Product) Code() string {
	if p.SKU != nil && *p.SKU != "" {
		return *p.SKU
	}
	return p.VIN
}

// Image returns the first image path, or "".
func (p Product) Image() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

func ValidStockStatus(s string) bool {
	switch s {
	case StockInStock, StockLowStock, StockOutOfStock:
		return true
	}
	return false
}
