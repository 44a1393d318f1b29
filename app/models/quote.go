package models

import "time"

const (
	QuoteSourcePart    = "part"
	QuoteSourceTruck   = "truck"
	QuoteSourceGeneral = "general"
)

const (
	QuoteNew       = "new"
	QuoteContacted = "contacted"
	QuoteQuoted    = "quoted"
	QuoteClosed    = "closed"
)

func ValidQuoteStatus(s string) bool {
	switch s {
	case QuoteNew, QuoteContacted, QuoteQuoted, QuoteClosed:
		return true
	}
	return false
}

// QuoteRequest is a shopper's request for pricing on a part or truck.
type QuoteRequest struct {
	ID              uint      `gorm:"primaryKey"                     json:"id"`
	Name            string    `gorm:"size:255;not null"              json:"name"`
	Email           string    `gorm:"size:255;not null"              json:"email"`
	Phone           string    `gorm:"size:50"                        json:"phone"`
	Company         string    `gorm:"size:255"                       json:"company"`
	ProductID       *uint     `gorm:"index"                          json:"product_id"`
	Product         *Product  `json:"product,omitempty"`
	Source          string    `gorm:"size:20;not null;default:general" json:"source"`
	PartDescription string    `gorm:"type:text"                      json:"part_description"`
	Quantity        int       `gorm:"not null;default:1"             json:"quantity"`
	Message         string    `gorm:"type:text"                      json:"message"`
	Status          string    `gorm:"size:20;not null;index"         json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
