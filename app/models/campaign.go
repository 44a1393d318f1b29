package models

import "time"

const (
	CampaignDraft     = "draft"
	CampaignScheduled = "scheduled"
	CampaignSending   = "sending"
	CampaignSent      = "sent"
)

const (
	EventOpen  = "open"
	EventClick = "click"
)

// Campaign is a marketing email featuring an ordered set of products.
type Campaign struct {
	ID             uint              `gorm:"primaryKey"             json:"id"`
	Name           string            `gorm:"size:255;not null"      json:"name"`
	Subject        string            `gorm:"size:255;not null"      json:"subject"`
	Headline       string            `gorm:"size:255"               json:"headline"`
	Intro          string            `gorm:"type:text"              json:"intro"`
	Status         string            `gorm:"size:20;not null;index" json:"status"`
	RecipientCount int               `gorm:"not null;default:0"     json:"recipient_count"`
	ScheduledAt    *time.Time        `gorm:"index"                  json:"scheduled_at"`
	SentAt         *time.Time        `json:"sent_at"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	Products       []CampaignProduct `gorm:"foreignKey:CampaignID"  json:"products,omitempty"`
}

// Locked reports whether a send has started or finished. Locked campaigns
// can no longer be edited, scheduled or sent.
func (c Campaign) Locked() bool {
	return c.Status == CampaignSending || c.Status == CampaignSent
}

// CampaignProduct places a product at a position within a campaign.
type CampaignProduct struct {
	CampaignID uint    `gorm:"primaryKey;autoIncrement:false" json:"campaign_id"`
	ProductID  uint    `gorm:"primaryKey;autoIncrement:false" json:"product_id"`
	Position   int     `gorm:"not null"                       json:"position"`
	Product    Product `gorm:"foreignKey:ProductID"           json:"product"`
}

// TrackingEvent is one observed open or click. Rows are append-only.
type TrackingEvent struct {
	ID            uint      `gorm:"primaryKey"             json:"id"`
	CampaignID    uint      `gorm:"not null;index"         json:"campaign_id"`
	CustomerEmail string    `gorm:"size:255;not null"      json:"customer_email"`
	EventType     string    `gorm:"size:10;not null;index" json:"event_type"`
	ProductID     *uint     `json:"product_id"`
	CreatedAt     time.Time `json:"created_at"`
}
