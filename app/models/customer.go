package models

import "gorm.io/gorm"

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
	RoleStaff    = "staff"
)

// Customer is a storefront account. AuthSubject is the identity the JWT
// carries; the rest is the profile.
type Customer struct {
	gorm.Model
	Name             string `gorm:"size:255;not null"            json:"name"`
	Email            string `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Company          string `gorm:"size:255"                     json:"company"`
	Phone            string `gorm:"size:50"                      json:"phone"`
	Subscribed       bool   `gorm:"not null"                     json:"subscribed"`
	UnsubscribeToken string `gorm:"size:36;not null;uniqueIndex" json:"-"`
	AuthSubject      string `gorm:"size:36;not null;uniqueIndex" json:"-"`
	PasswordHash     string `gorm:"size:255;not null"            json:"-"`
}

// User is a back-office account.
type User struct {
	gorm.Model
	Name     string `gorm:"size:255;not null"             json:"name"`
	Email    string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password string `gorm:"size:255;not null"             json:"-"` // bcrypt hash
	Role     string `gorm:"size:50;default:staff"         json:"role"`
}
