package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/rigparts/app/models"
	"github.com/shashiranjanraj/rigparts/pkg/testkit"
	"github.com/shashiranjanraj/rigparts/pkg/validate"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testkit.DB(t, models.All()...)
}

func seedPart(t *testing.T, db *gorm.DB, name, sku, retail, customer string) models.Product {
	t.Helper()
	p := models.Product{
		Kind:          models.KindPart,
		Name:          name,
		SKU:           &sku,
		RetailPrice:   d(retail),
		CustomerPrice: d(customer),
		StockStatus:   models.StockInStock,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func seedCustomer(t *testing.T, db *gorm.DB, name, email string, subscribed bool) models.Customer {
	t.Helper()
	c := models.Customer{
		Name:             name,
		Email:            email,
		Subscribed:       subscribed,
		UnsubscribeToken: uuid.NewString(),
		AuthSubject:      uuid.NewString(),
		PasswordHash:     "x",
	}
	require.NoError(t, db.Create(&c).Error)
	return c
}

// fields returns the field map of a validation error, failing otherwise.
func fields(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *validate.Error
	require.ErrorAs(t, err, &verr)
	return verr.Fields
}

var bg = context.Background()
