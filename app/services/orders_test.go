package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/rigparts/app/models"
	"github.com/shashiranjanraj/rigparts/app/pricing"
	"github.com/shashiranjanraj/rigparts/app/repositories"
)

func placeOrder(t *testing.T, svc *CheckoutService, p models.Product) *models.Order {
	t.Helper()
	o, err := svc.PlaceOrder(bg, snapshotOf(t, pricing.Anonymous(), p, 1), contact(models.DeliveryPickup))
	require.NoError(t, err)
	return o
}

func TestUpdateStatus_RecordsHistory(t *testing.T) {
	db := newDB(t)
	p := seedPart(t, db, "Fuel filter", "FF-1", "20.00", "19.00")
	o := placeOrder(t, NewCheckoutService(db), p)
	svc := NewOrderService(db)

	updated, err := svc.UpdateStatus(bg, o.ID, models.OrderPaid, "admin@rigparts.test")
	require.NoError(t, err)
	assert.Equal(t, models.OrderPaid, updated.Status)

	_, err = svc.UpdateStatus(bg, o.ID, models.OrderCompleted, "admin@rigparts.test")
	require.NoError(t, err)

	// completed is terminal by convention only
	_, err = svc.UpdateStatus(bg, o.ID, models.OrderProcessing, "staff@rigparts.test")
	require.NoError(t, err)

	hist, err := svc.History(bg, o.ID)
	require.NoError(t, err)
	require.Len(t, hist, 3)
	assert.Equal(t, models.OrderPending, hist[0].From)
	assert.Equal(t, models.OrderPaid, hist[0].To)
	assert.Equal(t, models.OrderCompleted, hist[1].To)
	assert.Equal(t, "staff@rigparts.test", hist[2].ChangedBy)
}

func TestUpdateStatus_SameStatusWritesNothing(t *testing.T) {
	db := newDB(t)
	o := placeOrder(t, NewCheckoutService(db), seedPart(t, db, "Belt", "B-1", "20.00", "19.00"))
	svc := NewOrderService(db)

	got, err := svc.UpdateStatus(bg, o.ID, models.OrderPending, "admin")
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, got.Status)

	hist, err := svc.History(bg, o.ID)
	require.NoError(t, err)
	assert.Empty(t, hist)
}

func TestUpdateStatus_Rejects(t *testing.T) {
	db := newDB(t)
	o := placeOrder(t, NewCheckoutService(db), seedPart(t, db, "Belt", "B-1", "20.00", "19.00"))
	svc := NewOrderService(db)

	_, err := svc.UpdateStatus(bg, o.ID, "shipped", "admin")
	assert.Equal(t, "The selected status is invalid.", fields(t, err)["status"])

	_, err = svc.UpdateStatus(bg, o.ID+100, models.OrderPaid, "admin")
	assert.ErrorIs(t, err, ErrNotFound)

	stored, err := svc.Get(bg, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, stored.Status)
}

func TestOrderList_FiltersByStatus(t *testing.T) {
	db := newDB(t)
	checkout := NewCheckoutService(db)
	p := seedPart(t, db, "Belt", "B-1", "20.00", "19.00")
	a := placeOrder(t, checkout, p)
	placeOrder(t, checkout, p)

	svc := NewOrderService(db)
	_, err := svc.UpdateStatus(bg, a.ID, models.OrderReady, "admin")
	require.NoError(t, err)

	orders, pg, err := svc.List(bg, repositories.OrderFilter{Status: models.OrderReady})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, a.ID, orders[0].ID)
	assert.Equal(t, int64(1), pg.Total)

	_, _, err = svc.List(bg, repositories.OrderFilter{Status: "lost"})
	assert.Contains(t, fields(t, err), "status")
}
