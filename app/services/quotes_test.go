package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/rigparts/app/models"
	"github.com/shashiranjanraj/rigparts/pkg/event"
)

func TestQuoteCreate(t *testing.T) {
	db := newDB(t)
	svc := NewQuoteService(db)
	p := seedPart(t, db, "Fifth wheel", "FW-1", "1200.00", "1140.00")

	got := make(chan *models.QuoteRequest, 1)
	event.Listen(EventQuoteCreated, func(_ context.Context, payload interface{}) {
		got <- payload.(*models.QuoteRequest)
	})
	t.Cleanup(event.Flush)

	q, err := svc.Create(bg, QuoteInput{Name: "Dana", Email: "Dana@Example.com", ProductID: &p.ID, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, models.QuoteNew, q.Status)
	assert.Equal(t, models.QuoteSourcePart, q.Source)
	assert.Equal(t, "dana@example.com", q.Email)
	assert.Equal(t, 2, q.Quantity)

	event.Wait()
	fired := <-got
	assert.Equal(t, q.ID, fired.ID)
}

func TestQuoteCreate_Validation(t *testing.T) {
	db := newDB(t)
	svc := NewQuoteService(db)

	missing := uint(999)
	_, err := svc.Create(bg, QuoteInput{Name: "Dana", Email: "dana@example.com", ProductID: &missing})
	assert.Contains(t, fields(t, err), "product_id")

	_, err = svc.Create(bg, QuoteInput{Name: "Dana", Email: "dana@example.com"})
	assert.Contains(t, fields(t, err), "part_description")

	_, err = svc.Create(bg, QuoteInput{Email: "dana@", Source: "boat", PartDescription: "x"})
	f := fields(t, err)
	assert.Contains(t, f, "name")
	assert.Contains(t, f, "email")
	assert.Contains(t, f, "source")

	q, err := svc.Create(bg, QuoteInput{Name: "Dana", Email: "dana@example.com", PartDescription: "Turbo for a DD15"})
	require.NoError(t, err)
	assert.Equal(t, models.QuoteSourceGeneral, q.Source)
	assert.Equal(t, 1, q.Quantity)
}

func TestQuoteStatusAndList(t *testing.T) {
	db := newDB(t)
	svc := NewQuoteService(db)
	a, err := svc.Create(bg, QuoteInput{Name: "A", Email: "a@example.com", PartDescription: "one"})
	require.NoError(t, err)
	_, err = svc.Create(bg, QuoteInput{Name: "B", Email: "b@example.com", PartDescription: "two"})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(bg, a.ID, models.QuoteContacted)
	require.NoError(t, err)
	assert.Equal(t, models.QuoteContacted, updated.Status)

	_, err = svc.UpdateStatus(bg, a.ID, "won")
	assert.Contains(t, fields(t, err), "status")
	_, err = svc.UpdateStatus(bg, 999, models.QuoteClosed)
	assert.ErrorIs(t, err, ErrNotFound)

	list, pg, err := svc.List(bg, models.QuoteNew, 1, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "B", list[0].Name)
	assert.Equal(t, int64(1), pg.Total)
}
