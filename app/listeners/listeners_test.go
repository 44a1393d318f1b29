package listeners

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/rigparts/app/models"
	"github.com/shashiranjanraj/rigparts/app/services"
	"github.com/shashiranjanraj/rigparts/config"
	"github.com/shashiranjanraj/rigparts/pkg/event"
	"github.com/shashiranjanraj/rigparts/pkg/mail"
	"github.com/shashiranjanraj/rigparts/pkg/testkit"
)

type feed struct {
	mu     sync.Mutex
	events []string
}

func (f *feed) Publish(eventType string, _ any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, eventType)
}

func setup(t *testing.T) (*testkit.Mailbox, *feed) {
	t.Helper()
	box := testkit.NewMailbox()
	mail.SetTransport(box)
	config.Set("ADMIN_EMAIL", "desk@rigparts.test")
	event.Flush()

	f := &feed{}
	Register(f)
	t.Cleanup(func() {
		event.Flush()
		mail.SetTransport(nil)
	})
	return box, f
}

func TestOrderPlaced_NotifiesDeskAndFeed(t *testing.T) {
	box, f := setup(t)

	o := &models.Order{
		ID: 12, ContactName: "Pat <Fleet>", ContactEmail: "pat@example.com",
		DeliveryMethod: models.DeliveryPickup, Status: models.OrderPending,
		Total: decimal.RequireFromString("226.00"),
		Items: []models.OrderItem{{ProductName: "Brake chamber", SKU: "BC-30", Quantity: 2,
			Subtotal: decimal.RequireFromString("200.00")}},
	}
	event.Fire(context.Background(), services.EventOrderPlaced, o)

	msgs := box.To("desk@rigparts.test")
	require.Len(t, msgs, 1)
	assert.Equal(t, "New order #12 ($226.00)", msgs[0].Subject)
	assert.Contains(t, msgs[0].HTML, "Pat &lt;Fleet&gt;")
	assert.Contains(t, msgs[0].HTML, "Brake chamber")
	assert.Equal(t, []string{services.EventOrderPlaced}, f.events)
}

func TestStatusChange_FeedOnly(t *testing.T) {
	box, f := setup(t)

	event.Fire(context.Background(), services.EventOrderStatusChanged, services.OrderStatusChanged{
		Order: models.Order{ID: 3}, From: models.OrderPending, To: models.OrderPaid, Actor: "admin@rigparts.test",
	})

	assert.Empty(t, box.Sent())
	assert.Equal(t, []string{services.EventOrderStatusChanged}, f.events)
}

func TestQuoteCreated_Notifies(t *testing.T) {
	box, f := setup(t)

	event.Fire(context.Background(), services.EventQuoteCreated, &models.QuoteRequest{
		ID: 5, Name: "Lee", Email: "lee@example.com", Source: models.QuoteSourceGeneral,
		PartDescription: "Turbo for a 2016 Cascadia", Quantity: 1,
	})

	msgs := box.To("desk@rigparts.test")
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].HTML, "Turbo for a 2016 Cascadia")
	assert.Equal(t, []string{services.EventQuoteCreated}, f.events)
}
