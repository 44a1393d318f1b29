// Package listeners reacts to domain events: staff notifications and the
// admin live feed.
package listeners

import (
	"context"

	"github.com/shashiranjanraj/rigparts/app/models"
	"github.com/shashiranjanraj/rigparts/app/resources"
	"github.com/shashiranjanraj/rigparts/app/services"
	"github.com/shashiranjanraj/rigparts/config"
	"github.com/shashiranjanraj/rigparts/pkg/event"
	"github.com/shashiranjanraj/rigparts/pkg/logger"
	"github.com/shashiranjanraj/rigparts/pkg/notification"
)

// Publisher pushes an event to connected admin clients.
type Publisher interface {
	Publish(eventType string, data any)
}

// Register subscribes every listener. feed may be nil when no live feed
// runs, as in the CLI.
func Register(feed Publisher) {
	event.Listen(services.EventOrderPlaced, func(ctx context.Context, payload interface{}) {
		o, ok := payload.(*models.Order)
		if !ok {
			return
		}
		notification.Send(ctx, config.AdminEmail(), OrderPlaced{Order: *o})
		publish(feed, services.EventOrderPlaced, resources.OrderResource{}.ToArray(*o))
	})

	event.Listen(services.EventOrderStatusChanged, func(ctx context.Context, payload interface{}) {
		ch, ok := payload.(services.OrderStatusChanged)
		if !ok {
			return
		}
		publish(feed, services.EventOrderStatusChanged, map[string]any{
			"order_id": ch.Order.ID,
			"from":     ch.From,
			"to":       ch.To,
			"by":       ch.Actor,
		})
	})

	event.Listen(services.EventQuoteCreated, func(ctx context.Context, payload interface{}) {
		q, ok := payload.(*models.QuoteRequest)
		if !ok {
			return
		}
		notification.Send(ctx, config.AdminEmail(), QuoteRequested{Quote: *q})
		publish(feed, services.EventQuoteCreated, resources.QuoteResource{}.ToArray(*q))
	})

	logger.Debug("listeners: registered")
}

func publish(feed Publisher, eventType string, data any) {
	if feed != nil {
		feed.Publish(eventType, data)
	}
}
