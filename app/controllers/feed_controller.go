package controllers

import (
	"time"

	"github.com/shashiranjanraj/rigparts/pkg/ctx"
	"github.com/shashiranjanraj/rigparts/pkg/sse"
	"github.com/shashiranjanraj/rigparts/pkg/ws"
)

const feedHeartbeat = 25 * time.Second

// FeedController streams back-office events (orders, quotes, status
// changes) to signed-in staff.
type FeedController struct {
	hub *ws.Hub
}

func NewFeedController(hub *ws.Hub) *FeedController {
	return &FeedController{hub: hub}
}

// Socket upgrades to a WebSocket subscribed to the hub.
func (fc *FeedController) Socket(c *ctx.Context) {
	fc.hub.Upgrade(c.W, c.R)
}

// Events serves the same feed as Server-Sent Events.
func (fc *FeedController) Events(c *ctx.Context) {
	stream := sse.New(c.W, c.R)
	if stream == nil {
		return
	}

	events, cancel := fc.hub.Subscribe()
	defer cancel()

	heartbeat := time.NewTicker(feedHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.Context().Done():
			return
		case msg, ok := <-events:
			if !ok {
				return
			}
			if err := stream.SendEncoded("feed", msg); err != nil {
				return
			}
		case <-heartbeat.C:
			if err := stream.Comment("ping"); err != nil {
				return
			}
		}
	}
}
