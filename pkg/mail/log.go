package mail

import (
	"context"

	"github.com/shashiranjanraj/rigparts/pkg/logger"
)

// LogTransport writes messages to the log instead of sending them.
// It is the local-development default.
type LogTransport struct{}

func (LogTransport) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger.WithCtx(ctx).Info("mail: logged",
		"to", msg.To,
		"subject", msg.Subject,
		"bytes", len(msg.HTML),
	)
	return nil
}
