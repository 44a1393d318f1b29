// Package jobs holds the background work queued from request handlers and
// the scheduler.
package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/shashiranjanraj/rigparts/app/services"
	"github.com/shashiranjanraj/rigparts/pkg/logger"
	"github.com/shashiranjanraj/rigparts/pkg/queue"
)

const SendCampaignName = "campaign.send"

// SendCampaign mails a campaign to every subscriber.
type SendCampaign struct {
	CampaignID uint `json:"campaign_id"`

	svc *services.CampaignService
}

func NewSendCampaign(svc *services.CampaignService) *SendCampaign {
	return &SendCampaign{svc: svc}
}

func (*SendCampaign) Name() string { return SendCampaignName }

// Handle sends the campaign. Outcomes that a retry cannot change (already
// sent, nobody subscribed, campaign gone) are logged and swallowed.
func (j *SendCampaign) Handle(ctx context.Context) error {
	report, err := j.svc.Send(ctx, j.CampaignID)
	switch {
	case errors.Is(err, services.ErrCampaignSent),
		errors.Is(err, services.ErrNoRecipients),
		errors.Is(err, services.ErrNotFound):
		logger.WithCtx(ctx).Warn("jobs: campaign not sent", "campaign_id", j.CampaignID, "reason", err)
		return nil
	case err != nil:
		return err
	}

	logger.WithCtx(ctx).Info("jobs: campaign sent",
		"campaign_id", j.CampaignID,
		"recipients", report.Recipients,
		"delivered", report.Delivered,
		"failed", len(report.Failed))
	return nil
}

// Register makes every job type known to m.
func Register(m *queue.Manager, campaigns *services.CampaignService) {
	m.Register(SendCampaignName, func() queue.Job { return NewSendCampaign(campaigns) })
}

// SendDue returns the scheduler task that sends every scheduled campaign
// whose time has come. It runs the sends inline so a slow campaign cannot be
// picked up twice by overlapping ticks.
func SendDue(campaigns *services.CampaignService) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		due, err := campaigns.Due(ctx, time.Now())
		if err != nil {
			return err
		}
		for _, c := range due {
			job := &SendCampaign{CampaignID: c.ID, svc: campaigns}
			if err := job.Handle(ctx); err != nil {
				logger.WithCtx(ctx).Error("jobs: scheduled send failed", "campaign_id", c.ID, "error", err)
			}
		}
		return nil
	}
}
