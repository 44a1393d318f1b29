package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/rigparts/app/models"
	"github.com/shashiranjanraj/rigparts/app/repositories"
	"github.com/shashiranjanraj/rigparts/pkg/metrics"
)

// TrackingService appends campaign engagement events. It does not dedupe:
// every pixel load and every click is a row.
type TrackingService struct {
	events *repositories.TrackingRepository
}

func NewTrackingService(db *gorm.DB) *TrackingService {
	return &TrackingService{events: repositories.NewTrackingRepository(db)}
}

func (s *TrackingService) RecordOpen(ctx context.Context, campaignID uint, email string) error {
	return s.record(ctx, &models.TrackingEvent{
		CampaignID:    campaignID,
		CustomerEmail: normalizeEmail(email),
		EventType:     models.EventOpen,
	})
}

func (s *TrackingService) RecordClick(ctx context.Context, campaignID uint, email string, productID uint) error {
	e := &models.TrackingEvent{
		CampaignID:    campaignID,
		CustomerEmail: normalizeEmail(email),
		EventType:     models.EventClick,
	}
	if productID != 0 {
		e.ProductID = &productID
	}
	return s.record(ctx, e)
}

func (s *TrackingService) record(ctx context.Context, e *models.TrackingEvent) error {
	if e.CampaignID == 0 || e.CustomerEmail == "" {
		return fmt.Errorf("tracking: %s event needs a campaign and an email", e.EventType)
	}
	if err := s.events.Record(ctx, e); err != nil {
		return fmt.Errorf("tracking: record %s: %w", e.EventType, err)
	}
	metrics.TrackingEvent(e.EventType)
	return nil
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
