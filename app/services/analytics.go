package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/rigparts/app/analytics"
	"github.com/shashiranjanraj/rigparts/app/repositories"
	"github.com/shashiranjanraj/rigparts/pkg/collection"
)

// AnalyticsService builds campaign engagement reports from stored events.
type AnalyticsService struct {
	campaigns *repositories.CampaignRepository
	events    *repositories.TrackingRepository
	products  *repositories.ProductRepository
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{
		campaigns: repositories.NewCampaignRepository(db),
		events:    repositories.NewTrackingRepository(db),
		products:  repositories.NewProductRepository(db),
	}
}

// ForCampaign reports on campaign id. An unknown campaign yields an
// all-zero report rather than an error.
func (s *AnalyticsService) ForCampaign(ctx context.Context, id uint) (analytics.Report, error) {
	c, err := s.campaigns.Find(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return analytics.Empty(id), nil
	}
	if err != nil {
		return analytics.Report{}, fmt.Errorf("analytics: load campaign: %w", err)
	}

	events, err := s.events.ForCampaign(ctx, id)
	if err != nil {
		return analytics.Report{}, fmt.Errorf("analytics: load events: %w", err)
	}

	report := analytics.Aggregate(c.RecipientCount, events)
	report.CampaignID = id

	if len(report.TopProducts) > 0 {
		ids := collection.Pluck(report.TopProducts, func(p analytics.ProductClicks) uint { return p.ProductID })
		byID, err := s.products.FindMany(ctx, ids)
		if err != nil {
			return analytics.Report{}, fmt.Errorf("analytics: load products: %w", err)
		}
		for i := range report.TopProducts {
			if p, ok := byID[report.TopProducts[i].ProductID]; ok {
				report.TopProducts[i].Name = p.Name
			}
		}
	}

	return report, nil
}
