package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shashiranjanraj/rigparts/app/models"
	"github.com/shashiranjanraj/rigparts/pkg/orm"
)

// CampaignRepository persists campaigns and their product placements.
type CampaignRepository struct {
	db *gorm.DB
}

func NewCampaignRepository(db *gorm.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

func (r *CampaignRepository) Create(ctx context.Context, c *models.Campaign) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error
}

// Find loads a campaign with its products in position order.
func (r *CampaignRepository) Find(ctx context.Context, id uint) (models.Campaign, error) {
	var c models.Campaign
	err := orm.On(r.db).WithContext(ctx).
		Preload("Products", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("Products.Product").
		Where("id = ?", id).
		First(&c)
	return c, notFound(err)
}

func (r *CampaignRepository) List(ctx context.Context, page, limit int) ([]models.Campaign, orm.Pagination, error) {
	var cs []models.Campaign
	pg, err := orm.On(r.db).WithContext(ctx).Model(&models.Campaign{}).
		Order("created_at desc, id desc").
		Paginate(page, limit, &cs)
	return cs, pg, err
}

// Update writes the given columns only.
func (r *CampaignRepository) Update(ctx context.Context, id uint, fields map[string]any) error {
	fields["updated_at"] = time.Now()
	res := r.db.WithContext(ctx).Model(&models.Campaign{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceProducts sets the campaign's products to productIDs, in order.
func (r *CampaignRepository) ReplaceProducts(ctx context.Context, id uint, productIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("campaign_id = ?", id).Delete(&models.CampaignProduct{}).Error; err != nil {
			return fmt.Errorf("clear products: %w", err)
		}
		if len(productIDs) == 0 {
			return nil
		}
		rows := make([]models.CampaignProduct, 0, len(productIDs))
		for i, pid := range productIDs {
			rows = append(rows, models.CampaignProduct{CampaignID: id, ProductID: pid, Position: i + 1})
		}
		if err := tx.Omit("Product").Create(&rows).Error; err != nil {
			return fmt.Errorf("insert products: %w", err)
		}
		return nil
	})
}

// Reserve moves a draft or scheduled campaign to sending in a single
// conditional update. Only one caller can win; the rest get false.
func (r *CampaignRepository) Reserve(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Campaign{}).
		Where("id = ? AND status IN ?", id, []string{models.CampaignDraft, models.CampaignScheduled}).
		Updates(map[string]any{
			"status":     models.CampaignSending,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Release hands a reserved campaign back, restoring status.
func (r *CampaignRepository) Release(ctx context.Context, id uint, status string) error {
	return r.db.WithContext(ctx).Model(&models.Campaign{}).
		Where("id = ? AND status = ?", id, models.CampaignSending).
		Updates(map[string]any{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

// MarkSent records a completed send of a reserved campaign.
func (r *CampaignRepository) MarkSent(ctx context.Context, id uint, recipients int, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Campaign{}).
		Where("id = ? AND status = ?", id, models.CampaignSending).
		Updates(map[string]any{
			"status":          models.CampaignSent,
			"recipient_count": recipients,
			"sent_at":         at,
			"updated_at":      at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DueScheduled returns scheduled campaigns whose time has come.
func (r *CampaignRepository) DueScheduled(ctx context.Context, now time.Time) ([]models.Campaign, error) {
	var cs []models.Campaign
	err := orm.On(r.db).WithContext(ctx).
		Where("status = ? AND scheduled_at <= ?", models.CampaignScheduled, now).
		Order("scheduled_at asc").
		Get(&cs)
	return cs, err
}

// TrackingRepository appends and reads campaign engagement events.
type TrackingRepository struct {
	db *gorm.DB
}

func NewTrackingRepository(db *gorm.DB) *TrackingRepository {
	return &TrackingRepository{db: db}
}

func (r *TrackingRepository) Record(ctx context.Context, e *models.TrackingEvent) error {
	return r.db.WithContext(ctx).Create(e).Error
}

// ForCampaign returns every event of a campaign in arrival order.
func (r *TrackingRepository) ForCampaign(ctx context.Context, campaignID uint) ([]models.TrackingEvent, error) {
	var es []models.TrackingEvent
	err := orm.On(r.db).WithContext(ctx).Where("campaign_id = ?", campaignID).Order("id asc").Get(&es)
	return es, err
}
