package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/rigparts/app/models"
	"github.com/shashiranjanraj/rigparts/pkg/orm"
)

type QuoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

func (r *QuoteRepository) Create(ctx context.Context, q *models.QuoteRequest) error {
	return r.db.WithContext(ctx).Omit("Product").Create(q).Error
}

func (r *QuoteRepository) Find(ctx context.Context, id uint) (models.QuoteRequest, error) {
	var q models.QuoteRequest
	err := orm.On(r.db).WithContext(ctx).Preload("Product").Where("id = ?", id).First(&q)
	return q, notFound(err)
}

// List returns one page of quote requests, newest first.
func (r *QuoteRepository) List(ctx context.Context, status string, page, limit int) ([]models.QuoteRequest, orm.Pagination, error) {
	var qs []models.QuoteRequest
	pg, err := orm.On(r.db).WithContext(ctx).Model(&models.QuoteRequest{}).
		WhereIf(status != "", "status = ?", status).
		Order("created_at desc, id desc").
		Paginate(page, limit, &qs)
	return qs, pg, err
}

func (r *QuoteRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	res := r.db.WithContext(ctx).Model(&models.QuoteRequest{}).Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
