package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/rigparts/app/models"
	"github.com/shashiranjanraj/rigparts/app/repositories"
	"github.com/shashiranjanraj/rigparts/pkg/event"
	"github.com/shashiranjanraj/rigparts/pkg/logger"
	"github.com/shashiranjanraj/rigparts/pkg/orm"
	"github.com/shashiranjanraj/rigparts/pkg/validate"
)

// EventQuoteCreated fires with the *models.QuoteRequest once stored.
const EventQuoteCreated = "quote.created"

type QuoteInput struct {
	Name            string `json:"name"             validate:"required,max=255"`
	Email           string `json:"email"            validate:"required,email,max=255"`
	Phone           string `json:"phone"            validate:"nullable,max=50"`
	Company         string `json:"company"          validate:"nullable,max=255"`
	ProductID       *uint  `json:"product_id"`
	Source          string `json:"source"           validate:"nullable,in=part|truck|general"`
	PartDescription string `json:"part_description" validate:"nullable,max=5000"`
	Quantity        int    `json:"quantity"         validate:"nullable,gte=1,lte=9999"`
	Message         string `json:"message"          validate:"nullable,max=5000"`
}

// QuoteService takes pricing requests from the storefront and tracks them
// through the sales team's follow-up.
type QuoteService struct {
	quotes   *repositories.QuoteRepository
	products *repositories.ProductRepository
}

func NewQuoteService(db *gorm.DB) *QuoteService {
	return &QuoteService{
		quotes:   repositories.NewQuoteRepository(db),
		products: repositories.NewProductRepository(db),
	}
}

func (s *QuoteService) Create(ctx context.Context, in QuoteInput) (*models.QuoteRequest, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validate.Check(in); err != nil {
		return nil, err
	}

	q := &models.QuoteRequest{
		Name:            strings.TrimSpace(in.Name),
		Email:           in.Email,
		Phone:           strings.TrimSpace(in.Phone),
		Company:         strings.TrimSpace(in.Company),
		Source:          in.Source,
		PartDescription: strings.TrimSpace(in.PartDescription),
		Quantity:        in.Quantity,
		Message:         strings.TrimSpace(in.Message),
		Status:          models.QuoteNew,
	}
	if q.Quantity == 0 {
		q.Quantity = 1
	}

	if in.ProductID != nil && *in.ProductID != 0 {
		p, err := s.products.Find(ctx, *in.ProductID)
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, validate.Field("product_id", "The selected product_id is invalid.")
		}
		if err != nil {
			return nil, fmt.Errorf("quotes: load product: %w", err)
		}
		q.ProductID = &p.ID
		q.Product = &p
		if q.Source == "" {
			q.Source = p.Kind
		}
	}
	if q.Source == "" {
		q.Source = models.QuoteSourceGeneral
	}
	if q.ProductID == nil && q.PartDescription == "" && q.Message == "" {
		return nil, validate.Field("part_description", "Tell us which part you need or pick a product.")
	}

	if err := s.quotes.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("quotes: create: %w", err)
	}

	logger.WithCtx(ctx).Info("quotes: received", "quote_id", q.ID, "source", q.Source)
	event.FireAsync(ctx, EventQuoteCreated, q)
	return q, nil
}

func (s *QuoteService) Get(ctx context.Context, id uint) (models.QuoteRequest, error) {
	return s.quotes.Find(ctx, id)
}

func (s *QuoteService) List(ctx context.Context, status string, page, limit int) ([]models.QuoteRequest, orm.Pagination, error) {
	if status != "" && !models.ValidQuoteStatus(status) {
		return nil, orm.Pagination{}, validate.Field("status", "The selected status is invalid.")
	}
	return s.quotes.List(ctx, status, page, limit)
}

func (s *QuoteService) UpdateStatus(ctx context.Context, id uint, status string) (models.QuoteRequest, error) {
	if !models.ValidQuoteStatus(status) {
		return models.QuoteRequest{}, validate.Field("status", "The selected status is invalid.")
	}
	if err := s.quotes.UpdateStatus(ctx, id, status); err != nil {
		return models.QuoteRequest{}, err
	}
	return s.quotes.Find(ctx, id)
}
