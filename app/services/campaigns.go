package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/rigparts/app/models"
	"github.com/shashiranjanraj/rigparts/app/repositories"
	"github.com/shashiranjanraj/rigparts/config"
	"github.com/shashiranjanraj/rigparts/pkg/collection"
	"github.com/shashiranjanraj/rigparts/pkg/logger"
	"github.com/shashiranjanraj/rigparts/pkg/mail"
	"github.com/shashiranjanraj/rigparts/pkg/metrics"
	"github.com/shashiranjanraj/rigparts/pkg/orm"
	"github.com/shashiranjanraj/rigparts/pkg/validate"
	"github.com/shashiranjanraj/rigparts/pkg/workerpool"
)

// CampaignInput is the editable content of a campaign.
type CampaignInput struct {
	Name     string `json:"name"     validate:"required,max=255"`
	Subject  string `json:"subject"  validate:"required,max=255"`
	Headline string `json:"headline" validate:"nullable,max=255"`
	Intro    string `json:"intro"    validate:"nullable,max=5000"`
}

// SendFailure is one recipient the campaign could not be delivered to.
type SendFailure struct {
	Email string `json:"email"`
	Error string `json:"error"`
}

// SendReport summarises a campaign send.
type SendReport struct {
	CampaignID uint          `json:"campaign_id"`
	Recipients int           `json:"recipients"`
	Delivered  int           `json:"delivered"`
	Failed     []SendFailure `json:"failed"`
}

// CampaignService composes, schedules and sends marketing campaigns.
type CampaignService struct {
	campaigns *repositories.CampaignRepository
	customers *repositories.CustomerRepository
	products  *repositories.ProductRepository
	composer  *Composer
	transport mail.Transport
}

func NewCampaignService(db *gorm.DB) *CampaignService {
	return &CampaignService{
		campaigns: repositories.NewCampaignRepository(db),
		customers: repositories.NewCustomerRepository(db),
		products:  repositories.NewProductRepository(db),
		composer:  NewComposer(),
	}
}

// Via sends through t instead of the configured mail transport.
func (s *CampaignService) Via(t mail.Transport) *CampaignService {
	s.transport = t
	return s
}

// WithComposer replaces the renderer.
func (s *CampaignService) WithComposer(c *Composer) *CampaignService {
	s.composer = c
	return s
}

func (s *CampaignService) Create(ctx context.Context, in CampaignInput) (models.Campaign, error) {
	if err := validate.Check(in); err != nil {
		return models.Campaign{}, err
	}
	c := models.Campaign{
		Name:     in.Name,
		Subject:  in.Subject,
		Headline: in.Headline,
		Intro:    in.Intro,
		Status:   models.CampaignDraft,
	}
	if err := s.campaigns.Create(ctx, &c); err != nil {
		return models.Campaign{}, fmt.Errorf("campaigns: create: %w", err)
	}
	return c, nil
}

func (s *CampaignService) Get(ctx context.Context, id uint) (models.Campaign, error) {
	return s.campaigns.Find(ctx, id)
}

func (s *CampaignService) List(ctx context.Context, page, limit int) ([]models.Campaign, orm.Pagination, error) {
	return s.campaigns.List(ctx, page, limit)
}

// Update rewrites the content of an unsent campaign.
func (s *CampaignService) Update(ctx context.Context, id uint, in CampaignInput) (models.Campaign, error) {
	if _, err := s.editable(ctx, id); err != nil {
		return models.Campaign{}, err
	}
	if err := validate.Check(in); err != nil {
		return models.Campaign{}, err
	}
	err := s.campaigns.Update(ctx, id, map[string]any{
		"name":     in.Name,
		"subject":  in.Subject,
		"headline": in.Headline,
		"intro":    in.Intro,
	})
	if err != nil {
		return models.Campaign{}, fmt.Errorf("campaigns: update %d: %w", id, err)
	}
	return s.campaigns.Find(ctx, id)
}

// SetProducts features productIDs in the campaign, in the given order.
// Repeated ids keep their first position.
func (s *CampaignService) SetProducts(ctx context.Context, id uint, productIDs []uint) (models.Campaign, error) {
	if _, err := s.editable(ctx, id); err != nil {
		return models.Campaign{}, err
	}

	ids := collection.UniqueBy(productIDs, func(id uint) uint { return id })
	found, err := s.products.FindMany(ctx, ids)
	if err != nil {
		return models.Campaign{}, fmt.Errorf("campaigns: load products: %w", err)
	}
	for _, pid := range ids {
		if _, ok := found[pid]; !ok {
			return models.Campaign{}, validate.Field("product_ids", fmt.Sprintf("The selected product %d is invalid.", pid))
		}
	}

	if err := s.campaigns.ReplaceProducts(ctx, id, ids); err != nil {
		return models.Campaign{}, fmt.Errorf("campaigns: set products of %d: %w", id, err)
	}
	return s.campaigns.Find(ctx, id)
}

// Schedule queues the campaign for the scheduler to send at at.
func (s *CampaignService) Schedule(ctx context.Context, id uint, at time.Time) (models.Campaign, error) {
	if _, err := s.editable(ctx, id); err != nil {
		return models.Campaign{}, err
	}
	if !at.After(time.Now()) {
		return models.Campaign{}, validate.Field("scheduled_at", "The scheduled_at must be a time in the future.")
	}
	err := s.campaigns.Update(ctx, id, map[string]any{
		"status":       models.CampaignScheduled,
		"scheduled_at": at,
	})
	if err != nil {
		return models.Campaign{}, fmt.Errorf("campaigns: schedule %d: %w", id, err)
	}
	return s.campaigns.Find(ctx, id)
}

// Due returns the scheduled campaigns whose send time is at or before now.
func (s *CampaignService) Due(ctx context.Context, now time.Time) ([]models.Campaign, error) {
	return s.campaigns.DueScheduled(ctx, now)
}

// Send delivers campaign id to every subscribed customer. The campaign is
// first reserved with a conditional update, so of two overlapping sends only
// one delivers and the other gets ErrCampaignSent. Deliveries run on a
// bounded worker pool, each under MAIL_TIMEOUT. The campaign is marked sent
// unless no delivery succeeded, in which case it is released back to its
// previous status and ErrSendFailed is returned together with the report.
func (s *CampaignService) Send(ctx context.Context, id uint) (report *SendReport, err error) {
	c, err := s.editable(ctx, id)
	if err != nil {
		return nil, err
	}
	won, err := s.campaigns.Reserve(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("campaigns: reserve %d: %w", id, err)
	}
	if !won {
		return nil, ErrCampaignSent
	}

	log := logger.WithCtx(ctx).With("campaign_id", id)
	defer func() {
		if err == nil {
			return
		}
		// The send context may be the one that just ended.
		if rerr := s.campaigns.Release(context.WithoutCancel(ctx), id, c.Status); rerr != nil {
			log.Error("campaigns: release failed", "error", rerr)
		}
	}()

	recipients, err := s.customers.Subscribed(ctx)
	if err != nil {
		return nil, fmt.Errorf("campaigns: load recipients: %w", err)
	}
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}

	transport := s.transport
	if transport == nil {
		if transport, err = mail.Default(ctx); err != nil {
			return nil, fmt.Errorf("campaigns: mail transport: %w", err)
		}
	}

	log.Info("campaigns: sending", "recipients", len(recipients))

	report = &SendReport{CampaignID: id, Recipients: len(recipients), Failed: []SendFailure{}}
	var mu sync.Mutex
	outcome := func(email string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			report.Failed = append(report.Failed, SendFailure{Email: email, Error: err.Error()})
			metrics.CampaignEmail("failed")
			log.Warn("campaigns: delivery failed", "email", email, "error", err)
			return
		}
		report.Delivered++
		metrics.CampaignEmail("sent")
	}

	timeout := config.MailTimeout()
	pool := workerpool.New(config.CampaignSendConcurrency())
	for _, customer := range recipients {
		err := pool.SubmitWait(ctx, func() {
			sendCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			outcome(customer.Email, s.deliver(sendCtx, transport, c, customer))
		})
		if err != nil {
			outcome(customer.Email, err)
		}
	}
	pool.Shutdown()

	if report.Delivered == 0 {
		log.Error("campaigns: every delivery failed", "failed", len(report.Failed))
		return report, ErrSendFailed
	}

	// Mail has gone out, so the campaign must not be released even if the
	// request was cancelled meanwhile.
	if merr := s.campaigns.MarkSent(context.WithoutCancel(ctx), id, report.Recipients, time.Now()); merr != nil {
		log.Error("campaigns: delivered but not marked sent", "error", merr)
		return report, nil
	}
	log.Info("campaigns: sent", "delivered", report.Delivered, "failed", len(report.Failed))
	return report, nil
}

func (s *CampaignService) deliver(ctx context.Context, t mail.Transport, c models.Campaign, to models.Customer) error {
	body, err := s.composer.Render(c, to)
	if err != nil {
		return err
	}
	return mail.To(to.Email).
		Subject(c.Subject).
		Header("List-Unsubscribe", "<"+s.composer.baseURL+"/unsubscribe/"+to.UnsubscribeToken+">").
		Body(body).
		Via(t).
		Send(ctx)
}

// editable loads a campaign whose send has not started.
func (s *CampaignService) editable(ctx context.Context, id uint) (models.Campaign, error) {
	c, err := s.campaigns.Find(ctx, id)
	if err != nil {
		return models.Campaign{}, err
	}
	if c.Locked() {
		return models.Campaign{}, ErrCampaignSent
	}
	return c, nil
}
