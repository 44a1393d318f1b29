package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/rigparts/app/models"
	"github.com/shashiranjanraj/rigparts/app/repositories"
	"github.com/shashiranjanraj/rigparts/pkg/auth"
	"github.com/shashiranjanraj/rigparts/pkg/logger"
	"github.com/shashiranjanraj/rigparts/pkg/orm"
	"github.com/shashiranjanraj/rigparts/pkg/validate"
)

type SignupInput struct {
	Name       string `json:"name"       validate:"required,max=255"`
	Email      string `json:"email"      validate:"required,email,max=255"`
	Password   string `json:"password"   validate:"required,min=8,max=72"`
	Company    string `json:"company"    validate:"nullable,max=255"`
	Phone      string `json:"phone"      validate:"nullable,max=50"`
	Subscribed *bool  `json:"subscribed"`
}

type LoginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileInput is a partial update; nil fields are left alone.
type ProfileInput struct {
	Name       *string `json:"name"       validate:"nullable,max=255"`
	Company    *string `json:"company"    validate:"nullable,max=255"`
	Phone      *string `json:"phone"      validate:"nullable,max=50"`
	Subscribed *bool   `json:"subscribed"`
}

// Session is a signed-in identity and its bearer token.
type Session struct {
	Token    string          `json:"token"`
	Customer models.Customer `json:"customer"`
}

// CustomerService manages storefront accounts and marketing consent.
type CustomerService struct {
	customers *repositories.CustomerRepository
}

func NewCustomerService(db *gorm.DB) *CustomerService {
	return &CustomerService{customers: repositories.NewCustomerRepository(db)}
}

// Signup creates the identity and the profile in one row. New customers
// are subscribed unless they opt out.
func (s *CustomerService) Signup(ctx context.Context, in SignupInput) (Session, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Check(in); err != nil {
		return Session{}, err
	}

	if _, err := s.customers.FindByEmail(ctx, in.Email); err == nil {
		return Session{}, validate.Field("email", "The email has already been taken.")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return Session{}, fmt.Errorf("customers: signup: %w", err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return Session{}, fmt.Errorf("customers: hash password: %w", err)
	}

	c := models.Customer{
		Name:             in.Name,
		Email:            in.Email,
		Company:          strings.TrimSpace(in.Company),
		Phone:            strings.TrimSpace(in.Phone),
		Subscribed:       in.Subscribed == nil || *in.Subscribed,
		UnsubscribeToken: uuid.NewString(),
		AuthSubject:      uuid.NewString(),
		PasswordHash:     hash,
	}
	if err := s.customers.Create(ctx, &c); err != nil {
		return Session{}, fmt.Errorf("customers: signup: %w", err)
	}

	logger.WithCtx(ctx).Info("customers: signed up", "customer_id", c.ID)
	return s.issue(c)
}

func (s *CustomerService) Login(ctx context.Context, in LoginInput) (Session, error) {
	if err := validate.Check(in); err != nil {
		return Session{}, err
	}
	c, err := s.customers.FindByEmail(ctx, in.Email)
	if errors.Is(err, repositories.ErrNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("customers: login: %w", err)
	}
	if !auth.CheckPassword(c.PasswordHash, in.Password) {
		return Session{}, ErrInvalidCredentials
	}
	return s.issue(c)
}

func (s *CustomerService) issue(c models.Customer) (Session, error) {
	token, err := auth.GenerateToken(c.ID, c.AuthSubject, c.Email, auth.RoleCustomer)
	if err != nil {
		return Session{}, fmt.Errorf("customers: issue token: %w", err)
	}
	return Session{Token: token, Customer: c}, nil
}

func (s *CustomerService) Profile(ctx context.Context, id uint) (models.Customer, error) {
	return s.customers.FindByID(ctx, id)
}

func (s *CustomerService) UpdateProfile(ctx context.Context, id uint, in ProfileInput) (models.Customer, error) {
	if err := validate.Check(in); err != nil {
		return models.Customer{}, err
	}

	fields := map[string]any{}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return models.Customer{}, validate.Field("name", "The name field is required.")
		}
		fields["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Company != nil {
		fields["company"] = strings.TrimSpace(*in.Company)
	}
	if in.Phone != nil {
		fields["phone"] = strings.TrimSpace(*in.Phone)
	}
	if in.Subscribed != nil {
		fields["subscribed"] = *in.Subscribed
	}

	if len(fields) > 0 {
		if err := s.customers.Update(ctx, id, fields); err != nil {
			return models.Customer{}, err
		}
	}
	return s.customers.FindByID(ctx, id)
}

// Unsubscribe opts the token's owner out of campaigns. Repeating it is a
// successful no-op.
func (s *CustomerService) Unsubscribe(ctx context.Context, token string) (models.Customer, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return models.Customer{}, ErrInvalidToken
	}
	c, err := s.customers.FindByUnsubscribeToken(ctx, token)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Customer{}, ErrInvalidToken
	}
	if err != nil {
		return models.Customer{}, fmt.Errorf("customers: unsubscribe: %w", err)
	}
	if !c.Subscribed {
		return c, nil
	}

	if err := s.customers.Update(ctx, c.ID, map[string]any{"subscribed": false}); err != nil {
		return models.Customer{}, fmt.Errorf("customers: unsubscribe: %w", err)
	}
	c.Subscribed = false
	logger.WithCtx(ctx).Info("customers: unsubscribed", "customer_id", c.ID)
	return c, nil
}

func (s *CustomerService) List(ctx context.Context, page, limit int) ([]models.Customer, orm.Pagination, error) {
	return s.customers.List(ctx, page, limit)
}
