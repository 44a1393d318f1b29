package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/rigparts/app/models"
	"github.com/shashiranjanraj/rigparts/app/repositories"
	"github.com/shashiranjanraj/rigparts/pkg/auth"
	"github.com/shashiranjanraj/rigparts/pkg/validate"
)

// AdminAuthService signs in back-office users.
type AdminAuthService struct {
	users *repositories.UserRepository
}

func NewAdminAuthService(db *gorm.DB) *AdminAuthService {
	return &AdminAuthService{users: repositories.NewUserRepository(db)}
}

// Login returns a bearer token carrying the user's back-office role.
func (s *AdminAuthService) Login(ctx context.Context, in LoginInput) (string, models.User, error) {
	if err := validate.Check(in); err != nil {
		return "", models.User{}, err
	}
	u, err := s.users.FindByEmail(ctx, in.Email)
	if errors.Is(err, repositories.ErrNotFound) {
		return "", models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", models.User{}, fmt.Errorf("admin: login: %w", err)
	}
	if !auth.CheckPassword(u.Password, in.Password) {
		return "", models.User{}, ErrInvalidCredentials
	}

	role := u.Role
	if role != models.RoleAdmin {
		role = models.RoleStaff
	}
	token, err := auth.GenerateToken(u.ID, fmt.Sprintf("user:%d", u.ID), u.Email, role)
	if err != nil {
		return "", models.User{}, fmt.Errorf("admin: issue token: %w", err)
	}
	return token, u, nil
}

// CreateUser adds a back-office account with a hashed password.
func (s *AdminAuthService) CreateUser(ctx context.Context, name, email, password, role string) (models.User, error) {
	if role != models.RoleAdmin && role != models.RoleStaff {
		return models.User{}, validate.Field("role", "The selected role is invalid.")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, fmt.Errorf("admin: hash password: %w", err)
	}
	u := models.User{Name: name, Email: normalizeEmail(email), Password: hash, Role: role}
	if err := s.users.Create(ctx, &u); err != nil {
		return models.User{}, fmt.Errorf("admin: create user: %w", err)
	}
	return u, nil
}
