package services

import (
	"errors"

	"github.com/shashiranjanraj/rigparts/app/repositories"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = repositories.ErrNotFound

	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidToken       = errors.New("invalid or expired unsubscribe token")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrCampaignSent       = errors.New("campaign has already been sent")
	ErrNoRecipients       = errors.New("no subscribed customers to send to")
	ErrSendFailed         = errors.New("campaign could not be delivered to any recipient")
)
