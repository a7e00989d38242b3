package services

import (
	"context"
	"net/http"
	"net/mail"
	"strings"

	"github.com/binay-das/cloudify/logger"
	"github.com/binay-das/cloudify/models"
	"github.com/binay-das/cloudify/repositories"

	"go.uber.org/zap"
)

type SubscribeOutput struct {
	Success bool                          `json:"success"`
	Entry   models.NewsletterSubscription `json:"entry"`
}

type NewsletterService interface {
	Subscribe(ctx context.Context, email string) (SubscribeOutput, error)
}

type newsletterService struct {
	entries repositories.NewsletterRepository
}

func NewNewsletterService(entries repositories.NewsletterRepository) NewsletterService {
	return &newsletterService{entries: entries}
}

func (s *newsletterService) Subscribe(ctx context.Context, email string) (SubscribeOutput, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return SubscribeOutput{}, newAppError(http.StatusBadRequest, "Email is required", nil)
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return SubscribeOutput{}, newAppError(http.StatusBadRequest, "Already subscribed or invalid", err)
	}

	count, err := s.entries.CountByEmail(ctx, email)
	if err != nil {
		return SubscribeOutput{}, newAppError(http.StatusInternalServerError, "Subscription failed", err)
	}
	if count > 0 {
		return SubscribeOutput{}, newAppError(http.StatusBadRequest, "Already subscribed or invalid", nil)
	}

	entry := models.NewsletterSubscription{Email: email}
	if err := s.entries.Create(ctx, nil, &entry); err != nil {
		logger.Warn("newsletter subscribe failed", zap.Error(err))
		return SubscribeOutput{}, newAppError(http.StatusBadRequest, "Already subscribed or invalid", err)
	}
	return SubscribeOutput{Success: true, Entry: entry}, nil
}
