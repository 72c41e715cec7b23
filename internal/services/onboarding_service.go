// Package services – OnboardingService
//
// This file creates the provider's connected account on first use and
// returns a fresh onboarding link for it.

package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/chegaja-engine/internal/domain"
	"github.com/tbourn/chegaja-engine/internal/payments"
	"github.com/tbourn/chegaja-engine/internal/repo"
)

// OnboardingRepo reads providers and stores their connected account.
type OnboardingRepo interface {
	GetProvider(ctx context.Context, db *gorm.DB, id string) (*domain.Provider, error)
	SetProviderAccount(ctx context.Context, db *gorm.DB, providerID, accountID string) error
}

// OnboardingLink is returned to the provider starting hosted onboarding.
type OnboardingLink struct {
	URL       string `json:"url"`
	AccountID string `json:"accountId"`
}

// OnboardingService creates connected accounts and hosted onboarding links
// for providers.
type OnboardingService struct {
	DB        *gorm.DB
	Providers OnboardingRepo
	Processor payments.Processor
	BaseURL   string
}

// CreateLink returns an onboarding link for the calling provider, creating
// its connected account first when it has none.
func (s *OnboardingService) CreateLink(ctx context.Context, providerID string) (*OnboardingLink, error) {
	tr := otel.Tracer("services/OnboardingService")
	ctx, span := tr.Start(ctx, "CreateLink",
		trace.WithAttributes(attribute.String("provider.id", providerID)),
	)
	defer span.End()

	providerID = strings.TrimSpace(providerID)
	if providerID == "" {
		return nil, ErrUnauthenticated
	}

	p, err := s.Providers.GetProvider(ctx, s.DB, providerID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrProviderNotFound
	}
	if err != nil {
		return nil, err
	}

	accountID := strings.TrimSpace(p.StripeAccountID)
	if accountID == "" {
		acct, err := s.Processor.CreateAccount(ctx, providerID)
		if err != nil {
			return nil, err
		}
		accountID = acct.ID
		if err := s.Providers.SetProviderAccount(ctx, s.DB, providerID, accountID); err != nil {
			return nil, fmt.Errorf("store connected account: %w", err)
		}
		log.Info().Str("provider_id", providerID).Str("account_id", accountID).Msg("connected account created")
	}

	refresh, ret := OnboardingURLs(s.BaseURL, providerID)
	link, err := s.Processor.CreateOnboardingLink(ctx, payments.LinkParams{
		AccountID:  accountID,
		RefreshURL: refresh,
		ReturnURL:  ret,
	})
	if err != nil {
		return nil, err
	}
	return &OnboardingLink{URL: link, AccountID: accountID}, nil
}

// OnboardingURLs returns the refresh and return URLs for providerID under
// base. A trailing slash on base is ignored.
func OnboardingURLs(base, providerID string) (refresh, ret string) {
	base = strings.TrimSuffix(strings.TrimSpace(base), "/")
	q := "?prestadorId=" + url.QueryEscape(providerID)
	return base + "/stripe/refresh" + q, base + "/stripe/return" + q
}
