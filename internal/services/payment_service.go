// Package services – PaymentService
//
// This file implements the payment reconciler. CreateOrReuseIntent returns
// the live intent of an order or creates a destination charge with the
// platform fee, mirroring it onto the order and the payment ledger.
// ReconcileWebhook verifies processor events and applies intent status
// changes and connected-account onboarding completion.
//
// Every write is a merge upsert, so replays and partial failures converge.
// Webhook events are recorded by id once processed and ignored afterwards.
//
// Observability: public methods are OpenTelemetry-instrumented with order
// and event identifiers.

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/chegaja-engine/internal/domain"
	"github.com/tbourn/chegaja-engine/internal/payments"
	"github.com/tbourn/chegaja-engine/internal/repo"
)

// Payment defaults.
const (
	DefaultCommissionRate = 0.15
	DefaultCurrency       = "eur"

	// maxProvidersPerAccount caps the providers updated by one
	// account.updated event.
	maxProvidersPerAccount = 5
)

// PaymentOrderRepo reads orders and merges their payment mirror.
type PaymentOrderRepo interface {
	GetOrder(ctx context.Context, db *gorm.DB, id string) (*domain.Order, error)
	MergeOrderPayment(ctx context.Context, db *gorm.DB, orderID string, p repo.OrderPayment) error
}

// PaymentProviderRepo reads providers and their connected-account state.
type PaymentProviderRepo interface {
	GetProvider(ctx context.Context, db *gorm.DB, id string) (*domain.Provider, error)
	ProvidersByAccount(ctx context.Context, db *gorm.DB, accountID string, limit int) ([]domain.Provider, error)
	SetProviderOnboarding(ctx context.Context, db *gorm.DB, providerID string, complete bool) error
}

// LedgerRepo persists payment ledger records and reconciled webhook ids.
type LedgerRepo interface {
	UpsertPayment(ctx context.Context, db *gorm.DB, p *domain.Payment) error
	WebhookEventSeen(ctx context.Context, db *gorm.DB, eventID string) (bool, error)
	RecordWebhookEvent(ctx context.Context, db *gorm.DB, eventID, eventType string) error
}

// IntentResult is returned to the paying client.
type IntentResult struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
}

// PaymentService creates payment intents for orders and reconciles local
// state from processor webhooks.
type PaymentService struct {
	DB        *gorm.DB
	Orders    PaymentOrderRepo
	Providers PaymentProviderRepo
	Ledger    LedgerRepo
	Processor payments.Processor

	CommissionRate  float64
	DefaultCurrency string
}

// ToMinorUnits converts a major-unit price to integer minor units,
// rounding half away from zero.
func ToMinorUnits(price float64) int64 {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// PlatformFee returns round(amount × rate), floored at zero.
func PlatformFee(amount int64, rate float64) int64 {
	fee := decimal.NewFromInt(amount).Mul(decimal.NewFromFloat(rate)).Round(0).IntPart()
	if fee < 0 {
		return 0
	}
	return fee
}

// ChargeAmount returns the chargeable amount of o in minor units using the
// provider-proposed price, then the final price, then the listed price.
func ChargeAmount(o domain.Order) int64 {
	for _, p := range []*float64{o.ProposedPrice, o.FinalPrice, o.Price} {
		if p != nil {
			return ToMinorUnits(*p)
		}
	}
	return 0
}

// CreateOrReuseIntent returns a payment intent for orderID on behalf of its
// client. Every precondition is checked before any side effect. An order
// that already references a non-canceled intent gets that intent back;
// otherwise a destination charge is created and mirrored onto the order
// and the ledger.
func (s *PaymentService) CreateOrReuseIntent(ctx context.Context, callerID, orderID string) (*IntentResult, error) {
	tr := otel.Tracer("services/PaymentService")
	ctx, span := tr.Start(ctx, "CreateOrReuseIntent",
		trace.WithAttributes(attribute.String("order.id", orderID)),
	)
	defer span.End()

	callerID = strings.TrimSpace(callerID)
	orderID = strings.TrimSpace(orderID)
	if callerID == "" {
		return nil, ErrUnauthenticated
	}
	if orderID == "" {
		return nil, ErrInvalidOrderID
	}

	o, err := s.Orders.GetOrder(ctx, s.DB, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(o.ClientID) != callerID {
		return nil, ErrPermissionDenied
	}
	if !o.HasProvider() {
		return nil, ErrProviderNotAssigned
	}
	providerID := strings.TrimSpace(o.ProviderID)

	amount := ChargeAmount(*o)
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	currency := s.currency(o.Currency)

	prov, err := s.Providers.GetProvider(ctx, s.DB, providerID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	if prov == nil || strings.TrimSpace(prov.StripeAccountID) == "" {
		return nil, ErrNoConnectedAccount
	}
	if !prov.StripeOnboardingComplete {
		log.Warn().
			Str("provider_id", providerID).
			Str("account_id", prov.StripeAccountID).
			Msg("provider onboarding incomplete; creating payment anyway")
	}

	fee := PlatformFee(amount, s.rate())

	if existingID := strings.TrimSpace(o.PaymentIntentID); existingID != "" {
		existing, err := s.Processor.GetIntent(ctx, existingID)
		if err != nil {
			return nil, err
		}
		if existing.Status != "" && existing.Status != payments.StatusCanceled {
			span.SetAttributes(attribute.Bool("payment.reused", true))
			return &IntentResult{
				ClientSecret:    existing.ClientSecret,
				PaymentIntentID: existing.ID,
				Amount:          amount,
				Currency:        currency,
			}, nil
		}
	}

	pi, err := s.Processor.CreateIntent(ctx, payments.IntentParams{
		Amount:             amount,
		Currency:           currency,
		DestinationAccount: prov.StripeAccountID,
		FeeAmount:          fee,
		Metadata: map[string]string{
			payments.MetaOrderID:    orderID,
			payments.MetaClientID:   callerID,
			payments.MetaProviderID: providerID,
		},
		// Changes whenever a canceled intent is being replaced.
		IdempotencyKey: fmt.Sprintf("pi:%s:%s", orderID, o.PaymentIntentID),
	})
	if err != nil {
		return nil, err
	}

	if err := s.Orders.MergeOrderPayment(ctx, s.DB, orderID, repo.OrderPayment{
		IntentID:  pi.ID,
		Amount:    amount,
		Currency:  currency,
		FeeAmount: fee,
		Status:    pi.Status,
	}); err != nil {
		return nil, fmt.Errorf("mirror intent onto order: %w", err)
	}
	if err := s.Ledger.UpsertPayment(ctx, s.DB, &domain.Payment{
		ID:         pi.ID,
		OrderID:    orderID,
		ClientID:   callerID,
		ProviderID: providerID,
		Amount:     amount,
		Currency:   currency,
		FeeAmount:  fee,
		Status:     pi.Status,
	}); err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}

	log.Info().Str("order_id", orderID).Str("payment_intent_id", pi.ID).Int64("amount", amount).Msg("payment intent created")
	return &IntentResult{
		ClientSecret:    pi.ClientSecret,
		PaymentIntentID: pi.ID,
		Amount:          amount,
		Currency:        currency,
	}, nil
}

// ReconcileWebhook authenticates and applies one processor webhook.
//
// Authentication comes first: a bad signature returns an error wrapping
// payments.ErrInvalidSignature and nothing is written. Intent succeeded and
// failed events mirror the intent status onto the order and the ledger;
// account.updated refreshes the onboarding flag of every provider using
// the account. Other types and already reconciled events are acknowledged
// without changes.
func (s *PaymentService) ReconcileWebhook(ctx context.Context, payload []byte, signature string) error {
	tr := otel.Tracer("services/PaymentService")
	ctx, span := tr.Start(ctx, "ReconcileWebhook")
	defer span.End()

	ev, err := s.Processor.ParseWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, payments.ErrInvalidSignature) {
			webhookEvents.WithLabelValues("unknown", "rejected").Inc()
		}
		return err
	}
	span.SetAttributes(attribute.String("event.type", ev.Type), attribute.String("event.id", ev.ID))
	label := eventLabel(ev.Type)
	lg := log.With().Str("event_id", ev.ID).Str("event_type", ev.Type).Logger()

	if ev.ID != "" {
		seen, err := s.Ledger.WebhookEventSeen(ctx, s.DB, ev.ID)
		if err != nil {
			webhookEvents.WithLabelValues(label, "error").Inc()
			return err
		}
		if seen {
			webhookEvents.WithLabelValues(label, "duplicate").Inc()
			lg.Debug().Msg("webhook event already reconciled")
			return nil
		}
	}

	result := "processed"
	switch {
	case (ev.Type == payments.EventIntentSucceeded || ev.Type == payments.EventIntentFailed) && ev.Intent != nil:
		err = s.reconcileIntent(ctx, ev.Intent)
	case ev.Type == payments.EventAccountUpdated && ev.Account != nil:
		err = s.reconcileAccount(ctx, ev.Account)
	default:
		result = "ignored"
	}
	if err != nil {
		webhookEvents.WithLabelValues(label, "error").Inc()
		return err
	}

	if ev.ID != "" {
		if err := s.Ledger.RecordWebhookEvent(ctx, s.DB, ev.ID, ev.Type); err != nil && !errors.Is(err, repo.ErrDuplicate) {
			lg.Warn().Err(err).Msg("record webhook event failed")
		}
	}
	webhookEvents.WithLabelValues(label, result).Inc()
	lg.Info().Str("result", result).Msg("webhook reconciled")
	return nil
}

func (s *PaymentService) reconcileIntent(ctx context.Context, pi *payments.Intent) error {
	orderID := strings.TrimSpace(pi.OrderID())
	if orderID != "" {
		err := s.Orders.MergeOrderPayment(ctx, s.DB, orderID, repo.OrderPayment{IntentID: pi.ID, Status: pi.Status})
		switch {
		case errors.Is(err, repo.ErrNotFound):
			log.Warn().Str("order_id", orderID).Str("payment_intent_id", pi.ID).Msg("webhook for unknown order")
		case err != nil:
			return fmt.Errorf("mirror status onto order: %w", err)
		}
	}
	return s.Ledger.UpsertPayment(ctx, s.DB, &domain.Payment{
		ID:         pi.ID,
		OrderID:    orderID,
		ClientID:   pi.Metadata[payments.MetaClientID],
		ProviderID: pi.Metadata[payments.MetaProviderID],
		Status:     pi.Status,
	})
}

func (s *PaymentService) reconcileAccount(ctx context.Context, acct *payments.Account) error {
	complete := acct.OnboardingComplete()
	ps, err := s.Providers.ProvidersByAccount(ctx, s.DB, acct.ID, maxProvidersPerAccount)
	if err != nil {
		return err
	}
	for _, p := range ps {
		if err := s.Providers.SetProviderOnboarding(ctx, s.DB, p.ID, complete); err != nil && !errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("update provider %s: %w", p.ID, err)
		}
	}
	log.Info().Str("account_id", acct.ID).Bool("complete", complete).Int("providers", len(ps)).Msg("onboarding state synced")
	return nil
}

func (s *PaymentService) currency(c string) string {
	if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
		return c
	}
	if d := strings.ToLower(strings.TrimSpace(s.DefaultCurrency)); d != "" {
		return d
	}
	return DefaultCurrency
}

func (s *PaymentService) rate() float64 {
	if s.CommissionRate < 0 || s.CommissionRate > 1 {
		return DefaultCommissionRate
	}
	return s.CommissionRate
}

// eventLabel bounds the metric label set to the handled event types.
func eventLabel(t string) string {
	switch t {
	case payments.EventIntentSucceeded, payments.EventIntentFailed, payments.EventAccountUpdated:
		return t
	}
	return "other"
}
