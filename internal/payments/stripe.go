package payments

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// Stripe implements Processor on top of Stripe Connect destination charges.
type Stripe struct {
	api           *client.API
	webhookSecret string
}

// NewStripe returns a Stripe processor. An empty secretKey yields a
// processor whose API calls fail with ErrNotConfigured; webhook parsing
// only needs webhookSecret.
func NewStripe(secretKey, webhookSecret string) *Stripe {
	s := &Stripe{webhookSecret: webhookSecret}
	if secretKey != "" {
		s.api = &client.API{}
		s.api.Init(secretKey, nil)
	}
	return s
}

func (s *Stripe) ready() error {
	if s.api == nil {
		return ErrNotConfigured
	}
	return nil
}

// CreateIntent creates a payment intent that transfers to the destination
// account minus the application fee.
func (s *Stripe) CreateIntent(ctx context.Context, p IntentParams) (*Intent, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(p.Amount),
		Currency: stripe.String(p.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		ApplicationFeeAmount: stripe.Int64(p.FeeAmount),
		TransferData: &stripe.PaymentIntentTransferDataParams{
			Destination: stripe.String(p.DestinationAccount),
		},
	}
	params.Context = ctx
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}
	if p.IdempotencyKey != "" {
		params.SetIdempotencyKey(p.IdempotencyKey)
	}
	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create intent: %w", err)
	}
	return intentFrom(pi), nil
}

// GetIntent retrieves an intent by id.
func (s *Stripe) GetIntent(ctx context.Context, id string) (*Intent, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := s.api.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("stripe get intent: %w", err)
	}
	return intentFrom(pi), nil
}

// CreateAccount creates an express connected account for a provider with
// card payments and transfers requested.
func (s *Stripe) CreateAccount(ctx context.Context, providerID string) (*Account, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	params := &stripe.AccountParams{
		Type: stripe.String(string(stripe.AccountTypeExpress)),
		Capabilities: &stripe.AccountCapabilitiesParams{
			CardPayments: &stripe.AccountCapabilitiesCardPaymentsParams{Requested: stripe.Bool(true)},
			Transfers:    &stripe.AccountCapabilitiesTransfersParams{Requested: stripe.Bool(true)},
		},
	}
	params.Context = ctx
	params.AddMetadata(MetaProviderID, providerID)
	acct, err := s.api.Accounts.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create account: %w", err)
	}
	return &Account{ID: acct.ID, ChargesEnabled: acct.ChargesEnabled, PayoutsEnabled: acct.PayoutsEnabled}, nil
}

// CreateOnboardingLink creates an account_onboarding link.
func (s *Stripe) CreateOnboardingLink(ctx context.Context, p LinkParams) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}
	params := &stripe.AccountLinkParams{
		Account:    stripe.String(p.AccountID),
		RefreshURL: stripe.String(p.RefreshURL),
		ReturnURL:  stripe.String(p.ReturnURL),
		Type:       stripe.String(string(stripe.AccountLinkTypeAccountOnboarding)),
	}
	params.Context = ctx
	link, err := s.api.AccountLinks.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe account link: %w", err)
	}
	return link.URL, nil
}

// ParseWebhook verifies the Stripe-Signature header and decodes the event.
func (s *Stripe) ParseWebhook(payload []byte, signatureHeader string) (*Event, error) {
	if s.webhookSecret == "" {
		return nil, ErrNotConfigured
	}
	ev, err := webhook.ConstructEventWithOptions(payload, signatureHeader, s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &Event{ID: ev.ID, Type: string(ev.Type)}
	if ev.Data == nil {
		return out, nil
	}
	switch out.Type {
	case EventIntentSucceeded, EventIntentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("decode payment intent: %w", err)
		}
		out.Intent = intentFrom(&pi)
	case EventAccountUpdated:
		var acct stripe.Account
		if err := json.Unmarshal(ev.Data.Raw, &acct); err != nil {
			return nil, fmt.Errorf("decode account: %w", err)
		}
		out.Account = &Account{ID: acct.ID, ChargesEnabled: acct.ChargesEnabled, PayoutsEnabled: acct.PayoutsEnabled}
	}
	return out, nil
}

func intentFrom(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Metadata:     pi.Metadata,
	}
}
