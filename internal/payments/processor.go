// Package payments is the boundary to the external payment processor. It
// defines the processor-neutral types used by the reconciler, the Processor
// contract, and the Stripe Connect implementation of that contract.
package payments

import (
	"context"
	"errors"
)

// Processor event types handled by the reconciler.
const (
	EventIntentSucceeded = "payment_intent.succeeded"
	EventIntentFailed    = "payment_intent.payment_failed"
	EventAccountUpdated  = "account.updated"
)

// StatusCanceled is the intent status that allows a new intent to replace
// the one referenced by an order.
const StatusCanceled = "canceled"

// Metadata keys attached to every intent so webhook events can be mapped
// back to the order and its parties.
const (
	MetaOrderID    = "pedidoId"
	MetaClientID   = "clienteId"
	MetaProviderID = "prestadorId"
)

var (
	// ErrInvalidSignature is returned when a webhook payload cannot be
	// authenticated against the shared secret.
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrNotConfigured is returned when the processor secret is missing.
	ErrNotConfigured = errors.New("payment processor not configured")
)

// Intent is a processor payment intent.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       int64
	Currency     string
	Metadata     map[string]string
}

// OrderID returns the order reference carried in the intent metadata.
func (i Intent) OrderID() string { return i.Metadata[MetaOrderID] }

// IntentParams describes a new destination-charge intent.
type IntentParams struct {
	Amount             int64
	Currency           string
	DestinationAccount string
	FeeAmount          int64
	Metadata           map[string]string
	IdempotencyKey     string
}

// Account is a provider's connected account.
type Account struct {
	ID             string
	ChargesEnabled bool
	PayoutsEnabled bool
}

// OnboardingComplete reports whether the account can both accept charges
// and receive payouts.
func (a Account) OnboardingComplete() bool { return a.ChargesEnabled && a.PayoutsEnabled }

// LinkParams describes an onboarding link request.
type LinkParams struct {
	AccountID  string
	RefreshURL string
	ReturnURL  string
}

// Event is an authenticated webhook event. Exactly one of Intent or Account
// is set for the handled types; both are nil for any other type.
type Event struct {
	ID      string
	Type    string
	Intent  *Intent
	Account *Account
}

// Processor is the payment processor contract.
type Processor interface {
	CreateIntent(ctx context.Context, p IntentParams) (*Intent, error)
	GetIntent(ctx context.Context, id string) (*Intent, error)
	CreateAccount(ctx context.Context, providerID string) (*Account, error)
	CreateOnboardingLink(ctx context.Context, p LinkParams) (string, error)
	// ParseWebhook authenticates payload against the signature header and
	// decodes it. Authentication failures wrap ErrInvalidSignature.
	ParseWebhook(payload []byte, signatureHeader string) (*Event, error)
}
