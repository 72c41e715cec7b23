package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/chegaja-engine/internal/domain"
	"github.com/tbourn/chegaja-engine/internal/events"
	"github.com/tbourn/chegaja-engine/internal/http/middleware"
	"github.com/tbourn/chegaja-engine/internal/services"
)

//
// Service contracts (context-aware)
//

// PaymentService creates payment intents and reconciles processor webhooks.
type PaymentService interface {
	CreateOrReuseIntent(ctx context.Context, callerID, orderID string) (*services.IntentResult, error)
	ReconcileWebhook(ctx context.Context, payload []byte, signature string) error
}

// OnboardingService starts hosted onboarding for providers.
type OnboardingService interface {
	CreateLink(ctx context.Context, providerID string) (*services.OnboardingLink, error)
}

// EndpointService registers push endpoints.
type EndpointService interface {
	Register(ctx context.Context, userID, token, platform string) error
}

// NotificationService lists in-app notifications.
type NotificationService interface {
	List(ctx context.Context, userID string, limit int) ([]domain.Notification, error)
}

// EventIngestor consumes document change events.
type EventIngestor interface {
	OrderCreated(ctx context.Context, ev events.OrderCreated) error
	OrderUpdated(ctx context.Context, ev events.OrderUpdated) error
	MessageCreated(ctx context.Context, ev events.MessageCreated) error
	ProviderWritten(ctx context.Context, ev events.ProviderWritten) error
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints. Any service left nil must not have
// its routes mounted.
type Handlers struct {
	payments      PaymentService
	onboarding    OnboardingService
	endpoints     EndpointService
	notifications NotificationService
	ingest        EventIngestor
}

// Services are the dependencies of Handlers.
type Services struct {
	Payments      PaymentService
	Onboarding    OnboardingService
	Endpoints     EndpointService
	Notifications NotificationService
	Ingest        EventIngestor
}

// New constructs a Handlers instance bound to the given services.
func New(s Services) *Handlers {
	return &Handlers{
		payments:      s.Payments,
		onboarding:    s.Onboarding,
		endpoints:     s.Endpoints,
		notifications: s.Notifications,
		ingest:        s.Ingest,
	}
}

// userID is the caller set by middleware.Auth.
func userID(c *gin.Context) string { return middleware.UserID(c) }
