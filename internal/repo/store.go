package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/chegaja-engine/internal/domain"
	"github.com/tbourn/chegaja-engine/internal/geo"
)

// Store binds the package functions to method sets so services and the
// fan-out can depend on small interfaces and be tested with fakes.
type Store struct{}

func (Store) GetOrder(ctx context.Context, db *gorm.DB, id string) (*domain.Order, error) {
	return GetOrder(ctx, db, id)
}

func (Store) SaveOrderSnapshot(ctx context.Context, db *gorm.DB, o *domain.Order) error {
	return SaveOrderSnapshot(ctx, db, o)
}

func (Store) MergeOrderPayment(ctx context.Context, db *gorm.DB, orderID string, p OrderPayment) error {
	return MergeOrderPayment(ctx, db, orderID, p)
}

func (Store) GetProvider(ctx context.Context, db *gorm.DB, id string) (*domain.Provider, error) {
	return GetProvider(ctx, db, id)
}

func (Store) SaveProviderSnapshot(ctx context.Context, db *gorm.DB, p *domain.Provider) error {
	return SaveProviderSnapshot(ctx, db, p)
}

func (Store) ProvidersInRange(ctx context.Context, db *gorm.DB, r geo.Range, serviceID string) ([]domain.Provider, error) {
	return ProvidersInRange(ctx, db, r, serviceID)
}

func (Store) ProvidersByAccount(ctx context.Context, db *gorm.DB, accountID string, limit int) ([]domain.Provider, error) {
	return ProvidersByAccount(ctx, db, accountID, limit)
}

func (Store) SetProviderOnboarding(ctx context.Context, db *gorm.DB, providerID string, complete bool) error {
	return SetProviderOnboarding(ctx, db, providerID, complete)
}

func (Store) SetProviderAccount(ctx context.Context, db *gorm.DB, providerID, accountID string) error {
	return SetProviderAccount(ctx, db, providerID, accountID)
}

func (Store) UpsertThread(ctx context.Context, db *gorm.DB, u ThreadUpdate) error {
	return UpsertThread(ctx, db, u)
}

func (Store) ListEndpoints(ctx context.Context, db *gorm.DB, userID string) ([]string, error) {
	return ListEndpoints(ctx, db, userID)
}

func (Store) RegisterEndpoint(ctx context.Context, db *gorm.DB, userID, token, platform string) error {
	return RegisterEndpoint(ctx, db, userID, token, platform)
}

func (Store) RetireEndpoints(ctx context.Context, db *gorm.DB, userID string, tokens []string) (int64, error) {
	return RetireEndpoints(ctx, db, userID, tokens)
}

func (Store) CountStaleEndpoints(ctx context.Context, db *gorm.DB, before time.Time) (int64, error) {
	return CountStaleEndpoints(ctx, db, before)
}

func (Store) DeleteStaleEndpoints(ctx context.Context, db *gorm.DB, before time.Time) (int64, error) {
	return DeleteStaleEndpoints(ctx, db, before)
}

func (Store) CreateNotification(ctx context.Context, db *gorm.DB, n *domain.Notification) error {
	return CreateNotification(ctx, db, n)
}

func (Store) ListNotifications(ctx context.Context, db *gorm.DB, userID string, limit int) ([]domain.Notification, error) {
	return ListNotifications(ctx, db, userID, limit)
}

func (Store) UpsertPayment(ctx context.Context, db *gorm.DB, p *domain.Payment) error {
	return UpsertPayment(ctx, db, p)
}

func (Store) WebhookEventSeen(ctx context.Context, db *gorm.DB, eventID string) (bool, error) {
	return WebhookEventSeen(ctx, db, eventID)
}

func (Store) RecordWebhookEvent(ctx context.Context, db *gorm.DB, eventID, eventType string) error {
	return RecordWebhookEvent(ctx, db, eventID, eventType)
}
