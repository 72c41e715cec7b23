package services

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"gorm.io/gorm"

	"github.com/tbourn/chegaja-engine/internal/domain"
	"github.com/tbourn/chegaja-engine/internal/utils"
)

// Notification listing bounds.
const (
	DefaultNotificationLimit = 20
	MaxNotificationLimit     = 100
)

// NotificationReader lists a user's in-app notifications.
type NotificationReader interface {
	ListNotifications(ctx context.Context, db *gorm.DB, userID string, limit int) ([]domain.Notification, error)
}

// NotificationService serves the in-app notification inbox.
type NotificationService struct {
	DB   *gorm.DB
	Repo NotificationReader
}

// List returns userID's newest notifications. limit is clamped to
// [1, MaxNotificationLimit]; zero or less selects the default.
func (s *NotificationService) List(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	ctx, span := otel.Tracer("services/NotificationService").Start(ctx, "List")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}
	limit = utils.Clamp(limit, 1, MaxNotificationLimit)
	return s.Repo.ListNotifications(ctx, s.DB, userID, limit)
}
