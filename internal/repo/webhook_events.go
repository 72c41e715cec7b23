// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file records processed webhook event ids.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/chegaja-engine/internal/domain"
)

// ErrDuplicate indicates that a webhook event with the same id was already
// recorded.
var ErrDuplicate = errors.New("duplicate")

// WebhookEventSeen reports whether eventID was already reconciled.
func WebhookEventSeen(ctx context.Context, db *gorm.DB, eventID string) (bool, error) {
	if strings.TrimSpace(eventID) == "" {
		return false, nil
	}
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.WebhookEvent{}).
		Where("id = ?", eventID).
		Count(&n).Error
	return n > 0, err
}

// RecordWebhookEvent marks eventID as reconciled and returns ErrDuplicate
// on unique violation.
func RecordWebhookEvent(ctx context.Context, db *gorm.DB, eventID, eventType string) error {
	rec := &domain.WebhookEvent{
		ID:          eventID,
		Type:        eventType,
		ProcessedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// isUniqueViolation matches gorm's translated error as well as the plain
// text errors returned by glebarez/sqlite and the postgres driver.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique") ||
		strings.Contains(low, "duplicate key value")
}
