// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the push endpoint registry.
package repo

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/chegaja-engine/internal/domain"
)

// ListEndpoints returns the distinct push tokens registered for userID.
func ListEndpoints(ctx context.Context, db *gorm.DB, userID string) ([]string, error) {
	var tokens []string
	err := db.WithContext(ctx).
		Model(&domain.PushEndpoint{}).
		Where("user_id = ?", userID).
		Order("created_at asc").
		Pluck("token", &tokens).Error
	return tokens, err
}

// RegisterEndpoint adds token to userID's set, or refreshes its last-seen
// time when already present.
func RegisterEndpoint(ctx context.Context, db *gorm.DB, userID, token, platform string) error {
	now := time.Now().UTC()
	ep := &domain.PushEndpoint{
		UserID:     userID,
		Token:      strings.TrimSpace(token),
		Platform:   platform,
		CreatedAt:  now,
		LastSeenAt: now,
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "token"}},
			DoUpdates: clause.AssignmentColumns([]string{"platform", "last_seen_at"}),
		}).
		Create(ep).Error
}

// RetireEndpoints removes exactly the given tokens from userID's set.
// Tokens that are already absent are ignored.
func RetireEndpoints(ctx context.Context, db *gorm.DB, userID string, tokens []string) (int64, error) {
	if len(tokens) == 0 {
		return 0, nil
	}
	res := db.WithContext(ctx).
		Where("user_id = ? AND token IN ?", userID, tokens).
		Delete(&domain.PushEndpoint{})
	return res.RowsAffected, res.Error
}

// CountStaleEndpoints counts endpoints not seen since before.
func CountStaleEndpoints(ctx context.Context, db *gorm.DB, before time.Time) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.PushEndpoint{}).
		Where("last_seen_at < ?", before).
		Count(&n).Error
	return n, err
}

// DeleteStaleEndpoints removes endpoints not seen since before.
func DeleteStaleEndpoints(ctx context.Context, db *gorm.DB, before time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("last_seen_at < ?", before).
		Delete(&domain.PushEndpoint{})
	return res.RowsAffected, res.Error
}
