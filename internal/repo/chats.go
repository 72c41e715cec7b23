// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file keeps the per-order chat thread summary; unread
// counters are incremented in the database, never read-modified-written.
package repo

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/chegaja-engine/internal/domain"
)

// ThreadUpdate describes the effect of one new chat message on its thread.
type ThreadUpdate struct {
	OrderID       string
	ClientID      string
	ProviderID    string
	RecipientRole string // domain.RoleClient or domain.RoleProvider
	LastMessage   string
	SenderRole    string
	At            time.Time
}

// UpsertThread applies u to the order's chat thread in a single statement:
// the thread is created on the first message, otherwise the total count and
// the recipient's unread counter are incremented in place. The sender's
// counters are never touched.
func UpsertThread(ctx context.Context, db *gorm.DB, u ThreadUpdate) error {
	unreadCol, flagCol := "unread_by_provider", "has_unread_provider"
	if u.RecipientRole == domain.RoleClient {
		unreadCol, flagCol = "unread_by_client", "has_unread_client"
	}
	at := u.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	row := &domain.ChatThread{
		OrderID:        u.OrderID,
		ClientID:       u.ClientID,
		ProviderID:     u.ProviderID,
		LastMessage:    u.LastMessage,
		LastSenderRole: u.SenderRole,
		LastMessageAt:  at,
		MessageCount:   1,
		UpdatedAt:      at,
	}
	if u.RecipientRole == domain.RoleClient {
		row.UnreadByClient, row.HasUnreadClient = 1, true
	} else {
		row.UnreadByProvider, row.HasUnreadProvider = 1, true
	}

	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "order_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"client_id":        u.ClientID,
				"provider_id":      u.ProviderID,
				"last_message":     u.LastMessage,
				"last_sender_role": u.SenderRole,
				"last_message_at":  at,
				"updated_at":       at,
				"message_count":    gorm.Expr("chat_threads.message_count + 1"),
				unreadCol:          gorm.Expr(fmt.Sprintf("chat_threads.%s + 1", unreadCol)),
				flagCol:            true,
			}),
		}).
		Create(row).Error
}

// GetThread fetches the chat thread of an order, or ErrNotFound.
func GetThread(ctx context.Context, db *gorm.DB, orderID string) (*domain.ChatThread, error) {
	var t domain.ChatThread
	if err := db.WithContext(ctx).Where("order_id = ?", orderID).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}
