// Package services – ChatAggregator
//
// This file implements the chat trigger. ChatEffects decides the thread
// summary update and the counterpart notification for one message without
// touching storage; OnMessageCreated loads the order and drains the effects.

package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/chegaja-engine/internal/domain"
	"github.com/tbourn/chegaja-engine/internal/events"
	"github.com/tbourn/chegaja-engine/internal/push"
	"github.com/tbourn/chegaja-engine/internal/repo"
)

const titleChatPush = "ChegaJá — Nova mensagem"

// OrderReader loads orders.
type OrderReader interface {
	GetOrder(ctx context.Context, db *gorm.DB, id string) (*domain.Order, error)
}

// ChatAggregator maintains per-order chat summaries and notifies the
// counterpart of every new message.
type ChatAggregator struct {
	DB      *gorm.DB
	Orders  OrderReader
	Effects EffectApplier

	// AllowUnassigned delivers provider messages to the client before the
	// order has an assigned provider.
	AllowUnassigned bool

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// OnMessageCreated handles one new chat message of orderID.
func (a *ChatAggregator) OnMessageCreated(ctx context.Context, orderID, messageID string, msg domain.ChatMessage) error {
	tr := otel.Tracer("services/ChatAggregator")
	ctx, span := tr.Start(ctx, "OnMessageCreated",
		trace.WithAttributes(
			attribute.String("order.id", orderID),
			attribute.String("message.id", messageID),
		),
	)
	defer span.End()

	lg := log.With().Str("order_id", orderID).Str("message_id", messageID).Logger()

	o, err := a.Orders.GetOrder(ctx, a.DB, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		lg.Info().Msg("chat message for unknown order; skip")
		return nil
	}
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if a.Now != nil {
		now = a.Now().UTC()
	}
	effects := ChatEffects(*o, messageID, msg, now, a.AllowUnassigned)
	if len(effects) == 0 {
		lg.Debug().Str("sender_role", msg.SenderRole).Msg("chat message without counterpart; skip")
		return nil
	}
	if err := a.Effects.Apply(ctx, effects); err != nil {
		return err
	}
	lg.Info().Strs("recipients", events.Recipients(effects)).Msg("chat message delivered")
	return nil
}

// ChatEffects decides the thread update and the notification for one
// message. It returns nothing when the order has no client, and when no
// provider is assigned yet (see preAssignmentRecipient).
//
// The recipient is the party that did not send the message: the provider
// for client messages, the client for anything else.
func ChatEffects(o domain.Order, messageID string, msg domain.ChatMessage, at time.Time, allowUnassigned bool) []events.Effect {
	clientID := strings.TrimSpace(o.ClientID)
	if clientID == "" {
		return nil
	}
	providerID := strings.TrimSpace(o.ProviderID)
	senderRole := domain.NormalizeRole(msg.SenderRole)

	var recipientID, recipientRole string
	if senderRole == domain.RoleClient {
		recipientID, recipientRole = providerID, domain.RoleProvider
	} else {
		recipientID, recipientRole = clientID, domain.RoleClient
	}
	if providerID == "" {
		recipientID = preAssignmentRecipient(recipientRole, clientID, allowUnassigned)
	}
	if recipientID == "" {
		return nil
	}

	text := msg.Body()
	inAppTitle := "Nova mensagem do prestador"
	if senderRole == domain.RoleClient {
		inAppTitle = "Nova mensagem do cliente"
	}

	return []events.Effect{
		events.PersistThread{Update: repo.ThreadUpdate{
			OrderID:       o.ID,
			ClientID:      clientID,
			ProviderID:    providerID,
			RecipientRole: recipientRole,
			LastMessage:   Truncate(text, MaxThreadPreview),
			SenderRole:    senderRole,
			At:            at,
		}},
		events.Notify{
			UserID: recipientID,
			Notification: push.Notification{
				Type:       domain.NotificationChatMessage,
				Title:      inAppTitle,
				Body:       Truncate(text, MaxInAppPreview),
				PushTitle:  titleChatPush,
				PushBody:   Truncate(text, MaxPushBody),
				OrderID:    o.ID,
				MessageID:  messageID,
				FromUserID: strings.TrimSpace(msg.SenderID),
				Data: map[string]any{
					"type":      domain.NotificationChatMessage,
					"pedidoId":  o.ID,
					"messageId": messageID,
					"openChat":  "true",
				},
			},
		},
	}
}

// preAssignmentRecipient is the explicit policy for chat before a provider
// is assigned. By default such messages are ignored: there is no
// counterpart to notify and no thread is written. With allowUnassigned a
// message addressed to the client still reaches them.
func preAssignmentRecipient(recipientRole, clientID string, allowUnassigned bool) string {
	if !allowUnassigned || recipientRole != domain.RoleClient {
		return ""
	}
	return clientID
}
