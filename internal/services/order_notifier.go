// Package services – OrderNotifier
//
// This file maps order status transitions to notifications for the order's
// parties. Non-status edits produce no effects.

package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/chegaja-engine/internal/domain"
	"github.com/tbourn/chegaja-engine/internal/events"
	"github.com/tbourn/chegaja-engine/internal/push"
)

const titleOrderUpdated = "ChegaJá — Pedido atualizado"

var statusBodies = map[string]string{
	domain.StatusAwaitingClient:       "Recebeste uma proposta de preço.",
	domain.StatusAccepted:             "Proposta aceita. O prestador pode iniciar o serviço.",
	domain.StatusInProgress:           "O prestador iniciou o serviço.",
	domain.StatusAwaitingPriceConfirm: "O prestador propôs o valor final.",
	domain.StatusCompleted:            "Serviço concluído.",
	domain.StatusCanceled:             "O pedido foi cancelado.",
}

// StatusBody returns the notification body for an order status. Statuses
// outside the known set get a generic "Estado: <status>" body.
func StatusBody(status string) string {
	if b, ok := statusBodies[status]; ok {
		return b
	}
	return "Estado: " + status
}

// OrderNotifier informs the parties of an order about status transitions.
type OrderNotifier struct {
	Effects EffectApplier
}

// OnOrderUpdated dispatches status notifications for one order update and
// returns once every recipient's dispatch has settled.
func (n *OrderNotifier) OnOrderUpdated(ctx context.Context, before, after domain.Order) error {
	tr := otel.Tracer("services/OrderNotifier")
	ctx, span := tr.Start(ctx, "OnOrderUpdated",
		trace.WithAttributes(
			attribute.String("order.id", after.ID),
			attribute.String("order.status", after.Status),
		),
	)
	defer span.End()

	effects := StatusChangeEffects(before, after)
	if len(effects) == 0 {
		return nil
	}
	log.Info().
		Str("order_id", after.ID).
		Str("from", before.Status).
		Str("to", after.Status).
		Strs("recipients", events.Recipients(effects)).
		Msg("order status changed")
	return n.Effects.Apply(ctx, effects)
}

// StatusChangeEffects decides who hears about a status transition.
//
// Nothing happens unless the status value changed, compared exactly as
// stored, and the order has a client. The actor of a change is unknown, so when a provider is assigned
// both parties are notified, the actor included. Without a provider only
// the client is notified. Transition legality is not checked.
func StatusChangeEffects(before, after domain.Order) []events.Effect {
	to := after.Status
	if before.Status == to {
		return nil
	}
	clientID := strings.TrimSpace(after.ClientID)
	if clientID == "" {
		return nil
	}

	recipients := []string{clientID}
	if after.HasProvider() {
		recipients = append(recipients, strings.TrimSpace(after.ProviderID))
	}

	body := StatusBody(to)
	out := make([]events.Effect, 0, len(recipients))
	for _, uid := range recipients {
		out = append(out, events.Notify{
			UserID: uid,
			Notification: push.Notification{
				Type:    domain.NotificationOrderStatus,
				Title:   titleOrderUpdated,
				Body:    body,
				OrderID: after.ID,
				Status:  to,
				Data: map[string]any{
					"type":     domain.NotificationOrderStatus,
					"pedidoId": after.ID,
					"status":   to,
				},
			},
		})
	}
	return out
}
