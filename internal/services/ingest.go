// Package services – Ingestor
//
// This file adapts document change events to the trigger components. It is
// the only writer of order and provider snapshots.

package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/chegaja-engine/internal/domain"
	"github.com/tbourn/chegaja-engine/internal/events"
)

// SnapshotRepo stores document snapshots delivered by change events.
type SnapshotRepo interface {
	SaveOrderSnapshot(ctx context.Context, db *gorm.DB, o *domain.Order) error
	SaveProviderSnapshot(ctx context.Context, db *gorm.DB, p *domain.Provider) error
}

// Ingestor routes document change events to the trigger handlers. Each
// snapshot is stored before its handler runs, so handlers and RPCs read the
// state the event describes.
type Ingestor struct {
	DB        *gorm.DB
	Snapshots SnapshotRepo
	Matcher   *GeoMatcher
	Notifier  *OrderNotifier
	Chat      *ChatAggregator
}

// OrderCreated stores the new order and runs geo matching for it.
func (in *Ingestor) OrderCreated(ctx context.Context, ev events.OrderCreated) error {
	id := strings.TrimSpace(ev.Params.PedidoID)
	if id == "" {
		return ErrInvalidOrderID
	}
	o := ev.After.Order(id)
	if err := in.Snapshots.SaveOrderSnapshot(ctx, in.DB, &o); err != nil {
		return fmt.Errorf("store order %s: %w", id, err)
	}
	_, err := in.Matcher.OnOrderCreated(ctx, o)
	return err
}

// OrderUpdated stores the new order state and notifies on status changes.
func (in *Ingestor) OrderUpdated(ctx context.Context, ev events.OrderUpdated) error {
	id := strings.TrimSpace(ev.Params.PedidoID)
	if id == "" {
		return ErrInvalidOrderID
	}
	after := ev.After.Order(id)
	if err := in.Snapshots.SaveOrderSnapshot(ctx, in.DB, &after); err != nil {
		return fmt.Errorf("store order %s: %w", id, err)
	}
	return in.Notifier.OnOrderUpdated(ctx, ev.Before.Order(id), after)
}

// MessageCreated updates the chat thread and notifies the counterpart.
func (in *Ingestor) MessageCreated(ctx context.Context, ev events.MessageCreated) error {
	orderID := strings.TrimSpace(ev.Params.PedidoID)
	msgID := strings.TrimSpace(ev.Params.MessageID)
	if orderID == "" {
		return ErrInvalidOrderID
	}
	if msgID == "" {
		return ErrInvalidMessageID
	}
	return in.Chat.OnMessageCreated(ctx, orderID, msgID, ev.Message)
}

// ProviderWritten stores a provider snapshot for matching.
func (in *Ingestor) ProviderWritten(ctx context.Context, ev events.ProviderWritten) error {
	id := strings.TrimSpace(ev.Params.PrestadorID)
	if id == "" {
		return ErrInvalidProviderID
	}
	p := ev.After.Provider(id)
	return in.Snapshots.SaveProviderSnapshot(ctx, in.DB, &p)
}
