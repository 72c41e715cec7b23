// Package events holds the platform side of the change-event triggers: the
// Effect values that trigger decisions produce, the Executor that drains
// them against the store and the fan-out, and the wire envelopes of the
// change events delivered by the document store.
package events

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/tbourn/chegaja-engine/internal/push"
	"github.com/tbourn/chegaja-engine/internal/repo"
)

// Effect is one side effect decided by a trigger. The concrete variants are
// PersistThread and Notify.
type Effect interface {
	effect()
}

// PersistThread merge-upserts a chat thread summary.
type PersistThread struct {
	Update repo.ThreadUpdate
}

// Notify dispatches a notification to one user.
type Notify struct {
	UserID       string
	Notification push.Notification
}

func (PersistThread) effect() {}
func (Notify) effect()        {}

// Recipients returns the user ids of the Notify effects, in order.
func Recipients(effects []Effect) []string {
	var out []string
	for _, e := range effects {
		if n, ok := e.(Notify); ok {
			out = append(out, n.UserID)
		}
	}
	return out
}

// ThreadRepo persists chat thread summaries.
type ThreadRepo interface {
	UpsertThread(ctx context.Context, db *gorm.DB, u repo.ThreadUpdate) error
}

// Dispatcher delivers one notification to one user.
type Dispatcher interface {
	Dispatch(ctx context.Context, userID string, n push.Notification) error
}

// Executor applies effects against real collaborators.
type Executor struct {
	DB       *gorm.DB
	Threads  ThreadRepo
	Dispatch Dispatcher
}

// Apply runs persist effects first, in order, and stops at the first
// failure without notifying anyone. Notify effects then run concurrently;
// a failed dispatch is logged and does not affect its siblings. Apply
// returns once every dispatch has settled.
func (e *Executor) Apply(ctx context.Context, effects []Effect) error {
	tr := otel.Tracer("events/Executor")
	ctx, span := tr.Start(ctx, "Apply")
	defer span.End()
	span.SetAttributes(attribute.Int("effects", len(effects)))

	var notify []Notify
	for _, eff := range effects {
		switch v := eff.(type) {
		case PersistThread:
			if err := e.Threads.UpsertThread(ctx, e.DB, v.Update); err != nil {
				return fmt.Errorf("persist thread %s: %w", v.Update.OrderID, err)
			}
		case Notify:
			notify = append(notify, v)
		}
	}

	var g errgroup.Group
	for _, n := range notify {
		g.Go(func() error {
			if err := e.Dispatch.Dispatch(ctx, n.UserID, n.Notification); err != nil {
				log.Error().Err(err).
					Str("user_id", n.UserID).
					Str("order_id", n.Notification.OrderID).
					Str("type", n.Notification.Type).
					Msg("notification dispatch failed")
			}
			return nil
		})
	}
	return g.Wait()
}
