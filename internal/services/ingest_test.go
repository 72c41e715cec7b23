package services

import (
	"context"
	"errors"
	"testing"

	"github.com/tbourn/chegaja-engine/internal/domain"
	"github.com/tbourn/chegaja-engine/internal/events"
	"github.com/tbourn/chegaja-engine/internal/repo"
)

func newTestIngestor(t *testing.T) (*Ingestor, *recordingEffects) {
	t.Helper()
	db := newTestDB(t)
	rec := &recordingEffects{}
	store := repo.Store{}
	return &Ingestor{
		DB:        db,
		Snapshots: store,
		Matcher:   &GeoMatcher{DB: db, Providers: store, Effects: rec},
		Notifier:  &OrderNotifier{Effects: rec},
		Chat:      &ChatAggregator{DB: db, Orders: store, Effects: rec},
	}, rec
}

func geoField(lat, lng float64) *events.GeoField {
	return &events.GeoField{Geopoint: &events.GeoPoint{Latitude: lat, Longitude: lng}}
}

func TestIngestor_MissingIDs(t *testing.T) {
	in, rec := newTestIngestor(t)
	ctx := context.Background()

	if err := in.OrderCreated(ctx, events.OrderCreated{}); !errors.Is(err, ErrInvalidOrderID) {
		t.Fatalf("OrderCreated: %v", err)
	}
	if err := in.OrderUpdated(ctx, events.OrderUpdated{Params: events.OrderParams{PedidoID: " "}}); !errors.Is(err, ErrInvalidOrderID) {
		t.Fatalf("OrderUpdated: %v", err)
	}
	if err := in.MessageCreated(ctx, events.MessageCreated{Params: events.MessageParams{PedidoID: "o1"}}); !errors.Is(err, ErrInvalidMessageID) {
		t.Fatalf("MessageCreated: %v", err)
	}
	if err := in.ProviderWritten(ctx, events.ProviderWritten{}); !errors.Is(err, ErrInvalidProviderID) {
		t.Fatalf("ProviderWritten: %v", err)
	}
	if rec.calls != 0 {
		t.Fatalf("no handler should run, got %d applies", rec.calls)
	}
}

func TestIngestor_OrderCreated_StoresAndMatches(t *testing.T) {
	in, rec := newTestIngestor(t)
	ctx := context.Background()

	if err := in.ProviderWritten(ctx, events.ProviderWritten{
		Params: events.ProviderParams{PrestadorID: "p1"},
		After:  events.ProviderDoc{IsOnline: true, Geo: geoField(-8.8383, 13.2344)},
	}); err != nil {
		t.Fatalf("ProviderWritten: %v", err)
	}

	err := in.OrderCreated(ctx, events.OrderCreated{
		Params: events.OrderParams{PedidoID: "o1"},
		After:  events.OrderDoc{ClientID: "c1", Titulo: "Electricista", Preco: "25.5", Geo: geoField(-8.8390, 13.2350)},
	})
	if err != nil {
		t.Fatalf("OrderCreated: %v", err)
	}

	o, err := repo.GetOrder(ctx, in.DB, "o1")
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if o.ClientID != "c1" || o.Price == nil || *o.Price != 25.5 || o.Geohash == "" {
		t.Fatalf("snapshot not stored as sent: %+v", o)
	}

	ns := rec.notifies()
	if len(ns) != 1 || ns[0].UserID != "p1" || ns[0].Notification.Type != domain.NotificationNewOrder {
		t.Fatalf("notifies=%+v", ns)
	}
}

func TestIngestor_OrderUpdated_StoresAfterAndNotifies(t *testing.T) {
	in, rec := newTestIngestor(t)
	ctx := context.Background()

	err := in.OrderUpdated(ctx, events.OrderUpdated{
		Params: events.OrderParams{PedidoID: "o1"},
		Before: events.OrderDoc{ClienteID: "c1", PrestadorID: "p1", Status: domain.StatusAccepted},
		After:  events.OrderDoc{ClienteID: "c1", PrestadorID: "p1", Status: domain.StatusInProgress},
	})
	if err != nil {
		t.Fatalf("OrderUpdated: %v", err)
	}

	o, err := repo.GetOrder(ctx, in.DB, "o1")
	if err != nil || o.Status != domain.StatusInProgress {
		t.Fatalf("stored order=%+v err=%v", o, err)
	}
	if got := events.Recipients(rec.effects); len(got) != 2 {
		t.Fatalf("recipients=%v", got)
	}
}

func TestIngestor_MessageCreated_ReadsStoredOrder(t *testing.T) {
	in, rec := newTestIngestor(t)
	ctx := context.Background()
	seedOrder(t, in.DB, domain.Order{ID: "o1", ClientID: "c1", ProviderID: "p1"})

	err := in.MessageCreated(ctx, events.MessageCreated{
		Params:  events.MessageParams{PedidoID: "o1", MessageID: "m1"},
		Message: domain.ChatMessage{SenderID: "p1", SenderRole: "prestador", Texto: "Chego em 10 min"},
	})
	if err != nil {
		t.Fatalf("MessageCreated: %v", err)
	}
	ns := rec.notifies()
	if len(ns) != 1 || ns[0].UserID != "c1" || ns[0].Notification.MessageID != "m1" {
		t.Fatalf("notifies=%+v", ns)
	}
	if len(rec.threads()) != 1 {
		t.Fatalf("expected one thread update")
	}
}
