package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/tbourn/chegaja-engine/internal/domain"
	"github.com/tbourn/chegaja-engine/internal/events"
	"github.com/tbourn/chegaja-engine/internal/repo"
)

var chatAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestChatEffects_RecipientIsCounterpart(t *testing.T) {
	o := domain.Order{ID: "o1", ClientID: "c1", ProviderID: "p1"}

	effs := ChatEffects(o, "m1", domain.ChatMessage{SenderID: "c1", SenderRole: "client", Text: "Olá"}, chatAt, false)
	if len(effs) != 2 {
		t.Fatalf("expected persist + notify, got %d", len(effs))
	}
	th := effs[0].(events.PersistThread).Update
	n := effs[1].(events.Notify)
	if th.RecipientRole != domain.RoleProvider || th.SenderRole != domain.RoleClient || th.LastMessage != "Olá" || !th.At.Equal(chatAt) {
		t.Fatalf("unexpected thread update %+v", th)
	}
	if n.UserID != "p1" || n.Notification.Title != "Nova mensagem do cliente" || n.Notification.PushTitle != titleChatPush {
		t.Fatalf("unexpected notify %+v", n)
	}
	if n.Notification.Data["openChat"] != "true" || n.Notification.Data["messageId"] != "m1" || n.Notification.FromUserID != "c1" {
		t.Fatalf("unexpected payload %+v", n.Notification)
	}

	effs = ChatEffects(o, "m2", domain.ChatMessage{SenderID: "p1", SenderRole: "prestador", Texto: "Chego às 10h"}, chatAt, false)
	if n := effs[1].(events.Notify); n.UserID != "c1" || n.Notification.Title != "Nova mensagem do prestador" || n.Notification.Body != "Chego às 10h" {
		t.Fatalf("unexpected notify %+v", n)
	}
	if th := effs[0].(events.PersistThread).Update; th.RecipientRole != domain.RoleClient {
		t.Fatalf("provider message must count as unread by the client: %+v", th)
	}
}

func TestChatEffects_PreAssignment(t *testing.T) {
	o := domain.Order{ID: "o1", ClientID: "c1"}
	fromClient := domain.ChatMessage{SenderID: "c1", SenderRole: "cliente", Text: "alguém?"}
	fromProvider := domain.ChatMessage{SenderID: "p7", SenderRole: "prestador", Text: "posso ir"}

	if effs := ChatEffects(o, "m1", fromClient, chatAt, false); effs != nil {
		t.Fatalf("client message before assignment must be ignored")
	}
	if effs := ChatEffects(o, "m2", fromProvider, chatAt, false); effs != nil {
		t.Fatalf("provider message before assignment is ignored by default")
	}
	if effs := ChatEffects(o, "m1", fromClient, chatAt, true); effs != nil {
		t.Fatalf("client message has no recipient even when allowed")
	}
	effs := ChatEffects(o, "m2", fromProvider, chatAt, true)
	if len(effs) != 2 || effs[1].(events.Notify).UserID != "c1" {
		t.Fatalf("allowed provider message must reach the client: %+v", effs)
	}
	if effs := ChatEffects(domain.Order{ID: "o1", ProviderID: "p1"}, "m3", fromProvider, chatAt, true); effs != nil {
		t.Fatalf("order without client must be ignored")
	}
}

func TestChatEffects_Truncation(t *testing.T) {
	text := strings.Repeat("\u00e7", 250)
	effs := ChatEffects(domain.Order{ID: "o1", ClientID: "c1", ProviderID: "p1"}, "m1", domain.ChatMessage{SenderRole: "cliente", Message: text}, chatAt, false)

	th := effs[0].(events.PersistThread).Update
	n := effs[1].(events.Notify).Notification
	for name, c := range map[string]struct {
		s   string
		max int
	}{
		"thread": {th.LastMessage, MaxThreadPreview},
		"in-app": {n.Body, MaxInAppPreview},
		"push":   {n.PushBody, MaxPushBody},
	} {
		r := []rune(c.s)
		if len(r) != c.max || string(r[len(r)-1]) != Ellipsis {
			t.Fatalf("%s preview: %d runes, want %d ending in ellipsis", name, len(r), c.max)
		}
	}
}

func TestChatAggregator_UnknownOrderIsNoop(t *testing.T) {
	db := newTestDB(t)
	eff := &recordingEffects{}
	a := &ChatAggregator{DB: db, Orders: repo.Store{}, Effects: eff}
	if err := a.OnMessageCreated(context.Background(), "missing", "m1", domain.ChatMessage{SenderRole: "cliente", Text: "x"}); err != nil {
		t.Fatalf("OnMessageCreated: %v", err)
	}
	if eff.calls != 0 {
		t.Fatalf("unknown order must not produce effects")
	}
}

func TestChatAggregator_UnreadCounters(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedOrder(t, db, domain.Order{ID: "o1", ClientID: "c1", ProviderID: "p1", Status: domain.StatusAccepted})

	d := &recordingDispatcher{}
	a := &ChatAggregator{
		DB:      db,
		Orders:  repo.Store{},
		Effects: &events.Executor{DB: db, Threads: repo.Store{}, Dispatch: d},
		Now:     func() time.Time { return chatAt },
	}

	const n = 3
	for i := 0; i < n; i++ {
		if err := a.OnMessageCreated(ctx, "o1", "m", domain.ChatMessage{SenderID: "c1", SenderRole: "cliente", Text: "olá"}); err != nil {
			t.Fatalf("OnMessageCreated: %v", err)
		}
	}
	th, err := repo.GetThread(ctx, db, "o1")
	if err != nil {
		t.Fatalf("GetThread: %v", err)
	}
	if th.UnreadByProvider != n || th.UnreadByClient != 0 || th.MessageCount != n {
		t.Fatalf("unexpected counters %+v", th)
	}
	if !th.HasUnreadProvider || th.HasUnreadClient {
		t.Fatalf("unexpected unread flags %+v", th)
	}
	if len(d.sent["p1"]) != n || len(d.sent["c1"]) != 0 {
		t.Fatalf("unexpected dispatches %+v", d.sent)
	}
}
