package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/chegaja-engine/internal/domain"
	"github.com/tbourn/chegaja-engine/internal/repo"
)

func TestEndpointService_Register(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := &EndpointService{DB: db, Repo: repo.Store{}}

	if err := svc.Register(ctx, "", "tok", "android"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("blank user: %v", err)
	}
	if err := svc.Register(ctx, "u1", "  ", "android"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("blank token: %v", err)
	}
	if err := svc.Register(ctx, "u1", " tok-a ", "ANDROID"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := svc.Register(ctx, "u1", "tok-a", "fridge"); err != nil {
		t.Fatalf("re-Register: %v", err)
	}

	var eps []domain.PushEndpoint
	db.Where("user_id = ?", "u1").Find(&eps)
	if len(eps) != 1 || eps[0].Token != "tok-a" || eps[0].Platform != "" {
		t.Fatalf("unexpected endpoints %+v", eps)
	}
}

func TestEndpointService_Hygiene(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 3, 0, 0, 0, time.UTC)

	for _, ep := range []domain.PushEndpoint{
		{UserID: "u1", Token: "old", CreatedAt: now.AddDate(0, -3, 0), LastSeenAt: now.AddDate(0, -2, 0)},
		{UserID: "u1", Token: "fresh", CreatedAt: now, LastSeenAt: now.Add(-time.Hour)},
	} {
		if err := db.Create(&ep).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	dry := &EndpointService{DB: db, Repo: repo.Store{}, Now: func() time.Time { return now }}
	rep, err := dry.Hygiene(ctx)
	if err != nil {
		t.Fatalf("Hygiene: %v", err)
	}
	if rep.Stale != 1 || rep.Deleted != 0 {
		t.Fatalf("zero TTL must only report: %+v", rep)
	}

	svc := &EndpointService{DB: db, Repo: repo.Store{}, TTL: 30 * 24 * time.Hour, Now: func() time.Time { return now }}
	rep, err = svc.Hygiene(ctx)
	if err != nil {
		t.Fatalf("Hygiene: %v", err)
	}
	if rep.Stale != 1 || rep.Deleted != 1 {
		t.Fatalf("unexpected report %+v", rep)
	}
	tokens, _ := repo.ListEndpoints(ctx, db, "u1")
	if len(tokens) != 1 || tokens[0] != "fresh" {
		t.Fatalf("unexpected remaining tokens %v", tokens)
	}
}
