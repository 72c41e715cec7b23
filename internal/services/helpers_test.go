package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/chegaja-engine/internal/domain"
	"github.com/tbourn/chegaja-engine/internal/events"
	"github.com/tbourn/chegaja-engine/internal/payments"
	"github.com/tbourn/chegaja-engine/internal/push"
	"github.com/tbourn/chegaja-engine/internal/repo"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func f64(v float64) *float64 { return &v }

// recordingEffects captures effects instead of applying them.
type recordingEffects struct {
	calls   int
	effects []events.Effect
	err     error
}

func (r *recordingEffects) Apply(_ context.Context, effects []events.Effect) error {
	r.calls++
	r.effects = append(r.effects, effects...)
	return r.err
}

func (r *recordingEffects) notifies() []events.Notify {
	var out []events.Notify
	for _, e := range r.effects {
		if n, ok := e.(events.Notify); ok {
			out = append(out, n)
		}
	}
	return out
}

func (r *recordingEffects) threads() []events.PersistThread {
	var out []events.PersistThread
	for _, e := range r.effects {
		if p, ok := e.(events.PersistThread); ok {
			out = append(out, p)
		}
	}
	return out
}

// recordingDispatcher collects dispatched notifications per user.
type recordingDispatcher struct {
	mu   sync.Mutex
	sent map[string][]push.Notification
}

func (d *recordingDispatcher) Dispatch(_ context.Context, userID string, n push.Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sent == nil {
		d.sent = map[string][]push.Notification{}
	}
	d.sent[userID] = append(d.sent[userID], n)
	return nil
}

// fakeProcessor is an in-memory payments.Processor.
type fakeProcessor struct {
	mu sync.Mutex

	intents  map[string]*payments.Intent
	created  []payments.IntentParams
	accounts []string
	links    []payments.LinkParams

	event    *payments.Event
	parseErr error
	getErr   error
}

func newFakeProcessor() *fakeProcessor {
	return &fakeProcessor{intents: map[string]*payments.Intent{}}
}

func (f *fakeProcessor) CreateIntent(_ context.Context, p payments.IntentParams) (*payments.Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, p)
	pi := &payments.Intent{
		ID:           fmt.Sprintf("pi_%d", len(f.created)),
		ClientSecret: fmt.Sprintf("pi_%d_secret", len(f.created)),
		Status:       "requires_payment_method",
		Amount:       p.Amount,
		Currency:     p.Currency,
		Metadata:     p.Metadata,
	}
	f.intents[pi.ID] = pi
	return pi, nil
}

func (f *fakeProcessor) GetIntent(_ context.Context, id string) (*payments.Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	pi, ok := f.intents[id]
	if !ok {
		return nil, errors.New("no such intent")
	}
	cp := *pi
	return &cp, nil
}

func (f *fakeProcessor) CreateAccount(_ context.Context, providerID string) (*payments.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts = append(f.accounts, providerID)
	return &payments.Account{ID: "acct_" + providerID}, nil
}

func (f *fakeProcessor) CreateOnboardingLink(_ context.Context, p payments.LinkParams) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.links = append(f.links, p)
	return "https://connect.example/setup/" + p.AccountID, nil
}

func (f *fakeProcessor) ParseWebhook(_ []byte, _ string) (*payments.Event, error) {
	if f.parseErr != nil {
		return nil, f.parseErr
	}
	return f.event, nil
}

func seedOrder(t *testing.T, db *gorm.DB, o domain.Order) {
	t.Helper()
	if err := repo.SaveOrderSnapshot(context.Background(), db, &o); err != nil {
		t.Fatalf("seed order %s: %v", o.ID, err)
	}
}

func seedProvider(t *testing.T, db *gorm.DB, p domain.Provider) {
	t.Helper()
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed provider %s: %v", p.ID, err)
	}
}
