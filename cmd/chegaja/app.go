package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/chegaja-engine/internal/config"
	"github.com/tbourn/chegaja-engine/internal/events"
	"github.com/tbourn/chegaja-engine/internal/http/handlers"
	"github.com/tbourn/chegaja-engine/internal/payments"
	"github.com/tbourn/chegaja-engine/internal/push"
	"github.com/tbourn/chegaja-engine/internal/repo"
	"github.com/tbourn/chegaja-engine/internal/services"
	"github.com/tbourn/chegaja-engine/internal/sysutil"
)

const serviceName = "chegaja-engine"

// loadConfig reads the configuration and installs the global logger.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("config: %w", err)
	}
	sysutil.SetupLogger(cfg.LogLevel, cfg.LogPretty, serviceName, os.Stdout)
	return cfg, nil
}

// openDB connects to the configured store, installs query tracing when
// enabled and migrates the schema.
func openDB(cfg config.Config) (*gorm.DB, error) {
	db, err := repo.Open(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.DB.Driver, err)
	}
	if cfg.OTEL.Enabled {
		if err := repo.EnableTracing(db); err != nil {
			return nil, fmt.Errorf("db tracing: %w", err)
		}
	}
	if err := repo.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// newGateway selects FCM when credentials or a project are configured and
// the log-only gateway otherwise.
func newGateway(ctx context.Context, cfg config.PushConfig) (push.Gateway, error) {
	if cfg.CredentialsFile == "" && cfg.ProjectID == "" {
		log.Warn().Msg("push credentials not configured; pushes are only logged")
		return push.LogGateway{}, nil
	}
	return push.NewFCMGateway(ctx, cfg.CredentialsFile, cfg.ProjectID)
}

// engine is the wired set of services.
type engine struct {
	endpoints *services.EndpointService
	ingest    *services.Ingestor
	handlers  *handlers.Handlers
}

func newEngine(cfg config.Config, db *gorm.DB, gw push.Gateway) *engine {
	store := repo.Store{}

	fanout := &push.Fanout{
		DB:          db,
		Endpoints:   store,
		Inbox:       store,
		Gateway:     gw,
		ProductName: cfg.Push.ProductName,
		BatchSize:   cfg.Push.BatchSize,
	}
	effects := &events.Executor{DB: db, Threads: store, Dispatch: fanout}

	ingest := &services.Ingestor{
		DB:        db,
		Snapshots: store,
		Matcher: &services.GeoMatcher{
			DB:              db,
			Providers:       store,
			Effects:         effects,
			MaxRadiusKm:     cfg.Match.MaxRadiusKm,
			DefaultRadiusKm: cfg.Match.DefaultRadiusKm,
			TopN:            cfg.Match.TopN,
		},
		Notifier: &services.OrderNotifier{Effects: effects},
		Chat: &services.ChatAggregator{
			DB:              db,
			Orders:          store,
			Effects:         effects,
			AllowUnassigned: cfg.Chat.AllowUnassigned,
		},
	}

	proc := payments.NewStripe(cfg.Payments.StripeSecretKey, cfg.Payments.StripeWebhookSecret)
	endpoints := &services.EndpointService{DB: db, Repo: store, TTL: cfg.Hygiene.EndpointTTL}

	h := handlers.New(handlers.Services{
		Payments: &services.PaymentService{
			DB:              db,
			Orders:          store,
			Providers:       store,
			Ledger:          store,
			Processor:       proc,
			CommissionRate:  cfg.Payments.CommissionRate,
			DefaultCurrency: cfg.Payments.DefaultCurrency,
		},
		Onboarding: &services.OnboardingService{
			DB:        db,
			Providers: store,
			Processor: proc,
			BaseURL:   cfg.Payments.AppBaseURL,
		},
		Endpoints:     endpoints,
		Notifications: &services.NotificationService{DB: db, Repo: store},
		Ingest:        ingest,
	})

	return &engine{endpoints: endpoints, ingest: ingest, handlers: h}
}

// runHygiene performs one endpoint hygiene pass and logs the outcome.
func runHygiene(ctx context.Context, svc *services.EndpointService) error {
	rep, err := svc.Hygiene(ctx)
	if err != nil {
		log.Error().Err(err).Msg("endpoint hygiene failed")
		return err
	}
	log.Info().
		Time("cutoff", rep.Cutoff).
		Int64("stale", rep.Stale).
		Int64("deleted", rep.Deleted).
		Msg("endpoint hygiene done")
	return nil
}
