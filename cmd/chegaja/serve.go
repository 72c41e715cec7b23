package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	httpapi "github.com/tbourn/chegaja-engine/internal/http"
	"github.com/tbourn/chegaja-engine/internal/observability"
	"github.com/tbourn/chegaja-engine/internal/services"
	"github.com/tbourn/chegaja-engine/internal/sysutil"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server and the scheduled endpoint hygiene",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	gin.SetMode(cfg.GinMode)

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	gw, err := newGateway(ctx, cfg.Push)
	if err != nil {
		return err
	}
	eng := newEngine(cfg, db, gw)

	r := gin.New()
	httpapi.RegisterRoutes(r, eng.handlers, cfg)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	sched, err := scheduleHygiene(ctx, cfg.Hygiene.Schedule, cfg.Hygiene.Timezone, eng.endpoints)
	if err != nil {
		return err
	}
	sched.Start()
	defer func() { <-sched.Stop().Done() }()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info().Msg("shutting down")
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

// scheduleHygiene registers the endpoint hygiene job. An empty schedule
// returns a scheduler with no jobs.
func scheduleHygiene(ctx context.Context, schedule, tz string, svc *services.EndpointService) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(sysutil.Location(tz)))
	if schedule == "" {
		log.Info().Msg("endpoint hygiene schedule disabled")
		return c, nil
	}
	if _, err := c.AddFunc(schedule, func() { _ = runHygiene(ctx, svc) }); err != nil {
		return nil, err
	}
	log.Info().Str("schedule", schedule).Str("timezone", tz).Msg("endpoint hygiene scheduled")
	return c, nil
}
