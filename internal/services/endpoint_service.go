// Package services – EndpointService
//
// Push endpoint registration for the calling user and the scheduled
// hygiene pass over stale endpoints.

package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"
)

// Push platforms accepted at registration.
var platforms = map[string]struct{}{"android": {}, "ios": {}, "web": {}}

// EndpointRegistryRepo persists push endpoints.
type EndpointRegistryRepo interface {
	RegisterEndpoint(ctx context.Context, db *gorm.DB, userID, token, platform string) error
	CountStaleEndpoints(ctx context.Context, db *gorm.DB, before time.Time) (int64, error)
	DeleteStaleEndpoints(ctx context.Context, db *gorm.DB, before time.Time) (int64, error)
}

// HygieneReport summarizes one hygiene run.
type HygieneReport struct {
	Cutoff  time.Time `json:"cutoff"`
	Stale   int64     `json:"stale"`
	Deleted int64     `json:"deleted"`
}

// EndpointService registers push endpoints and prunes stale ones.
type EndpointService struct {
	DB   *gorm.DB
	Repo EndpointRegistryRepo

	// TTL is how long an endpoint may go unseen before hygiene removes it.
	// Zero keeps everything and only reports.
	TTL time.Duration
	Now func() time.Time
}

// Register adds token to userID's endpoint set, refreshing it when already
// present. Unknown platforms are stored empty.
func (s *EndpointService) Register(ctx context.Context, userID, token, platform string) error {
	ctx, span := otel.Tracer("services/EndpointService").Start(ctx, "Register")
	defer span.End()

	userID = strings.TrimSpace(userID)
	token = strings.TrimSpace(token)
	if userID == "" {
		return ErrUnauthenticated
	}
	if token == "" {
		return ErrInvalidToken
	}
	platform = strings.ToLower(strings.TrimSpace(platform))
	if _, ok := platforms[platform]; !ok {
		platform = ""
	}
	return s.Repo.RegisterEndpoint(ctx, s.DB, userID, token, platform)
}

// Hygiene removes endpoints not seen within TTL. With TTL zero it only
// counts the endpoints older than a day and logs the figure.
func (s *EndpointService) Hygiene(ctx context.Context) (HygieneReport, error) {
	ctx, span := otel.Tracer("services/EndpointService").Start(ctx, "Hygiene")
	defer span.End()

	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}
	ttl := s.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	rep := HygieneReport{Cutoff: now.Add(-ttl)}

	stale, err := s.Repo.CountStaleEndpoints(ctx, s.DB, rep.Cutoff)
	if err != nil {
		return rep, err
	}
	rep.Stale = stale

	if s.TTL > 0 && stale > 0 {
		deleted, err := s.Repo.DeleteStaleEndpoints(ctx, s.DB, rep.Cutoff)
		if err != nil {
			return rep, err
		}
		rep.Deleted = deleted
	}
	log.Info().
		Time("cutoff", rep.Cutoff).
		Int64("stale", rep.Stale).
		Int64("deleted", rep.Deleted).
		Msg("endpoint hygiene finished")
	return rep, nil
}
