// Package services – GeoMatcher
//
// This file implements GeoMatcher, which reacts to newly created orders that
// have no provider yet. It scans the geohash ranges covering the maximum
// search radius concurrently, keeps providers whose true distance is within
// their own service radius, ranks them by distance, caps the list and
// notifies each candidate through the effect executor.
//
// Range reads that fail are logged and skipped; a partial scan still
// notifies the providers it found.
//
// Observability: OnOrderCreated opens a span carrying the order id and the
// scanned/candidate counts, and feeds the match histogram.

package services

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/tbourn/chegaja-engine/internal/domain"
	"github.com/tbourn/chegaja-engine/internal/events"
	"github.com/tbourn/chegaja-engine/internal/geo"
	"github.com/tbourn/chegaja-engine/internal/push"
)

// Geo matcher defaults.
const (
	DefaultMaxRadiusKm      = 20
	DefaultProviderRadiusKm = 10
	DefaultTopN             = 30
)

const (
	titleNewOrder    = "ChegaJá — Novo pedido perto de ti"
	fallbackNewOrder = "Novo pedido"
)

// ProviderRangeRepo reads online providers inside one geohash range.
type ProviderRangeRepo interface {
	ProvidersInRange(ctx context.Context, db *gorm.DB, r geo.Range, serviceID string) ([]domain.Provider, error)
}

// EffectApplier drains trigger effects.
type EffectApplier interface {
	Apply(ctx context.Context, effects []events.Effect) error
}

// Candidate is a provider selected for a new order.
type Candidate struct {
	ProviderID string
	DistanceKm float64
}

// GeoMatcher notifies nearby online providers about new unassigned orders.
type GeoMatcher struct {
	DB        *gorm.DB
	Providers ProviderRangeRepo
	Effects   EffectApplier

	MaxRadiusKm     float64
	DefaultRadiusKm float64
	TopN            int
}

// OnOrderCreated runs matching for a newly created order and returns the
// providers that were notified. Orders that already have a provider or
// lack valid coordinates are skipped.
func (m *GeoMatcher) OnOrderCreated(ctx context.Context, o domain.Order) ([]Candidate, error) {
	tr := otel.Tracer("services/GeoMatcher")
	ctx, span := tr.Start(ctx, "OnOrderCreated",
		trace.WithAttributes(attribute.String("order.id", o.ID)),
	)
	defer span.End()

	lg := log.With().Str("order_id", o.ID).Logger()

	if o.HasProvider() {
		lg.Debug().Msg("order already assigned; skip matching")
		return nil, nil
	}
	if o.Latitude == nil || o.Longitude == nil {
		lg.Info().Msg("order without geolocation; skip matching")
		return nil, nil
	}
	center := geo.Point{Lat: *o.Latitude, Lng: *o.Longitude}
	if !center.Valid() {
		lg.Info().Msg("order with invalid geolocation; skip matching")
		return nil, nil
	}

	found := m.scan(ctx, center, o.ServiceID)
	cands := SelectCandidates(center, found, m.defaultRadius(), m.topN())
	span.SetAttributes(attribute.Int("match.scanned", len(found)), attribute.Int("match.candidates", len(cands)))
	matchCandidates.Observe(float64(len(cands)))

	if len(cands) == 0 {
		lg.Info().Int("scanned", len(found)).Msg("no provider in range")
		return nil, nil
	}
	if err := m.Effects.Apply(ctx, MatchEffects(o, cands)); err != nil {
		return cands, err
	}
	lg.Info().Int("providers", len(cands)).Msg("new order pushed to nearby providers")
	return cands, nil
}

// scan runs one concurrent read per covering range and returns the union,
// deduplicated by provider id, in range order. A failed range is logged
// and contributes nothing.
func (m *GeoMatcher) scan(ctx context.Context, center geo.Point, serviceID string) []domain.Provider {
	ranges := geo.QueryBounds(center, m.maxRadius())
	results := make([][]domain.Provider, len(ranges))

	var g errgroup.Group
	for i, r := range ranges {
		g.Go(func() error {
			ps, err := m.Providers.ProvidersInRange(ctx, m.DB, r, serviceID)
			if err != nil {
				log.Warn().Err(err).Str("range_start", r.Start).Msg("provider range query failed")
				return nil
			}
			results[i] = ps
			return nil
		})
	}
	_ = g.Wait()

	seen := make(map[string]struct{})
	var out []domain.Provider
	for _, ps := range results {
		for _, p := range ps {
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

// SelectCandidates keeps the providers whose great-circle distance to center
// is within their own radius (defaultRadiusKm when unset or non-positive),
// sorts them by ascending distance keeping encounter order on ties, and
// returns at most topN.
func SelectCandidates(center geo.Point, providers []domain.Provider, defaultRadiusKm float64, topN int) []Candidate {
	var out []Candidate
	for _, p := range providers {
		if p.Latitude == nil || p.Longitude == nil {
			continue
		}
		d := geo.DistanceKm(center, geo.Point{Lat: *p.Latitude, Lng: *p.Longitude})
		radius := p.RadiusKm
		if radius <= 0 {
			radius = defaultRadiusKm
		}
		if d <= radius {
			out = append(out, Candidate{ProviderID: p.ID, DistanceKm: d})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}

// MatchEffects builds one new-order notification per candidate.
func MatchEffects(o domain.Order, cands []Candidate) []events.Effect {
	body := Truncate(o.Title, MaxPushBody)
	if body == "" {
		body = fallbackNewOrder
	}

	out := make([]events.Effect, 0, len(cands))
	for _, c := range cands {
		out = append(out, events.Notify{
			UserID: c.ProviderID,
			Notification: push.Notification{
				Type:    domain.NotificationNewOrder,
				Title:   titleNewOrder,
				Body:    body,
				OrderID: o.ID,
				Data: map[string]any{
					"type":     domain.NotificationNewOrder,
					"pedidoId": o.ID,
				},
			},
		})
	}
	return out
}

func (m *GeoMatcher) maxRadius() float64 {
	if m.MaxRadiusKm <= 0 {
		return DefaultMaxRadiusKm
	}
	return m.MaxRadiusKm
}

func (m *GeoMatcher) defaultRadius() float64 {
	if m.DefaultRadiusKm <= 0 {
		return DefaultProviderRadiusKm
	}
	return m.DefaultRadiusKm
}

func (m *GeoMatcher) topN() int {
	if m.TopN <= 0 {
		return DefaultTopN
	}
	return m.TopN
}
