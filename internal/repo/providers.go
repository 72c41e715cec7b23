// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides provider snapshots, the geohash range
// query used by the geo matcher and the connected-account updates.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/chegaja-engine/internal/domain"
	"github.com/tbourn/chegaja-engine/internal/geo"
)

// providerSnapshotColumns are the provider columns owned by the provider
// document. Connected-account columns are owned by the reconciler.
var providerSnapshotColumns = []string{
	"online", "latitude", "longitude", "geohash", "radius_km", "updated_at",
}

// GetProvider fetches a provider by id, or ErrNotFound.
func GetProvider(ctx context.Context, db *gorm.DB, id string) (*domain.Provider, error) {
	var p domain.Provider
	if err := db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// SaveProviderSnapshot merge-upserts the document-owned fields of p and
// replaces its service-category set with p.Services.
func SaveProviderSnapshot(ctx context.Context, db *gorm.DB, p *domain.Provider) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Services").
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns(providerSnapshotColumns),
			}).
			Create(p).Error; err != nil {
			return err
		}
		if err := tx.Where("provider_id = ?", p.ID).Delete(&domain.ProviderService{}).Error; err != nil {
			return err
		}
		if len(p.Services) == 0 {
			return nil
		}
		for i := range p.Services {
			p.Services[i].ProviderID = p.ID
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&p.Services).Error
	})
}

// ProvidersInRange returns online providers whose geohash falls inside r.
// When serviceID is non-empty only providers offering that service
// category are returned.
func ProvidersInRange(ctx context.Context, db *gorm.DB, r geo.Range, serviceID string) ([]domain.Provider, error) {
	q := db.WithContext(ctx).
		Model(&domain.Provider{}).
		Where("providers.online = ? AND providers.geohash >= ? AND providers.geohash <= ?", true, r.Start, r.End)
	if serviceID != "" {
		q = q.Where("EXISTS (SELECT 1 FROM provider_services ps WHERE ps.provider_id = providers.id AND ps.service_id = ?)", serviceID)
	}
	var out []domain.Provider
	err := q.Order("providers.geohash").Find(&out).Error
	return out, err
}

// ProvidersByAccount returns up to limit providers referencing the given
// connected account.
func ProvidersByAccount(ctx context.Context, db *gorm.DB, accountID string, limit int) ([]domain.Provider, error) {
	var out []domain.Provider
	err := db.WithContext(ctx).
		Where("stripe_account_id = ?", accountID).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// SetProviderOnboarding updates the onboarding-complete flag.
func SetProviderOnboarding(ctx context.Context, db *gorm.DB, providerID string, complete bool) error {
	res := db.WithContext(ctx).
		Model(&domain.Provider{}).
		Where("id = ?", providerID).
		Updates(map[string]any{
			"stripe_onboarding_complete": complete,
			"updated_at":                 time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetProviderAccount records a newly created connected account and resets
// the onboarding flag.
func SetProviderAccount(ctx context.Context, db *gorm.DB, providerID, accountID string) error {
	res := db.WithContext(ctx).
		Model(&domain.Provider{}).
		Where("id = ?", providerID).
		Updates(map[string]any{
			"stripe_account_id":          accountID,
			"stripe_onboarding_complete": false,
			"updated_at":                 time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
