package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/chegaja-engine/internal/domain"
)

// UpsertPayment merge-upserts a ledger record keyed by intent id. On
// conflict only the non-zero fields of p are written, so a status-only
// update from a webhook keeps the amounts recorded at creation.
func UpsertPayment(ctx context.Context, db *gorm.DB, p *domain.Payment) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	set := map[string]any{"updated_at": now}
	for col, v := range map[string]string{
		"order_id":    p.OrderID,
		"client_id":   p.ClientID,
		"provider_id": p.ProviderID,
		"currency":    p.Currency,
		"status":      p.Status,
	} {
		if v != "" {
			set[col] = v
		}
	}
	if p.Amount > 0 {
		set["amount"] = p.Amount
	}
	if p.FeeAmount > 0 {
		set["fee_amount"] = p.FeeAmount
	}

	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(set),
		}).
		Create(p).Error
}

// GetPayment fetches a ledger record by intent id, or ErrNotFound.
func GetPayment(ctx context.Context, db *gorm.DB, intentID string) (*domain.Payment, error) {
	var p domain.Payment
	if err := db.WithContext(ctx).Where("id = ?", intentID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}
