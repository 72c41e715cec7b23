// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides order snapshots and the payment mirror
// merged onto orders by the payment reconciler.
//
// Missing orders are reported as ErrNotFound.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/chegaja-engine/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound so callers can use either.
var ErrNotFound = gorm.ErrRecordNotFound

// orderSnapshotColumns are the columns owned by the order document itself.
// Payment mirror columns are owned by the reconciler and never overwritten
// by a snapshot.
var orderSnapshotColumns = []string{
	"client_id", "provider_id", "status", "title", "service_id",
	"latitude", "longitude", "geohash",
	"price", "proposed_price", "final_price", "currency",
	"updated_at",
}

// GetOrder fetches an order by id, or ErrNotFound.
func GetOrder(ctx context.Context, db *gorm.DB, id string) (*domain.Order, error) {
	var o domain.Order
	if err := db.WithContext(ctx).Where("id = ?", id).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// SaveOrderSnapshot merge-upserts the document-owned fields of o.
func SaveOrderSnapshot(ctx context.Context, db *gorm.DB, o *domain.Order) error {
	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(orderSnapshotColumns),
		}).
		Create(o).Error
}

// OrderPayment is the payment mirror written onto an order. Zero-valued
// fields are left untouched.
type OrderPayment struct {
	IntentID  string
	Amount    int64
	Currency  string
	FeeAmount int64
	Status    string
}

func (p OrderPayment) updates() map[string]any {
	m := map[string]any{}
	if p.IntentID != "" {
		m["payment_intent_id"] = p.IntentID
	}
	if p.Amount > 0 {
		m["payment_amount"] = p.Amount
	}
	if p.Currency != "" {
		m["payment_currency"] = p.Currency
	}
	if p.FeeAmount > 0 {
		m["payment_fee_amount"] = p.FeeAmount
	}
	if p.Status != "" {
		m["payment_status"] = p.Status
	}
	return m
}

// MergeOrderPayment merges the non-zero fields of p onto the order.
// It returns ErrNotFound when the order does not exist.
func MergeOrderPayment(ctx context.Context, db *gorm.DB, orderID string, p OrderPayment) error {
	upd := p.updates()
	if len(upd) == 0 {
		return nil
	}
	upd["updated_at"] = time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ?", orderID).
		Updates(upd)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
