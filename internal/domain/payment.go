package domain

import "time"

// Payment is the ledger record of a processor payment intent, keyed by the
// processor-assigned intent id. Writes are merge-upserts so a repeated or
// partially applied reconciliation converges on the same row.
type Payment struct {
	ID         string `json:"id"          gorm:"type:varchar(128);primaryKey"`
	OrderID    string `json:"order_id"    gorm:"type:varchar(64);index"`
	ClientID   string `json:"client_id"   gorm:"type:varchar(64)"`
	ProviderID string `json:"provider_id" gorm:"type:varchar(64)"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"    gorm:"type:varchar(8)"`
	FeeAmount  int64  `json:"fee_amount"`
	Status     string `json:"status"      gorm:"type:varchar(64)"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Payment.
func (Payment) TableName() string { return "payments" }

// WebhookEvent records a processor event that was reconciled successfully,
// so redelivered events can be acknowledged without reprocessing.
type WebhookEvent struct {
	ID          string    `gorm:"type:varchar(128);primaryKey"`
	Type        string    `gorm:"type:varchar(64);not null"`
	ProcessedAt time.Time `gorm:"not null;autoCreateTime"`
}

// TableName implements the GORM tabler interface.
func (WebhookEvent) TableName() string { return "webhook_events" }
