// Package domain defines the persistence models for orders, providers, chat
// threads, push endpoints, in-app notifications and the payment ledger.
// These types are mapped with GORM and form the core data layer of the
// marketplace engine.
package domain

import (
	"strings"
	"time"
)

// Order statuses with a dedicated notification body. Any other string is a
// valid status too; the set is a flat tag, not a state machine.
const (
	StatusAwaitingClient       = "aguarda_resposta_cliente"
	StatusAccepted             = "aceito"
	StatusInProgress           = "em_andamento"
	StatusAwaitingPriceConfirm = "aguarda_confirmacao_valor"
	StatusCompleted            = "concluido"
	StatusCanceled             = "cancelado"
)

// Order is a marketplace job ("pedido") linking a client and, once matched,
// a provider.
//
// Fields:
//   - ProviderID: empty until a provider is assigned.
//   - Latitude/Longitude: optional; Geohash is precomputed from them.
//   - Price/ProposedPrice/FinalPrice: listed, provider-proposed and agreed
//     final prices in major currency units (nil when absent).
//   - Payment*: mirror of the processor's payment intent.
type Order struct {
	ID         string   `json:"id"          gorm:"type:varchar(64);primaryKey"`
	ClientID   string   `json:"client_id"   gorm:"type:varchar(64);not null;index"`
	ProviderID string   `json:"provider_id" gorm:"type:varchar(64);index"`
	Status     string   `json:"status"      gorm:"type:varchar(64);not null;default:''"`
	Title      string   `json:"title"       gorm:"type:varchar(255)"`
	ServiceID  string   `json:"service_id"  gorm:"type:varchar(64);index"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	Geohash    string   `json:"geohash,omitempty" gorm:"type:varchar(12);index"`

	Price         *float64 `json:"price,omitempty"`
	ProposedPrice *float64 `json:"proposed_price,omitempty"`
	FinalPrice    *float64 `json:"final_price,omitempty"`
	Currency      string   `json:"currency"    gorm:"type:varchar(8)"`

	PaymentIntentID  string `json:"payment_intent_id,omitempty"  gorm:"type:varchar(128);index"`
	PaymentAmount    int64  `json:"payment_amount,omitempty"`
	PaymentCurrency  string `json:"payment_currency,omitempty"   gorm:"type:varchar(8)"`
	PaymentFeeAmount int64  `json:"payment_fee_amount,omitempty"`
	PaymentStatus    string `json:"payment_status,omitempty"     gorm:"type:varchar(64)"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Order.
func (Order) TableName() string { return "orders" }

// HasProvider reports whether a provider is assigned.
func (o Order) HasProvider() bool { return strings.TrimSpace(o.ProviderID) != "" }

// Provider is a service-fulfilling actor with a location, an online flag and
// a service radius.
type Provider struct {
	ID        string   `json:"id"        gorm:"type:varchar(64);primaryKey"`
	Online    bool     `json:"online"    gorm:"not null;default:false;index:idx_provider_online_geohash,priority:1"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Geohash   string   `json:"geohash,omitempty" gorm:"type:varchar(12);index:idx_provider_online_geohash,priority:2"`
	// RadiusKm is the provider's own service radius; <= 0 means "use default".
	RadiusKm float64 `json:"radius_km"`

	StripeAccountID          string `json:"stripe_account_id,omitempty" gorm:"type:varchar(128);index"`
	StripeOnboardingComplete bool   `json:"stripe_onboarding_complete"  gorm:"not null;default:false"`

	Services []ProviderService `json:"services,omitempty" gorm:"foreignKey:ProviderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Provider.
func (Provider) TableName() string { return "providers" }

// ProviderService records that a provider offers a service category. It is
// the relational form of the provider's service set and backs the
// membership filter used by the geo matcher.
type ProviderService struct {
	ProviderID string `json:"provider_id" gorm:"type:varchar(64);primaryKey"`
	ServiceID  string `json:"service_id"  gorm:"type:varchar(64);primaryKey;index"`
}

// TableName returns the database table name for ProviderService.
func (ProviderService) TableName() string { return "provider_services" }
