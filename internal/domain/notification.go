package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Notification type tags.
const (
	NotificationChatMessage = "chat_message"
	NotificationOrderStatus = "pedido_status"
	NotificationNewOrder    = "novo_pedido"
)

// PushEndpoint is one push-delivery address (device token) of a user. The
// token is unique within the user's set. Liveness is discovered lazily: the
// fan-out retires endpoints the gateway reports as unregistered.
type PushEndpoint struct {
	UserID     string    `json:"user_id"      gorm:"type:varchar(64);primaryKey"`
	Token      string    `json:"token"        gorm:"type:varchar(512);primaryKey"`
	Platform   string    `json:"platform"     gorm:"type:varchar(16)"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at" gorm:"index"`
}

// TableName returns the database table name for PushEndpoint.
func (PushEndpoint) TableName() string { return "push_endpoints" }

// Notification is an in-app notification record. Append-only from the
// engine's point of view; ReadAt is set by the client.
type Notification struct {
	ID         string            `json:"id"           gorm:"type:char(36);primaryKey"`
	UserID     string            `json:"user_id"      gorm:"type:varchar(64);not null;index:idx_user_notifications,priority:1"`
	Type       string            `json:"type"         gorm:"type:varchar(32);not null"`
	Title      string            `json:"title"        gorm:"type:varchar(255)"`
	Body       string            `json:"body"         gorm:"type:text"`
	OrderID    string            `json:"order_id,omitempty"     gorm:"type:varchar(64);index"`
	MessageID  string            `json:"message_id,omitempty"   gorm:"type:varchar(64)"`
	FromUserID string            `json:"from_user_id,omitempty" gorm:"type:varchar(64)"`
	Status     string            `json:"status,omitempty"       gorm:"type:varchar(64)"`
	Data       datatypes.JSONMap `json:"data,omitempty"`
	CreatedAt  time.Time         `json:"created_at"   gorm:"index:idx_user_notifications,priority:2"`
	ReadAt     *time.Time        `json:"read_at"`
}

// TableName returns the database table name for Notification.
func (Notification) TableName() string { return "notifications" }
