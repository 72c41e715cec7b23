package domain

import (
	"strings"
	"time"
)

// Sender roles. Messages written by older clients use the Portuguese tags;
// NormalizeRole folds both spellings onto these values.
const (
	RoleClient   = "cliente"
	RoleProvider = "prestador"
)

// NormalizeRole maps role aliases ("client", "provider", mixed case) to the
// canonical tags. Unknown roles are returned trimmed and lowercased.
func NormalizeRole(role string) string {
	r := strings.ToLower(strings.TrimSpace(role))
	switch r {
	case "client", RoleClient:
		return RoleClient
	case "provider", RoleProvider:
		return RoleProvider
	}
	return r
}

// ChatThread is the denormalized per-order chat summary. There is exactly
// one thread per order, created by the first message through a merge-upsert.
//
// Unread counters only ever grow here; resetting them is a client-side
// "mark read" action.
type ChatThread struct {
	OrderID    string `json:"order_id"    gorm:"type:varchar(64);primaryKey"`
	ClientID   string `json:"client_id"   gorm:"type:varchar(64);index"`
	ProviderID string `json:"provider_id" gorm:"type:varchar(64);index"`

	LastMessage    string    `json:"last_message"     gorm:"type:text"`
	LastSenderRole string    `json:"last_sender_role" gorm:"type:varchar(16)"`
	LastMessageAt  time.Time `json:"last_message_at"`

	MessageCount      int64 `json:"message_count"       gorm:"not null;default:0"`
	UnreadByClient    int64 `json:"unread_by_client"    gorm:"not null;default:0"`
	UnreadByProvider  int64 `json:"unread_by_provider"  gorm:"not null;default:0"`
	HasUnreadClient   bool  `json:"has_unread_client"   gorm:"not null;default:false"`
	HasUnreadProvider bool  `json:"has_unread_provider" gorm:"not null;default:false"`

	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for ChatThread.
func (ChatThread) TableName() string { return "chat_threads" }

// ChatMessage is the body of a newly created chat message as delivered by
// the document store. It is not persisted by this service.
type ChatMessage struct {
	SenderID   string `json:"senderId"`
	SenderRole string `json:"senderRole"`

	// Body aliases written by different client versions.
	Text     string `json:"text,omitempty"`
	Message  string `json:"message,omitempty"`
	Texto    string `json:"texto,omitempty"`
	Conteudo string `json:"conteudo,omitempty"`
}

// Body returns the first non-empty body alias.
func (m ChatMessage) Body() string {
	for _, s := range []string{m.Text, m.Message, m.Texto, m.Conteudo} {
		if s != "" {
			return s
		}
	}
	return ""
}
