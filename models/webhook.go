package models

import (
	"time"
)

// WebhookEvent stores one inbound processor notification. The
// processor-assigned event id is the natural idempotency key; the unique
// index makes the check-then-insert atomic so two concurrent deliveries
// of the same event cannot both apply. Rows are never deleted
// automatically; admin deletion is the only removal path.
type WebhookEvent struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	EventID              string     `json:"event_id" gorm:"uniqueIndex;not null"`
	EventType            string     `json:"event_type" gorm:"index"`
	Payload              string     `json:"payload" gorm:"type:text"`
	Processed            bool       `json:"processed" gorm:"default:false;index"`
	ProcessedAt          *time.Time `json:"processed_at,omitempty"`
	Attempts             int        `json:"attempts" gorm:"default:0"`
	LastError            *string    `json:"last_error,omitempty"`
	PaymentTransactionID *uint      `json:"payment_transaction_id,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}
