package models

import (
	"time"
)

// Payment transaction status constants. These mirror the processor's
// vocabulary; succeeded, failed, cancelled and refunded are terminal.
const (
	PaymentStatusPending           = "pending"
	PaymentStatusProcessing        = "processing"
	PaymentStatusSucceeded         = "succeeded"
	PaymentStatusFailed            = "failed"
	PaymentStatusCancelled         = "cancelled"
	PaymentStatusRefunded          = "refunded"
	PaymentStatusPartiallyRefunded = "partially_refunded"
)

// PaymentTransaction represents one authorization attempt against the
// processor for one order. An order has at most one non-terminal
// transaction at a time; new attempts are only created once the prior
// attempt reached failed or cancelled.
type PaymentTransaction struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	OrderID           uint       `json:"order_id" gorm:"index"`
	Order             Order      `json:"-" gorm:"foreignKey:OrderID"`
	RazorpayOrderID   string     `json:"razorpay_order_id" gorm:"index"`
	RazorpayPaymentID string     `json:"razorpay_payment_id" gorm:"index"`
	Amount            float64    `json:"amount"`
	Currency          string     `json:"currency" gorm:"default:'INR'"`
	Status            string     `json:"status" gorm:"default:'pending'"`
	PaymentMethod     string     `json:"payment_method"`
	ProcessorResponse string     `json:"processor_response" gorm:"type:text"`
	FailureReason     *string    `json:"failure_reason,omitempty"`
	ProcessingAt      *time.Time `json:"processing_at,omitempty"`
	FailedAt          *time.Time `json:"failed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// IsTerminalPaymentStatus reports whether no further transition is
// permitted out of s, except the refund successions listed in
// AllowedPriorStatuses.
func IsTerminalPaymentStatus(s string) bool {
	switch s {
	case PaymentStatusSucceeded, PaymentStatusFailed, PaymentStatusCancelled,
		PaymentStatusRefunded, PaymentStatusPartiallyRefunded:
		return true
	}
	return false
}

// ValidPaymentStatus reports whether s is part of the transaction status
// vocabulary.
func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentStatusPending, PaymentStatusProcessing, PaymentStatusSucceeded,
		PaymentStatusFailed, PaymentStatusCancelled, PaymentStatusRefunded,
		PaymentStatusPartiallyRefunded:
		return true
	}
	return false
}

// AllowedPriorStatuses returns the set of current statuses from which a
// transaction may move to newStatus. Non-terminal statuses may move
// anywhere; terminal statuses may only be left for their causal refund
// successors. The same status is always allowed so that repeated webhook
// deliveries stay idempotent.
func AllowedPriorStatuses(newStatus string) []string {
	switch newStatus {
	case PaymentStatusPending:
		return []string{PaymentStatusPending}
	case PaymentStatusProcessing:
		return []string{PaymentStatusPending, PaymentStatusProcessing}
	case PaymentStatusSucceeded:
		return []string{PaymentStatusPending, PaymentStatusProcessing, PaymentStatusSucceeded}
	case PaymentStatusFailed:
		return []string{PaymentStatusPending, PaymentStatusProcessing, PaymentStatusFailed}
	case PaymentStatusCancelled:
		return []string{PaymentStatusPending, PaymentStatusProcessing, PaymentStatusCancelled}
	case PaymentStatusPartiallyRefunded:
		return []string{PaymentStatusPending, PaymentStatusProcessing,
			PaymentStatusSucceeded, PaymentStatusPartiallyRefunded}
	case PaymentStatusRefunded:
		return []string{PaymentStatusPending, PaymentStatusProcessing,
			PaymentStatusSucceeded, PaymentStatusPartiallyRefunded, PaymentStatusRefunded}
	}
	return nil
}

// CanTransitionPayment reports whether a transaction currently in current
// may be moved to next without downgrading a terminal status.
func CanTransitionPayment(current, next string) bool {
	for _, s := range AllowedPriorStatuses(next) {
		if s == current {
			return true
		}
	}
	return false
}
