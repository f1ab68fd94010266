package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTerminalPaymentStatus(t *testing.T) {
	terminal := []string{PaymentStatusSucceeded, PaymentStatusFailed, PaymentStatusCancelled,
		PaymentStatusRefunded, PaymentStatusPartiallyRefunded}
	for _, s := range terminal {
		assert.True(t, IsTerminalPaymentStatus(s), s)
	}
	assert.False(t, IsTerminalPaymentStatus(PaymentStatusPending))
	assert.False(t, IsTerminalPaymentStatus(PaymentStatusProcessing))
	assert.False(t, IsTerminalPaymentStatus("bogus"))
}

func TestNonTerminalStatusesMoveAnywhere(t *testing.T) {
	targets := []string{PaymentStatusPending, PaymentStatusProcessing, PaymentStatusSucceeded,
		PaymentStatusFailed, PaymentStatusCancelled, PaymentStatusRefunded, PaymentStatusPartiallyRefunded}
	for _, target := range targets {
		assert.True(t, CanTransitionPayment(PaymentStatusPending, target),
			"pending -> %s", target)
	}
	for _, target := range targets {
		if target == PaymentStatusPending {
			continue
		}
		assert.True(t, CanTransitionPayment(PaymentStatusProcessing, target),
			"processing -> %s", target)
	}
}

func TestTerminalStatusesAreProtected(t *testing.T) {
	cases := []struct {
		current string
		next    string
		allowed bool
	}{
		// A late-arriving event reporting an earlier state must not win.
		{PaymentStatusSucceeded, PaymentStatusProcessing, false},
		{PaymentStatusSucceeded, PaymentStatusPending, false},
		{PaymentStatusSucceeded, PaymentStatusFailed, false},
		{PaymentStatusSucceeded, PaymentStatusCancelled, false},
		{PaymentStatusFailed, PaymentStatusSucceeded, false},
		{PaymentStatusFailed, PaymentStatusProcessing, false},
		{PaymentStatusCancelled, PaymentStatusSucceeded, false},
		{PaymentStatusRefunded, PaymentStatusSucceeded, false},
		{PaymentStatusRefunded, PaymentStatusPartiallyRefunded, false},

		// Refunds are the causal successors of a successful capture.
		{PaymentStatusSucceeded, PaymentStatusRefunded, true},
		{PaymentStatusSucceeded, PaymentStatusPartiallyRefunded, true},
		{PaymentStatusPartiallyRefunded, PaymentStatusRefunded, true},

		// Re-delivering the same status is an idempotent no-op.
		{PaymentStatusSucceeded, PaymentStatusSucceeded, true},
		{PaymentStatusFailed, PaymentStatusFailed, true},
		{PaymentStatusRefunded, PaymentStatusRefunded, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, CanTransitionPayment(tc.current, tc.next),
			"%s -> %s", tc.current, tc.next)
	}
}

func TestAllowedPriorStatusesUnknownStatus(t *testing.T) {
	assert.Nil(t, AllowedPriorStatuses("bogus"))
	assert.False(t, CanTransitionPayment(PaymentStatusPending, "bogus"))
}

func TestValidPaymentStatus(t *testing.T) {
	assert.True(t, ValidPaymentStatus(PaymentStatusPartiallyRefunded))
	assert.False(t, ValidPaymentStatus("Paid"))
}

func TestValidOrderStatus(t *testing.T) {
	assert.True(t, ValidOrderStatus(OrderStatusConfirmed))
	assert.False(t, ValidOrderStatus("placed"))
}
