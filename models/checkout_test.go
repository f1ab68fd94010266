package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCheckoutSessionStartsAtShipping(t *testing.T) {
	cs := NewCheckoutSession()
	assert.Equal(t, CheckoutStateShipping, cs.State)
	assert.Zero(t, cs.OrderID)
}

func TestSubmitShippingMovesToPayment(t *testing.T) {
	cs := NewCheckoutSession()

	next, effects, err := cs.SubmitShipping()
	require.NoError(t, err)
	assert.Equal(t, CheckoutStatePayment, next.State)
	assert.Equal(t, []string{CheckoutEffectCreateOrder, CheckoutEffectCreateAuthorization}, effects)

	// The original session value is untouched
	assert.Equal(t, CheckoutStateShipping, cs.State)
}

func TestSubmitShippingRejectedOutsideShipping(t *testing.T) {
	for _, state := range []string{CheckoutStatePayment, CheckoutStateSucceeded, CheckoutStateFailed} {
		cs := CheckoutSession{State: state, OrderID: 7}
		_, _, err := cs.SubmitShipping()
		assert.Error(t, err, "state %s", state)
	}
}

func TestConfirmSucceededClearsCartAndRedirects(t *testing.T) {
	cs := CheckoutSession{State: CheckoutStatePayment, OrderID: 42}

	next, effects, err := cs.ConfirmSucceeded()
	require.NoError(t, err)
	assert.Equal(t, CheckoutStateSucceeded, next.State)
	assert.Equal(t, uint(42), next.OrderID)
	assert.Equal(t, []string{CheckoutEffectClearCart, CheckoutEffectRedirectToOrder}, effects)
}

func TestConfirmSucceededOnlyFromPayment(t *testing.T) {
	for _, state := range []string{CheckoutStateShipping, CheckoutStateSucceeded, CheckoutStateFailed} {
		cs := CheckoutSession{State: state}
		_, _, err := cs.ConfirmSucceeded()
		assert.Error(t, err, "state %s", state)
	}
}

func TestFailRecordsReason(t *testing.T) {
	cs := CheckoutSession{State: CheckoutStatePayment, OrderID: 42}

	next, effects, err := cs.Fail("card declined")
	require.NoError(t, err)
	assert.Equal(t, CheckoutStateFailed, next.State)
	assert.Equal(t, "card declined", next.LastError)
	assert.Empty(t, effects)
}

func TestRetryReusesOrder(t *testing.T) {
	cs := CheckoutSession{State: CheckoutStateFailed, OrderID: 42, LastError: "card declined"}

	next, effects, err := cs.Retry()
	require.NoError(t, err)
	assert.Equal(t, CheckoutStatePayment, next.State)
	assert.Equal(t, uint(42), next.OrderID, "retry must not create a second order")
	assert.Equal(t, []string{CheckoutEffectCreateAuthorization}, effects)
	assert.Empty(t, next.LastError)
}

func TestRetryRequiresFailedStateWithOrder(t *testing.T) {
	_, _, err := CheckoutSession{State: CheckoutStateFailed}.Retry()
	assert.Error(t, err, "retry without an order has nothing to reuse")

	for _, state := range []string{CheckoutStateShipping, CheckoutStatePayment, CheckoutStateSucceeded} {
		_, _, err := CheckoutSession{State: state, OrderID: 42}.Retry()
		assert.Error(t, err, "state %s", state)
	}
}

func TestSucceededIsTerminalForTheSession(t *testing.T) {
	cs := CheckoutSession{State: CheckoutStateSucceeded, OrderID: 42}

	_, _, err := cs.SubmitShipping()
	assert.Error(t, err)
	_, _, err = cs.ConfirmSucceeded()
	assert.Error(t, err)
	_, _, err = cs.Fail("late failure")
	assert.Error(t, err)
	_, _, err = cs.Retry()
	assert.Error(t, err)
}
