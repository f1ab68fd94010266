package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAmountToPaise(t *testing.T) {
	assert.Equal(t, 10000, AmountToPaise(100))
	assert.Equal(t, 59950, AmountToPaise(599.50))
	assert.Equal(t, 29, AmountToPaise(0.29))
	assert.Equal(t, 1, AmountToPaise(0.01))
	assert.Equal(t, 0, AmountToPaise(0))
}

func TestAmountToPaiseExactForTwoDecimalAmounts(t *testing.T) {
	// Every representable two-decimal amount must convert to its exact
	// paise value; the charge sent to the processor and the persisted
	// order total may never differ by a paise.
	for paise := 0; paise <= 100000; paise++ {
		amount := float64(paise) / 100
		if got := AmountToPaise(amount); got != paise {
			t.Fatalf("AmountToPaise(%.2f) = %d, want %d", amount, got, paise)
		}
	}
}

func TestVerifyCheckoutSignature(t *testing.T) {
	secret := "test_secret"
	sig := CheckoutSignature("order_abc", "pay_xyz", secret)

	assert.True(t, VerifyCheckoutSignature("order_abc", "pay_xyz", sig, secret))
	assert.False(t, VerifyCheckoutSignature("order_abc", "pay_other", sig, secret))
	assert.False(t, VerifyCheckoutSignature("order_abc", "pay_xyz", sig, "wrong_secret"))
	assert.False(t, VerifyCheckoutSignature("order_abc", "pay_xyz", "deadbeef", secret))
}

func TestCheckoutSignatureMatchesRazorpayScheme(t *testing.T) {
	// HMAC-SHA256 over "order_id|payment_id", hex encoded.
	secret := "test_secret"
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte("order_abc|pay_xyz"))
	expected := hex.EncodeToString(h.Sum(nil))

	assert.Equal(t, expected, CheckoutSignature("order_abc", "pay_xyz", secret))
}

func TestVerifyWebhookSignature(t *testing.T) {
	secret := "whsec_test"
	body := []byte(`{"event":"payment.captured"}`)

	h := hmac.New(sha256.New, []byte(secret))
	h.Write(body)
	sig := hex.EncodeToString(h.Sum(nil))

	assert.True(t, VerifyWebhookSignature(body, sig, secret))
	assert.False(t, VerifyWebhookSignature([]byte(`{"event":"tampered"}`), sig, secret))
	assert.False(t, VerifyWebhookSignature(body, sig, "other_secret"))
}

func TestVerifyWebhookSignatureRejectsEmptyInputs(t *testing.T) {
	body := []byte(`{}`)
	assert.False(t, VerifyWebhookSignature(body, "", "whsec_test"))
	assert.False(t, VerifyWebhookSignature(body, "abc", ""))
}
