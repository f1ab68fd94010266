package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"

	"github.com/akhil-ks/shopnest/models"
	"gorm.io/gorm"
)

// AmountToPaise converts a rupee amount to the integer paise Razorpay
// expects. Rounded, not truncated: many two-decimal amounts (0.29, for
// one) sit just below their float representation and would otherwise
// lose a paise against the persisted order total.
func AmountToPaise(amount float64) int {
	return int(math.Round(amount * 100))
}

// CheckoutSignature computes the HMAC-SHA256 signature Razorpay attaches
// to a successful client-side checkout, over "order_id|payment_id".
func CheckoutSignature(razorpayOrderID, razorpayPaymentID, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(razorpayOrderID + "|" + razorpayPaymentID))
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyCheckoutSignature verifies the client confirmation signature
func VerifyCheckoutSignature(razorpayOrderID, razorpayPaymentID, signature, secret string) bool {
	expected := CheckoutSignature(razorpayOrderID, razorpayPaymentID, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyWebhookSignature verifies the X-Razorpay-Signature header against
// the raw request body. Must pass before anything about the event is
// persisted or parsed.
func VerifyWebhookSignature(body []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(body)
	expected := hex.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// AdvancePaymentStatus moves a payment transaction to newStatus with a
// single conditional update: the row is only written if its current
// status is one a transition to newStatus is allowed from. Both writers
// of payment transactions (the verification service and the webhook
// reconciler) go through here, so a terminal status can never be
// downgraded regardless of event arrival order. Returns whether the row
// was updated.
func AdvancePaymentStatus(db *gorm.DB, transactionID uint, newStatus string, extra map[string]interface{}) (bool, error) {
	allowed := models.AllowedPriorStatuses(newStatus)
	if allowed == nil {
		return false, fmt.Errorf("unknown payment status: %s", newStatus)
	}

	updates := map[string]interface{}{"status": newStatus}
	for k, v := range extra {
		updates[k] = v
	}

	result := db.Model(&models.PaymentTransaction{}).
		Where("id = ? AND status IN ?", transactionID, allowed).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ConfirmOrderIfPending advances an order from pending to confirmed.
// Conditional for the same reason as AdvancePaymentStatus: a cancelled
// or already-advanced order must not be rewritten by a late event.
func ConfirmOrderIfPending(db *gorm.DB, orderID uint) (bool, error) {
	result := db.Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, models.OrderStatusPending).
		Update("status", models.OrderStatusConfirmed)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
