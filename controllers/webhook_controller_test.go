package controllers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/akhil-ks/shopnest/config"
	"github.com/akhil-ks/shopnest/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func webhookRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/webhooks/razorpay", HandleRazorpayWebhook)
	return router
}

func signBody(body []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func setupWebhookTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection so every query sees the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Address{},
		&models.Order{},
		&models.OrderItem{},
		&models.PaymentTransaction{},
		&models.WebhookEvent{},
	))

	config.DB = db
	t.Cleanup(func() { config.DB = nil })
	return db
}

func deliverWebhook(router *gin.Engine, body []byte, eventID, secret string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/razorpay", bytes.NewReader(body))
	req.Header.Set("X-Razorpay-Signature", signBody(body, secret))
	req.Header.Set("X-Razorpay-Event-Id", eventID)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// An unsigned or tampered delivery must be rejected before anything is
// persisted or parsed.
func TestWebhookRejectsMissingSignature(t *testing.T) {
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "whsec_test")
	router := webhookRouter()

	body := []byte(`{"event":"payment.captured"}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/razorpay", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookRejectsInvalidSignature(t *testing.T) {
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "whsec_test")
	router := webhookRouter()

	body := []byte(`{"event":"payment.captured"}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/razorpay", bytes.NewReader(body))
	req.Header.Set("X-Razorpay-Signature", signBody(body, "some_other_secret"))
	req.Header.Set("X-Razorpay-Event-Id", "evt_123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookRejectsMissingEventID(t *testing.T) {
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "whsec_test")
	router := webhookRouter()

	body := []byte(`{"event":"payment.captured"}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/razorpay", bytes.NewReader(body))
	req.Header.Set("X-Razorpay-Signature", signBody(body, "whsec_test"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// Redelivering the same event id must leave exactly one event row and
// apply the business effect at most once.
func TestWebhookSameEventDeliveredTwice(t *testing.T) {
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "whsec_test")
	db := setupWebhookTestDB(t)
	router := webhookRouter()

	order := models.Order{UserID: 1, TotalAmount: 599.50, Status: models.OrderStatusPending}
	require.NoError(t, db.Create(&order).Error)
	txn := models.PaymentTransaction{
		OrderID:         order.ID,
		RazorpayOrderID: "order_test123",
		Amount:          599.50,
		Currency:        "INR",
		Status:          models.PaymentStatusPending,
	}
	require.NoError(t, db.Create(&txn).Error)

	body := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":` +
		`{"id":"pay_abc","order_id":"order_test123","status":"captured","method":"card"}}}}`)

	assert.Equal(t, http.StatusOK, deliverWebhook(router, body, "evt_123", "whsec_test").Code)
	assert.Equal(t, http.StatusOK, deliverWebhook(router, body, "evt_123", "whsec_test").Code)

	var count int64
	require.NoError(t, db.Model(&models.WebhookEvent{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "duplicate delivery must not create a second event row")

	var event models.WebhookEvent
	require.NoError(t, db.Where("event_id = ?", "evt_123").First(&event).Error)
	assert.True(t, event.Processed)
	assert.Equal(t, 1, event.Attempts, "second delivery is a no-op, not a reapply")
	assert.NotNil(t, event.ProcessedAt)

	require.NoError(t, db.First(&txn, txn.ID).Error)
	assert.Equal(t, models.PaymentStatusSucceeded, txn.Status)
	assert.Equal(t, "pay_abc", txn.RazorpayPaymentID)

	require.NoError(t, db.First(&order, order.ID).Error)
	assert.Equal(t, models.OrderStatusConfirmed, order.Status)
}

// A late failure event for an already-settled payment is consumed
// without downgrading the terminal status.
func TestWebhookLateFailureKeepsSettledStatus(t *testing.T) {
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "whsec_test")
	db := setupWebhookTestDB(t)
	router := webhookRouter()

	order := models.Order{UserID: 1, TotalAmount: 250, Status: models.OrderStatusConfirmed}
	require.NoError(t, db.Create(&order).Error)
	txn := models.PaymentTransaction{
		OrderID:           order.ID,
		RazorpayOrderID:   "order_test456",
		RazorpayPaymentID: "pay_def",
		Amount:            250,
		Currency:          "INR",
		Status:            models.PaymentStatusSucceeded,
	}
	require.NoError(t, db.Create(&txn).Error)

	body := []byte(`{"event":"payment.failed","payload":{"payment":{"entity":` +
		`{"id":"pay_def","order_id":"order_test456","status":"failed","error_description":"card declined"}}}}`)

	assert.Equal(t, http.StatusOK, deliverWebhook(router, body, "evt_456", "whsec_test").Code)

	var event models.WebhookEvent
	require.NoError(t, db.Where("event_id = ?", "evt_456").First(&event).Error)
	assert.True(t, event.Processed, "an out-of-order event is consumed, not retried")

	require.NoError(t, db.First(&txn, txn.ID).Error)
	assert.Equal(t, models.PaymentStatusSucceeded, txn.Status)
	assert.Nil(t, txn.FailedAt)
}

func TestMapRazorpayPaymentStatus(t *testing.T) {
	cases := []struct {
		processor string
		local     string
		known     bool
	}{
		{"created", models.PaymentStatusPending, true},
		{"authorized", models.PaymentStatusProcessing, true},
		{"captured", models.PaymentStatusSucceeded, true},
		{"failed", models.PaymentStatusFailed, true},
		{"refunded", models.PaymentStatusRefunded, true},
		{"disputed", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		status, ok := mapRazorpayPaymentStatus(tc.processor)
		assert.Equal(t, tc.known, ok, tc.processor)
		assert.Equal(t, tc.local, status, tc.processor)
	}
}
