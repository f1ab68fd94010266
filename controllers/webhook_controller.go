package controllers

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/akhil-ks/shopnest/config"
	"github.com/akhil-ks/shopnest/models"
	"github.com/akhil-ks/shopnest/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"
)

// razorpayEventPayload is the subset of the webhook body the reconciler
// reads. The full raw body is stored on the event row.
type razorpayEventPayload struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID               string `json:"id"`
				OrderID          string `json:"order_id"`
				Status           string `json:"status"`
				Method           string `json:"method"`
				Amount           int64  `json:"amount"`
				AmountRefunded   int64  `json:"amount_refunded"`
				ErrorDescription string `json:"error_description"`
			} `json:"entity"`
		} `json:"payment"`
		Refund struct {
			Entity struct {
				ID        string `json:"id"`
				PaymentID string `json:"payment_id"`
				Amount    int64  `json:"amount"`
			} `json:"entity"`
		} `json:"refund"`
	} `json:"payload"`
}

// HandleRazorpayWebhook receives asynchronous processor notifications.
// Order of obligations: authenticate the delivery, durably persist the
// event row (the row itself is the dedup table), then apply the status
// transition. The response is 2xx once the row is durable, regardless
// of whether the business apply succeeded, so the processor does not
// redeliver just because our apply was slow or failed transiently.
func HandleRazorpayWebhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		utils.LogError("Failed to read webhook body: %v", err)
		utils.BadRequest(c, "Unable to read request body", nil)
		return
	}

	signature := c.GetHeader("X-Razorpay-Signature")
	if !utils.VerifyWebhookSignature(body, signature, os.Getenv("RAZORPAY_WEBHOOK_SECRET")) {
		utils.LogError("Webhook signature verification failed")
		utils.BadRequest(c, "Invalid webhook signature", nil)
		return
	}

	eventID := c.GetHeader("X-Razorpay-Event-Id")
	if eventID == "" {
		utils.LogError("Webhook delivery missing event id header")
		utils.BadRequest(c, "Missing event id", nil)
		return
	}

	eventType := "unknown"
	var payload razorpayEventPayload
	if err := json.Unmarshal(body, &payload); err == nil && payload.Event != "" {
		eventType = payload.Event
	}

	db := config.DB
	event := models.WebhookEvent{
		EventID:   eventID,
		EventType: eventType,
		Payload:   string(body),
	}

	// Atomic check-then-insert on the unique event id. Two concurrent
	// deliveries of the same event cannot both win this insert.
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}},
		DoNothing: true,
	}).Create(&event)
	if result.Error != nil {
		utils.LogError("Failed to persist webhook event %s: %v", eventID, result.Error)
		utils.InternalServerError(c, "Failed to persist event", nil)
		return
	}
	if result.RowsAffected == 0 {
		if err := db.Where("event_id = ?", eventID).First(&event).Error; err != nil {
			utils.LogError("Failed to load existing webhook event %s: %v", eventID, err)
			utils.InternalServerError(c, "Failed to load event", nil)
			return
		}
		if event.Processed {
			utils.LogInfo("Webhook event %s already processed, skipping", eventID)
			utils.Success(c, "Event already processed", gin.H{"event_id": eventID})
			return
		}
		// Redelivery of an event we stored but failed to apply; try again.
		utils.LogInfo("Reprocessing stored webhook event %s (attempt %d)", eventID, event.Attempts+1)
	}

	transactionID, applyErr := applyWebhookEvent(&payload, body)

	updates := map[string]interface{}{
		"attempts": event.Attempts + 1,
	}
	if applyErr != nil {
		utils.LogError("Failed to apply webhook event %s: %v", eventID, applyErr)
		msg := applyErr.Error()
		updates["last_error"] = &msg
		updates["processed"] = false
	} else {
		now := time.Now()
		updates["processed"] = true
		updates["processed_at"] = &now
		updates["last_error"] = nil
		if transactionID != nil {
			updates["payment_transaction_id"] = transactionID
		}
	}
	if err := db.Model(&models.WebhookEvent{}).Where("id = ?", event.ID).Updates(updates).Error; err != nil {
		utils.LogError("Failed to update webhook event %s: %v", eventID, err)
	}

	// The event row is durable; redelivery is the processor's concern,
	// so reply 200 even when the apply failed.
	utils.Success(c, "Webhook received", gin.H{
		"event_id":  eventID,
		"processed": applyErr == nil,
	})
}

// applyWebhookEvent applies one event's status transition to the related
// payment transaction and order. It returns the transaction the event
// resolved to; an error means the event stays unprocessed for the
// processor's redelivery or manual inspection.
func applyWebhookEvent(payload *razorpayEventPayload, body []byte) (*uint, error) {
	if payload.Event == "" {
		return nil, fmt.Errorf("unparseable webhook payload")
	}

	db := config.DB
	now := time.Now()
	payment := payload.Payload.Payment.Entity
	refund := payload.Payload.Refund.Entity

	var status string
	extra := map[string]interface{}{
		"processor_response": string(body),
	}

	switch payload.Event {
	case "payment.authorized":
		status = models.PaymentStatusProcessing
		extra["processing_at"] = &now
	case "payment.captured", "order.paid":
		status = models.PaymentStatusSucceeded
	case "payment.failed":
		status = models.PaymentStatusFailed
		extra["failed_at"] = &now
		if payment.ErrorDescription != "" {
			extra["failure_reason"] = payment.ErrorDescription
		}
	case "refund.processed":
		status = models.PaymentStatusRefunded
		if payment.Amount > 0 && payment.AmountRefunded < payment.Amount {
			status = models.PaymentStatusPartiallyRefunded
		}
	default:
		// Event types the store does not track are acknowledged
		// without effect.
		utils.LogInfo("Ignoring webhook event type %s", payload.Event)
		return nil, nil
	}

	if payment.ID != "" {
		extra["razorpay_payment_id"] = payment.ID
	}
	if payment.Method != "" {
		extra["payment_method"] = payment.Method
	}

	var txn models.PaymentTransaction
	var err error
	switch {
	case payment.OrderID != "":
		err = db.Where("razorpay_order_id = ?", payment.OrderID).First(&txn).Error
	case refund.PaymentID != "":
		err = db.Where("razorpay_payment_id = ?", refund.PaymentID).First(&txn).Error
	case payment.ID != "":
		err = db.Where("razorpay_payment_id = ?", payment.ID).First(&txn).Error
	default:
		return nil, fmt.Errorf("event %s carries no payment or refund reference", payload.Event)
	}
	if err != nil {
		return nil, fmt.Errorf("no payment transaction found for event %s (order %q, payment %q)",
			payload.Event, payment.OrderID, payment.ID)
	}

	applied, err := utils.AdvancePaymentStatus(db, txn.ID, status, extra)
	if err != nil {
		return &txn.ID, fmt.Errorf("failed to apply status %s to transaction %d: %w", status, txn.ID, err)
	}
	if !applied {
		// A terminal status already on the row wins over this event;
		// the event is consumed as a no-op.
		utils.LogInfo("Webhook event %s did not advance transaction ID: %d (terminal status kept)",
			payload.Event, txn.ID)
		return &txn.ID, nil
	}

	if status == models.PaymentStatusSucceeded {
		confirmed, err := utils.ConfirmOrderIfPending(db, txn.OrderID)
		if err != nil {
			return &txn.ID, fmt.Errorf("failed to confirm order %d: %w", txn.OrderID, err)
		}
		if confirmed {
			utils.LogInfo("Order ID: %d confirmed via webhook reconciliation", txn.OrderID)
		}
	}

	return &txn.ID, nil
}
