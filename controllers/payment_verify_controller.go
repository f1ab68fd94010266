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
	razorpay "github.com/razorpay/razorpay-go"
	"gorm.io/gorm"
)

// mapRazorpayPaymentStatus maps the processor's payment status onto the
// local transaction vocabulary.
func mapRazorpayPaymentStatus(status string) (string, bool) {
	switch status {
	case "created":
		return models.PaymentStatusPending, true
	case "authorized":
		return models.PaymentStatusProcessing, true
	case "captured":
		return models.PaymentStatusSucceeded, true
	case "failed":
		return models.PaymentStatusFailed, true
	case "refunded":
		return models.PaymentStatusRefunded, true
	}
	return "", false
}

// verifiableTransaction locates the transaction to verify and enforces
// that the payment intent, and the payment id when one is supplied,
// both belong to the given order. A mismatch is an integrity violation
// reported as a conflict, never papered over.
func verifiableTransaction(db *gorm.DB, order *models.Order, razorpayOrderID, razorpayPaymentID string) (*models.PaymentTransaction, error) {
	var txn models.PaymentTransaction
	if err := db.Where("order_id = ? AND razorpay_order_id = ?", order.ID, razorpayOrderID).
		First(&txn).Error; err != nil {
		return nil, utils.ConflictError("Payment does not belong to this order", err)
	}
	if razorpayPaymentID != "" && txn.RazorpayPaymentID != "" &&
		txn.RazorpayPaymentID != razorpayPaymentID {
		return nil, utils.ConflictError("Payment does not belong to this order", nil)
	}
	return &txn, nil
}

// VerifyPayment asks Razorpay for the authoritative status of a payment
// and applies it to the transaction with exactly one conditional update.
// The client confirmation callback is never trusted as settlement truth;
// this is where the truth comes from synchronously.
func VerifyPayment(c *gin.Context) {
	utils.LogInfo("VerifyPayment called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.LogError("User not found in context")
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)
	userID := user.ID

	var req struct {
		OrderID           uint   `json:"order_id" binding:"required"`
		RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
		RazorpayPaymentID string `json:"razorpay_payment_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid request for user ID: %d: %v", userID, err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	db := config.DB
	var order models.Order
	if err := db.Where("id = ? AND user_id = ?", req.OrderID, userID).First(&order).Error; err != nil {
		utils.LogError("Order not found for ID: %d, user ID: %d: %v", req.OrderID, userID, err)
		utils.NotFound(c, "Order not found")
		return
	}

	txn, err := verifiableTransaction(db, &order, req.RazorpayOrderID, req.RazorpayPaymentID)
	if err != nil {
		utils.LogError("Integrity violation: razorpay order %s / payment %s rejected for order ID: %d: %v",
			req.RazorpayOrderID, req.RazorpayPaymentID, order.ID, err)
		appErr := utils.GetAppError(err)
		utils.Error(c, appErr.Code, appErr.Message, nil)
		return
	}

	paymentID := req.RazorpayPaymentID
	if paymentID == "" {
		paymentID = txn.RazorpayPaymentID
	}

	client := razorpay.NewClient(os.Getenv("RAZORPAY_KEY"), os.Getenv("RAZORPAY_SECRET"))

	var entity map[string]interface{}
	if paymentID != "" {
		payment, err := client.Payment.Fetch(paymentID, nil, nil)
		if err != nil {
			utils.LogError("Failed to fetch payment %s from processor: %v", paymentID, err)
			utils.ServiceUnavailable(c, "Payment processor unreachable. Please retry.", gin.H{"retry": true})
			return
		}
		entity = payment
	} else {
		// No payment id yet (user may have abandoned the widget); ask
		// the processor what it has for the intent.
		payments, err := client.Order.Payments(req.RazorpayOrderID, nil, nil)
		if err != nil {
			utils.LogError("Failed to fetch payments for razorpay order %s: %v", req.RazorpayOrderID, err)
			utils.ServiceUnavailable(c, "Payment processor unreachable. Please retry.", gin.H{"retry": true})
			return
		}
		items, _ := payments["items"].([]interface{})
		if len(items) == 0 {
			utils.Success(c, "No payment attempt recorded by the processor yet", gin.H{
				"success": false,
				"status":  txn.Status,
			})
			return
		}
		entity, _ = items[len(items)-1].(map[string]interface{})
	}

	processorStatus, _ := entity["status"].(string)
	status, ok := mapRazorpayPaymentStatus(processorStatus)
	if !ok {
		utils.LogError("Processor returned unknown status %q for payment %s", processorStatus, paymentID)
		utils.BadRequest(c, "Processor reported an unrecognized payment status", gin.H{"status": processorStatus})
		return
	}

	extra := map[string]interface{}{}
	if id, _ := entity["id"].(string); id != "" {
		extra["razorpay_payment_id"] = id
	}
	if method, _ := entity["method"].(string); method != "" {
		extra["payment_method"] = method
	}
	if raw, err := json.Marshal(entity); err == nil {
		extra["processor_response"] = string(raw)
	}
	now := time.Now()
	switch status {
	case models.PaymentStatusFailed:
		extra["failed_at"] = &now
		if reason, _ := entity["error_description"].(string); reason != "" {
			extra["failure_reason"] = reason
		}
	case models.PaymentStatusProcessing:
		extra["processing_at"] = &now
	}

	applied, err := utils.AdvancePaymentStatus(db, txn.ID, status, extra)
	if err != nil {
		utils.LogError("Failed to update transaction ID: %d: %v", txn.ID, err)
		utils.InternalServerError(c, "Failed to record payment status", err.Error())
		return
	}
	if !applied {
		utils.LogInfo("Transaction ID: %d kept terminal status over processor report %q", txn.ID, status)
		if err := db.First(txn, txn.ID).Error; err == nil {
			status = txn.Status
		}
	}

	if status == models.PaymentStatusSucceeded {
		confirmed, err := utils.ConfirmOrderIfPending(db, order.ID)
		if err != nil {
			utils.LogError("Failed to confirm order ID: %d: %v", order.ID, err)
			utils.InternalServerError(c, "Failed to update order", err.Error())
			return
		}
		if confirmed {
			utils.LogInfo("Order ID: %d confirmed after verified payment", order.ID)
			if err := utils.SendOrderConfirmation(user.Email, order.ID, order.TotalAmount); err != nil {
				utils.LogError("Failed to send confirmation email for order ID: %d: %v", order.ID, err)
			}
		}
	}

	message := fmt.Sprintf("Payment status: %s", status)
	utils.Success(c, message, gin.H{
		"success": status == models.PaymentStatusSucceeded,
		"status":  status,
	})
}
