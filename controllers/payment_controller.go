package controllers

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/akhil-ks/shopnest/config"
	"github.com/akhil-ks/shopnest/models"
	"github.com/akhil-ks/shopnest/utils"
	"github.com/gin-gonic/gin"
	razorpay "github.com/razorpay/razorpay-go"
	"gorm.io/gorm"
)

// ensureAuthorization returns the order's active payment transaction,
// creating a new Razorpay order and transaction row only when no open
// attempt exists. This is what keeps at most one non-terminal
// transaction per order.
func ensureAuthorization(db *gorm.DB, order *models.Order) (*models.PaymentTransaction, error) {
	var existing models.PaymentTransaction
	err := db.Where("order_id = ? AND status IN ?", order.ID,
		[]string{models.PaymentStatusPending, models.PaymentStatusProcessing}).
		Order("created_at desc").First(&existing).Error
	if err == nil {
		utils.LogInfo("Reusing open payment transaction ID: %d for order ID: %d", existing.ID, order.ID)
		return &existing, nil
	}

	client := razorpay.NewClient(os.Getenv("RAZORPAY_KEY"), os.Getenv("RAZORPAY_SECRET"))
	orderData := map[string]interface{}{
		"amount":          utils.AmountToPaise(order.TotalAmount),
		"currency":        "INR",
		"receipt":         "order_rcptid_" + strconv.FormatUint(uint64(order.ID), 10),
		"payment_capture": 1,
	}
	rzOrder, err := client.Order.Create(orderData, nil)
	if err != nil {
		return nil, utils.ServiceUnavailableError("Failed to create payment authorization", err)
	}

	response, _ := json.Marshal(rzOrder)
	txn := models.PaymentTransaction{
		OrderID:           order.ID,
		RazorpayOrderID:   fmt.Sprintf("%v", rzOrder["id"]),
		Amount:            order.TotalAmount,
		Currency:          "INR",
		Status:            models.PaymentStatusPending,
		ProcessorResponse: string(response),
	}
	if err := db.Create(&txn).Error; err != nil {
		return nil, utils.WrapError(err, "failed to create payment transaction")
	}
	utils.LogInfo("Created payment transaction ID: %d (razorpay order %s) for order ID: %d",
		txn.ID, txn.RazorpayOrderID, order.ID)
	return &txn, nil
}

// ConfirmPayment is the client-side confirmation callback from the
// Razorpay checkout widget. It verifies the checkout signature, moves
// the transaction to processing, clears the cart and hands back the
// confirmation redirect. It deliberately never writes a terminal status:
// settlement truth belongs to VerifyPayment and the webhook reconciler.
func ConfirmPayment(c *gin.Context) {
	utils.LogInfo("ConfirmPayment called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.LogError("User not found in context")
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)
	userID := user.ID

	var req struct {
		RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
		RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
		RazorpaySignature string `json:"razorpay_signature" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid request for user ID: %d: %v", userID, err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	cs := loadCheckoutSession(c)
	if cs.State != models.CheckoutStatePayment || cs.OrderID == 0 {
		utils.LogError("Confirmation outside payment step for user ID: %d (state: %s)", userID, cs.State)
		utils.Conflict(c, "No payment is in progress for this session", nil)
		return
	}

	if !utils.VerifyCheckoutSignature(req.RazorpayOrderID, req.RazorpayPaymentID,
		req.RazorpaySignature, os.Getenv("RAZORPAY_SECRET")) {
		utils.LogError("Payment signature verification failed for order ID: %d, user ID: %d", cs.OrderID, userID)
		failed, _, _ := cs.Fail("Payment confirmation failed")
		if err := saveCheckoutSession(c, failed); err != nil {
			utils.LogError("Failed to save checkout session for user ID: %d: %v", userID, err)
		}
		utils.BadRequest(c, "Payment verification failed", gin.H{"retry": true})
		return
	}

	db := config.DB
	var order models.Order
	if err := db.Where("id = ? AND user_id = ?", cs.OrderID, userID).First(&order).Error; err != nil {
		utils.LogError("Order not found for ID: %d, user ID: %d: %v", cs.OrderID, userID, err)
		utils.NotFound(c, "Order not found")
		return
	}

	// The confirmed intent must be the one this session authorized.
	if cs.RazorpayOrderID != req.RazorpayOrderID {
		utils.LogError("Razorpay order ID mismatch for order ID: %d. Expected: %s, Received: %s",
			order.ID, cs.RazorpayOrderID, req.RazorpayOrderID)
		utils.Conflict(c, "Payment does not belong to this checkout", nil)
		return
	}

	var txn models.PaymentTransaction
	if err := db.Where("order_id = ? AND razorpay_order_id = ?", order.ID, req.RazorpayOrderID).
		First(&txn).Error; err != nil {
		utils.LogError("Payment transaction not found for order ID: %d, razorpay order %s", order.ID, req.RazorpayOrderID)
		utils.Conflict(c, "Payment does not belong to this checkout", nil)
		return
	}

	now := time.Now()
	applied, err := utils.AdvancePaymentStatus(db, txn.ID, models.PaymentStatusProcessing, map[string]interface{}{
		"razorpay_payment_id": req.RazorpayPaymentID,
		"processing_at":       &now,
	})
	if err != nil {
		utils.LogError("Failed to update payment transaction ID: %d: %v", txn.ID, err)
		utils.InternalServerError(c, "Failed to update payment", err.Error())
		return
	}
	if !applied {
		utils.LogInfo("Transaction ID: %d already past processing (status preserved)", txn.ID)
	}

	next, _, err := cs.ConfirmSucceeded()
	if err != nil {
		utils.LogError("Checkout transition rejected for user ID: %d: %v", userID, err)
		utils.Conflict(c, "Checkout is not at the payment step", err.Error())
		return
	}

	if err := db.Where("user_id = ?", userID).Delete(&models.Cart{}).Error; err != nil {
		utils.LogError("Failed to clear cart for user ID: %d: %v", userID, err)
		utils.InternalServerError(c, "Failed to clear cart", err.Error())
		return
	}
	utils.LogInfo("Cleared cart for user ID: %d", userID)

	if err := saveCheckoutSession(c, next); err != nil {
		utils.LogError("Failed to save checkout session for user ID: %d: %v", userID, err)
		utils.InternalServerError(c, "Failed to save checkout session", err.Error())
		return
	}

	utils.LogInfo("Client confirmed payment for order ID: %d (pending server verification)", order.ID)
	utils.Success(c, "Thank you for your payment! Your order has been placed.", gin.H{
		"order_id":         order.ID,
		"total":            fmt.Sprintf("%.2f", order.TotalAmount),
		"confirmation_url": "/v1/user/orders/" + strconv.FormatUint(uint64(order.ID), 10) + "/confirmation",
	})
}
