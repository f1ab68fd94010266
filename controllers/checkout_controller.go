package controllers

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/akhil-ks/shopnest/config"
	"github.com/akhil-ks/shopnest/models"
	"github.com/akhil-ks/shopnest/utils"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const checkoutSessionKey = "checkout"

// loadCheckoutSession reads the checkout state machine from the cookie
// session, starting a fresh session at the shipping step if none exists.
func loadCheckoutSession(c *gin.Context) models.CheckoutSession {
	raw := sessions.Default(c).Get(checkoutSessionKey)
	encoded, ok := raw.(string)
	if !ok {
		return models.NewCheckoutSession()
	}
	var cs models.CheckoutSession
	if err := json.Unmarshal([]byte(encoded), &cs); err != nil {
		utils.LogError("Corrupt checkout session, starting fresh: %v", err)
		return models.NewCheckoutSession()
	}
	return cs
}

func saveCheckoutSession(c *gin.Context, cs models.CheckoutSession) error {
	encoded, err := json.Marshal(cs)
	if err != nil {
		return err
	}
	session := sessions.Default(c)
	session.Set(checkoutSessionKey, string(encoded))
	return session.Save()
}

// GetCheckoutSummary returns the cart lines and the recomputed amount
// breakdown. Amounts are always recomputed from the cart; nothing here
// is read back from persisted intermediates.
func GetCheckoutSummary(c *gin.Context) {
	utils.LogInfo("GetCheckoutSummary called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.LogError("User not found in context")
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	cartDetails, err := utils.GetCartDetails(user.ID)
	if err != nil {
		utils.LogError("Failed to get cart details for user ID: %d: %v", user.ID, err)
		if appErr := utils.GetAppError(err); appErr != nil {
			utils.Error(c, appErr.Code, appErr.Message, nil)
			return
		}
		utils.InternalServerError(c, "Failed to get cart details", err.Error())
		return
	}

	var items []gin.H
	for _, item := range cartDetails.OrderItems {
		items = append(items, gin.H{
			"product_id": item.ProductID,
			"name":       item.Product.Name,
			"image_url":  item.Product.ImageURL,
			"quantity":   item.Quantity,
			"unit_price": fmt.Sprintf("%.2f", item.Price),
			"item_total": fmt.Sprintf("%.2f", item.Total),
		})
	}

	utils.Success(c, "Checkout summary retrieved successfully", gin.H{
		"can_checkout":    len(items) > 0,
		"cart":            items,
		"subtotal":        fmt.Sprintf("%.2f", cartDetails.Amounts.Subtotal),
		"tax":             fmt.Sprintf("%.2f", cartDetails.Amounts.Tax),
		"delivery_charge": fmt.Sprintf("%.2f", cartDetails.Amounts.DeliveryCharge),
		"final_total":     fmt.Sprintf("%.2f", cartDetails.Amounts.Total),
		"checkout_state":  loadCheckoutSession(c).State,
	})
}

// SubmitShipping drives the shipping -> payment transition: it validates
// the shipping address, creates the order with its item snapshots, and
// requests a payment authorization from Razorpay. Re-submitting while an
// order from this session is still pending reuses that order instead of
// creating a second one.
func SubmitShipping(c *gin.Context) {
	utils.LogInfo("SubmitShipping called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.LogError("User not found in context")
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)
	userID := user.ID

	var req struct {
		AddressID uint            `json:"address_id"`
		Address   *models.Address `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid request for user ID: %d: %v", userID, err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	cs := loadCheckoutSession(c)

	// A finished session cannot be resumed; a new submission starts a
	// fresh checkout with a new order.
	if cs.State == models.CheckoutStateSucceeded || cs.State == models.CheckoutStateFailed {
		cs = models.NewCheckoutSession()
	}

	// Already mid-payment with a live order: hand back the same
	// authorization instead of creating a second order.
	if cs.State == models.CheckoutStatePayment && cs.OrderID != 0 {
		var order models.Order
		if err := config.DB.Where("id = ? AND user_id = ? AND status = ?",
			cs.OrderID, userID, models.OrderStatusPending).First(&order).Error; err == nil {
			var txn models.PaymentTransaction
			if err := config.DB.Where("order_id = ? AND razorpay_order_id = ?",
				order.ID, cs.RazorpayOrderID).First(&txn).Error; err == nil {
				utils.LogInfo("Reusing pending order ID: %d for user ID: %d", order.ID, userID)
				respondWithAuthorization(c, order, txn)
				return
			}
		}
		// The order is gone or no longer pending; fall through to a
		// fresh checkout.
		cs = models.NewCheckoutSession()
	}

	db := config.DB
	var address models.Address
	if req.Address != nil {
		newAddr := *req.Address
		newAddr.UserID = userID
		newAddr.IsDefault = false
		if errs := utils.ValidateShippingAddress(newAddr); len(errs) > 0 {
			utils.LogError("Shipping address validation failed for user ID: %d: %v", userID, errs)
			utils.ValidationError(c, "Please fill in all required shipping fields", errs)
			return
		}
		if err := db.Create(&newAddr).Error; err != nil {
			utils.LogError("Failed to create address for user ID: %d: %v", userID, err)
			utils.InternalServerError(c, "Failed to create address", err.Error())
			return
		}
		address = newAddr
	} else if req.AddressID != 0 {
		if err := db.Where("id = ? AND user_id = ?", req.AddressID, userID).First(&address).Error; err != nil {
			utils.LogError("Address not found, ID: %d, user ID: %d", req.AddressID, userID)
			utils.NotFound(c, "Address not found")
			return
		}
		if errs := utils.ValidateShippingAddress(address); len(errs) > 0 {
			utils.LogError("Saved address ID: %d is incomplete for user ID: %d", address.ID, userID)
			utils.ValidationError(c, "The selected address is missing required fields", errs)
			return
		}
	} else {
		utils.BadRequest(c, "Provide either address_id or address object", nil)
		return
	}

	cartDetails, err := utils.GetCartDetails(userID)
	if err != nil {
		utils.LogError("Failed to get cart details for user ID: %d: %v", userID, err)
		utils.InternalServerError(c, "Failed to get cart details", err.Error())
		return
	}
	if len(cartDetails.OrderItems) == 0 {
		utils.BadRequest(c, "Cannot checkout with an empty cart", nil)
		return
	}

	next, _, err := cs.SubmitShipping()
	if err != nil {
		utils.LogError("Checkout transition rejected for user ID: %d: %v", userID, err)
		utils.Conflict(c, "Checkout is not at the shipping step", err.Error())
		return
	}

	// Order creation must complete before the payment step is enabled.
	// Failure aborts the transition and the user stays on shipping.
	order, err := createOrderWithItems(db, userID, address, cartDetails)
	if err != nil {
		utils.LogError("Failed to create order for user ID: %d: %v", userID, err)
		if appErr := utils.GetAppError(err); appErr != nil {
			utils.Error(c, appErr.Code, appErr.Message, nil)
			return
		}
		utils.InternalServerError(c, "Failed to create order", err.Error())
		return
	}
	utils.LogInfo("Created order ID: %d for user ID: %d, total: %.2f", order.ID, userID, order.TotalAmount)
	next.OrderID = order.ID

	txn, err := ensureAuthorization(db, order)
	if err != nil {
		utils.LogError("Failed to create payment authorization for order ID: %d: %v", order.ID, err)
		failed, _, _ := next.Fail("Payment authorization failed")
		if err := saveCheckoutSession(c, failed); err != nil {
			utils.LogError("Failed to save checkout session for user ID: %d: %v", userID, err)
		}
		if utils.IsRetryableError(err) {
			utils.ServiceUnavailable(c, "Could not reach the payment processor. Please retry.", gin.H{
				"retry":    true,
				"order_id": order.ID,
			})
		} else {
			utils.InternalServerError(c, "Failed to set up payment", err.Error())
		}
		return
	}

	next.RazorpayOrderID = txn.RazorpayOrderID
	if err := saveCheckoutSession(c, next); err != nil {
		utils.LogError("Failed to save checkout session for user ID: %d: %v", userID, err)
		utils.InternalServerError(c, "Failed to save checkout session", err.Error())
		return
	}

	utils.LogInfo("Checkout moved to payment for order ID: %d, user ID: %d", order.ID, userID)
	respondWithAuthorization(c, *order, *txn)
}

// RetryPayment re-enters the payment step after a failure, reusing the
// existing order. The active transaction is reused when it is still
// open; a new authorization is requested only when the prior attempt
// reached a terminal status.
func RetryPayment(c *gin.Context) {
	utils.LogInfo("RetryPayment called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.LogError("User not found in context")
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	cs := loadCheckoutSession(c)
	next, _, err := cs.Retry()
	if err != nil {
		utils.LogError("Retry rejected for user ID: %d: %v", user.ID, err)
		utils.Conflict(c, "There is no failed payment to retry", err.Error())
		return
	}

	var order models.Order
	if err := config.DB.Where("id = ? AND user_id = ? AND status = ?",
		next.OrderID, user.ID, models.OrderStatusPending).First(&order).Error; err != nil {
		utils.LogError("Order not found for retry, ID: %d, user ID: %d", next.OrderID, user.ID)
		utils.NotFound(c, "Order not found")
		return
	}

	txn, err := ensureAuthorization(config.DB, &order)
	if err != nil {
		utils.LogError("Retry authorization failed for order ID: %d: %v", order.ID, err)
		failed, _, _ := next.Fail("Payment authorization failed")
		if err := saveCheckoutSession(c, failed); err != nil {
			utils.LogError("Failed to save checkout session for user ID: %d: %v", user.ID, err)
		}
		if utils.IsRetryableError(err) {
			utils.ServiceUnavailable(c, "Could not reach the payment processor. Please retry.", gin.H{"retry": true})
		} else {
			utils.InternalServerError(c, "Failed to set up payment", err.Error())
		}
		return
	}

	next.RazorpayOrderID = txn.RazorpayOrderID
	if err := saveCheckoutSession(c, next); err != nil {
		utils.LogError("Failed to save checkout session for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to save checkout session", err.Error())
		return
	}

	utils.LogInfo("Retry re-entered payment for order ID: %d", order.ID)
	respondWithAuthorization(c, order, *txn)
}

// createOrderWithItems creates the order and its item snapshots in one
// transaction, locking and decrementing stock per line the way the rest
// of the store does.
func createOrderWithItems(db *gorm.DB, userID uint, address models.Address, cartDetails *utils.CartDetails) (*models.Order, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, utils.WrapError(tx.Error, "failed to start transaction")
	}

	for _, item := range cartDetails.OrderItems {
		var product models.Product
		if err := tx.Set("gorm:pessimistic_lock", true).First(&product, item.ProductID).Error; err != nil {
			tx.Rollback()
			return nil, utils.NotFoundError(fmt.Sprintf("Product with ID %d not found", item.ProductID), err)
		}
		if product.Stock < item.Quantity {
			tx.Rollback()
			return nil, utils.BadRequestError(
				fmt.Sprintf("Product '%s' does not have enough stock. Available: %d, Requested: %d",
					product.Name, product.Stock, item.Quantity), nil)
		}
		if err := tx.Model(&models.Product{}).Where("id = ?", item.ProductID).
			UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity)).Error; err != nil {
			tx.Rollback()
			return nil, utils.WrapError(err, "failed to update product stock")
		}
	}

	order := models.Order{
		UserID:      userID,
		AddressID:   address.ID,
		Address:     address,
		TotalAmount: cartDetails.Amounts.Total,
		Status:      models.OrderStatusPending,
		OrderItems:  cartDetails.OrderItems,
	}
	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		return nil, utils.WrapError(err, "failed to create order")
	}

	if err := tx.Commit().Error; err != nil {
		return nil, utils.WrapError(err, "failed to commit transaction")
	}
	return &order, nil
}

func respondWithAuthorization(c *gin.Context, order models.Order, txn models.PaymentTransaction) {
	utils.Success(c, "Please complete the payment", gin.H{
		"order": gin.H{
			"id":                order.ID,
			"razorpay_order_id": txn.RazorpayOrderID,
			"amount":            fmt.Sprintf("%.2f", order.TotalAmount),
			"amount_paise":      utils.AmountToPaise(order.TotalAmount),
			"currency":          txn.Currency,
		},
		"key": os.Getenv("RAZORPAY_KEY"),
	})
}
