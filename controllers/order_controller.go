package controllers

import (
	"fmt"
	"strconv"

	"github.com/akhil-ks/shopnest/config"
	"github.com/akhil-ks/shopnest/models"
	"github.com/akhil-ks/shopnest/utils"
	"github.com/gin-gonic/gin"
)

// ListOrders returns the user's order history, newest first
func ListOrders(c *gin.Context) {
	utils.LogInfo("ListOrders called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	pagination := utils.NewPagination(c)
	var total int64
	if err := config.DB.Model(&models.Order{}).Where("user_id = ?", user.ID).Count(&total).Error; err != nil {
		utils.LogError("Failed to count orders for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to fetch orders", err.Error())
		return
	}
	pagination.SetTotal(total)

	var orders []models.Order
	if err := config.DB.Preload("OrderItems.Product").
		Where("user_id = ?", user.ID).
		Order("created_at desc").
		Limit(pagination.Limit).Offset(pagination.Offset).
		Find(&orders).Error; err != nil {
		utils.LogError("Failed to fetch orders for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to fetch orders", err.Error())
		return
	}

	utils.SendPaginatedResponse(c, orders, pagination)
}

// GetOrderDetails returns one order with items, address and payment attempts
func GetOrderDetails(c *gin.Context) {
	utils.LogInfo("GetOrderDetails called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid order ID", nil)
		return
	}

	var order models.Order
	if err := config.DB.Preload("OrderItems.Product").Preload("Address").
		Where("id = ? AND user_id = ?", orderID, user.ID).First(&order).Error; err != nil {
		utils.LogError("Order not found for ID: %d, user ID: %d", orderID, user.ID)
		utils.NotFound(c, "Order not found")
		return
	}

	var transactions []models.PaymentTransaction
	if err := config.DB.Where("order_id = ?", order.ID).
		Order("created_at asc").Find(&transactions).Error; err != nil {
		utils.LogError("Failed to fetch transactions for order ID: %d: %v", order.ID, err)
		utils.InternalServerError(c, "Failed to fetch payment details", err.Error())
		return
	}

	amounts := utils.ComputeCartAmounts(order.OrderItems)
	utils.Success(c, "Order retrieved successfully", gin.H{
		"order":           order,
		"subtotal":        fmt.Sprintf("%.2f", amounts.Subtotal),
		"tax":             fmt.Sprintf("%.2f", amounts.Tax),
		"delivery_charge": fmt.Sprintf("%.2f", amounts.DeliveryCharge),
		"transactions":    transactions,
	})
}

// GetOrderConfirmation is the view the checkout redirects to after the
// client-side success callback. The payment status shown here comes
// from the transaction record, which the verification service and the
// reconciler keep truthful; the redirect itself proves nothing.
func GetOrderConfirmation(c *gin.Context) {
	utils.LogInfo("GetOrderConfirmation called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid order ID", nil)
		return
	}

	var order models.Order
	if err := config.DB.Preload("OrderItems.Product").Preload("Address").
		Where("id = ? AND user_id = ?", orderID, user.ID).First(&order).Error; err != nil {
		utils.NotFound(c, "Order not found")
		return
	}

	paymentStatus := models.PaymentStatusPending
	var txn models.PaymentTransaction
	if err := config.DB.Where("order_id = ?", order.ID).
		Order("created_at desc").First(&txn).Error; err == nil {
		paymentStatus = txn.Status
	}

	utils.Success(c, "Order confirmation", gin.H{
		"order_id":       order.ID,
		"order_status":   order.Status,
		"payment_status": paymentStatus,
		"total":          fmt.Sprintf("%.2f", order.TotalAmount),
		"shipping_address": gin.H{
			"line1":       order.Address.Line1,
			"line2":       order.Address.Line2,
			"city":        order.Address.City,
			"state":       order.Address.State,
			"country":     order.Address.Country,
			"postal_code": order.Address.PostalCode,
		},
		"invoice_url": fmt.Sprintf("/v1/user/orders/%d/invoice", order.ID),
	})
}
