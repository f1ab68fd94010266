package controllers

import (
	"strconv"

	"github.com/akhil-ks/shopnest/config"
	"github.com/akhil-ks/shopnest/models"
	"github.com/akhil-ks/shopnest/utils"
	"github.com/gin-gonic/gin"
)

// Fulfilment transitions the admin may apply. Payment outcomes own
// pending -> confirmed; everything after confirmation is manual.
var adminOrderTransitions = map[string][]string{
	models.OrderStatusShipped:   {models.OrderStatusConfirmed},
	models.OrderStatusDelivered: {models.OrderStatusShipped},
	models.OrderStatusCancelled: {models.OrderStatusPending, models.OrderStatusConfirmed},
}

// UpdateOrderStatus applies an admin fulfilment transition to an order
func UpdateOrderStatus(c *gin.Context) {
	utils.LogInfo("UpdateOrderStatus called")

	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid order ID", nil)
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}
	if !models.ValidOrderStatus(req.Status) {
		utils.BadRequest(c, "Unknown order status", gin.H{"status": req.Status})
		return
	}

	allowedFrom, ok := adminOrderTransitions[req.Status]
	if !ok {
		utils.BadRequest(c, "Status cannot be set manually", gin.H{"status": req.Status})
		return
	}

	var order models.Order
	if err := config.DB.First(&order, orderID).Error; err != nil {
		utils.NotFound(c, "Order not found")
		return
	}

	// Conditional update so a concurrent transition cannot be
	// overwritten with a stale one.
	result := config.DB.Model(&models.Order{}).
		Where("id = ? AND status IN ?", orderID, allowedFrom).
		Update("status", req.Status)
	if result.Error != nil {
		utils.LogError("Failed to update order ID: %d: %v", orderID, result.Error)
		utils.InternalServerError(c, "Failed to update order status", result.Error.Error())
		return
	}
	if result.RowsAffected == 0 {
		utils.LogError("Rejected order status transition %s -> %s for order ID: %d",
			order.Status, req.Status, orderID)
		utils.Conflict(c, "Order cannot move to this status from its current state", gin.H{
			"current": order.Status,
			"target":  req.Status,
		})
		return
	}

	utils.LogInfo("Order ID: %d moved to status %s", orderID, req.Status)
	utils.Success(c, "Order status updated", gin.H{"order_id": orderID, "status": req.Status})
}
