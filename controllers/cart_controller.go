package controllers

import (
	"fmt"

	"github.com/akhil-ks/shopnest/config"
	"github.com/akhil-ks/shopnest/models"
	"github.com/akhil-ks/shopnest/utils"
	"github.com/gin-gonic/gin"
)

// AddToCart adds a product line to the user's cart, merging quantities
// for repeated adds
func AddToCart(c *gin.Context) {
	utils.LogInfo("AddToCart called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	var req struct {
		ProductID uint `json:"product_id" binding:"required"`
		Quantity  int  `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}
	if err := utils.ValidateQuantity(req.Quantity); err != nil {
		utils.BadRequest(c, err.Error(), nil)
		return
	}

	var product models.Product
	if err := config.DB.Where("id = ? AND is_active = ?", req.ProductID, true).First(&product).Error; err != nil {
		utils.NotFound(c, "Product not found")
		return
	}
	if product.Stock < req.Quantity {
		utils.BadRequest(c, fmt.Sprintf("Product '%s' does not have enough stock", product.Name), nil)
		return
	}

	var item models.Cart
	if err := config.DB.Where("user_id = ? AND product_id = ?", user.ID, req.ProductID).First(&item).Error; err == nil {
		item.Quantity += req.Quantity
		if err := config.DB.Save(&item).Error; err != nil {
			utils.LogError("Failed to update cart for user ID: %d: %v", user.ID, err)
			utils.InternalServerError(c, "Failed to update cart", err.Error())
			return
		}
	} else {
		item = models.Cart{UserID: user.ID, ProductID: req.ProductID, Quantity: req.Quantity}
		if err := config.DB.Create(&item).Error; err != nil {
			utils.LogError("Failed to add to cart for user ID: %d: %v", user.ID, err)
			utils.InternalServerError(c, "Failed to add to cart", err.Error())
			return
		}
	}

	utils.Success(c, "Product added to cart", gin.H{"product_id": req.ProductID, "quantity": item.Quantity})
}

// GetCart returns the cart lines and recomputed amounts
func GetCart(c *gin.Context) {
	utils.LogInfo("GetCart called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	cartDetails, err := utils.GetCartDetails(user.ID)
	if err != nil {
		utils.LogError("Failed to get cart details for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to get cart details", err.Error())
		return
	}

	utils.Success(c, "Cart retrieved successfully", gin.H{
		"items":           cartDetails.OrderItems,
		"subtotal":        fmt.Sprintf("%.2f", cartDetails.Amounts.Subtotal),
		"tax":             fmt.Sprintf("%.2f", cartDetails.Amounts.Tax),
		"delivery_charge": fmt.Sprintf("%.2f", cartDetails.Amounts.DeliveryCharge),
		"total":           fmt.Sprintf("%.2f", cartDetails.Amounts.Total),
	})
}

// RemoveFromCart removes one product line from the cart
func RemoveFromCart(c *gin.Context) {
	utils.LogInfo("RemoveFromCart called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	var req struct {
		ProductID uint `json:"product_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	if err := config.DB.Where("user_id = ? AND product_id = ?", user.ID, req.ProductID).
		Delete(&models.Cart{}).Error; err != nil {
		utils.LogError("Failed to remove from cart for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to remove from cart", err.Error())
		return
	}

	utils.Success(c, "Product removed from cart", nil)
}
