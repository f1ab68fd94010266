package utils

import (
	"fmt"
	"math"

	"github.com/akhil-ks/shopnest/config"
	"github.com/akhil-ks/shopnest/models"
)

// Amount computation constants. Amounts are recomputed from these on
// every display; only the final total is persisted on the order.
const (
	TaxRate               = 0.18
	FlatDeliveryCharge    = 50.0
	FreeDeliveryThreshold = 1000.0
)

// CartAmounts holds the computed money breakdown for a cart
type CartAmounts struct {
	Subtotal       float64 `json:"subtotal"`
	Tax            float64 `json:"tax"`
	DeliveryCharge float64 `json:"delivery_charge"`
	Total          float64 `json:"total"`
}

// CartDetails holds order item snapshots and amounts for a user's cart
type CartDetails struct {
	OrderItems []models.OrderItem
	Amounts    CartAmounts
}

// Round2 rounds a monetary amount to two decimals
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// ComputeCartAmounts computes subtotal, tax, delivery charge and total
// for a set of order items. Pure; callers must get identical results for
// identical items no matter when they recompute.
func ComputeCartAmounts(items []models.OrderItem) CartAmounts {
	var subtotal float64
	for _, item := range items {
		subtotal += item.Price * float64(item.Quantity)
	}
	subtotal = Round2(subtotal)

	tax := Round2(subtotal * TaxRate)

	delivery := FlatDeliveryCharge
	if subtotal >= FreeDeliveryThreshold || subtotal == 0 {
		delivery = 0
	}

	return CartAmounts{
		Subtotal:       subtotal,
		Tax:            tax,
		DeliveryCharge: delivery,
		Total:          Round2(subtotal + tax + delivery),
	}
}

// GetCartDetails loads the user's cart and builds order item snapshots
// with unit prices frozen at the current catalog price. The snapshots
// are what gets persisted; later catalog changes must not affect them.
func GetCartDetails(userID uint) (*CartDetails, error) {
	var cartItems []models.Cart
	if err := config.DB.Preload("Product").Where("user_id = ?", userID).Find(&cartItems).Error; err != nil {
		return nil, WrapError(err, "failed to load cart")
	}

	var orderItems []models.OrderItem
	for _, item := range cartItems {
		if !item.Product.IsActive {
			return nil, BadRequestError(fmt.Sprintf("Product '%s' is no longer available", item.Product.Name), nil)
		}
		if err := ValidateQuantity(item.Quantity); err != nil {
			return nil, BadRequestError(fmt.Sprintf("Invalid quantity for product '%s'", item.Product.Name), err)
		}
		if err := ValidatePrice(item.Product.Price); err != nil {
			return nil, BadRequestError(fmt.Sprintf("Product '%s' has an invalid price", item.Product.Name), err)
		}
		orderItems = append(orderItems, models.OrderItem{
			ProductID: item.ProductID,
			Product:   item.Product,
			Quantity:  item.Quantity,
			Price:     item.Product.Price,
			Total:     Round2(item.Product.Price * float64(item.Quantity)),
		})
	}

	return &CartDetails{
		OrderItems: orderItems,
		Amounts:    ComputeCartAmounts(orderItems),
	}, nil
}
