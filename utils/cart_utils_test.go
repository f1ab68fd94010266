package utils

import (
	"testing"

	"github.com/akhil-ks/shopnest/models"
	"github.com/stretchr/testify/assert"
)

func TestComputeCartAmountsEmptyCart(t *testing.T) {
	amounts := ComputeCartAmounts(nil)
	assert.Zero(t, amounts.Subtotal)
	assert.Zero(t, amounts.Tax)
	assert.Zero(t, amounts.DeliveryCharge)
	assert.Zero(t, amounts.Total)
}

func TestComputeCartAmountsBreakdown(t *testing.T) {
	items := []models.OrderItem{
		{Price: 250, Quantity: 2},
		{Price: 99.50, Quantity: 1},
	}
	amounts := ComputeCartAmounts(items)

	assert.Equal(t, 599.50, amounts.Subtotal)
	assert.Equal(t, Round2(599.50*TaxRate), amounts.Tax)
	assert.Equal(t, FlatDeliveryCharge, amounts.DeliveryCharge)
	assert.Equal(t, Round2(amounts.Subtotal+amounts.Tax+amounts.DeliveryCharge), amounts.Total)
}

func TestComputeCartAmountsFreeDeliveryThreshold(t *testing.T) {
	items := []models.OrderItem{{Price: 500, Quantity: 2}}
	amounts := ComputeCartAmounts(items)
	assert.Zero(t, amounts.DeliveryCharge)

	items = []models.OrderItem{{Price: 499.99, Quantity: 2}}
	amounts = ComputeCartAmounts(items)
	assert.Equal(t, FlatDeliveryCharge, amounts.DeliveryCharge)
}

func TestComputeCartAmountsDeterministic(t *testing.T) {
	// The same items must always produce the same amounts, no matter
	// how often they are recomputed for display.
	items := []models.OrderItem{
		{Price: 123.45, Quantity: 3},
		{Price: 9.99, Quantity: 7},
	}
	first := ComputeCartAmounts(items)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ComputeCartAmounts(items))
	}
}

func TestComputeCartAmountsUsesSnapshotPrices(t *testing.T) {
	// Amounts follow the snapshot price on the item, not the live
	// product price.
	items := []models.OrderItem{{
		Price:    100,
		Quantity: 1,
		Product:  models.Product{Price: 175},
	}}
	amounts := ComputeCartAmounts(items)
	assert.Equal(t, 100.0, amounts.Subtotal)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 10.56, Round2(10.564))
	assert.Equal(t, 10.57, Round2(10.566))
	assert.Equal(t, 0.1, Round2(0.1))
	assert.Equal(t, 100.0, Round2(99.999))
}
