package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"optimarket/models"
)

func TestCanAffordRedemption(t *testing.T) {
	assert.True(t, CanAffordRedemption(500, 250))
	assert.True(t, CanAffordRedemption(250, 250))
	assert.False(t, CanAffordRedemption(100, 250))
	assert.False(t, CanAffordRedemption(0, 1))
}

func TestIsRedeemable(t *testing.T) {
	productID := int64(3)

	t.Run("inactive is never redeemable", func(t *testing.T) {
		lp := &models.LoyaltyProduct{IsActive: false}
		assert.False(t, IsRedeemable(lp, nil))
	})

	t.Run("stock-backed defers to product availability", func(t *testing.T) {
		lp := &models.LoyaltyProduct{IsActive: true, ProductID: &productID}
		assert.True(t, IsRedeemable(lp, &models.Product{ID: productID, InStock: true}))
		assert.False(t, IsRedeemable(lp, &models.Product{ID: productID, InStock: false}))
	})

	t.Run("unbacked reward is unconstrained", func(t *testing.T) {
		lp := &models.LoyaltyProduct{IsActive: true}
		assert.True(t, IsRedeemable(lp, nil))
	})
}

func TestCanFulfillOrderItem(t *testing.T) {
	assert.True(t, CanFulfillOrderItem(5, 5))
	assert.True(t, CanFulfillOrderItem(10, 3))
	assert.False(t, CanFulfillOrderItem(3, 5))
	assert.False(t, CanFulfillOrderItem(0, 1))
}
