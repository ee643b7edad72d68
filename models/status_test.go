package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedemptionStatusTransitions(t *testing.T) {
	assert.True(t, RedemptionPending.CanTransition(RedemptionApproved))
	assert.True(t, RedemptionPending.CanTransition(RedemptionRejected))

	// Terminal states never transition again, in any direction.
	assert.False(t, RedemptionApproved.CanTransition(RedemptionRejected))
	assert.False(t, RedemptionApproved.CanTransition(RedemptionPending))
	assert.False(t, RedemptionRejected.CanTransition(RedemptionApproved))
	assert.False(t, RedemptionPending.CanTransition(RedemptionPending))

	assert.True(t, RedemptionApproved.Terminal())
	assert.True(t, RedemptionRejected.Terminal())
	assert.False(t, RedemptionPending.Terminal())
}

func TestOrderItemStatusTransitions(t *testing.T) {
	assert.True(t, OrderItemPending.CanTransition(OrderItemConfirmed))
	assert.True(t, OrderItemPending.CanTransition(OrderItemCancelled))

	assert.False(t, OrderItemConfirmed.CanTransition(OrderItemCancelled))
	assert.False(t, OrderItemCancelled.CanTransition(OrderItemConfirmed))
	assert.False(t, OrderItemConfirmed.CanTransition(OrderItemPending))
}

func TestAccountStatusTransitions(t *testing.T) {
	assert.True(t, AccountPending.CanTransition(AccountApproved))
	assert.True(t, AccountPending.CanTransition(AccountRejected))
	assert.False(t, AccountApproved.CanTransition(AccountRejected))
	assert.False(t, AccountRejected.CanTransition(AccountApproved))
}

func TestProductUnitPrice(t *testing.T) {
	assert.Equal(t, 80.0, (&Product{Price: 100, SalePrice: 80, SaleActive: true}).UnitPrice())
	assert.Equal(t, 100.0, (&Product{Price: 100, SalePrice: 80, SaleActive: false}).UnitPrice())
	assert.Equal(t, 100.0, (&Product{Price: 100, SalePrice: 0, SaleActive: true}).UnitPrice())
}
