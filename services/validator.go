package services

import "optimarket/models"

// Pure admission checks, run both at creation time and again inside the
// finalizing transaction since balances and stock may have moved in
// between. No side effects, no errors; callers decide what a false means.

// CanAffordRedemption reports whether a balance covers the requested
// point total.
func CanAffordRedemption(opticianBalance, requestedTotalPoints int) bool {
	return opticianBalance >= requestedTotalPoints
}

// IsRedeemable reports whether a loyalty product can be redeemed right
// now. Inactive products never are; stock-backed products defer to the
// backing product's availability; unbacked rewards are unconstrained.
func IsRedeemable(lp *models.LoyaltyProduct, backing *models.Product) bool {
	if !lp.IsActive {
		return false
	}
	if lp.ProductID != nil && backing != nil {
		return backing.InStock
	}
	return true
}

// CanFulfillOrderItem reports whether live stock covers a requested
// quantity.
func CanFulfillOrderItem(productStockQty, requestedQty int) bool {
	return productStockQty >= requestedQty
}
