package coupons

import (
	"github.com/shopspring/decimal"

	"github.com/selormtech/storefront-backend/pkg/db/models"
	"github.com/selormtech/storefront-backend/pkg/enums"
)

var hundred = decimal.NewFromInt(100)

// Discount returns the amount a coupon takes off a subtotal, never more
// than the subtotal itself.
func Discount(coupon *models.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	if coupon == nil || subtotal.IsNegative() {
		return decimal.Zero
	}

	var off decimal.Decimal
	switch coupon.Type {
	case enums.CouponTypePercent:
		off = subtotal.Mul(coupon.Value).Div(hundred).Round(2)
	case enums.CouponTypeFixed:
		off = coupon.Value
	default:
		return decimal.Zero
	}

	if off.GreaterThan(subtotal) {
		return subtotal
	}
	return off
}
