package enums

import "fmt"

// CouponType controls how a coupon's value applies to an order subtotal.
type CouponType string

const (
	CouponTypePercent CouponType = "percent"
	CouponTypeFixed   CouponType = "fixed"
)

func (t CouponType) IsValid() bool {
	return t == CouponTypePercent || t == CouponTypeFixed
}

// ParseCouponType converts raw input into a CouponType.
func ParseCouponType(value string) (CouponType, error) {
	switch CouponType(value) {
	case CouponTypePercent:
		return CouponTypePercent, nil
	case CouponTypeFixed:
		return CouponTypeFixed, nil
	}
	return "", fmt.Errorf("invalid coupon type %q", value)
}
