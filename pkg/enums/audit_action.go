package enums

import "fmt"

// AuditAction is the closed vocabulary of recordable activity. The
// platform-admin feed renders these labels directly, so free text is not
// accepted.
type AuditAction string

const (
	// Auth events.
	ActionUserLogin      AuditAction = "user_login"
	ActionUserLogout     AuditAction = "user_logout"
	ActionMagicLinkLogin AuditAction = "magic_link_login"

	// Store lifecycle.
	ActionStoreCreated     AuditAction = "store_created"
	ActionStoreVerified    AuditAction = "store_verified"
	ActionStoreSuspended   AuditAction = "store_suspended"
	ActionStoreTierChanged AuditAction = "store_tier_changed"

	// Product lifecycle.
	ActionProductCreated  AuditAction = "product_created"
	ActionProductUpdated  AuditAction = "product_updated"
	ActionProductArchived AuditAction = "product_archived"
	ActionProductDeleted  AuditAction = "product_deleted"
	ActionProductImported AuditAction = "product_imported"
	ActionStockAdjusted   AuditAction = "stock_adjusted"

	// Order lifecycle.
	ActionOrderCreated   AuditAction = "order_created"
	ActionOrderCompleted AuditAction = "order_completed"
	ActionOrderCancelled AuditAction = "order_cancelled"

	// Customer lifecycle.
	ActionCustomerRecorded AuditAction = "customer_recorded"

	// Settings.
	ActionSettingsUpdated AuditAction = "settings_updated"

	// Delivery zones.
	ActionZoneCreated AuditAction = "zone_created"
	ActionZoneUpdated AuditAction = "zone_updated"
	ActionZoneDeleted AuditAction = "zone_deleted"

	// Payouts.
	ActionPayoutRequested AuditAction = "payout_requested"
	ActionPayoutApproved  AuditAction = "payout_approved"
	ActionPayoutRejected  AuditAction = "payout_rejected"

	// Coupons.
	ActionCouponCreated  AuditAction = "coupon_created"
	ActionCouponDeleted  AuditAction = "coupon_deleted"
	ActionCouponRedeemed AuditAction = "coupon_redeemed"

	// Platform broadcast.
	ActionUpdateBroadcast AuditAction = "update_broadcast"

	// Staff lifecycle.
	ActionStaffCreated AuditAction = "staff_created"
	ActionStaffRemoved AuditAction = "staff_removed"

	// Data export, plan changes, AI assistance.
	ActionInventoryExported    AuditAction = "inventory_exported"
	ActionPlanChanged          AuditAction = "plan_changed"
	ActionDescriptionGenerated AuditAction = "description_generated"
)

var validAuditActions = []AuditAction{
	ActionUserLogin,
	ActionUserLogout,
	ActionMagicLinkLogin,
	ActionStoreCreated,
	ActionStoreVerified,
	ActionStoreSuspended,
	ActionStoreTierChanged,
	ActionProductCreated,
	ActionProductUpdated,
	ActionProductArchived,
	ActionProductDeleted,
	ActionProductImported,
	ActionStockAdjusted,
	ActionOrderCreated,
	ActionOrderCompleted,
	ActionOrderCancelled,
	ActionCustomerRecorded,
	ActionSettingsUpdated,
	ActionZoneCreated,
	ActionZoneUpdated,
	ActionZoneDeleted,
	ActionPayoutRequested,
	ActionPayoutApproved,
	ActionPayoutRejected,
	ActionCouponCreated,
	ActionCouponDeleted,
	ActionCouponRedeemed,
	ActionUpdateBroadcast,
	ActionStaffCreated,
	ActionStaffRemoved,
	ActionInventoryExported,
	ActionPlanChanged,
	ActionDescriptionGenerated,
}

func (a AuditAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AuditAction.
func (a AuditAction) IsValid() bool {
	for _, candidate := range validAuditActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAuditAction converts raw input into an AuditAction.
func ParseAuditAction(value string) (AuditAction, error) {
	for _, candidate := range validAuditActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid audit action %q", value)
}
