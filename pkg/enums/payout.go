package enums

import "fmt"

// PayoutStatus tracks a payout request through its state machine.
// Approved and rejected are terminal.
type PayoutStatus string

const (
	PayoutStatusPending  PayoutStatus = "pending"
	PayoutStatusApproved PayoutStatus = "approved"
	PayoutStatusRejected PayoutStatus = "rejected"
)

var validPayoutStatuses = []PayoutStatus{
	PayoutStatusPending,
	PayoutStatusApproved,
	PayoutStatusRejected,
}

func (s PayoutStatus) String() string {
	return string(s)
}

func (s PayoutStatus) IsValid() bool {
	for _, candidate := range validPayoutStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the payout can no longer change state.
func (s PayoutStatus) IsTerminal() bool {
	return s == PayoutStatusApproved || s == PayoutStatusRejected
}

// PayoutMethod is the channel a store wants its withdrawal sent through.
type PayoutMethod string

const (
	PayoutMethodMobileMoney  PayoutMethod = "mobile_money"
	PayoutMethodBankTransfer PayoutMethod = "bank_transfer"
)

var validPayoutMethods = []PayoutMethod{PayoutMethodMobileMoney, PayoutMethodBankTransfer}

func (m PayoutMethod) IsValid() bool {
	for _, candidate := range validPayoutMethods {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParsePayoutMethod converts raw input into a PayoutMethod.
func ParsePayoutMethod(value string) (PayoutMethod, error) {
	for _, candidate := range validPayoutMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payout method %q", value)
}
