package enums

import "fmt"

// StoreTier represents a store's subscription tier.
type StoreTier string

const (
	StoreTierHustler    StoreTier = "hustler"
	StoreTierPro        StoreTier = "pro"
	StoreTierWholesaler StoreTier = "wholesaler"
)

var validStoreTiers = []StoreTier{StoreTierHustler, StoreTierPro, StoreTierWholesaler}

func (t StoreTier) String() string {
	return string(t)
}

func (t StoreTier) IsValid() bool {
	for _, candidate := range validStoreTiers {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseStoreTier converts raw input into a StoreTier.
func ParseStoreTier(value string) (StoreTier, error) {
	for _, candidate := range validStoreTiers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid store tier %q", value)
}

// StoreStatus tracks whether a store may serve traffic.
type StoreStatus string

const (
	StoreStatusActive    StoreStatus = "active"
	StoreStatusSuspended StoreStatus = "suspended"
)

func (s StoreStatus) IsValid() bool {
	return s == StoreStatusActive || s == StoreStatusSuspended
}

// VerificationStatus tracks platform review of a store.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

var validVerificationStatuses = []VerificationStatus{
	VerificationPending,
	VerificationVerified,
	VerificationRejected,
}

func (v VerificationStatus) IsValid() bool {
	for _, candidate := range validVerificationStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVerificationStatus converts raw input into a VerificationStatus.
func ParseVerificationStatus(value string) (VerificationStatus, error) {
	for _, candidate := range validVerificationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid verification status %q", value)
}
