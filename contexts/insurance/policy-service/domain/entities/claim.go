package entities

import (
	"strings"
	"time"

	domainerrors "dropcover/contexts/insurance/policy-service/domain/errors"
)

type DamageType string

const (
	DamageTypePhysical    DamageType = "physical"
	DamageTypeTheft       DamageType = "theft"
	DamageTypeMalfunction DamageType = "malfunction"
	DamageTypeOther       DamageType = "other"
)

type ClaimStatus string

const (
	ClaimStatusSubmitted   ClaimStatus = "submitted"
	ClaimStatusUnderReview ClaimStatus = "under_review"
	ClaimStatusApproved    ClaimStatus = "approved"
	ClaimStatusRejected    ClaimStatus = "rejected"
)

// Claim is a payout request against one policy's coverage. Claims are
// append-only: they are never removed from the owning policy's list.
type Claim struct {
	ClaimID     string
	PolicyID    string
	Description string
	Damage      DamageType
	DamageLabel string // set only when Damage is DamageTypeOther
	Amount      float64
	Evidence    []string
	Status      ClaimStatus
	SubmittedAt time.Time
	ResolvedAt  *time.Time // stamped exactly once, on the first terminal transition
}

func ParseDamageType(raw string) (DamageType, error) {
	switch DamageType(strings.ToLower(strings.TrimSpace(raw))) {
	case DamageTypePhysical:
		return DamageTypePhysical, nil
	case DamageTypeTheft:
		return DamageTypeTheft, nil
	case DamageTypeMalfunction:
		return DamageTypeMalfunction, nil
	case DamageTypeOther:
		return DamageTypeOther, nil
	default:
		return "", domainerrors.ErrInvalidClaimRequest
	}
}

// Open reports whether the claim can still be adjudicated.
func (c Claim) Open() bool {
	return c.Status == ClaimStatusSubmitted || c.Status == ClaimStatusUnderReview
}
