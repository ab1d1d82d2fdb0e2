package entities

import (
	"strings"
	"time"

	domainerrors "dropcover/contexts/insurance/policy-service/domain/errors"
)

type ProductType string

const (
	ProductTypePhone  ProductType = "phone"
	ProductTypeLaptop ProductType = "laptop"
	ProductTypeTablet ProductType = "tablet"
	ProductTypeOther  ProductType = "other"
)

type PolicyStatus string

const (
	PolicyStatusActive    PolicyStatus = "active"
	PolicyStatusExpired   PolicyStatus = "expired"
	PolicyStatusCancelled PolicyStatus = "cancelled"
	PolicyStatusClaimed   PolicyStatus = "claimed"
)

// ProductDetails describe the insured device. Immutable after policy creation.
type ProductDetails struct {
	Name          string
	Model         string
	PurchaseDate  time.Time
	PurchasePrice float64
	SerialNumber  string
}

// Coverage is the active coverage window. Mutable only through renewal.
type Coverage struct {
	StartAt        time.Time
	EndAt          time.Time
	Amount         float64
	MonthlyPremium float64
}

type Policy struct {
	PolicyID     string
	OwnerID      string
	Product      ProductType
	ProductLabel string // set only when Product is ProductTypeOther
	Details      ProductDetails
	Coverage     Coverage
	Status       PolicyStatus
	Claims       []Claim
	CreatedAt    time.Time
}

func ParseProductType(raw string) (ProductType, error) {
	switch ProductType(strings.ToLower(strings.TrimSpace(raw))) {
	case ProductTypePhone:
		return ProductTypePhone, nil
	case ProductTypeLaptop:
		return ProductTypeLaptop, nil
	case ProductTypeTablet:
		return ProductTypeTablet, nil
	case ProductTypeOther:
		return ProductTypeOther, nil
	default:
		return "", domainerrors.ErrInvalidPolicyRequest
	}
}

// FindClaim returns the claim with the given identifier from the policy's
// claim list.
func (p Policy) FindClaim(claimID string) (Claim, bool) {
	for _, claim := range p.Claims {
		if claim.ClaimID == claimID {
			return claim, true
		}
	}
	return Claim{}, false
}
