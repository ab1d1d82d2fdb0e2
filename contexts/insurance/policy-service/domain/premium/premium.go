package premium

import (
	"dropcover/contexts/insurance/policy-service/domain/entities"
	domainerrors "dropcover/contexts/insurance/policy-service/domain/errors"
)

// Monthly premium = purchase price * base rate * risk multiplier * coverage ratio.
const baseRate = 0.02

const (
	minCoverageRatio = 0.5
	maxCoverageRatio = 2.0
)

// Calculate returns the monthly premium for the requested coverage.
// The coverage ratio (coverage amount / purchase price) must lie in
// [0.5, 2.0]; anything outside is ErrInvalidCoverage. Pure, no state.
func Calculate(product entities.ProductType, purchasePrice float64, coverageAmount float64) (float64, error) {
	if purchasePrice <= 0 || coverageAmount <= 0 {
		return 0, domainerrors.ErrInvalidCoverage
	}
	ratio := coverageAmount / purchasePrice
	if ratio < minCoverageRatio || ratio > maxCoverageRatio {
		return 0, domainerrors.ErrInvalidCoverage
	}
	return purchasePrice * baseRate * riskMultiplier(product) * ratio, nil
}

func riskMultiplier(product entities.ProductType) float64 {
	switch product {
	case entities.ProductTypePhone:
		return 1.2
	case entities.ProductTypeLaptop:
		return 1.3
	case entities.ProductTypeTablet:
		return 1.1
	default:
		return 1.5
	}
}
