package errors

import "errors"

var (
	ErrPolicyNotFound       = errors.New("policy not found")
	ErrClaimNotFound        = errors.New("claim not found")
	ErrNotPolicyOwner       = errors.New("caller is not the policy owner")
	ErrPolicyNotActive      = errors.New("policy is not active")
	ErrPolicyNotRenewable   = errors.New("policy can only be renewed from active or expired")
	ErrInvalidCoverage      = errors.New("coverage amount must be between 50% and 200% of the purchase price")
	ErrClaimExceedsCoverage = errors.New("claim amount exceeds the policy coverage amount")
	ErrClaimNotOpen         = errors.New("claim has already been resolved")
	ErrInvalidPolicyRequest = errors.New("invalid policy request")
	ErrInvalidClaimRequest  = errors.New("invalid claim request")

	// Reserved: surfaced by storage adapters on duplicate identifier inserts.
	ErrPolicyAlreadyExists = errors.New("policy already exists")

	ErrIdempotencyKeyRequired = errors.New("idempotency key is required")
	ErrIdempotencyConflict    = errors.New("idempotency key reused with different request")
)
