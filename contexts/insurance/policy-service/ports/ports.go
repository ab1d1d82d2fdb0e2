package ports

import (
	"context"
	"time"

	"dropcover/contexts/insurance/policy-service/domain/entities"
)

type Clock interface {
	Now() time.Time
}

type IdempotencyRecord struct {
	Key         string
	RequestHash string
	Payload     []byte
	ExpiresAt   time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string, now time.Time) (IdempotencyRecord, bool, error)
	Put(ctx context.Context, record IdempotencyRecord) error
}

type CreatePolicyInput struct {
	Product        entities.ProductType
	ProductLabel   string
	ProductName    string
	ProductModel   string
	SerialNumber   string
	PurchaseDate   time.Time
	PurchasePrice  float64
	CoverageAmount float64
}

type SubmitClaimInput struct {
	PolicyID    string
	Description string
	Damage      entities.DamageType
	DamageLabel string
	Amount      float64
	Evidence    []string
}

// PaymentAck is the acknowledgment returned by the external settlement
// collaborator. No state is mutated on the policy side.
type PaymentAck struct {
	Reference   string
	PolicyID    string
	Amount      float64
	ProcessedAt time.Time
}

// PaymentProcessor settles a premium payment out of process. The ledger only
// records the acknowledgment it hands back.
type PaymentProcessor interface {
	ProcessPayment(ctx context.Context, policyID string, ownerID string, amount float64) (PaymentAck, error)
}

// PolicyRepository owns policy records and their claim sub-ledgers.
// CreatePolicy and AppendClaim allocate monotonic identifiers under the same
// lock (or transaction) as the insert, so concurrent calls never collide.
type PolicyRepository interface {
	CreatePolicy(ctx context.Context, policy entities.Policy) (entities.Policy, error)
	UpdatePolicy(ctx context.Context, policy entities.Policy) (entities.Policy, error)
	AppendClaim(ctx context.Context, policyID string, claim entities.Claim) (entities.Claim, error)
	GetPolicy(ctx context.Context, policyID string) (entities.Policy, error)
	// ListPoliciesByOwner returns the owner's policies most-recent-first,
	// silently dropping index entries whose record is missing.
	ListPoliciesByOwner(ctx context.Context, ownerID string) ([]entities.Policy, error)
	// ListActivePoliciesEndingBefore feeds the expiry worker.
	ListActivePoliciesEndingBefore(ctx context.Context, cutoff time.Time, limit int) ([]entities.Policy, error)
}
