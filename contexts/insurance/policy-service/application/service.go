package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"dropcover/contexts/insurance/policy-service/domain/entities"
	domainerrors "dropcover/contexts/insurance/policy-service/domain/errors"
	"dropcover/contexts/insurance/policy-service/domain/premium"
	"dropcover/contexts/insurance/policy-service/ports"
)

// CoverageTerm is the fixed coverage window applied on create and renew.
const CoverageTerm = 365 * 24 * time.Hour

type Service struct {
	Policies       ports.PolicyRepository
	Payments       ports.PaymentProcessor
	Idempotency    ports.IdempotencyStore
	Clock          ports.Clock
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

func (s Service) CreatePolicy(
	ctx context.Context,
	idempotencyKey string,
	callerID string,
	input ports.CreatePolicyInput,
) (entities.Policy, error) {
	var out entities.Policy
	if strings.TrimSpace(callerID) == "" ||
		strings.TrimSpace(input.ProductName) == "" ||
		strings.TrimSpace(input.SerialNumber) == "" {
		return out, domainerrors.ErrInvalidPolicyRequest
	}
	if input.Product == entities.ProductTypeOther && strings.TrimSpace(input.ProductLabel) == "" {
		return out, domainerrors.ErrInvalidPolicyRequest
	}
	monthlyPremium, err := premium.Calculate(input.Product, input.PurchasePrice, input.CoverageAmount)
	if err != nil {
		return out, err
	}
	if err := requireIdempotencyKey(idempotencyKey); err != nil {
		return out, err
	}

	payload, _ := json.Marshal(input)
	requestHash := hashStrings("insurance_create_policy", callerID, string(payload))
	err = s.runIdempotent(
		ctx,
		strings.TrimSpace(idempotencyKey),
		requestHash,
		func(raw []byte) error { return json.Unmarshal(raw, &out) },
		func() ([]byte, error) {
			now := s.now()
			created, err := s.Policies.CreatePolicy(ctx, entities.Policy{
				OwnerID:      strings.TrimSpace(callerID),
				Product:      input.Product,
				ProductLabel: strings.TrimSpace(input.ProductLabel),
				Details: entities.ProductDetails{
					Name:          strings.TrimSpace(input.ProductName),
					Model:         strings.TrimSpace(input.ProductModel),
					PurchaseDate:  input.PurchaseDate.UTC(),
					PurchasePrice: input.PurchasePrice,
					SerialNumber:  strings.TrimSpace(input.SerialNumber),
				},
				Coverage: entities.Coverage{
					StartAt:        now,
					EndAt:          now.Add(CoverageTerm),
					Amount:         input.CoverageAmount,
					MonthlyPremium: monthlyPremium,
				},
				Status:    entities.PolicyStatusActive,
				Claims:    nil,
				CreatedAt: now,
			})
			if err != nil {
				return nil, err
			}
			resolveLogger(s.Logger).Info("policy created",
				"event", "policy_created",
				"module", "insurance/policy-service",
				"layer", "application",
				"policy_id", created.PolicyID,
				"owner_id", created.OwnerID,
				"product", string(created.Product),
			)
			return json.Marshal(created)
		},
	)
	return out, err
}

func (s Service) SubmitClaim(
	ctx context.Context,
	idempotencyKey string,
	callerID string,
	input ports.SubmitClaimInput,
) (entities.Claim, error) {
	var out entities.Claim
	if strings.TrimSpace(callerID) == "" ||
		strings.TrimSpace(input.PolicyID) == "" ||
		strings.TrimSpace(input.Description) == "" ||
		input.Amount <= 0 {
		return out, domainerrors.ErrInvalidClaimRequest
	}
	if input.Damage == entities.DamageTypeOther && strings.TrimSpace(input.DamageLabel) == "" {
		return out, domainerrors.ErrInvalidClaimRequest
	}
	if err := requireIdempotencyKey(idempotencyKey); err != nil {
		return out, err
	}

	policy, err := s.Policies.GetPolicy(ctx, strings.TrimSpace(input.PolicyID))
	if err != nil {
		return out, err
	}
	if policy.OwnerID != strings.TrimSpace(callerID) {
		return out, domainerrors.ErrNotPolicyOwner
	}
	if policy.Status != entities.PolicyStatusActive {
		return out, domainerrors.ErrPolicyNotActive
	}
	if input.Amount > policy.Coverage.Amount {
		return out, domainerrors.ErrClaimExceedsCoverage
	}

	payload, _ := json.Marshal(input)
	requestHash := hashStrings("insurance_submit_claim", callerID, string(payload))
	err = s.runIdempotent(
		ctx,
		strings.TrimSpace(idempotencyKey),
		requestHash,
		func(raw []byte) error { return json.Unmarshal(raw, &out) },
		func() ([]byte, error) {
			appended, err := s.Policies.AppendClaim(ctx, policy.PolicyID, entities.Claim{
				PolicyID:    policy.PolicyID,
				Description: strings.TrimSpace(input.Description),
				Damage:      input.Damage,
				DamageLabel: strings.TrimSpace(input.DamageLabel),
				Amount:      input.Amount,
				Evidence:    append([]string(nil), input.Evidence...),
				Status:      entities.ClaimStatusSubmitted,
				SubmittedAt: s.now(),
			})
			if err != nil {
				return nil, err
			}
			resolveLogger(s.Logger).Info("claim submitted",
				"event", "claim_submitted",
				"module", "insurance/policy-service",
				"layer", "application",
				"policy_id", policy.PolicyID,
				"claim_id", appended.ClaimID,
				"amount", appended.Amount,
			)
			return json.Marshal(appended)
		},
	)
	return out, err
}

// ProcessClaim adjudicates a claim. The caller identity is recorded for audit
// but NOT checked against any role or ownership: any authenticated caller may
// approve or reject any claim. Tightening this requires an adjudicator role
// the platform does not have yet.
func (s Service) ProcessClaim(
	ctx context.Context,
	callerID string,
	policyID string,
	claimID string,
	approved bool,
) (entities.Claim, error) {
	policy, err := s.Policies.GetPolicy(ctx, strings.TrimSpace(policyID))
	if err != nil {
		return entities.Claim{}, err
	}
	claim, ok := policy.FindClaim(strings.TrimSpace(claimID))
	if !ok {
		return entities.Claim{}, domainerrors.ErrClaimNotFound
	}
	if !claim.Open() {
		return entities.Claim{}, domainerrors.ErrClaimNotOpen
	}

	now := s.now()
	claim.Status = entities.ClaimStatusRejected
	if approved {
		claim.Status = entities.ClaimStatusApproved
	}
	if claim.ResolvedAt == nil {
		claim.ResolvedAt = &now
	}
	for i := range policy.Claims {
		if policy.Claims[i].ClaimID == claim.ClaimID {
			policy.Claims[i] = claim
		}
	}
	if approved {
		policy.Status = entities.PolicyStatusClaimed
	}
	if _, err := s.Policies.UpdatePolicy(ctx, policy); err != nil {
		return entities.Claim{}, err
	}

	resolveLogger(s.Logger).Info("claim processed",
		"event", "claim_processed",
		"module", "insurance/policy-service",
		"layer", "application",
		"policy_id", policy.PolicyID,
		"claim_id", claim.ClaimID,
		"approved", approved,
		"processed_by", strings.TrimSpace(callerID),
	)
	return claim, nil
}

func (s Service) PayPremium(ctx context.Context, callerID string, policyID string) (ports.PaymentAck, error) {
	policy, err := s.Policies.GetPolicy(ctx, strings.TrimSpace(policyID))
	if err != nil {
		return ports.PaymentAck{}, err
	}
	if policy.OwnerID != strings.TrimSpace(callerID) {
		return ports.PaymentAck{}, domainerrors.ErrNotPolicyOwner
	}
	if policy.Status != entities.PolicyStatusActive {
		return ports.PaymentAck{}, domainerrors.ErrPolicyNotActive
	}

	ack, err := s.Payments.ProcessPayment(ctx, policy.PolicyID, policy.OwnerID, policy.Coverage.MonthlyPremium)
	if err != nil {
		return ports.PaymentAck{}, err
	}
	resolveLogger(s.Logger).Info("premium payment acknowledged",
		"event", "premium_paid",
		"module", "insurance/policy-service",
		"layer", "application",
		"policy_id", policy.PolicyID,
		"reference", ack.Reference,
	)
	return ack, nil
}

func (s Service) RenewPolicy(ctx context.Context, callerID string, policyID string) (entities.Policy, error) {
	policy, err := s.Policies.GetPolicy(ctx, strings.TrimSpace(policyID))
	if err != nil {
		return entities.Policy{}, err
	}
	if policy.OwnerID != strings.TrimSpace(callerID) {
		return entities.Policy{}, domainerrors.ErrNotPolicyOwner
	}
	if policy.Status != entities.PolicyStatusActive && policy.Status != entities.PolicyStatusExpired {
		return entities.Policy{}, domainerrors.ErrPolicyNotRenewable
	}

	now := s.now()
	policy.Coverage.StartAt = now
	policy.Coverage.EndAt = now.Add(CoverageTerm)
	policy.Status = entities.PolicyStatusActive
	updated, err := s.Policies.UpdatePolicy(ctx, policy)
	if err != nil {
		return entities.Policy{}, err
	}
	resolveLogger(s.Logger).Info("policy renewed",
		"event", "policy_renewed",
		"module", "insurance/policy-service",
		"layer", "application",
		"policy_id", updated.PolicyID,
		"coverage_end", updated.Coverage.EndAt,
	)
	return updated, nil
}

func (s Service) CancelPolicy(ctx context.Context, callerID string, policyID string) (entities.Policy, error) {
	policy, err := s.Policies.GetPolicy(ctx, strings.TrimSpace(policyID))
	if err != nil {
		return entities.Policy{}, err
	}
	if policy.OwnerID != strings.TrimSpace(callerID) {
		return entities.Policy{}, domainerrors.ErrNotPolicyOwner
	}
	if policy.Status != entities.PolicyStatusActive {
		return entities.Policy{}, domainerrors.ErrPolicyNotActive
	}

	policy.Status = entities.PolicyStatusCancelled
	updated, err := s.Policies.UpdatePolicy(ctx, policy)
	if err != nil {
		return entities.Policy{}, err
	}
	resolveLogger(s.Logger).Info("policy cancelled",
		"event", "policy_cancelled",
		"module", "insurance/policy-service",
		"layer", "application",
		"policy_id", updated.PolicyID,
	)
	return updated, nil
}

func (s Service) GetPolicy(ctx context.Context, policyID string) (entities.Policy, error) {
	return s.Policies.GetPolicy(ctx, strings.TrimSpace(policyID))
}

func (s Service) GetMyPolicies(ctx context.Context, callerID string) ([]entities.Policy, error) {
	if strings.TrimSpace(callerID) == "" {
		return nil, domainerrors.ErrInvalidPolicyRequest
	}
	return s.Policies.ListPoliciesByOwner(ctx, strings.TrimSpace(callerID))
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func (s Service) idempotencyTTL() time.Duration {
	if s.IdempotencyTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return s.IdempotencyTTL
}

func (s Service) runIdempotent(
	ctx context.Context,
	key string,
	requestHash string,
	decode func([]byte) error,
	exec func() ([]byte, error),
) error {
	now := s.now()
	record, found, err := s.Idempotency.Get(ctx, key, now)
	if err != nil {
		return err
	}
	if found {
		if record.RequestHash != requestHash {
			return domainerrors.ErrIdempotencyConflict
		}
		return decode(record.Payload)
	}

	payload, err := exec()
	if err != nil {
		return err
	}
	if err := s.Idempotency.Put(ctx, ports.IdempotencyRecord{
		Key:         key,
		RequestHash: requestHash,
		Payload:     payload,
		ExpiresAt:   now.Add(s.idempotencyTTL()),
	}); err != nil {
		return err
	}
	return decode(payload)
}

func requireIdempotencyKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return domainerrors.ErrIdempotencyKeyRequired
	}
	return nil
}

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

func hashStrings(values ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(values, "|")))
	return hex.EncodeToString(sum[:])
}
