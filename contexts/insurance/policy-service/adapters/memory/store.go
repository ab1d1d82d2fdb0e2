package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"dropcover/contexts/insurance/policy-service/domain/entities"
	domainerrors "dropcover/contexts/insurance/policy-service/domain/errors"
	"dropcover/contexts/insurance/policy-service/ports"
)

type Store struct {
	mu sync.RWMutex

	policiesByID     map[string]entities.Policy
	policyIDsByOwner map[string][]string // most-recent-first

	idempotency map[string]ports.IdempotencyRecord

	policySeq uint64
	claimSeq  uint64
}

func NewStore() *Store {
	return &Store{
		policiesByID:     make(map[string]entities.Policy),
		policyIDsByOwner: make(map[string][]string),
		idempotency:      make(map[string]ports.IdempotencyRecord),
	}
}

func (s *Store) CreatePolicy(ctx context.Context, policy entities.Policy) (entities.Policy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	policy.PolicyID = fmt.Sprintf("pol_%d", atomic.AddUint64(&s.policySeq, 1))
	for i := range policy.Claims {
		policy.Claims[i].PolicyID = policy.PolicyID
	}
	if _, exists := s.policiesByID[policy.PolicyID]; exists {
		return entities.Policy{}, domainerrors.ErrPolicyAlreadyExists
	}
	s.policiesByID[policy.PolicyID] = clonePolicy(policy)
	s.policyIDsByOwner[policy.OwnerID] = append([]string{policy.PolicyID}, s.policyIDsByOwner[policy.OwnerID]...)
	return clonePolicy(policy), nil
}

func (s *Store) UpdatePolicy(ctx context.Context, policy entities.Policy) (entities.Policy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.policiesByID[policy.PolicyID]; !ok {
		return entities.Policy{}, domainerrors.ErrPolicyNotFound
	}
	s.policiesByID[policy.PolicyID] = clonePolicy(policy)
	return clonePolicy(policy), nil
}

func (s *Store) AppendClaim(ctx context.Context, policyID string, claim entities.Claim) (entities.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	policy, ok := s.policiesByID[policyID]
	if !ok {
		return entities.Claim{}, domainerrors.ErrPolicyNotFound
	}
	claim.ClaimID = fmt.Sprintf("clm_%d", atomic.AddUint64(&s.claimSeq, 1))
	claim.PolicyID = policyID
	policy.Claims = append(policy.Claims, cloneClaim(claim))
	s.policiesByID[policyID] = policy
	return cloneClaim(claim), nil
}

func (s *Store) GetPolicy(ctx context.Context, policyID string) (entities.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	policy, ok := s.policiesByID[policyID]
	if !ok {
		return entities.Policy{}, domainerrors.ErrPolicyNotFound
	}
	return clonePolicy(policy), nil
}

func (s *Store) ListPoliciesByOwner(ctx context.Context, ownerID string) ([]entities.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.policyIDsByOwner[ownerID]
	items := make([]entities.Policy, 0, len(ids))
	for _, id := range ids {
		policy, ok := s.policiesByID[id]
		if !ok {
			continue
		}
		items = append(items, clonePolicy(policy))
	}
	return items, nil
}

func (s *Store) ListActivePoliciesEndingBefore(ctx context.Context, cutoff time.Time, limit int) ([]entities.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]entities.Policy, 0, limit)
	for _, policy := range s.policiesByID {
		if policy.Status != entities.PolicyStatusActive || !policy.Coverage.EndAt.Before(cutoff) {
			continue
		}
		items = append(items, clonePolicy(policy))
		if len(items) >= limit {
			break
		}
	}
	return items, nil
}

func (s *Store) Get(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.idempotency[key]
	if !ok {
		return ports.IdempotencyRecord{}, false, nil
	}
	if !record.ExpiresAt.IsZero() && now.UTC().After(record.ExpiresAt.UTC()) {
		delete(s.idempotency, key)
		return ports.IdempotencyRecord{}, false, nil
	}
	return record, true, nil
}

func (s *Store) Put(ctx context.Context, record ports.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.idempotency[record.Key]; ok {
		if existing.RequestHash != record.RequestHash {
			return domainerrors.ErrIdempotencyConflict
		}
		return nil
	}
	s.idempotency[record.Key] = record
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func clonePolicy(in entities.Policy) entities.Policy {
	out := in
	out.Claims = make([]entities.Claim, len(in.Claims))
	for i, claim := range in.Claims {
		out.Claims[i] = cloneClaim(claim)
	}
	return out
}

func cloneClaim(in entities.Claim) entities.Claim {
	out := in
	out.Evidence = append([]string(nil), in.Evidence...)
	if in.ResolvedAt != nil {
		v := in.ResolvedAt.UTC()
		out.ResolvedAt = &v
	}
	return out
}

var _ ports.PolicyRepository = (*Store)(nil)
var _ ports.IdempotencyStore = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
