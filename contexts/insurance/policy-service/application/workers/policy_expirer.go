package workers

import (
	"context"
	"log/slog"
	"time"

	"dropcover/contexts/insurance/policy-service/domain/entities"
	"dropcover/contexts/insurance/policy-service/ports"
)

// PolicyExpirer drives the time-based Active -> Expired transition. Expiry is
// never exposed as a caller operation; it only happens here.
type PolicyExpirer struct {
	Policies  ports.PolicyRepository
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

func (e PolicyExpirer) RunOnce(ctx context.Context) error {
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := e.BatchSize
	if limit <= 0 {
		limit = 100
	}
	now := time.Now().UTC()
	if e.Clock != nil {
		now = e.Clock.Now().UTC()
	}

	candidates, err := e.Policies.ListActivePoliciesEndingBefore(ctx, now, limit)
	if err != nil {
		logger.Error("expiry candidate scan failed",
			"event", "policy_expiry_scan_failed",
			"module", "insurance/policy-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	expired := 0
	for _, policy := range candidates {
		if policy.Status != entities.PolicyStatusActive {
			continue
		}
		policy.Status = entities.PolicyStatusExpired
		if _, err := e.Policies.UpdatePolicy(ctx, policy); err != nil {
			logger.Error("policy expiry update failed",
				"event", "policy_expiry_update_failed",
				"module", "insurance/policy-service",
				"layer", "worker",
				"policy_id", policy.PolicyID,
				"error", err.Error(),
			)
			return err
		}
		expired++
	}

	if expired > 0 {
		logger.Info("policy expiry cycle completed",
			"event", "policy_expiry_completed",
			"module", "insurance/policy-service",
			"layer", "worker",
			"expired_count", expired,
		)
	}
	return nil
}
