package unit

import (
	"context"
	"errors"
	"testing"

	policyservice "dropcover/contexts/insurance/policy-service"
	domainerrors "dropcover/contexts/insurance/policy-service/domain/errors"
	httptransport "dropcover/contexts/insurance/policy-service/transport/http"
)

func laptopPolicyRequest() httptransport.CreatePolicyRequest {
	return httptransport.CreatePolicyRequest{
		Product:        "laptop",
		ProductName:    "ThinkPad X1",
		ProductModel:   "21HM",
		SerialNumber:   "SN-7001",
		PurchaseDate:   "2025-05-01T00:00:00Z",
		PurchasePrice:  1500,
		CoverageAmount: 1500,
	}
}

func TestPolicyServiceCreatePolicyIdempotency(t *testing.T) {
	module := policyservice.NewInMemoryModule(nil)
	ctx := context.Background()

	first, err := module.Handler.CreatePolicyHandler(ctx, "idem-policy-create-1", "owner_900", laptopPolicyRequest())
	if err != nil {
		t.Fatalf("first create policy failed: %v", err)
	}
	second, err := module.Handler.CreatePolicyHandler(ctx, "idem-policy-create-1", "owner_900", laptopPolicyRequest())
	if err != nil {
		t.Fatalf("replayed create policy failed: %v", err)
	}
	if first.Data.PolicyID != second.Data.PolicyID {
		t.Fatalf("expected idempotent replay to return same policy id, got %s and %s", first.Data.PolicyID, second.Data.PolicyID)
	}

	changed := laptopPolicyRequest()
	changed.CoverageAmount = 1200
	_, err = module.Handler.CreatePolicyHandler(ctx, "idem-policy-create-1", "owner_900", changed)
	if !errors.Is(err, domainerrors.ErrIdempotencyConflict) {
		t.Fatalf("expected idempotency conflict, got %v", err)
	}
}

func TestPolicyServicePremiumForLaptopFullCoverage(t *testing.T) {
	module := policyservice.NewInMemoryModule(nil)
	ctx := context.Background()

	resp, err := module.Handler.CreatePolicyHandler(ctx, "idem-policy-premium-1", "owner_901", laptopPolicyRequest())
	if err != nil {
		t.Fatalf("create policy failed: %v", err)
	}
	if resp.Data.MonthlyPremium != 39.0 {
		t.Fatalf("expected 39.0 monthly premium for full-coverage laptop, got %v", resp.Data.MonthlyPremium)
	}
	if resp.Data.Status != "active" {
		t.Fatalf("expected new policy to be active, got %s", resp.Data.Status)
	}
}

func TestPolicyServiceClaimLifecycle(t *testing.T) {
	module := policyservice.NewInMemoryModule(nil)
	ctx := context.Background()

	policy, err := module.Handler.CreatePolicyHandler(ctx, "idem-policy-claim-1", "owner_902", laptopPolicyRequest())
	if err != nil {
		t.Fatalf("create policy failed: %v", err)
	}

	claim, err := module.Handler.SubmitClaimHandler(ctx, "idem-claim-submit-1", "owner_902", policy.Data.PolicyID, httptransport.SubmitClaimRequest{
		Description: "screen cracked in transit",
		Damage:      "physical",
		Amount:      400,
	})
	if err != nil {
		t.Fatalf("submit claim failed: %v", err)
	}
	if claim.Data.Status != "submitted" {
		t.Fatalf("expected submitted claim, got %s", claim.Data.Status)
	}

	processed, err := module.Handler.ProcessClaimHandler(ctx, "adjuster_1", policy.Data.PolicyID, claim.Data.ClaimID, httptransport.ProcessClaimRequest{Approved: true})
	if err != nil {
		t.Fatalf("process claim failed: %v", err)
	}
	if processed.Data.Status != "approved" || processed.Data.ResolvedAt == "" {
		t.Fatalf("expected approved resolved claim, got %+v", processed.Data)
	}

	after, err := module.Handler.GetPolicyHandler(ctx, policy.Data.PolicyID)
	if err != nil {
		t.Fatalf("get policy failed: %v", err)
	}
	if after.Data.Status != "claimed" {
		t.Fatalf("expected claimed policy after approval, got %s", after.Data.Status)
	}

	_, err = module.Handler.ProcessClaimHandler(ctx, "adjuster_1", policy.Data.PolicyID, claim.Data.ClaimID, httptransport.ProcessClaimRequest{Approved: false})
	if !errors.Is(err, domainerrors.ErrClaimNotOpen) {
		t.Fatalf("expected claim-not-open on second resolution, got %v", err)
	}
}

func TestPolicyServiceSubmitClaimGuards(t *testing.T) {
	module := policyservice.NewInMemoryModule(nil)
	ctx := context.Background()

	policy, err := module.Handler.CreatePolicyHandler(ctx, "idem-policy-guard-1", "owner_903", laptopPolicyRequest())
	if err != nil {
		t.Fatalf("create policy failed: %v", err)
	}

	_, err = module.Handler.SubmitClaimHandler(ctx, "idem-claim-guard-1", "intruder_1", policy.Data.PolicyID, httptransport.SubmitClaimRequest{
		Description: "not mine",
		Damage:      "theft",
		Amount:      100,
	})
	if !errors.Is(err, domainerrors.ErrNotPolicyOwner) {
		t.Fatalf("expected owner guard, got %v", err)
	}

	_, err = module.Handler.SubmitClaimHandler(ctx, "idem-claim-guard-2", "owner_903", policy.Data.PolicyID, httptransport.SubmitClaimRequest{
		Description: "total loss",
		Damage:      "physical",
		Amount:      5000,
	})
	if !errors.Is(err, domainerrors.ErrClaimExceedsCoverage) {
		t.Fatalf("expected coverage guard, got %v", err)
	}
}

func TestPolicyServiceRenewAndCancel(t *testing.T) {
	module := policyservice.NewInMemoryModule(nil)
	ctx := context.Background()

	policy, err := module.Handler.CreatePolicyHandler(ctx, "idem-policy-renew-1", "owner_904", laptopPolicyRequest())
	if err != nil {
		t.Fatalf("create policy failed: %v", err)
	}

	renewed, err := module.Handler.RenewPolicyHandler(ctx, "owner_904", policy.Data.PolicyID)
	if err != nil {
		t.Fatalf("renew policy failed: %v", err)
	}
	if renewed.Data.Status != "active" {
		t.Fatalf("expected renewed policy to be active, got %s", renewed.Data.Status)
	}

	cancelled, err := module.Handler.CancelPolicyHandler(ctx, "owner_904", policy.Data.PolicyID)
	if err != nil {
		t.Fatalf("cancel policy failed: %v", err)
	}
	if cancelled.Data.Status != "cancelled" {
		t.Fatalf("expected cancelled policy, got %s", cancelled.Data.Status)
	}

	_, err = module.Handler.RenewPolicyHandler(ctx, "owner_904", policy.Data.PolicyID)
	if !errors.Is(err, domainerrors.ErrPolicyNotRenewable) {
		t.Fatalf("expected renew to fail after cancellation, got %v", err)
	}
}
