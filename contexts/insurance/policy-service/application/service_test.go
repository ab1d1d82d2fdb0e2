package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"dropcover/contexts/insurance/policy-service/adapters/memory"
	"dropcover/contexts/insurance/policy-service/domain/entities"
	domainerrors "dropcover/contexts/insurance/policy-service/domain/errors"
	"dropcover/contexts/insurance/policy-service/ports"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

type recordingProcessor struct {
	calls int
}

func (p *recordingProcessor) ProcessPayment(_ context.Context, policyID string, _ string, amount float64) (ports.PaymentAck, error) {
	p.calls++
	return ports.PaymentAck{
		Reference:   "pay_test",
		PolicyID:    policyID,
		Amount:      amount,
		ProcessedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}, nil
}

func newTestService(t *testing.T, clock ports.Clock) (Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	if clock == nil {
		clock = store
	}
	return Service{
		Policies:       store,
		Payments:       &recordingProcessor{},
		Idempotency:    store,
		Clock:          clock,
		IdempotencyTTL: time.Hour,
	}, store
}

func laptopPolicyInput() ports.CreatePolicyInput {
	return ports.CreatePolicyInput{
		Product:        entities.ProductTypeLaptop,
		ProductName:    "Workbook 14",
		ProductModel:   "WB-14",
		SerialNumber:   "SN-0001",
		PurchaseDate:   time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		PurchasePrice:  1000,
		CoverageAmount: 1500,
	}
}

func TestCreatePolicySetsCoverageWindowAndPremium(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	service, _ := newTestService(t, fixedClock{now: now})
	ctx := context.Background()

	policy, err := service.CreatePolicy(ctx, "idem-create-1", "user_1", laptopPolicyInput())
	if err != nil {
		t.Fatalf("create policy failed: %v", err)
	}
	if policy.PolicyID == "" {
		t.Fatalf("expected policy id to be assigned")
	}
	if policy.Status != entities.PolicyStatusActive {
		t.Fatalf("expected active policy, got %s", policy.Status)
	}
	// 1000 * 0.02 * 1.3 * (1500/1000) = 39.0
	if policy.Coverage.MonthlyPremium != 39.0 {
		t.Fatalf("expected monthly premium 39.0, got %v", policy.Coverage.MonthlyPremium)
	}
	if !policy.Coverage.StartAt.Equal(now) {
		t.Fatalf("expected coverage start %v, got %v", now, policy.Coverage.StartAt)
	}
	if !policy.Coverage.EndAt.Equal(now.Add(CoverageTerm)) {
		t.Fatalf("expected coverage end %v, got %v", now.Add(CoverageTerm), policy.Coverage.EndAt)
	}
	if len(policy.Claims) != 0 {
		t.Fatalf("expected empty claim ledger, got %d", len(policy.Claims))
	}
}

func TestCreatePolicyIdempotentReplay(t *testing.T) {
	service, _ := newTestService(t, nil)
	ctx := context.Background()

	first, err := service.CreatePolicy(ctx, "idem-create-2", "user_1", laptopPolicyInput())
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	second, err := service.CreatePolicy(ctx, "idem-create-2", "user_1", laptopPolicyInput())
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if first.PolicyID != second.PolicyID {
		t.Fatalf("expected replay to return same policy id, got %s and %s", first.PolicyID, second.PolicyID)
	}

	other := laptopPolicyInput()
	other.SerialNumber = "SN-9999"
	if _, err := service.CreatePolicy(ctx, "idem-create-2", "user_1", other); !errors.Is(err, domainerrors.ErrIdempotencyConflict) {
		t.Fatalf("expected idempotency conflict, got %v", err)
	}
}

func TestCreatePolicyRequiresIdempotencyKey(t *testing.T) {
	service, _ := newTestService(t, nil)

	_, err := service.CreatePolicy(context.Background(), "  ", "user_1", laptopPolicyInput())
	if !errors.Is(err, domainerrors.ErrIdempotencyKeyRequired) {
		t.Fatalf("expected idempotency key required, got %v", err)
	}
}

func TestCreatePolicyRejectsCoverageOutOfBounds(t *testing.T) {
	service, _ := newTestService(t, nil)
	ctx := context.Background()

	input := laptopPolicyInput()
	input.CoverageAmount = 400 // ratio 0.4
	if _, err := service.CreatePolicy(ctx, "idem-create-3", "user_1", input); !errors.Is(err, domainerrors.ErrInvalidCoverage) {
		t.Fatalf("expected invalid coverage for low ratio, got %v", err)
	}

	input.CoverageAmount = 2100 // ratio 2.1
	if _, err := service.CreatePolicy(ctx, "idem-create-4", "user_1", input); !errors.Is(err, domainerrors.ErrInvalidCoverage) {
		t.Fatalf("expected invalid coverage for high ratio, got %v", err)
	}
}

func TestCreatePolicyOtherProductRequiresLabel(t *testing.T) {
	service, _ := newTestService(t, nil)

	input := laptopPolicyInput()
	input.Product = entities.ProductTypeOther
	input.ProductLabel = ""
	_, err := service.CreatePolicy(context.Background(), "idem-create-5", "user_1", input)
	if !errors.Is(err, domainerrors.ErrInvalidPolicyRequest) {
		t.Fatalf("expected invalid policy request, got %v", err)
	}
}

func TestSubmitClaimFlow(t *testing.T) {
	service, _ := newTestService(t, nil)
	ctx := context.Background()

	policy, err := service.CreatePolicy(ctx, "idem-create-6", "user_1", laptopPolicyInput())
	if err != nil {
		t.Fatalf("create policy failed: %v", err)
	}

	claim, err := service.SubmitClaim(ctx, "idem-claim-1", "user_1", ports.SubmitClaimInput{
		PolicyID:    policy.PolicyID,
		Description: "screen cracked after fall",
		Damage:      entities.DamageTypePhysical,
		Amount:      450,
		Evidence:    []string{"photos/crack.jpg"},
	})
	if err != nil {
		t.Fatalf("submit claim failed: %v", err)
	}
	if claim.Status != entities.ClaimStatusSubmitted {
		t.Fatalf("expected submitted claim, got %s", claim.Status)
	}
	if claim.PolicyID != policy.PolicyID {
		t.Fatalf("expected claim bound to %s, got %s", policy.PolicyID, claim.PolicyID)
	}

	replay, err := service.SubmitClaim(ctx, "idem-claim-1", "user_1", ports.SubmitClaimInput{
		PolicyID:    policy.PolicyID,
		Description: "screen cracked after fall",
		Damage:      entities.DamageTypePhysical,
		Amount:      450,
		Evidence:    []string{"photos/crack.jpg"},
	})
	if err != nil {
		t.Fatalf("replayed submit claim failed: %v", err)
	}
	if replay.ClaimID != claim.ClaimID {
		t.Fatalf("expected replay to return same claim id, got %s and %s", claim.ClaimID, replay.ClaimID)
	}

	stored, err := service.GetPolicy(ctx, policy.PolicyID)
	if err != nil {
		t.Fatalf("get policy failed: %v", err)
	}
	if len(stored.Claims) != 1 {
		t.Fatalf("expected exactly one claim after replay, got %d", len(stored.Claims))
	}
}

func TestSubmitClaimGuards(t *testing.T) {
	service, _ := newTestService(t, nil)
	ctx := context.Background()

	policy, err := service.CreatePolicy(ctx, "idem-create-7", "user_1", laptopPolicyInput())
	if err != nil {
		t.Fatalf("create policy failed: %v", err)
	}

	input := ports.SubmitClaimInput{
		PolicyID:    policy.PolicyID,
		Description: "stolen from car",
		Damage:      entities.DamageTypeTheft,
		Amount:      100,
	}

	stranger := input
	if _, err := service.SubmitClaim(ctx, "idem-claim-2", "user_2", stranger); !errors.Is(err, domainerrors.ErrNotPolicyOwner) {
		t.Fatalf("expected not policy owner, got %v", err)
	}

	tooBig := input
	tooBig.Amount = policy.Coverage.Amount + 1
	if _, err := service.SubmitClaim(ctx, "idem-claim-3", "user_1", tooBig); !errors.Is(err, domainerrors.ErrClaimExceedsCoverage) {
		t.Fatalf("expected claim exceeds coverage, got %v", err)
	}

	if _, err := service.CancelPolicy(ctx, "user_1", policy.PolicyID); err != nil {
		t.Fatalf("cancel policy failed: %v", err)
	}
	if _, err := service.SubmitClaim(ctx, "idem-claim-4", "user_1", input); !errors.Is(err, domainerrors.ErrPolicyNotActive) {
		t.Fatalf("expected policy not active, got %v", err)
	}
}

func TestProcessClaimApprovalMarksPolicyClaimed(t *testing.T) {
	service, _ := newTestService(t, nil)
	ctx := context.Background()

	policy, err := service.CreatePolicy(ctx, "idem-create-8", "user_1", laptopPolicyInput())
	if err != nil {
		t.Fatalf("create policy failed: %v", err)
	}
	claim, err := service.SubmitClaim(ctx, "idem-claim-5", "user_1", ports.SubmitClaimInput{
		PolicyID:    policy.PolicyID,
		Description: "water damage",
		Damage:      entities.DamageTypePhysical,
		Amount:      300,
	})
	if err != nil {
		t.Fatalf("submit claim failed: %v", err)
	}

	processed, err := service.ProcessClaim(ctx, "adjuster_1", policy.PolicyID, claim.ClaimID, true)
	if err != nil {
		t.Fatalf("process claim failed: %v", err)
	}
	if processed.Status != entities.ClaimStatusApproved {
		t.Fatalf("expected approved claim, got %s", processed.Status)
	}
	if processed.ResolvedAt == nil {
		t.Fatalf("expected resolved timestamp to be set")
	}

	stored, err := service.GetPolicy(ctx, policy.PolicyID)
	if err != nil {
		t.Fatalf("get policy failed: %v", err)
	}
	if stored.Status != entities.PolicyStatusClaimed {
		t.Fatalf("expected claimed policy, got %s", stored.Status)
	}

	if _, err := service.ProcessClaim(ctx, "adjuster_1", policy.PolicyID, claim.ClaimID, false); !errors.Is(err, domainerrors.ErrClaimNotOpen) {
		t.Fatalf("expected claim not open on second decision, got %v", err)
	}

	if _, err := service.RenewPolicy(ctx, "user_1", policy.PolicyID); !errors.Is(err, domainerrors.ErrPolicyNotRenewable) {
		t.Fatalf("expected claimed policy to be non-renewable, got %v", err)
	}
}

func TestProcessClaimRejectionKeepsPolicyActive(t *testing.T) {
	service, _ := newTestService(t, nil)
	ctx := context.Background()

	policy, err := service.CreatePolicy(ctx, "idem-create-9", "user_1", laptopPolicyInput())
	if err != nil {
		t.Fatalf("create policy failed: %v", err)
	}
	claim, err := service.SubmitClaim(ctx, "idem-claim-6", "user_1", ports.SubmitClaimInput{
		PolicyID:    policy.PolicyID,
		Description: "charger port failure",
		Damage:      entities.DamageTypeMalfunction,
		Amount:      120,
	})
	if err != nil {
		t.Fatalf("submit claim failed: %v", err)
	}

	processed, err := service.ProcessClaim(ctx, "adjuster_1", policy.PolicyID, claim.ClaimID, false)
	if err != nil {
		t.Fatalf("process claim failed: %v", err)
	}
	if processed.Status != entities.ClaimStatusRejected {
		t.Fatalf("expected rejected claim, got %s", processed.Status)
	}

	stored, err := service.GetPolicy(ctx, policy.PolicyID)
	if err != nil {
		t.Fatalf("get policy failed: %v", err)
	}
	if stored.Status != entities.PolicyStatusActive {
		t.Fatalf("expected policy to stay active after rejection, got %s", stored.Status)
	}
}

func TestPayPremiumForwardsMonthlyAmount(t *testing.T) {
	processor := &recordingProcessor{}
	store := memory.NewStore()
	service := Service{
		Policies:    store,
		Payments:    processor,
		Idempotency: store,
		Clock:       store,
	}
	ctx := context.Background()

	policy, err := service.CreatePolicy(ctx, "idem-create-10", "user_1", laptopPolicyInput())
	if err != nil {
		t.Fatalf("create policy failed: %v", err)
	}

	ack, err := service.PayPremium(ctx, "user_1", policy.PolicyID)
	if err != nil {
		t.Fatalf("pay premium failed: %v", err)
	}
	if ack.Amount != policy.Coverage.MonthlyPremium {
		t.Fatalf("expected payment of %v, got %v", policy.Coverage.MonthlyPremium, ack.Amount)
	}
	if processor.calls != 1 {
		t.Fatalf("expected one processor call, got %d", processor.calls)
	}

	if _, err := service.PayPremium(ctx, "user_2", policy.PolicyID); !errors.Is(err, domainerrors.ErrNotPolicyOwner) {
		t.Fatalf("expected not policy owner, got %v", err)
	}
}

func TestRenewPolicyResetsCoverageWindow(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := &steppingClock{now: start}
	service, _ := newTestService(t, clock)
	ctx := context.Background()

	policy, err := service.CreatePolicy(ctx, "idem-create-11", "user_1", laptopPolicyInput())
	if err != nil {
		t.Fatalf("create policy failed: %v", err)
	}

	clock.now = start.Add(200 * 24 * time.Hour)
	renewed, err := service.RenewPolicy(ctx, "user_1", policy.PolicyID)
	if err != nil {
		t.Fatalf("renew policy failed: %v", err)
	}
	if !renewed.Coverage.StartAt.Equal(clock.now) {
		t.Fatalf("expected coverage restart at %v, got %v", clock.now, renewed.Coverage.StartAt)
	}
	if !renewed.Coverage.EndAt.Equal(clock.now.Add(CoverageTerm)) {
		t.Fatalf("expected coverage end %v, got %v", clock.now.Add(CoverageTerm), renewed.Coverage.EndAt)
	}
	if renewed.Status != entities.PolicyStatusActive {
		t.Fatalf("expected active policy after renew, got %s", renewed.Status)
	}
}

type steppingClock struct {
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	return c.now
}

func TestCancelThenRenewFails(t *testing.T) {
	service, _ := newTestService(t, nil)
	ctx := context.Background()

	policy, err := service.CreatePolicy(ctx, "idem-create-12", "user_1", laptopPolicyInput())
	if err != nil {
		t.Fatalf("create policy failed: %v", err)
	}
	cancelled, err := service.CancelPolicy(ctx, "user_1", policy.PolicyID)
	if err != nil {
		t.Fatalf("cancel policy failed: %v", err)
	}
	if cancelled.Status != entities.PolicyStatusCancelled {
		t.Fatalf("expected cancelled policy, got %s", cancelled.Status)
	}

	if _, err := service.RenewPolicy(ctx, "user_1", policy.PolicyID); !errors.Is(err, domainerrors.ErrPolicyNotRenewable) {
		t.Fatalf("expected policy not renewable, got %v", err)
	}
	if _, err := service.CancelPolicy(ctx, "user_1", policy.PolicyID); !errors.Is(err, domainerrors.ErrPolicyNotActive) {
		t.Fatalf("expected policy not active on double cancel, got %v", err)
	}
}

func TestGetMyPoliciesMostRecentFirst(t *testing.T) {
	service, _ := newTestService(t, nil)
	ctx := context.Background()

	first, err := service.CreatePolicy(ctx, "idem-create-13", "user_1", laptopPolicyInput())
	if err != nil {
		t.Fatalf("create first policy failed: %v", err)
	}
	secondInput := laptopPolicyInput()
	secondInput.SerialNumber = "SN-0002"
	second, err := service.CreatePolicy(ctx, "idem-create-14", "user_1", secondInput)
	if err != nil {
		t.Fatalf("create second policy failed: %v", err)
	}

	policies, err := service.GetMyPolicies(ctx, "user_1")
	if err != nil {
		t.Fatalf("get my policies failed: %v", err)
	}
	if len(policies) != 2 {
		t.Fatalf("expected two policies, got %d", len(policies))
	}
	if policies[0].PolicyID != second.PolicyID || policies[1].PolicyID != first.PolicyID {
		t.Fatalf("expected most-recent-first ordering, got %s then %s", policies[0].PolicyID, policies[1].PolicyID)
	}

	other, err := service.GetMyPolicies(ctx, "user_2")
	if err != nil {
		t.Fatalf("get my policies for other user failed: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected empty list for other user, got %d", len(other))
	}
}
