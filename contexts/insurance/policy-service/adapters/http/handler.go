package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"dropcover/contexts/insurance/policy-service/application"
	"dropcover/contexts/insurance/policy-service/domain/entities"
	domainerrors "dropcover/contexts/insurance/policy-service/domain/errors"
	"dropcover/contexts/insurance/policy-service/ports"
	httptransport "dropcover/contexts/insurance/policy-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) CreatePolicyHandler(
	ctx context.Context,
	idempotencyKey string,
	userID string,
	req httptransport.CreatePolicyRequest,
) (httptransport.PolicyResponse, error) {
	input, err := toCreatePolicyInput(req)
	if err != nil {
		return httptransport.PolicyResponse{}, err
	}
	policy, err := h.Service.CreatePolicy(ctx, idempotencyKey, userID, input)
	if err != nil {
		return httptransport.PolicyResponse{}, err
	}
	return httptransport.PolicyResponse{Status: "success", Data: toPolicyPayload(policy)}, nil
}

func (h Handler) GetPolicyHandler(ctx context.Context, policyID string) (httptransport.PolicyResponse, error) {
	policy, err := h.Service.GetPolicy(ctx, policyID)
	if err != nil {
		return httptransport.PolicyResponse{}, err
	}
	return httptransport.PolicyResponse{Status: "success", Data: toPolicyPayload(policy)}, nil
}

func (h Handler) ListMyPoliciesHandler(ctx context.Context, userID string) (httptransport.PolicyListResponse, error) {
	policies, err := h.Service.GetMyPolicies(ctx, userID)
	if err != nil {
		return httptransport.PolicyListResponse{}, err
	}
	resp := httptransport.PolicyListResponse{Status: "success"}
	resp.Data.Policies = make([]httptransport.PolicyPayload, 0, len(policies))
	for _, policy := range policies {
		resp.Data.Policies = append(resp.Data.Policies, toPolicyPayload(policy))
	}
	return resp, nil
}

func (h Handler) SubmitClaimHandler(
	ctx context.Context,
	idempotencyKey string,
	userID string,
	policyID string,
	req httptransport.SubmitClaimRequest,
) (httptransport.ClaimResponse, error) {
	damage, err := entities.ParseDamageType(req.Damage)
	if err != nil {
		return httptransport.ClaimResponse{}, err
	}
	claim, err := h.Service.SubmitClaim(ctx, idempotencyKey, userID, ports.SubmitClaimInput{
		PolicyID:    strings.TrimSpace(policyID),
		Description: req.Description,
		Damage:      damage,
		DamageLabel: req.DamageLabel,
		Amount:      req.Amount,
		Evidence:    req.Evidence,
	})
	if err != nil {
		return httptransport.ClaimResponse{}, err
	}
	return httptransport.ClaimResponse{Status: "success", Data: toClaimPayload(claim)}, nil
}

func (h Handler) ProcessClaimHandler(
	ctx context.Context,
	userID string,
	policyID string,
	claimID string,
	req httptransport.ProcessClaimRequest,
) (httptransport.ClaimResponse, error) {
	claim, err := h.Service.ProcessClaim(ctx, userID, policyID, claimID, req.Approved)
	if err != nil {
		return httptransport.ClaimResponse{}, err
	}
	return httptransport.ClaimResponse{Status: "success", Data: toClaimPayload(claim)}, nil
}

func (h Handler) PayPremiumHandler(ctx context.Context, userID string, policyID string) (httptransport.PaymentResponse, error) {
	ack, err := h.Service.PayPremium(ctx, userID, policyID)
	if err != nil {
		return httptransport.PaymentResponse{}, err
	}
	resp := httptransport.PaymentResponse{Status: "success"}
	resp.Data.Reference = ack.Reference
	resp.Data.PolicyID = ack.PolicyID
	resp.Data.Amount = ack.Amount
	resp.Data.ProcessedAt = ack.ProcessedAt.UTC().Format(time.RFC3339)
	return resp, nil
}

func (h Handler) RenewPolicyHandler(ctx context.Context, userID string, policyID string) (httptransport.PolicyResponse, error) {
	policy, err := h.Service.RenewPolicy(ctx, userID, policyID)
	if err != nil {
		return httptransport.PolicyResponse{}, err
	}
	return httptransport.PolicyResponse{Status: "success", Data: toPolicyPayload(policy)}, nil
}

func (h Handler) CancelPolicyHandler(ctx context.Context, userID string, policyID string) (httptransport.PolicyResponse, error) {
	policy, err := h.Service.CancelPolicy(ctx, userID, policyID)
	if err != nil {
		return httptransport.PolicyResponse{}, err
	}
	return httptransport.PolicyResponse{Status: "success", Data: toPolicyPayload(policy)}, nil
}

func toCreatePolicyInput(req httptransport.CreatePolicyRequest) (ports.CreatePolicyInput, error) {
	product, err := entities.ParseProductType(req.Product)
	if err != nil {
		return ports.CreatePolicyInput{}, err
	}
	purchaseDate, err := time.Parse(time.RFC3339, strings.TrimSpace(req.PurchaseDate))
	if err != nil {
		return ports.CreatePolicyInput{}, domainerrors.ErrInvalidPolicyRequest
	}
	return ports.CreatePolicyInput{
		Product:        product,
		ProductLabel:   req.ProductLabel,
		ProductName:    req.ProductName,
		ProductModel:   req.ProductModel,
		SerialNumber:   req.SerialNumber,
		PurchaseDate:   purchaseDate,
		PurchasePrice:  req.PurchasePrice,
		CoverageAmount: req.CoverageAmount,
	}, nil
}

func toPolicyPayload(policy entities.Policy) httptransport.PolicyPayload {
	claims := make([]httptransport.ClaimPayload, 0, len(policy.Claims))
	for _, claim := range policy.Claims {
		claims = append(claims, toClaimPayload(claim))
	}
	return httptransport.PolicyPayload{
		PolicyID:       policy.PolicyID,
		OwnerID:        policy.OwnerID,
		Product:        string(policy.Product),
		ProductLabel:   policy.ProductLabel,
		ProductName:    policy.Details.Name,
		ProductModel:   policy.Details.Model,
		SerialNumber:   policy.Details.SerialNumber,
		PurchaseDate:   policy.Details.PurchaseDate.UTC().Format(time.RFC3339),
		PurchasePrice:  policy.Details.PurchasePrice,
		CoverageStart:  policy.Coverage.StartAt.UTC().Format(time.RFC3339),
		CoverageEnd:    policy.Coverage.EndAt.UTC().Format(time.RFC3339),
		CoverageAmount: policy.Coverage.Amount,
		MonthlyPremium: policy.Coverage.MonthlyPremium,
		Status:         string(policy.Status),
		Claims:         claims,
		CreatedAt:      policy.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toClaimPayload(claim entities.Claim) httptransport.ClaimPayload {
	payload := httptransport.ClaimPayload{
		ClaimID:     claim.ClaimID,
		PolicyID:    claim.PolicyID,
		Description: claim.Description,
		Damage:      string(claim.Damage),
		DamageLabel: claim.DamageLabel,
		Amount:      claim.Amount,
		Evidence:    claim.Evidence,
		Status:      string(claim.Status),
		SubmittedAt: claim.SubmittedAt.UTC().Format(time.RFC3339),
	}
	if claim.ResolvedAt != nil {
		payload.ResolvedAt = claim.ResolvedAt.UTC().Format(time.RFC3339)
	}
	return payload
}
