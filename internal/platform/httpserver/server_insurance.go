package httpserver

import (
	"errors"
	"net/http"
	"strings"

	insuranceerrors "dropcover/contexts/insurance/policy-service/domain/errors"
	insurancehttp "dropcover/contexts/insurance/policy-service/transport/http"
)

func writeInsuranceError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, insurancehttp.ErrorResponse{Code: code, Message: message})
}

func writeInsuranceDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, insuranceerrors.ErrPolicyNotFound),
		errors.Is(err, insuranceerrors.ErrClaimNotFound):
		writeInsuranceError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, insuranceerrors.ErrNotPolicyOwner):
		writeInsuranceError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, insuranceerrors.ErrInvalidPolicyRequest),
		errors.Is(err, insuranceerrors.ErrInvalidClaimRequest),
		errors.Is(err, insuranceerrors.ErrInvalidCoverage),
		errors.Is(err, insuranceerrors.ErrIdempotencyKeyRequired):
		writeInsuranceError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, insuranceerrors.ErrClaimExceedsCoverage):
		writeInsuranceError(w, http.StatusUnprocessableEntity, "claim_exceeds_coverage", err.Error())
	case errors.Is(err, insuranceerrors.ErrPolicyNotActive),
		errors.Is(err, insuranceerrors.ErrPolicyNotRenewable),
		errors.Is(err, insuranceerrors.ErrClaimNotOpen),
		errors.Is(err, insuranceerrors.ErrPolicyAlreadyExists),
		errors.Is(err, insuranceerrors.ErrIdempotencyConflict):
		writeInsuranceError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeInsuranceError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func requireInsuranceAuthorization(w http.ResponseWriter, r *http.Request) bool {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		writeInsuranceError(w, http.StatusUnauthorized, "unauthorized", "Authorization bearer token is required")
		return false
	}
	return true
}

func requireInsuranceRequestID(w http.ResponseWriter, r *http.Request) bool {
	if strings.TrimSpace(r.Header.Get("X-Request-Id")) == "" {
		writeInsuranceError(w, http.StatusBadRequest, "missing_request_id", "X-Request-Id header is required")
		return false
	}
	return true
}

func requireInsuranceUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		writeInsuranceError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return "", false
	}
	return userID, true
}

func requireInsuranceIdempotencyKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	idempotencyKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if idempotencyKey == "" {
		writeInsuranceError(w, http.StatusBadRequest, "idempotency_key_required", "Idempotency-Key header is required")
		return "", false
	}
	return idempotencyKey, true
}

func (s *Server) handleCreatePolicy(w http.ResponseWriter, r *http.Request) {
	if !requireInsuranceAuthorization(w, r) || !requireInsuranceRequestID(w, r) {
		return
	}
	userID, ok := requireInsuranceUser(w, r)
	if !ok {
		return
	}
	idempotencyKey, ok := requireInsuranceIdempotencyKey(w, r)
	if !ok {
		return
	}

	var req insurancehttp.CreatePolicyRequest
	if !s.decodeJSON(w, r, &req, writeInsuranceError) {
		return
	}
	resp, err := s.insurance.Handler.CreatePolicyHandler(r.Context(), idempotencyKey, userID, req)
	if err != nil {
		writeInsuranceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListMyPolicies(w http.ResponseWriter, r *http.Request) {
	if !requireInsuranceAuthorization(w, r) {
		return
	}
	userID, ok := requireInsuranceUser(w, r)
	if !ok {
		return
	}

	resp, err := s.insurance.Handler.ListMyPoliciesHandler(r.Context(), userID)
	if err != nil {
		writeInsuranceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetPolicy(w http.ResponseWriter, r *http.Request) {
	if !requireInsuranceAuthorization(w, r) {
		return
	}

	resp, err := s.insurance.Handler.GetPolicyHandler(r.Context(), r.PathValue("policy_id"))
	if err != nil {
		writeInsuranceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSubmitClaim(w http.ResponseWriter, r *http.Request) {
	if !requireInsuranceAuthorization(w, r) || !requireInsuranceRequestID(w, r) {
		return
	}
	userID, ok := requireInsuranceUser(w, r)
	if !ok {
		return
	}
	idempotencyKey, ok := requireInsuranceIdempotencyKey(w, r)
	if !ok {
		return
	}

	var req insurancehttp.SubmitClaimRequest
	if !s.decodeJSON(w, r, &req, writeInsuranceError) {
		return
	}
	resp, err := s.insurance.Handler.SubmitClaimHandler(r.Context(), idempotencyKey, userID, r.PathValue("policy_id"), req)
	if err != nil {
		writeInsuranceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleProcessClaim(w http.ResponseWriter, r *http.Request) {
	if !requireInsuranceAuthorization(w, r) || !requireInsuranceRequestID(w, r) {
		return
	}
	userID, ok := requireInsuranceUser(w, r)
	if !ok {
		return
	}

	var req insurancehttp.ProcessClaimRequest
	if !s.decodeJSON(w, r, &req, writeInsuranceError) {
		return
	}
	resp, err := s.insurance.Handler.ProcessClaimHandler(r.Context(), userID, r.PathValue("policy_id"), r.PathValue("claim_id"), req)
	if err != nil {
		writeInsuranceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePayPremium(w http.ResponseWriter, r *http.Request) {
	if !requireInsuranceAuthorization(w, r) || !requireInsuranceRequestID(w, r) {
		return
	}
	userID, ok := requireInsuranceUser(w, r)
	if !ok {
		return
	}

	resp, err := s.insurance.Handler.PayPremiumHandler(r.Context(), userID, r.PathValue("policy_id"))
	if err != nil {
		writeInsuranceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRenewPolicy(w http.ResponseWriter, r *http.Request) {
	if !requireInsuranceAuthorization(w, r) || !requireInsuranceRequestID(w, r) {
		return
	}
	userID, ok := requireInsuranceUser(w, r)
	if !ok {
		return
	}

	resp, err := s.insurance.Handler.RenewPolicyHandler(r.Context(), userID, r.PathValue("policy_id"))
	if err != nil {
		writeInsuranceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCancelPolicy(w http.ResponseWriter, r *http.Request) {
	if !requireInsuranceAuthorization(w, r) || !requireInsuranceRequestID(w, r) {
		return
	}
	userID, ok := requireInsuranceUser(w, r)
	if !ok {
		return
	}

	resp, err := s.insurance.Handler.CancelPolicyHandler(r.Context(), userID, r.PathValue("policy_id"))
	if err != nil {
		writeInsuranceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
