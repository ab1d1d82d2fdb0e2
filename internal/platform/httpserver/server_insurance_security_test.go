package httpserver

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	policyservice "dropcover/contexts/insurance/policy-service"
	dropservice "dropcover/contexts/token-drops/drop-service"
)

func newTestServer() *Server {
	return New(
		policyservice.NewInMemoryModule(slog.Default()),
		dropservice.NewInMemoryModule(slog.Default()),
		nil,
		slog.Default(),
		":0",
	)
}

func createPolicyBody() []byte {
	return []byte(`{
		"product": "phone",
		"product_name": "Pixel 9",
		"product_model": "GA05570",
		"serial_number": "SN-1001",
		"purchase_date": "2025-06-01T00:00:00Z",
		"purchase_price": 900,
		"coverage_amount": 900
	}`)
}

func TestPolicyCreateRequiresAuthorization(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/insurance/v1/policies", bytes.NewReader(createPolicyBody()))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", "req-pol-1")
	req.Header.Set("X-User-Id", "user-1")
	req.Header.Set("Idempotency-Key", "idem-pol-1")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestPolicyCreateRequiresIdempotencyKey(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/insurance/v1/policies", bytes.NewReader(createPolicyBody()))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer token")
	req.Header.Set("X-Request-Id", "req-pol-2")
	req.Header.Set("X-User-Id", "user-1")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestPolicyCreateSuccess(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/insurance/v1/policies", bytes.NewReader(createPolicyBody()))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer token")
	req.Header.Set("X-Request-Id", "req-pol-3")
	req.Header.Set("X-User-Id", "user-1")
	req.Header.Set("Idempotency-Key", "idem-pol-3")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			PolicyID string `json:"policy_id"`
			Status   string `json:"status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	if resp.Status != "success" || resp.Data.PolicyID == "" || resp.Data.Status != "active" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestPolicyListRequiresUser(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/insurance/v1/policies", nil)
	req.Header.Set("Authorization", "Bearer token")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestPolicyGetUnknownReturnsNotFound(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/insurance/v1/policies/pol_404", nil)
	req.Header.Set("Authorization", "Bearer token")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestSubmitClaimForOtherOwnerIsForbidden(t *testing.T) {
	server := newTestServer()

	create := httptest.NewRequest(http.MethodPost, "/api/insurance/v1/policies", bytes.NewReader(createPolicyBody()))
	create.Header.Set("Content-Type", "application/json")
	create.Header.Set("Authorization", "Bearer token")
	create.Header.Set("X-Request-Id", "req-claim-1")
	create.Header.Set("X-User-Id", "owner-1")
	create.Header.Set("Idempotency-Key", "idem-claim-1")
	created := httptest.NewRecorder()
	server.mux.ServeHTTP(created, create)
	if created.Code != http.StatusCreated {
		t.Fatalf("policy setup failed: %d body=%s", created.Code, created.Body.String())
	}
	var policy struct {
		Data struct {
			PolicyID string `json:"policy_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(created.Body.Bytes(), &policy); err != nil {
		t.Fatalf("decode policy failed: %v", err)
	}

	body := []byte(`{"description":"cracked screen","damage":"physical","amount":200,"evidence":[]}`)
	claim := httptest.NewRequest(http.MethodPost, "/api/insurance/v1/policies/"+policy.Data.PolicyID+"/claims", bytes.NewReader(body))
	claim.Header.Set("Content-Type", "application/json")
	claim.Header.Set("Authorization", "Bearer token")
	claim.Header.Set("X-Request-Id", "req-claim-2")
	claim.Header.Set("X-User-Id", "intruder-1")
	claim.Header.Set("Idempotency-Key", "idem-claim-2")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, claim)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestPayPremiumRequiresRequestID(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/insurance/v1/policies/pol_1/pay", nil)
	req.Header.Set("Authorization", "Bearer token")
	req.Header.Set("X-User-Id", "user-1")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}
