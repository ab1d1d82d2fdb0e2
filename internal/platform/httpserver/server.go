package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	policyservice "dropcover/contexts/insurance/policy-service"
	dropservice "dropcover/contexts/token-drops/drop-service"
	_ "dropcover/internal/platform/httpserver/docs"
	"dropcover/internal/platform/metrics"
	"dropcover/internal/platform/ratelimiter"

	httpSwagger "github.com/swaggo/http-swagger"
)

type Server struct {
	mux       *http.ServeMux
	logger    *slog.Logger
	addr      string
	insurance policyservice.Module
	drops     dropservice.Module
	limiter   *ratelimiter.MapLimiter
}

func New(
	insurance policyservice.Module,
	drops dropservice.Module,
	limiter *ratelimiter.MapLimiter,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:       http.NewServeMux(),
		logger:    logger,
		addr:      addr,
		insurance: insurance,
		drops:     drops,
		limiter:   limiter,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, metrics.InstrumentHandler(s.withRateLimit(s.mux)))
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	s.mux.Handle("GET /metrics", metrics.Handler())

	s.mux.HandleFunc("POST /api/insurance/v1/policies", s.handleCreatePolicy)
	s.mux.HandleFunc("GET /api/insurance/v1/policies", s.handleListMyPolicies)
	s.mux.HandleFunc("GET /api/insurance/v1/policies/{policy_id}", s.handleGetPolicy)
	s.mux.HandleFunc("POST /api/insurance/v1/policies/{policy_id}/claims", s.handleSubmitClaim)
	s.mux.HandleFunc("POST /api/insurance/v1/policies/{policy_id}/claims/{claim_id}/process", s.handleProcessClaim)
	s.mux.HandleFunc("POST /api/insurance/v1/policies/{policy_id}/pay", s.handlePayPremium)
	s.mux.HandleFunc("POST /api/insurance/v1/policies/{policy_id}/renew", s.handleRenewPolicy)
	s.mux.HandleFunc("POST /api/insurance/v1/policies/{policy_id}/cancel", s.handleCancelPolicy)

	s.mux.HandleFunc("POST /api/drops/v1/drops", s.handleCreateDrop)
	s.mux.HandleFunc("PATCH /api/drops/v1/drops/{drop_id}", s.handleUpdateDrop)
	s.mux.HandleFunc("GET /api/drops/v1/drops/active", s.handleListActiveDrops)
	s.mux.HandleFunc("GET /api/drops/v1/drops/upcoming", s.handleListUpcomingDrops)
	s.mux.HandleFunc("GET /api/drops/v1/drops/network/{network}", s.handleListDropsByNetwork)
	s.mux.HandleFunc("GET /api/drops/v1/drops/token/{token_symbol}", s.handleListDropsByToken)
	s.mux.HandleFunc("GET /api/drops/v1/drops/{drop_id}", s.handleGetDrop)
	s.mux.HandleFunc("POST /api/drops/v1/drops/{drop_id}/subscribe", s.handleSubscribe)
	s.mux.HandleFunc("POST /api/drops/v1/drops/{drop_id}/unsubscribe", s.handleUnsubscribe)
	s.mux.HandleFunc("GET /api/drops/v1/subscriptions", s.handleListMySubscriptions)
	s.mux.HandleFunc("PUT /api/drops/v1/profile", s.handleUpdateProfile)
	s.mux.HandleFunc("GET /api/drops/v1/profile", s.handleGetMyProfile)
	s.mux.HandleFunc("GET /api/drops/v1/notifications", s.handleListMyNotifications)
	s.mux.HandleFunc("POST /api/drops/v1/notifications/{notification_id}/read", s.handleMarkNotificationRead)
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimSpace(r.Header.Get("X-User-Id"))
		if key == "" {
			key = resolveClientIP(r)
		}
		if !s.limiter.Allow(key, time.Now()) {
			writeJSON(w, http.StatusTooManyRequests, map[string]string{
				"code":    "rate_limited",
				"message": "too many requests",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) decodeJSON(
	w http.ResponseWriter,
	r *http.Request,
	dst any,
	writeErr func(http.ResponseWriter, int, string, string),
) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func resolveClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	return r.RemoteAddr
}
