package policyservice

import (
	"log/slog"
	"time"

	httpadapter "dropcover/contexts/insurance/policy-service/adapters/http"
	"dropcover/contexts/insurance/policy-service/adapters/memory"
	"dropcover/contexts/insurance/policy-service/adapters/payment"
	"dropcover/contexts/insurance/policy-service/application"
	"dropcover/contexts/insurance/policy-service/ports"
)

// Module is the composition surface for the insurance vertical.
// Runtime wiring should consume Handler; Store is exposed for tests/inspection.
type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Policies       ports.PolicyRepository
	Payments       ports.PaymentProcessor
	Idempotency    ports.IdempotencyStore
	Clock          ports.Clock
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

// NewModule wires the policy ledger use-cases against explicit ports.
func NewModule(deps Dependencies) Module {
	service := application.Service{
		Policies:       deps.Policies,
		Payments:       deps.Payments,
		Idempotency:    deps.Idempotency,
		Clock:          deps.Clock,
		IdempotencyTTL: deps.IdempotencyTTL,
		Logger:         deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{Service: service, Logger: deps.Logger},
		Service: service,
	}
}

// NewInMemoryModule wires the insurance vertical against in-memory adapters
// and the acknowledging payment stub.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Policies:       store,
		Payments:       payment.AckProcessor{Logger: logger},
		Idempotency:    store,
		Clock:          store,
		IdempotencyTTL: 7 * 24 * time.Hour,
		Logger:         logger,
	})
	module.Store = store
	return module
}
