package dropservice

import (
	"log/slog"
	"time"

	httpadapter "dropcover/contexts/token-drops/drop-service/adapters/http"
	"dropcover/contexts/token-drops/drop-service/adapters/memory"
	"dropcover/contexts/token-drops/drop-service/application"
	"dropcover/contexts/token-drops/drop-service/ports"
)

// Module is the composition surface for the token-drops vertical.
// Runtime wiring should consume Handler; Store is exposed for tests/inspection.
type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Drops          ports.DropRepository
	Subscriptions  ports.SubscriptionRepository
	Profiles       ports.ProfileRepository
	Notifications  ports.NotificationRepository
	Idempotency    ports.IdempotencyStore
	Publisher      ports.EventPublisher
	IDs            ports.IDGenerator
	Clock          ports.Clock
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

// NewModule wires the drop catalog, subscription registry, profile store and
// notification fan-out against explicit ports.
func NewModule(deps Dependencies) Module {
	service := application.Service{
		Drops:          deps.Drops,
		Subscriptions:  deps.Subscriptions,
		Profiles:       deps.Profiles,
		Notifications:  deps.Notifications,
		Idempotency:    deps.Idempotency,
		Publisher:      deps.Publisher,
		IDs:            deps.IDs,
		Clock:          deps.Clock,
		IdempotencyTTL: deps.IdempotencyTTL,
		Logger:         deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{Service: service, Logger: deps.Logger},
		Service: service,
	}
}

// NewInMemoryModule wires the vertical against in-memory adapters. Publisher
// stays nil unless the caller provides one through NewModule.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Drops:          store,
		Subscriptions:  store,
		Profiles:       store,
		Notifications:  store,
		Idempotency:    store,
		IDs:            memory.UUIDGenerator{},
		Clock:          store,
		IdempotencyTTL: 7 * 24 * time.Hour,
		Logger:         logger,
	})
	module.Store = store
	return module
}
