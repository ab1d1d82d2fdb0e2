package ports

import (
	"context"
	"time"

	"dropcover/contexts/token-drops/drop-service/domain/entities"

	contractsv1 "dropcover/contracts/gen/events/v1"
)

type Clock interface {
	Now() time.Time
}

// IDGenerator mints opaque identifiers for event envelopes.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type IdempotencyRecord struct {
	Key         string
	RequestHash string
	Payload     []byte
	ExpiresAt   time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string, now time.Time) (IdempotencyRecord, bool, error)
	Put(ctx context.Context, record IdempotencyRecord) error
}

type CreateDropInput struct {
	Name        string
	Description string
	TokenSymbol string
	Network     string
	TotalSupply float64
	Price       *float64
	StartTime   time.Time
	EndTime     *time.Time
	WebsiteURL  string
	ImageURL    string
}

// UpdateDropInput carries field-level partial updates. An unset Field leaves
// the stored value unchanged; a set-but-null Field clears optional values.
type UpdateDropInput struct {
	Name        Field[string]
	Description Field[string]
	TokenSymbol Field[string]
	Network     Field[string]
	TotalSupply Field[float64]
	Price       Field[float64]
	StartTime   Field[time.Time]
	EndTime     Field[time.Time]
	WebsiteURL  Field[string]
	ImageURL    Field[string]
	IsActive    Field[bool]
}

type ProfileUpdateInput struct {
	Preference   Field[entities.NotificationPreference]
	EmailEnabled Field[bool]
	PushEnabled  Field[bool]
	Email        Field[string]
}

// DropFilter narrows catalog listings. Zero values mean "no constraint".
type DropFilter struct {
	OnlyActive  bool
	TokenSymbol string
	Network     string
}

// DropRepository owns TokenDrop records. CreateDrop allocates the monotonic
// identifier under the same lock (or transaction) as the insert.
type DropRepository interface {
	CreateDrop(ctx context.Context, drop entities.TokenDrop) (entities.TokenDrop, error)
	UpdateDrop(ctx context.Context, drop entities.TokenDrop) (entities.TokenDrop, error)
	GetDrop(ctx context.Context, dropID string) (entities.TokenDrop, error)
	ListDrops(ctx context.Context, filter DropFilter) ([]entities.TokenDrop, error)
}

// SubscriptionRepository maps users to the set of drops they follow.
type SubscriptionRepository interface {
	// Subscribe reports whether a new entry was added; re-subscribing is a
	// no-op that returns false.
	Subscribe(ctx context.Context, userID string, dropID string) (bool, error)
	// Unsubscribe fails ErrNoSubscriptions when the user has no subscription
	// set at all; removing an absent entry from an existing set succeeds.
	Unsubscribe(ctx context.Context, userID string, dropID string) error
	ListSubscribedDropIDs(ctx context.Context, userID string) ([]string, error)
}

type ProfileRepository interface {
	GetProfile(ctx context.Context, userID string) (entities.UserProfile, error)
	SaveProfile(ctx context.Context, profile entities.UserProfile) (entities.UserProfile, error)
	ListProfiles(ctx context.Context) ([]entities.UserProfile, error)
}

// NotificationRepository is the per-user inbox. AppendNotification allocates
// the monotonic identifier under the store lock.
type NotificationRepository interface {
	AppendNotification(ctx context.Context, notification entities.Notification) (entities.Notification, error)
	GetNotification(ctx context.Context, notificationID string) (entities.Notification, error)
	// ListNotifications returns the caller's inbox newest-first. When
	// markAsRead is set, every unread record is flipped to read in the same
	// store operation; the returned snapshot reflects the pre-flip state.
	ListNotifications(ctx context.Context, userID string, markAsRead bool) ([]entities.Notification, error)
	MarkNotificationRead(ctx context.Context, notificationID string) (entities.Notification, error)
}

// EventEnvelope aliases the canonical contract envelope so adapters and the
// platform bus speak the same schema.
type EventEnvelope = contractsv1.Envelope

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}
