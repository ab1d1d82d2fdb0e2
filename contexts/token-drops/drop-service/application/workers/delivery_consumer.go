package workers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	domainerrors "dropcover/contexts/token-drops/drop-service/domain/errors"
	"dropcover/contexts/token-drops/drop-service/ports"
)

const (
	notificationCreatedTopic = "drops.notification.created"
	deliveryConsumerGroup    = "drop-delivery"
)

// DeliveryConsumer drains notification.created events and dispatches them to
// the channels the recipient enabled. Actual channel transports are owned by
// external collaborators; this consumer is the seam where they attach.
type DeliveryConsumer struct {
	Profiles   ports.ProfileRepository
	Subscriber ports.EventSubscriber
	Logger     *slog.Logger
}

type notificationCreatedPayload struct {
	NotificationID string `json:"notification_id"`
	UserID         string `json:"user_id"`
	DropID         string `json:"drop_id"`
	Title          string `json:"title"`
}

func (c DeliveryConsumer) Start(ctx context.Context) error {
	return c.Subscriber.Subscribe(ctx, notificationCreatedTopic, deliveryConsumerGroup, c.handle)
}

func (c DeliveryConsumer) handle(ctx context.Context, event ports.EventEnvelope) error {
	logger := c.logger()

	var payload notificationCreatedPayload
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		logger.Error("notification event decode failed",
			"event", "notification_delivery_decode_failed",
			"module", "token-drops/drop-service",
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return err
	}

	profile, err := c.Profiles.GetProfile(ctx, payload.UserID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrProfileNotFound) {
			// No channel flags to honor; the inbox record already exists.
			return nil
		}
		return err
	}

	if profile.EmailEnabled && profile.Email != "" {
		logger.Info("notification email dispatched",
			"event", "notification_email_dispatched",
			"module", "token-drops/drop-service",
			"layer", "worker",
			"notification_id", payload.NotificationID,
			"user_id", payload.UserID,
			"drop_id", payload.DropID,
		)
	}
	if profile.PushEnabled {
		logger.Info("notification push dispatched",
			"event", "notification_push_dispatched",
			"module", "token-drops/drop-service",
			"layer", "worker",
			"notification_id", payload.NotificationID,
			"user_id", payload.UserID,
			"drop_id", payload.DropID,
		)
	}
	return nil
}

func (c DeliveryConsumer) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}
