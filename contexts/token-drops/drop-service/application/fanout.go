package application

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dropcover/contexts/token-drops/drop-service/domain/entities"
	"dropcover/contexts/token-drops/drop-service/ports"
)

const (
	topicDropCreated         = "drops.drop.created"
	topicDropActivated       = "drops.drop.activated"
	topicNotificationCreated = "drops.notification.created"
)

// fanOut scans every profile and writes a notification record for each match.
// It is a best-effort broadcast: failures for one recipient are logged and do
// not stop the rest, and nothing is retried. The triggering drop write is
// already durable when this runs.
func (s Service) fanOut(ctx context.Context, drop entities.TokenDrop) {
	logger := resolveLogger(s.Logger)
	profiles, err := s.Profiles.ListProfiles(ctx)
	if err != nil {
		logger.Error("fan-out profile scan failed",
			"event", "fanout_scan_failed",
			"module", "token-drops/drop-service",
			"layer", "application",
			"drop_id", drop.DropID,
			"error", err.Error(),
		)
		return
	}

	matched := 0
	for _, profile := range profiles {
		if !profile.Preference.Matches(drop.TokenSymbol, drop.Network) {
			continue
		}
		matched++
		s.appendNotification(ctx, entities.Notification{
			UserID:    profile.UserID,
			DropID:    drop.DropID,
			Title:     "New drop: " + drop.Name,
			Message:   fmt.Sprintf("%s is dropping on %s.", drop.TokenSymbol, drop.Network),
			CreatedAt: s.now(),
		})
	}

	logger.Info("drop fan-out completed",
		"event", "fanout_completed",
		"module", "token-drops/drop-service",
		"layer", "application",
		"drop_id", drop.DropID,
		"profiles_scanned", len(profiles),
		"matched", matched,
	)
}

// appendNotification writes one inbox record and announces it on the bus for
// the delivery consumer. Record creation is the guarantee; the bus publish is
// best-effort.
func (s Service) appendNotification(ctx context.Context, notification entities.Notification) {
	logger := resolveLogger(s.Logger)
	created, err := s.Notifications.AppendNotification(ctx, notification)
	if err != nil {
		logger.Error("notification write failed",
			"event", "notification_write_failed",
			"module", "token-drops/drop-service",
			"layer", "application",
			"user_id", notification.UserID,
			"drop_id", notification.DropID,
			"error", err.Error(),
		)
		return
	}

	envelope, err := s.newEnvelope(ctx, "notification.created", "user_id", created.UserID, map[string]any{
		"notification_id": created.NotificationID,
		"user_id":         created.UserID,
		"drop_id":         created.DropID,
		"title":           created.Title,
	})
	if err != nil {
		logger.Warn("notification envelope build failed",
			"event", "notification_envelope_failed",
			"module", "token-drops/drop-service",
			"layer", "application",
			"notification_id", created.NotificationID,
			"error", err.Error(),
		)
		return
	}
	s.publish(ctx, topicNotificationCreated, envelope)
}

func (s Service) publishDropEvent(ctx context.Context, topic string, drop entities.TokenDrop) {
	eventType := "drop.created"
	if topic == topicDropActivated {
		eventType = "drop.activated"
	}
	envelope, err := s.newEnvelope(ctx, eventType, "drop_id", drop.DropID, map[string]any{
		"drop_id":      drop.DropID,
		"token_symbol": drop.TokenSymbol,
		"network":      drop.Network,
		"start_time":   drop.StartTime.UTC().Format(time.RFC3339),
		"is_active":    drop.IsActive,
	})
	if err != nil {
		resolveLogger(s.Logger).Warn("drop envelope build failed",
			"event", "drop_envelope_failed",
			"module", "token-drops/drop-service",
			"layer", "application",
			"drop_id", drop.DropID,
			"error", err.Error(),
		)
		return
	}
	s.publish(ctx, topic, envelope)
}

func (s Service) publish(ctx context.Context, topic string, envelope ports.EventEnvelope) {
	if s.Publisher == nil {
		return
	}
	if err := s.Publisher.Publish(ctx, topic, envelope); err != nil {
		resolveLogger(s.Logger).Warn("event publish failed",
			"event", "event_publish_failed",
			"module", "token-drops/drop-service",
			"layer", "application",
			"topic", topic,
			"event_id", envelope.EventID,
			"error", err.Error(),
		)
	}
}

func (s Service) newEnvelope(
	ctx context.Context,
	eventType string,
	partitionKeyPath string,
	partitionKey string,
	data map[string]any,
) (ports.EventEnvelope, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	eventID := ""
	if s.IDs != nil {
		eventID, err = s.IDs.NewID(ctx)
		if err != nil {
			return ports.EventEnvelope{}, err
		}
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       s.now(),
		SourceService:    "drop-service",
		SchemaVersion:    1,
		PartitionKeyPath: partitionKeyPath,
		PartitionKey:     partitionKey,
		Data:             payload,
	}, nil
}
