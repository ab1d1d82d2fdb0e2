package workers

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"dropcover/contexts/token-drops/drop-service/domain/entities"
	domainerrors "dropcover/contexts/token-drops/drop-service/domain/errors"
	"dropcover/contexts/token-drops/drop-service/ports"
)

type capturingSubscriber struct {
	topic   string
	group   string
	handler func(context.Context, ports.EventEnvelope) error
}

func (s *capturingSubscriber) Subscribe(
	_ context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, ports.EventEnvelope) error,
) error {
	s.topic = topic
	s.group = consumerGroup
	s.handler = handler
	return nil
}

type staticProfiles struct {
	byUser map[string]entities.UserProfile
}

func (s staticProfiles) GetProfile(_ context.Context, userID string) (entities.UserProfile, error) {
	profile, ok := s.byUser[userID]
	if !ok {
		return entities.UserProfile{}, domainerrors.ErrProfileNotFound
	}
	return profile, nil
}

func (s staticProfiles) SaveProfile(_ context.Context, profile entities.UserProfile) (entities.UserProfile, error) {
	return profile, nil
}

func (s staticProfiles) ListProfiles(_ context.Context) ([]entities.UserProfile, error) {
	profiles := make([]entities.UserProfile, 0, len(s.byUser))
	for _, profile := range s.byUser {
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

func notificationEvent(t *testing.T, userID string) ports.EventEnvelope {
	t.Helper()
	data, err := json.Marshal(notificationCreatedPayload{
		NotificationID: "ntf_1",
		UserID:         userID,
		DropID:         "drop_1",
		Title:          "New drop: Genesis Drop",
	})
	if err != nil {
		t.Fatalf("marshal payload failed: %v", err)
	}
	return ports.EventEnvelope{
		EventID:    "evt_1",
		EventType:  "notification.created",
		OccurredAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Data:       data,
	}
}

func TestDeliveryConsumerSubscribesToNotificationTopic(t *testing.T) {
	subscriber := &capturingSubscriber{}
	consumer := DeliveryConsumer{
		Profiles:   staticProfiles{},
		Subscriber: subscriber,
	}

	if err := consumer.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if subscriber.topic != "drops.notification.created" || subscriber.group != "drop-delivery" {
		t.Fatalf("unexpected subscription %s/%s", subscriber.topic, subscriber.group)
	}
}

func TestDeliveryConsumerToleratesMissingProfile(t *testing.T) {
	subscriber := &capturingSubscriber{}
	consumer := DeliveryConsumer{
		Profiles:   staticProfiles{},
		Subscriber: subscriber,
	}
	if err := consumer.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	if err := subscriber.handler(context.Background(), notificationEvent(t, "ghost_1")); err != nil {
		t.Fatalf("expected missing profile to be tolerated, got %v", err)
	}
}

func TestDeliveryConsumerHandlesEnabledChannels(t *testing.T) {
	subscriber := &capturingSubscriber{}
	consumer := DeliveryConsumer{
		Profiles: staticProfiles{byUser: map[string]entities.UserProfile{
			"fan_1": {
				UserID:       "fan_1",
				EmailEnabled: true,
				PushEnabled:  true,
				Email:        "fan@example.com",
			},
		}},
		Subscriber: subscriber,
	}
	if err := consumer.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	if err := subscriber.handler(context.Background(), notificationEvent(t, "fan_1")); err != nil {
		t.Fatalf("handle failed: %v", err)
	}
}

func TestDeliveryConsumerRejectsMalformedPayload(t *testing.T) {
	subscriber := &capturingSubscriber{}
	consumer := DeliveryConsumer{
		Profiles:   staticProfiles{},
		Subscriber: subscriber,
	}
	if err := consumer.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	event := ports.EventEnvelope{EventID: "evt_2", Data: json.RawMessage(`{`)}
	if err := subscriber.handler(context.Background(), event); err == nil {
		t.Fatalf("expected decode error for malformed payload")
	}
}
