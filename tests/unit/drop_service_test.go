package unit

import (
	"context"
	"errors"
	"testing"

	dropservice "dropcover/contexts/token-drops/drop-service"
	domainerrors "dropcover/contexts/token-drops/drop-service/domain/errors"
	"dropcover/contexts/token-drops/drop-service/ports"
	httptransport "dropcover/contexts/token-drops/drop-service/transport/http"
)

func genesisDropRequest() httptransport.CreateDropRequest {
	return httptransport.CreateDropRequest{
		Name:        "Genesis Drop",
		Description: "first community mint",
		TokenSymbol: "GEN",
		Network:     "ethereum",
		TotalSupply: 10000,
		StartTime:   "2025-06-01T00:00:00Z",
	}
}

func TestDropServiceCreateDropIdempotency(t *testing.T) {
	module := dropservice.NewInMemoryModule(nil)
	ctx := context.Background()

	first, err := module.Handler.CreateDropHandler(ctx, "idem-drop-create-1", "creator_900", genesisDropRequest())
	if err != nil {
		t.Fatalf("first create drop failed: %v", err)
	}
	second, err := module.Handler.CreateDropHandler(ctx, "idem-drop-create-1", "creator_900", genesisDropRequest())
	if err != nil {
		t.Fatalf("replayed create drop failed: %v", err)
	}
	if first.Data.DropID != second.Data.DropID {
		t.Fatalf("expected idempotent replay to return same drop id, got %s and %s", first.Data.DropID, second.Data.DropID)
	}
	if !first.Data.IsActive {
		t.Fatalf("expected new drop to be active")
	}

	changed := genesisDropRequest()
	changed.TotalSupply = 500
	_, err = module.Handler.CreateDropHandler(ctx, "idem-drop-create-1", "creator_900", changed)
	if !errors.Is(err, domainerrors.ErrIdempotencyConflict) {
		t.Fatalf("expected idempotency conflict, got %v", err)
	}
}

func TestDropServiceUpdateDropCreatorGuardAndPartialFields(t *testing.T) {
	module := dropservice.NewInMemoryModule(nil)
	ctx := context.Background()

	drop, err := module.Handler.CreateDropHandler(ctx, "idem-drop-update-1", "creator_901", genesisDropRequest())
	if err != nil {
		t.Fatalf("create drop failed: %v", err)
	}

	_, err = module.Handler.UpdateDropHandler(ctx, "intruder_1", drop.Data.DropID, httptransport.UpdateDropRequest{
		Name: ports.FieldOf("Hijacked"),
	})
	if !errors.Is(err, domainerrors.ErrNotDropCreator) {
		t.Fatalf("expected creator guard, got %v", err)
	}

	updated, err := module.Handler.UpdateDropHandler(ctx, "creator_901", drop.Data.DropID, httptransport.UpdateDropRequest{
		Description: ports.FieldOf("updated description"),
	})
	if err != nil {
		t.Fatalf("update drop failed: %v", err)
	}
	if updated.Data.Description != "updated description" {
		t.Fatalf("expected description to change, got %q", updated.Data.Description)
	}
	if updated.Data.Name != "Genesis Drop" || updated.Data.TotalSupply != 10000 {
		t.Fatalf("expected untouched fields to persist, got %+v", updated.Data)
	}
}

func TestDropServiceFanOutWritesNotificationForMatchingProfile(t *testing.T) {
	module := dropservice.NewInMemoryModule(nil)
	ctx := context.Background()

	_, err := module.Handler.UpdateProfileHandler(ctx, "fan_1", httptransport.UpdateProfileRequest{
		Preference: ports.FieldOf(httptransport.PreferencePayload{
			Kind:   "specific_tokens",
			Tokens: []string{"GEN"},
		}),
	})
	if err != nil {
		t.Fatalf("profile setup failed: %v", err)
	}

	if _, err := module.Handler.CreateDropHandler(ctx, "idem-drop-fanout-1", "creator_902", genesisDropRequest()); err != nil {
		t.Fatalf("create drop failed: %v", err)
	}

	inbox, err := module.Handler.ListMyNotificationsHandler(ctx, "fan_1", false)
	if err != nil {
		t.Fatalf("list notifications failed: %v", err)
	}
	if len(inbox.Data.Notifications) != 1 || inbox.Data.UnreadCount != 1 {
		t.Fatalf("expected one unread notification, got %+v", inbox.Data)
	}

	other := genesisDropRequest()
	other.TokenSymbol = "XYZ"
	other.Network = "solana"
	if _, err := module.Handler.CreateDropHandler(ctx, "idem-drop-fanout-2", "creator_902", other); err != nil {
		t.Fatalf("create second drop failed: %v", err)
	}

	after, err := module.Handler.ListMyNotificationsHandler(ctx, "fan_1", false)
	if err != nil {
		t.Fatalf("second list failed: %v", err)
	}
	if len(after.Data.Notifications) != 1 {
		t.Fatalf("expected non-matching drop to be skipped, got %d notifications", len(after.Data.Notifications))
	}
}

func TestDropServiceSubscriptionLifecycle(t *testing.T) {
	module := dropservice.NewInMemoryModule(nil)
	ctx := context.Background()

	drop, err := module.Handler.CreateDropHandler(ctx, "idem-drop-sub-1", "creator_903", genesisDropRequest())
	if err != nil {
		t.Fatalf("create drop failed: %v", err)
	}

	if _, err := module.Handler.SubscribeHandler(ctx, "user_1", drop.Data.DropID); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	if _, err := module.Handler.SubscribeHandler(ctx, "user_1", drop.Data.DropID); err != nil {
		t.Fatalf("duplicate subscribe should be a no-op, got %v", err)
	}

	subs, err := module.Handler.ListMySubscriptionsHandler(ctx, "user_1")
	if err != nil {
		t.Fatalf("list subscriptions failed: %v", err)
	}
	if len(subs.Data.Drops) != 1 || subs.Data.Drops[0].DropID != drop.Data.DropID {
		t.Fatalf("unexpected subscriptions %+v", subs.Data.Drops)
	}

	inbox, err := module.Handler.ListMyNotificationsHandler(ctx, "user_1", false)
	if err != nil {
		t.Fatalf("list notifications failed: %v", err)
	}
	if len(inbox.Data.Notifications) != 1 {
		t.Fatalf("expected single confirmation notification, got %d", len(inbox.Data.Notifications))
	}

	if _, err := module.Handler.UnsubscribeHandler(ctx, "user_1", drop.Data.DropID); err != nil {
		t.Fatalf("unsubscribe failed: %v", err)
	}
	if _, err := module.Handler.UnsubscribeHandler(ctx, "stranger_1", drop.Data.DropID); !errors.Is(err, domainerrors.ErrNoSubscriptions) {
		t.Fatalf("expected no-subscriptions error, got %v", err)
	}
}

func TestDropServiceMarkAsReadReturnsPreFlipCount(t *testing.T) {
	module := dropservice.NewInMemoryModule(nil)
	ctx := context.Background()

	drop, err := module.Handler.CreateDropHandler(ctx, "idem-drop-read-1", "creator_904", genesisDropRequest())
	if err != nil {
		t.Fatalf("create drop failed: %v", err)
	}
	if _, err := module.Handler.SubscribeHandler(ctx, "reader_1", drop.Data.DropID); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	first, err := module.Handler.ListMyNotificationsHandler(ctx, "reader_1", true)
	if err != nil {
		t.Fatalf("list with mark failed: %v", err)
	}
	if first.Data.UnreadCount != 1 {
		t.Fatalf("expected pre-flip unread count 1, got %d", first.Data.UnreadCount)
	}

	second, err := module.Handler.ListMyNotificationsHandler(ctx, "reader_1", true)
	if err != nil {
		t.Fatalf("second list failed: %v", err)
	}
	if second.Data.UnreadCount != 0 {
		t.Fatalf("expected unread count 0 after flip, got %d", second.Data.UnreadCount)
	}
}
