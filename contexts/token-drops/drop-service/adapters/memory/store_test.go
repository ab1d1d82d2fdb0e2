package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"dropcover/contexts/token-drops/drop-service/domain/entities"
	domainerrors "dropcover/contexts/token-drops/drop-service/domain/errors"
	"dropcover/contexts/token-drops/drop-service/ports"
)

func seedDrop(name string) entities.TokenDrop {
	now := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	return entities.TokenDrop{
		Name:        name,
		TokenSymbol: "ABC",
		Network:     "ethereum",
		TotalSupply: 1000,
		StartTime:   now,
		CreatedBy:   "creator_1",
		CreatedAt:   now,
		IsActive:    true,
	}
}

func TestStoreAssignsSequentialDropAndNotificationIDs(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	first, err := store.CreateDrop(ctx, seedDrop("one"))
	if err != nil {
		t.Fatalf("create first drop failed: %v", err)
	}
	second, err := store.CreateDrop(ctx, seedDrop("two"))
	if err != nil {
		t.Fatalf("create second drop failed: %v", err)
	}
	if first.DropID != "drop_1" || second.DropID != "drop_2" {
		t.Fatalf("expected drop_1 and drop_2, got %s and %s", first.DropID, second.DropID)
	}

	a, err := store.AppendNotification(ctx, entities.Notification{UserID: "user_1", DropID: first.DropID})
	if err != nil {
		t.Fatalf("append first notification failed: %v", err)
	}
	b, err := store.AppendNotification(ctx, entities.Notification{UserID: "user_2", DropID: second.DropID})
	if err != nil {
		t.Fatalf("append second notification failed: %v", err)
	}
	if a.NotificationID != "ntf_1" || b.NotificationID != "ntf_2" {
		t.Fatalf("expected ntf_1 and ntf_2, got %s and %s", a.NotificationID, b.NotificationID)
	}
}

func TestStoreListDropsFilters(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	if _, err := store.CreateDrop(ctx, seedDrop("eth drop")); err != nil {
		t.Fatalf("create drop failed: %v", err)
	}
	solana := seedDrop("sol drop")
	solana.TokenSymbol = "XYZ"
	solana.Network = "solana"
	if _, err := store.CreateDrop(ctx, solana); err != nil {
		t.Fatalf("create solana drop failed: %v", err)
	}
	inactive := seedDrop("dormant")
	inactive.IsActive = false
	if _, err := store.CreateDrop(ctx, inactive); err != nil {
		t.Fatalf("create inactive drop failed: %v", err)
	}

	active, err := store.ListDrops(ctx, ports.DropFilter{OnlyActive: true})
	if err != nil {
		t.Fatalf("list active failed: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("expected two active drops, got %d", len(active))
	}

	byNetwork, err := store.ListDrops(ctx, ports.DropFilter{OnlyActive: true, Network: "solana"})
	if err != nil {
		t.Fatalf("list by network failed: %v", err)
	}
	if len(byNetwork) != 1 || byNetwork[0].Name != "sol drop" {
		t.Fatalf("expected the solana drop, got %+v", byNetwork)
	}

	byToken, err := store.ListDrops(ctx, ports.DropFilter{TokenSymbol: "ABC"})
	if err != nil {
		t.Fatalf("list by token failed: %v", err)
	}
	if len(byToken) != 2 {
		t.Fatalf("expected two ABC drops including the inactive one, got %d", len(byToken))
	}
}

func TestStoreSubscriptionSetSemantics(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	added, err := store.Subscribe(ctx, "user_1", "drop_1")
	if err != nil || !added {
		t.Fatalf("expected first subscribe to add, added=%v err=%v", added, err)
	}
	again, err := store.Subscribe(ctx, "user_1", "drop_1")
	if err != nil || again {
		t.Fatalf("expected duplicate subscribe to be a no-op, added=%v err=%v", again, err)
	}

	if err := store.Unsubscribe(ctx, "user_2", "drop_1"); !errors.Is(err, domainerrors.ErrNoSubscriptions) {
		t.Fatalf("expected no subscriptions error, got %v", err)
	}
	if err := store.Unsubscribe(ctx, "user_1", "drop_999"); err != nil {
		t.Fatalf("removing absent entry from existing set should succeed, got %v", err)
	}

	ids, err := store.ListSubscribedDropIDs(ctx, "user_1")
	if err != nil {
		t.Fatalf("list subscriptions failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != "drop_1" {
		t.Fatalf("unexpected subscription set %v", ids)
	}
}

func TestStoreListNotificationsMarkAsReadSnapshot(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := store.AppendNotification(ctx, entities.Notification{UserID: "user_1", DropID: "drop_1"}); err != nil {
			t.Fatalf("append notification failed: %v", err)
		}
	}

	snapshot, err := store.ListNotifications(ctx, "user_1", true)
	if err != nil {
		t.Fatalf("list with mark failed: %v", err)
	}
	if len(snapshot) != 3 {
		t.Fatalf("expected three notifications, got %d", len(snapshot))
	}
	for _, item := range snapshot {
		if item.Read {
			t.Fatalf("snapshot should show pre-flip state, %s already read", item.NotificationID)
		}
	}
	if snapshot[0].NotificationID != "ntf_3" {
		t.Fatalf("expected newest-first ordering, got %s first", snapshot[0].NotificationID)
	}

	after, err := store.ListNotifications(ctx, "user_1", false)
	if err != nil {
		t.Fatalf("second list failed: %v", err)
	}
	for _, item := range after {
		if !item.Read {
			t.Fatalf("expected %s to be read after flip", item.NotificationID)
		}
	}
}
