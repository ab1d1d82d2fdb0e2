package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"dropcover/contexts/token-drops/drop-service/domain/entities"
	domainerrors "dropcover/contexts/token-drops/drop-service/domain/errors"
	"dropcover/contexts/token-drops/drop-service/ports"
)

type Store struct {
	mu sync.RWMutex

	dropsByID   map[string]entities.TokenDrop
	dropIDOrder []string // insertion order for stable listings

	subscriptionsByUser map[string][]string // insertion order, no duplicates

	profilesByUser map[string]entities.UserProfile

	notificationsByID     map[string]entities.Notification
	notificationIDsByUser map[string][]string // newest-first

	idempotency map[string]ports.IdempotencyRecord

	dropSeq         uint64
	notificationSeq uint64
}

func NewStore() *Store {
	return &Store{
		dropsByID:             make(map[string]entities.TokenDrop),
		subscriptionsByUser:   make(map[string][]string),
		profilesByUser:        make(map[string]entities.UserProfile),
		notificationsByID:     make(map[string]entities.Notification),
		notificationIDsByUser: make(map[string][]string),
		idempotency:           make(map[string]ports.IdempotencyRecord),
	}
}

func (s *Store) CreateDrop(ctx context.Context, drop entities.TokenDrop) (entities.TokenDrop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop.DropID = fmt.Sprintf("drop_%d", atomic.AddUint64(&s.dropSeq, 1))
	if _, exists := s.dropsByID[drop.DropID]; exists {
		return entities.TokenDrop{}, domainerrors.ErrDropAlreadyExists
	}
	s.dropsByID[drop.DropID] = cloneDrop(drop)
	s.dropIDOrder = append(s.dropIDOrder, drop.DropID)
	return cloneDrop(drop), nil
}

func (s *Store) UpdateDrop(ctx context.Context, drop entities.TokenDrop) (entities.TokenDrop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.dropsByID[drop.DropID]; !ok {
		return entities.TokenDrop{}, domainerrors.ErrDropNotFound
	}
	s.dropsByID[drop.DropID] = cloneDrop(drop)
	return cloneDrop(drop), nil
}

func (s *Store) GetDrop(ctx context.Context, dropID string) (entities.TokenDrop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	drop, ok := s.dropsByID[dropID]
	if !ok {
		return entities.TokenDrop{}, domainerrors.ErrDropNotFound
	}
	return cloneDrop(drop), nil
}

func (s *Store) ListDrops(ctx context.Context, filter ports.DropFilter) ([]entities.TokenDrop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.TokenDrop, 0, len(s.dropIDOrder))
	for _, id := range s.dropIDOrder {
		drop, ok := s.dropsByID[id]
		if !ok {
			continue
		}
		if filter.OnlyActive && !drop.IsActive {
			continue
		}
		if filter.TokenSymbol != "" && drop.TokenSymbol != filter.TokenSymbol {
			continue
		}
		if filter.Network != "" && drop.Network != filter.Network {
			continue
		}
		items = append(items, cloneDrop(drop))
	}
	return items, nil
}

func (s *Store) Subscribe(ctx context.Context, userID string, dropID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.subscriptionsByUser[userID]
	for _, id := range existing {
		if id == dropID {
			return false, nil
		}
	}
	s.subscriptionsByUser[userID] = append(existing, dropID)
	return true, nil
}

func (s *Store) Unsubscribe(ctx context.Context, userID string, dropID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.subscriptionsByUser[userID]
	if !ok {
		return domainerrors.ErrNoSubscriptions
	}
	filtered := make([]string, 0, len(existing))
	for _, id := range existing {
		if id != dropID {
			filtered = append(filtered, id)
		}
	}
	s.subscriptionsByUser[userID] = filtered
	return nil
}

func (s *Store) ListSubscribedDropIDs(ctx context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]string(nil), s.subscriptionsByUser[userID]...), nil
}

func (s *Store) GetProfile(ctx context.Context, userID string) (entities.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, ok := s.profilesByUser[userID]
	if !ok {
		return entities.UserProfile{}, domainerrors.ErrProfileNotFound
	}
	return cloneProfile(profile), nil
}

func (s *Store) SaveProfile(ctx context.Context, profile entities.UserProfile) (entities.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profilesByUser[profile.UserID] = cloneProfile(profile)
	return cloneProfile(profile), nil
}

func (s *Store) ListProfiles(ctx context.Context) ([]entities.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.UserProfile, 0, len(s.profilesByUser))
	for _, profile := range s.profilesByUser {
		items = append(items, cloneProfile(profile))
	}
	return items, nil
}

func (s *Store) AppendNotification(ctx context.Context, notification entities.Notification) (entities.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notification.NotificationID = fmt.Sprintf("ntf_%d", atomic.AddUint64(&s.notificationSeq, 1))
	s.notificationsByID[notification.NotificationID] = notification
	s.notificationIDsByUser[notification.UserID] = append(
		[]string{notification.NotificationID},
		s.notificationIDsByUser[notification.UserID]...,
	)
	return notification, nil
}

func (s *Store) GetNotification(ctx context.Context, notificationID string) (entities.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	notification, ok := s.notificationsByID[notificationID]
	if !ok {
		return entities.Notification{}, domainerrors.ErrNotificationNotFound
	}
	return notification, nil
}

func (s *Store) ListNotifications(ctx context.Context, userID string, markAsRead bool) ([]entities.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.notificationIDsByUser[userID]
	items := make([]entities.Notification, 0, len(ids))
	for _, id := range ids {
		notification, ok := s.notificationsByID[id]
		if !ok {
			continue
		}
		// Snapshot first so the caller sees the pre-flip read flags.
		items = append(items, notification)
		if markAsRead && !notification.Read {
			notification.Read = true
			s.notificationsByID[id] = notification
		}
	}
	return items, nil
}

func (s *Store) MarkNotificationRead(ctx context.Context, notificationID string) (entities.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notification, ok := s.notificationsByID[notificationID]
	if !ok {
		return entities.Notification{}, domainerrors.ErrNotificationNotFound
	}
	notification.Read = true
	s.notificationsByID[notificationID] = notification
	return notification, nil
}

func (s *Store) Get(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.idempotency[key]
	if !ok {
		return ports.IdempotencyRecord{}, false, nil
	}
	if !record.ExpiresAt.IsZero() && now.UTC().After(record.ExpiresAt.UTC()) {
		delete(s.idempotency, key)
		return ports.IdempotencyRecord{}, false, nil
	}
	return record, true, nil
}

func (s *Store) Put(ctx context.Context, record ports.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.idempotency[record.Key]; ok {
		if existing.RequestHash != record.RequestHash {
			return domainerrors.ErrIdempotencyConflict
		}
		return nil
	}
	s.idempotency[record.Key] = record
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func cloneDrop(in entities.TokenDrop) entities.TokenDrop {
	out := in
	if in.Price != nil {
		v := *in.Price
		out.Price = &v
	}
	if in.EndTime != nil {
		v := in.EndTime.UTC()
		out.EndTime = &v
	}
	return out
}

func cloneProfile(in entities.UserProfile) entities.UserProfile {
	out := in
	out.Preference.Tokens = append([]string(nil), in.Preference.Tokens...)
	out.Preference.Networks = append([]string(nil), in.Preference.Networks...)
	return out
}

var _ ports.DropRepository = (*Store)(nil)
var _ ports.SubscriptionRepository = (*Store)(nil)
var _ ports.ProfileRepository = (*Store)(nil)
var _ ports.NotificationRepository = (*Store)(nil)
var _ ports.IdempotencyStore = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
