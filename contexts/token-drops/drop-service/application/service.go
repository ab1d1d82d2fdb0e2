package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"dropcover/contexts/token-drops/drop-service/domain/entities"
	domainerrors "dropcover/contexts/token-drops/drop-service/domain/errors"
	"dropcover/contexts/token-drops/drop-service/ports"
)

type Service struct {
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

func (s Service) CreateDrop(
	ctx context.Context,
	idempotencyKey string,
	callerID string,
	input ports.CreateDropInput,
) (entities.TokenDrop, error) {
	var out entities.TokenDrop
	if err := validateCreateDrop(callerID, input); err != nil {
		return out, err
	}
	if err := requireIdempotencyKey(idempotencyKey); err != nil {
		return out, err
	}

	payload, _ := json.Marshal(input)
	requestHash := hashStrings("drops_create_drop", callerID, string(payload))
	err := s.runIdempotent(
		ctx,
		strings.TrimSpace(idempotencyKey),
		requestHash,
		func(raw []byte) error { return json.Unmarshal(raw, &out) },
		func() ([]byte, error) {
			now := s.now()
			created, err := s.Drops.CreateDrop(ctx, entities.TokenDrop{
				Name:        strings.TrimSpace(input.Name),
				Description: strings.TrimSpace(input.Description),
				TokenSymbol: strings.TrimSpace(input.TokenSymbol),
				Network:     strings.TrimSpace(input.Network),
				TotalSupply: input.TotalSupply,
				Price:       clonePrice(input.Price),
				StartTime:   input.StartTime.UTC(),
				EndTime:     cloneTime(input.EndTime),
				WebsiteURL:  strings.TrimSpace(input.WebsiteURL),
				ImageURL:    strings.TrimSpace(input.ImageURL),
				CreatedBy:   strings.TrimSpace(callerID),
				CreatedAt:   now,
				IsActive:    true,
			})
			if err != nil {
				return nil, err
			}
			resolveLogger(s.Logger).Info("drop created",
				"event", "drop_created",
				"module", "token-drops/drop-service",
				"layer", "application",
				"drop_id", created.DropID,
				"token_symbol", created.TokenSymbol,
				"network", created.Network,
			)
			s.publishDropEvent(ctx, topicDropCreated, created)
			s.fanOut(ctx, created)
			return json.Marshal(created)
		},
	)
	return out, err
}

func (s Service) UpdateDrop(
	ctx context.Context,
	callerID string,
	dropID string,
	input ports.UpdateDropInput,
) (entities.TokenDrop, error) {
	drop, err := s.Drops.GetDrop(ctx, strings.TrimSpace(dropID))
	if err != nil {
		return entities.TokenDrop{}, err
	}
	if drop.CreatedBy != strings.TrimSpace(callerID) {
		return entities.TokenDrop{}, domainerrors.ErrNotDropCreator
	}

	wasActive := drop.IsActive
	if err := applyDropUpdate(&drop, input); err != nil {
		return entities.TokenDrop{}, err
	}

	updated, err := s.Drops.UpdateDrop(ctx, drop)
	if err != nil {
		return entities.TokenDrop{}, err
	}
	resolveLogger(s.Logger).Info("drop updated",
		"event", "drop_updated",
		"module", "token-drops/drop-service",
		"layer", "application",
		"drop_id", updated.DropID,
		"is_active", updated.IsActive,
	)
	if !wasActive && updated.IsActive {
		s.publishDropEvent(ctx, topicDropActivated, updated)
		s.fanOut(ctx, updated)
	}
	return updated, nil
}

func (s Service) GetDrop(ctx context.Context, dropID string) (entities.TokenDrop, error) {
	return s.Drops.GetDrop(ctx, strings.TrimSpace(dropID))
}

// GetActiveDrops returns active drops whose window covers now.
func (s Service) GetActiveDrops(ctx context.Context) ([]entities.TokenDrop, error) {
	drops, err := s.Drops.ListDrops(ctx, ports.DropFilter{OnlyActive: true})
	if err != nil {
		return nil, err
	}
	now := s.now()
	items := make([]entities.TokenDrop, 0, len(drops))
	for _, drop := range drops {
		if drop.LiveAt(now) {
			items = append(items, drop)
		}
	}
	return items, nil
}

// GetUpcomingDrops returns active drops whose window has not opened yet.
func (s Service) GetUpcomingDrops(ctx context.Context) ([]entities.TokenDrop, error) {
	drops, err := s.Drops.ListDrops(ctx, ports.DropFilter{OnlyActive: true})
	if err != nil {
		return nil, err
	}
	now := s.now()
	items := make([]entities.TokenDrop, 0, len(drops))
	for _, drop := range drops {
		if drop.UpcomingAt(now) {
			items = append(items, drop)
		}
	}
	return items, nil
}

func (s Service) GetDropsByNetwork(ctx context.Context, network string) ([]entities.TokenDrop, error) {
	if strings.TrimSpace(network) == "" {
		return nil, domainerrors.ErrInvalidDropRequest
	}
	return s.Drops.ListDrops(ctx, ports.DropFilter{OnlyActive: true, Network: strings.TrimSpace(network)})
}

func (s Service) GetDropsByToken(ctx context.Context, tokenSymbol string) ([]entities.TokenDrop, error) {
	if strings.TrimSpace(tokenSymbol) == "" {
		return nil, domainerrors.ErrInvalidDropRequest
	}
	return s.Drops.ListDrops(ctx, ports.DropFilter{OnlyActive: true, TokenSymbol: strings.TrimSpace(tokenSymbol)})
}

// Subscribe adds the drop to the caller's subscription set. Re-subscribing is
// a no-op and does not emit a second confirmation notification.
func (s Service) Subscribe(ctx context.Context, callerID string, dropID string) error {
	if strings.TrimSpace(callerID) == "" {
		return domainerrors.ErrInvalidDropRequest
	}
	drop, err := s.Drops.GetDrop(ctx, strings.TrimSpace(dropID))
	if err != nil {
		return err
	}

	added, err := s.Subscriptions.Subscribe(ctx, strings.TrimSpace(callerID), drop.DropID)
	if err != nil {
		return err
	}
	if !added {
		return nil
	}

	s.appendNotification(ctx, entities.Notification{
		UserID:    strings.TrimSpace(callerID),
		DropID:    drop.DropID,
		Title:     "Subscription confirmed",
		Message:   "You are now subscribed to " + drop.Name + " (" + drop.TokenSymbol + " on " + drop.Network + ").",
		CreatedAt: s.now(),
	})
	resolveLogger(s.Logger).Info("drop subscription added",
		"event", "drop_subscribed",
		"module", "token-drops/drop-service",
		"layer", "application",
		"drop_id", drop.DropID,
		"user_id", strings.TrimSpace(callerID),
	)
	return nil
}

// Unsubscribe fails ErrNoSubscriptions when the caller never subscribed to
// anything; removing a drop that is not in an existing set succeeds.
func (s Service) Unsubscribe(ctx context.Context, callerID string, dropID string) error {
	if strings.TrimSpace(callerID) == "" {
		return domainerrors.ErrInvalidDropRequest
	}
	return s.Subscriptions.Unsubscribe(ctx, strings.TrimSpace(callerID), strings.TrimSpace(dropID))
}

// GetMySubscriptions resolves the caller's subscribed drops, silently
// dropping identifiers whose drop record is missing.
func (s Service) GetMySubscriptions(ctx context.Context, callerID string) ([]entities.TokenDrop, error) {
	if strings.TrimSpace(callerID) == "" {
		return nil, domainerrors.ErrInvalidDropRequest
	}
	ids, err := s.Subscriptions.ListSubscribedDropIDs(ctx, strings.TrimSpace(callerID))
	if err != nil {
		return nil, err
	}
	items := make([]entities.TokenDrop, 0, len(ids))
	for _, id := range ids {
		drop, err := s.Drops.GetDrop(ctx, id)
		if err != nil {
			continue
		}
		items = append(items, drop)
	}
	return items, nil
}

// CreateOrUpdateProfile lazily creates a default profile on first touch and
// merges only the supplied fields afterwards.
func (s Service) CreateOrUpdateProfile(
	ctx context.Context,
	callerID string,
	input ports.ProfileUpdateInput,
) (entities.UserProfile, error) {
	if strings.TrimSpace(callerID) == "" {
		return entities.UserProfile{}, domainerrors.ErrInvalidProfileRequest
	}

	now := s.now()
	profile, err := s.Profiles.GetProfile(ctx, strings.TrimSpace(callerID))
	if err != nil {
		if !isProfileNotFound(err) {
			return entities.UserProfile{}, err
		}
		profile = entities.DefaultProfile(strings.TrimSpace(callerID), now)
	}

	if err := applyProfileUpdate(&profile, input); err != nil {
		return entities.UserProfile{}, err
	}
	profile.UpdatedAt = now

	saved, err := s.Profiles.SaveProfile(ctx, profile)
	if err != nil {
		return entities.UserProfile{}, err
	}
	resolveLogger(s.Logger).Info("profile saved",
		"event", "profile_saved",
		"module", "token-drops/drop-service",
		"layer", "application",
		"user_id", saved.UserID,
		"preference", string(saved.Preference.Kind),
	)
	return saved, nil
}

func (s Service) GetMyProfile(ctx context.Context, callerID string) (entities.UserProfile, error) {
	if strings.TrimSpace(callerID) == "" {
		return entities.UserProfile{}, domainerrors.ErrInvalidProfileRequest
	}
	return s.Profiles.GetProfile(ctx, strings.TrimSpace(callerID))
}

// GetMyNotifications returns the caller's inbox newest-first plus the unread
// count as it was before any markAsRead flip.
func (s Service) GetMyNotifications(
	ctx context.Context,
	callerID string,
	markAsRead bool,
) ([]entities.Notification, int, error) {
	if strings.TrimSpace(callerID) == "" {
		return nil, 0, domainerrors.ErrInvalidProfileRequest
	}
	items, err := s.Notifications.ListNotifications(ctx, strings.TrimSpace(callerID), markAsRead)
	if err != nil {
		return nil, 0, err
	}
	unread := 0
	for _, item := range items {
		if !item.Read {
			unread++
		}
	}
	return items, unread, nil
}

func (s Service) MarkNotificationAsRead(
	ctx context.Context,
	callerID string,
	notificationID string,
) (entities.Notification, error) {
	notification, err := s.Notifications.GetNotification(ctx, strings.TrimSpace(notificationID))
	if err != nil {
		return entities.Notification{}, err
	}
	if notification.UserID != strings.TrimSpace(callerID) {
		return entities.Notification{}, domainerrors.ErrNotNotificationOwner
	}
	return s.Notifications.MarkNotificationRead(ctx, notification.NotificationID)
}

func validateCreateDrop(callerID string, input ports.CreateDropInput) error {
	if strings.TrimSpace(callerID) == "" ||
		strings.TrimSpace(input.Name) == "" ||
		strings.TrimSpace(input.TokenSymbol) == "" ||
		strings.TrimSpace(input.Network) == "" {
		return domainerrors.ErrInvalidDropRequest
	}
	if input.TotalSupply <= 0 || input.StartTime.IsZero() {
		return domainerrors.ErrInvalidDropRequest
	}
	if input.Price != nil && *input.Price <= 0 {
		return domainerrors.ErrInvalidDropRequest
	}
	if input.EndTime != nil && !input.EndTime.After(input.StartTime) {
		return domainerrors.ErrInvalidDropRequest
	}
	return nil
}

func applyDropUpdate(drop *entities.TokenDrop, input ports.UpdateDropInput) error {
	// Required fields reject explicit null.
	if err := applyRequiredString(&drop.Name, input.Name); err != nil {
		return err
	}
	if err := applyRequiredString(&drop.TokenSymbol, input.TokenSymbol); err != nil {
		return err
	}
	if err := applyRequiredString(&drop.Network, input.Network); err != nil {
		return err
	}
	if input.Description.Set {
		drop.Description = strings.TrimSpace(input.Description.Value)
	}
	if input.TotalSupply.Set {
		if !input.TotalSupply.Valid || input.TotalSupply.Value <= 0 {
			return domainerrors.ErrInvalidDropRequest
		}
		drop.TotalSupply = input.TotalSupply.Value
	}
	if input.Price.Set {
		if !input.Price.Valid {
			drop.Price = nil
		} else {
			if input.Price.Value <= 0 {
				return domainerrors.ErrInvalidDropRequest
			}
			value := input.Price.Value
			drop.Price = &value
		}
	}
	if input.StartTime.Set {
		if !input.StartTime.Valid || input.StartTime.Value.IsZero() {
			return domainerrors.ErrInvalidDropRequest
		}
		drop.StartTime = input.StartTime.Value.UTC()
	}
	if input.EndTime.Set {
		if !input.EndTime.Valid {
			drop.EndTime = nil
		} else {
			value := input.EndTime.Value.UTC()
			drop.EndTime = &value
		}
	}
	if drop.EndTime != nil && !drop.EndTime.After(drop.StartTime) {
		return domainerrors.ErrInvalidDropRequest
	}
	if input.WebsiteURL.Set {
		drop.WebsiteURL = strings.TrimSpace(input.WebsiteURL.Value)
	}
	if input.ImageURL.Set {
		drop.ImageURL = strings.TrimSpace(input.ImageURL.Value)
	}
	if input.IsActive.Set {
		if !input.IsActive.Valid {
			return domainerrors.ErrInvalidDropRequest
		}
		drop.IsActive = input.IsActive.Value
	}
	return nil
}

func applyRequiredString(target *string, field ports.Field[string]) error {
	if !field.Set {
		return nil
	}
	if !field.Valid || strings.TrimSpace(field.Value) == "" {
		return domainerrors.ErrInvalidDropRequest
	}
	*target = strings.TrimSpace(field.Value)
	return nil
}

func applyProfileUpdate(profile *entities.UserProfile, input ports.ProfileUpdateInput) error {
	if input.Preference.Set {
		if !input.Preference.Valid {
			return domainerrors.ErrInvalidProfileRequest
		}
		kind, err := entities.ParsePreferenceKind(string(input.Preference.Value.Kind))
		if err != nil {
			return err
		}
		profile.Preference = entities.NotificationPreference{
			Kind:     kind,
			Tokens:   normalizeSet(input.Preference.Value.Tokens),
			Networks: normalizeSet(input.Preference.Value.Networks),
		}
	}
	if input.EmailEnabled.Set {
		if !input.EmailEnabled.Valid {
			return domainerrors.ErrInvalidProfileRequest
		}
		profile.EmailEnabled = input.EmailEnabled.Value
	}
	if input.PushEnabled.Set {
		if !input.PushEnabled.Valid {
			return domainerrors.ErrInvalidProfileRequest
		}
		profile.PushEnabled = input.PushEnabled.Value
	}
	if input.Email.Set {
		if !input.Email.Valid {
			profile.Email = ""
		} else {
			profile.Email = strings.TrimSpace(input.Email.Value)
		}
	}
	return nil
}

// normalizeSet trims entries and drops duplicates while keeping order.
func normalizeSet(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

func isProfileNotFound(err error) bool {
	return errors.Is(err, domainerrors.ErrProfileNotFound)
}

func clonePrice(value *float64) *float64 {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	v := value.UTC()
	return &v
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func (s Service) idempotencyTTL() time.Duration {
	if s.IdempotencyTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return s.IdempotencyTTL
}

func (s Service) runIdempotent(
	ctx context.Context,
	key string,
	requestHash string,
	decode func([]byte) error,
	exec func() ([]byte, error),
) error {
	now := s.now()
	record, found, err := s.Idempotency.Get(ctx, key, now)
	if err != nil {
		return err
	}
	if found {
		if record.RequestHash != requestHash {
			return domainerrors.ErrIdempotencyConflict
		}
		return decode(record.Payload)
	}

	payload, err := exec()
	if err != nil {
		return err
	}
	if err := s.Idempotency.Put(ctx, ports.IdempotencyRecord{
		Key:         key,
		RequestHash: requestHash,
		Payload:     payload,
		ExpiresAt:   now.Add(s.idempotencyTTL()),
	}); err != nil {
		return err
	}
	return decode(payload)
}

func requireIdempotencyKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return domainerrors.ErrIdempotencyKeyRequired
	}
	return nil
}

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

func hashStrings(values ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(values, "|")))
	return hex.EncodeToString(sum[:])
}
