package postgresadapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"dropcover/contexts/token-drops/drop-service/domain/entities"
	domainerrors "dropcover/contexts/token-drops/drop-service/domain/errors"
	"dropcover/contexts/token-drops/drop-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	dropCounter         = "drop"
	notificationCounter = "notification"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) CreateDrop(ctx context.Context, drop entities.TokenDrop) (entities.TokenDrop, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := nextID(tx, dropCounter, "drop")
		if err != nil {
			return err
		}
		drop.DropID = id

		row := dropModelFromEntity(drop)
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrDropAlreadyExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return entities.TokenDrop{}, err
	}
	return drop, nil
}

func (r *Repository) UpdateDrop(ctx context.Context, drop entities.TokenDrop) (entities.TokenDrop, error) {
	result := r.db.WithContext(ctx).
		Model(&dropModel{}).
		Where("drop_id = ?", strings.TrimSpace(drop.DropID)).
		Updates(dropUpdatesFromEntity(drop))
	if result.Error != nil {
		return entities.TokenDrop{}, result.Error
	}
	if result.RowsAffected == 0 {
		return entities.TokenDrop{}, domainerrors.ErrDropNotFound
	}
	return drop, nil
}

func (r *Repository) GetDrop(ctx context.Context, dropID string) (entities.TokenDrop, error) {
	var row dropModel
	err := r.db.WithContext(ctx).
		Where("drop_id = ?", strings.TrimSpace(dropID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.TokenDrop{}, domainerrors.ErrDropNotFound
		}
		return entities.TokenDrop{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListDrops(ctx context.Context, filter ports.DropFilter) ([]entities.TokenDrop, error) {
	tx := r.db.WithContext(ctx).Model(&dropModel{})
	if filter.OnlyActive {
		tx = tx.Where("is_active = ?", true)
	}
	if strings.TrimSpace(filter.TokenSymbol) != "" {
		tx = tx.Where("token_symbol = ?", strings.TrimSpace(filter.TokenSymbol))
	}
	if strings.TrimSpace(filter.Network) != "" {
		tx = tx.Where("network = ?", strings.TrimSpace(filter.Network))
	}

	var rows []dropModel
	if err := tx.Order("created_at ASC, drop_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	items := make([]entities.TokenDrop, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) Subscribe(ctx context.Context, userID string, dropID string) (bool, error) {
	row := subscriptionModel{
		UserID:    strings.TrimSpace(userID),
		DropID:    strings.TrimSpace(dropID),
		CreatedAt: time.Now().UTC(),
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "drop_id"}},
			DoNothing: true,
		}).
		Create(&row)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) Unsubscribe(ctx context.Context, userID string, dropID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&subscriptionModel{}).
			Where("user_id = ?", strings.TrimSpace(userID)).
			Count(&count).
			Error; err != nil {
			return err
		}
		if count == 0 {
			return domainerrors.ErrNoSubscriptions
		}
		return tx.Where("user_id = ? AND drop_id = ?", strings.TrimSpace(userID), strings.TrimSpace(dropID)).
			Delete(&subscriptionModel{}).
			Error
	})
}

func (r *Repository) ListSubscribedDropIDs(ctx context.Context, userID string) ([]string, error) {
	var rows []subscriptionModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Order("created_at ASC, drop_id ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.DropID)
	}
	return ids, nil
}

func (r *Repository) GetProfile(ctx context.Context, userID string) (entities.UserProfile, error) {
	var row profileModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.UserProfile{}, domainerrors.ErrProfileNotFound
		}
		return entities.UserProfile{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) SaveProfile(ctx context.Context, profile entities.UserProfile) (entities.UserProfile, error) {
	row := profileModelFromEntity(profile)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"preference_kind", "preference_tokens", "preference_networks",
				"email_enabled", "push_enabled", "email", "updated_at",
			}),
		}).
		Create(&row).
		Error
	if err != nil {
		return entities.UserProfile{}, err
	}
	return profile, nil
}

func (r *Repository) ListProfiles(ctx context.Context) ([]entities.UserProfile, error) {
	var rows []profileModel
	if err := r.db.WithContext(ctx).
		Order("created_at ASC, user_id ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]entities.UserProfile, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) AppendNotification(ctx context.Context, notification entities.Notification) (entities.Notification, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := nextID(tx, notificationCounter, "ntf")
		if err != nil {
			return err
		}
		notification.NotificationID = id

		row := notificationModelFromEntity(notification)
		return tx.Create(&row).Error
	})
	if err != nil {
		return entities.Notification{}, err
	}
	return notification, nil
}

func (r *Repository) GetNotification(ctx context.Context, notificationID string) (entities.Notification, error) {
	var row notificationModel
	err := r.db.WithContext(ctx).
		Where("notification_id = ?", strings.TrimSpace(notificationID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Notification{}, domainerrors.ErrNotificationNotFound
		}
		return entities.Notification{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListNotifications(ctx context.Context, userID string, markAsRead bool) ([]entities.Notification, error) {
	var items []entities.Notification
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []notificationModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", strings.TrimSpace(userID)).
			Order("created_at DESC, notification_id DESC").
			Find(&rows).
			Error; err != nil {
			return err
		}

		items = make([]entities.Notification, 0, len(rows))
		for _, row := range rows {
			items = append(items, row.toEntity())
		}

		if markAsRead {
			if err := tx.Model(&notificationModel{}).
				Where("user_id = ? AND read = ?", strings.TrimSpace(userID), false).
				Update("read", true).
				Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Repository) MarkNotificationRead(ctx context.Context, notificationID string) (entities.Notification, error) {
	var item entities.Notification
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row notificationModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("notification_id = ?", strings.TrimSpace(notificationID)).
			First(&row).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrNotificationNotFound
			}
			return err
		}
		if !row.Read {
			if err := tx.Model(&notificationModel{}).
				Where("notification_id = ?", row.NotificationID).
				Update("read", true).
				Error; err != nil {
				return err
			}
			row.Read = true
		}
		item = row.toEntity()
		return nil
	})
	if err != nil {
		return entities.Notification{}, err
	}
	return item, nil
}

func (r *Repository) Get(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	var row idempotencyModel
	err := r.db.WithContext(ctx).
		Where("key = ?", strings.TrimSpace(key)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.IdempotencyRecord{}, false, nil
		}
		return ports.IdempotencyRecord{}, false, err
	}

	if !row.ExpiresAt.IsZero() && now.UTC().After(row.ExpiresAt.UTC()) {
		if err := r.db.WithContext(ctx).
			Where("key = ?", strings.TrimSpace(key)).
			Delete(&idempotencyModel{}).
			Error; err != nil {
			return ports.IdempotencyRecord{}, false, err
		}
		return ports.IdempotencyRecord{}, false, nil
	}

	return ports.IdempotencyRecord{
		Key:         row.Key,
		RequestHash: row.RequestHash,
		Payload:     append([]byte(nil), row.Payload...),
		ExpiresAt:   row.ExpiresAt.UTC(),
	}, true, nil
}

func (r *Repository) Put(ctx context.Context, record ports.IdempotencyRecord) error {
	row := idempotencyModel{
		Key:         strings.TrimSpace(record.Key),
		RequestHash: record.RequestHash,
		Payload:     append([]byte(nil), record.Payload...),
		ExpiresAt:   record.ExpiresAt.UTC(),
	}
	createResult := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoNothing: true,
		}).
		Create(&row)
	if createResult.Error != nil {
		return createResult.Error
	}
	if createResult.RowsAffected > 0 {
		return nil
	}

	var existing idempotencyModel
	if err := r.db.WithContext(ctx).
		Where("key = ?", row.Key).
		First(&existing).
		Error; err != nil {
		return err
	}
	if existing.RequestHash != row.RequestHash || !bytes.Equal(existing.Payload, row.Payload) {
		return domainerrors.ErrIdempotencyConflict
	}
	return nil
}

// nextID increments a named counter under a row lock and formats the
// prefixed identifier. Counter rows are seeded on first use.
func nextID(tx *gorm.DB, name string, prefix string) (string, error) {
	seed := counterModel{Name: name, Value: 0}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&seed).Error; err != nil {
		return "", err
	}

	var row counterModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("name = ?", name).
		First(&row).
		Error; err != nil {
		return "", err
	}
	row.Value++
	if err := tx.Model(&counterModel{}).
		Where("name = ?", name).
		Update("value", row.Value).
		Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%d", prefix, row.Value), nil
}

type dropModel struct {
	DropID      string     `gorm:"column:drop_id;primaryKey"`
	Name        string     `gorm:"column:name"`
	Description string     `gorm:"column:description"`
	TokenSymbol string     `gorm:"column:token_symbol;index"`
	Network     string     `gorm:"column:network;index"`
	TotalSupply float64    `gorm:"column:total_supply"`
	Price       *float64   `gorm:"column:price"`
	StartTime   time.Time  `gorm:"column:start_time"`
	EndTime     *time.Time `gorm:"column:end_time"`
	WebsiteURL  string     `gorm:"column:website_url"`
	ImageURL    string     `gorm:"column:image_url"`
	CreatedBy   string     `gorm:"column:created_by;index"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	IsActive    bool       `gorm:"column:is_active"`
}

func (dropModel) TableName() string {
	return "token_drops"
}

func dropModelFromEntity(item entities.TokenDrop) dropModel {
	return dropModel{
		DropID:      strings.TrimSpace(item.DropID),
		Name:        strings.TrimSpace(item.Name),
		Description: strings.TrimSpace(item.Description),
		TokenSymbol: strings.TrimSpace(item.TokenSymbol),
		Network:     strings.TrimSpace(item.Network),
		TotalSupply: item.TotalSupply,
		Price:       item.Price,
		StartTime:   item.StartTime.UTC(),
		EndTime:     normalizeOptionalTime(item.EndTime),
		WebsiteURL:  strings.TrimSpace(item.WebsiteURL),
		ImageURL:    strings.TrimSpace(item.ImageURL),
		CreatedBy:   strings.TrimSpace(item.CreatedBy),
		CreatedAt:   item.CreatedAt.UTC(),
		IsActive:    item.IsActive,
	}
}

func dropUpdatesFromEntity(item entities.TokenDrop) map[string]any {
	row := dropModelFromEntity(item)
	return map[string]any{
		"name":         row.Name,
		"description":  row.Description,
		"token_symbol": row.TokenSymbol,
		"network":      row.Network,
		"total_supply": row.TotalSupply,
		"price":        row.Price,
		"start_time":   row.StartTime,
		"end_time":     row.EndTime,
		"website_url":  row.WebsiteURL,
		"image_url":    row.ImageURL,
		"is_active":    row.IsActive,
	}
}

func (m dropModel) toEntity() entities.TokenDrop {
	return entities.TokenDrop{
		DropID:      m.DropID,
		Name:        m.Name,
		Description: m.Description,
		TokenSymbol: m.TokenSymbol,
		Network:     m.Network,
		TotalSupply: m.TotalSupply,
		Price:       m.Price,
		StartTime:   m.StartTime.UTC(),
		EndTime:     normalizeOptionalTime(m.EndTime),
		WebsiteURL:  m.WebsiteURL,
		ImageURL:    m.ImageURL,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt.UTC(),
		IsActive:    m.IsActive,
	}
}

type subscriptionModel struct {
	UserID    string    `gorm:"column:user_id;primaryKey"`
	DropID    string    `gorm:"column:drop_id;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (subscriptionModel) TableName() string {
	return "drop_subscriptions"
}

type profileModel struct {
	UserID             string    `gorm:"column:user_id;primaryKey"`
	PreferenceKind     string    `gorm:"column:preference_kind"`
	PreferenceTokens   []string  `gorm:"column:preference_tokens;type:text[]"`
	PreferenceNetworks []string  `gorm:"column:preference_networks;type:text[]"`
	EmailEnabled       bool      `gorm:"column:email_enabled"`
	PushEnabled        bool      `gorm:"column:push_enabled"`
	Email              string    `gorm:"column:email"`
	CreatedAt          time.Time `gorm:"column:created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at"`
}

func (profileModel) TableName() string {
	return "drop_profiles"
}

func profileModelFromEntity(item entities.UserProfile) profileModel {
	return profileModel{
		UserID:             strings.TrimSpace(item.UserID),
		PreferenceKind:     string(item.Preference.Kind),
		PreferenceTokens:   copyOrEmpty(item.Preference.Tokens),
		PreferenceNetworks: copyOrEmpty(item.Preference.Networks),
		EmailEnabled:       item.EmailEnabled,
		PushEnabled:        item.PushEnabled,
		Email:              strings.TrimSpace(item.Email),
		CreatedAt:          item.CreatedAt.UTC(),
		UpdatedAt:          item.UpdatedAt.UTC(),
	}
}

func (m profileModel) toEntity() entities.UserProfile {
	return entities.UserProfile{
		UserID: m.UserID,
		Preference: entities.NotificationPreference{
			Kind:     entities.PreferenceKind(m.PreferenceKind),
			Tokens:   copyOrEmpty(m.PreferenceTokens),
			Networks: copyOrEmpty(m.PreferenceNetworks),
		},
		EmailEnabled: m.EmailEnabled,
		PushEnabled:  m.PushEnabled,
		Email:        m.Email,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

type notificationModel struct {
	NotificationID string    `gorm:"column:notification_id;primaryKey"`
	UserID         string    `gorm:"column:user_id;index"`
	DropID         string    `gorm:"column:drop_id"`
	Title          string    `gorm:"column:title"`
	Message        string    `gorm:"column:message"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	Read           bool      `gorm:"column:read"`
}

func (notificationModel) TableName() string {
	return "drop_notifications"
}

func notificationModelFromEntity(item entities.Notification) notificationModel {
	return notificationModel{
		NotificationID: strings.TrimSpace(item.NotificationID),
		UserID:         strings.TrimSpace(item.UserID),
		DropID:         strings.TrimSpace(item.DropID),
		Title:          item.Title,
		Message:        item.Message,
		CreatedAt:      item.CreatedAt.UTC(),
		Read:           item.Read,
	}
}

func (m notificationModel) toEntity() entities.Notification {
	return entities.Notification{
		NotificationID: m.NotificationID,
		UserID:         m.UserID,
		DropID:         m.DropID,
		Title:          m.Title,
		Message:        m.Message,
		CreatedAt:      m.CreatedAt.UTC(),
		Read:           m.Read,
	}
}

type idempotencyModel struct {
	Key         string    `gorm:"column:key;primaryKey"`
	RequestHash string    `gorm:"column:request_hash"`
	Payload     []byte    `gorm:"column:payload"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
}

func (idempotencyModel) TableName() string {
	return "drops_idempotency"
}

type counterModel struct {
	Name  string `gorm:"column:name;primaryKey"`
	Value uint64 `gorm:"column:value"`
}

func (counterModel) TableName() string {
	return "drops_counters"
}

func copyOrEmpty(items []string) []string {
	if len(items) == 0 {
		return []string{}
	}
	return append([]string(nil), items...)
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.DropRepository = (*Repository)(nil)
var _ ports.SubscriptionRepository = (*Repository)(nil)
var _ ports.ProfileRepository = (*Repository)(nil)
var _ ports.NotificationRepository = (*Repository)(nil)
var _ ports.IdempotencyStore = (*Repository)(nil)
