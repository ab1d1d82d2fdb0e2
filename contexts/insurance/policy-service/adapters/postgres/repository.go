package postgresadapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"dropcover/contexts/insurance/policy-service/domain/entities"
	domainerrors "dropcover/contexts/insurance/policy-service/domain/errors"
	"dropcover/contexts/insurance/policy-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	policyCounter = "policy"
	claimCounter  = "claim"
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

func (r *Repository) CreatePolicy(ctx context.Context, policy entities.Policy) (entities.Policy, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := nextID(tx, policyCounter, "pol")
		if err != nil {
			return err
		}
		policy.PolicyID = id
		for i := range policy.Claims {
			policy.Claims[i].PolicyID = id
		}

		row := policyModelFromEntity(policy)
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrPolicyAlreadyExists
			}
			return err
		}
		for _, claim := range policy.Claims {
			claimRow := claimModelFromEntity(claim)
			if err := tx.Create(&claimRow).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return entities.Policy{}, err
	}
	return policy, nil
}

func (r *Repository) UpdatePolicy(ctx context.Context, policy entities.Policy) (entities.Policy, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&policyModel{}).
			Where("policy_id = ?", strings.TrimSpace(policy.PolicyID)).
			Updates(policyUpdatesFromEntity(policy))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrPolicyNotFound
		}

		for _, claim := range policy.Claims {
			claimRow := claimModelFromEntity(claim)
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "claim_id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"description", "damage", "damage_label", "amount",
					"evidence", "status", "submitted_at", "resolved_at",
				}),
			}).Create(&claimRow).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return entities.Policy{}, err
	}
	return policy, nil
}

func (r *Repository) AppendClaim(ctx context.Context, policyID string, claim entities.Claim) (entities.Claim, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var policyRow policyModel
		if err := tx.Select("policy_id").
			Where("policy_id = ?", strings.TrimSpace(policyID)).
			First(&policyRow).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrPolicyNotFound
			}
			return err
		}

		id, err := nextID(tx, claimCounter, "clm")
		if err != nil {
			return err
		}
		claim.ClaimID = id
		claim.PolicyID = strings.TrimSpace(policyID)

		row := claimModelFromEntity(claim)
		return tx.Create(&row).Error
	})
	if err != nil {
		return entities.Claim{}, err
	}
	return claim, nil
}

func (r *Repository) GetPolicy(ctx context.Context, policyID string) (entities.Policy, error) {
	var row policyModel
	err := r.db.WithContext(ctx).
		Where("policy_id = ?", strings.TrimSpace(policyID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Policy{}, domainerrors.ErrPolicyNotFound
		}
		return entities.Policy{}, err
	}

	claims, err := r.loadClaims(ctx, []string{row.PolicyID})
	if err != nil {
		return entities.Policy{}, err
	}
	return row.toEntity(claims[row.PolicyID]), nil
}

func (r *Repository) ListPoliciesByOwner(ctx context.Context, ownerID string) ([]entities.Policy, error) {
	var rows []policyModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", strings.TrimSpace(ownerID)).
		Order("created_at DESC, policy_id DESC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.PolicyID)
	}
	claims, err := r.loadClaims(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]entities.Policy, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity(claims[row.PolicyID]))
	}
	return items, nil
}

func (r *Repository) ListActivePoliciesEndingBefore(ctx context.Context, cutoff time.Time, limit int) ([]entities.Policy, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows []policyModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND coverage_end < ?", string(entities.PolicyStatusActive), cutoff.UTC()).
		Order("coverage_end ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]entities.Policy, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity(nil))
	}
	return items, nil
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

func (r *Repository) loadClaims(ctx context.Context, policyIDs []string) (map[string][]entities.Claim, error) {
	grouped := make(map[string][]entities.Claim, len(policyIDs))
	if len(policyIDs) == 0 {
		return grouped, nil
	}

	var rows []claimModel
	if err := r.db.WithContext(ctx).
		Where("policy_id IN ?", policyIDs).
		Order("submitted_at ASC, claim_id ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		grouped[row.PolicyID] = append(grouped[row.PolicyID], row.toEntity())
	}
	return grouped, nil
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

type policyModel struct {
	PolicyID       string    `gorm:"column:policy_id;primaryKey"`
	OwnerID        string    `gorm:"column:owner_id;index"`
	Product        string    `gorm:"column:product"`
	ProductLabel   string    `gorm:"column:product_label"`
	ProductName    string    `gorm:"column:product_name"`
	ProductModel   string    `gorm:"column:product_model"`
	SerialNumber   string    `gorm:"column:serial_number"`
	PurchaseDate   time.Time `gorm:"column:purchase_date"`
	PurchasePrice  float64   `gorm:"column:purchase_price"`
	CoverageStart  time.Time `gorm:"column:coverage_start"`
	CoverageEnd    time.Time `gorm:"column:coverage_end"`
	CoverageAmount float64   `gorm:"column:coverage_amount"`
	MonthlyPremium float64   `gorm:"column:monthly_premium"`
	Status         string    `gorm:"column:status"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

func (policyModel) TableName() string {
	return "insurance_policies"
}

func policyModelFromEntity(item entities.Policy) policyModel {
	return policyModel{
		PolicyID:       strings.TrimSpace(item.PolicyID),
		OwnerID:        strings.TrimSpace(item.OwnerID),
		Product:        string(item.Product),
		ProductLabel:   strings.TrimSpace(item.ProductLabel),
		ProductName:    strings.TrimSpace(item.Details.Name),
		ProductModel:   strings.TrimSpace(item.Details.Model),
		SerialNumber:   strings.TrimSpace(item.Details.SerialNumber),
		PurchaseDate:   item.Details.PurchaseDate.UTC(),
		PurchasePrice:  item.Details.PurchasePrice,
		CoverageStart:  item.Coverage.StartAt.UTC(),
		CoverageEnd:    item.Coverage.EndAt.UTC(),
		CoverageAmount: item.Coverage.Amount,
		MonthlyPremium: item.Coverage.MonthlyPremium,
		Status:         string(item.Status),
		CreatedAt:      item.CreatedAt.UTC(),
	}
}

func policyUpdatesFromEntity(item entities.Policy) map[string]any {
	row := policyModelFromEntity(item)
	return map[string]any{
		"owner_id":        row.OwnerID,
		"product":         row.Product,
		"product_label":   row.ProductLabel,
		"product_name":    row.ProductName,
		"product_model":   row.ProductModel,
		"serial_number":   row.SerialNumber,
		"purchase_date":   row.PurchaseDate,
		"purchase_price":  row.PurchasePrice,
		"coverage_start":  row.CoverageStart,
		"coverage_end":    row.CoverageEnd,
		"coverage_amount": row.CoverageAmount,
		"monthly_premium": row.MonthlyPremium,
		"status":          row.Status,
	}
}

func (m policyModel) toEntity(claims []entities.Claim) entities.Policy {
	if claims == nil {
		claims = []entities.Claim{}
	}
	return entities.Policy{
		PolicyID:     m.PolicyID,
		OwnerID:      m.OwnerID,
		Product:      entities.ProductType(m.Product),
		ProductLabel: m.ProductLabel,
		Details: entities.ProductDetails{
			Name:          m.ProductName,
			Model:         m.ProductModel,
			PurchaseDate:  m.PurchaseDate.UTC(),
			PurchasePrice: m.PurchasePrice,
			SerialNumber:  m.SerialNumber,
		},
		Coverage: entities.Coverage{
			StartAt:        m.CoverageStart.UTC(),
			EndAt:          m.CoverageEnd.UTC(),
			Amount:         m.CoverageAmount,
			MonthlyPremium: m.MonthlyPremium,
		},
		Status:    entities.PolicyStatus(m.Status),
		Claims:    claims,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

type claimModel struct {
	ClaimID     string     `gorm:"column:claim_id;primaryKey"`
	PolicyID    string     `gorm:"column:policy_id;index"`
	Description string     `gorm:"column:description"`
	Damage      string     `gorm:"column:damage"`
	DamageLabel string     `gorm:"column:damage_label"`
	Amount      float64    `gorm:"column:amount"`
	Evidence    []string   `gorm:"column:evidence;type:text[]"`
	Status      string     `gorm:"column:status"`
	SubmittedAt time.Time  `gorm:"column:submitted_at"`
	ResolvedAt  *time.Time `gorm:"column:resolved_at"`
}

func (claimModel) TableName() string {
	return "insurance_claims"
}

func claimModelFromEntity(item entities.Claim) claimModel {
	return claimModel{
		ClaimID:     strings.TrimSpace(item.ClaimID),
		PolicyID:    strings.TrimSpace(item.PolicyID),
		Description: strings.TrimSpace(item.Description),
		Damage:      string(item.Damage),
		DamageLabel: strings.TrimSpace(item.DamageLabel),
		Amount:      item.Amount,
		Evidence:    copyOrEmpty(item.Evidence),
		Status:      string(item.Status),
		SubmittedAt: item.SubmittedAt.UTC(),
		ResolvedAt:  normalizeOptionalTime(item.ResolvedAt),
	}
}

func (m claimModel) toEntity() entities.Claim {
	return entities.Claim{
		ClaimID:     m.ClaimID,
		PolicyID:    m.PolicyID,
		Description: m.Description,
		Damage:      entities.DamageType(m.Damage),
		DamageLabel: m.DamageLabel,
		Amount:      m.Amount,
		Evidence:    copyOrEmpty(m.Evidence),
		Status:      entities.ClaimStatus(m.Status),
		SubmittedAt: m.SubmittedAt.UTC(),
		ResolvedAt:  normalizeOptionalTime(m.ResolvedAt),
	}
}

type idempotencyModel struct {
	Key         string    `gorm:"column:key;primaryKey"`
	RequestHash string    `gorm:"column:request_hash"`
	Payload     []byte    `gorm:"column:payload"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
}

func (idempotencyModel) TableName() string {
	return "insurance_idempotency"
}

type counterModel struct {
	Name  string `gorm:"column:name;primaryKey"`
	Value uint64 `gorm:"column:value"`
}

func (counterModel) TableName() string {
	return "insurance_counters"
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

var _ ports.PolicyRepository = (*Repository)(nil)
var _ ports.IdempotencyStore = (*Repository)(nil)
