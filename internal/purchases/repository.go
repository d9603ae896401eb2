package purchases

import (
	"context"

	"github.com/angelmondragon/itempurchase/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists purchases and reads the rows a purchase is built from.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts the purchase header together with its lines.
func (r *Repository) Create(ctx context.Context, purchase *models.Purchase) (*models.Purchase, error) {
	if err := r.db.WithContext(ctx).Create(purchase).Error; err != nil {
		return nil, err
	}
	return purchase, nil
}

// FindByID loads a purchase with its lines.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("item_name ASC")
		}).
		First(&purchase, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// FindByIdempotencyKey loads the purchase previously booked for the account under key.
func (r *Repository) FindByIdempotencyKey(ctx context.Context, accountID uuid.UUID, key string) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("item_name ASC")
		}).
		Where("account_id = ? AND idempotency_key = ?", accountID, key).
		First(&purchase).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// CountByAccount returns how many purchases were booked against the account.
func (r *Repository) CountByAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Purchase{}).
		Where("account_id = ?", accountID).
		Count(&count).Error
	return count, err
}

// AccountExists reports whether the account row is present.
func (r *Repository) AccountExists(ctx context.Context, accountID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", accountID).
		Count(&count).Error
	return count > 0, err
}

// FindItems loads the priced items referenced by a cart snapshot.
func (r *Repository) FindItems(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Item, error) {
	var rows []models.Item
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Item, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	return byID, nil
}
