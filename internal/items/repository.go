package items

import (
	"context"
	"strings"

	"github.com/angelmondragon/itempurchase/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListFilters are the server-side constraints applied to the item listing.
// Empty values mean no constraint.
type ListFilters struct {
	Type   string
	Family string
	Search string
}

// Repository persists catalog items.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns the items matching the filters ordered by name.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]models.Item, error) {
	query := r.db.WithContext(ctx).Model(&models.Item{})
	if filters.Type != "" {
		query = query.Where("type = ?", filters.Type)
	}
	if filters.Family != "" {
		query = query.Where("family = ?", filters.Family)
	}
	if search := strings.TrimSpace(filters.Search); search != "" {
		query = query.Where("LOWER(name) LIKE ? ESCAPE '\\'", likePattern(search))
	}

	var rows []models.Item
	if err := query.Order("name ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads a single item.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Create inserts a new item row.
func (r *Repository) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateImageURL sets the image of an item and reports whether a row matched.
func (r *Repository) UpdateImageURL(ctx context.Context, id uuid.UUID, imageURL string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("id = ?", id).
		Update("image_url", imageURL)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DistinctTypes returns the sorted non-empty item types.
func (r *Repository) DistinctTypes(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "type")
}

// DistinctFamilies returns the sorted non-empty item families.
func (r *Repository) DistinctFamilies(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "family")
}

func (r *Repository) distinct(ctx context.Context, column string) ([]string, error) {
	values := []string{}
	if err := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where(column+" <> ''").
		Distinct(column).
		Order(column+" ASC").
		Pluck(column, &values).
		Error; err != nil {
		return nil, err
	}
	return values, nil
}

func likePattern(search string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.ToLower(search))
	return "%" + escaped + "%"
}
