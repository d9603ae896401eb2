package items

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/angelmondragon/itempurchase/pkg/db"
	"github.com/angelmondragon/itempurchase/pkg/db/models"
	pkgerrors "github.com/angelmondragon/itempurchase/pkg/errors"
	"github.com/angelmondragon/itempurchase/pkg/logger"
	"github.com/angelmondragon/itempurchase/pkg/redis"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	filterOptionsCacheScope = "items"
	filterOptionsCacheName  = "filter-options"
	defaultSearchMaxLength  = 120
)

// Service exposes catalog read and write operations.
type Service interface {
	ListItems(ctx context.Context, filters ListFilters) ([]ItemDTO, error)
	FilterOptions(ctx context.Context) (*FilterOptionsDTO, error)
	CreateItem(ctx context.Context, userID uuid.UUID, input CreateItemInput) (*ItemDTO, error)
	AttachImage(ctx context.Context, itemID uuid.UUID, imageURL string) (*ItemDTO, error)
}

// CreateItemInput holds the validated payload to create an item.
type CreateItemInput struct {
	Name        string
	Description *string
	Price       decimal.Decimal
	Type        string
	Family      string
	ImageURL    *string
}

type userLoader interface {
	FindUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// ServiceOptions tunes caching and validation limits.
type ServiceOptions struct {
	FilterOptionsTTL time.Duration
	SearchMaxLength  int
}

type service struct {
	repo  *Repository
	users userLoader
	cache redis.Cache
	logg  *logger.Logger
	opts  ServiceOptions
}

// NewService constructs an item service. The cache is optional.
func NewService(repo *Repository, users userLoader, cache redis.Cache, logg *logger.Logger, opts ServiceOptions) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("item repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("user loader required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	if opts.SearchMaxLength <= 0 {
		opts.SearchMaxLength = defaultSearchMaxLength
	}
	return &service{
		repo:  repo,
		users: users,
		cache: cache,
		logg:  logg,
		opts:  opts,
	}, nil
}

// ListItems returns the items matching the filters. Filtering happens entirely here.
func (s *service) ListItems(ctx context.Context, filters ListFilters) ([]ItemDTO, error) {
	filters.Type = strings.TrimSpace(filters.Type)
	filters.Family = strings.TrimSpace(filters.Family)
	filters.Search = strings.TrimSpace(filters.Search)
	if len([]rune(filters.Search)) > s.opts.SearchMaxLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("search must be at most %d characters", s.opts.SearchMaxLength))
	}

	rows, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list items")
	}
	return newItemDTOs(rows), nil
}

// FilterOptions returns the distinct types and families, served from cache when possible.
func (s *service) FilterOptions(ctx context.Context) (*FilterOptionsDTO, error) {
	if cached, ok := s.cachedFilterOptions(ctx); ok {
		return cached, nil
	}

	types, err := s.repo.DistinctTypes(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: distinct item types")
	}
	families, err := s.repo.DistinctFamilies(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: distinct item families")
	}
	options := &FilterOptionsDTO{Types: types, Families: families}
	s.storeFilterOptions(ctx, options)
	return options, nil
}

// CreateItem persists a new item. Only managers may create items.
func (s *service) CreateItem(ctx context.Context, userID uuid.UUID, input CreateItemInput) (*ItemDTO, error) {
	user, err := s.users.FindUser(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load user")
	}
	if !user.IsManager {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only managers can create items")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if input.ImageURL != nil {
		if err := validateImageURL(*input.ImageURL); err != nil {
			return nil, err
		}
	}

	createdBy := user.ID
	item := &models.Item{
		Name:        name,
		Description: input.Description,
		Price:       input.Price.Round(2),
		Type:        strings.TrimSpace(input.Type),
		Family:      strings.TrimSpace(input.Family),
		ImageURL:    input.ImageURL,
		CreatedByID: &createdBy,
	}
	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert item")
	}

	s.invalidateFilterOptions(ctx)
	return NewItemDTO(created), nil
}

// AttachImage stores the image URL on an existing item.
func (s *service) AttachImage(ctx context.Context, itemID uuid.UUID, imageURL string) (*ItemDTO, error) {
	imageURL = strings.TrimSpace(imageURL)
	if err := validateImageURL(imageURL); err != nil {
		return nil, err
	}

	found, err := s.repo.UpdateImageURL(ctx, itemID, imageURL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update item image")
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}

	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reload item")
	}
	return NewItemDTO(item), nil
}

func (s *service) filterOptionsKey() string {
	return s.cache.CacheKey(filterOptionsCacheScope, filterOptionsCacheName)
}

func (s *service) cachedFilterOptions(ctx context.Context) (*FilterOptionsDTO, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, s.filterOptionsKey())
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "filter options cache read failed")
		}
		return nil, false
	}
	var options FilterOptionsDTO
	if err := json.Unmarshal([]byte(raw), &options); err != nil {
		s.logg.Warn(ctx, "filter options cache entry is corrupt")
		return nil, false
	}
	return &options, true
}

func (s *service) storeFilterOptions(ctx context.Context, options *FilterOptionsDTO) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(options)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.filterOptionsKey(), string(payload), s.opts.FilterOptionsTTL); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "filter options cache write failed")
	}
}

func (s *service) invalidateFilterOptions(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, s.filterOptionsKey()); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "filter options cache invalidation failed")
	}
}

func validateImageURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "image_url must be an absolute http(s) url")
	}
	return nil
}
