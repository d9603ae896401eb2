package images

import (
	"context"
	"errors"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/itempurchase/pkg/errors"
	"github.com/angelmondragon/itempurchase/pkg/logger"
	"github.com/angelmondragon/itempurchase/pkg/redis"
)

const cacheScope = "images"

// Service finds a representative image for a free-text query.
type Service interface {
	FindImageURL(ctx context.Context, query string) (string, error)
}

// PhotoSearcher resolves a query to the first matching photo URL.
type PhotoSearcher interface {
	FirstPhotoURL(ctx context.Context, query string) (string, error)
}

type service struct {
	searcher PhotoSearcher
	cache    redis.Cache
	ttl      time.Duration
	logg     *logger.Logger
}

// NewService builds the image lookup service. A nil searcher disables lookups:
// every query then resolves to no image.
func NewService(searcher PhotoSearcher, cache redis.Cache, ttl time.Duration, logg *logger.Logger) Service {
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{searcher: searcher, cache: cache, ttl: ttl, logg: logg}
}

func (s *service) FindImageURL(ctx context.Context, query string) (string, error) {
	normalized := strings.ToLower(strings.Join(strings.Fields(query), " "))
	if normalized == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "query is required")
	}
	if s.searcher == nil {
		return "", nil
	}

	key := ""
	if s.cache != nil {
		key = s.cache.CacheKey(cacheScope, normalized)
		cached, err := s.cache.Get(ctx, key)
		switch {
		case err == nil:
			return cached, nil
		case !errors.Is(err, redis.Nil):
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "image cache read failed")
		}
	}

	url, err := s.searcher.FirstPhotoURL(ctx, normalized)
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, url, s.ttl); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "image cache write failed")
		}
	}
	return url, nil
}
