package items

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/angelmondragon/itempurchase/pkg/db/models"
	"github.com/angelmondragon/itempurchase/pkg/redis"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupItemsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:items_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.User{}, &models.Item{}))
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}

func mustCreateTestUser(t *testing.T, conn *gorm.DB, manager bool) *models.User {
	t.Helper()
	user := &models.User{
		Email:     fmt.Sprintf("ip_test_%s@example.com", uuid.NewString()),
		Name:      "Repo Tester",
		IsManager: manager,
	}
	require.NoError(t, conn.Create(user).Error)
	return user
}

func mustCreateTestItem(t *testing.T, conn *gorm.DB, name, itemType, family, price string) *models.Item {
	t.Helper()
	item := &models.Item{
		Name:   name,
		Price:  decimal.RequireFromString(price),
		Type:   itemType,
		Family: family,
	}
	require.NoError(t, conn.Create(item).Error)
	return item
}

type userLoaderStub struct {
	conn *gorm.DB
}

func (s userLoaderStub) FindUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.conn.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

type fakeCache struct {
	data  map[string]string
	gets  int
	dels  int
	setTT time.Duration
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string]string{}}
}

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	c.gets++
	v, ok := c.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	c.data[key] = fmt.Sprint(value)
	c.setTT = ttl
	return nil
}

func (c *fakeCache) Del(_ context.Context, keys ...string) error {
	c.dels++
	for _, key := range keys {
		delete(c.data, key)
	}
	return nil
}

func (c *fakeCache) CacheKey(parts ...string) string {
	return (&redis.Client{}).CacheKey(parts...)
}
