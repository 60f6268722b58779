package caching

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"stocktrack/internal/models"
)

const (
	itemsKey      = "stocktrack:items"
	warehousesKey = "stocktrack:warehouses"
	dashboardKey  = "stocktrack:dashboard"
)

// CacheService is the process-wide shared-state cache: the current item list,
// warehouse list and dashboard summary. Mutations invalidate the affected keys
// rather than re-fetching everything.
type CacheService interface {
	GetItems(ctx context.Context) ([]*models.Item, error)
	SetItems(ctx context.Context, items []*models.Item, ttl time.Duration) error

	GetWarehouses(ctx context.Context) ([]*models.Warehouse, error)
	SetWarehouses(ctx context.Context, warehouses []*models.Warehouse, ttl time.Duration) error

	GetDashboardSummary(ctx context.Context) (*models.DashboardSummary, error)
	SetDashboardSummary(ctx context.Context, summary *models.DashboardSummary, ttl time.Duration) error

	// Invalidation, scoped to what a mutation touched
	InvalidateItems(ctx context.Context) error
	InvalidateWarehouses(ctx context.Context) error

	// Generic string operations for refresh token storage
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Accept redis://host:port URLs as well as bare host:port
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

func (r *redisCacheService) GetItems(ctx context.Context) ([]*models.Item, error) {
	data, err := r.client.Get(ctx, itemsKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var items []*models.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *redisCacheService) SetItems(ctx context.Context, items []*models.Item, ttl time.Duration) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, itemsKey, data, ttl).Err()
}

func (r *redisCacheService) GetWarehouses(ctx context.Context) ([]*models.Warehouse, error) {
	data, err := r.client.Get(ctx, warehousesKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var warehouses []*models.Warehouse
	if err := json.Unmarshal(data, &warehouses); err != nil {
		return nil, err
	}
	return warehouses, nil
}

func (r *redisCacheService) SetWarehouses(ctx context.Context, warehouses []*models.Warehouse, ttl time.Duration) error {
	data, err := json.Marshal(warehouses)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, warehousesKey, data, ttl).Err()
}

func (r *redisCacheService) GetDashboardSummary(ctx context.Context) (*models.DashboardSummary, error) {
	data, err := r.client.Get(ctx, dashboardKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var summary models.DashboardSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (r *redisCacheService) SetDashboardSummary(ctx context.Context, summary *models.DashboardSummary, ttl time.Duration) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, dashboardKey, data, ttl).Err()
}

// InvalidateItems drops the item list and the dashboard summary, since every
// stock mutation changes both.
func (r *redisCacheService) InvalidateItems(ctx context.Context) error {
	return r.client.Del(ctx, itemsKey, dashboardKey).Err()
}

func (r *redisCacheService) InvalidateWarehouses(ctx context.Context) error {
	return r.client.Del(ctx, warehousesKey, itemsKey).Err()
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		return "", err
	}
	return value, nil
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
