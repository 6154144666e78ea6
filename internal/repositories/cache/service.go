// Package cache provides a redis-backed read-through cache. Cached
// values are never authoritative; the relational store always wins.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oureum/oureum-backend/internal/models"
	"github.com/redis/go-redis/v9"
)

const currentPriceKey = "price:current"

type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	return &CacheService{
		client: client,
		ttl:    defaultTTL,
	}
}

// Base operations
func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, s.ttl).Err()
}

func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

// Price snapshot caching
func (s *CacheService) CachePrice(ctx context.Context, snap *models.PriceSnapshot) error {
	return s.Set(ctx, currentPriceKey, snap)
}

func (s *CacheService) GetPrice(ctx context.Context) (*models.PriceSnapshot, error) {
	var snap models.PriceSnapshot
	found, err := s.Get(ctx, currentPriceKey, &snap)
	if err != nil || !found {
		return nil, err
	}
	return &snap, nil
}

func (s *CacheService) InvalidatePrice(ctx context.Context) error {
	return s.Delete(ctx, currentPriceKey)
}

// Balance caching
func balanceKey(userID uint) string {
	return fmt.Sprintf("balance:user:%d", userID)
}

type CachedBalances struct {
	Fiat  string `json:"fiat"`
	Grams string `json:"grams"`
}

func (s *CacheService) CacheBalances(ctx context.Context, userID uint, balances *CachedBalances) error {
	return s.Set(ctx, balanceKey(userID), balances)
}

func (s *CacheService) GetBalances(ctx context.Context, userID uint) (*CachedBalances, error) {
	var balances CachedBalances
	found, err := s.Get(ctx, balanceKey(userID), &balances)
	if err != nil || !found {
		return nil, err
	}
	return &balances, nil
}

func (s *CacheService) InvalidateBalances(ctx context.Context, userID uint) error {
	return s.Delete(ctx, balanceKey(userID))
}

// FlushAll flushes all keys from the cache.
func (s *CacheService) FlushAll(ctx context.Context) error {
	return s.client.FlushAll(ctx).Err()
}

// Close closes the Redis client connection.
func (s *CacheService) Close() error {
	return s.client.Close()
}
