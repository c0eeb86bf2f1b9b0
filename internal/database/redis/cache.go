package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ds124wfegd/eventmarket/internal/entity"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

const banksKey = "paystack:banks:nigeria"

func organizerKey(ownerID string) string {
	return "organizer:owner:" + ownerID
}

type CacheRepository interface {
	GetBanks(ctx context.Context) ([]entity.Bank, error)
	SetBanks(ctx context.Context, banks []entity.Bank) error
	GetOrganizer(ctx context.Context, ownerID string) (*entity.Organizer, error)
	SetOrganizer(ctx context.Context, organizer *entity.Organizer) error
	DeleteOrganizer(ctx context.Context, ownerID string) error
}

type cacheRepository struct {
	client       *redis.Client
	banksTTL     time.Duration
	organizerTTL time.Duration
}

func NewCacheRepository(client *redis.Client, banksTTL, organizerTTL time.Duration) CacheRepository {
	return &cacheRepository{
		client:       client,
		banksTTL:     banksTTL,
		organizerTTL: organizerTTL,
	}
}

func (r *cacheRepository) GetBanks(ctx context.Context) ([]entity.Bank, error) {
	var banks []entity.Bank
	if err := r.get(ctx, banksKey, &banks); err != nil {
		return nil, err
	}
	return banks, nil
}

func (r *cacheRepository) SetBanks(ctx context.Context, banks []entity.Bank) error {
	return r.set(ctx, banksKey, banks, r.banksTTL)
}

func (r *cacheRepository) GetOrganizer(ctx context.Context, ownerID string) (*entity.Organizer, error) {
	var organizer entity.Organizer
	if err := r.get(ctx, organizerKey(ownerID), &organizer); err != nil {
		return nil, err
	}
	return &organizer, nil
}

func (r *cacheRepository) SetOrganizer(ctx context.Context, organizer *entity.Organizer) error {
	return r.set(ctx, organizerKey(organizer.OwnerID), organizer, r.organizerTTL)
}

func (r *cacheRepository) DeleteOrganizer(ctx context.Context, ownerID string) error {
	return r.client.Del(ctx, organizerKey(ownerID)).Err()
}

func (r *cacheRepository) get(ctx context.Context, key string, dest any) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (r *cacheRepository) set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

// noopCache is used when redis is disabled; every read is a miss.
type noopCache struct{}

func NewNoopCache() CacheRepository {
	return noopCache{}
}

func (noopCache) GetBanks(context.Context) ([]entity.Bank, error) { return nil, ErrCacheMiss }
func (noopCache) SetBanks(context.Context, []entity.Bank) error   { return nil }
func (noopCache) GetOrganizer(context.Context, string) (*entity.Organizer, error) {
	return nil, ErrCacheMiss
}
func (noopCache) SetOrganizer(context.Context, *entity.Organizer) error { return nil }
func (noopCache) DeleteOrganizer(context.Context, string) error         { return nil }
