package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"evtariff/internal/models"
	"evtariff/internal/tariff"
)

const snapshotKey = "tariff:snapshot:current"

type snapshotPayload struct {
	Version   string                 `json:"version"`
	Rules     []models.RecurringRule `json:"rules"`
	Overrides []models.DateOverride  `json:"overrides"`
}

// SnapshotCache keeps the current rule snapshot in redis so hot resolution
// paths skip the database. A cached snapshot keeps its original version;
// every rule write invalidates the key.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSnapshotCache returns redis-backed cache.
func NewSnapshotCache(client *redis.Client, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{client: client, ttl: ttl}
}

// Save caches the snapshot.
func (c *SnapshotCache) Save(ctx context.Context, snap *tariff.Snapshot) error {
	data, err := json.Marshal(snapshotPayload{
		Version:   snap.Version,
		Rules:     snap.Rules(),
		Overrides: snap.Overrides(),
	})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, snapshotKey, data, c.ttl).Err()
}

// Get returns the cached snapshot, or nil on a miss.
func (c *SnapshotCache) Get(ctx context.Context) (*tariff.Snapshot, error) {
	result, err := c.client.Get(ctx, snapshotKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var payload snapshotPayload
	if err := json.Unmarshal([]byte(result), &payload); err != nil {
		return nil, err
	}
	return tariff.NewSnapshot(payload.Version, payload.Rules, payload.Overrides), nil
}

// Invalidate drops the cached snapshot after a rule write.
func (c *SnapshotCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, snapshotKey).Err()
}
