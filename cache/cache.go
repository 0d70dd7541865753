// Package cache is a best-effort redis read-through layer for the
// init-config resolver. Invalidation is epoch based: every write to an
// atom, bundle or association bumps one counter that participates in the
// cache key, so stale entries simply age out under their TTL.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"simorder/config"
	"simorder/logutils"

	"github.com/redis/go-redis/v9"
)

const (
	epochKey      = "simorder:cfg:epoch"
	initConfigTTL = time.Hour
)

var (
	once   sync.Once
	client *redis.Client
)

// Init connects to redis when an address is configured. The cache stays
// disabled (all lookups miss) without one.
func Init() {
	once.Do(func() {
		cfg := config.GetConfig()
		if cfg.Redis.Addr == "" {
			logutils.Log.Info("redis not configured, init-config cache disabled")
			return
		}
		c := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.Ping(ctx).Err(); err != nil {
			logutils.Log.Warnf("redis ping failed, cache disabled: %v", err)
			return
		}
		client = c
		logutils.Log.Info("Redis init success!")
	})
}

func Enabled() bool {
	return client != nil
}

// Epoch returns the current config epoch, 0 when the cache is disabled or
// unreachable.
func Epoch(ctx context.Context) int64 {
	if client == nil {
		return 0
	}
	n, err := client.Get(ctx, epochKey).Int64()
	if err != nil && err != redis.Nil {
		logutils.Log.Warnf("cache epoch read: %v", err)
	}
	return n
}

// BumpEpoch invalidates every cached init-config by advancing the epoch.
// Called after any write to atoms, bundles or associations.
func BumpEpoch(ctx context.Context) {
	if client == nil {
		return
	}
	if err := client.Incr(ctx, epochKey).Err(); err != nil {
		logutils.Log.Warnf("cache epoch bump: %v", err)
	}
}

// InitConfigKey builds the cache key for one resolver input triple under
// the given epoch.
func InitConfigKey(epoch int64, projectID uint, simTypeID, foldTypeID *uint) string {
	st, ft := uint(0), uint(0)
	if simTypeID != nil {
		st = *simTypeID
	}
	if foldTypeID != nil {
		ft = *foldTypeID
	}
	return fmt.Sprintf("simorder:initcfg:%d:%d:%d:%d", epoch, projectID, st, ft)
}

// GetInitConfig returns the cached payload bytes, or ok=false on miss or
// any cache failure.
func GetInitConfig(ctx context.Context, key string) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	b, err := client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logutils.Log.Warnf("cache get %s: %v", key, err)
		}
		return nil, false
	}
	return b, true
}

// SetInitConfig stores the payload bytes under the key, best effort.
func SetInitConfig(ctx context.Context, key string, payload []byte) {
	if client == nil {
		return
	}
	if err := client.Set(ctx, key, payload, initConfigTTL).Err(); err != nil {
		logutils.Log.Warnf("cache set %s: %v", key, err)
	}
}
