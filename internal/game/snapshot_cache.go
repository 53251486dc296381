package game

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type cacheWriteFunc func(ctx context.Context, key string, data []byte, ttl time.Duration) error

// snapshotCache writes session snapshots to redis from its own goroutine.
// Offers never block: a session with a write still pending has its snapshot
// replaced by the newer one.
type snapshotCache struct {
	write cacheWriteFunc
	ttl   time.Duration

	mu      sync.Mutex
	pending map[string]Snapshot
	wake    chan struct{}
}

func newSnapshotCache(write cacheWriteFunc, ttl time.Duration) *snapshotCache {
	return &snapshotCache{
		write:   write,
		ttl:     ttl,
		pending: make(map[string]Snapshot),
		wake:    make(chan struct{}, 1),
	}
}

func redisCacheWriter(rdb *redis.Client) cacheWriteFunc {
	return func(ctx context.Context, key string, data []byte, ttl time.Duration) error {
		return rdb.SetEx(ctx, key, data, ttl).Err()
	}
}

func (c *snapshotCache) offer(sessionID string, snap Snapshot) {
	c.mu.Lock()
	c.pending[sessionID] = snap
	c.mu.Unlock()
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *snapshotCache) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.wake:
			c.flush(ctx)
		}
	}
}

func (c *snapshotCache) flush(ctx context.Context) {
	c.mu.Lock()
	batch := c.pending
	c.pending = make(map[string]Snapshot)
	c.mu.Unlock()

	for id, snap := range batch {
		data, err := json.Marshal(snap)
		if err != nil {
			log.Printf("[REDIS] Failed to encode snapshot for %s: %v", id, err)
			continue
		}
		wctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err = c.write(wctx, SnapshotKey(id), data, c.ttl)
		cancel()
		if err != nil {
			log.Printf("[REDIS] Failed to cache snapshot for %s: %v", id, err)
		}
	}
}

// SnapshotKey is the redis key holding a session's latest snapshot.
func SnapshotKey(sessionID string) string {
	return "practice:" + sessionID + ":snapshot"
}
