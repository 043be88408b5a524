package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connect opens the catalog read cache. An empty address or an unreachable
// server disables caching rather than failing startup: the store of record
// is always the database.
func Connect(addr string) *redis.Client {
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Printf("Redis unavailable at %s, caching disabled: %v", addr, err)
		return nil
	}

	log.Printf("Redis connected at %s", addr)
	return client
}

// GetJSON reports whether key was present and unmarshalled into dest.
func GetJSON(ctx context.Context, rdb *redis.Client, key string, dest interface{}) bool {
	if rdb == nil {
		return false
	}
	raw, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func SetJSON(ctx context.Context, rdb *redis.Client, key string, val interface{}, ttl time.Duration) {
	if rdb == nil {
		return
	}
	raw, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		log.Printf("cache set %s failed: %v", key, err)
	}
}

func Invalidate(ctx context.Context, rdb *redis.Client, keys ...string) {
	if rdb == nil || len(keys) == 0 {
		return
	}
	if err := rdb.Del(ctx, keys...).Err(); err != nil {
		log.Printf("cache invalidate failed: %v", err)
	}
}
