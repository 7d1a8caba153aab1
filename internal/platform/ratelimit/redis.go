package ratelimit

import (
	"context"
	"fmt"
	"log"
	"time"

	"formgate/internal/platform/config"

	"github.com/redis/go-redis/v9"
)

var RDB *redis.Client

func ConnectRedis() {
	RDB = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDB,
	})

	ctx := context.Background()
	if _, err := RDB.Ping(ctx).Result(); err != nil {
		log.Fatalf("Could not connect to Redis: %v", err)
	}
	fmt.Println("Successfully connected to Redis!")
}

func CloseRedis() {
	if RDB != nil {
		RDB.Close()
		fmt.Println("Redis connection closed.")
	}
}

// Counter is the slice of the Redis API the limiter needs. *redis.Client
// satisfies it.
type Counter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// Limiter is a fixed-window counter keyed per client. A window lasts one
// minute; the first hit in a window sets the expiry.
type Limiter struct {
	rdb    Counter
	limit  int
	prefix string
}

func NewLimiter(rdb Counter, limit int, prefix string) *Limiter {
	return &Limiter{rdb: rdb, limit: limit, prefix: prefix}
}

// Allow reports whether the given key may make another request in the
// current window. Fails open: a Redis error never blocks intake.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	if l == nil || l.rdb == nil {
		return true
	}

	redisKey := l.prefix + ":" + key
	count, err := l.rdb.Incr(ctx, redisKey).Result()
	if err != nil {
		log.Printf("rate limiter incr failed for %s: %v", redisKey, err)
		return true
	}
	if count == 1 {
		if err := l.rdb.Expire(ctx, redisKey, time.Minute).Err(); err != nil {
			log.Printf("rate limiter expire failed for %s: %v", redisKey, err)
		}
	}
	return count <= int64(l.limit)
}
