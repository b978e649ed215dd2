package lib

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrRedisNotConfigured = errors.New("REDIS_URL is not set")

var (
	redisMu     sync.Mutex
	redisClient *redis.Client
)

func GetRedisClient() (*redis.Client, error) {
	redisMu.Lock()
	defer redisMu.Unlock()
	if redisClient != nil {
		return redisClient, nil
	}
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, ErrRedisNotConfigured
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	redisClient = redis.NewClient(opt)
	return redisClient, nil
}

// PingRedis checks connectivity with a short deadline.
func PingRedis(ctx context.Context, rdb *redis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return rdb.Ping(ctx).Err()
}

// NewRedisClient Replace redis instance with custom client implementation
func NewRedisClient(c *redis.Client) *redis.Client {
	redisMu.Lock()
	defer redisMu.Unlock()
	redisClient = c
	return redisClient
}

func CloseRedis() error {
	redisMu.Lock()
	defer redisMu.Unlock()
	if redisClient == nil {
		return nil
	}
	err := redisClient.Close()
	redisClient = nil
	return err
}
