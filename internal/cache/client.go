package cache

import (
	"context"

	"github.com/go-redis/redis/v8"
)

// Client redis client type alias.
type Client = redis.Client

// RedisOptions connection settings for the cache/audit redis.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient creates a redis client.
func NewRedisClient(opts RedisOptions) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
}

// Ping checks the redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	return client.Ping(ctx).Err()
}

// Close closes the redis connection.
func Close(client *redis.Client) error {
	return client.Close()
}
