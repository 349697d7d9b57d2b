package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
)

// StreamPublisher publishes structured events to a stream topic.
type StreamPublisher interface {
	PublishJSON(ctx context.Context, stream string, data any) (string, error)
}

// RedisStreamPublisher publishes to Redis Streams via XADD.
type RedisStreamPublisher struct {
	c *redis.Client
}

func NewRedisStreamPublisher(c *redis.Client) *RedisStreamPublisher {
	return &RedisStreamPublisher{c: c}
}

// PublishJSON serializes data and appends it to the stream with a timestamp.
func (p *RedisStreamPublisher) PublishJSON(ctx context.Context, stream string, data any) (string, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return "", err
	}

	return p.c.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"data":      string(jsonBytes),
			"timestamp": time.Now().Unix(),
		},
	}).Result()
}
