package services

import (
	"context"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// KVBackend is the key-value primitive set the handoff store needs.
type KVBackend interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
}

type RedisService struct {
	client *redis.Client
}

func NewRedisService(addr string, db int) *RedisService {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	return &RedisService{client: client}
}

// NewRedisServiceWithClient wraps an existing client.
func NewRedisServiceWithClient(client *redis.Client) *RedisService {
	return &RedisService{client: client}
}

// HSet writes all fields of a hash
func (r *RedisService) HSet(ctx context.Context, key string, fields map[string]string) error {
	return capture(ctx, "Redis.HSet", func(ctx1 context.Context) error {
		values := make([]interface{}, 0, len(fields)*2)
		for k, v := range fields {
			values = append(values, k, v)
		}
		addRedisMetadata(ctx1, key, "HSET")
		return errors.Wrapf(r.client.HSet(ctx1, key, values...).Err(), "hset %s", key)
	})
}

// Expire sets a time-to-live on a key
func (r *RedisService) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return capture(ctx, "Redis.Expire", func(ctx1 context.Context) error {
		addRedisMetadata(ctx1, key, "EXPIRE")
		return errors.Wrapf(r.client.Expire(ctx1, key, ttl).Err(), "expire %s", key)
	})
}

// HGetAll reads every field of a hash. A missing key yields an empty map.
func (r *RedisService) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	var fields map[string]string
	err := capture(ctx, "Redis.HGetAll", func(ctx1 context.Context) error {
		addRedisMetadata(ctx1, key, "HGETALL")
		res, err := r.client.HGetAll(ctx1, key).Result()
		if err == redis.Nil {
			fields = map[string]string{}
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "hgetall %s", key)
		}
		fields = res
		return nil
	})
	return fields, err
}

// Del removes a key
func (r *RedisService) Del(ctx context.Context, key string) error {
	return capture(ctx, "Redis.Del", func(ctx1 context.Context) error {
		addRedisMetadata(ctx1, key, "DEL")
		return errors.Wrapf(r.client.Del(ctx1, key).Err(), "del %s", key)
	})
}

// Ping checks Redis connection
func (r *RedisService) Ping(ctx context.Context) error {
	return capture(ctx, "Redis.Ping", func(ctx1 context.Context) error {
		addRedisMetadata(ctx1, "", "PING")
		return r.client.Ping(ctx1).Err()
	})
}

func (r *RedisService) Close() error {
	return r.client.Close()
}

func addRedisMetadata(ctx context.Context, key, op string) {
	if seg := xray.GetSegment(ctx); seg != nil {
		if key != "" {
			seg.AddMetadata("redis.key", key)
		}
		seg.AddMetadata("redis.operation", op)
	}
}

// capture records fn as an X-Ray subsegment when ctx carries a segment and
// runs it directly otherwise.
func capture(ctx context.Context, name string, fn func(context.Context) error) error {
	if xray.GetSegment(ctx) == nil {
		return fn(ctx)
	}
	return xray.Capture(ctx, name, fn)
}
