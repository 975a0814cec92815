package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/sandookluxe/storefront/internal/otel"
)

// Redis persists cart payloads in redis, the deployed default.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Load(c context.Context, key string) ([]byte, bool, error) {
	c, span := otel.Tracer.Start(c, "RedisStorage Load")
	defer span.End()

	payload, err := r.client.Get(c, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		err = fmt.Errorf("failed loading key=%s with error=%w", key, err)
		otel.RecordError(err, span)
		return nil, false, err
	}
	return payload, true, nil
}

func (r *Redis) Save(c context.Context, key string, payload []byte) error {
	c, span := otel.Tracer.Start(c, "RedisStorage Save")
	defer span.End()

	if err := r.client.Set(c, key, payload, 0).Err(); err != nil {
		err = fmt.Errorf("failed saving key=%s with error=%w", key, err)
		otel.RecordError(err, span)
		return err
	}
	return nil
}

func (r *Redis) Delete(c context.Context, key string) error {
	c, span := otel.Tracer.Start(c, "RedisStorage Delete")
	defer span.End()

	if err := r.client.Del(c, key).Err(); err != nil {
		err = fmt.Errorf("failed deleting key=%s with error=%w", key, err)
		otel.RecordError(err, span)
		return err
	}
	return nil
}
