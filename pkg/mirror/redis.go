package mirror

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const defaultNamespace = "nowtask:"

// Redis mirrors each collection as one string value.
type Redis struct {
	rdb       *redis.Client
	namespace string
}

// NewRedis returns a Redis mirror. Keys are stored as namespace+key; an
// empty namespace selects "nowtask:".
func NewRedis(rdb *redis.Client, namespace string) *Redis {
	if namespace == "" {
		namespace = defaultNamespace
	}
	return &Redis{rdb: rdb, namespace: namespace}
}

// NewRedisFromURL parses a redis:// or rediss:// URL.
func NewRedisFromURL(rawURL, namespace string) (*Redis, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	return NewRedis(redis.NewClient(opts), namespace), nil
}

func (r *Redis) Pull(ctx context.Context, key string) ([]byte, error) {
	b, err := r.rdb.Get(ctx, r.namespace+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *Redis) Push(ctx context.Context, key string, data []byte) error {
	return r.rdb.Set(ctx, r.namespace+key, data, 0).Err()
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
