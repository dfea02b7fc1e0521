package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/matzehuels/slicetopo/pkg/errors"
	"github.com/matzehuels/slicetopo/pkg/serialize"
)

// DefaultRedisKey is the hash that holds all drafts.
const DefaultRedisKey = "slicetopo:drafts"

// RedisConfig configures a RedisStore.
type RedisConfig struct {
	Addr     string // default localhost:6379
	Password string
	DB       int
	Key      string // default DefaultRedisKey
}

// RedisStore keeps every draft as one field of a single Redis hash, so
// listing is a single HGETALL and saves are atomic per draft.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore connects to Redis and verifies the connection with PING.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	if cfg.Key == "" {
		cfg.Key = DefaultRedisKey
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, apperrors.Wrap(apperrors.ErrCodeNetwork, err, "connect to redis at %s", cfg.Addr)
	}
	return &RedisStore{client: client, key: cfg.Key}, nil
}

func (s *RedisStore) Save(ctx context.Context, name string, doc serialize.Document) (Draft, error) {
	d, err := newDraft(name, doc)
	if err != nil {
		return Draft{}, err
	}
	data, err := json.Marshal(d)
	if err != nil {
		return Draft{}, fmt.Errorf("marshal draft: %w", err)
	}
	if err := s.client.HSet(ctx, s.key, name, data).Err(); err != nil {
		return Draft{}, fmt.Errorf("redis hset %s: %w", name, err)
	}
	return d, nil
}

func (s *RedisStore) Load(ctx context.Context, name string) (Draft, error) {
	if err := apperrors.ValidateDraftName(name); err != nil {
		return Draft{}, err
	}
	data, err := s.client.HGet(ctx, s.key, name).Bytes()
	if errors.Is(err, redis.Nil) {
		return Draft{}, notFound(name)
	}
	if err != nil {
		return Draft{}, fmt.Errorf("redis hget %s: %w", name, err)
	}
	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return Draft{}, fmt.Errorf("parse draft %s: %w", name, err)
	}
	return d, nil
}

func (s *RedisStore) Delete(ctx context.Context, name string) error {
	if err := apperrors.ValidateDraftName(name); err != nil {
		return err
	}
	if err := s.client.HDel(ctx, s.key, name).Err(); err != nil {
		return fmt.Errorf("redis hdel %s: %w", name, err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]Info, error) {
	all, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall: %w", err)
	}
	infos := make([]Info, 0, len(all))
	for name, raw := range all {
		var d Draft
		if err := json.Unmarshal([]byte(raw), &d); err != nil {
			return nil, fmt.Errorf("parse draft %s: %w", name, err)
		}
		infos = append(infos, d.info())
	}
	slices.SortFunc(infos, func(a, b Info) int { return strings.Compare(a.Name, b.Name) })
	return infos, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
