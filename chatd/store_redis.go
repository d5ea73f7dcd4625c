package chatd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const conversationKeyPrefix = "conversation:"

// RedisStore persists conversations as JSON blobs under conversation:<id>.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to the Redis instance named by url
// (redis://[user:pass@]host:port/db).
func NewRedisStore(url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis store: parse url: %w", err)
	}
	return &RedisStore{client: redis.NewClient(opts)}, nil
}

// NewRedisStoreFromClient wraps an existing client, mainly for tests.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Close() error { return s.client.Close() }

func conversationKey(id string) string { return conversationKeyPrefix + id }

func (s *RedisStore) Save(ctx context.Context, conv *Conversation) error {
	if conv == nil || conv.ID == "" {
		return &ValidationError{Field: "conversation", Message: "missing id"}
	}
	data, err := json.Marshal(conv)
	if err != nil {
		return &StorageError{Op: "encode", Err: err}
	}
	if err := s.client.Set(ctx, conversationKey(conv.ID), data, 0).Err(); err != nil {
		return &StorageError{Op: "save", Err: err}
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Conversation, error) {
	data, err := s.client.Get(ctx, conversationKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, &NotFoundError{Resource: "conversation", Key: id}
	}
	if err != nil {
		return nil, &StorageError{Op: "get", Err: err}
	}
	var conv Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, &StorageError{Op: "decode", Err: err}
	}
	return &conv, nil
}

func (s *RedisStore) List(ctx context.Context) ([]*Conversation, error) {
	keys, err := s.scanKeys(ctx)
	if err != nil {
		return nil, err
	}
	convs := make([]*Conversation, 0, len(keys))
	for _, key := range keys {
		data, err := s.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			// Deleted between scan and get.
			continue
		}
		if err != nil {
			return nil, &StorageError{Op: "get", Err: err}
		}
		var conv Conversation
		if err := json.Unmarshal(data, &conv); err != nil {
			return nil, &StorageError{Op: "decode", Err: err}
		}
		convs = append(convs, &conv)
	}
	sortConversations(convs)
	return convs, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, conversationKey(id)).Result()
	if err != nil {
		return &StorageError{Op: "delete", Err: err}
	}
	if n == 0 {
		return &NotFoundError{Resource: "conversation", Key: id}
	}
	return nil
}

func (s *RedisStore) DeleteAll(ctx context.Context) (int, error) {
	keys, err := s.scanKeys(ctx)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	n, err := s.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, &StorageError{Op: "delete", Err: err}
	}
	return int(n), nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return &StorageError{Op: "ping", Err: err}
	}
	return nil
}

func (s *RedisStore) scanKeys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, conversationKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, &StorageError{Op: "scan", Err: err}
	}
	return keys, nil
}
