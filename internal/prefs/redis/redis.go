package redis

import (
	"context"
	"errors"
	"fmt"

	"ad-mediation/internal/prefs"

	goredis "github.com/redis/go-redis/v9"
)

// KeyPrefix - префикс хешей, по одному хешу на пространство имен
const KeyPrefix = "ad_mediation:prefs:"

type Store struct {
	client *goredis.Client
}

var _ prefs.Store = (*Store)(nil)

func New(ctx context.Context, addr, password string, db int) (*Store, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return &Store{client: client}, nil
}

// NewWithClient оборачивает готовый клиент
func NewWithClient(client *goredis.Client) *Store {
	return &Store{client: client}
}

func hashKey(namespace string) (string, error) {
	if namespace == "" {
		return "", prefs.ErrEmptyNamespace
	}
	return KeyPrefix + namespace, nil
}

func (s *Store) GetString(ctx context.Context, namespace, key, def string) (string, error) {
	h, err := hashKey(namespace)
	if err != nil {
		return "", err
	}
	v, err := s.client.HGet(ctx, h, key).Result()
	if errors.Is(err, goredis.Nil) {
		return def, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get %s/%s: %w", namespace, key, err)
	}
	return v, nil
}

func (s *Store) PutString(ctx context.Context, namespace, key, value string) error {
	h, err := hashKey(namespace)
	if err != nil {
		return err
	}
	if err := s.client.HSet(ctx, h, key, value).Err(); err != nil {
		return fmt.Errorf("failed to put %s/%s: %w", namespace, key, err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, namespace, key string) error {
	h, err := hashKey(namespace)
	if err != nil {
		return err
	}
	if err := s.client.HDel(ctx, h, key).Err(); err != nil {
		return fmt.Errorf("failed to remove %s/%s: %w", namespace, key, err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context, namespace string) error {
	h, err := hashKey(namespace)
	if err != nil {
		return err
	}
	if err := s.client.Del(ctx, h).Err(); err != nil {
		return fmt.Errorf("failed to clear %s: %w", namespace, err)
	}
	return nil
}

func (s *Store) Contains(ctx context.Context, namespace, key string) (bool, error) {
	h, err := hashKey(namespace)
	if err != nil {
		return false, err
	}
	ok, err := s.client.HExists(ctx, h, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check %s/%s: %w", namespace, key, err)
	}
	return ok, nil
}

func (s *Store) GetAll(ctx context.Context, namespace string) (map[string]string, error) {
	h, err := hashKey(namespace)
	if err != nil {
		return nil, err
	}
	all, err := s.client.HGetAll(ctx, h).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", namespace, err)
	}
	return all, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
