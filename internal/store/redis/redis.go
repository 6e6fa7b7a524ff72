package redis

import (
	"bitbucket.org/sotavant/quick-swapp/internal/models"
	"bitbucket.org/sotavant/quick-swapp/internal/store"
	"context"
	"encoding/json"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"time"
)

type Config struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

// WatermarkStore persists each user's last-read map as one JSON value.
// Concurrent writers for the same user are last-writer-wins.
type WatermarkStore struct {
	client *redis.Client
}

func New(c Config) (*WatermarkStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
		PoolSize: c.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "ping redis")
	}
	return &WatermarkStore{client: rdb}, nil
}

func (s *WatermarkStore) Read(ctx context.Context, userID models.UserID) (models.Watermarks, error) {
	raw, err := s.client.Get(ctx, store.WatermarkKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Watermarks{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read watermarks")
	}

	wm := models.Watermarks{}
	if err := json.Unmarshal(raw, &wm); err != nil {
		return nil, errors.Wrap(err, "decode watermarks")
	}
	return wm, nil
}

func (s *WatermarkStore) Write(ctx context.Context, userID models.UserID, wm models.Watermarks) error {
	raw, err := json.Marshal(wm)
	if err != nil {
		return errors.Wrap(err, "encode watermarks")
	}
	err = s.client.Set(ctx, store.WatermarkKey(userID), raw, 0).Err()
	return errors.Wrap(err, "write watermarks")
}

func (s *WatermarkStore) Close() error {
	return s.client.Close()
}
