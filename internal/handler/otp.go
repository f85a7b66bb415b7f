package handler

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// OTPStore 保存验证码，找不到或已过期时 Get 返回错误
type OTPStore interface {
	Set(ctx context.Context, key, otp string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, key string) error
}

type redisOTPStore struct {
	rdb *redis.Client
}

func (s *redisOTPStore) Set(ctx context.Context, key, otp string, ttl time.Duration) error {
	return s.rdb.Set(ctx, key, otp, ttl).Err()
}

func (s *redisOTPStore) Get(ctx context.Context, key string) (string, error) {
	return s.rdb.Get(ctx, key).Result()
}

func (s *redisOTPStore) Del(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
