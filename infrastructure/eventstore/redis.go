package eventstore

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/vfg2006/marketing-attribution-api/internal/config"
)

// RedisStore é o backend de produção do Store. O contrato mapeia direto nos
// primitivos do Redis: SET/GET, ZADD/ZRANGEBYSCORE, INCRBYFLOAT e
// SADD/SMEMBERS
type RedisStore struct {
	rdb *goredis.Client
}

func NewRedisStore(ctx context.Context, cfg config.Redis) (*RedisStore, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("erro ao conectar ao Redis: %w", err)
	}

	return &RedisStore{rdb: rdb}, nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func (s *RedisStore) Put(ctx context.Context, key, value string) error {
	if err := s.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.rdb.Get(ctx, key).Result()
	if err == goredis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return value, true, nil
}

func (s *RedisStore) AppendOrdered(ctx context.Context, key string, score float64, value string) error {
	err := s.rdb.ZAdd(ctx, key, goredis.Z{Score: score, Member: value}).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) RangeOrdered(ctx context.Context, key string, from, to float64) ([]string, error) {
	values, err := s.rdb.ZRangeByScore(ctx, key, &goredis.ZRangeBy{
		Min: formatScore(from),
		Max: formatScore(to),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return values, nil
}

func (s *RedisStore) Increment(ctx context.Context, key string, by float64) (float64, error) {
	// INCRBYFLOAT com zero ainda cria a chave; para leitura pura basta o GET
	if by == 0 {
		value, err := s.rdb.Get(ctx, key).Result()
		if err == goredis.Nil {
			return 0, nil
		}
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: contador corrompido em %s", ErrUnavailable, key)
		}
		return parsed, nil
	}

	newValue, err := s.rdb.IncrByFloat(ctx, key, by).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return newValue, nil
}

func (s *RedisStore) SetAdd(ctx context.Context, key, member string) error {
	if err := s.rdb.SAdd(ctx, key, member).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) SetMembers(ctx context.Context, key string) ([]string, error) {
	members, err := s.rdb.SMembers(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return members, nil
}

func formatScore(score float64) string {
	if math.IsInf(score, 1) {
		return "+inf"
	}
	if math.IsInf(score, -1) {
		return "-inf"
	}
	return strconv.FormatFloat(score, 'f', -1, 64)
}
