package keyvalue

import (
	"context"
	"errors"
	"fmt"

	"github.com/bloomthreads/cartstate/pkg/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore persists slots in Redis. When a signal channel is configured,
// every write publishes the instance's origin token so peer instances can
// re-read the slot; Watch filters out the instance's own signals.
type RedisStore struct {
	client  *redis.Client
	channel string
	origin  string
}

func NewRedis(ctx context.Context, cfg config.RedisConfig, channel string) (*RedisStore, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{
		client:  client,
		channel: channel,
		origin:  uuid.NewString(),
	}, nil
}

func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	if cfg.URL == "" && cfg.Address == "" {
		return nil, errors.New("redis url or address is required")
	}
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}
	if opts.DB == 0 {
		opts.DB = cfg.DB
	}
	if opts.PoolSize == 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if opts.MinIdleConns == 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	return opts, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading slot %q: %w", key, err)
	}
	return value, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("writing slot %q: %w", key, err)
	}
	s.signal(ctx)
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("deleting slot %q: %w", key, err)
	}
	s.signal(ctx)
	return nil
}

// signal is best effort: a missed cross-instance wake-up only delays the
// peer's next re-read, it never loses committed data.
func (s *RedisStore) signal(ctx context.Context) {
	if s.channel == "" {
		return
	}
	_ = s.client.Publish(ctx, s.channel, s.origin).Err()
}

// Watch emits one tick per slot write originating from another instance.
// The returned channel closes when ctx is cancelled.
func (s *RedisStore) Watch(ctx context.Context) <-chan struct{} {
	ticks := make(chan struct{}, 1)
	if s.channel == "" {
		close(ticks)
		return ticks
	}

	sub := s.client.Subscribe(ctx, s.channel)
	go func() {
		defer close(ticks)
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				if msg.Payload == s.origin {
					continue
				}
				select {
				case ticks <- struct{}{}:
				default:
				}
			}
		}
	}()
	return ticks
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
