package realtime

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"elearn/config"
	"elearn/logger"

	"github.com/bytedance/sonic"
	goredis "github.com/redis/go-redis/v9"
)

// Broker carries chat events between processes. Start forwards every received event to onEvent.
type Broker interface {
	Publish(ctx context.Context, ev Event) error
	Start(ctx context.Context, onEvent func(Event)) error
	Close() error
}

// DefaultBroker is used by the chat endpoint. main replaces it with a Redis broker when configured.
var DefaultBroker Broker = NewLocalBroker()

// NewBroker picks Redis pub/sub when REDIS_ADDR is set and an in-process broker otherwise.
func NewBroker(cfg *config.Config, log *logger.Logger) (Broker, error) {
	if cfg.RedisAddr == "" {
		return NewLocalBroker(), nil
	}
	return NewRedisBroker(cfg, log)
}

// LocalBroker delivers synchronously within one process, preserving publish order.
type LocalBroker struct {
	mu      sync.Mutex
	onEvent func(Event)
}

func NewLocalBroker() *LocalBroker { return &LocalBroker{} }

func (b *LocalBroker) Publish(ctx context.Context, ev Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.onEvent == nil {
		return fmt.Errorf("local broker not started")
	}
	b.onEvent(ev)
	return nil
}

func (b *LocalBroker) Start(ctx context.Context, onEvent func(Event)) error {
	if onEvent == nil {
		return fmt.Errorf("onEvent callback required")
	}
	b.mu.Lock()
	b.onEvent = onEvent
	b.mu.Unlock()
	return nil
}

func (b *LocalBroker) Close() error { return nil }

// RedisBroker publishes each room on its own channel so delivery stays ordered per room.
type RedisBroker struct {
	log *logger.Logger
	rdb *goredis.Client
}

func NewRedisBroker(cfg *config.Config, log *logger.Logger) (*RedisBroker, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisBroker{log: log.With("service", "RedisChatBroker"), rdb: rdb}, nil
}

func (b *RedisBroker) Publish(ctx context.Context, ev Event) error {
	raw, err := sonic.Marshal(ev)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, GroupName(ev.Room), raw).Err()
}

func (b *RedisBroker) Start(ctx context.Context, onEvent func(Event)) error {
	if onEvent == nil {
		return fmt.Errorf("onEvent callback required")
	}

	sub := b.rdb.PSubscribe(ctx, GroupName("*"))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					_ = sub.Close()
					return
				}
				var ev Event
				if err := sonic.Unmarshal([]byte(m.Payload), &ev); err != nil {
					b.log.Warn("bad chat payload", "channel", m.Channel, "error", err)
					continue
				}
				if ev.Room == "" {
					ev.Room = strings.TrimPrefix(m.Channel, GroupName(""))
				}
				onEvent(ev)
			}
		}
	}()
	return nil
}

func (b *RedisBroker) Close() error {
	return b.rdb.Close()
}
