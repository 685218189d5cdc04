// Package realtime canal de cambios: señales de "algo cambió, vuelve a leer".
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"github.com/jhoicas/evraklab-api/internal/application/ports"
)

var _ ports.ChangeFeed = (*RedisFeed)(nil)

const channelPrefix = "evraklab:changes:"

// RedisFeed canal de cambios sobre pub/sub de Redis, compartido entre instancias.
type RedisFeed struct {
	client *redis.Client
	log    zerolog.Logger
}

// NewRedisClient conecta y verifica con PING.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// NewRedisFeed construye el canal sobre un cliente ya conectado.
func NewRedisFeed(client *redis.Client, log zerolog.Logger) *RedisFeed {
	return &RedisFeed{client: client, log: log}
}

func channel(table string) string { return channelPrefix + table }

func (f *RedisFeed) Publish(ctx context.Context, c ports.Change) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("serializar cambio: %w", err)
	}
	if err := f.client.Publish(ctx, channel(c.Table), payload).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Subscribe espera la confirmación del servidor antes de volver, así ningún cambio
// publicado después se pierde.
func (f *RedisFeed) Subscribe(ctx context.Context, table string, filter ports.Filter, onChange func(ports.Change)) (func(), error) {
	subCtx, cancel := context.WithCancel(ctx)
	pubsub := f.client.Subscribe(subCtx, channel(table))
	if _, err := pubsub.Receive(subCtx); err != nil {
		cancel()
		_ = pubsub.Close()
		return nil, fmt.Errorf("redis subscribe %s: %w", table, err)
	}

	var once sync.Once
	stop := func() {
		once.Do(func() {
			cancel()
			_ = pubsub.Close()
		})
	}

	msgs := pubsub.Channel()
	go func() {
		defer stop()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var c ports.Change
				if err := json.Unmarshal([]byte(msg.Payload), &c); err != nil {
					f.log.Warn().Err(err).Str("channel", msg.Channel).Msg("cambio ilegible descartado")
					continue
				}
				if filter.Matches(c) {
					onChange(c)
				}
			}
		}
	}()
	return stop, nil
}
