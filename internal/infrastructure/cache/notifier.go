package cache

import (
	"context"
	"encoding/json"
	"fmt"

	redis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/traslados-api/internal/application/transfer"
)

var (
	_ transfer.Notifier = NoopNotifier{}
	_ transfer.Notifier = (*RedisNotifier)(nil)
)

// NoopNotifier descarta los eventos.
type NoopNotifier struct{}

func (NoopNotifier) Publish(context.Context, transfer.Event) error { return nil }

// RedisNotifier publica los eventos de traslado en un canal Redis (PUBLISH).
type RedisNotifier struct {
	client  *redis.Client
	channel string
}

// NewRedisNotifier construye el publicador.
func NewRedisNotifier(client *redis.Client, channel string) *RedisNotifier {
	if channel == "" {
		channel = "transfers.events"
	}
	return &RedisNotifier{client: client, channel: channel}
}

// Publish serializa el evento y lo publica.
func (n *RedisNotifier) Publish(ctx context.Context, evt transfer.Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", n.channel, err)
	}
	return nil
}

// NewClient crea el cliente Redis y verifica la conexión.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
