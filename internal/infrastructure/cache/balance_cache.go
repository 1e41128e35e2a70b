package cache

import (
	"context"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/traslados-api/internal/application/inventory"
	"github.com/jhoicas/traslados-api/pkg/logger"
)

var (
	_ inventory.BalanceCache = NoopBalanceCache{}
	_ inventory.BalanceCache = (*RedisBalanceCache)(nil)
)

// NoopBalanceCache no guarda nada: toda lectura va al saldo materializado.
type NoopBalanceCache struct{}

func (NoopBalanceCache) Get(context.Context, string, string, string) (decimal.Decimal, bool) {
	return decimal.Zero, false
}
func (NoopBalanceCache) Set(context.Context, string, string, string, decimal.Decimal) {}
func (NoopBalanceCache) Invalidate(context.Context, string, ...inventory.Pair)        {}

// RedisBalanceCache caché de saldos en Redis (cache-aside). Los errores de Redis se registran y se tratan
// como fallo de caché; nunca afectan la lectura ni la transición.
type RedisBalanceCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewRedisBalanceCache construye la caché sobre un cliente existente.
func NewRedisBalanceCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *RedisBalanceCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisBalanceCache{client: client, ttl: ttl, log: log}
}

func balanceKey(businessID, locationID, variationID string) string {
	return "stock:balance:" + businessID + ":" + locationID + ":" + variationID
}

// Get devuelve el saldo cacheado si existe.
func (c *RedisBalanceCache) Get(ctx context.Context, businessID, locationID, variationID string) (decimal.Decimal, bool) {
	val, err := c.client.Get(ctx, balanceKey(businessID, locationID, variationID)).Result()
	if errors.Is(err, redis.Nil) {
		return decimal.Zero, false
	}
	if err != nil {
		c.log.Warn().Err(err).Msg("redis: lectura de saldo")
		return decimal.Zero, false
	}
	qty, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, false
	}
	return qty, true
}

// Set guarda el saldo con TTL.
func (c *RedisBalanceCache) Set(ctx context.Context, businessID, locationID, variationID string, qty decimal.Decimal) {
	if err := c.client.Set(ctx, balanceKey(businessID, locationID, variationID), qty.String(), c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Msg("redis: escritura de saldo")
	}
}

// Invalidate borra los saldos tocados por un commit.
func (c *RedisBalanceCache) Invalidate(ctx context.Context, businessID string, pairs ...inventory.Pair) {
	if len(pairs) == 0 {
		return
	}
	keys := make([]string, 0, len(pairs))
	for _, p := range pairs {
		keys = append(keys, balanceKey(businessID, p.LocationID, p.VariationID))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn().Err(err).Strs("keys", keys).Msg("redis: invalidación de saldos")
	}
}
