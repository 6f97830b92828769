package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisConfig conexión y tiempos del bloqueo distribuido.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration // vida máxima del bloqueo si el proceso muere sin liberarlo
	Wait     time.Duration // espera máxima cuando ctx no trae deadline
	Prefix   string
}

// RedisLocker bloqueo por artículo compartido entre instancias (redislock sobre go-redis).
// En Postgres el SELECT FOR UPDATE de la transacción sigue serializando aunque expire el TTL.
type RedisLocker struct {
	client *redis.Client
	locker *redislock.Client
	cfg    RedisConfig
	log    zerolog.Logger
}

// NewRedisClient crea el cliente y verifica la conexión.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

// NewRedisLocker construye el locker sobre un cliente ya conectado.
func NewRedisLocker(rdb *redis.Client, cfg RedisConfig, log zerolog.Logger) *RedisLocker {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	if cfg.Wait <= 0 {
		cfg.Wait = 10 * time.Second
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "ledger:item:"
	}
	return &RedisLocker{
		client: rdb,
		locker: redislock.New(rdb),
		cfg:    cfg,
		log:    log.With().Str("component", "redis_locker").Logger(),
	}
}

// Lock obtiene el bloqueo del artículo reintentando hasta que ctx termine.
func (l *RedisLocker) Lock(ctx context.Context, itemID string) (func(), error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.cfg.Wait)
		defer cancel()
	}
	key := l.cfg.Prefix + itemID
	lk, err := l.locker.Obtain(ctx, key, l.cfg.TTL, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(10 * time.Millisecond),
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, fmt.Errorf("bloqueo %s no obtenido: %w", key, context.DeadlineExceeded)
		}
		return nil, fmt.Errorf("obtener bloqueo %s: %w", key, err)
	}
	return func() {
		if err := lk.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.log.Warn().Err(err).Str("key", key).Msg("liberar bloqueo")
		}
	}, nil
}

// Close cierra el cliente de Redis.
func (l *RedisLocker) Close() error {
	return l.client.Close()
}
