// Package ratelimit limita las solicitudes por clave (IP) al endpoint público de enlaces.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter decide si una solicitud más está permitida para la clave.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// TokenBucket es el limitador en memoria (una instancia); en producción usar Redis.
type TokenBucket struct {
	capacity int
	rate     int
	now      func() time.Time
	mu       sync.Mutex
	state    map[string]*bucket
}

type bucket struct {
	tokens int
	last   time.Time
}

// NewTokenBucket crea el limitador con capacity fichas y recarga perMinute por minuto.
func NewTokenBucket(capacity, perMinute int) *TokenBucket {
	if capacity <= 0 {
		capacity = perMinute
	}
	return &TokenBucket{
		capacity: capacity,
		rate:     perMinute,
		now:      time.Now,
		state:    make(map[string]*bucket),
	}
}

// WithClock reemplaza el reloj (tests).
func (l *TokenBucket) WithClock(now func() time.Time) *TokenBucket {
	l.now = now
	return l
}

func (l *TokenBucket) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	b, ok := l.state[key]
	if !ok {
		l.state[key] = &bucket{tokens: l.capacity - 1, last: now}
		return true, nil
	}
	refill := int(now.Sub(b.last).Minutes() * float64(l.rate))
	if refill > 0 {
		b.tokens += refill
		if b.tokens > l.capacity {
			b.tokens = l.capacity
		}
		b.last = now
	}
	if b.tokens <= 0 {
		return false, nil
	}
	b.tokens--
	return true, nil
}

// Redis es un limitador de ventana fija por minuto compartido entre instancias.
type Redis struct {
	client    *redis.Client
	perMinute int
	prefix    string
}

// NewRedisClient conecta con timeouts cortos.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
}

// NewRedis crea el limitador sobre un cliente existente.
func NewRedis(client *redis.Client, perMinute int) *Redis {
	return &Redis{client: client, perMinute: perMinute, prefix: "biometria:ratelimit:"}
}

func (l *Redis) Allow(ctx context.Context, key string) (bool, error) {
	window := time.Now().UTC().Unix() / 60
	k := fmt.Sprintf("%s%s:%d", l.prefix, key, window)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, 2*time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("redis rate limit: %w", err)
	}
	return incr.Val() <= int64(l.perMinute), nil
}

// Healthy verifica la conectividad con Redis.
func (l *Redis) Healthy(ctx context.Context) bool {
	return l.client.Ping(ctx).Err() == nil
}
