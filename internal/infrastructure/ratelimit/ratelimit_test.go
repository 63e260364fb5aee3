package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/biometria-api/internal/infrastructure/ratelimit"
)

func TestTokenBucket(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	l := ratelimit.NewTokenBucket(3, 3).WithClock(func() time.Time { return now })

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok, "solicitud %d", i+1)
	}
	ok, _ := l.Allow(ctx, "1.2.3.4")
	assert.False(t, ok, "capacidad agotada")

	ok, _ = l.Allow(ctx, "5.6.7.8")
	assert.True(t, ok, "cada clave tiene su propio balde")

	now = now.Add(time.Minute)
	ok, _ = l.Allow(ctx, "1.2.3.4")
	assert.True(t, ok, "recarga tras un minuto")
}
