//go:build integration

package property

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ardhi/internal/platform/redis"
	"ardhi/pkg/domain"
	"ardhi/pkg/testutil/containers"
)

func TestStatsCacheRoundTrip(t *testing.T) {
	rc := containers.NewRedis(t)
	cache := NewStatsCache(&redis.Client{Client: rc.Client}, time.Minute, nil)
	ctx := context.Background()
	userID := domain.NewUserID()

	_, ok := cache.Get(ctx, userID)
	require.False(t, ok, "empty cache must miss")

	stats := Stats{
		TotalProperties:    3,
		VerifiedProperties: 1,
		PendingProperties:  2,
		PendingDocuments:   4,
		TotalValue:         2_500_000,
		Currency:           "KES",
	}
	cache.Set(ctx, userID, stats)

	got, ok := cache.Get(ctx, userID)
	require.True(t, ok)
	require.Equal(t, stats, got)

	// Another user's entry is unaffected by invalidation.
	other := domain.NewUserID()
	cache.Set(ctx, other, stats)

	cache.Invalidate(ctx, userID)
	_, ok = cache.Get(ctx, userID)
	require.False(t, ok, "invalidated entry must miss")

	_, ok = cache.Get(ctx, other)
	require.True(t, ok)
}

func TestStatsCacheExpiry(t *testing.T) {
	rc := containers.NewRedis(t)
	cache := NewStatsCache(&redis.Client{Client: rc.Client}, time.Second, nil)
	ctx := context.Background()
	userID := domain.NewUserID()

	cache.Set(ctx, userID, Stats{TotalProperties: 1})
	require.Eventually(t, func() bool {
		_, ok := cache.Get(ctx, userID)
		return !ok
	}, 5*time.Second, 200*time.Millisecond)
}
