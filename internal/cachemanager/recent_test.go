package cachemanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestRecent(ttl time.Duration) (*RecentCommands, *time.Time) {
	r := NewRecentCommands(ttl)
	clock := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }
	return r, &clock
}

func TestRecentCommands_RankMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	r, clock := newTestRecent(time.Hour)

	r.Touch(ctx, "heal")
	*clock = clock.Add(time.Second)
	r.Touch(ctx, "spawnEnemy")

	got := r.Rank(ctx, []string{"commands", "heal", "noclip", "spawnEnemy"})

	require.Equal(t, []string{"spawnEnemy", "heal", "commands", "noclip"}, got)
	require.Equal(t, []string{"spawnEnemy", "heal"}, r.Names(ctx))
}

func TestRecentCommands_RankDoesNotMutateInput(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRecent(time.Hour)
	r.Touch(ctx, "b")
	in := []string{"a", "b"}

	_ = r.Rank(ctx, in)

	require.Equal(t, []string{"a", "b"}, in)
}

func TestRecentCommands_Forget(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRecent(time.Hour)
	r.Touch(ctx, "heal")

	r.Forget(ctx, "heal")

	require.Empty(t, r.Names(ctx))
}

func TestRecentCommands_Expires(t *testing.T) {
	ctx := context.Background()
	r := NewRecentCommands(time.Millisecond)
	r.Touch(ctx, "heal")

	time.Sleep(5 * time.Millisecond)

	require.Empty(t, r.Names(ctx))
	require.Equal(t, []string{"x", "heal"}, r.Rank(ctx, []string{"x", "heal"}))
}

func TestNewRecentCommands_DefaultTTL(t *testing.T) {
	r := NewRecentCommands(0)
	require.Equal(t, DefaultExpiration, r.ttl)
}
