package cachemanager

import (
	"cmp"
	"context"
	"slices"
	"time"
)

// RecentCommands remembers when each command last ran, for ttl.
type RecentCommands struct {
	cache CacheManager[string, time.Time]
	ttl   time.Duration
	now   func() time.Time
}

// NewRecentCommands tracks names for ttl (DefaultExpiration when <= 0).
func NewRecentCommands(ttl time.Duration) *RecentCommands {
	if ttl <= 0 {
		ttl = DefaultExpiration
	}
	return &RecentCommands{
		cache: NewInMemoryCacheManager[string, time.Time]("recent-commands", ttl, DefaultCleanupInterval),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Touch marks name as run now.
func (r *RecentCommands) Touch(ctx context.Context, name string) {
	r.cache.Set(ctx, name, r.now(), r.ttl)
}

// Forget drops name.
func (r *RecentCommands) Forget(ctx context.Context, name string) {
	_ = r.cache.Delete(ctx, name)
}

// Names returns the tracked names, most recent first.
func (r *RecentCommands) Names(ctx context.Context) []string {
	items := r.cache.Items(ctx)
	names := make([]string, 0, len(items))
	for name := range items {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		if c := items[b].Compare(items[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return names
}

// Rank reorders names so recently run ones come first, most recent first.
// The rest keep their input order.
func (r *RecentCommands) Rank(ctx context.Context, names []string) []string {
	items := r.cache.Items(ctx)
	out := slices.Clone(names)
	slices.SortStableFunc(out, func(a, b string) int {
		ta, oka := items[a]
		tb, okb := items[b]
		switch {
		case oka && okb:
			return tb.Compare(ta)
		case oka:
			return -1
		case okb:
			return 1
		default:
			return 0
		}
	})
	return out
}
