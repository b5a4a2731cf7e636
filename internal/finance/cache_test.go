package finance

import (
	"context"
	"testing"
	"time"

	"novahub_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T, ttl time.Duration) (*SummaryCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewSummaryCache(client, ttl, logger.New("test")), mr
}

func TestSummaryCache_RoundTrip(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()
	projectID := uuid.New()

	if got, err := cache.Get(ctx, projectID); err != nil || got != nil {
		t.Fatalf("Get() on empty cache = (%v, %v), want miss", got, err)
	}

	want := Summary{TotalRevenue: 1234.56, MRR: 78.9, ARR: 946.8, PendingCollections: 12, TransactionCount: 40}
	cache.Set(ctx, projectID, want)

	got, err := cache.Get(ctx, projectID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil {
		t.Fatal("Get() returned miss after Set()")
	}
	if *got != want {
		t.Errorf("Get() = %+v, want %+v", *got, want)
	}
}

func TestSummaryCache_EntryExpires(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	ctx := context.Background()
	projectID := uuid.New()

	cache.Set(ctx, projectID, Summary{MRR: 10})
	mr.FastForward(2 * time.Minute)

	if got, _ := cache.Get(ctx, projectID); got != nil {
		t.Errorf("Get() after TTL = %+v, want miss", got)
	}
}

func TestSummaryCache_Invalidate(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()
	projectID := uuid.New()

	cache.Set(ctx, projectID, Summary{MRR: 10})
	cache.Invalidate(ctx, projectID)

	if got, _ := cache.Get(ctx, projectID); got != nil {
		t.Errorf("Get() after Invalidate() = %+v, want miss", got)
	}
}

func TestSummaryCache_KeysAreScopedPerProject(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	a := uuid.New()
	b := uuid.New()
	cache.Set(ctx, a, Summary{MRR: 1})
	cache.Set(ctx, b, Summary{MRR: 2})
	cache.Invalidate(ctx, a)

	if got, _ := cache.Get(ctx, a); got != nil {
		t.Errorf("project a still cached after invalidation")
	}
	got, _ := cache.Get(ctx, b)
	if got == nil || got.MRR != 2 {
		t.Errorf("project b cache = %+v, want MRR 2", got)
	}
}
