package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryCacheSetGet(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(10))
	defer mc.Close()
	ctx := context.Background()

	type payload struct {
		Symbol string  `json:"symbol"`
		Score  float64 `json:"score"`
	}

	if err := mc.Set(ctx, "report:AAPL", payload{Symbol: "AAPL", Score: 72.5}, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var got payload
	if err := mc.Get(ctx, "report:AAPL", &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Symbol != "AAPL" || got.Score != 72.5 {
		t.Fatalf("got %+v", got)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()

	var s string
	err := mc.Get(context.Background(), "absent", &s)
	if !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryCacheExpiration(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", "v", time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	var s string
	if err := mc.Get(ctx, "k", &s); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected expired key to miss, got %v", err)
	}
}

func TestMemoryCacheDeleteByPattern(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	_ = mc.Set(ctx, "report:AAPL:1", "a", time.Minute)
	_ = mc.Set(ctx, "report:AAPL:3", "b", time.Minute)
	_ = mc.Set(ctx, "report:MSFT:1", "c", time.Minute)

	if err := mc.DeleteByPattern(ctx, "report:AAPL:*"); err != nil {
		t.Fatalf("DeleteByPattern: %v", err)
	}

	var s string
	if err := mc.Get(ctx, "report:AAPL:1", &s); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected AAPL keys gone, got %v", err)
	}
	if err := mc.Get(ctx, "report:MSFT:1", &s); err != nil {
		t.Fatalf("MSFT key should survive: %v", err)
	}
}

func TestMemoryCacheTryLock(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	ok, err := mc.TryLock(ctx, "lock:AAPL", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first TryLock: ok=%v err=%v", ok, err)
	}
	ok, err = mc.TryLock(ctx, "lock:AAPL", time.Minute)
	if err != nil || ok {
		t.Fatalf("second TryLock should fail: ok=%v err=%v", ok, err)
	}
	if err := mc.Unlock(ctx, "lock:AAPL"); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	ok, err = mc.TryLock(ctx, "lock:AAPL", time.Minute)
	if err != nil || !ok {
		t.Fatalf("TryLock after Unlock: ok=%v err=%v", ok, err)
	}
}

func TestMemoryCacheLRUEviction(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	_ = mc.Set(ctx, "a", "1", time.Minute)
	time.Sleep(time.Millisecond)
	_ = mc.Set(ctx, "b", "2", time.Minute)
	time.Sleep(time.Millisecond)
	_ = mc.Set(ctx, "c", "3", time.Minute)

	var s string
	if err := mc.Get(ctx, "a", &s); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("oldest key should be evicted, got %v", err)
	}
	if err := mc.Get(ctx, "c", &s); err != nil {
		t.Fatalf("newest key should remain: %v", err)
	}
}

func TestKey(t *testing.T) {
	if got := Key("report", "AAPL", 7); got != "report:AAPL:7" {
		t.Fatalf("got %q", got)
	}
	if got := Key("report"); got != "report" {
		t.Fatalf("got %q", got)
	}
}
