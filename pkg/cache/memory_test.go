package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	type payload struct {
		Country string  `json:"country"`
		Rate    float64 `json:"rate"`
	}
	in := payload{Country: "DE", Rate: 2.25}
	if err := mc.Set(ctx, "curve:DE:linear", in, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	var out payload
	if err := mc.Get(ctx, "curve:DE:linear", &out); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if out != in {
		t.Fatalf("got %+v, want %+v", out, in)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()

	var out string
	if err := mc.Get(context.Background(), "nope", &out); err != ErrCacheMiss {
		t.Fatalf("err = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", "v", time.Nanosecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	var out string
	if err := mc.Get(ctx, "k", &out); err != ErrCacheMiss {
		t.Fatalf("expired key served: %v", err)
	}
}

func TestMemoryCacheDeleteByPattern(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	for _, k := range []string{"curve:DE:linear", "curve:US:linear", "curves:linear"} {
		if err := mc.Set(ctx, k, 1, time.Minute); err != nil {
			t.Fatalf("Set %s: %v", k, err)
		}
	}
	if err := mc.DeleteByPattern(ctx, BuildPattern("curve:")); err != nil {
		t.Fatalf("DeleteByPattern: %v", err)
	}
	var out int
	if err := mc.Get(ctx, "curve:DE:linear", &out); err != ErrCacheMiss {
		t.Fatalf("per-country key survived invalidation")
	}
	if err := mc.Get(ctx, "curves:linear", &out); err != nil {
		t.Fatalf("unrelated key dropped: %v", err)
	}
}

func TestGenerateKeyWithParams(t *testing.T) {
	got := GenerateKeyWithParams("curve", "DE", "cubic-spline")
	if got != "curve:DE:cubic-spline" {
		t.Fatalf("key = %q", got)
	}
	if GenerateKey("curves", "linear") != "curves:linear" {
		t.Fatalf("GenerateKey mismatch")
	}
}
