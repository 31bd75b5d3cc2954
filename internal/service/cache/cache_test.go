package cache

import (
	"testing"
	"time"
)

var (
	_ BytesCache = (*TTLCache)(nil)
	_ BytesCache = (*RedisCache)(nil)
)

func TestTTLCacheRoundTrip(t *testing.T) {
	c := NewTTLCache()

	if _, ok, _ := c.GetBytes("k"); ok {
		t.Fatalf("hit on empty cache")
	}
	if err := c.SetBytes("k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("SetBytes: %v", err)
	}
	b, ok, err := c.GetBytes("k")
	if err != nil || !ok || string(b) != "v" {
		t.Fatalf("GetBytes = %q %v %v", b, ok, err)
	}
}

func TestTTLCacheExpiry(t *testing.T) {
	c := NewTTLCache()
	_ = c.SetBytes("k", []byte("v"), time.Nanosecond)
	time.Sleep(5 * time.Millisecond)

	if _, ok, _ := c.GetBytes("k"); ok {
		t.Fatalf("expired entry served")
	}
}

func TestTTLCacheZeroTTLNeverExpires(t *testing.T) {
	c := NewTTLCache()
	_ = c.SetBytes("k", []byte("v"), 0)
	time.Sleep(time.Millisecond)

	if _, ok, _ := c.GetBytes("k"); !ok {
		t.Fatalf("zero-ttl entry expired")
	}
}

func TestRedisCacheSurfacesConnectionError(t *testing.T) {
	c := NewRedisCache(RedisConfig{Addr: "127.0.0.1:1"})

	if _, ok, err := c.GetBytes("k"); err == nil || ok {
		t.Fatalf("expected connection error, got ok=%v err=%v", ok, err)
	}
}
