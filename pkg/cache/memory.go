package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"
)

const (
	memoryEntryLimit = 1024
	memorySweepEvery = 5 * time.Minute
	memoryDefaultTTL = 24 * time.Hour
)

type memEntry struct {
	data     []byte
	deadline time.Time
	used     time.Time
}

// MemoryCache is a process-local Service. Values are kept as JSON bytes so a
// hit behaves exactly like a hit on the Redis layer. When the entry limit is
// reached the least recently used entry is evicted.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]*memEntry
	done    chan struct{}
}

func NewMemoryCache() *MemoryCache {
	mc := &MemoryCache{
		entries: make(map[string]*memEntry),
		done:    make(chan struct{}),
	}
	go mc.sweep()
	return mc
}

func (mc *MemoryCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = memoryDefaultTTL
	}
	now := time.Now()
	mc.mu.Lock()
	if len(mc.entries) >= memoryEntryLimit {
		mc.evictOldest()
	}
	mc.entries[key] = &memEntry{data: data, deadline: now.Add(ttl), used: now}
	mc.mu.Unlock()
	return nil
}

func (mc *MemoryCache) Get(_ context.Context, key string, dest any) error {
	now := time.Now()
	mc.mu.Lock()
	e, ok := mc.entries[key]
	if ok && now.After(e.deadline) {
		delete(mc.entries, key)
		ok = false
	}
	var data []byte
	if ok {
		e.used = now
		data = e.data
	}
	mc.mu.Unlock()
	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	mc.mu.Lock()
	for _, k := range keys {
		delete(mc.entries, k)
	}
	mc.mu.Unlock()
	return nil
}

// DeleteByPattern handles the trailing-star globs the service builds for
// invalidation; any more complex pattern clears the whole map.
func (mc *MemoryCache) DeleteByPattern(_ context.Context, pattern string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	prefix, ok := strings.CutSuffix(pattern, "*")
	if !ok || strings.ContainsAny(prefix, "*?[") {
		mc.entries = make(map[string]*memEntry)
		return nil
	}
	for k := range mc.entries {
		if strings.HasPrefix(k, prefix) {
			delete(mc.entries, k)
		}
	}
	return nil
}

// evictOldest removes the least recently used entry. Caller holds mc.mu.
func (mc *MemoryCache) evictOldest() {
	var victim string
	var oldest time.Time
	for k, e := range mc.entries {
		if victim == "" || e.used.Before(oldest) {
			victim, oldest = k, e.used
		}
	}
	delete(mc.entries, victim)
}

func (mc *MemoryCache) sweep() {
	t := time.NewTicker(memorySweepEvery)
	defer t.Stop()
	for {
		select {
		case <-mc.done:
			return
		case <-t.C:
			now := time.Now()
			mc.mu.Lock()
			for k, e := range mc.entries {
				if now.After(e.deadline) {
					delete(mc.entries, k)
				}
			}
			mc.mu.Unlock()
		}
	}
}

// Close stops the background sweeper.
func (mc *MemoryCache) Close() error {
	close(mc.done)
	return nil
}

var _ Service = (*MemoryCache)(nil)
