package service

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestCacheKeyStability(t *testing.T) {
	type args struct {
		Query string
		Limit int
	}
	a := CacheKey("search", args{Query: "domates", Limit: 5})
	b := CacheKey("search", args{Query: "domates", Limit: 5})
	if a != b {
		t.Errorf("equal arguments produced different keys: %s vs %s", a, b)
	}

	c := CacheKey("search", args{Query: "domates", Limit: 10})
	if a == c {
		t.Error("different arguments produced the same key")
	}

	d := CacheKey("answer", args{Query: "domates", Limit: 5})
	if a == d {
		t.Error("different operations produced the same key")
	}
}

func TestCacheGetOrCompute(t *testing.T) {
	cache := NewResultCache(time.Hour, 100)

	calls := 0
	factory := func() (interface{}, error) {
		calls++
		return "computed", nil
	}

	key := CacheKey("op", "arg")
	for i := 0; i < 3; i++ {
		value, err := cache.GetOrCompute(key, factory)
		if err != nil {
			t.Fatalf("GetOrCompute failed: %v", err)
		}
		if value != "computed" {
			t.Errorf("unexpected value: %v", value)
		}
	}
	if calls != 1 {
		t.Errorf("factory called %d times, want 1", calls)
	}

	stats := cache.Stats()
	if stats.Hits != 2 || stats.Misses != 1 {
		t.Errorf("stats = %+v, want 2 hits and 1 miss", stats)
	}
}

func TestCacheFactoryErrorNotCached(t *testing.T) {
	cache := NewResultCache(time.Hour, 100)
	key := CacheKey("op", "arg")

	wantErr := errors.New("boom")
	if _, err := cache.GetOrCompute(key, func() (interface{}, error) {
		return nil, wantErr
	}); !errors.Is(err, wantErr) {
		t.Fatalf("expected factory error, got %v", err)
	}

	// The failure must not poison the cache.
	value, err := cache.GetOrCompute(key, func() (interface{}, error) {
		return "ok", nil
	})
	if err != nil || value != "ok" {
		t.Errorf("recovery compute failed: %v %v", value, err)
	}
}

func TestCacheExpiry(t *testing.T) {
	cache := NewResultCache(time.Hour, 100)

	current := time.Unix(1_700_000_000, 0)
	cache.now = func() time.Time { return current }

	cache.Set("key", "value")
	if _, ok := cache.Get("key"); !ok {
		t.Fatal("fresh entry should be present")
	}

	// Step past the TTL; the entry must lazily evict on read.
	current = current.Add(time.Hour + time.Second)
	if _, ok := cache.Get("key"); ok {
		t.Error("expired entry should not be returned")
	}

	stats := cache.Stats()
	if stats.Entries != 0 {
		t.Errorf("expired entry not evicted: %+v", stats)
	}
	if stats.Evictions == 0 {
		t.Errorf("eviction not counted: %+v", stats)
	}
}

func TestCacheMaxSize(t *testing.T) {
	cache := NewResultCache(time.Hour, 2)
	cache.Set("a", 1)
	cache.Set("b", 2)
	cache.Set("c", 3)

	stats := cache.Stats()
	if stats.Entries > 2 {
		t.Errorf("cache exceeded max size: %+v", stats)
	}
	if _, ok := cache.Get("c"); !ok {
		t.Error("newest entry must survive eviction")
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	cache := NewResultCache(time.Hour, 1000)

	var wg sync.WaitGroup
	for w := 0; w < 10; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := CacheKey("op", i%20)
				cache.GetOrCompute(key, func() (interface{}, error) {
					return i, nil
				})
				cache.Get(key)
			}
		}(w)
	}
	wg.Wait()

	stats := cache.Stats()
	if stats.Entries == 0 {
		t.Error("expected surviving entries after concurrent access")
	}
}

func TestCacheClear(t *testing.T) {
	cache := NewResultCache(time.Hour, 100)
	cache.Set("a", 1)
	cache.Set("b", 2)
	cache.Clear()
	if stats := cache.Stats(); stats.Entries != 0 {
		t.Errorf("Clear left entries: %+v", stats)
	}
}
