package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestDeriveKey_Normalization(t *testing.T) {
	base := DeriveKey("quantum computing")
	variants := []string{
		"Quantum Computing",
		"  quantum computing  ",
		"QUANTUM COMPUTING",
		"\tQuantum computing\n",
	}
	for _, v := range variants {
		if got := DeriveKey(v); got != base {
			t.Errorf("DeriveKey(%q) = %s, want %s", v, got, base)
		}
	}
	if DeriveKey("quantum computing") != DeriveKey("quantum computing") {
		t.Error("expected DeriveKey to be deterministic")
	}
	if DeriveKey("quantum computing") == DeriveKey("quantum mechanics") {
		t.Error("expected distinct queries to produce distinct keys")
	}
}

func TestDeriveKey_FixedWidth(t *testing.T) {
	for _, q := range []string{"", "a", "a much longer query string than the others"} {
		if got := len(DeriveKey(q)); got != 64 {
			t.Errorf("DeriveKey(%q) length = %d, want 64", q, got)
		}
	}
}

func TestTTL_SetAndGet(t *testing.T) {
	c := New[string](time.Minute)
	c.Set("k", "value")

	got, ok := c.Get("k")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got != "value" {
		t.Errorf("expected value, got %s", got)
	}
}

func TestTTL_Miss(t *testing.T) {
	c := New[string](time.Minute)
	if _, ok := c.Get("missing"); ok {
		t.Error("expected cache miss")
	}
}

func TestTTL_Expiration(t *testing.T) {
	c := New[string](10 * time.Millisecond)
	c.Set("k", "value")

	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expected cache miss after TTL")
	}
}

func TestTTL_ExpiresAtExactBoundary(t *testing.T) {
	c := New[string](time.Minute)
	base := time.Now()
	c.now = func() time.Time { return base }
	c.Set("k", "value")

	c.now = func() time.Time { return base.Add(time.Minute - time.Nanosecond) }
	if _, ok := c.Get("k"); !ok {
		t.Error("expected hit just below the TTL")
	}

	c.Set("k", "value")
	c.now = func() time.Time { return base.Add(time.Minute) }
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss at exactly the TTL")
	}
}

func TestTTL_SetRestartsTTL(t *testing.T) {
	c := New[string](time.Minute)
	base := time.Now()
	c.now = func() time.Time { return base }
	c.Set("k", "old")

	c.now = func() time.Time { return base.Add(59 * time.Second) }
	c.Set("k", "new")

	c.now = func() time.Time { return base.Add(90 * time.Second) }
	got, ok := c.Get("k")
	if !ok {
		t.Fatal("expected hit: second Set restarted the TTL")
	}
	if got != "new" {
		t.Errorf("expected new, got %s", got)
	}
}

func TestTTL_SizeCountsExpiredUntilRead(t *testing.T) {
	c := New[string](time.Minute)
	base := time.Now()
	c.now = func() time.Time { return base }
	c.Set("a", "1")
	c.Set("b", "2")

	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	if got := c.Size(); got != 2 {
		t.Errorf("Size before reads = %d, want 2 (lazy eviction)", got)
	}

	c.Get("a")
	if got := c.Size(); got != 1 {
		t.Errorf("Size after reading expired entry = %d, want 1", got)
	}
}

func TestTTL_Clear(t *testing.T) {
	c := New[string](time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Clear()

	if got := c.Size(); got != 0 {
		t.Errorf("Size after Clear = %d, want 0", got)
	}
	if _, ok := c.Get("a"); ok {
		t.Error("expected miss after Clear")
	}
}

func TestTTL_TTLSeconds(t *testing.T) {
	c := New[string](3600 * time.Second)
	if got := c.TTLSeconds(); got != 3600 {
		t.Errorf("TTLSeconds = %d, want 3600", got)
	}
}

func TestTTL_ConcurrentAccess(t *testing.T) {
	c := New[int](time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", n%5)
			c.Set(key, n)
			c.Get(key)
			c.Size()
		}(i)
	}
	wg.Wait()

	if got := c.Size(); got != 5 {
		t.Errorf("Size = %d, want 5", got)
	}
}
