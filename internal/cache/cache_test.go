package cache

import (
	"testing"
	"time"
)

func TestCacheBasicOperations(t *testing.T) {
	c := New(1 * time.Minute)

	c.Set("key1", "value1")
	value, exists := c.Get("key1")
	if !exists {
		t.Error("Expected key1 to exist")
	}
	if value != "value1" {
		t.Errorf("Expected value1, got %v", value)
	}

	if _, exists := c.Get("key2"); exists {
		t.Error("Expected key2 to not exist")
	}
}

func TestCacheExpiration(t *testing.T) {
	c := New(100 * time.Millisecond)

	c.Set("key1", "value1")
	if _, exists := c.Get("key1"); !exists {
		t.Error("Expected key1 to exist immediately after set")
	}

	time.Sleep(150 * time.Millisecond)
	if _, exists := c.Get("key1"); exists {
		t.Error("Expected key1 to be expired")
	}
}

func TestCacheDelete(t *testing.T) {
	c := New(1 * time.Minute)

	c.Set("key1", "value1")
	c.Delete("key1")

	if _, exists := c.Get("key1"); exists {
		t.Error("Expected key1 to be deleted")
	}
}

func TestCacheClear(t *testing.T) {
	c := New(1 * time.Minute)

	c.Set("key1", "value1")
	c.Set("key2", "value2")
	c.Clear()

	for _, key := range []string{"key1", "key2"} {
		if _, exists := c.Get(key); exists {
			t.Errorf("Expected %s to be cleared", key)
		}
	}
}

func TestCacheStats(t *testing.T) {
	c := New(1 * time.Minute)

	c.Set("key1", "value1")
	c.Get("key1") // hit
	c.Get("key2") // miss
	c.Get("key1") // hit

	stats := c.GetStats()
	if stats.Hits != 2 {
		t.Errorf("Expected 2 hits, got %d", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Expected 1 miss, got %d", stats.Misses)
	}

	hitRate := c.HitRate()
	want := 66.66666666666667
	if hitRate < want-0.01 || hitRate > want+0.01 {
		t.Errorf("Expected hit rate around %.2f%%, got %.2f%%", want, hitRate)
	}
}

func TestCacheSetWithTTL(t *testing.T) {
	c := New(1 * time.Minute)

	c.SetWithTTL("key1", "value1", 100*time.Millisecond)
	if _, exists := c.Get("key1"); !exists {
		t.Error("Expected key1 to exist")
	}

	time.Sleep(150 * time.Millisecond)
	if _, exists := c.Get("key1"); exists {
		t.Error("Expected key1 to be expired")
	}
}

func TestCacheConcurrency(t *testing.T) {
	c := New(1 * time.Minute)

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(id int) {
			for j := 0; j < 100; j++ {
				key := "key"
				c.Set(key, id)
				c.Get(key)
				if j%10 == 0 {
					c.Delete(key)
				}
			}
			done <- true
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	stats := c.GetStats()
	if stats.Hits == 0 && stats.Misses == 0 {
		t.Error("Expected some cache activity from concurrent operations")
	}
}

func TestCacheManualCleanup(t *testing.T) {
	c := New(50 * time.Millisecond)

	c.Set("key1", "value1")
	c.Set("key2", "value2")

	time.Sleep(100 * time.Millisecond)
	c.cleanup()

	stats := c.GetStats()
	if stats.TotalKeys != 0 {
		t.Errorf("Expected 0 total keys after cleanup, got %d", stats.TotalKeys)
	}
	if stats.Evictions != 2 {
		t.Errorf("Expected 2 evictions, got %d", stats.Evictions)
	}
}

func TestCachePartialExpiration(t *testing.T) {
	c := New(100 * time.Millisecond)

	c.SetWithTTL("short-lived", "value1", 50*time.Millisecond)
	c.SetWithTTL("long-lived", "value2", 200*time.Millisecond)

	time.Sleep(75 * time.Millisecond)
	c.cleanup()

	if _, exists := c.Get("short-lived"); exists {
		t.Error("Expected short-lived key to be cleaned up")
	}
	if _, exists := c.Get("long-lived"); !exists {
		t.Error("Expected long-lived key to still exist")
	}
}

func TestCacheZeroTTL(t *testing.T) {
	c := New(0)

	c.Set("key1", "value1")
	if _, exists := c.Get("key1"); exists {
		t.Error("Expected key with zero TTL to be expired immediately")
	}
}

func TestCacheHitRateZeroOperations(t *testing.T) {
	c := New(1 * time.Minute)

	if hitRate := c.HitRate(); hitRate != 0.0 {
		t.Errorf("Expected 0%% hit rate with no operations, got %.2f%%", hitRate)
	}
}

func TestCacheEvictionCounterOnExpiration(t *testing.T) {
	c := New(50 * time.Millisecond)

	c.Set("key1", "value1")
	initial := c.GetStats()

	time.Sleep(100 * time.Millisecond)
	c.Get("key1")

	stats := c.GetStats()
	if stats.Evictions <= initial.Evictions {
		t.Error("Expected evictions to increase when accessing expired key")
	}
}

func TestCacheTotalKeysCounter(t *testing.T) {
	c := New(1 * time.Minute)

	c.Set("key1", "value1")
	c.Set("key2", "value2")
	c.Set("key1", "new-value1") // overwrite should not increase count

	stats := c.GetStats()
	if stats.TotalKeys != 2 {
		t.Errorf("Expected 2 total keys, got %d", stats.TotalKeys)
	}
}

func TestCacheEntryOverwriteResetsExpiration(t *testing.T) {
	c := New(200 * time.Millisecond)

	c.Set("key1", "value1")
	time.Sleep(50 * time.Millisecond)
	c.Set("key1", "value2")
	time.Sleep(100 * time.Millisecond)

	value, exists := c.Get("key1")
	if !exists {
		t.Error("Expected overwritten key to have reset expiration")
	}
	if value != "value2" {
		t.Errorf("Expected value2, got %v", value)
	}
}

func BenchmarkCacheSet(b *testing.B) {
	c := New(1 * time.Minute)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Set("key", "value")
	}
}

func BenchmarkCacheGet(b *testing.B) {
	c := New(1 * time.Minute)
	c.Set("key", "value")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get("key")
	}
}
