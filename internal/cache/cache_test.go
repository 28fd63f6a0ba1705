//go:build unit

package cache

import (
	"testing"
	"time"

	"go-blog-admin/internal/config"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := New(config.CacheConfig{FilePath: "file::memory:"})
	if err != nil {
		t.Fatalf("failed to create test cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCache_SetGet(t *testing.T) {
	c := newTestCache(t)

	if err := c.Set("posts:1", []byte(`{"id":1}`), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := c.Get("posts:1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != `{"id":1}` {
		t.Errorf("expected cached value, got %q", got)
	}

	miss, err := c.Get("posts:2")
	if err != nil || miss != nil {
		t.Errorf("expected clean miss, got %q, %v", miss, err)
	}
}

func TestCache_Expired(t *testing.T) {
	c := newTestCache(t)

	if err := c.Set("posts:list", []byte("[]"), -time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := c.Get("posts:list")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected expired item to be a miss, got %q", got)
	}
}

func TestCache_Delete(t *testing.T) {
	c := newTestCache(t)

	_ = c.Set("a", []byte("1"), time.Minute)
	_ = c.Set("b", []byte("2"), time.Minute)
	if err := c.Delete("a", "b"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	for _, key := range []string{"a", "b"} {
		if got, _ := c.Get(key); got != nil {
			t.Errorf("expected %s to be invalidated, got %q", key, got)
		}
	}
}

func TestCache_DeletePrefix(t *testing.T) {
	c := newTestCache(t)

	for _, key := range []string{"posts:1", "posts:list", "postsX", "categories:list"} {
		if err := c.Set(key, []byte("v"), time.Minute); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}
	if err := c.DeletePrefix("posts:"); err != nil {
		t.Fatalf("DeletePrefix failed: %v", err)
	}

	for key, wantPresent := range map[string]bool{
		"posts:1":         false,
		"posts:list":      false,
		"postsX":          true,
		"categories:list": true,
	} {
		got, _ := c.Get(key)
		if (got != nil) != wantPresent {
			t.Errorf("key %s: present=%v, want %v", key, got != nil, wantPresent)
		}
	}
}

func TestCache_SetIfGeneration(t *testing.T) {
	c := newTestCache(t)

	gen := c.Generation()
	stored, err := c.SetIfGeneration("posts:1", []byte("fresh"), time.Minute, gen)
	if err != nil || !stored {
		t.Fatalf("expected store at current generation, got stored=%v err=%v", stored, err)
	}

	// A value loaded before an invalidation must not land after it.
	stale := c.Generation()
	if err := c.Delete("posts:1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	stored, err = c.SetIfGeneration("posts:1", []byte("stale"), time.Minute, stale)
	if err != nil {
		t.Fatalf("SetIfGeneration failed: %v", err)
	}
	if stored {
		t.Error("expected write from an older generation to be skipped")
	}
	if got, _ := c.Get("posts:1"); got != nil {
		t.Errorf("expected miss after skipped write, got %q", got)
	}

	stale = c.Generation()
	if err := c.DeletePrefix("posts:"); err != nil {
		t.Fatalf("DeletePrefix failed: %v", err)
	}
	if stored, _ := c.SetIfGeneration("posts:list", []byte("[]"), time.Minute, stale); stored {
		t.Error("expected prefix invalidation to advance the generation")
	}
}

func TestCache_ExpiryDoesNotAdvanceGeneration(t *testing.T) {
	c := newTestCache(t)

	_ = c.Set("posts:1", []byte("v"), -time.Second)
	gen := c.Generation()
	if got, _ := c.Get("posts:1"); got != nil {
		t.Fatalf("expected expired miss, got %q", got)
	}
	if c.Generation() != gen {
		t.Error("expected expiry cleanup to leave the generation alone")
	}
}
