package cache

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestCache_SetGetDelete(t *testing.T) {
	cache := NewCache[string, string]()

	cache.Set("editable-1", "revision-3")
	got, ok := cache.Get("editable-1")
	if !ok || got != "revision-3" {
		t.Errorf("Expected revision-3, got %q (found %v)", got, ok)
	}

	cache.Set("editable-1", "revision-4")
	if got, _ := cache.Get("editable-1"); got != "revision-4" {
		t.Errorf("Expected overwrite to revision-4, got %q", got)
	}

	cache.Delete("editable-1")
	if _, ok := cache.Get("editable-1"); ok {
		t.Error("Expected key to be deleted")
	}

	// Deleting a missing key is a no-op.
	cache.Delete("missing")
}

func TestCache_ClearAndSetTo(t *testing.T) {
	cache := NewCache[int, string]()
	cache.Set(1, "a")
	cache.Set(2, "b")

	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("Expected empty cache after Clear, got %d entries", cache.Len())
	}

	cache.Set(3, "old")
	cache.SetTo(map[int]string{4: "d", 5: "e"})
	if _, ok := cache.Get(3); ok {
		t.Error("Expected SetTo to replace existing items")
	}
	if got, _ := cache.Get(5); got != "e" {
		t.Errorf("Expected e, got %q", got)
	}
}

func TestCache_Concurrency(t *testing.T) {
	cache := NewCache[int, string]()
	const workers = 50
	const ops = 200

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(2)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < ops; j++ {
				cache.Set(id*ops+j, fmt.Sprintf("value-%d-%d", id, j))
			}
		}(i)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < ops; j++ {
				cache.Get(id*ops + j)
				if j%50 == 0 {
					cache.Delete(id*ops + j)
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestCache_GetOrLoad(t *testing.T) {
	cache := NewCache[string, int]()
	calls := 0
	load := func(key string) (int, error) {
		calls++
		if key == "bad" {
			return 0, errors.New("load failed")
		}
		return len(key), nil
	}

	t.Run("Miss loads and caches", func(t *testing.T) {
		got, err := cache.GetOrLoad("four", load)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if got != 4 {
			t.Errorf("Expected 4, got %d", got)
		}

		got, _ = cache.GetOrLoad("four", load)
		if got != 4 || calls != 1 {
			t.Errorf("Expected cached value without reload, got %d after %d calls", got, calls)
		}
	})

	t.Run("Failed load is not cached", func(t *testing.T) {
		if _, err := cache.GetOrLoad("bad", load); err == nil {
			t.Error("Expected load error")
		}
		if _, ok := cache.Get("bad"); ok {
			t.Error("Expected failed load to leave no entry")
		}
	})

	t.Run("Len counts entries", func(t *testing.T) {
		if cache.Len() != 1 {
			t.Errorf("Expected 1 entry, got %d", cache.Len())
		}
	})
}

func TestCache_GetOrLoadRacingDelete(t *testing.T) {
	testCases := []struct {
		name       string
		invalidate func(c *Cache[string, string])
	}{
		{"Delete", func(c *Cache[string, string]) { c.Delete("editable-1") }},
		{"Clear", func(c *Cache[string, string]) { c.Clear() }},
		{"SetTo", func(c *Cache[string, string]) { c.SetTo(map[string]string{}) }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cache := NewCache[string, string]()

			// The write lands and invalidates while the load still holds the old value.
			got, err := cache.GetOrLoad("editable-1", func(string) (string, error) {
				tc.invalidate(cache)
				return "revision-1", nil
			})
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != "revision-1" {
				t.Errorf("Expected the loaded value to be returned, got %q", got)
			}
			if v, ok := cache.Get("editable-1"); ok {
				t.Errorf("Expected the overlapping load not to be cached, found %q", v)
			}

			got, _ = cache.GetOrLoad("editable-1", func(string) (string, error) { return "revision-2", nil })
			if got != "revision-2" {
				t.Errorf("Expected a fresh load after invalidation, got %q", got)
			}
			if v, _ := cache.Get("editable-1"); v != "revision-2" {
				t.Errorf("Expected the fresh load to be cached, found %q", v)
			}
		})
	}
}

func TestRenderedCommentCache(t *testing.T) {
	ClearRenderedCommentCache()

	t.Run("Set and get rendered comment", func(t *testing.T) {
		html := []byte("<p>Test</p>")
		SetRenderedComment("hash", "mmark", "github", html)

		cached, found := GetRenderedComment("hash", "mmark", "github")
		if !found {
			t.Fatal("Expected cached content to be found")
		}
		if !bytes.Equal(cached, html) {
			t.Errorf("Expected HTML %q, got %q", string(html), string(cached))
		}
	})

	t.Run("Different renderer creates separate entries", func(t *testing.T) {
		SetRenderedComment("same-hash", "mmark", "github", []byte("a"))
		SetRenderedComment("same-hash", "classic", "github", []byte("b"))
		SetRenderedComment("same-hash", "classic", "monokai", []byte("c"))

		a, _ := GetRenderedComment("same-hash", "mmark", "github")
		b, _ := GetRenderedComment("same-hash", "classic", "github")
		c, _ := GetRenderedComment("same-hash", "classic", "monokai")
		if bytes.Equal(a, b) || bytes.Equal(b, c) {
			t.Error("Expected different entries per renderer and syntax theme")
		}
	})

	t.Run("Clear rendered comment cache", func(t *testing.T) {
		ClearRenderedCommentCache()
		if _, found := GetRenderedComment("hash", "mmark", "github"); found {
			t.Error("Expected cache to be cleared")
		}
	})
}

func TestSyntaxCSSCache(t *testing.T) {
	if _, found := GetSyntaxCSS("unknown-theme"); found {
		t.Error("Expected no CSS for an unknown theme")
	}

	SetSyntaxCSS("github", ".chroma {}")
	css, found := GetSyntaxCSS("github")
	if !found || css != ".chroma {}" {
		t.Errorf("Expected cached CSS, got %q (found %v)", css, found)
	}
}

func BenchmarkCache_Set(b *testing.B) {
	cache := NewCache[int, string]()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cache.Set(i, fmt.Sprintf("value-%d", i))
	}
}

func BenchmarkCache_Get(b *testing.B) {
	cache := NewCache[int, string]()

	for i := 0; i < 10000; i++ {
		cache.Set(i, fmt.Sprintf("value-%d", i))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cache.Get(i % 10000)
	}
}
