package cache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/scipunch/newsdesk/feed"
)

func openTestCache(t *testing.T) *SQLite {
	t.Helper()
	cachePath := filepath.Join(t.TempDir(), "test_cache.db")

	c, err := Open(cachePath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	if _, err := os.Stat(cachePath); os.IsNotExist(err) {
		t.Fatal("cache database file was not created")
	}
	return c
}

func testPayload(n int) feed.CachePayload {
	articles := make([]feed.Article, n)
	for i := range articles {
		articles[i] = feed.Article{
			ID:        int64(1000 + i),
			Title:     "Title",
			Summary:   "Summary",
			Category:  "Business",
			SourceURL: "https://example.com",
		}
	}
	return feed.CachePayload{Timestamp: time.Now().UnixMilli(), Articles: articles}
}

func TestSQLite_SetAndGet(t *testing.T) {
	c := openTestCache(t)

	key := feed.CacheKey(feed.LangEN)
	payload := testPayload(3)

	if err := c.Set(key, payload); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, found, err := c.Get(key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found {
		t.Fatal("expected cache hit, got miss")
	}
	if got.Timestamp != payload.Timestamp {
		t.Errorf("timestamp mismatch: got %d, want %d", got.Timestamp, payload.Timestamp)
	}
	if len(got.Articles) != 3 {
		t.Errorf("expected 3 articles, got %d", len(got.Articles))
	}
	if got.Articles[0] != payload.Articles[0] {
		t.Errorf("article mismatch: got %+v, want %+v", got.Articles[0], payload.Articles[0])
	}
}

func TestSQLite_Miss(t *testing.T) {
	c := openTestCache(t)

	_, found, err := c.Get(feed.CacheKey(feed.LangZH))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Error("expected cache miss, got hit")
	}
}

func TestSQLite_LanguageIsolation(t *testing.T) {
	c := openTestCache(t)

	if err := c.Set(feed.CacheKey(feed.LangEN), testPayload(2)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	_, found, err := c.Get(feed.CacheKey(feed.LangZH))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Error("expected miss for other language, got hit")
	}
}

func TestSQLite_Overwrite(t *testing.T) {
	c := openTestCache(t)
	key := feed.CacheKey(feed.LangEN)

	if err := c.Set(key, testPayload(2)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	updated := testPayload(5)
	if err := c.Set(key, updated); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, found, _ := c.Get(key)
	if !found {
		t.Fatal("expected cache hit")
	}
	if len(got.Articles) != 5 {
		t.Errorf("expected updated payload with 5 articles, got %d", len(got.Articles))
	}
}

func TestSQLite_Remove(t *testing.T) {
	c := openTestCache(t)
	key := feed.CacheKey(feed.LangEN)

	if err := c.Set(key, testPayload(1)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := c.Remove(key); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	_, found, _ := c.Get(key)
	if found {
		t.Error("expected miss after Remove, got hit")
	}
}

func TestSQLite_Clear(t *testing.T) {
	c := openTestCache(t)

	c.Set(feed.CacheKey(feed.LangEN), testPayload(1))
	c.Set(feed.CacheKey(feed.LangZH), testPayload(1))

	stats, _ := c.Stats()
	if stats.Entries != 2 {
		t.Errorf("expected 2 entries, got %d", stats.Entries)
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	stats, _ = c.Stats()
	if stats.Entries != 0 {
		t.Errorf("expected 0 entries after clear, got %d", stats.Entries)
	}
}

func TestSQLite_Stats(t *testing.T) {
	c := openTestCache(t)

	stats, err := c.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Entries != 0 {
		t.Error("expected empty cache initially")
	}

	c.Set(feed.CacheKey(feed.LangEN), testPayload(1))

	stats, err = c.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Entries != 1 {
		t.Errorf("expected 1 entry, got %d", stats.Entries)
	}
	if stats.OldestEntry.IsZero() {
		t.Error("expected OldestEntry to be set")
	}
}

func TestMemory_Corrupt(t *testing.T) {
	m := NewMemory()
	key := feed.CacheKey(feed.LangEN)
	m.SetRaw(key, "{not json")

	_, found, err := m.Get(key)
	if found {
		t.Error("corrupt entry must not report as found")
	}
	if !errors.Is(err, ErrCorrupt) {
		t.Errorf("expected ErrCorrupt, got %v", err)
	}
}

func TestMemory_RoundTrip(t *testing.T) {
	m := NewMemory()
	key := feed.CacheKey(feed.LangZH)
	payload := testPayload(2)

	if err := m.Set(key, payload); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, found, err := m.Get(key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found {
		t.Fatal("expected hit")
	}
	if len(got.Articles) != 2 || got.Timestamp != payload.Timestamp {
		t.Errorf("round trip mismatch: %+v", got)
	}

	if err := m.Remove(key); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if m.Len() != 0 {
		t.Errorf("expected empty store, got %d entries", m.Len())
	}
}

func TestDefaultPath(t *testing.T) {
	path := DefaultPath()
	if path == "" {
		t.Error("DefaultPath returned empty string")
	}
}
