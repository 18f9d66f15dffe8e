package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestKeys(t *testing.T) {
	page := CacheKey("https://example.com/report")
	if !strings.HasPrefix(page, "groundex:v1:page:") {
		t.Errorf("unexpected page key %q", page)
	}
	if page != CacheKey("https://example.com/report") {
		t.Error("page key is not stable")
	}

	a := ExtractionKey("llm", "text")
	b := ExtractionKey("pattern", "text")
	if a == b {
		t.Error("extraction keys must differ per extractor")
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, ok := c.Get("k"); !ok || string(v) != "v" {
		t.Errorf("Get = %q, %v", v, ok)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}

	_ = c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after Delete")
	}
}

func TestMemoryCache_Prune(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Hour)

	_ = c.Set("short", []byte("x"), time.Millisecond)
	_ = c.Set("long", []byte("y"), time.Hour)
	_ = c.Set("never", []byte("z"), -time.Second)
	time.Sleep(5 * time.Millisecond)

	if n := c.Prune(); n != 1 {
		t.Errorf("Prune removed %d items, want 1", n)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestDiskCache_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)

	key := CacheKey("https://example.com/a")
	if err := c.Set(key, []byte("<html>"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	v, ok := c.Get(key)
	if !ok || string(v) != "<html>" {
		t.Fatalf("Get = %q, %v", v, ok)
	}

	// File names never contain the raw key
	files, _ := os.ReadDir(dir)
	if len(files) != 1 || strings.Contains(files[0].Name(), ":") {
		t.Errorf("unexpected cache files: %v", files)
	}

	if err := c.Delete(key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := c.Delete(key); err != nil {
		t.Errorf("Delete of a missing key should not fail: %v", err)
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)

	if err := c.Set("old", []byte("x"), -time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok := c.Get("old"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestDiskCache_PruneAndClear(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)

	_ = c.Set("fresh", []byte("1"), time.Hour)
	_ = c.Set("stale", []byte("2"), -time.Minute)
	if err := os.WriteFile(filepath.Join(dir, "broken"+entrySuffix), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("keep"), 0644); err != nil {
		t.Fatal(err)
	}

	removed, err := c.Prune()
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 2 {
		t.Errorf("Prune removed %d entries, want 2", removed)
	}
	if _, ok := c.Get("fresh"); !ok {
		t.Error("fresh entry should survive Prune")
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok := c.Get("fresh"); ok {
		t.Error("expected miss after Clear")
	}
	if _, err := os.Stat(filepath.Join(dir, "notes.txt")); err != nil {
		t.Errorf("Clear removed an unrelated file: %v", err)
	}
}

func TestDiskCache_MissingDir(t *testing.T) {
	c := NewDiskCache(filepath.Join(t.TempDir(), "absent"), time.Hour)

	if n, err := c.Prune(); err != nil || n != 0 {
		t.Errorf("Prune on missing dir = %d, %v", n, err)
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()

	writer := NewLayeredCache(time.Minute, dir, time.Hour)
	if err := writer.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// A fresh process only has the disk layer
	reader := NewLayeredCache(time.Minute, dir, time.Hour)
	mem := reader.memory.(*MemoryCache)
	if mem.Len() != 0 {
		t.Fatal("memory layer should start empty")
	}

	if v, ok := reader.Get("k"); !ok || string(v) != "v" {
		t.Fatalf("Get = %q, %v", v, ok)
	}
	if mem.Len() != 1 {
		t.Error("disk hit was not promoted to memory")
	}
}

func TestLayeredCache_MemoryOnly(t *testing.T) {
	c := NewLayeredCache(time.Minute, "", 0)

	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok := c.Get("k"); !ok {
		t.Error("expected memory hit")
	}
	if n, err := c.Prune(); n != 0 || err != nil {
		t.Errorf("Prune = %d, %v", n, err)
	}
	if err := c.Clear(); err != nil {
		t.Errorf("Clear: %v", err)
	}
}
