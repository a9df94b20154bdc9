package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

func TestCache_PutGet(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "cache.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	type payload struct {
		Title string  `json:"title"`
		Price float64 `json:"price"`
	}
	in := payload{Title: "Super Metroid", Price: 120.5}

	if err := c.Put(Key("comps", "super metroid"), in, time.Hour); err != nil {
		t.Fatalf("Put: %v", err)
	}

	var out payload
	found, err := c.Get(Key("comps", "super metroid"), &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !found {
		t.Fatal("Expected cache hit")
	}
	if out != in {
		t.Errorf("Expected %+v, got %+v", in, out)
	}
}

func TestCache_MissingKey(t *testing.T) {
	c, _ := Open(filepath.Join(t.TempDir(), "cache.json"))

	var out string
	found, err := c.Get("absent", &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if found {
		t.Error("Expected miss for absent key")
	}
}

func TestCache_Expiration(t *testing.T) {
	c, _ := Open(filepath.Join(t.TempDir(), "cache.json"))

	if err := c.Put("k", "v", time.Nanosecond); err != nil {
		t.Fatalf("Put: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	var out string
	found, _ := c.Get("k", &out)
	if found {
		t.Error("Expected expired entry to miss")
	}
	if c.Len() != 0 {
		t.Errorf("Expected expired entry evicted, Len = %d", c.Len())
	}
}

func TestCache_ZeroTTLNeverExpires(t *testing.T) {
	c, _ := Open(filepath.Join(t.TempDir(), "cache.json"))

	if err := c.Put("k", "v", 0); err != nil {
		t.Fatalf("Put: %v", err)
	}

	var out string
	found, _ := c.Get("k", &out)
	if !found || out != "v" {
		t.Errorf("Expected permanent entry hit, found=%v out=%q", found, out)
	}
}

func TestCache_PersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	first, _ := Open(path)
	if err := first.Put("k", 7, time.Hour); err != nil {
		t.Fatalf("Put: %v", err)
	}

	second, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	var out int
	found, _ := second.Get("k", &out)
	if !found || out != 7 {
		t.Errorf("Expected persisted value 7, found=%v out=%d", found, out)
	}
}

func TestCache_Purge(t *testing.T) {
	c, _ := Open(filepath.Join(t.TempDir(), "cache.json"))

	c.Put("old", 1, time.Nanosecond)
	c.Put("fresh", 2, time.Hour)
	time.Sleep(10 * time.Millisecond)

	removed, err := c.Purge()
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if removed != 1 {
		t.Errorf("Expected 1 purged, got %d", removed)
	}
	if c.Len() != 1 {
		t.Errorf("Expected 1 surviving entry, got %d", c.Len())
	}
}

func TestCache_CorruptFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := writeFile(path, "{not json"); err != nil {
		t.Fatal(err)
	}

	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open should tolerate corrupt cache: %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("Expected empty cache after corrupt load, got %d entries", c.Len())
	}
}
