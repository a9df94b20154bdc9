package collection

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/retrovault/retrovault/internal/model"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "collection.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func TestStore_AddAndGet(t *testing.T) {
	s := testStore(t)

	target := model.TargetItem{
		Name:      "Super Metroid",
		Platform:  "SNES",
		Condition: model.BucketComplete,
	}
	added, err := s.Add(target, 85, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), "yard sale find")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if added.ID == "" {
		t.Fatal("Expected generated id")
	}

	got, err := s.Get(added.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Target.Name != "Super Metroid" || got.PurchasePrice != 85 {
		t.Errorf("unexpected item %+v", got)
	}
}

func TestStore_AddRequiresName(t *testing.T) {
	s := testStore(t)
	if _, err := s.Add(model.TargetItem{}, 10, time.Now(), ""); err == nil {
		t.Error("Expected error for empty name")
	}
}

func TestStore_GetMissing(t *testing.T) {
	s := testStore(t)
	if _, err := s.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestStore_Remove(t *testing.T) {
	s := testStore(t)
	added, _ := s.Add(model.TargetItem{Name: "Earthbound"}, 200, time.Now(), "")

	if err := s.Remove(added.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if s.Count() != 0 {
		t.Errorf("Expected empty store, got %d", s.Count())
	}
	if err := s.Remove(added.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on double remove, got %v", err)
	}
}

func TestStore_ListOrder(t *testing.T) {
	s := testStore(t)

	old := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	s.Add(model.TargetItem{Name: "Old Purchase"}, 10, old, "")
	s.Add(model.TargetItem{Name: "Recent Purchase"}, 20, recent, "")

	items := s.List()
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	if items[0].Target.Name != "Recent Purchase" {
		t.Errorf("Expected newest purchase first, got %q", items[0].Target.Name)
	}
}

func TestStore_PersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collection.json")

	first, _ := Open(path)
	added, err := first.Add(model.TargetItem{Name: "Chrono Trigger"}, 150, time.Now(), "")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	second, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := second.Get(added.ID)
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if got.Target.Name != "Chrono Trigger" {
		t.Errorf("unexpected item %+v", got)
	}
}

func TestStore_CorruptFileIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collection.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Open(path); err == nil {
		t.Error("Expected error for corrupt ledger; purchases are not reconstructable")
	}
}
