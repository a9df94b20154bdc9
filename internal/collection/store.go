// Package collection is the purchase ledger: the games you own, what you
// paid, and when. It is a single-user JSON file store in the spirit of a
// notebook, not a database.
package collection

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/retrovault/retrovault/internal/model"
)

// ErrNotFound is returned when an item id is not in the ledger.
var ErrNotFound = errors.New("item not found")

// Item is one owned game plus its purchase record.
type Item struct {
	ID            string           `json:"id"`
	Target        model.TargetItem `json:"target"`
	PurchasePrice float64          `json:"purchase_price"`
	PurchasedAt   time.Time        `json:"purchased_at"`
	Notes         string           `json:"notes,omitempty"`
	AddedAt       time.Time        `json:"added_at"`
}

// Store is safe for concurrent use.
type Store struct {
	path  string
	mu    sync.RWMutex
	items map[string]Item
}

// Open loads the ledger at path, starting empty if the file doesn't exist.
// Unlike the comps cache, a corrupt ledger is an error: purchase records
// are not reconstructable, so silently starting fresh would lose data.
func Open(path string) (*Store, error) {
	s := &Store{
		path:  path,
		items: make(map[string]Item),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read collection: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.items); err != nil {
			return nil, fmt.Errorf("parse collection %s: %w", path, err)
		}
	}
	return s, nil
}

// Add records a purchase and returns the stored item with its new id.
func (s *Store) Add(target model.TargetItem, price float64, purchasedAt time.Time, notes string) (Item, error) {
	if target.Name == "" {
		return Item{}, fmt.Errorf("item name is required")
	}

	item := Item{
		ID:            uuid.NewString(),
		Target:        target,
		PurchasePrice: price,
		PurchasedAt:   purchasedAt,
		Notes:         notes,
		AddedAt:       time.Now(),
	}

	s.mu.Lock()
	s.items[item.ID] = item
	s.mu.Unlock()

	if err := s.flush(); err != nil {
		return Item{}, err
	}
	return item, nil
}

// Get returns the item with the given id.
func (s *Store) Get(id string) (Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return Item{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return item, nil
}

// Remove deletes an item from the ledger.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	_, ok := s.items[id]
	if ok {
		delete(s.items, id)
	}
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.flush()
}

// List returns every item, newest purchase first; ties break on name for
// a stable order.
func (s *Store) List() []Item {
	s.mu.RLock()
	items := make([]Item, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, item)
	}
	s.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		if !items[i].PurchasedAt.Equal(items[j].PurchasedAt) {
			return items[i].PurchasedAt.After(items[j].PurchasedAt)
		}
		return items[i].Target.Name < items[j].Target.Name
	})
	return items
}

// Count reports the number of items in the ledger.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store) flush() error {
	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create collection dir: %w", err)
		}
	}

	s.mu.RLock()
	data, err := json.MarshalIndent(s.items, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal collection: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write collection: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace collection: %w", err)
	}
	return nil
}
