package comps

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/retrovault/retrovault/internal/model"
)

// MockProvider fabricates deterministic sold listings so the rest of the
// application works offline. Prices derive from a hash of the query name,
// so the same item always values the same.
type MockProvider struct {
	// Now is injectable so tests control sale recency. Defaults to the
	// wall clock.
	Now func() time.Time
}

func NewMockProvider() *MockProvider {
	return &MockProvider{Now: time.Now}
}

func (m *MockProvider) Available() bool { return true }

func (m *MockProvider) Name() string { return "Mock" }

// Search returns six recent sales matching the query's condition, spread
// over the past six weeks with a little deterministic price jitter.
func (m *MockProvider) Search(_ context.Context, q Query) ([]model.Comparable, error) {
	base := float64(20 + seed(q.Name)%180) // stable price in [20,200)

	suffix := ""
	switch q.Condition {
	case model.BucketSealed:
		suffix = " factory sealed"
	case model.BucketComplete:
		suffix = " CIB complete"
	case model.BucketLoose:
		suffix = " cart only"
	}

	title := q.Name
	if q.Platform != "" {
		title += " " + q.Platform
	}
	title += suffix

	now := m.Now()
	comps := make([]model.Comparable, 0, 6)
	for i := 0; i < 6; i++ {
		jitter := float64(int(seed(fmt.Sprintf("%s#%d", q.Name, i))%11)) - 5 // [-5,5]
		comps = append(comps, model.Comparable{
			Name:   title,
			Price:  base + jitter,
			SoldAt: now.AddDate(0, 0, -7*i),
			Source: "mock",
		})
	}
	return comps, nil
}

func seed(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}
