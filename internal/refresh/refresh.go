// Package refresh revalues the whole collection in the background: fetch
// fresh comparables per item, run the engine, and record a history
// snapshot. A cron wrapper runs it on a schedule.
package refresh

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"github.com/retrovault/retrovault/internal/collection"
	"github.com/retrovault/retrovault/internal/comps"
	"github.com/retrovault/retrovault/internal/history"
	"github.com/retrovault/retrovault/internal/valuation"
)

const defaultWorkers = 4

// Service runs one batch revaluation pass.
type Service struct {
	provider comps.Provider
	engine   *valuation.Engine
	store    *collection.Store
	tracker  *history.Tracker
	limiter  *rate.Limiter
	workers  int

	// now is injectable for tests.
	now func() time.Time
}

// Summary reports what a pass accomplished.
type Summary struct {
	Total   int
	Valued  int
	Empty   int
	Failed  int
	Elapsed time.Duration
}

// New wires a refresh service. ratePerSec bounds provider traffic across
// all workers; zero means 2/s.
func New(provider comps.Provider, engine *valuation.Engine, store *collection.Store, tracker *history.Tracker, ratePerSec float64) *Service {
	if ratePerSec == 0 {
		ratePerSec = 2
	}
	return &Service{
		provider: provider,
		engine:   engine,
		store:    store,
		tracker:  tracker,
		limiter:  rate.NewLimiter(rate.Limit(ratePerSec), 1),
		workers:  defaultWorkers,
		now:      time.Now,
	}
}

// Run revalues every item in the ledger. Individual item failures are
// counted, not fatal; the pass keeps going.
func (s *Service) Run(ctx context.Context) (Summary, error) {
	start := s.now()
	items := s.store.List()

	jobs := make(chan collection.Item)
	var mu sync.Mutex
	summary := Summary{Total: len(items)}

	var wg sync.WaitGroup
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				outcome := s.refreshOne(ctx, item)
				mu.Lock()
				switch outcome {
				case outcomeValued:
					summary.Valued++
				case outcomeEmpty:
					summary.Empty++
				default:
					summary.Failed++
				}
				mu.Unlock()
			}
		}()
	}

	for _, item := range items {
		select {
		case jobs <- item:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return summary, ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()

	summary.Elapsed = s.now().Sub(start)
	log.Printf("refresh: %d items, %d valued, %d empty, %d failed in %s",
		summary.Total, summary.Valued, summary.Empty, summary.Failed, summary.Elapsed.Round(time.Millisecond))
	return summary, nil
}

type outcome int

const (
	outcomeValued outcome = iota
	outcomeEmpty
	outcomeFailed
)

func (s *Service) refreshOne(ctx context.Context, item collection.Item) outcome {
	if err := s.limiter.Wait(ctx); err != nil {
		return outcomeFailed
	}

	records, err := s.provider.Search(ctx, QueryFor(item))
	if err != nil {
		log.Printf("refresh: %s (%s): %v", item.Target.Name, item.ID, err)
		return outcomeFailed
	}

	now := s.now()
	res := s.engine.Value(item.Target, records, now)
	if err := s.tracker.Record(item.ID, res, now); err != nil {
		log.Printf("refresh: record %s: %v", item.ID, err)
		return outcomeFailed
	}

	if res.Empty {
		return outcomeEmpty
	}
	return outcomeValued
}

// QueryFor maps a ledger item onto a provider query.
func QueryFor(item collection.Item) comps.Query {
	t := item.Target
	return comps.Query{
		Name:             t.Name,
		Platform:         t.Platform,
		Region:           t.Region,
		Condition:        t.Condition,
		GradingAuthority: t.GradingAuthority,
		GradeValue:       t.GradeValue,
	}
}

// Scheduler runs the service on a cron schedule.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler validates the spec and registers the job. The job uses a
// fresh background context per run so a slow pass can't cancel the next.
func NewScheduler(svc *Service, spec string) (*Scheduler, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if _, err := svc.Run(context.Background()); err != nil {
			log.Printf("scheduled refresh: %v", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("cron spec %q: %w", spec, err)
	}
	return &Scheduler{cron: c}, nil
}

// Start begins scheduling. Returns immediately.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts scheduling and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
