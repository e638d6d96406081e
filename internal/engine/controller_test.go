package engine

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/newagedev/animalcompare/internal/model"
	"github.com/newagedev/animalcompare/internal/source"
	"github.com/newagedev/animalcompare/internal/store"
)

// gatedAdapter blocks every Fetch until released, tracking how many calls
// run concurrently.
type gatedAdapter struct {
	release     chan struct{}
	calls       atomic.Int64
	inFlight    atomic.Int64
	maxInFlight atomic.Int64
	counter     atomic.Int64
}

func newGatedAdapter() *gatedAdapter {
	return &gatedAdapter{release: make(chan struct{})}
}

func (a *gatedAdapter) Fetch(ctx context.Context) (source.Candidate, error) {
	a.calls.Add(1)
	cur := a.inFlight.Add(1)
	defer a.inFlight.Add(-1)
	for {
		prev := a.maxInFlight.Load()
		if cur <= prev || a.maxInFlight.CompareAndSwap(prev, cur) {
			break
		}
	}

	select {
	case <-ctx.Done():
		return source.Candidate{}, ctx.Err()
	case <-a.release:
	}
	n := a.counter.Add(1)
	return source.Candidate{URL: fmt.Sprintf("https://random.dog/%d.jpg", n), SizeBytes: 1024}, nil
}

// waitFor polls until cond returns true or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestController_SingleFlight(t *testing.T) {
	s := newTestStore(t)
	adapter := newGatedAdapter()
	opts := testOptions()
	opts.LoadAmount = 4
	opts.AttemptCap = 10
	registry := source.NewRegistryWith(map[model.Category]source.Entry{
		model.CategoryDog: {Adapter: adapter, Validate: acceptAll},
	})
	p := NewPipeline(s, registry, NopPrefetcher{}, opts)

	notify := make(chan struct{}, 16)
	ctrl := NewController(model.CategoryDog, p, notify)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		ctrl.Run(ctx)
		close(done)
	}()

	// The startup check launches one job, which blocks in Fetch.
	waitFor(t, "first fetch", func() bool { return adapter.calls.Load() == 1 })

	// A burst of low-size signals while the job is in flight must not
	// start more source calls.
	for i := 0; i < 10; i++ {
		notify <- struct{}{}
	}
	time.Sleep(50 * time.Millisecond)
	if got := adapter.calls.Load(); got != 1 {
		t.Fatalf("adapter calls during in-flight job = %d, want 1", got)
	}

	// Release the gate and let the job finish.
	close(adapter.release)
	waitFor(t, "backlog refill", func() bool {
		n, err := s.BacklogCount(ctx, model.CategoryDog)
		return err == nil && n >= opts.LoadAmount
	})

	if got := adapter.maxInFlight.Load(); got != 1 {
		t.Errorf("max concurrent fetches = %d, want 1", got)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("controller did not stop")
	}
}

func TestController_IdleWhenBacklogFull(t *testing.T) {
	s := newTestStore(t)

	// Pre-fill the backlog beyond the threshold.
	animals := make([]model.Animal, 10)
	for i := range animals {
		animals[i] = model.Animal{URL: fmt.Sprintf("https://random.dog/pre%d.jpg", i), Type: model.CategoryDog}
	}
	err := s.RunAtomically(context.Background(), func(tx *store.Tx) error {
		ids, err := tx.AddAnimals(context.Background(), animals)
		if err != nil {
			return err
		}
		entries := make([]model.BacklogEntry, len(ids))
		for i, id := range ids {
			entries[i] = model.BacklogEntry{AnimalID: id, Type: model.CategoryDog}
		}
		return tx.EnqueueBacklog(context.Background(), entries)
	})
	if err != nil {
		t.Fatalf("prefill: %v", err)
	}

	adapter := &scriptedAdapter{candidates: uniqueCandidates(20)}
	p := newTestPipeline(t, s, adapter, acceptAll)

	notify := make(chan struct{}, 1)
	ctrl := NewController(model.CategoryDog, p, notify)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ctrl.Run(ctx)

	notify <- struct{}{}
	time.Sleep(100 * time.Millisecond)
	if got := adapter.calls.Load(); got != 0 {
		t.Errorf("adapter calls = %d with a full backlog, want 0", got)
	}
}

// TestController_EndToEnd walks the full replenishment cycle: an empty
// catalog fills to the batch target, pairs are served oldest first, and
// draining the backlog through commits triggers the next fetch cycle.
func TestController_EndToEnd(t *testing.T) {
	s := newTestStore(t)
	adapter := &scriptedAdapter{candidates: uniqueCandidates(100)}
	p := newTestPipeline(t, s, adapter, acceptAll)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctrl := NewController(model.CategoryDog, p, s.Notifier().Subscribe(model.CategoryDog))
	go ctrl.Run(ctx)

	// One controller cycle fills catalog and backlog to the target.
	waitFor(t, "initial refill", func() bool {
		n, err := s.BacklogCount(ctx, model.CategoryDog)
		return err == nil && n == 20
	})
	catalog, err := s.CatalogCount(ctx, model.CategoryDog)
	if err != nil {
		t.Fatalf("CatalogCount: %v", err)
	}
	if catalog != 20 {
		t.Fatalf("CatalogCount = %d, want 20", catalog)
	}

	// Commit ten comparisons, draining the backlog to zero.
	for i := 0; i < 10; i++ {
		pair, err := s.NextPair(ctx, model.CategoryDog)
		if errors.Is(err, model.ErrEmptyBacklog) {
			t.Fatalf("backlog empty after %d commits", i)
		}
		if err != nil {
			t.Fatalf("NextPair: %v", err)
		}

		err = s.RunAtomically(ctx, func(tx *store.Tx) error {
			if _, err := tx.AddComparison(ctx, pair.First.Animal.ID, pair.Second.Animal.ID,
				time.Now().UTC().Format(time.RFC3339)); err != nil {
				return err
			}
			return tx.DequeueBacklog(ctx, []model.BacklogEntry{
				{ID: pair.First.BacklogID, AnimalID: pair.First.Animal.ID, Type: model.CategoryDog},
				{ID: pair.Second.BacklogID, AnimalID: pair.Second.Animal.ID, Type: model.CategoryDog},
			})
		})
		if err != nil {
			t.Fatalf("commit %d: %v", i, err)
		}
	}

	// Draining below the threshold triggers a new fetch cycle.
	waitFor(t, "second refill", func() bool {
		n, err := s.CatalogCount(ctx, model.CategoryDog)
		return err == nil && n == 40
	})
}
