// Package engine implements the backlog replenishment core: the fetch
// pipeline that pulls and filters new animals, the recycling policy that
// requeues old ones, and the per-category controller that drives both.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/newagedev/animalcompare/internal/model"
	"github.com/newagedev/animalcompare/internal/source"
	"github.com/newagedev/animalcompare/internal/store"
)

// Options tunes the replenishment engine. Zero values are not usable;
// callers build Options from config defaults.
type Options struct {
	// LoadAmount is the target batch size for one refill.
	LoadAmount int

	// AttemptCap bounds source calls per refill batch. The random feeds
	// repeat themselves, so a batch may legitimately come back short.
	AttemptCap int

	// RecycleBase, RecycleMinCatalog and RecycleMaxCatalog parameterise
	// the recycling ramp (see RecycleCount).
	RecycleBase       int
	RecycleMinCatalog int
	RecycleMaxCatalog int
}

// Pipeline fetches, filters and persists new animals for the backlog.
type Pipeline struct {
	store      store.EngineStore
	registry   *source.Registry
	prefetcher Prefetcher
	opts       Options
}

// NewPipeline creates a pipeline with the given dependencies.
func NewPipeline(s store.EngineStore, registry *source.Registry, prefetcher Prefetcher, opts Options) *Pipeline {
	return &Pipeline{store: s, registry: registry, prefetcher: prefetcher, opts: opts}
}

// Refill pulls candidates from the category's source until it has target
// accepted animals or the attempt cap runs out, then inserts the batch
// into the catalog and the backlog in one transaction. A short (even
// empty) batch is a normal outcome, not an error: it means the source is
// exhausted or noisy right now.
func (p *Pipeline) Refill(ctx context.Context, cat model.Category, target int) ([]model.Animal, error) {
	entry, ok := p.registry.Lookup(cat)
	if !ok {
		return nil, fmt.Errorf("refill %s: %w", cat, model.ErrUnknownCategory)
	}

	urls, err := p.collect(ctx, cat, entry, target)
	if err != nil {
		return nil, err
	}
	if len(urls) == 0 {
		return nil, nil
	}

	animals := make([]model.Animal, len(urls))
	for i, url := range urls {
		animals[i] = model.Animal{URL: url, Type: cat}
	}

	// Insert the animals and register them in the backlog atomically, so
	// a crash between the two writes cannot leave an orphan animal
	// that is never queued.
	err = p.store.RunAtomically(ctx, func(tx *store.Tx) error {
		ids, err := tx.AddAnimals(ctx, animals)
		if err != nil {
			return err
		}
		entries := make([]model.BacklogEntry, len(ids))
		for i, id := range ids {
			animals[i].ID = id
			entries[i] = model.BacklogEntry{AnimalID: id, Type: cat}
		}
		return tx.EnqueueBacklog(ctx, entries)
	})
	if err != nil {
		return nil, fmt.Errorf("persist batch: %w", err)
	}

	// Warm the image cache without blocking the caller.
	go p.prefetcher.Prefetch(ctx, urls)

	return animals, nil
}

// collect runs the capped fetch loop and returns the accepted URLs.
func (p *Pipeline) collect(ctx context.Context, cat model.Category, entry source.Entry, target int) ([]string, error) {
	var urls []string
	inBatch := make(map[string]bool)

	for attempt := 0; attempt < p.opts.AttemptCap && len(urls) < target; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		candidate, err := entry.Adapter.Fetch(ctx)
		if err != nil {
			// Per-attempt failures are recovered here and never
			// surfaced past the cap.
			slog.Debug("fetch attempt failed", "category", cat, "error", err)
			continue
		}

		if !entry.Validate(candidate) {
			continue
		}
		if inBatch[candidate.URL] {
			continue
		}
		exists, err := p.store.AnimalURLExists(ctx, cat, candidate.URL)
		if err != nil {
			return nil, fmt.Errorf("dedup lookup: %w", err)
		}
		if exists {
			continue
		}

		inBatch[candidate.URL] = true
		urls = append(urls, candidate.URL)
	}

	return urls, nil
}

// Recycle requeues a catalog-size-dependent number of already-seen animals.
// The random sample is drawn first and ids already in the backlog are then
// dropped, so a fully colliding sample legitimately inserts nothing.
// Returns the number of entries actually requeued.
func (p *Pipeline) Recycle(ctx context.Context, cat model.Category) (int, error) {
	total, err := p.store.CatalogCount(ctx, cat)
	if err != nil {
		return 0, fmt.Errorf("catalog count: %w", err)
	}

	count := RecycleCount(total, p.opts.RecycleBase, p.opts.RecycleMinCatalog, p.opts.RecycleMaxCatalog)
	if count == 0 {
		return 0, nil
	}

	inserted := 0
	err = p.store.RunAtomically(ctx, func(tx *store.Tx) error {
		sample, err := tx.SampleRandomAnimalIDs(ctx, cat, count)
		if err != nil {
			return err
		}
		queued, err := tx.BacklogAnimalIDs(ctx, cat)
		if err != nil {
			return err
		}

		var entries []model.BacklogEntry
		for _, id := range sample {
			if queued[id] {
				continue
			}
			entries = append(entries, model.BacklogEntry{AnimalID: id, Type: cat})
		}
		inserted = len(entries)
		return tx.EnqueueBacklog(ctx, entries)
	})
	if err != nil {
		return 0, fmt.Errorf("recycle: %w", err)
	}
	return inserted, nil
}
