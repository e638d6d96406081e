// Package compare exposes the comparison surface to the presentation
// layer: the next pair to judge, outcome commits, and the read-side
// favourites and history queries.
package compare

import (
	"context"
	"fmt"
	"time"

	"github.com/newagedev/animalcompare/internal/model"
	"github.com/newagedev/animalcompare/internal/store"
)

// Service is the comparison consumer over the shared store.
type Service struct {
	store store.ConsumerStore
}

// New creates a comparison service.
func New(s store.ConsumerStore) *Service {
	return &Service{store: s}
}

// NextPair returns the two oldest backlog entries for a category.
// Insertion order is comparison order, so freshly recycled animals never
// jump ahead of older ones. Returns model.ErrEmptyBacklog when fewer than
// two entries exist; the controller is expected to already be refilling.
func (s *Service) NextPair(ctx context.Context, cat model.Category) (model.Pair, error) {
	return s.store.NextPair(ctx, cat)
}

// Commit records the outcome of one comparison: it appends the comparison
// and removes both backlog entries in a single transaction, so a crash can
// never leave an outcome without the removal or vice versa. If either
// entry is already gone (for example a retried submission of an
// already-committed pair) the whole commit aborts with
// model.ErrBacklogEntryGone and nothing is recorded.
func (s *Service) Commit(ctx context.Context, winnerBacklogID, loserBacklogID int64) error {
	if winnerBacklogID == loserBacklogID {
		return fmt.Errorf("winner and loser are the same backlog entry %d", winnerBacklogID)
	}

	return s.store.RunAtomically(ctx, func(tx *store.Tx) error {
		entries, err := tx.BacklogEntries(ctx, winnerBacklogID, loserBacklogID)
		if err != nil {
			return err
		}
		if len(entries) != 2 {
			return model.ErrBacklogEntryGone
		}

		var winner, loser model.BacklogEntry
		for _, e := range entries {
			switch e.ID {
			case winnerBacklogID:
				winner = e
			case loserBacklogID:
				loser = e
			}
		}

		comparedAt := time.Now().UTC().Format(time.RFC3339)
		if _, err := tx.AddComparison(ctx, winner.AnimalID, loser.AnimalID, comparedAt); err != nil {
			return err
		}
		return tx.DequeueBacklog(ctx, []model.BacklogEntry{winner, loser})
	})
}

// Favourites returns the most-winning animals. An empty category means all
// categories.
func (s *Service) Favourites(ctx context.Context, cat model.Category, limit int) ([]model.FavouriteAnimal, error) {
	return s.store.Favourites(ctx, cat, limit)
}

// History returns a page of completed comparisons, newest first. An empty
// category means all categories.
func (s *Service) History(ctx context.Context, cat model.Category, page, pageSize int) ([]model.ComparisonRecord, error) {
	return s.store.Comparisons(ctx, cat, page, pageSize)
}

// DeleteComparison removes one comparison from the history. Unknown ids
// are a no-op so that retried delete actions stay idempotent.
func (s *Service) DeleteComparison(ctx context.Context, id int64) error {
	return s.store.RunAtomically(ctx, func(tx *store.Tx) error {
		return tx.DeleteComparison(ctx, id)
	})
}
