package store

import (
	"context"

	"github.com/newagedev/animalcompare/internal/model"
)

// CatalogReader provides read access to the animal catalog.
type CatalogReader interface {
	AnimalURLExists(ctx context.Context, cat model.Category, url string) (bool, error)
	CatalogCount(ctx context.Context, cat model.Category) (int, error)
}

// BacklogReader provides read access to the comparison backlog.
type BacklogReader interface {
	BacklogCount(ctx context.Context, cat model.Category) (int, error)
	NextPair(ctx context.Context, cat model.Category) (model.Pair, error)
}

// HistoryReader provides the read-side aggregates over completed comparisons.
type HistoryReader interface {
	Favourites(ctx context.Context, cat model.Category, limit int) ([]model.FavouriteAnimal, error)
	Comparisons(ctx context.Context, cat model.Category, page, pageSize int) ([]model.ComparisonRecord, error)
}

// Atomic runs multi-step writes as all-or-nothing transactions.
type Atomic interface {
	RunAtomically(ctx context.Context, fn func(tx *Tx) error) error
}

// EngineStore combines everything the replenishment engine needs.
type EngineStore interface {
	CatalogReader
	BacklogReader
	Atomic
}

// ConsumerStore combines everything the comparison consumer needs.
type ConsumerStore interface {
	BacklogReader
	HistoryReader
	Atomic
}
