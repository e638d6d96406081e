package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/newagedev/animalcompare/internal/model"
)

// Tx exposes the write operations available inside RunAtomically. All
// multi-step engine writes (insert+enqueue, recycle-sample+enqueue,
// dequeue+append-comparison) go through a Tx so that no partial state is
// ever externally visible.
type Tx struct {
	tx      *sql.Tx
	touched map[model.Category]struct{}
}

// RunAtomically executes fn inside a single transaction. If fn returns an
// error the transaction is rolled back and none of its effects persist.
// Backlog change notifications for the touched categories are published
// only after a successful commit, so a committed write always
// happens-before the notification it triggers.
func (s *Store) RunAtomically(ctx context.Context, fn func(tx *Tx) error) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer dbTx.Rollback()

	t := &Tx{tx: dbTx, touched: make(map[model.Category]struct{})}
	if err := fn(t); err != nil {
		return err
	}
	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	for cat := range t.touched {
		s.notifier.Publish(cat)
	}
	return nil
}

// AddAnimals inserts the animals and returns their store-assigned ids in
// input order.
func (t *Tx) AddAnimals(ctx context.Context, animals []model.Animal) ([]int64, error) {
	ids := make([]int64, 0, len(animals))
	for _, a := range animals {
		res, err := t.tx.ExecContext(ctx,
			`INSERT INTO animals (url, type) VALUES (?, ?)`, a.URL, a.Type)
		if err != nil {
			return nil, fmt.Errorf("insert animal: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("animal id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// EnqueueBacklog adds entries to the comparison backlog.
func (t *Tx) EnqueueBacklog(ctx context.Context, entries []model.BacklogEntry) error {
	for _, e := range entries {
		if _, err := t.tx.ExecContext(ctx,
			`INSERT INTO backlog (animal_id, type) VALUES (?, ?)`, e.AnimalID, e.Type); err != nil {
			return fmt.Errorf("enqueue backlog: %w", err)
		}
		t.touched[e.Type] = struct{}{}
	}
	return nil
}

// DequeueBacklog removes entries from the comparison backlog by backlog id.
func (t *Tx) DequeueBacklog(ctx context.Context, entries []model.BacklogEntry) error {
	for _, e := range entries {
		if _, err := t.tx.ExecContext(ctx,
			`DELETE FROM backlog WHERE id = ?`, e.ID); err != nil {
			return fmt.Errorf("dequeue backlog: %w", err)
		}
		t.touched[e.Type] = struct{}{}
	}
	return nil
}

// BacklogEntries returns the backlog rows with the given ids. Missing ids
// are simply absent from the result.
func (t *Tx) BacklogEntries(ctx context.Context, ids ...int64) ([]model.BacklogEntry, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	rows, err := t.tx.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, animal_id, type FROM backlog WHERE id IN (%s)`,
			strings.Join(placeholders, ",")), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.BacklogEntry
	for rows.Next() {
		var e model.BacklogEntry
		if err := rows.Scan(&e.ID, &e.AnimalID, &e.Type); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// BacklogAnimalIDs returns the set of animal ids currently queued for a
// category.
func (t *Tx) BacklogAnimalIDs(ctx context.Context, cat model.Category) (map[int64]bool, error) {
	rows, err := t.tx.QueryContext(ctx, `SELECT animal_id FROM backlog WHERE type = ?`, cat)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	queued := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		queued[id] = true
	}
	return queued, rows.Err()
}

// SampleRandomAnimalIDs returns up to n distinct random animal ids for a
// category.
func (t *Tx) SampleRandomAnimalIDs(ctx context.Context, cat model.Category, n int) ([]int64, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT id FROM animals WHERE type = ? ORDER BY RANDOM() LIMIT ?`, cat, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AddComparison appends one completed comparison and returns its id.
func (t *Tx) AddComparison(ctx context.Context, winner, loser int64, comparedAt string) (int64, error) {
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO comparisons (winner, loser, compared_at) VALUES (?, ?, ?)`,
		winner, loser, comparedAt)
	if err != nil {
		return 0, fmt.Errorf("insert comparison: %w", err)
	}
	return res.LastInsertId()
}

// DeleteComparison removes a comparison. Deleting an unknown id is a no-op
// so that retried delete actions stay idempotent.
func (t *Tx) DeleteComparison(ctx context.Context, id int64) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM comparisons WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete comparison: %w", err)
	}
	return nil
}
