package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/newagedev/animalcompare/internal/model"
)

// Verify at compile time that Store implements all interfaces.
var (
	_ CatalogReader = (*Store)(nil)
	_ BacklogReader = (*Store)(nil)
	_ HistoryReader = (*Store)(nil)
	_ Atomic        = (*Store)(nil)
)

// Store provides data access to the SQLite database.
type Store struct {
	db       *sql.DB
	notifier *Notifier
}

// New creates a new Store and initialises the schema.
func New(db *sql.DB) (*Store, error) {
	s := &Store{db: db, notifier: NewNotifier()}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Notifier returns the backlog change notifier fed by committed transactions.
func (s *Store) Notifier() *Notifier {
	return s.notifier
}

func (s *Store) migrate() error {
	// Ensure the schema_version table exists.
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var version int
	err := s.db.QueryRow(`SELECT version FROM schema_version LIMIT 1`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		// Fresh database: initialize to version 0.
		if _, err := s.db.Exec(`INSERT INTO schema_version (version) VALUES (0)`); err != nil {
			return fmt.Errorf("init schema version: %w", err)
		}
		version = 0
	} else if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	// migrations is an ordered list of migration functions.
	// Index 0 = migration from v0 to v1, etc.
	migrations := []func() error{
		s.migrateV1, // v0 → v1: initial schema
		s.migrateV2, // v1 → v2: unique url per category, winner index for favourites
	}

	for i := version; i < len(migrations); i++ {
		if err := migrations[i](); err != nil {
			return fmt.Errorf("migration v%d→v%d: %w", i, i+1, err)
		}
		if _, err := s.db.Exec(`UPDATE schema_version SET version = ?`, i+1); err != nil {
			return fmt.Errorf("update schema version to %d: %w", i+1, err)
		}
	}

	return nil
}

// migrateV1 creates the initial schema (v0 → v1).
func (s *Store) migrateV1() error {
	schema := `
	CREATE TABLE IF NOT EXISTS animals (
		id   INTEGER PRIMARY KEY AUTOINCREMENT,
		url  TEXT NOT NULL,
		type TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_animals_type ON animals(type);

	CREATE TABLE IF NOT EXISTS backlog (
		id        INTEGER PRIMARY KEY AUTOINCREMENT,
		animal_id INTEGER NOT NULL REFERENCES animals(id),
		type      TEXT NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_backlog_animal ON backlog(type, animal_id);

	CREATE TABLE IF NOT EXISTS comparisons (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		winner      INTEGER NOT NULL REFERENCES animals(id),
		loser       INTEGER NOT NULL REFERENCES animals(id),
		compared_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// migrateV2 enforces url uniqueness per category at the schema level and
// indexes comparison winners for the favourites aggregation (v1 → v2).
func (s *Store) migrateV2() error {
	_, err := s.db.Exec(`
	CREATE UNIQUE INDEX IF NOT EXISTS idx_animals_url ON animals(type, url);
	CREATE INDEX IF NOT EXISTS idx_comparisons_winner ON comparisons(winner);
	`)
	return err
}

// ---------------------------------------------------------------------------
// Catalog reads
// ---------------------------------------------------------------------------

// AnimalURLExists reports whether the category already catalogued this url.
func (s *Store) AnimalURLExists(ctx context.Context, cat model.Category, url string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM animals WHERE type = ? AND url = ?)`, cat, url,
	).Scan(&exists)
	return exists, err
}

// CatalogCount returns the number of catalogued animals for a category.
func (s *Store) CatalogCount(ctx context.Context, cat model.Category) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM animals WHERE type = ?`, cat).Scan(&n)
	return n, err
}

// ---------------------------------------------------------------------------
// Backlog reads
// ---------------------------------------------------------------------------

// BacklogCount returns the number of queued entries for a category.
func (s *Store) BacklogCount(ctx context.Context, cat model.Category) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM backlog WHERE type = ?`, cat).Scan(&n)
	return n, err
}

// NextPair returns the two oldest backlog entries for a category with their
// animals. The pair comes from a single query, so it always reflects one
// consistent snapshot of the backlog.
func (s *Store) NextPair(ctx context.Context, cat model.Category) (model.Pair, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, a.id, a.url, a.type
		FROM backlog b
		JOIN animals a ON b.animal_id = a.id
		WHERE b.type = ?
		ORDER BY b.id ASC
		LIMIT 2`, cat)
	if err != nil {
		return model.Pair{}, err
	}
	defer rows.Close()

	var entries []model.AnimalInBacklog
	for rows.Next() {
		var e model.AnimalInBacklog
		if err := rows.Scan(&e.BacklogID, &e.Animal.ID, &e.Animal.URL, &e.Animal.Type); err != nil {
			return model.Pair{}, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return model.Pair{}, err
	}
	if len(entries) < 2 {
		return model.Pair{}, model.ErrEmptyBacklog
	}
	return model.Pair{First: entries[0], Second: entries[1]}, nil
}

// ---------------------------------------------------------------------------
// History reads
// ---------------------------------------------------------------------------

// Favourites returns the animals with the most comparison wins, ordered by
// win count. An empty category means all categories.
func (s *Store) Favourites(ctx context.Context, cat model.Category, limit int) ([]model.FavouriteAnimal, error) {
	builder := sq.Select(
		"comparisons.winner",
		"animals.url",
		"animals.type",
		"COUNT(*) AS wins",
		"MAX(comparisons.compared_at) AS last_compared",
	).
		From("comparisons").
		Join("animals ON comparisons.winner = animals.id").
		GroupBy("comparisons.winner").
		OrderBy("wins DESC").
		Limit(uint64(limit))
	if cat != "" {
		builder = builder.Where(sq.Eq{"animals.type": cat})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build favourites query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var favs []model.FavouriteAnimal
	for rows.Next() {
		var f model.FavouriteAnimal
		if err := rows.Scan(&f.Animal.ID, &f.Animal.URL, &f.Animal.Type, &f.Wins, &f.LastCompared); err != nil {
			return nil, err
		}
		favs = append(favs, f)
	}
	return favs, rows.Err()
}

// Comparisons returns a page of completed comparisons, newest first, with
// both animals resolved. An empty category means all categories.
func (s *Store) Comparisons(ctx context.Context, cat model.Category, page, pageSize int) ([]model.ComparisonRecord, error) {
	builder := sq.Select(
		"c.id",
		"w.id", "w.url", "w.type",
		"l.id", "l.url", "l.type",
		"c.compared_at",
	).
		From("comparisons c").
		Join("animals w ON c.winner = w.id").
		Join("animals l ON c.loser = l.id").
		OrderBy("c.id DESC").
		Limit(uint64(pageSize)).
		Offset(uint64(page * pageSize))
	if cat != "" {
		builder = builder.Where(sq.Eq{"w.type": cat})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build comparisons query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.ComparisonRecord
	for rows.Next() {
		var r model.ComparisonRecord
		if err := rows.Scan(
			&r.ID,
			&r.Winner.ID, &r.Winner.URL, &r.Winner.Type,
			&r.Loser.ID, &r.Loser.URL, &r.Loser.Type,
			&r.ComparedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
