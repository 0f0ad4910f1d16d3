package repository

import (
	"context"
	"database/sql"
	"time"
)

// SnapshotRepo persists whole-store snapshots.  Each save writes one
// JSON blob; loading always returns the most recent blob.  The store is
// replaced wholesale on load, so there is no row-level schema beyond
// the snapshot table itself.
type SnapshotRepo struct {
	db *sql.DB
}

// NewSnapshotRepo returns a SnapshotRepo bound to the given database.
func NewSnapshotRepo(db *sql.DB) *SnapshotRepo { return &SnapshotRepo{db: db} }

// EnsureSchema creates the snapshots table when it does not exist yet.
func (r *SnapshotRepo) EnsureSchema(ctx context.Context) error {
	const q = `CREATE TABLE IF NOT EXISTS snapshots (
        id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
        taken_at DATETIME NOT NULL,
        state LONGBLOB NOT NULL
    )`
	_, err := r.db.ExecContext(ctx, q)
	return err
}

// Save stores a serialized snapshot and returns its id.
func (r *SnapshotRepo) Save(ctx context.Context, state []byte, takenAt time.Time) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO snapshots (taken_at, state) VALUES (?,?)",
		takenAt.UTC(), state)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// LoadLatest returns the most recently saved snapshot blob.
func (r *SnapshotRepo) LoadLatest(ctx context.Context) ([]byte, error) {
	var state []byte
	err := r.db.QueryRowContext(ctx,
		"SELECT state FROM snapshots ORDER BY id DESC LIMIT 1").Scan(&state)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return state, nil
}
