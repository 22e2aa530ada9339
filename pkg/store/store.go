// Package store persists decomposition runs in SQLite so box lists can be
// listed and reloaded later.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/chazu/boxcloud/pkg/decompose"
	"github.com/chazu/boxcloud/pkg/grid"
	"github.com/chazu/boxcloud/pkg/shape"
)

// schema.sql creates the runs and boxes tables.
//
//go:embed schema.sql
var schemaSQL string

// ErrNotFound is returned by LoadRun for an unknown run ID.
var ErrNotFound = errors.New("store: run not found")

// Run is one stored decomposition.
type Run struct {
	ID        string
	CreatedAt time.Time
	Source    string
	Kind      shape.Kind
	Frame     grid.Frame
	Dims      [3]int
	Boxes     []decompose.Box
}

// Summary is a Run without its boxes, as returned by ListRuns.
type Summary struct {
	ID        string
	CreatedAt time.Time
	Source    string
	Kind      shape.Kind
	BoxCount  int
}

// Store wraps a SQLite database holding runs.
type Store struct {
	*sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// schema. Use ":memory:" for a throwaway store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db}, nil
}

// SaveRun stores r and its boxes in one transaction. An empty ID is replaced
// by a fresh UUID and a zero CreatedAt by the current time; the stored ID is
// returned.
func (s *Store) SaveRun(ctx context.Context, r *Run) (string, error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (run_id, created_at, source, kind, cell_size, min_x, min_y, min_z,
		                  width, height, depth, box_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.CreatedAt.UnixNano(), r.Source, r.Kind.String(),
		r.Frame.CellSize, r.Frame.MinX, r.Frame.MinY, r.Frame.MinZ,
		r.Dims[0], r.Dims[1], r.Dims[2], len(r.Boxes))
	if err != nil {
		return "", fmt.Errorf("insert run %s: %w", r.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO boxes (run_id, seq, x0, y0, z0, x1, y1, z1)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare box insert: %w", err)
	}
	defer stmt.Close()

	for i, b := range r.Boxes {
		if _, err := stmt.ExecContext(ctx, r.ID, i, b.X0, b.Y0, b.Z0, b.X1, b.Y1, b.Z1); err != nil {
			return "", fmt.Errorf("insert box %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit run %s: %w", r.ID, err)
	}
	return r.ID, nil
}

// LoadRun returns the run with the given ID, boxes in their stored order.
func (s *Store) LoadRun(ctx context.Context, id string) (*Run, error) {
	var (
		r       Run
		created int64
		kind    string
	)
	err := s.QueryRowContext(ctx, `
		SELECT run_id, created_at, source, kind, cell_size, min_x, min_y, min_z, width, height, depth
		FROM runs WHERE run_id = ?`, id).Scan(
		&r.ID, &created, &r.Source, &kind,
		&r.Frame.CellSize, &r.Frame.MinX, &r.Frame.MinY, &r.Frame.MinZ,
		&r.Dims[0], &r.Dims[1], &r.Dims[2])
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", id, err)
	}
	r.CreatedAt = time.Unix(0, created).UTC()
	if r.Kind, err = shape.ParseKind(kind); err != nil {
		return nil, fmt.Errorf("load run %s: %w", id, err)
	}

	rows, err := s.QueryContext(ctx, `
		SELECT x0, y0, z0, x1, y1, z1 FROM boxes WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("load boxes for %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var b decompose.Box
		if err := rows.Scan(&b.X0, &b.Y0, &b.Z0, &b.X1, &b.Y1, &b.Z1); err != nil {
			return nil, fmt.Errorf("scan box: %w", err)
		}
		r.Boxes = append(r.Boxes, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load boxes for %s: %w", id, err)
	}
	return &r, nil
}

// ListRuns returns up to limit runs, newest first. limit <= 0 lists all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Summary, error) {
	query := `SELECT run_id, created_at, source, kind, box_count FROM runs ORDER BY created_at DESC, run_id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum     Summary
			created int64
			kind    string
		)
		if err := rows.Scan(&sum.ID, &created, &sum.Source, &kind, &sum.BoxCount); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		sum.CreatedAt = time.Unix(0, created).UTC()
		if sum.Kind, err = shape.ParseKind(kind); err != nil {
			return nil, fmt.Errorf("run %s: %w", sum.ID, err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// DeleteRun removes a run and its boxes.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	res, err := s.ExecContext(ctx, `DELETE FROM runs WHERE run_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
