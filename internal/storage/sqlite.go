package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"numbasis/internal/check"
	"numbasis/internal/numeric"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStore struct {
	db *sql.DB
}

var _ ReportStore = (*SQLiteStore)(nil)

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	slog.Debug("report store opened", "path", path)
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			formula TEXT,
			expr TEXT,
			target TEXT,
			nominal_re REAL,
			nominal_im REAL,
			spread REAL,
			consistent INTEGER,
			created_at INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS trials (
			run_id TEXT,
			idx INTEGER,
			seed INTEGER,
			numeric_re REAL,
			numeric_im REAL,
			scalar_re REAL,
			scalar_im REAL,
			PRIMARY KEY (run_id, idx)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) SaveReport(ctx context.Context, r *check.Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, formula, expr, target, nominal_re, nominal_im, spread, consistent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			formula=excluded.formula,
			expr=excluded.expr,
			target=excluded.target,
			nominal_re=excluded.nominal_re,
			nominal_im=excluded.nominal_im,
			spread=excluded.spread,
			consistent=excluded.consistent,
			created_at=excluded.created_at
	`, r.ID, r.Formula, r.Expr, r.Target, r.Nominal.Real(), r.Nominal.Imag(), r.Spread, r.Consistent, r.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	// Trials are replaced as a snapshot.
	if _, err := tx.ExecContext(ctx, "DELETE FROM trials WHERE run_id = ?", r.ID); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trials (run_id, idx, seed, numeric_re, numeric_im, scalar_re, scalar_im)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, t := range r.Trials {
		// SQLite integers are signed; the seed round-trips through int64.
		if _, err := stmt.ExecContext(ctx, r.ID, i, int64(t.Seed),
			t.Numeric.Real(), t.Numeric.Imag(), t.Scalar.Real(), t.Scalar.Imag()); err != nil {
			return fmt.Errorf("failed to save trial %d: %w", i, err)
		}
	}

	return tx.Commit()
}

const runColumns = "id, formula, expr, target, nominal_re, nominal_im, spread, consistent, created_at"

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*check.Report, error) {
	var (
		r         check.Report
		nre, nim  float64
		createdAt int64
	)
	if err := row.Scan(&r.ID, &r.Formula, &r.Expr, &r.Target, &nre, &nim, &r.Spread, &r.Consistent, &createdAt); err != nil {
		return nil, err
	}
	r.Nominal = numeric.Scalar(complex(nre, nim))
	r.CreatedAt = time.Unix(0, createdAt).UTC()
	return &r, nil
}

func (s *SQLiteStore) GetReport(ctx context.Context, id string) (*check.Report, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = ?", id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, "SELECT seed, numeric_re, numeric_im, scalar_re, scalar_im FROM trials WHERE run_id = ? ORDER BY idx", id)
	if err != nil {
		return nil, fmt.Errorf("failed to query trials: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			seed               int64
			nre, nim, sre, sim float64
		)
		if err := rows.Scan(&seed, &nre, &nim, &sre, &sim); err != nil {
			return nil, fmt.Errorf("failed to scan trial: %w", err)
		}
		r.Trials = append(r.Trials, check.Trial{
			Seed:    uint64(seed),
			Numeric: numeric.Scalar(complex(nre, nim)),
			Scalar:  numeric.Scalar(complex(sre, sim)),
		})
	}
	return r, rows.Err()
}

func (s *SQLiteStore) ListReports(ctx context.Context, limit int) ([]*check.Report, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, "SELECT "+runColumns+" FROM runs ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*check.Report
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}
