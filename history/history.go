// Package history records the per-generation statistics of evolution runs in a
// SQLite database. Only summaries are stored; phenotypes are never persisted.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sw965/rockets/ga"
	_ "modernc.org/sqlite"
)

var (
	ErrNotOpen     = errors.New("Storeエラー: データベースが開かれていません")
	ErrRunNotFound = errors.New("Storeエラー: runが存在しません")
)

// Generation is one row of a run: the fitness summary plus phenotype-specific
// outcome counts (for rockets, how many hit the target or a wall).
type Generation struct {
	ga.Stats
	HitTarget int
	HitWall   int
}

type Run struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Params    map[string]any
}

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	migrations := []string{
		`PRAGMA foreign_keys = ON`,
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			params_json TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS generations (
			run_id TEXT NOT NULL,
			generation INTEGER NOT NULL,
			size INTEGER NOT NULL,
			best REAL NOT NULL,
			worst REAL NOT NULL,
			mean REAL NOT NULL,
			stddev REAL NOT NULL,
			hit_target INTEGER NOT NULL DEFAULT 0,
			hit_wall INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (run_id, generation),
			FOREIGN KEY (run_id) REFERENCES runs(id)
		)`,
	}

	for _, m := range migrations {
		if _, err := s.db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) getDB() (*sql.DB, error) {
	if s == nil || s.db == nil {
		return nil, ErrNotOpen
	}
	return s.db, nil
}

// BeginRun registers a new run and returns its id. params is stored as JSON.
func (s *Store) BeginRun(ctx context.Context, params map[string]any) (uuid.UUID, error) {
	db, err := s.getDB()
	if err != nil {
		return uuid.Nil, err
	}

	if params == nil {
		params = map[string]any{}
	}
	payload, err := json.Marshal(params)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encode run params: %w", err)
	}

	id := uuid.New()
	_, err = db.ExecContext(ctx,
		`INSERT INTO runs (id, params_json, created_at) VALUES (?, ?, ?)`,
		id.String(), string(payload), time.Now().UTC(),
	)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (s *Store) GetRun(ctx context.Context, id uuid.UUID) (Run, error) {
	db, err := s.getDB()
	if err != nil {
		return Run{}, err
	}

	var payload string
	run := Run{ID: id}
	err = db.QueryRowContext(ctx,
		`SELECT params_json, created_at FROM runs WHERE id = ?`, id.String(),
	).Scan(&payload, &run.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		return Run{}, err
	}

	if err := json.Unmarshal([]byte(payload), &run.Params); err != nil {
		return Run{}, fmt.Errorf("decode run params %s: %w", id, err)
	}
	return run, nil
}

// RecordGeneration upserts the summary of one generation.
func (s *Store) RecordGeneration(ctx context.Context, runID uuid.UUID, g Generation) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO generations (run_id, generation, size, best, worst, mean, stddev, hit_target, hit_wall)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, generation) DO UPDATE SET
			size = excluded.size,
			best = excluded.best,
			worst = excluded.worst,
			mean = excluded.mean,
			stddev = excluded.stddev,
			hit_target = excluded.hit_target,
			hit_wall = excluded.hit_wall
	`, runID.String(), g.Generation, g.Size, g.Best, g.Worst, g.Mean, g.StdDev, g.HitTarget, g.HitWall)
	if err != nil {
		return fmt.Errorf("record generation %d of run %s: %w", g.Generation, runID, err)
	}
	return nil
}

// Generations returns every recorded generation of a run in ascending order.
func (s *Store) Generations(ctx context.Context, runID uuid.UUID) ([]Generation, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT generation, size, best, worst, mean, stddev, hit_target, hit_wall
		FROM generations
		WHERE run_id = ?
		ORDER BY generation ASC
	`, runID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var gs []Generation
	for rows.Next() {
		var g Generation
		err := rows.Scan(&g.Generation, &g.Size, &g.Best, &g.Worst, &g.Mean, &g.StdDev, &g.HitTarget, &g.HitWall)
		if err != nil {
			return nil, err
		}
		gs = append(gs, g)
	}
	return gs, rows.Err()
}
