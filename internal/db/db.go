// Package db provides PostgreSQL storage for run history and stage artifacts.
//
// Storage is optional: when no database URL is configured the pipeline
// runs entirely on the filesystem, and save failures at runtime degrade
// to warnings rather than aborting the run.
package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps a PostgreSQL connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close closes the connection pool
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// CreateRun records a new pipeline run. The run ID is supplied by the
// caller so that database rows, filesystem artifacts, and log lines all
// share the same identifier.
func (s *Store) CreateRun(ctx context.Context, runID uuid.UUID, domain string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO research_runs (id, domain, state)
		 VALUES ($1, $2, 'created')`,
		runID, domain,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// CompleteRun records a run's terminal state. failedStage and reason are
// empty for successful runs.
func (s *Store) CompleteRun(ctx context.Context, runID uuid.UUID, state, failedStage, reason string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE research_runs
		 SET state = $1, failed_stage = NULLIF($2, ''), reason = NULLIF($3, ''), completed_at = NOW()
		 WHERE id = $4`,
		state, failedStage, reason, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// SaveStageArtifact stores a stage output as a JSON artifact, replacing
// any earlier artifact for the same stage of the same run.
func (s *Store) SaveStageArtifact(ctx context.Context, runID uuid.UUID, stage string, output any) error {
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO stage_artifacts (run_id, stage, content)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (run_id, stage) DO UPDATE SET content = $3, created_at = NOW()`,
		runID, stage, jsonBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to save artifact %s: %w", stage, err)
	}
	return nil
}

// GetStageArtifact retrieves a stage's JSON artifact, or nil if the
// stage never recorded one for this run.
func (s *Store) GetStageArtifact(ctx context.Context, runID uuid.UUID, stage string) ([]byte, error) {
	var content []byte
	err := s.pool.QueryRow(ctx,
		`SELECT content FROM stage_artifacts WHERE run_id = $1 AND stage = $2`,
		runID, stage,
	).Scan(&content)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get artifact %s: %w", stage, err)
	}
	return content, nil
}

// GetRun retrieves a run record by ID, or nil if no such run exists.
func (s *Store) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	var run Run
	err := s.pool.QueryRow(ctx,
		`SELECT id, domain, state, failed_stage, reason, created_at, completed_at
		 FROM research_runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.Domain, &run.State, &run.FailedStage, &run.Reason, &run.CreatedAt, &run.CompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// RunFilters holds optional filters for listing runs
type RunFilters struct {
	Domain string
	State  string
	Limit  int
}

// ListRuns retrieves recent runs with optional filters.
func (s *Store) ListRuns(ctx context.Context, filters RunFilters) ([]Run, error) {
	if filters.Limit == 0 {
		filters.Limit = 50
	}

	query := `SELECT id, domain, state, failed_stage, reason, created_at, completed_at
		FROM research_runs WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.Domain != "" {
		query += fmt.Sprintf(" AND domain ILIKE $%d", argNum)
		args = append(args, "%"+filters.Domain+"%")
		argNum++
	}
	if filters.State != "" {
		query += fmt.Sprintf(" AND state = $%d", argNum)
		args = append(args, filters.State)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argNum)
	args = append(args, filters.Limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Domain, &run.State, &run.FailedStage, &run.Reason, &run.CreatedAt, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// DeleteRun deletes a run and all its stage artifacts (via cascade)
func (s *Store) DeleteRun(ctx context.Context, runID uuid.UUID) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM research_runs WHERE id = $1`, runID)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("run not found: %s", runID)
	}
	return nil
}
