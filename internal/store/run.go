package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"hollymart.app/intel/core/db"
	"hollymart.app/intel/internal/model"
)

type runStore struct {
	db *db.DB
}

func newRunStore(database *db.DB) RunStore {
	return &runStore{db: database}
}

const runColumns = `id, job, status, summary, started_at, finished_at, created_at`

func (s *runStore) Create(ctx context.Context, r *model.JobRun) error {
	summary, err := json.Marshal(r.Summary)
	if err != nil {
		return err
	}
	row := s.db.Pool().QueryRow(ctx, `
		INSERT INTO job_runs (id, job, status, summary, started_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+runColumns,
		r.ID, r.Job, r.Status, summary, r.StartedAt)
	created, err := scanRun(row)
	if err != nil {
		return err
	}
	*r = *created
	return nil
}

func (s *runStore) Finish(ctx context.Context, id int64, status model.RunStatus, summary model.RunSummary, finishedAt time.Time) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	tag, err := s.db.Pool().Exec(ctx, `
		UPDATE job_runs SET status = $2, summary = $3, finished_at = $4 WHERE id = $1`,
		id, status, raw, finishedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *runStore) GetByID(ctx context.Context, id int64) (*model.JobRun, error) {
	row := s.db.Pool().QueryRow(ctx,
		`SELECT `+runColumns+` FROM job_runs WHERE id = $1`, id)
	return scanRun(row)
}

func (s *runStore) ListRecent(ctx context.Context, limit int) ([]model.JobRun, error) {
	rows, err := s.db.Pool().Query(ctx, `
		SELECT `+runColumns+` FROM job_runs
		ORDER BY started_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []model.JobRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

func scanRun(row pgx.Row) (*model.JobRun, error) {
	var (
		r   model.JobRun
		raw []byte
	)
	err := row.Scan(&r.ID, &r.Job, &r.Status, &raw, &r.StartedAt, &r.FinishedAt, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &r.Summary); err != nil {
			return nil, err
		}
	}
	return &r, nil
}
