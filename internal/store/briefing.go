package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"hollymart.app/intel/core/db"
	"hollymart.app/intel/internal/model"
)

type briefingStore struct {
	db *db.DB
}

func newBriefingStore(database *db.DB) BriefingStore {
	return &briefingStore{db: database}
}

const briefingColumns = `id, briefing_date, content, topic_count, task_count, created_at, updated_at`

// Upsert keeps one briefing per date; rebuilding the digest replaces the
// previous rendering.
func (s *briefingStore) Upsert(ctx context.Context, b *model.Briefing) error {
	row := s.db.Pool().QueryRow(ctx, `
		INSERT INTO briefings (id, briefing_date, content, topic_count, task_count)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (briefing_date) DO UPDATE
		SET content = EXCLUDED.content,
		    topic_count = EXCLUDED.topic_count,
		    task_count = EXCLUDED.task_count,
		    updated_at = now()
		RETURNING `+briefingColumns,
		b.ID, b.BriefingDate, b.Content, b.TopicCount, b.TaskCount)
	updated, err := scanBriefing(row)
	if err != nil {
		return err
	}
	*b = *updated
	return nil
}

func (s *briefingStore) GetByDate(ctx context.Context, date time.Time) (*model.Briefing, error) {
	row := s.db.Pool().QueryRow(ctx,
		`SELECT `+briefingColumns+` FROM briefings WHERE briefing_date = $1`, date)
	return scanBriefing(row)
}

func scanBriefing(row pgx.Row) (*model.Briefing, error) {
	var b model.Briefing
	err := row.Scan(&b.ID, &b.BriefingDate, &b.Content, &b.TopicCount, &b.TaskCount,
		&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}
