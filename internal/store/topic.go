package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"hollymart.app/intel/core/db"
	"hollymart.app/intel/internal/model"
)

type topicStore struct {
	db *db.DB
}

func newTopicStore(database *db.DB) TopicStore {
	return &topicStore{db: database}
}

const topicColumns = `id, channel_id, analysis_date, unit_key, category, confidence,
	summary, priority, outcome, assigned_to, assigned_by, deadline_text, deadline,
	message_ids, is_ongoing, continued_from_id, created_at, updated_at`

// Create inserts a topic record. The unique index on
// (channel_id, analysis_date, unit_key) backs the idempotency invariant; a
// conflict means a concurrent run already materialized this identity, which
// callers treat as a skip via ErrAlreadyExists.
func (s *topicStore) Create(ctx context.Context, t *model.TopicRecord) error {
	row := s.db.Pool().QueryRow(ctx, `
		INSERT INTO topic_records (id, channel_id, analysis_date, unit_key, category,
			confidence, summary, priority, outcome, assigned_to, assigned_by,
			deadline_text, deadline, message_ids, is_ongoing)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (channel_id, analysis_date, unit_key) DO NOTHING
		RETURNING `+topicColumns,
		t.ID, t.ChannelID, t.AnalysisDate, t.UnitKey, t.Category,
		t.Confidence, t.Summary, t.Priority, t.Outcome, t.AssignedTo, t.AssignedBy,
		t.DeadlineText, t.Deadline, t.MessageIDs, t.IsOngoing)
	created, err := scanTopic(row)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrAlreadyExists
		}
		return err
	}
	*t = *created
	return nil
}

func (s *topicStore) ExistsForDate(ctx context.Context, channelID int64, date time.Time) (bool, error) {
	var exists bool
	err := s.db.Pool().QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM topic_records
			WHERE channel_id = $1 AND analysis_date = $2
		)`, channelID, date).Scan(&exists)
	return exists, err
}

func (s *topicStore) ExistsForUnit(ctx context.Context, channelID int64, date time.Time, unitKey string) (bool, error) {
	var exists bool
	err := s.db.Pool().QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM topic_records
			WHERE channel_id = $1 AND analysis_date = $2 AND unit_key = $3
		)`, channelID, date, unitKey).Scan(&exists)
	return exists, err
}

func (s *topicStore) ListByDate(ctx context.Context, date time.Time) ([]model.TopicRecord, error) {
	rows, err := s.db.Pool().Query(ctx, `
		SELECT `+topicColumns+` FROM topic_records
		WHERE analysis_date = $1
		ORDER BY channel_id, id`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTopics(rows)
}

func (s *topicStore) ListOngoingBefore(ctx context.Context, date time.Time, limit int) ([]model.TopicRecord, error) {
	rows, err := s.db.Pool().Query(ctx, `
		SELECT `+topicColumns+` FROM topic_records
		WHERE is_ongoing AND analysis_date < $1
		ORDER BY analysis_date DESC, id DESC
		LIMIT $2`, date, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTopics(rows)
}

func (s *topicStore) MarkResolved(ctx context.Context, id int64) error {
	tag, err := s.db.Pool().Exec(ctx,
		`UPDATE topic_records SET is_ongoing = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *topicStore) SetContinuedFrom(ctx context.Context, id, fromID int64) error {
	tag, err := s.db.Pool().Exec(ctx,
		`UPDATE topic_records SET continued_from_id = $2, updated_at = now() WHERE id = $1`, id, fromID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func collectTopics(rows pgx.Rows) ([]model.TopicRecord, error) {
	var topics []model.TopicRecord
	for rows.Next() {
		t, err := scanTopic(rows)
		if err != nil {
			return nil, err
		}
		topics = append(topics, *t)
	}
	return topics, rows.Err()
}

func scanTopic(row pgx.Row) (*model.TopicRecord, error) {
	var t model.TopicRecord
	err := row.Scan(&t.ID, &t.ChannelID, &t.AnalysisDate, &t.UnitKey, &t.Category,
		&t.Confidence, &t.Summary, &t.Priority, &t.Outcome, &t.AssignedTo, &t.AssignedBy,
		&t.DeadlineText, &t.Deadline, &t.MessageIDs, &t.IsOngoing, &t.ContinuedFromID,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}
