package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"hollymart.app/intel/core/db"
	"hollymart.app/intel/internal/model"
)

type taskStore struct {
	db *db.DB
}

func newTaskStore(database *db.DB) TaskStore {
	return &taskStore{db: database}
}

const taskColumns = `id, topic_record_id, channel_id, summary, assigned_to, assigned_by,
	priority, deadline, deadline_text, status, source_message_id,
	completion_message_id, completed_at, created_at, updated_at`

func (s *taskStore) Create(ctx context.Context, t *model.Task) error {
	row := s.db.Pool().QueryRow(ctx, `
		INSERT INTO tasks (id, topic_record_id, channel_id, summary, assigned_to,
			assigned_by, priority, deadline, deadline_text, status, source_message_id,
			completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+taskColumns,
		t.ID, t.TopicRecordID, t.ChannelID, t.Summary, t.AssignedTo,
		t.AssignedBy, t.Priority, t.Deadline, t.DeadlineText, t.Status, t.SourceMessageID,
		t.CompletedAt)
	created, err := scanTask(row)
	if err != nil {
		return err
	}
	*t = *created
	return nil
}

func (s *taskStore) ListOpen(ctx context.Context) ([]model.Task, error) {
	rows, err := s.db.Pool().Query(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE status NOT IN ('done', 'cancelled')
		ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// MarkDone closes the task with the message that completed it. The status
// guard keeps the transition legal even under a concurrent detector pass.
func (s *taskStore) MarkDone(ctx context.Context, id, completionMessageID int64, completedAt time.Time) error {
	tag, err := s.db.Pool().Exec(ctx, `
		UPDATE tasks
		SET status = 'done', completion_message_id = $2, completed_at = $3, updated_at = now()
		WHERE id = $1 AND status NOT IN ('done', 'cancelled')`,
		id, completionMessageID, completedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTask(row pgx.Row) (*model.Task, error) {
	var t model.Task
	err := row.Scan(&t.ID, &t.TopicRecordID, &t.ChannelID, &t.Summary, &t.AssignedTo,
		&t.AssignedBy, &t.Priority, &t.Deadline, &t.DeadlineText, &t.Status,
		&t.SourceMessageID, &t.CompletionMessageID, &t.CompletedAt,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}
