package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"hollymart.app/intel/core/db"
	"hollymart.app/intel/internal/model"
)

type directionStore struct {
	db *db.DB
}

func newDirectionStore(database *db.DB) DirectionStore {
	return &directionStore{db: database}
}

const directionColumns = `id, topic_record_id, channel_id, summary, issued_by, priority,
	is_still_valid, superseded_by_id, source_message_id, created_at, updated_at`

func (s *directionStore) Create(ctx context.Context, d *model.Direction) error {
	row := s.db.Pool().QueryRow(ctx, `
		INSERT INTO directions (id, topic_record_id, channel_id, summary, issued_by,
			priority, is_still_valid, source_message_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+directionColumns,
		d.ID, d.TopicRecordID, d.ChannelID, d.Summary, d.IssuedBy,
		d.Priority, d.IsStillValid, d.SourceMessageID)
	created, err := scanDirection(row)
	if err != nil {
		return err
	}
	*d = *created
	return nil
}

func (s *directionStore) ListValid(ctx context.Context) ([]model.Direction, error) {
	rows, err := s.db.Pool().Query(ctx, `
		SELECT `+directionColumns+` FROM directions
		WHERE is_still_valid
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDirections(rows)
}

func (s *directionStore) ListValidByChannel(ctx context.Context, channelID int64) ([]model.Direction, error) {
	rows, err := s.db.Pool().Query(ctx, `
		SELECT `+directionColumns+` FROM directions
		WHERE is_still_valid AND channel_id = $1
		ORDER BY created_at DESC`, channelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDirections(rows)
}

func (s *directionStore) MarkSuperseded(ctx context.Context, id, supersededBy int64) error {
	tag, err := s.db.Pool().Exec(ctx, `
		UPDATE directions
		SET is_still_valid = false, superseded_by_id = $2, updated_at = now()
		WHERE id = $1`, id, supersededBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func collectDirections(rows pgx.Rows) ([]model.Direction, error) {
	var directions []model.Direction
	for rows.Next() {
		d, err := scanDirection(rows)
		if err != nil {
			return nil, err
		}
		directions = append(directions, *d)
	}
	return directions, rows.Err()
}

func scanDirection(row pgx.Row) (*model.Direction, error) {
	var d model.Direction
	err := row.Scan(&d.ID, &d.TopicRecordID, &d.ChannelID, &d.Summary, &d.IssuedBy,
		&d.Priority, &d.IsStillValid, &d.SupersededByID, &d.SourceMessageID,
		&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}
