package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"hollymart.app/intel/core/db"
	"hollymart.app/intel/internal/model"
)

type messageStore struct {
	db *db.DB
}

func newMessageStore(database *db.DB) MessageStore {
	return &messageStore{db: database}
}

const messageColumns = `id, channel_id, external_id, sender_jid, sender_name,
	sender_is_leadership, from_me, text, reply_to_external_id, timestamp,
	analyzed_at, created_at`

// Create inserts a message. The transport redelivers events, so a duplicate
// (channel_id, external_id) returns ErrAlreadyExists and leaves the stored row
// untouched.
func (s *messageStore) Create(ctx context.Context, m *model.Message) error {
	row := s.db.Pool().QueryRow(ctx, `
		INSERT INTO messages (id, channel_id, external_id, sender_jid, sender_name,
			sender_is_leadership, from_me, text, reply_to_external_id, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (channel_id, external_id) DO NOTHING
		RETURNING `+messageColumns,
		m.ID, m.ChannelID, m.ExternalID, m.SenderJID, m.SenderName,
		m.SenderIsLeadership, m.FromMe, m.Text, m.ReplyToExternalID, m.Timestamp)
	created, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrAlreadyExists
		}
		return err
	}
	*m = *created
	return nil
}

func (s *messageStore) ListUnanalyzed(ctx context.Context, before time.Time, limit int) ([]model.Message, error) {
	rows, err := s.db.Pool().Query(ctx, `
		SELECT `+messageColumns+` FROM messages
		WHERE analyzed_at IS NULL AND timestamp < $1
		ORDER BY timestamp
		LIMIT $2`, before, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMessages(rows)
}

func (s *messageStore) ListByChannelBetween(ctx context.Context, channelID int64, from, to time.Time) ([]model.Message, error) {
	rows, err := s.db.Pool().Query(ctx, `
		SELECT `+messageColumns+` FROM messages
		WHERE channel_id = $1 AND timestamp >= $2 AND timestamp < $3
		ORDER BY timestamp`, channelID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMessages(rows)
}

func (s *messageStore) ListByChannelSince(ctx context.Context, channelID int64, since time.Time, limit int) ([]model.Message, error) {
	rows, err := s.db.Pool().Query(ctx, `
		SELECT `+messageColumns+` FROM messages
		WHERE channel_id = $1 AND timestamp > $2
		ORDER BY timestamp
		LIMIT $3`, channelID, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMessages(rows)
}

func (s *messageStore) MarkAnalyzed(ctx context.Context, ids []int64, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.db.Pool().Exec(ctx,
		`UPDATE messages SET analyzed_at = $1 WHERE id = ANY($2)`, at, ids)
	return err
}

func collectMessages(rows pgx.Rows) ([]model.Message, error) {
	var messages []model.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *m)
	}
	return messages, rows.Err()
}

func scanMessage(row pgx.Row) (*model.Message, error) {
	var m model.Message
	err := row.Scan(&m.ID, &m.ChannelID, &m.ExternalID, &m.SenderJID, &m.SenderName,
		&m.SenderIsLeadership, &m.FromMe, &m.Text, &m.ReplyToExternalID, &m.Timestamp,
		&m.AnalyzedAt, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}
