package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"hollymart.app/intel/core/db"
	"hollymart.app/intel/internal/model"
)

type channelStore struct {
	db *db.DB
}

func newChannelStore(database *db.DB) ChannelStore {
	return &channelStore{db: database}
}

const channelColumns = `id, external_id, name, kind, is_active, created_at, updated_at`

func (s *channelStore) GetByID(ctx context.Context, id int64) (*model.Channel, error) {
	row := s.db.Pool().QueryRow(ctx,
		`SELECT `+channelColumns+` FROM channels WHERE id = $1`, id)
	return scanChannel(row)
}

func (s *channelStore) GetByExternalID(ctx context.Context, externalID string) (*model.Channel, error) {
	row := s.db.Pool().QueryRow(ctx,
		`SELECT `+channelColumns+` FROM channels WHERE external_id = $1`, externalID)
	return scanChannel(row)
}

func (s *channelStore) Upsert(ctx context.Context, ch *model.Channel) error {
	row := s.db.Pool().QueryRow(ctx, `
		INSERT INTO channels (id, external_id, name, kind, is_active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (external_id) DO UPDATE
		SET name = EXCLUDED.name, updated_at = now()
		RETURNING `+channelColumns,
		ch.ID, ch.ExternalID, ch.Name, ch.Kind, ch.IsActive)
	updated, err := scanChannel(row)
	if err != nil {
		return err
	}
	*ch = *updated
	return nil
}

func (s *channelStore) ListActive(ctx context.Context) ([]model.Channel, error) {
	rows, err := s.db.Pool().Query(ctx,
		`SELECT `+channelColumns+` FROM channels WHERE is_active ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []model.Channel
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		channels = append(channels, *ch)
	}
	return channels, rows.Err()
}

func scanChannel(row pgx.Row) (*model.Channel, error) {
	var ch model.Channel
	err := row.Scan(&ch.ID, &ch.ExternalID, &ch.Name, &ch.Kind, &ch.IsActive,
		&ch.CreatedAt, &ch.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ch, nil
}
