package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"hollymart.app/intel/core/db"
	"hollymart.app/intel/internal/model"
)

type contactStore struct {
	db *db.DB
}

func newContactStore(database *db.DB) ContactStore {
	return &contactStore{db: database}
}

const contactColumns = `id, jid, display_name, short_name, is_leadership, created_at, updated_at`

func (s *contactStore) GetByJID(ctx context.Context, jid string) (*model.Contact, error) {
	row := s.db.Pool().QueryRow(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE jid = $1`, jid)
	return scanContact(row)
}

func (s *contactStore) Upsert(ctx context.Context, c *model.Contact) error {
	row := s.db.Pool().QueryRow(ctx, `
		INSERT INTO contacts (id, jid, display_name, short_name, is_leadership)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (jid) DO UPDATE
		SET display_name = EXCLUDED.display_name,
		    short_name = EXCLUDED.short_name,
		    updated_at = now()
		RETURNING `+contactColumns,
		c.ID, c.JID, c.DisplayName, c.ShortName, c.IsLeadership)
	updated, err := scanContact(row)
	if err != nil {
		return err
	}
	*c = *updated
	return nil
}

func (s *contactStore) List(ctx context.Context) ([]model.Contact, error) {
	rows, err := s.db.Pool().Query(ctx,
		`SELECT `+contactColumns+` FROM contacts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []model.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, *c)
	}
	return contacts, rows.Err()
}

func scanContact(row pgx.Row) (*model.Contact, error) {
	var c model.Contact
	err := row.Scan(&c.ID, &c.JID, &c.DisplayName, &c.ShortName, &c.IsLeadership,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}
