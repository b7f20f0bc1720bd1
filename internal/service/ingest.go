package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"hollymart.app/intel/common/logger"
	"hollymart.app/intel/internal/importer"
	"hollymart.app/intel/internal/model"
	"hollymart.app/intel/internal/store"
)

// Ingestor persists incoming messages from the transport listener and from
// chat-export imports. Channels are upserted on first sight so the listener
// never pre-registers them; sender metadata is enriched from known contacts.
type Ingestor struct {
	stores *store.Stores
	idgen  func() int64
	loc    *time.Location
}

func NewIngestor(stores *store.Stores, idgen func() int64, loc *time.Location) *Ingestor {
	return &Ingestor{stores: stores, idgen: idgen, loc: loc}
}

type IngestParams struct {
	ChannelExternalID string
	ChannelName       string
	ChannelKind       model.ChannelKind
	ExternalID        string
	SenderJID         string
	SenderName        string
	FromMe            bool
	Text              string
	ReplyToExternalID *string
	Timestamp         time.Time
}

// IngestMessage stores one transport event. Returns the stored message and
// whether it was a redelivery of an already-stored external ID.
func (s *Ingestor) IngestMessage(ctx context.Context, p IngestParams) (*model.Message, bool, error) {
	ch, err := s.resolveChannel(ctx, p.ChannelExternalID, p.ChannelName, p.ChannelKind)
	if err != nil {
		return nil, false, err
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{ChannelID: logger.Ptr(ch.ID)})

	msg := &model.Message{
		ID:                s.idgen(),
		ChannelID:         ch.ID,
		ExternalID:        p.ExternalID,
		SenderJID:         p.SenderJID,
		SenderName:        p.SenderName,
		FromMe:            p.FromMe,
		Text:              p.Text,
		ReplyToExternalID: p.ReplyToExternalID,
		Timestamp:         p.Timestamp,
	}

	if p.SenderJID != "" {
		contact, err := s.stores.Contacts.GetByJID(ctx, p.SenderJID)
		switch {
		case err == nil:
			msg.SenderIsLeadership = contact.IsLeadership
			if msg.SenderName == "" {
				msg.SenderName = contact.DisplayName
			}
		case !errors.Is(err, store.ErrNotFound):
			return nil, false, fmt.Errorf("looking up contact: %w", err)
		}
	}

	if err := s.stores.Messages.Create(ctx, msg); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			slog.DebugContext(ctx, "message redelivered", "external_id", p.ExternalID)
			return msg, true, nil
		}
		return nil, false, fmt.Errorf("storing message: %w", err)
	}

	return msg, false, nil
}

type ImportParams struct {
	ChannelExternalID string
	ChannelName       string
	ChannelKind       model.ChannelKind
	Content           string
}

type ImportResult struct {
	ChannelID int64
	Parsed    int
	Created   int
	Skipped   int
}

// ImportChat parses a WhatsApp export and stores its messages. Media
// placeholders and previously imported lines count as skipped; re-importing
// the same export is a no-op.
func (s *Ingestor) ImportChat(ctx context.Context, p ImportParams) (ImportResult, error) {
	ch, err := s.resolveChannel(ctx, p.ChannelExternalID, p.ChannelName, p.ChannelKind)
	if err != nil {
		return ImportResult{}, err
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{ChannelID: logger.Ptr(ch.ID)})

	parsed := importer.Parse(p.Content, s.loc)
	result := ImportResult{ChannelID: ch.ID, Parsed: len(parsed)}

	contactsByName, err := s.contactsByName(ctx)
	if err != nil {
		return result, err
	}

	for _, m := range parsed {
		if importer.IsMediaPlaceholder(m.Text) {
			result.Skipped++
			continue
		}

		msg := &model.Message{
			ID:         s.idgen(),
			ChannelID:  ch.ID,
			ExternalID: importer.ExternalID(m),
			SenderName: m.SenderName,
			Text:       m.Text,
			Timestamp:  m.Timestamp,
		}
		if contact, ok := contactsByName[strings.ToLower(m.SenderName)]; ok {
			msg.SenderJID = contact.JID
			msg.SenderIsLeadership = contact.IsLeadership
		}

		if err := s.stores.Messages.Create(ctx, msg); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				result.Skipped++
				continue
			}
			return result, fmt.Errorf("storing imported message: %w", err)
		}
		result.Created++
	}

	slog.InfoContext(ctx, "chat export imported",
		"parsed", result.Parsed,
		"created", result.Created,
		"skipped", result.Skipped)

	return result, nil
}

func (s *Ingestor) resolveChannel(ctx context.Context, externalID, name string, kind model.ChannelKind) (*model.Channel, error) {
	ch, err := s.stores.Channels.GetByExternalID(ctx, externalID)
	if err == nil {
		return ch, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("looking up channel: %w", err)
	}

	if kind == "" {
		kind = model.ChannelKindGroup
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("invalid channel kind %q", kind)
	}
	if name == "" {
		name = externalID
	}

	ch = &model.Channel{
		ID:         s.idgen(),
		ExternalID: externalID,
		Name:       name,
		Kind:       kind,
		IsActive:   true,
	}
	if err := s.stores.Channels.Upsert(ctx, ch); err != nil {
		return nil, fmt.Errorf("creating channel: %w", err)
	}

	slog.InfoContext(ctx, "channel registered",
		"channel_id", ch.ID,
		"kind", string(ch.Kind),
		"name", ch.Name)
	return ch, nil
}

// Export sender names carry no JID, so imported messages are matched against
// known contacts by display or short name.
func (s *Ingestor) contactsByName(ctx context.Context) (map[string]*model.Contact, error) {
	contacts, err := s.stores.Contacts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing contacts: %w", err)
	}
	byName := make(map[string]*model.Contact, len(contacts)*2)
	for i := range contacts {
		c := &contacts[i]
		if c.DisplayName != "" {
			byName[strings.ToLower(c.DisplayName)] = c
		}
		if c.ShortName != "" {
			byName[strings.ToLower(c.ShortName)] = c
		}
	}
	return byName, nil
}
