package store

import (
	"context"
	"errors"
	"time"

	"hollymart.app/intel/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists is returned when an insert hits an existing identity, e.g.
// a topic record for an already-materialized (channel, date, unit) triple.
var ErrAlreadyExists = errors.New("already exists")

// ChannelStore defines the contract for channel data access
type ChannelStore interface {
	GetByID(ctx context.Context, id int64) (*model.Channel, error)
	GetByExternalID(ctx context.Context, externalID string) (*model.Channel, error)
	Upsert(ctx context.Context, ch *model.Channel) error
	ListActive(ctx context.Context) ([]model.Channel, error)
}

// ContactStore defines the contract for contact data access
type ContactStore interface {
	GetByJID(ctx context.Context, jid string) (*model.Contact, error)
	Upsert(ctx context.Context, c *model.Contact) error
	List(ctx context.Context) ([]model.Contact, error)
}

// MessageStore defines the contract for message data access
type MessageStore interface {
	Create(ctx context.Context, m *model.Message) error
	ListUnanalyzed(ctx context.Context, before time.Time, limit int) ([]model.Message, error)
	ListByChannelBetween(ctx context.Context, channelID int64, from, to time.Time) ([]model.Message, error)
	ListByChannelSince(ctx context.Context, channelID int64, since time.Time, limit int) ([]model.Message, error)
	MarkAnalyzed(ctx context.Context, ids []int64, at time.Time) error
}

// TopicStore defines the contract for topic record data access
type TopicStore interface {
	Create(ctx context.Context, t *model.TopicRecord) error
	ExistsForDate(ctx context.Context, channelID int64, date time.Time) (bool, error)
	ExistsForUnit(ctx context.Context, channelID int64, date time.Time, unitKey string) (bool, error)
	ListByDate(ctx context.Context, date time.Time) ([]model.TopicRecord, error)
	ListOngoingBefore(ctx context.Context, date time.Time, limit int) ([]model.TopicRecord, error)
	MarkResolved(ctx context.Context, id int64) error
	SetContinuedFrom(ctx context.Context, id, fromID int64) error
}

// TaskStore defines the contract for task data access
type TaskStore interface {
	Create(ctx context.Context, t *model.Task) error
	ListOpen(ctx context.Context) ([]model.Task, error)
	MarkDone(ctx context.Context, id, completionMessageID int64, completedAt time.Time) error
}

// DirectionStore defines the contract for direction data access
type DirectionStore interface {
	Create(ctx context.Context, d *model.Direction) error
	ListValid(ctx context.Context) ([]model.Direction, error)
	ListValidByChannel(ctx context.Context, channelID int64) ([]model.Direction, error)
	MarkSuperseded(ctx context.Context, id, supersededBy int64) error
}

// BriefingStore defines the contract for briefing data access
type BriefingStore interface {
	Upsert(ctx context.Context, b *model.Briefing) error
	GetByDate(ctx context.Context, date time.Time) (*model.Briefing, error)
}

// RunStore defines the contract for job run data access
type RunStore interface {
	Create(ctx context.Context, r *model.JobRun) error
	Finish(ctx context.Context, id int64, status model.RunStatus, summary model.RunSummary, finishedAt time.Time) error
	GetByID(ctx context.Context, id int64) (*model.JobRun, error)
	ListRecent(ctx context.Context, limit int) ([]model.JobRun, error)
}
