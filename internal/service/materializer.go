package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"hollymart.app/intel/internal/analysis"
	"hollymart.app/intel/internal/model"
	"hollymart.app/intel/internal/store"
)

// Materializer persists classification output and derives task and direction
// records. Nothing is written before the classification succeeded, so a
// failed unit leaves no partial state behind.
type Materializer struct {
	stores    *store.Stores
	deadlines *analysis.DeadlineNormalizer
	newID     func() int64
	now       func() time.Time
}

func NewMaterializer(stores *store.Stores, deadlines *analysis.DeadlineNormalizer, newID func() int64) *Materializer {
	return &Materializer{
		stores:    stores,
		deadlines: deadlines,
		newID:     newID,
		now:       time.Now,
	}
}

// WithClock overrides the materializer's notion of now, for tests.
func (m *Materializer) WithClock(now func() time.Time) *Materializer {
	m.now = now
	return m
}

// Materialize writes the topic record for one classified unit plus any
// derived records. A conflict on the (channel, date, unit) identity returns
// store.ErrAlreadyExists and writes nothing else.
func (m *Materializer) Materialize(ctx context.Context, ch *model.Channel, date time.Time, unitKey string, messages []*model.Message, result *model.ClassificationResult) (*model.TopicRecord, error) {
	record := &model.TopicRecord{
		ID:           m.newID(),
		ChannelID:    ch.ID,
		AnalysisDate: date,
		UnitKey:      unitKey,
		Category:     result.Category,
		Confidence:   result.Confidence,
		Summary:      result.Summary,
		Priority:     result.Priority,
		Outcome:      result.Outcome,
		AssignedTo:   result.AssignedTo,
		AssignedBy:   result.AssignedBy,
		DeadlineText: result.DeadlineText,
		IsOngoing:    result.Outcome.IsOpen(),
	}
	for _, msg := range messages {
		record.MessageIDs = append(record.MessageIDs, msg.ID)
	}
	if result.DeadlineText != nil {
		record.Deadline = m.deadlines.Normalize(*result.DeadlineText)
	}

	if err := m.stores.Topics.Create(ctx, record); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, store.ErrAlreadyExists
		}
		return nil, fmt.Errorf("creating topic record: %w", err)
	}

	var sourceMessageID *int64
	if len(messages) > 0 {
		sourceMessageID = &messages[0].ID
	}

	switch result.Category {
	case model.CategoryTask:
		if err := m.createTask(ctx, ch, record, sourceMessageID); err != nil {
			return record, err
		}
	case model.CategoryDirection:
		if err := m.createDirection(ctx, ch, record, sourceMessageID); err != nil {
			return record, err
		}
	}

	return record, nil
}

func (m *Materializer) createTask(ctx context.Context, ch *model.Channel, record *model.TopicRecord, sourceMessageID *int64) error {
	status := model.TaskStatusNew
	var completedAt *time.Time
	if record.Outcome.IndicatesCompletion() {
		status = model.TaskStatusDone
		now := m.now()
		completedAt = &now
	}

	task := &model.Task{
		ID:              m.newID(),
		TopicRecordID:   &record.ID,
		ChannelID:       &ch.ID,
		Summary:         record.Summary,
		AssignedTo:      record.AssignedTo,
		AssignedBy:      record.AssignedBy,
		Priority:        record.Priority,
		Deadline:        record.Deadline,
		DeadlineText:    record.DeadlineText,
		Status:          status,
		SourceMessageID: sourceMessageID,
		CompletedAt:     completedAt,
	}
	if err := m.stores.Tasks.Create(ctx, task); err != nil {
		return fmt.Errorf("creating task: %w", err)
	}
	return nil
}

func (m *Materializer) createDirection(ctx context.Context, ch *model.Channel, record *model.TopicRecord, sourceMessageID *int64) error {
	direction := &model.Direction{
		ID:              m.newID(),
		TopicRecordID:   &record.ID,
		ChannelID:       &ch.ID,
		Summary:         record.Summary,
		IssuedBy:        record.AssignedBy,
		Priority:        record.Priority,
		IsStillValid:    true,
		SourceMessageID: sourceMessageID,
	}
	if err := m.stores.Directions.Create(ctx, direction); err != nil {
		return fmt.Errorf("creating direction: %w", err)
	}

	// A newer direction supersedes older standing ones from the same issuer
	// in the same channel. A listing failure only costs the supersede pass.
	prior, err := m.stores.Directions.ListValidByChannel(ctx, ch.ID)
	if err != nil {
		slog.WarnContext(ctx, "listing prior directions failed", "error", err)
		return nil
	}
	for _, p := range prior {
		if p.ID == direction.ID || !sameIssuer(p.IssuedBy, direction.IssuedBy) {
			continue
		}
		if err := m.stores.Directions.MarkSuperseded(ctx, p.ID, direction.ID); err != nil {
			slog.WarnContext(ctx, "superseding direction failed", "direction_id", p.ID, "error", err)
		}
	}
	return nil
}

func sameIssuer(a, b *string) bool {
	if a == nil || b == nil {
		return false
	}
	return analysis.NameMatches(*a, *b)
}
