package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"hollymart.app/intel/common/logger"
	"hollymart.app/intel/core/config"
	"hollymart.app/intel/internal/analysis"
	"hollymart.app/intel/internal/model"
	"hollymart.app/intel/internal/store"
)

// classifyBatchLimit bounds how many backlog messages one run picks up.
const classifyBatchLimit = 500

// MessageClassifier runs the incremental classification job: it picks up
// messages that no conversation has claimed yet, reconstructs threads, and
// classifies each thread. Only messages older than the conversation timeout
// are eligible so a thread still being typed into is not cut in half.
type MessageClassifier struct {
	cfg        config.AnalysisConfig
	stores     *store.Stores
	classifier *analysis.Classifier
	mat        *Materializer
	loc        *time.Location
	now        func() time.Time
}

func NewMessageClassifier(
	cfg config.AnalysisConfig,
	stores *store.Stores,
	classifier *analysis.Classifier,
	mat *Materializer,
	loc *time.Location,
) *MessageClassifier {
	return &MessageClassifier{
		cfg:        cfg,
		stores:     stores,
		classifier: classifier,
		mat:        mat,
		loc:        loc,
		now:        time.Now,
	}
}

// WithClock overrides the classifier's notion of now, for tests.
func (c *MessageClassifier) WithClock(now func() time.Time) *MessageClassifier {
	c.now = now
	return c
}

func (c *MessageClassifier) Run(ctx context.Context) (model.RunSummary, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "intel.service.classify"})

	var summary model.RunSummary

	cutoff := c.now().Add(-time.Duration(c.cfg.ConversationTimeoutMinutes) * time.Minute)
	messages, err := c.stores.Messages.ListUnanalyzed(ctx, cutoff, classifyBatchLimit)
	if err != nil {
		return summary, fmt.Errorf("listing unanalyzed messages: %w", err)
	}
	if len(messages) == 0 {
		return summary, nil
	}

	byChannel := make(map[int64][]model.Message)
	for _, m := range messages {
		byChannel[m.ChannelID] = append(byChannel[m.ChannelID], m)
	}

	for channelID, channelMessages := range byChannel {
		ch, err := c.stores.Channels.GetByID(ctx, channelID)
		if err != nil {
			summary.AddError(fmt.Sprintf("channel %d: %v", channelID, err))
			continue
		}

		chCtx := logger.WithLogFields(ctx, logger.LogFields{ChannelID: logger.Ptr(ch.ID)})
		for _, unit := range analysis.BuildUnits(ch, channelMessages) {
			c.classifyUnit(chCtx, ch, unit, &summary)
		}
	}

	slog.InfoContext(ctx, "message classification finished",
		"messages", len(messages),
		"processed", summary.Processed,
		"created", summary.Created,
		"skipped", summary.Skipped,
		"errors", len(summary.Errors))

	return summary, nil
}

// classifyUnit handles one reconstructed thread. Messages are marked analyzed
// on success and on an idempotent skip; a failed unit keeps its messages
// unclaimed so the next run picks them up again.
func (c *MessageClassifier) classifyUnit(ctx context.Context, ch *model.Channel, unit *model.ConversationUnit, summary *model.RunSummary) {
	summary.Processed++

	slog.DebugContext(ctx, "classifying unit",
		"unit", unit.UnitKey,
		"root", unit.Root().ExternalID,
		"span_start", unit.StartTime(),
		"span_end", unit.EndTime(),
		"messages", len(unit.Messages))

	start := unit.StartTime().In(c.loc)
	date := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, c.loc)

	exists, err := c.stores.Topics.ExistsForUnit(ctx, ch.ID, date, unit.UnitKey)
	if err != nil {
		summary.AddError(fmt.Sprintf("channel %s unit %s: checking state: %v", ch.Name, unit.UnitKey, err))
		return
	}
	if exists {
		summary.Skipped++
		c.markAnalyzed(ctx, unit, summary)
		return
	}

	result, err := c.classifier.Classify(ctx, ch.Kind, derefMessages(unit.Messages))
	if err != nil {
		summary.AddError(fmt.Sprintf("channel %s unit %s: %v", ch.Name, unit.UnitKey, err))
		return
	}

	_, err = c.mat.Materialize(ctx, ch, date, unit.UnitKey, unit.Messages, result)
	switch {
	case err == nil:
		summary.Created++
	case errors.Is(err, store.ErrAlreadyExists):
		summary.Skipped++
	default:
		summary.AddError(fmt.Sprintf("channel %s unit %s: %v", ch.Name, unit.UnitKey, err))
		return
	}

	c.markAnalyzed(ctx, unit, summary)
}

func (c *MessageClassifier) markAnalyzed(ctx context.Context, unit *model.ConversationUnit, summary *model.RunSummary) {
	ids := make([]int64, len(unit.Messages))
	for i, m := range unit.Messages {
		ids[i] = m.ID
	}
	if err := c.stores.Messages.MarkAnalyzed(ctx, ids, c.now()); err != nil {
		summary.AddError(fmt.Sprintf("marking %d messages analyzed: %v", len(ids), err))
	}
}
