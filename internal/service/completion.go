package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"hollymart.app/intel/common/logger"
	"hollymart.app/intel/core/config"
	"hollymart.app/intel/internal/analysis"
	"hollymart.app/intel/internal/model"
	"hollymart.app/intel/internal/store"
)

// completionScanLimit bounds how many messages are scanned per task.
const completionScanLimit = 100

// CompletionDetector auto-closes open tasks when the assignee later reports
// the work done. Matching is heuristic on purpose: loose name containment
// plus a fixed completion lexicon, no confidence score.
type CompletionDetector struct {
	cfg    config.AnalysisConfig
	stores *store.Stores
	now    func() time.Time
}

func NewCompletionDetector(cfg config.AnalysisConfig, stores *store.Stores) *CompletionDetector {
	return &CompletionDetector{cfg: cfg, stores: stores, now: time.Now}
}

// WithClock overrides the detector's notion of now, for tests.
func (d *CompletionDetector) WithClock(now func() time.Time) *CompletionDetector {
	d.now = now
	return d
}

// Run scans every open task. Tasks without an assignee or channel cannot be
// matched; they count as skipped, not as errors.
func (d *CompletionDetector) Run(ctx context.Context) (model.RunSummary, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "intel.service.completion"})

	var summary model.RunSummary

	tasks, err := d.stores.Tasks.ListOpen(ctx)
	if err != nil {
		return summary, fmt.Errorf("listing open tasks: %w", err)
	}

	floor := d.now().AddDate(0, 0, -d.cfg.CompletionWindowDays)

	for i := range tasks {
		task := &tasks[i]
		summary.Processed++

		if task.AssignedTo == nil || task.ChannelID == nil {
			summary.Skipped++
			continue
		}
		if !task.Status.CanTransition(model.TaskStatusDone) {
			summary.Skipped++
			continue
		}

		since := task.CreatedAt
		if since.Before(floor) {
			since = floor
		}

		messages, err := d.stores.Messages.ListByChannelSince(ctx, *task.ChannelID, since, completionScanLimit)
		if err != nil {
			summary.AddError(fmt.Sprintf("task %d: listing messages: %v", task.ID, err))
			continue
		}

		match := findCompletion(*task.AssignedTo, messages)
		if match == nil {
			continue
		}

		if err := d.stores.Tasks.MarkDone(ctx, task.ID, match.ID, match.Timestamp); err != nil {
			summary.AddError(fmt.Sprintf("task %d: marking done: %v", task.ID, err))
			continue
		}

		summary.Created++
		slog.InfoContext(ctx, "task auto-completed",
			"task_id", task.ID,
			"completion_message_id", match.ID,
			"assignee", *task.AssignedTo)
	}

	return summary, nil
}

// findCompletion returns the first message whose author matches the assignee
// and whose text claims completion.
func findCompletion(assignee string, messages []model.Message) *model.Message {
	for i := range messages {
		m := &messages[i]
		if analysis.NameMatches(assignee, m.SenderName) && analysis.ContainsCompletionKeyword(m.Text) {
			return m
		}
	}
	return nil
}
