// Package worker consumes batch job triggers from the redis stream and runs
// the matching service job. Every execution is recorded as a job run so
// operators can inspect recent summaries over the HTTP API.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"hollymart.app/intel/common/id"
	"hollymart.app/intel/common/logger"
	"hollymart.app/intel/internal/model"
	"hollymart.app/intel/internal/queue"
	"hollymart.app/intel/internal/service"
	"hollymart.app/intel/internal/store"
)

const dateLayout = "2006-01-02"

type Worker struct {
	consumer *queue.RedisConsumer
	services *service.Services
	runs     store.RunStore
	now      func() time.Time

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func New(consumer *queue.RedisConsumer, services *service.Services, runs store.RunStore) *Worker {
	return &Worker{
		consumer:  consumer,
		services:  services,
		runs:      runs,
		now:       time.Now,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

func (w *Worker) Run(ctx context.Context) error {
	defer close(w.stoppedCh)

	slog.InfoContext(ctx, "worker started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			slog.InfoContext(ctx, "worker stopping")
			return nil
		default:
			if err := w.processOneBatch(ctx); err != nil {
				slog.ErrorContext(ctx, "batch processing error", "error", err)
				// Brief backoff on error
				time.Sleep(time.Second)
			}
		}
	}
}

func (w *Worker) Stop() {
	close(w.stopCh)
	<-w.stoppedCh
}

func (w *Worker) processOneBatch(ctx context.Context) error {
	messages, err := w.consumer.Read(ctx)
	if err != nil {
		return fmt.Errorf("reading from stream: %w", err)
	}

	for _, msg := range messages {
		if err := w.processMessageSafe(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "job execution failed",
				"error", err,
				"message_id", msg.ID,
				"job", string(msg.Job))
			w.handleFailedMessage(ctx, msg, err)
		}
	}

	return nil
}

func (w *Worker) processMessageSafe(ctx context.Context, msg queue.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic recovered in job execution",
				"panic", r,
				"message_id", msg.ID,
				"job", string(msg.Job))
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return w.ProcessMessage(ctx, msg)
}

// ProcessMessage executes one job trigger end to end: record the run, execute
// the job, persist the outcome, ack. A job that returns an error is still
// recorded (status failed) before the message is retried or parked.
func (w *Worker) ProcessMessage(ctx context.Context, msg queue.Message) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "intel.worker",
		Job:       logger.Ptr(string(msg.Job)),
	})

	slog.InfoContext(ctx, "executing job",
		"message_id", msg.ID,
		"job", string(msg.Job),
		"date", msg.Date,
		"attempt", msg.Attempt)

	run := &model.JobRun{
		ID:        id.New(),
		Job:       msg.Job,
		Status:    model.RunStatusRunning,
		StartedAt: w.now().UTC(),
	}
	if err := w.runs.Create(ctx, run); err != nil {
		return fmt.Errorf("recording job run: %w", err)
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{RunID: logger.Ptr(run.ID)})

	summary, execErr := w.execute(ctx, msg)

	status := model.RunStatusCompleted
	if execErr != nil {
		status = model.RunStatusFailed
		summary.AddError(execErr.Error())
	}
	if err := w.runs.Finish(ctx, run.ID, status, summary, w.now().UTC()); err != nil {
		slog.ErrorContext(ctx, "failed to persist run outcome", "error", err)
	}

	if execErr != nil {
		return execErr
	}

	slog.InfoContext(ctx, "job completed",
		"processed", summary.Processed,
		"created", summary.Created,
		"skipped", summary.Skipped,
		"error_count", len(summary.Errors))

	if err := w.consumer.Ack(ctx, msg); err != nil {
		// Redelivery re-runs the job; the idempotency gates make that safe.
		slog.WarnContext(ctx, "failed to ACK message",
			"error", err,
			"message_id", msg.ID)
	}

	return nil
}

func (w *Worker) execute(ctx context.Context, msg queue.Message) (model.RunSummary, error) {
	switch msg.Job {
	case model.JobClassifyMessages:
		return w.services.MessageClassifier().Run(ctx)
	case model.JobAnalyzeDaily:
		// The daily pass runs after the day closes, so the default target is
		// yesterday in the business timezone.
		date, err := w.resolveDate(msg.Date, -1)
		if err != nil {
			return model.RunSummary{}, err
		}
		return w.services.Analyzer().Run(ctx, date)
	case model.JobDetectCompletions:
		return w.services.CompletionDetector().Run(ctx)
	case model.JobBuildBriefing:
		date, err := w.resolveDate(msg.Date, 0)
		if err != nil {
			return model.RunSummary{}, err
		}
		return w.services.BriefingBuilder().Run(ctx, date)
	default:
		return model.RunSummary{}, fmt.Errorf("unhandled job %q", msg.Job)
	}
}

func (w *Worker) resolveDate(raw string, defaultOffsetDays int) (time.Time, error) {
	loc := w.services.Location()
	if raw == "" {
		now := w.now().In(loc)
		return time.Date(now.Year(), now.Month(), now.Day()+defaultOffsetDays, 0, 0, 0, 0, loc), nil
	}
	date, err := time.ParseInLocation(dateLayout, raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", raw, err)
	}
	return date, nil
}

func (w *Worker) handleFailedMessage(ctx context.Context, msg queue.Message, err error) {
	if msg.Attempt >= w.consumer.MaxAttempts() {
		slog.ErrorContext(ctx, "max attempts reached, sending to DLQ",
			"message_id", msg.ID,
			"job", string(msg.Job),
			"attempts", msg.Attempt)
		if dlqErr := w.consumer.SendDLQ(ctx, msg, err.Error()); dlqErr != nil {
			slog.ErrorContext(ctx, "failed to send to DLQ", "error", dlqErr)
		}
		return
	}

	slog.WarnContext(ctx, "requeuing failed job",
		"message_id", msg.ID,
		"job", string(msg.Job),
		"attempt", msg.Attempt)
	if requeueErr := w.consumer.Requeue(ctx, msg, err.Error()); requeueErr != nil {
		slog.ErrorContext(ctx, "failed to requeue job", "error", requeueErr)
	}
}
