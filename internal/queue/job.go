// Package queue carries batch job triggers over a redis stream. The scheduler
// (or an operator via the HTTP API) enqueues a job; the worker consumes it,
// executes the run, and persists the run summary.
package queue

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"hollymart.app/intel/internal/model"
)

// Job is one batch trigger. Date applies to date-scoped jobs (analyze_daily,
// build_briefing) as YYYY-MM-DD in the business timezone; empty means the
// job's default date.
type Job struct {
	Job     model.JobName
	Date    string
	Attempt int
	TraceID string
}

// MessageProcessor handles one consumed job trigger.
type MessageProcessor func(ctx context.Context, msg Message) error

// Message is a job as read back from the stream.
type Message struct {
	ID      string
	Job     model.JobName
	Date    string
	Attempt int
	TraceID string
	Raw     redis.XMessage
}

// ParseMessage decodes a stream entry. Unknown or missing job names are a
// parse error; the consumer acks and drops those rather than poisoning the
// stream.
func ParseMessage(msg redis.XMessage) (Message, error) {
	jobStr, err := parseOptionalString(msg.Values, "job")
	if err != nil {
		return Message{}, err
	}
	job := model.JobName(jobStr)
	if !job.IsValid() {
		return Message{}, fmt.Errorf("unknown job %q", jobStr)
	}

	date, err := parseOptionalString(msg.Values, "date")
	if err != nil {
		return Message{}, err
	}
	traceID, err := parseOptionalString(msg.Values, "trace_id")
	if err != nil {
		return Message{}, err
	}
	attempt, err := parseOptionalInt(msg.Values, "attempt")
	if err != nil {
		return Message{}, err
	}
	if attempt == 0 {
		attempt = 1
	}

	return Message{
		ID:      msg.ID,
		Job:     job,
		Date:    date,
		Attempt: attempt,
		TraceID: traceID,
		Raw:     msg,
	}, nil
}

func messageValues(msg Message, attempt int) map[string]any {
	values := map[string]any{
		"job":     string(msg.Job),
		"attempt": attempt,
	}
	if msg.Date != "" {
		values["date"] = msg.Date
	}
	if msg.TraceID != "" {
		values["trace_id"] = msg.TraceID
	}
	return values
}

func parseOptionalInt(values map[string]any, key string) (int, error) {
	raw, ok := values[key]
	if !ok {
		return 0, nil
	}
	num, err := strconv.Atoi(fmt.Sprint(raw))
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return num, nil
}

func parseOptionalString(values map[string]any, key string) (string, error) {
	raw, ok := values[key]
	if !ok {
		return "", nil
	}
	return fmt.Sprint(raw), nil
}
