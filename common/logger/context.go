package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// Fields flow through context enrichment, enabling zero-touch logging where business
// context (channel_id, run_id, etc.) is automatically included in all log statements.
type LogFields struct {
	ChannelID    *int64  // Channel being analyzed
	RunID        *int64  // Job run ID
	Job          *string // Job name (e.g., "analyze_daily")
	AnalysisDate *string // Business date under analysis (YYYY-MM-DD)
	MessageID    *string // Redis stream message ID
	Component    string  // Component name (e.g., "intel.queue.consumer")
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
// Context timeouts and cancellation are preserved.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.ChannelID != nil {
		result.ChannelID = next.ChannelID
	}
	if next.RunID != nil {
		result.RunID = next.RunID
	}
	if next.Job != nil {
		result.Job = next.Job
	}
	if next.AnalysisDate != nil {
		result.AnalysisDate = next.AnalysisDate
	}
	if next.MessageID != nil {
		result.MessageID = next.MessageID
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{ChannelID: logger.Ptr(id)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen characters, appending "..." if truncated.
// Useful for logging potentially long strings like prompts or error messages.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
