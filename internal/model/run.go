package model

import "time"

// JobName identifies one of the batch entry points.
type JobName string

const (
	JobClassifyMessages  JobName = "classify_messages"
	JobAnalyzeDaily      JobName = "analyze_daily"
	JobDetectCompletions JobName = "detect_completions"
	JobBuildBriefing     JobName = "build_briefing"
)

func (j JobName) IsValid() bool {
	switch j {
	case JobClassifyMessages, JobAnalyzeDaily, JobDetectCompletions, JobBuildBriefing:
		return true
	}
	return false
}

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunSummary is the externally observable result of one batch run. A run with
// per-unit errors still completes; Errors is surfaced alongside the counts,
// never as a failure by itself.
type RunSummary struct {
	Processed int      `json:"processed"`
	Created   int      `json:"created"`
	Skipped   int      `json:"skipped"`
	Errors    []string `json:"errors"`
}

func (s *RunSummary) AddError(msg string) {
	s.Errors = append(s.Errors, msg)
}

// Merge folds another summary into this one, used when a job aggregates
// per-channel summaries.
func (s *RunSummary) Merge(other RunSummary) {
	s.Processed += other.Processed
	s.Created += other.Created
	s.Skipped += other.Skipped
	s.Errors = append(s.Errors, other.Errors...)
}

// JobRun is the persisted record of one batch job execution.
type JobRun struct {
	ID         int64
	Job        JobName
	Status     RunStatus
	Summary    RunSummary
	StartedAt  time.Time
	FinishedAt *time.Time
	CreatedAt  time.Time
}
