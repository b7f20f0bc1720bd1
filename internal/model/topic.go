package model

import "time"

// Category is the business meaning assigned to a classified unit.
type Category string

const (
	CategoryTask         Category = "task"
	CategoryDirection    Category = "direction"
	CategoryReport       Category = "report"
	CategoryQuestion     Category = "question"
	CategoryCoordination Category = "coordination"
	CategoryNoise        Category = "noise"
)

// Outcome is the resolution state of a classified unit at analysis time. It is
// distinct from a Task's own status lifecycle.
type Outcome string

const (
	OutcomeCompleted      Outcome = "completed"
	OutcomePending        Outcome = "pending"
	OutcomeAnswered       Outcome = "answered"
	OutcomeOngoing        Outcome = "ongoing"
	OutcomeNoActionNeeded Outcome = "no_action_needed"
)

// IsOpen reports whether the outcome leaves the topic unresolved and eligible
// for continuation-linking on a later date.
func (o Outcome) IsOpen() bool {
	return o == OutcomeOngoing || o == OutcomePending
}

// Resolves reports whether the outcome closes a previously open topic.
func (o Outcome) Resolves() bool {
	return o == OutcomeCompleted || o == OutcomeAnswered
}

// IndicatesCompletion reports whether a freshly classified task should be
// created already done, bypassing the open lifecycle.
func (o Outcome) IndicatesCompletion() bool {
	return o == OutcomeCompleted
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ClassificationResult is the inference output for one unit, persisted
// verbatim on the TopicRecord plus the resolved deadline.
type ClassificationResult struct {
	Category     Category `json:"category"`
	Confidence   float64  `json:"confidence"`
	Summary      string   `json:"summary"`
	Priority     Priority `json:"priority"`
	Outcome      Outcome  `json:"outcome"`
	AssignedTo   *string  `json:"assigned_to,omitempty"`
	AssignedBy   *string  `json:"assigned_by,omitempty"`
	DeadlineText *string  `json:"deadline_text,omitempty"`
}

// TopicRecord is the persisted result of classifying one conversation unit on
// one analysis date. Identity is (ChannelID, AnalysisDate, UnitKey); the
// pipeline never creates a second record for the same identity.
type TopicRecord struct {
	ID           int64
	ChannelID    int64
	AnalysisDate time.Time // date only, business timezone
	UnitKey      string

	Category     Category
	Confidence   float64
	Summary      string
	Priority     Priority
	Outcome      Outcome
	AssignedTo   *string
	AssignedBy   *string
	DeadlineText *string
	Deadline     *time.Time

	MessageIDs      []int64
	IsOngoing       bool
	ContinuedFromID *int64

	CreatedAt time.Time
	UpdatedAt time.Time
}
