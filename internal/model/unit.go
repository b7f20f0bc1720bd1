package model

import "time"

// ConversationUnit is an ordered, non-empty run of messages believed to form
// one coherent exchange. Units are built in memory per run and consumed, never
// mutated, by downstream stages. UnitKey is deterministic for a given input
// message set so that re-runs hit the same idempotency identity.
type ConversationUnit struct {
	ChannelID int64
	UnitKey   string
	Messages  []*Message // ascending by timestamp
}

func (u *ConversationUnit) StartTime() time.Time {
	return u.Messages[0].Timestamp
}

func (u *ConversationUnit) EndTime() time.Time {
	return u.Messages[len(u.Messages)-1].Timestamp
}

// Root returns the unit's first message, used as the source reference for
// derived task and direction records.
func (u *ConversationUnit) Root() *Message {
	return u.Messages[0]
}

// TopicCandidate is a segmenter proposal: a labeled subset of a window
// identified by 1-based indices into that window. Ephemeral, never persisted.
type TopicCandidate struct {
	Label           string
	MemberIndices   []int
	KeyParticipants []string
	TimeSpan        string
}
