package model

import "time"

// Message is an immutable record delivered by the transport. The pipeline
// never mutates message content; AnalyzedAt is the only field it stamps, to
// mark the message as consumed by a classification run.
type Message struct {
	ID                 int64
	ChannelID          int64
	ExternalID         string // unique within a channel
	SenderJID          string
	SenderName         string
	SenderIsLeadership bool
	FromMe             bool
	Text               string
	ReplyToExternalID  *string // back-reference to the quoted message, if any
	Timestamp          time.Time
	AnalyzedAt         *time.Time
	CreatedAt          time.Time
}
