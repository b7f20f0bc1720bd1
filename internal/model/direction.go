package model

import "time"

// Direction is derived from a TopicRecord classified as a direction (a
// leadership instruction that stays in force until superseded).
type Direction struct {
	ID              int64
	TopicRecordID   *int64
	ChannelID       *int64
	Summary         string
	IssuedBy        *string
	Priority        Priority
	IsStillValid    bool
	SupersededByID  *int64
	SourceMessageID *int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
