package model

import "time"

// Briefing is the daily digest document. One row per business date, upserted
// so that rebuilding a digest overwrites the previous rendering.
type Briefing struct {
	ID           int64
	BriefingDate time.Time // date only, business timezone
	Content      string    // rendered digest text
	TopicCount   int
	TaskCount    int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
