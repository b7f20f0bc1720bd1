package model

import "time"

// Contact is a known message author. ShortName is the informal name used in
// chat (e.g. "Budi" for "Budi Santoso") and participates in fuzzy assignee
// matching alongside DisplayName.
type Contact struct {
	ID           int64
	JID          string
	DisplayName  string
	ShortName    string
	IsLeadership bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
