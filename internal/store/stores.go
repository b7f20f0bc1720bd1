// Package store provides typed data access over postgres. Each entity gets an
// interface in interfaces.go and an unexported pgx-backed implementation;
// services depend on the interfaces so tests can substitute in-memory fakes.
package store

import (
	"hollymart.app/intel/core/db"
)

// Stores bundles all data access interfaces.
type Stores struct {
	Channels   ChannelStore
	Contacts   ContactStore
	Messages   MessageStore
	Topics     TopicStore
	Tasks      TaskStore
	Directions DirectionStore
	Briefings  BriefingStore
	Runs       RunStore
}

func New(database *db.DB) *Stores {
	return &Stores{
		Channels:   newChannelStore(database),
		Contacts:   newContactStore(database),
		Messages:   newMessageStore(database),
		Topics:     newTopicStore(database),
		Tasks:      newTaskStore(database),
		Directions: newDirectionStore(database),
		Briefings:  newBriefingStore(database),
		Runs:       newRunStore(database),
	}
}
