package model

import "time"

// ChannelKind determines both the threading regime and the prompt variant used
// during classification.
type ChannelKind string

const (
	ChannelKindGroup      ChannelKind = "group"      // group chat with reply back-references
	ChannelKindDirect     ChannelKind = "direct"     // one-on-one conversation
	ChannelKindTranscript ChannelKind = "transcript" // meeting transcript feed
)

func (k ChannelKind) IsValid() bool {
	switch k {
	case ChannelKindGroup, ChannelKindDirect, ChannelKindTranscript:
		return true
	}
	return false
}

// SupportsReplies reports whether messages in this channel carry reply
// back-references usable for thread reconstruction.
func (k ChannelKind) SupportsReplies() bool {
	return k == ChannelKindGroup
}

// Channel is a message source: a WhatsApp group, a direct chat, or a meeting
// transcript feed. ExternalID is the transport identifier (JID for WhatsApp).
type Channel struct {
	ID         int64
	ExternalID string
	Name       string
	Kind       ChannelKind
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
