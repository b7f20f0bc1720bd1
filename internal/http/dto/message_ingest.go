package dto

import "time"

// IngestMessageRequest is one chat message delivered by the transport
// listener. Channel and sender records are upserted as a side effect, so the
// listener never has to pre-register either.
type IngestMessageRequest struct {
	ChannelExternalID string    `json:"channel_external_id" binding:"required"`
	ChannelName       string    `json:"channel_name,omitempty"`
	ChannelKind       string    `json:"channel_kind,omitempty"` // defaults to "group"
	ExternalID        string    `json:"external_id" binding:"required"`
	SenderJID         string    `json:"sender_jid,omitempty"`
	SenderName        string    `json:"sender_name,omitempty"`
	FromMe            bool      `json:"from_me,omitempty"`
	Text              string    `json:"text" binding:"required"`
	ReplyToExternalID *string   `json:"reply_to_external_id,omitempty"`
	Timestamp         time.Time `json:"timestamp" binding:"required"`
}

type IngestMessageResponse struct {
	MessageID  int64 `json:"message_id"`
	ChannelID  int64 `json:"channel_id"`
	Duplicated bool  `json:"duplicated"`
}

// ImportChatRequest carries a raw WhatsApp chat export to parse into messages.
type ImportChatRequest struct {
	ChannelExternalID string `json:"channel_external_id" binding:"required"`
	ChannelName       string `json:"channel_name,omitempty"`
	ChannelKind       string `json:"channel_kind,omitempty"`
	Content           string `json:"content" binding:"required"`
}

type ImportChatResponse struct {
	ChannelID int64 `json:"channel_id"`
	Parsed    int   `json:"parsed"`
	Created   int   `json:"created"`
	Skipped   int   `json:"skipped"`
}
