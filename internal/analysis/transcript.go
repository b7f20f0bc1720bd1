package analysis

import (
	"fmt"
	"strings"
	"time"

	"hollymart.app/intel/internal/model"
)

// BuildTranscript renders a window as a numbered transcript for the inference
// prompts. Indices are 1-based and window-relative; segmentation responses
// refer back to these numbers.
func BuildTranscript(messages []model.Message, loc *time.Location) string {
	indexByExternal := make(map[string]int, len(messages))
	for i, m := range messages {
		indexByExternal[m.ExternalID] = i + 1
	}

	var b strings.Builder
	for i, m := range messages {
		sender := m.SenderName
		if sender == "" {
			sender = m.SenderJID
		}
		fmt.Fprintf(&b, "%d. [%s] %s", i+1, m.Timestamp.In(loc).Format("15:04"), sender)
		if m.SenderIsLeadership {
			b.WriteString(" (leadership)")
		}
		b.WriteString(": ")
		b.WriteString(m.Text)
		if m.ReplyToExternalID != nil {
			if ref, ok := indexByExternal[*m.ReplyToExternalID]; ok {
				fmt.Fprintf(&b, " (reply to #%d)", ref)
			} else {
				b.WriteString(" (reply)")
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
