// Package importer parses WhatsApp chat export files into messages. Exports
// come in several regional layouts; the parser tries each known header shape
// per line and folds unmatched lines into the preceding message body.
package importer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Message is one parsed chat line (plus any continuation lines).
type Message struct {
	Timestamp  time.Time
	SenderName string
	Text       string
	RawLine    string
}

// Header layouts seen in real exports:
//
//	[1/2/26, 2:30 PM] Budi: text
//	1/2/26, 14:30 - Budi: text
//	[1/2/26 14:30:05] Budi: text
var headerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\[(\d{1,2}/\d{1,2}/\d{2,4}),?\s+(\d{1,2}:\d{2}(?::\d{2})?\s*(?:AM|PM)?)\]\s*([^:]+?):\s*(.+)$`),
	regexp.MustCompile(`(?i)^(\d{1,2}/\d{1,2}/\d{2,4}),?\s+(\d{1,2}:\d{2}(?::\d{2})?)\s*-\s*([^:]+?):\s*(.+)$`),
	regexp.MustCompile(`(?i)^\[(\d{1,2}/\d{1,2}/\d{2,4})\s+(\d{1,2}:\d{2}(?::\d{2})?\s*(?:AM|PM)?)\]\s*([^:]+?):\s*(.+)$`),
}

var timePattern = regexp.MustCompile(`(?i)(\d{1,2}):(\d{2})(?::(\d{2}))?\s*(AM|PM)?`)

// Parse extracts messages from an export. Lines that match no header layout
// are continuation lines of the current message; leading noise before the
// first header is dropped. Timestamps are interpreted in loc.
func Parse(content string, loc *time.Location) []Message {
	var (
		messages []Message
		current  *Message
	)

	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		matched := false
		for _, pattern := range headerPatterns {
			groups := pattern.FindStringSubmatch(line)
			if groups == nil {
				continue
			}

			ts, ok := parseTimestamp(groups[1], groups[2], loc)
			if !ok {
				break
			}

			if current != nil {
				messages = append(messages, *current)
			}
			current = &Message{
				Timestamp:  ts,
				SenderName: strings.TrimSpace(groups[3]),
				Text:       strings.TrimSpace(groups[4]),
				RawLine:    line,
			}
			matched = true
			break
		}

		if !matched && current != nil {
			current.Text += "\n" + line
		}
	}

	if current != nil {
		messages = append(messages, *current)
	}

	return messages
}

// parseTimestamp reads an M/D/Y date part and a time part. Two-digit years
// above 50 are 19xx, the rest 20xx, matching how exports abbreviate.
func parseTimestamp(datePart, timePart string, loc *time.Location) (time.Time, bool) {
	parts := strings.Split(datePart, "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}

	month, err1 := strconv.Atoi(parts[0])
	day, err2 := strconv.Atoi(parts[1])
	year, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	if len(parts[2]) == 2 {
		if year > 50 {
			year += 1900
		} else {
			year += 2000
		}
	}

	groups := timePattern.FindStringSubmatch(timePart)
	if groups == nil {
		return time.Time{}, false
	}
	hour, _ := strconv.Atoi(groups[1])
	minute, _ := strconv.Atoi(groups[2])
	second := 0
	if groups[3] != "" {
		second, _ = strconv.Atoi(groups[3])
	}
	switch strings.ToUpper(groups[4]) {
	case "PM":
		if hour != 12 {
			hour += 12
		}
	case "AM":
		if hour == 12 {
			hour = 0
		}
	}

	ts := time.Date(year, time.Month(month), day, hour, minute, second, 0, loc)
	if ts.Day() != day || ts.Month() != time.Month(month) {
		return time.Time{}, false
	}
	return ts, true
}

// IsMediaPlaceholder reports whether the export replaced an attachment with a
// placeholder line; those carry no analyzable text.
func IsMediaPlaceholder(text string) bool {
	return strings.Contains(text, "<Media omitted>") || strings.Contains(text, "image omitted")
}

// ExternalID derives a stable identifier for an imported message so that
// re-importing the same export deduplicates against the unique
// (channel, external_id) constraint.
func ExternalID(m Message) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d|%s|%s", m.Timestamp.Unix(), m.SenderName, m.Text)))
	return "import_" + hex.EncodeToString(sum[:8])
}
