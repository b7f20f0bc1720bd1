package analysis

import "strings"

// completionKeywords is the fixed lexicon for heuristic task-completion
// detection in mixed Indonesian/English chat. Matching is deliberately loose;
// there is no confidence score.
var completionKeywords = []string{
	"sudah dikerjakan",
	"sudah beres",
	"sudah selesai",
	"sudah dilakukan",
	"sudah dijalankan",
	"already done",
	"completed",
	"sudah",
	"selesai",
	"done",
}

// ContainsCompletionKeyword reports whether the text claims the work is done.
func ContainsCompletionKeyword(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range completionKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// NameMatches reports whether an assignee name and a sender name plausibly
// refer to the same person: case-insensitive substring containment in either
// direction ("Budi" matches "Budi Santoso" and vice versa).
func NameMatches(assignee, candidate string) bool {
	a := strings.ToLower(strings.TrimSpace(assignee))
	c := strings.ToLower(strings.TrimSpace(candidate))
	if a == "" || c == "" {
		return false
	}
	return strings.Contains(a, c) || strings.Contains(c, a)
}
