package analysis

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dayMonthPattern matches "15 feb", "15feb", "3 agustus" style phrases with
// Indonesian and English month abbreviations.
var dayMonthPattern = regexp.MustCompile(`(\d{1,2})\s*(jan|feb|mar|apr|mei|may|jun|jul|agu|aug|sep|okt|oct|nov|des|dec)`)

var monthsByAbbrev = map[string]time.Month{
	"jan": time.January,
	"feb": time.February,
	"mar": time.March,
	"apr": time.April,
	"mei": time.May,
	"may": time.May,
	"jun": time.June,
	"jul": time.July,
	"agu": time.August,
	"aug": time.August,
	"sep": time.September,
	"okt": time.October,
	"oct": time.October,
	"nov": time.November,
	"des": time.December,
	"dec": time.December,
}

// DeadlineNormalizer turns free-text deadline phrases into absolute
// timestamps in the business timezone. Unparsed phrases resolve to nil and
// stay visible to humans as raw text; this is lossy on purpose.
type DeadlineNormalizer struct {
	loc     *time.Location
	eodHour int
	now     func() time.Time
}

func NewDeadlineNormalizer(loc *time.Location, eodHour int) *DeadlineNormalizer {
	return &DeadlineNormalizer{loc: loc, eodHour: eodHour, now: time.Now}
}

// WithClock overrides the normalizer's notion of now, for tests.
func (n *DeadlineNormalizer) WithClock(now func() time.Time) *DeadlineNormalizer {
	n.now = now
	return n
}

// Normalize resolves a deadline phrase. Rules in order: exact relative terms,
// then a {day} {month-name} pattern rolled to next year when the date already
// passed, then nil.
func (n *DeadlineNormalizer) Normalize(text string) *time.Time {
	phrase := strings.ToLower(strings.TrimSpace(text))
	if phrase == "" {
		return nil
	}

	now := n.now().In(n.loc)

	switch phrase {
	case "hari ini", "today":
		return n.endOfDay(now, 0)
	case "besok", "tomorrow":
		return n.endOfDay(now, 1)
	case "lusa", "day after tomorrow":
		return n.endOfDay(now, 2)
	}

	if m := dayMonthPattern.FindStringSubmatch(phrase); m != nil {
		day, err := strconv.Atoi(m[1])
		if err != nil || day < 1 || day > 31 {
			return nil
		}
		month := monthsByAbbrev[m[2]]
		candidate := time.Date(now.Year(), month, day, n.eodHour, 0, 0, 0, n.loc)
		if candidate.Day() != day {
			// e.g. "31 feb" normalized into march
			return nil
		}
		if candidate.Before(now) {
			candidate = time.Date(now.Year()+1, month, day, n.eodHour, 0, 0, 0, n.loc)
		}
		return &candidate
	}

	return nil
}

func (n *DeadlineNormalizer) endOfDay(now time.Time, daysAhead int) *time.Time {
	t := time.Date(now.Year(), now.Month(), now.Day()+daysAhead, n.eodHour, 0, 0, 0, n.loc)
	return &t
}
