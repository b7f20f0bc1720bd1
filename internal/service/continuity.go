package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"hollymart.app/intel/internal/store"
)

// continuityLookback bounds how many prior open topics one reconciliation
// pass considers.
const continuityLookback = 50

// ContinuityTracker links topics left open on earlier dates to their
// resolution on the current date.
type ContinuityTracker struct {
	topics store.TopicStore
}

func NewContinuityTracker(topics store.TopicStore) *ContinuityTracker {
	return &ContinuityTracker{topics: topics}
}

// Reconcile matches prior open topics against the given date's records. A
// match needs the same channel, the same category, and a resolving outcome.
// First match wins per old topic, and a current record can be claimed as a
// continuation target at most once. Returns the number of links made.
func (t *ContinuityTracker) Reconcile(ctx context.Context, date time.Time) (int, []string) {
	var errs []string

	prior, err := t.topics.ListOngoingBefore(ctx, date, continuityLookback)
	if err != nil {
		return 0, []string{fmt.Sprintf("listing ongoing topics: %v", err)}
	}
	if len(prior) == 0 {
		return 0, nil
	}

	current, err := t.topics.ListByDate(ctx, date)
	if err != nil {
		return 0, []string{fmt.Sprintf("listing current topics: %v", err)}
	}

	claimed := make(map[int64]bool)
	linked := 0
	for _, old := range prior {
		for i := range current {
			cur := &current[i]
			if claimed[cur.ID] || cur.ChannelID != old.ChannelID ||
				cur.Category != old.Category || !cur.Outcome.Resolves() {
				continue
			}

			// Link first, resolve second: a failure in between leaves the old
			// topic open and eligible for the next pass.
			if err := t.topics.SetContinuedFrom(ctx, cur.ID, old.ID); err != nil {
				errs = append(errs, fmt.Sprintf("linking topic %d: %v", cur.ID, err))
				break
			}
			if err := t.topics.MarkResolved(ctx, old.ID); err != nil {
				errs = append(errs, fmt.Sprintf("resolving topic %d: %v", old.ID, err))
				break
			}

			claimed[cur.ID] = true
			linked++
			slog.DebugContext(ctx, "topic continuation linked",
				"from", old.ID, "to", cur.ID, "category", string(old.Category))
			break
		}
	}

	return linked, errs
}
