// Package analysis holds the conversation reconstruction and classification
// pipeline: thread grouping, windowing, transcript building, inference prompt
// and response handling, and deadline normalization. Everything here is pure
// computation or a thin wrapper over the inference client; persistence lives
// in the service layer.
package analysis

import (
	"fmt"
	"sort"

	"hollymart.app/intel/internal/model"
)

// BuildUnits partitions a channel's messages into conversation units. Group
// channels cluster by reply back-references; direct and transcript channels
// group by counterparty since their messages carry no reply links. Every input
// message lands in exactly one unit, and units come back ascending by start
// time.
func BuildUnits(ch *model.Channel, messages []model.Message) []*model.ConversationUnit {
	if len(messages) == 0 {
		return nil
	}
	if ch.Kind.SupportsReplies() {
		return unitsByThreadRoot(ch.ID, messages)
	}
	return unitsByCounterparty(ch, messages)
}

// unitsByThreadRoot clusters messages by walking reply links to a common
// root. The walk is memoized per message and bounded by a visited set so a
// cyclic reply chain terminates; on a cycle the last unvisited node before
// the repeat becomes the root.
func unitsByThreadRoot(channelID int64, messages []model.Message) []*model.ConversationUnit {
	byExternal := make(map[string]*model.Message, len(messages))
	for i := range messages {
		byExternal[messages[i].ExternalID] = &messages[i]
	}

	roots := make(map[string]string, len(messages))

	rootOf := func(m *model.Message) string {
		if r, ok := roots[m.ExternalID]; ok {
			return r
		}
		visited := make(map[string]bool)
		path := []string{}
		cur := m
		for {
			if r, ok := roots[cur.ExternalID]; ok {
				for _, id := range path {
					roots[id] = r
				}
				return r
			}
			visited[cur.ExternalID] = true
			path = append(path, cur.ExternalID)

			if cur.ReplyToExternalID == nil {
				break
			}
			parent, ok := byExternal[*cur.ReplyToExternalID]
			if !ok || visited[parent.ExternalID] {
				// Parent outside the window, or a cycle.
				break
			}
			cur = parent
		}
		root := cur.ExternalID
		for _, id := range path {
			roots[id] = root
		}
		return root
	}

	clusters := make(map[string][]*model.Message)
	for i := range messages {
		m := &messages[i]
		root := rootOf(m)
		clusters[root] = append(clusters[root], m)
	}

	units := make([]*model.ConversationUnit, 0, len(clusters))
	for root, members := range clusters {
		sort.Slice(members, func(i, j int) bool {
			return members[i].Timestamp.Before(members[j].Timestamp)
		})
		units = append(units, &model.ConversationUnit{
			ChannelID: channelID,
			UnitKey:   "thread:" + root,
			Messages:  members,
		})
	}
	sortUnits(units)
	return units
}

// unitsByCounterparty groups by who the exchange is with. In a direct channel
// every message shares one counterparty (the chat peer); transcripts collapse
// to a single unit per feed.
func unitsByCounterparty(ch *model.Channel, messages []model.Message) []*model.ConversationUnit {
	clusters := make(map[string][]*model.Message)
	for i := range messages {
		m := &messages[i]
		key := m.SenderJID
		if m.FromMe || ch.Kind == model.ChannelKindTranscript {
			key = ch.ExternalID
		}
		clusters[key] = append(clusters[key], m)
	}

	units := make([]*model.ConversationUnit, 0, len(clusters))
	for counterparty, members := range clusters {
		sort.Slice(members, func(i, j int) bool {
			return members[i].Timestamp.Before(members[j].Timestamp)
		})
		units = append(units, &model.ConversationUnit{
			ChannelID: ch.ID,
			UnitKey:   fmt.Sprintf("dm:%s:%s", counterparty, members[0].ExternalID),
			Messages:  members,
		})
	}
	sortUnits(units)
	return units
}

func sortUnits(units []*model.ConversationUnit) {
	sort.Slice(units, func(i, j int) bool {
		if !units[i].StartTime().Equal(units[j].StartTime()) {
			return units[i].StartTime().Before(units[j].StartTime())
		}
		return units[i].UnitKey < units[j].UnitKey
	})
}
