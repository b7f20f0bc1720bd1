package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"hollymart.app/intel/common/logger"
	"hollymart.app/intel/internal/model"
	"hollymart.app/intel/internal/store"
)

const (
	briefingSectionLimit = 15

	// Open tasks older than this show up in the overdue section.
	overdueAfterDays = 3

	priorOngoingLimit = 20
)

// BriefingBuilder renders the daily digest from the date's topic records plus
// the current open tasks and standing directions. One briefing row per date;
// rebuilding overwrites.
type BriefingBuilder struct {
	stores *store.Stores
	newID  func() int64
	loc    *time.Location
	now    func() time.Time
}

func NewBriefingBuilder(stores *store.Stores, newID func() int64, loc *time.Location) *BriefingBuilder {
	return &BriefingBuilder{stores: stores, newID: newID, loc: loc, now: time.Now}
}

// WithClock replaces the wall clock, for tests.
func (b *BriefingBuilder) WithClock(now func() time.Time) *BriefingBuilder {
	b.now = now
	return b
}

func (b *BriefingBuilder) Run(ctx context.Context, date time.Time) (model.RunSummary, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, b.loc)
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		AnalysisDate: logger.Ptr(dayStart.Format("2006-01-02")),
		Component:    "intel.service.briefing",
	})

	var summary model.RunSummary

	topics, err := b.stores.Topics.ListByDate(ctx, dayStart)
	if err != nil {
		return summary, fmt.Errorf("listing topics: %w", err)
	}

	// A failed side read degrades the digest, it does not abort it.
	openTasks, err := b.stores.Tasks.ListOpen(ctx)
	if err != nil {
		slog.WarnContext(ctx, "listing open tasks failed", "error", err)
		summary.AddError(fmt.Sprintf("listing open tasks: %v", err))
		openTasks = nil
	}
	directions, err := b.stores.Directions.ListValid(ctx)
	if err != nil {
		slog.WarnContext(ctx, "listing directions failed", "error", err)
		summary.AddError(fmt.Sprintf("listing directions: %v", err))
		directions = nil
	}
	priorOngoing, err := b.stores.Topics.ListOngoingBefore(ctx, dayStart, priorOngoingLimit)
	if err != nil {
		slog.WarnContext(ctx, "listing prior ongoing topics failed", "error", err)
		summary.AddError(fmt.Sprintf("listing prior ongoing topics: %v", err))
		priorOngoing = nil
	}
	channelNames := b.channelNames(ctx, &summary)

	content := renderBriefing(dayStart, b.now(), topics, openTasks, priorOngoing, directions, channelNames)

	briefing := &model.Briefing{
		ID:           b.newID(),
		BriefingDate: dayStart,
		Content:      content,
		TopicCount:   len(topics),
		TaskCount:    len(openTasks),
	}
	if err := b.stores.Briefings.Upsert(ctx, briefing); err != nil {
		return summary, fmt.Errorf("saving briefing: %w", err)
	}

	summary.Processed = len(topics)
	summary.Created = 1

	slog.InfoContext(ctx, "briefing built",
		"topics", len(topics),
		"open_tasks", len(openTasks),
		"directions", len(directions))

	return summary, nil
}

func (b *BriefingBuilder) channelNames(ctx context.Context, summary *model.RunSummary) map[int64]string {
	names := make(map[int64]string)
	channels, err := b.stores.Channels.ListActive(ctx)
	if err != nil {
		slog.WarnContext(ctx, "listing channels failed", "error", err)
		summary.AddError(fmt.Sprintf("listing channels: %v", err))
		return names
	}
	for _, ch := range channels {
		names[ch.ID] = ch.Name
	}
	return names
}

func renderBriefing(date, now time.Time, topics []model.TopicRecord, openTasks []model.Task, priorOngoing []model.TopicRecord, directions []model.Direction, channelNames map[int64]string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📋 Briefing Harian — %s\n", date.Format("Mon, 02 Jan 2006"))

	var urgent, open, overdue []model.Task
	for _, t := range openTasks {
		switch {
		case now.Sub(t.CreatedAt) > overdueAfterDays*24*time.Hour:
			overdue = append(overdue, t)
		case t.Priority == model.PriorityUrgent || t.Priority == model.PriorityHigh:
			urgent = append(urgent, t)
		default:
			open = append(open, t)
		}
	}

	writeTaskSection(&b, "🔴 Mendesak", urgent, channelNames)
	writeTaskSection(&b, "📝 Tugas terbuka", open, channelNames)

	if len(overdue) > 0 {
		fmt.Fprintf(&b, "\n⚠️ Tanpa respon / lewat %d hari\n", overdueAfterDays)
		for i, t := range overdue {
			if i == briefingSectionLimit {
				fmt.Fprintf(&b, "  … dan %d lagi\n", len(overdue)-i)
				break
			}
			line := t.Summary
			if t.AssignedTo != nil {
				line = fmt.Sprintf("%s → %s", line, *t.AssignedTo)
			}
			days := int(now.Sub(t.CreatedAt).Hours() / 24)
			fmt.Fprintf(&b, "  • %s (%d hari)\n", line, days)
		}
	}

	if len(directions) > 0 {
		fmt.Fprintf(&b, "\n📌 Arahan aktif\n")
		for i, d := range directions {
			if i == briefingSectionLimit {
				fmt.Fprintf(&b, "  … dan %d lagi\n", len(directions)-i)
				break
			}
			line := d.Summary
			if d.IssuedBy != nil {
				line = fmt.Sprintf("%s (dari %s)", line, *d.IssuedBy)
			}
			fmt.Fprintf(&b, "  • %s\n", line)
		}
	}

	var completed, ongoing, reports []model.TopicRecord
	for _, t := range topics {
		switch {
		case t.Category == model.CategoryReport:
			reports = append(reports, t)
		case t.IsOngoing:
			ongoing = append(ongoing, t)
		case t.Outcome == model.OutcomeCompleted || t.Outcome == model.OutcomeAnswered:
			completed = append(completed, t)
		}
	}

	writeTopicSection(&b, "✅ Selesai hari ini", completed, channelNames)
	writeTopicSection(&b, "❓ Masih terbuka", ongoing, channelNames)
	writeTopicSection(&b, "📊 Laporan", reports, channelNames)
	writeTopicSection(&b, "🔄 Percakapan aktif dari hari sebelumnya", priorOngoing, channelNames)

	fmt.Fprintf(&b, "\n%d topik dianalisis, %d tugas terbuka\n", len(topics), len(openTasks))

	return b.String()
}

func writeTaskSection(b *strings.Builder, title string, tasks []model.Task, channelNames map[int64]string) {
	if len(tasks) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s\n", title)
	for i, t := range tasks {
		if i == briefingSectionLimit {
			fmt.Fprintf(b, "  … dan %d lagi\n", len(tasks)-i)
			break
		}
		line := t.Summary
		if t.AssignedTo != nil {
			line = fmt.Sprintf("%s → %s", line, *t.AssignedTo)
		}
		if t.DeadlineText != nil {
			line = fmt.Sprintf("%s (deadline: %s)", line, *t.DeadlineText)
		}
		if t.ChannelID != nil {
			if name, ok := channelNames[*t.ChannelID]; ok {
				line = fmt.Sprintf("[%s] %s", name, line)
			}
		}
		fmt.Fprintf(b, "  • %s\n", line)
	}
}

func writeTopicSection(b *strings.Builder, title string, topics []model.TopicRecord, channelNames map[int64]string) {
	if len(topics) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s\n", title)
	for i, t := range topics {
		if i == briefingSectionLimit {
			fmt.Fprintf(b, "  … dan %d lagi\n", len(topics)-i)
			break
		}
		line := t.Summary
		if name, ok := channelNames[t.ChannelID]; ok {
			line = fmt.Sprintf("[%s] %s", name, line)
		}
		fmt.Fprintf(b, "  • %s\n", line)
	}
}
