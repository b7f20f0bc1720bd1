package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"hollymart.app/intel/common/logger"
	"hollymart.app/intel/core/config"
	"hollymart.app/intel/internal/analysis"
	"hollymart.app/intel/internal/model"
	"hollymart.app/intel/internal/store"
)

// Analyzer runs the daily analysis job: per active channel, reconstruct the
// day's conversations, segment and classify them, and materialize the
// results. Channels run in parallel (distinct idempotency keys); units within
// a channel run strictly in sequence because the read-then-write idempotency
// checks share persisted state.
type Analyzer struct {
	cfg        config.AnalysisConfig
	stores     *store.Stores
	segmenter  *analysis.Segmenter
	classifier *analysis.Classifier
	mat        *Materializer
	continuity *ContinuityTracker
	loc        *time.Location
}

func NewAnalyzer(
	cfg config.AnalysisConfig,
	stores *store.Stores,
	segmenter *analysis.Segmenter,
	classifier *analysis.Classifier,
	mat *Materializer,
	continuity *ContinuityTracker,
	loc *time.Location,
) *Analyzer {
	return &Analyzer{
		cfg:        cfg,
		stores:     stores,
		segmenter:  segmenter,
		classifier: classifier,
		mat:        mat,
		continuity: continuity,
		loc:        loc,
	}
}

// Run analyzes one business date across all active channels, then reconciles
// topic continuity against prior open topics. The returned summary carries
// per-unit errors; the error return is reserved for failures that abort the
// run before any channel work starts.
func (a *Analyzer) Run(ctx context.Context, date time.Time) (model.RunSummary, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, a.loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		AnalysisDate: logger.Ptr(dayStart.Format("2006-01-02")),
		Component:    "intel.service.analyzer",
	})

	var summary model.RunSummary

	channels, err := a.stores.Channels.ListActive(ctx)
	if err != nil {
		return summary, fmt.Errorf("listing active channels: %w", err)
	}
	if len(channels) == 0 {
		slog.InfoContext(ctx, "no active channels")
		return summary, nil
	}

	concurrency := a.cfg.ChannelConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for i := range channels {
		ch := channels[i]
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			chCtx := logger.WithLogFields(ctx, logger.LogFields{ChannelID: logger.Ptr(ch.ID)})
			chSummary := a.analyzeChannel(chCtx, &ch, dayStart, dayEnd)

			mu.Lock()
			summary.Merge(chSummary)
			mu.Unlock()
		}()
	}
	wg.Wait()

	linked, continuityErrs := a.continuity.Reconcile(ctx, dayStart)
	summary.Errors = append(summary.Errors, continuityErrs...)

	slog.InfoContext(ctx, "daily analysis finished",
		"channels", len(channels),
		"processed", summary.Processed,
		"created", summary.Created,
		"skipped", summary.Skipped,
		"continued", linked,
		"errors", len(summary.Errors))

	return summary, nil
}

func (a *Analyzer) analyzeChannel(ctx context.Context, ch *model.Channel, dayStart, dayEnd time.Time) model.RunSummary {
	var summary model.RunSummary

	// Idempotency gate before any inference call: an already-analyzed
	// channel-date is a silent skip, not a warning.
	exists, err := a.stores.Topics.ExistsForDate(ctx, ch.ID, dayStart)
	if err != nil {
		summary.AddError(fmt.Sprintf("channel %s: checking analysis state: %v", ch.Name, err))
		return summary
	}
	if exists {
		slog.InfoContext(ctx, "channel already analyzed for date")
		summary.Skipped++
		return summary
	}

	messages, err := a.stores.Messages.ListByChannelBetween(ctx, ch.ID, dayStart, dayEnd)
	if err != nil {
		summary.AddError(fmt.Sprintf("channel %s: listing messages: %v", ch.Name, err))
		return summary
	}
	if len(messages) == 0 {
		return summary
	}

	if ch.Kind == model.ChannelKindDirect {
		for _, unit := range analysis.BuildUnits(ch, messages) {
			a.classifyUnit(ctx, ch, dayStart, unit.UnitKey, unit.Messages, &summary)
		}
		return summary
	}

	if len(messages) < a.cfg.MinMessagesForSegmentation {
		// Too little volume to segment; each message stands alone.
		for i := range messages {
			m := &messages[i]
			a.classifyUnit(ctx, ch, dayStart, "msg:"+m.ExternalID, []*model.Message{m}, &summary)
		}
		return summary
	}

	for _, window := range analysis.SplitWindows(messages, a.cfg.MaxMessagesPerWindow) {
		a.analyzeWindow(ctx, ch, dayStart, window, &summary)
	}
	return summary
}

func (a *Analyzer) analyzeWindow(ctx context.Context, ch *model.Channel, date time.Time, window []model.Message, summary *model.RunSummary) {
	topics, noise, err := a.segmenter.Segment(ctx, window)
	if err != nil {
		summary.AddError(fmt.Sprintf("channel %s: segmenting window: %v", ch.Name, err))
		return
	}

	for _, topic := range topics {
		members := resolveIndices(window, topic.MemberIndices)
		if len(members) == 0 {
			continue
		}
		unitKey := "topic:" + members[0].ExternalID
		a.classifyUnit(ctx, ch, date, unitKey, members, summary)
	}

	if members := resolveIndices(window, noise); len(members) > 0 {
		a.materializeNoise(ctx, ch, date, members, summary)
	}
}

// classifyUnit runs one unit through inference and persistence. Failures are
// isolated: the error lands in the summary and the caller moves on.
func (a *Analyzer) classifyUnit(ctx context.Context, ch *model.Channel, date time.Time, unitKey string, members []*model.Message, summary *model.RunSummary) {
	summary.Processed++

	result, err := a.classifier.Classify(ctx, ch.Kind, derefMessages(members))
	if err != nil {
		summary.AddError(fmt.Sprintf("channel %s unit %s: %v", ch.Name, unitKey, err))
		return
	}

	a.persist(ctx, ch, date, unitKey, members, result, summary)
}

// materializeNoise records the window's noise set without an inference call.
func (a *Analyzer) materializeNoise(ctx context.Context, ch *model.Channel, date time.Time, members []*model.Message, summary *model.RunSummary) {
	result := &model.ClassificationResult{
		Category:   model.CategoryNoise,
		Confidence: 1,
		Summary:    "unrelated chatter",
		Priority:   model.PriorityLow,
		Outcome:    model.OutcomeNoActionNeeded,
	}
	a.persist(ctx, ch, date, "noise:"+members[0].ExternalID, members, result, summary)
}

func (a *Analyzer) persist(ctx context.Context, ch *model.Channel, date time.Time, unitKey string, members []*model.Message, result *model.ClassificationResult, summary *model.RunSummary) {
	_, err := a.mat.Materialize(ctx, ch, date, unitKey, members, result)
	switch {
	case err == nil:
		summary.Created++
	case errors.Is(err, store.ErrAlreadyExists):
		summary.Skipped++
	default:
		summary.AddError(fmt.Sprintf("channel %s unit %s: %v", ch.Name, unitKey, err))
	}
}

func resolveIndices(window []model.Message, indices []int) []*model.Message {
	var members []*model.Message
	for _, idx := range indices {
		if idx < 1 || idx > len(window) {
			continue
		}
		members = append(members, &window[idx-1])
	}
	return members
}

func derefMessages(members []*model.Message) []model.Message {
	out := make([]model.Message, len(members))
	for i, m := range members {
		out[i] = *m
	}
	return out
}
