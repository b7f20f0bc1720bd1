// Package service orchestrates the batch jobs: it wires the pure analysis
// components to the stores and the inference client, owns run summaries, and
// enforces the idempotency and isolation rules around inference calls.
package service

import (
	"time"

	"hollymart.app/intel/common/id"
	"hollymart.app/intel/common/llm"
	"hollymart.app/intel/core/config"
	"hollymart.app/intel/internal/analysis"
	"hollymart.app/intel/internal/store"
)

type Services struct {
	cfg    config.AnalysisConfig
	stores *store.Stores
	client llm.Client
	loc    *time.Location
}

func NewServices(cfg config.AnalysisConfig, stores *store.Stores, client llm.Client) *Services {
	return &Services{
		cfg:    cfg,
		stores: stores,
		client: client,
		loc:    time.FixedZone("business", cfg.BusinessTZOffsetHours*3600),
	}
}

// Location is the business timezone all analysis dates are anchored in.
func (s *Services) Location() *time.Location {
	return s.loc
}

func (s *Services) materializer() *Materializer {
	return NewMaterializer(
		s.stores,
		analysis.NewDeadlineNormalizer(s.loc, s.cfg.DeadlineHour),
		id.New,
	)
}

func (s *Services) Analyzer() *Analyzer {
	return NewAnalyzer(
		s.cfg,
		s.stores,
		analysis.NewSegmenter(s.client, s.loc),
		analysis.NewClassifier(s.client, s.loc),
		s.materializer(),
		s.ContinuityTracker(),
		s.loc,
	)
}

func (s *Services) MessageClassifier() *MessageClassifier {
	return NewMessageClassifier(
		s.cfg,
		s.stores,
		analysis.NewClassifier(s.client, s.loc),
		s.materializer(),
		s.loc,
	)
}

func (s *Services) ContinuityTracker() *ContinuityTracker {
	return NewContinuityTracker(s.stores.Topics)
}

func (s *Services) CompletionDetector() *CompletionDetector {
	return NewCompletionDetector(s.cfg, s.stores)
}

func (s *Services) BriefingBuilder() *BriefingBuilder {
	return NewBriefingBuilder(s.stores, id.New, s.loc)
}

func (s *Services) Ingestor() *Ingestor {
	return NewIngestor(s.stores, id.New, s.loc)
}
