package analysis

import (
	"context"
	"fmt"
	"time"

	"hollymart.app/intel/common/llm"
	"hollymart.app/intel/internal/model"
)

type segmentationSchema struct {
	Topics []struct {
		Label           string   `json:"label"`
		MessageIndices  []int    `json:"message_indices"`
		KeyParticipants []string `json:"key_participants"`
		TimeSpan        string   `json:"time_span"`
	} `json:"topics"`
	Noise []int `json:"noise"`
}

// Segmenter proposes topic partitions of a message window via one inference
// call.
type Segmenter struct {
	client llm.Client
	loc    *time.Location
	schema any
}

func NewSegmenter(client llm.Client, loc *time.Location) *Segmenter {
	return &Segmenter{
		client: client,
		loc:    loc,
		schema: llm.GenerateSchema[segmentationSchema](),
	}
}

// Segment splits a window into topic candidates plus a noise index set.
// Returned indices are 1-based positions within the window; the caller
// resolves them back to messages.
func (s *Segmenter) Segment(ctx context.Context, window []model.Message) ([]model.TopicCandidate, []int, error) {
	transcript := BuildTranscript(window, s.loc)

	raw, err := s.client.Infer(ctx, llm.Request{
		SystemPrompt: segmentationSystemPrompt,
		UserPrompt:   segmentationUserPrompt(transcript),
		SchemaName:   "topic_segmentation",
		Schema:       s.schema,
		Temperature:  llm.Temp(0.1),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("segmentation inference: %w", err)
	}

	return ParseSegmentation(raw, len(window))
}
