package analysis

import (
	"context"
	"fmt"
	"time"

	"hollymart.app/intel/common/llm"
	"hollymart.app/intel/internal/model"
)

type classificationSchema struct {
	Category     string  `json:"category"`
	Confidence   float64 `json:"confidence"`
	Summary      string  `json:"summary"`
	Priority     string  `json:"priority"`
	Outcome      string  `json:"outcome"`
	AssignedTo   string  `json:"assigned_to"`
	AssignedBy   string  `json:"assigned_by"`
	DeadlineText string  `json:"deadline_text"`
}

// Classifier assigns a category and metadata to one conversation unit via one
// inference call. The prompt variant follows the channel kind since
// classification priors differ per source.
type Classifier struct {
	client llm.Client
	loc    *time.Location
	schema any
}

func NewClassifier(client llm.Client, loc *time.Location) *Classifier {
	return &Classifier{
		client: client,
		loc:    loc,
		schema: llm.GenerateSchema[classificationSchema](),
	}
}

// Classify runs one unit through the model. A malformed response surfaces as
// *MalformedError; the caller records it against the unit and moves on.
func (c *Classifier) Classify(ctx context.Context, kind model.ChannelKind, messages []model.Message) (*model.ClassificationResult, error) {
	transcript := BuildTranscript(messages, c.loc)

	raw, err := c.client.Infer(ctx, llm.Request{
		SystemPrompt: classifySystemPrompt(kind),
		UserPrompt:   classifyUserPrompt(transcript),
		SchemaName:   "topic_classification",
		Schema:       c.schema,
		Temperature:  llm.Temp(0.1),
	})
	if err != nil {
		return nil, fmt.Errorf("classification inference: %w", err)
	}

	return ParseClassification(raw)
}
