package analysis

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"hollymart.app/intel/internal/model"
)

// MalformedError marks inference output that could not be parsed into the
// expected shape. It carries the raw text so run error lists stay debuggable.
// Callers must branch on it explicitly; a malformed response is a per-unit
// failure, never a fatal one.
type MalformedError struct {
	Raw    string
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed inference response (%s): %s", e.Reason, truncate(e.Raw, 200))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// stripFences removes a markdown code fence if the model wrapped its JSON in
// one despite instructions.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// extractArray pulls an array of objects out of an inference response. The
// response may be a bare array, an object with one of the conventional keys,
// or an object whose first array-valued field holds the payload.
func extractArray(raw string, conventionalKeys ...string) ([]json.RawMessage, error) {
	s := stripFences(raw)

	var asArray []json.RawMessage
	if err := json.Unmarshal([]byte(s), &asArray); err == nil {
		return asArray, nil
	}

	var asObject map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &asObject); err != nil {
		return nil, &MalformedError{Raw: raw, Reason: "not a JSON object or array"}
	}

	for _, key := range conventionalKeys {
		if field, ok := asObject[key]; ok {
			var arr []json.RawMessage
			if err := json.Unmarshal(field, &arr); err == nil {
				return arr, nil
			}
		}
	}

	// Fall back to the first array-valued field, in stable key order.
	keys := make([]string, 0, len(asObject))
	for k := range asObject {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		var arr []json.RawMessage
		if err := json.Unmarshal(asObject[k], &arr); err == nil {
			return arr, nil
		}
	}

	return nil, &MalformedError{Raw: raw, Reason: "no array-valued field"}
}

// ParseClassification decodes a single classification object. A missing or
// unknown category is malformed; missing priority and outcome degrade to
// sensible defaults since the model omits them on occasion.
func ParseClassification(raw string) (*model.ClassificationResult, error) {
	s := stripFences(raw)

	var result model.ClassificationResult
	err := json.Unmarshal([]byte(s), &result)

	// Some responses wrap the object in an array, bare or under a
	// conventional key. Take the first element rather than failing.
	if err != nil || result.Category == "" {
		items, arrErr := extractArray(s, "results", "classifications", "items")
		if arrErr == nil && len(items) > 0 {
			err = json.Unmarshal(items[0], &result)
		}
		if err != nil {
			return nil, &MalformedError{Raw: raw, Reason: "invalid JSON"}
		}
	}

	switch result.Category {
	case model.CategoryTask, model.CategoryDirection, model.CategoryReport,
		model.CategoryQuestion, model.CategoryCoordination, model.CategoryNoise:
	case "":
		return nil, &MalformedError{Raw: raw, Reason: "missing category"}
	default:
		return nil, &MalformedError{Raw: raw, Reason: fmt.Sprintf("unknown category %q", result.Category)}
	}

	if result.Priority == "" {
		result.Priority = model.PriorityNormal
	}
	if result.Outcome == "" {
		result.Outcome = model.OutcomeNoActionNeeded
	}
	if result.Confidence < 0 {
		result.Confidence = 0
	}
	if result.Confidence > 1 {
		result.Confidence = 1
	}

	return &result, nil
}

type segmentationResponse struct {
	Topics []struct {
		Label           string   `json:"label"`
		MessageIndices  []int    `json:"message_indices"`
		KeyParticipants []string `json:"key_participants"`
		TimeSpan        string   `json:"time_span"`
	} `json:"topics"`
	Noise []int `json:"noise"`
}

// ParseSegmentation decodes a segmentation response against a window of the
// given size. Indices are 1-based and window-relative; out-of-range and
// duplicate indices are dropped, and indices claimed by no topic join the
// noise set. Missing fields default to empty collections.
func ParseSegmentation(raw string, windowSize int) ([]model.TopicCandidate, []int, error) {
	s := stripFences(raw)

	var resp segmentationResponse
	if err := json.Unmarshal([]byte(s), &resp); err != nil {
		return nil, nil, &MalformedError{Raw: raw, Reason: "invalid JSON"}
	}

	claimed := make(map[int]bool, windowSize)
	var topics []model.TopicCandidate
	for _, t := range resp.Topics {
		var indices []int
		for _, idx := range t.MessageIndices {
			if idx < 1 || idx > windowSize || claimed[idx] {
				continue
			}
			claimed[idx] = true
			indices = append(indices, idx)
		}
		if len(indices) == 0 {
			continue
		}
		sort.Ints(indices)
		topics = append(topics, model.TopicCandidate{
			Label:           t.Label,
			MemberIndices:   indices,
			KeyParticipants: t.KeyParticipants,
			TimeSpan:        t.TimeSpan,
		})
	}

	var noise []int
	for _, idx := range resp.Noise {
		if idx < 1 || idx > windowSize || claimed[idx] {
			continue
		}
		claimed[idx] = true
		noise = append(noise, idx)
	}
	for idx := 1; idx <= windowSize; idx++ {
		if !claimed[idx] {
			noise = append(noise, idx)
		}
	}
	sort.Ints(noise)

	return topics, noise, nil
}
