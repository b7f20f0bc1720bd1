package analysis

import (
	"fmt"

	"hollymart.app/intel/internal/model"
)

// Prompts are written for mixed Indonesian/English retail-operations chat.
// Segmentation and classification are separate calls with separate contracts.

const segmentationSystemPrompt = `You are analyzing a day of workplace chat messages from an Indonesian retail company. Messages are in Indonesian, English, or a mix.

Group messages that discuss the same subject into topics. Use the message numbers from the transcript. Messages that belong to no topic (greetings, stickers, small talk) go into "noise".

Respond with only a JSON object:
{
  "topics": [
    {
      "label": "short topic label",
      "message_indices": [1, 2, 5],
      "key_participants": ["name"],
      "time_span": "09:00-09:30"
    }
  ],
  "noise": [3, 4]
}

Every message number must appear in exactly one topic or in noise. Do not invent message numbers.`

const classifyGroupSystemPrompt = `You are analyzing one conversation thread from an Indonesian retail company's group chat. Messages are in Indonesian, English, or a mix.

Classify the thread into exactly one category:
- "task": someone is asked to do something concrete
- "direction": leadership issues a standing instruction or policy
- "report": someone reports a result, number, or status
- "question": someone asks for information
- "coordination": scheduling, logistics, who-does-what alignment
- "noise": greetings, small talk, nothing operational

Respond with only a JSON object:
{
  "category": "...",
  "confidence": 0.0-1.0,
  "summary": "one sentence, in the conversation's language",
  "priority": "low|normal|high|urgent",
  "outcome": "completed|pending|answered|ongoing|no_action_needed",
  "assigned_to": "name or null",
  "assigned_by": "name or null",
  "deadline_text": "verbatim deadline phrase or null"
}

Keep deadline_text exactly as written in the messages ("besok", "15 feb"); do not convert it.`

const classifyDirectSystemPrompt = `You are analyzing a one-on-one conversation between a company leader and an employee at an Indonesian retail company. Messages are in Indonesian, English, or a mix.

In this setting, instructions from the leader are near-certain tasks or directions; weigh category accordingly. Classify the conversation into exactly one category: "task", "direction", "report", "question", "coordination", or "noise".

Respond with only a JSON object:
{
  "category": "...",
  "confidence": 0.0-1.0,
  "summary": "one sentence, in the conversation's language",
  "priority": "low|normal|high|urgent",
  "outcome": "completed|pending|answered|ongoing|no_action_needed",
  "assigned_to": "name or null",
  "assigned_by": "name or null",
  "deadline_text": "verbatim deadline phrase or null"
}`

const classifyTranscriptSystemPrompt = `You are analyzing an excerpt of a meeting transcript from an Indonesian retail company. The discussion is in Indonesian, English, or a mix.

Meeting decisions usually translate into directions; explicit assignments into tasks. Classify the excerpt into exactly one category: "task", "direction", "report", "question", "coordination", or "noise".

Respond with only a JSON object:
{
  "category": "...",
  "confidence": 0.0-1.0,
  "summary": "one sentence, in the discussion's language",
  "priority": "low|normal|high|urgent",
  "outcome": "completed|pending|answered|ongoing|no_action_needed",
  "assigned_to": "name or null",
  "assigned_by": "name or null",
  "deadline_text": "verbatim deadline phrase or null"
}`

// classifySystemPrompt selects the prompt variant for a channel kind.
// Classification priors differ per source, so the variants are not merged.
func classifySystemPrompt(kind model.ChannelKind) string {
	switch kind {
	case model.ChannelKindDirect:
		return classifyDirectSystemPrompt
	case model.ChannelKindTranscript:
		return classifyTranscriptSystemPrompt
	default:
		return classifyGroupSystemPrompt
	}
}

func segmentationUserPrompt(transcript string) string {
	return fmt.Sprintf("Transcript:\n\n%s", transcript)
}

func classifyUserPrompt(transcript string) string {
	return fmt.Sprintf("Conversation:\n\n%s", transcript)
}
