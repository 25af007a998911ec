// Package extraction turns natural-language calendar requests into the
// structured payloads the skills consume: one pass for event
// attributes, one for dates and times, plus follow-up variants that
// interpret a user's answer to a missing-fields question in the light
// of the exchange that raised it.
package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ziadkadry99/cal-pilot/internal/llm"
)

// ErrExtraction marks a turn where the model produced no usable
// structured payload. Callers translate it into a failed turn instead
// of retrying.
var ErrExtraction = errors.New("extraction produced no usable payload")

// Exchange is the prior question/answer pair a follow-up extraction
// needs: the user message that started the request and the assistant
// question it triggered.
type Exchange struct {
	UserMessage       string
	AssistantQuestion string
}

// Extractor converts user messages into structured payloads and writes
// the assistant-facing replies.
type Extractor interface {
	// ExtractIntent pulls event attributes out of a fresh user message.
	ExtractIntent(ctx context.Context, userMessage string, now time.Time, timezone string) (*IntentPayload, error)
	// ExtractDateTime pulls the temporal attributes out of a fresh user message.
	ExtractDateTime(ctx context.Context, userMessage string, now time.Time, timezone string) (*DateTimePayload, error)
	// ExtractMissingIntent interprets the answer to a missing-fields
	// question, extracting only what the answer adds.
	ExtractMissingIntent(ctx context.Context, prior Exchange, userMessage string, now time.Time, timezone string) (*IntentPayload, error)
	// ExtractMissingDateTime is the temporal counterpart of ExtractMissingIntent.
	ExtractMissingDateTime(ctx context.Context, prior Exchange, userMessage string, now time.Time, timezone string) (*DateTimePayload, error)
	// RequestMissingFields writes the question asking the user for the
	// listed attributes.
	RequestMissingFields(ctx context.Context, userMessage, missing string) (string, error)
	// Reply writes the confirmation shown after a skill finishes,
	// grounded on the outcome summary.
	Reply(ctx context.Context, userMessage, outcome string) (string, error)
}

// LLMExtractor implements Extractor on a chat-completion provider.
type LLMExtractor struct {
	provider llm.Provider
}

// NewLLMExtractor creates an extractor backed by the given provider.
func NewLLMExtractor(provider llm.Provider) *LLMExtractor {
	return &LLMExtractor{provider: provider}
}

func (e *LLMExtractor) ExtractIntent(ctx context.Context, userMessage string, now time.Time, timezone string) (*IntentPayload, error) {
	content, err := e.complete(ctx, intentSystemPrompt, buildUserTurnPrompt(userMessage, now, timezone))
	if err != nil {
		return nil, err
	}
	return parseIntent(content)
}

func (e *LLMExtractor) ExtractDateTime(ctx context.Context, userMessage string, now time.Time, timezone string) (*DateTimePayload, error) {
	content, err := e.complete(ctx, dateTimeSystemPrompt, buildUserTurnPrompt(userMessage, now, timezone))
	if err != nil {
		return nil, err
	}
	return parseDateTime(content)
}

func (e *LLMExtractor) ExtractMissingIntent(ctx context.Context, prior Exchange, userMessage string, now time.Time, timezone string) (*IntentPayload, error) {
	content, err := e.complete(ctx, intentSystemPrompt, buildFollowUpPrompt(prior, userMessage, now, timezone))
	if err != nil {
		return nil, err
	}
	return parseIntent(content)
}

func (e *LLMExtractor) ExtractMissingDateTime(ctx context.Context, prior Exchange, userMessage string, now time.Time, timezone string) (*DateTimePayload, error) {
	content, err := e.complete(ctx, dateTimeSystemPrompt, buildFollowUpPrompt(prior, userMessage, now, timezone))
	if err != nil {
		return nil, err
	}
	return parseDateTime(content)
}

func (e *LLMExtractor) RequestMissingFields(ctx context.Context, userMessage, missing string) (string, error) {
	prompt := fmt.Sprintf("## User Request\n%s\n\n## Missing Attributes\n%s\n\nWrite one short, friendly question asking the user for these attributes.", userMessage, missing)
	resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: assistantSystemPrompt},
			{Role: llm.RoleUser, Content: prompt},
		},
		MaxTokens:   512,
		Temperature: 0.4,
	})
	if err != nil {
		return "", fmt.Errorf("LLM completion: %w", err)
	}
	return strings.TrimSpace(resp.Content), nil
}

func (e *LLMExtractor) Reply(ctx context.Context, userMessage, outcome string) (string, error) {
	prompt := fmt.Sprintf("## User Request\n%s\n\n## Outcome\n%s\n\nWrite one short, friendly confirmation of the outcome for the user.", userMessage, outcome)
	resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: assistantSystemPrompt},
			{Role: llm.RoleUser, Content: prompt},
		},
		MaxTokens:   512,
		Temperature: 0.4,
	})
	if err != nil {
		return "", fmt.Errorf("LLM completion: %w", err)
	}
	return strings.TrimSpace(resp.Content), nil
}

func (e *LLMExtractor) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: system},
			{Role: llm.RoleUser, Content: user},
		},
		MaxTokens:   2048,
		Temperature: 0.1,
		JSONMode:    true,
	})
	if err != nil {
		return "", fmt.Errorf("LLM completion: %w", err)
	}
	return resp.Content, nil
}

func buildUserTurnPrompt(userMessage string, now time.Time, timezone string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Current Time\n%s (%s)\n", now.Format(time.RFC3339), timezone)
	fmt.Fprintf(&b, "\n## User Message\n%s\n", userMessage)
	b.WriteString("\nExtract the attributes this message states. Omit everything the user did not mention.")
	return b.String()
}

func buildFollowUpPrompt(prior Exchange, userMessage string, now time.Time, timezone string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Current Time\n%s (%s)\n", now.Format(time.RFC3339), timezone)
	fmt.Fprintf(&b, "\n## Earlier User Request\n%s\n", prior.UserMessage)
	fmt.Fprintf(&b, "\n## Assistant Question\n%s\n", prior.AssistantQuestion)
	fmt.Fprintf(&b, "\n## User Answer\n%s\n", userMessage)
	b.WriteString("\nExtract only the attributes the answer provides. Omit everything it does not mention.")
	return b.String()
}

func parseIntent(content string) (*IntentPayload, error) {
	data, ok := jsonBody(content)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in response", ErrExtraction)
	}
	var payload IntentPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	return &payload, nil
}

func parseDateTime(content string) (*DateTimePayload, error) {
	data, ok := jsonBody(content)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in response", ErrExtraction)
	}
	var payload DateTimePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	return &payload, nil
}

// jsonBody trims anything around the outermost JSON object, which some
// models wrap in markdown fences.
func jsonBody(content string) ([]byte, bool) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	return []byte(content[start : end+1]), true
}

const intentSystemPrompt = `You are a calendar assistant's attribute extraction engine. The user wants to edit a calendar event. Extract the event attributes their message states.

You MUST respond with valid JSON matching this schema:
{
  "params": {
    "title": "new event title, if the user renames the event",
    "oldTitle": "the current title of the event being edited, when the user distinguishes it from a new title",
    "summary": "event summary when stated instead of a title",
    "description": "event description",
    "notes": "notes to attach",
    "taskList": "task list name",
    "location": "event location",
    "attendees": [{"name": "person's name", "email": "email if stated", "isHost": false}],
    "conference": {"app": "google|zoom"},
    "bufferTime": {"beforeEvent": minutes, "afterEvent": minutes},
    "alarms": [minutes before start],
    "priority": 1-10,
    "transparency": "opaque|transparent",
    "visibility": "default|public|private",
    "isFollowUp": true/false,
    "isBreak": true/false
  }
}

Rules:
- Omit every attribute the message does not state. Never guess.
- "make it busy" means transparency opaque; "mark me free" means transparent.
- A bare person name goes into attendees with name only.`

const dateTimeSystemPrompt = `You are a calendar assistant's date and time extraction engine. Extract the temporal attributes of the user's request, relative to the current time you are given.

You MUST respond with valid JSON matching this schema:
{
  "year": 2026, "month": 8, "day": 29,
  "isoWeekday": 1-7 (Monday=1, when the user names a weekday instead of a date),
  "hour": 0-23, "minute": 0-59,
  "startTime": "HH:MM", "endTime": "HH:MM",
  "duration": minutes,
  "relativeTimeChangeFromNow": "add|subtract",
  "relativeTimeFromNow": [{"value": n, "unit": "minute|hour|day|week|month|year"}],
  "recur": {"frequency": "daily|weekly|monthly|yearly", "interval": n, "byWeekDay": ["MO".."SU"], "byMonthDay": [1-31], "occurrence": n, "endDate": "RFC3339"},
  "timePreferences": [{"dayOfWeek": [1-7, or 0 for any day], "timeRange": {"startTime": "HH:MM", "endTime": "HH:MM"}}],
  "allDay": true/false,
  "method": "how the time was stated"
}

Rules:
- Omit every attribute the message does not state. Never guess.
- "in two hours" is relativeTimeFromNow with relativeTimeChangeFromNow "add".
- Weekday names set isoWeekday, never day.`

const assistantSystemPrompt = `You are a friendly calendar assistant. Write short, natural replies. Never invent details beyond what you are given.`
