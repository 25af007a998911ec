package extraction

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ziadkadry99/cal-pilot/internal/llm"
)

type stubProvider struct {
	content  string
	err      error
	requests []llm.CompletionRequest
}

func (s *stubProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	return &llm.CompletionResponse{Content: s.content}, nil
}

func (s *stubProvider) Name() string { return "stub" }

func TestExtractIntent(t *testing.T) {
	stub := &stubProvider{content: `{"params":{"title":"standup","attendees":[{"name":"Joe"}],"priority":3}}`}
	e := NewLLMExtractor(stub)

	payload, err := e.ExtractIntent(context.Background(), "rename standup and invite Joe", time.Now(), "UTC")
	if err != nil {
		t.Fatalf("ExtractIntent: %v", err)
	}
	if payload.Params.Title != "standup" || payload.Params.Priority != 3 {
		t.Errorf("unexpected params: %+v", payload.Params)
	}
	if len(payload.Params.Attendees) != 1 || payload.Params.Attendees[0].Name != "Joe" {
		t.Errorf("unexpected attendees: %+v", payload.Params.Attendees)
	}
	if len(stub.requests) != 1 || !stub.requests[0].JSONMode {
		t.Error("intent extraction should request JSON mode")
	}
}

func TestExtractIntentRecoversFencedJSON(t *testing.T) {
	stub := &stubProvider{content: "```json\n{\"params\":{\"title\":\"standup\"}}\n```"}
	e := NewLLMExtractor(stub)

	payload, err := e.ExtractIntent(context.Background(), "rename it", time.Now(), "UTC")
	if err != nil {
		t.Fatalf("ExtractIntent: %v", err)
	}
	if payload.Params.Title != "standup" {
		t.Errorf("title = %q", payload.Params.Title)
	}
}

func TestExtractIntentNoJSON(t *testing.T) {
	stub := &stubProvider{content: "I could not understand that."}
	e := NewLLMExtractor(stub)

	_, err := e.ExtractIntent(context.Background(), "???", time.Now(), "UTC")
	if !errors.Is(err, ErrExtraction) {
		t.Errorf("expected ErrExtraction, got %v", err)
	}
}

func TestExtractDateTime(t *testing.T) {
	stub := &stubProvider{content: `{"isoWeekday":2,"hour":15,"minute":0}`}
	e := NewLLMExtractor(stub)

	payload, err := e.ExtractDateTime(context.Background(), "tuesday at 3pm", time.Now(), "UTC")
	if err != nil {
		t.Fatalf("ExtractDateTime: %v", err)
	}
	if payload.ISOWeekday == nil || *payload.ISOWeekday != 2 {
		t.Errorf("isoWeekday = %v", payload.ISOWeekday)
	}
	if !payload.HasDate() || !payload.HasTime() {
		t.Error("payload should report both date and time")
	}
}

func TestHasDateHasTime(t *testing.T) {
	var empty *DateTimePayload
	if empty.HasDate() || empty.HasTime() {
		t.Error("nil payload has neither date nor time")
	}

	day := 12
	p := &DateTimePayload{Day: &day}
	if !p.HasDate() || p.HasTime() {
		t.Errorf("day-only payload: HasDate=%v HasTime=%v", p.HasDate(), p.HasTime())
	}

	p = &DateTimePayload{StartTime: "09:30"}
	if p.HasDate() || !p.HasTime() {
		t.Errorf("startTime-only payload: HasDate=%v HasTime=%v", p.HasDate(), p.HasTime())
	}

	p = &DateTimePayload{RelativeTimeFromNow: []RelativeTime{{Value: 2, Unit: "hour"}}}
	if !p.HasDate() {
		t.Error("relative offset pins a date")
	}
}

func TestExtractMissingIntentIncludesExchange(t *testing.T) {
	stub := &stubProvider{content: `{"params":{"title":"standup"}}`}
	e := NewLLMExtractor(stub)

	prior := Exchange{
		UserMessage:       "move my meeting",
		AssistantQuestion: "which meeting do you mean?",
	}
	if _, err := e.ExtractMissingIntent(context.Background(), prior, "the standup", time.Now(), "UTC"); err != nil {
		t.Fatalf("ExtractMissingIntent: %v", err)
	}

	got := stub.requests[0].Messages[1].Content
	for _, want := range []string{"move my meeting", "which meeting do you mean?", "the standup"} {
		if !strings.Contains(got, want) {
			t.Errorf("follow-up prompt missing %q:\n%s", want, got)
		}
	}
}

func TestRequestMissingFields(t *testing.T) {
	stub := &stubProvider{content: "  Which day should I move it to?  "}
	e := NewLLMExtractor(stub)

	reply, err := e.RequestMissingFields(context.Background(), "move standup to 3pm", "one of day, isoWeekday")
	if err != nil {
		t.Fatalf("RequestMissingFields: %v", err)
	}
	if reply != "Which day should I move it to?" {
		t.Errorf("reply = %q", reply)
	}
	if stub.requests[0].JSONMode {
		t.Error("reply generation must not use JSON mode")
	}
}

func TestReplyProviderError(t *testing.T) {
	stub := &stubProvider{err: errors.New("rate limited")}
	e := NewLLMExtractor(stub)

	if _, err := e.Reply(context.Background(), "move standup", "event successfully edited"); err == nil {
		t.Fatal("expected provider error to surface")
	}
}
