package removepreferred

import (
	"context"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/ziadkadry99/cal-pilot/internal/calendar"
	"github.com/ziadkadry99/cal-pilot/internal/contacts"
	"github.com/ziadkadry99/cal-pilot/internal/db"
	"github.com/ziadkadry99/cal-pilot/internal/dialogue"
	"github.com/ziadkadry99/cal-pilot/internal/extraction"
	"github.com/ziadkadry99/cal-pilot/internal/skills"
	"github.com/ziadkadry99/cal-pilot/internal/vectordb"
)

var testNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

type stubExtractor struct {
	intents []extraction.IntentPayload
	fail    bool
}

func (s *stubExtractor) popIntent() *extraction.IntentPayload {
	if len(s.intents) == 0 {
		return &extraction.IntentPayload{}
	}
	p := s.intents[0]
	s.intents = s.intents[1:]
	return &p
}

func (s *stubExtractor) ExtractIntent(ctx context.Context, msg string, now time.Time, tz string) (*extraction.IntentPayload, error) {
	if s.fail {
		return nil, extraction.ErrExtraction
	}
	return s.popIntent(), nil
}

func (s *stubExtractor) ExtractDateTime(ctx context.Context, msg string, now time.Time, tz string) (*extraction.DateTimePayload, error) {
	return &extraction.DateTimePayload{}, nil
}

func (s *stubExtractor) ExtractMissingIntent(ctx context.Context, prior extraction.Exchange, msg string, now time.Time, tz string) (*extraction.IntentPayload, error) {
	return s.ExtractIntent(ctx, msg, now, tz)
}

func (s *stubExtractor) ExtractMissingDateTime(ctx context.Context, prior extraction.Exchange, msg string, now time.Time, tz string) (*extraction.DateTimePayload, error) {
	return &extraction.DateTimePayload{}, nil
}

func (s *stubExtractor) RequestMissingFields(ctx context.Context, msg, missing string) (string, error) {
	return "", nil
}

func (s *stubExtractor) Reply(ctx context.Context, msg, outcome string) (string, error) {
	return "", nil
}

type fixture struct {
	deps  *skills.Deps
	skill *Skill
	stub  *stubExtractor
	index *vectordb.MemoryIndex
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	stub := &stubExtractor{}
	index := vectordb.NewMemoryIndex()
	deps := &skills.Deps{
		Store:     calendar.NewStore(database),
		Contacts:  contacts.NewStore(database),
		Index:     index,
		Calendar:  calendar.NewFakeProvider(),
		Extractor: stub,
		Logger:    log.New(testWriter{t}, "[removepreferred] ", 0),
		Timezone:  time.UTC,
		Now:       func() time.Time { return testNow },
	}
	skill, err := New(deps)
	if err != nil {
		t.Fatalf("creating skill: %v", err)
	}
	return &fixture{deps: deps, skill: skill, stub: stub, index: index}
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

func (f *fixture) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	event := &calendar.Event{
		ID: "evt1", UserID: "u1", CalendarID: "cal", Title: "standup",
		StartDate: testNow.Add(24 * time.Hour), EndDate: testNow.Add(24*time.Hour + 30*time.Minute),
		Duration: 30, Timezone: "UTC", Priority: 1,
	}
	if err := f.deps.Store.UpsertEvents(ctx, []*calendar.Event{event}); err != nil {
		t.Fatalf("seeding event: %v", err)
	}
	doc := vectordb.EventDoc{EventID: "evt1", UserID: "u1", Title: "standup", StartDate: event.StartDate}
	f.index.IndexEvent(ctx, doc)
	f.index.TrainEvent(ctx, doc)
	f.deps.Store.UpsertPreferredTimeRanges(ctx, []calendar.PreferredTimeRange{
		{ID: "p1", EventID: "evt1", UserID: "u1", DayOfWeek: 1, StartTime: "08:00", EndTime: "10:00"},
		{ID: "p2", EventID: "evt1", UserID: "u1", DayOfWeek: 3, StartTime: "14:00", EndTime: "16:00"},
	})
}

func (f *fixture) turn(t *testing.T, state *dialogue.State, message string) dialogue.Action {
	t.Helper()
	state.AddUserMessage(message)
	return f.skill.HandleTurn(context.Background(), state)
}

func TestRemoveAllPreferredTimes(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	state := dialogue.New("c1", "u1", Name)

	f.stub.intents = []extraction.IntentPayload{{Params: extraction.Params{Title: "standup"}}}

	action := f.turn(t, state, "forget my preferred times for standup")
	if action.Status != dialogue.StatusCompleted {
		t.Fatalf("status = %s reply=%q", action.Status, action.Reply)
	}
	if action.Reply != "successfully removed all preferred times" {
		t.Errorf("reply = %q", action.Reply)
	}

	ranges, _ := f.deps.Store.ListPreferredTimeRangesForEvent(context.Background(), "evt1")
	if len(ranges) != 0 {
		t.Errorf("ranges = %v, want all gone", ranges)
	}
	if f.index.HasTraining("evt1") {
		t.Error("training document should be deleted with the preferences")
	}
	if f.index.Count() != 1 {
		t.Error("the event itself must stay indexed")
	}
}

func TestMissingTitleThenFollowUp(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	state := dialogue.New("c1", "u1", Name)

	f.stub.intents = []extraction.IntentPayload{{}}
	action := f.turn(t, state, "remove my preferred times")
	if action.Status != dialogue.StatusMissingFields {
		t.Fatalf("status = %s", action.Status)
	}
	if action.Reply != "Which event should I remove the preferred times from?" {
		t.Errorf("reply = %q", action.Reply)
	}

	f.stub.intents = []extraction.IntentPayload{{Params: extraction.Params{Title: "standup"}}}
	action = f.turn(t, state, "the standup")
	if action.Status != dialogue.StatusCompleted {
		t.Fatalf("status = %s reply=%q", action.Status, action.Reply)
	}
	if !state.Carried.Empty() {
		t.Error("finishing must clear carried state")
	}
}

func TestEventNotFound(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	state := dialogue.New("c1", "u1", Name)

	f.stub.intents = []extraction.IntentPayload{{Params: extraction.Params{Title: "retrospective"}}}
	action := f.turn(t, state, "remove preferred times for the retrospective")
	if action.Status != dialogue.StatusEventNotFound {
		t.Fatalf("status = %s", action.Status)
	}
	if action.Reply != "Oops... I couldn't find the event. Sorry :(" {
		t.Errorf("reply = %q", action.Reply)
	}
}

func TestExtractionFailure(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	state := dialogue.New("c1", "u1", Name)
	f.stub.fail = true

	action := f.turn(t, state, "???")
	if action.Status != dialogue.StatusExtractionFailed {
		t.Fatalf("status = %s", action.Status)
	}
	if action.Reply != replyFallback {
		t.Errorf("reply = %q", action.Reply)
	}
}
