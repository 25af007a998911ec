package skills

import (
	"context"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/ziadkadry99/cal-pilot/internal/calendar"
	"github.com/ziadkadry99/cal-pilot/internal/conferencing"
	"github.com/ziadkadry99/cal-pilot/internal/contacts"
	"github.com/ziadkadry99/cal-pilot/internal/db"
	"github.com/ziadkadry99/cal-pilot/internal/extraction"
	"github.com/ziadkadry99/cal-pilot/internal/vectordb"
)

func newTestDeps(t *testing.T) (*Deps, *calendar.FakeProvider, *conferencing.FakeProvider) {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	calProvider := calendar.NewFakeProvider()
	confProvider := conferencing.NewFakeProvider()
	deps := &Deps{
		Store:    calendar.NewStore(database),
		Contacts: contacts.NewStore(database),
		Index:    vectordb.NewMemoryIndex(),
		Calendar: calProvider,
		Conferencing: map[calendar.ConferenceApp]conferencing.Provider{
			calendar.AppGoogle: confProvider,
			calendar.AppZoom:   confProvider,
		},
		Logger:   log.New(testWriter{t}, "[skills] ", 0),
		Timezone: time.UTC,
		Now:      func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) }, // a Monday
	}
	return deps, calProvider, confProvider
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

func TestResolveEventOldTitlePrecedence(t *testing.T) {
	deps, _, _ := newTestDeps(t)
	ctx := context.Background()
	now := deps.Clock()

	events := []*calendar.Event{
		{ID: "e1", UserID: "u1", CalendarID: "cal", Title: "standup", StartDate: now.Add(24 * time.Hour), EndDate: now.Add(24*time.Hour + 30*time.Minute), Duration: 30, Timezone: "UTC"},
		{ID: "e2", UserID: "u1", CalendarID: "cal", Title: "planning", StartDate: now.Add(48 * time.Hour), EndDate: now.Add(48*time.Hour + time.Hour), Duration: 60, Timezone: "UTC"},
	}
	if err := deps.Store.UpsertEvents(ctx, events); err != nil {
		t.Fatalf("seeding events: %v", err)
	}
	for _, e := range events {
		deps.Index.IndexEvent(ctx, vectordb.EventDoc{EventID: e.ID, UserID: e.UserID, Title: e.Title, StartDate: e.StartDate})
	}

	boundary := BoundaryFor(now, time.UTC, nil)

	// oldTitle refers to the event's current name; title is its new one.
	event, err := deps.ResolveEvent(ctx, "u1", "daily sync", "standup", boundary)
	if err != nil {
		t.Fatalf("ResolveEvent: %v", err)
	}
	if event.ID != "e1" {
		t.Errorf("resolved %s, want e1", event.ID)
	}

	if _, err := deps.ResolveEvent(ctx, "u1", "retrospective", "", boundary); err != ErrEventNotFound {
		t.Errorf("expected ErrEventNotFound, got %v", err)
	}
	if _, err := deps.ResolveEvent(ctx, "u1", "", "", boundary); err != ErrEventNotFound {
		t.Errorf("empty reference should be ErrEventNotFound, got %v", err)
	}
}

func TestResolveEventStaleIndexEntry(t *testing.T) {
	deps, _, _ := newTestDeps(t)
	ctx := context.Background()
	now := deps.Clock()

	deps.Index.IndexEvent(ctx, vectordb.EventDoc{EventID: "gone", UserID: "u1", Title: "standup", StartDate: now})
	if _, err := deps.ResolveEvent(ctx, "u1", "standup", "", BoundaryFor(now, time.UTC, nil)); err != ErrEventNotFound {
		t.Errorf("stale index hit should resolve to ErrEventNotFound, got %v", err)
	}
}

func TestDisambiguateAttendees(t *testing.T) {
	deps, _, _ := newTestDeps(t)
	ctx := context.Background()

	err := deps.Contacts.Upsert(ctx, &contacts.Contact{
		ID: "c1", UserID: "u1", Name: "Joe Miller",
		Emails: []calendar.EmailEntry{{Value: "old@example.com"}, {Primary: true, Value: "joe@example.com"}},
	})
	if err != nil {
		t.Fatalf("seeding contact: %v", err)
	}

	params := []extraction.AttendeeParam{
		{Name: "Joe Miller"},
		{Name: "Nobody Known"},
		{Name: "Ana", Email: "ana@example.com"},
	}
	attendees, err := deps.DisambiguateAttendees(ctx, "u1", "e1", params)
	if err != nil {
		t.Fatalf("DisambiguateAttendees: %v", err)
	}
	if len(attendees) != 3 {
		t.Fatalf("got %d attendees", len(attendees))
	}
	if got := AttendeeEmails(attendees); len(got) != 2 || got[0] != "joe@example.com" || got[1] != "ana@example.com" {
		t.Errorf("AttendeeEmails = %v", got)
	}
	if attendees[1].Emails != nil {
		t.Error("unknown contact should stay email-less")
	}
	if attendees[0].ContactID != "c1" {
		t.Errorf("resolved attendee should link its contact, got %q", attendees[0].ContactID)
	}
}
