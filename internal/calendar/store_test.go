package calendar

import (
	"context"
	"testing"
	"time"

	"github.com/ziadkadry99/cal-pilot/internal/db"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	d, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return NewStore(d)
}

func testEvent(id string) *Event {
	return &Event{
		ID:         id,
		UserID:     "u1",
		CalendarID: "cal",
		Title:      "standup",
		StartDate:  time.Date(2026, 3, 3, 9, 30, 0, 0, time.UTC),
		EndDate:    time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC),
		Duration:   30,
		Timezone:   "UTC",
		Priority:   1,
		Modifiable: true,
	}
}

func TestEventRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ev := testEvent("evt1")
	ev.RecurrenceRule = &RecurrenceRule{Frequency: FreqWeekly, Interval: 1, ByWeekDay: []string{"TU"}}
	ev.BufferTime = &BufferTime{BeforeEvent: 10, AfterEvent: 5}
	ev.Modified = ModifiedFlags{Reminders: true}

	if err := s.UpsertEvents(ctx, []*Event{ev}); err != nil {
		t.Fatalf("UpsertEvents() error: %v", err)
	}

	got, err := s.GetEvent(ctx, "evt1")
	if err != nil {
		t.Fatalf("GetEvent() error: %v", err)
	}
	if got == nil {
		t.Fatal("event not found after upsert")
	}
	if got.Title != "standup" || got.Duration != 30 || !got.Modifiable {
		t.Errorf("event = %+v", got)
	}
	if !got.StartDate.Equal(ev.StartDate) {
		t.Errorf("StartDate = %v, want %v", got.StartDate, ev.StartDate)
	}
	if got.RecurrenceRule == nil || got.RecurrenceRule.Frequency != FreqWeekly {
		t.Errorf("RecurrenceRule = %+v", got.RecurrenceRule)
	}
	if got.BufferTime == nil || got.BufferTime.BeforeEvent != 10 {
		t.Errorf("BufferTime = %+v", got.BufferTime)
	}
	if !got.Modified.Reminders {
		t.Errorf("Modified = %+v", got.Modified)
	}
}

func TestUpsertEventsUpdatesExisting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ev := testEvent("evt1")
	if err := s.UpsertEvents(ctx, []*Event{ev}); err != nil {
		t.Fatalf("UpsertEvents() error: %v", err)
	}

	ev.Title = "renamed standup"
	ev.StartDate = ev.StartDate.Add(time.Hour)
	if err := s.UpsertEvents(ctx, []*Event{ev}); err != nil {
		t.Fatalf("UpsertEvents() update error: %v", err)
	}

	got, err := s.GetEvent(ctx, "evt1")
	if err != nil || got == nil {
		t.Fatalf("GetEvent() error: %v", err)
	}
	if got.Title != "renamed standup" {
		t.Errorf("Title = %q after update", got.Title)
	}

	events, err := s.ListEvents(ctx, "u1")
	if err != nil {
		t.Fatalf("ListEvents() error: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("got %d events, want 1 (upsert must not duplicate)", len(events))
	}
}

func TestDeleteEventIsSoft(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.UpsertEvents(ctx, []*Event{testEvent("evt1")}); err != nil {
		t.Fatalf("UpsertEvents() error: %v", err)
	}
	if err := s.DeleteEvent(ctx, "evt1"); err != nil {
		t.Fatalf("DeleteEvent() error: %v", err)
	}

	events, err := s.ListEvents(ctx, "u1")
	if err != nil {
		t.Fatalf("ListEvents() error: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("deleted event still listed: %d", len(events))
	}
}

func TestConferenceRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c := &Conference{
		ID:         "conf1",
		UserID:     "u1",
		CalendarID: "cal",
		App:        AppZoom,
		Name:       "standup",
		JoinURL:    "https://zoom.example.com/j/1",
		EntryPoints: []EntryPoint{
			{Type: "video", URI: "https://zoom.example.com/j/1"},
		},
	}
	if err := s.UpsertConference(ctx, c); err != nil {
		t.Fatalf("UpsertConference() error: %v", err)
	}

	got, err := s.GetConference(ctx, "conf1")
	if err != nil || got == nil {
		t.Fatalf("GetConference() error: %v", err)
	}
	if got.App != AppZoom || got.JoinURL == "" || len(got.EntryPoints) != 1 {
		t.Errorf("conference = %+v", got)
	}

	if err := s.DeleteConference(ctx, "conf1"); err != nil {
		t.Fatalf("DeleteConference() error: %v", err)
	}
	gone, err := s.GetConference(ctx, "conf1")
	if err != nil {
		t.Fatalf("GetConference() after delete error: %v", err)
	}
	if gone != nil {
		t.Error("conference still readable after delete")
	}
}

func TestReminderReplacement(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	old := []Reminder{
		{ID: "r1", EventID: "evt1", UserID: "u1", Minutes: 10},
		{ID: "r2", EventID: "evt1", UserID: "u1", Minutes: 30},
	}
	if err := s.InsertReminders(ctx, old); err != nil {
		t.Fatalf("InsertReminders() error: %v", err)
	}

	if err := s.DeleteRemindersForEvents(ctx, []string{"evt1"}, "u1"); err != nil {
		t.Fatalf("DeleteRemindersForEvents() error: %v", err)
	}
	if err := s.InsertReminders(ctx, []Reminder{{ID: "r3", EventID: "evt1", UserID: "u1", Minutes: 5}}); err != nil {
		t.Fatalf("InsertReminders() replacement error: %v", err)
	}

	got, err := s.ListRemindersForEvent(ctx, "evt1")
	if err != nil {
		t.Fatalf("ListRemindersForEvent() error: %v", err)
	}
	if len(got) != 1 || got[0].Minutes != 5 {
		t.Errorf("reminders = %+v, want single 5-minute reminder", got)
	}
}

func TestPreferredTimeRanges(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ranges := []PreferredTimeRange{
		{ID: "p1", EventID: "evt1", UserID: "u1", DayOfWeek: 2, StartTime: "09:00", EndTime: "11:00"},
		{ID: "p2", EventID: "evt1", UserID: "u1", DayOfWeek: 4, StartTime: "09:00", EndTime: "11:00"},
	}
	if err := s.UpsertPreferredTimeRanges(ctx, ranges); err != nil {
		t.Fatalf("UpsertPreferredTimeRanges() error: %v", err)
	}

	got, err := s.ListPreferredTimeRangesForEvent(ctx, "evt1")
	if err != nil {
		t.Fatalf("ListPreferredTimeRangesForEvent() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d ranges, want 2", len(got))
	}

	removed, err := s.DeletePreferredTimeRangesForEvent(ctx, "evt1")
	if err != nil {
		t.Fatalf("DeletePreferredTimeRangesForEvent() error: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	left, err := s.ListPreferredTimeRangesForEvent(ctx, "evt1")
	if err != nil {
		t.Fatalf("ListPreferredTimeRangesForEvent() after delete error: %v", err)
	}
	if len(left) != 0 {
		t.Errorf("ranges left after delete: %d", len(left))
	}
}

func TestAttendeesRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	attendees := []Attendee{
		{ID: "a1", EventID: "evt1", UserID: "u1", Name: "Ana Silva", Emails: []EmailEntry{{Primary: true, Value: "ana@example.com"}}},
	}
	if err := s.UpsertAttendees(ctx, attendees); err != nil {
		t.Fatalf("UpsertAttendees() error: %v", err)
	}

	got, err := s.ListAttendeesForEvent(ctx, "evt1")
	if err != nil {
		t.Fatalf("ListAttendeesForEvent() error: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Ana Silva" || len(got[0].Emails) != 1 {
		t.Errorf("attendees = %+v", got)
	}
}

func TestAllEventsSpansUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := testEvent("evt1")
	b := testEvent("evt2")
	b.UserID = "u2"
	if err := s.UpsertEvents(ctx, []*Event{a, b}); err != nil {
		t.Fatalf("UpsertEvents() error: %v", err)
	}

	all, err := s.AllEvents(ctx)
	if err != nil {
		t.Fatalf("AllEvents() error: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("got %d events, want 2", len(all))
	}
}
