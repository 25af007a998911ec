package skills

import (
	"strings"
	"testing"
	"time"

	"github.com/ziadkadry99/cal-pilot/internal/calendar"
	"github.com/ziadkadry99/cal-pilot/internal/extraction"
)

func intp(v int) *int { return &v }

// 2026-03-02 is a Monday.
var testNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func TestBoundaryForDefaults(t *testing.T) {
	b := BoundaryFor(testNow, time.UTC, nil)
	if got := testNow.Sub(b.Start); got != defaultLookback {
		t.Errorf("lookback = %v", got)
	}
	if got := b.End.Sub(testNow); got != defaultLookahead {
		t.Errorf("lookahead = %v", got)
	}
}

func TestBoundaryForPinnedDay(t *testing.T) {
	dt := &extraction.DateTimePayload{Day: intp(15)}
	b := BoundaryFor(testNow, time.UTC, dt)
	if b.Start != time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC) {
		t.Errorf("start = %v", b.Start)
	}
	if b.End.Day() != 15 || b.End.Hour() != 23 {
		t.Errorf("end = %v", b.End)
	}
}

func TestBoundaryForWeekday(t *testing.T) {
	dt := &extraction.DateTimePayload{ISOWeekday: intp(4)} // Thursday
	b := BoundaryFor(testNow, time.UTC, dt)
	if b.Start != time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC) {
		t.Errorf("start = %v, want Thursday of the same week", b.Start)
	}
}

func TestBoundaryForRelative(t *testing.T) {
	dt := &extraction.DateTimePayload{
		RelativeTimeFromNow:       []extraction.RelativeTime{{Value: 1, Unit: "week"}},
		RelativeTimeChangeFromNow: "add",
	}
	b := BoundaryFor(testNow, time.UTC, dt)
	if b.Start != time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC) {
		t.Errorf("start = %v, want one week out", b.Start)
	}
}

func TestBoundaryOrdering(t *testing.T) {
	dt := &extraction.DateTimePayload{
		RelativeTimeFromNow:       []extraction.RelativeTime{{Value: 3, Unit: "day"}},
		RelativeTimeChangeFromNow: "subtract",
	}
	b := BoundaryFor(testNow, time.UTC, dt)
	if b.End.Before(b.Start) {
		t.Errorf("boundary out of order: %v .. %v", b.Start, b.End)
	}
}

func TestExtrapolateStartKeepsUnstatedComponents(t *testing.T) {
	oldStart := time.Date(2026, 3, 3, 9, 30, 0, 0, time.UTC)

	// Only an hour stated: day and minute stay.
	got := ExtrapolateStart(oldStart, testNow, time.UTC, &extraction.DateTimePayload{Hour: intp(15)})
	want := time.Date(2026, 3, 3, 15, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	// Nothing stated: unchanged.
	if got := ExtrapolateStart(oldStart, testNow, time.UTC, nil); !got.Equal(oldStart) {
		t.Errorf("nil payload moved start to %v", got)
	}
}

func TestExtrapolateStartWeekdayAndClock(t *testing.T) {
	oldStart := time.Date(2026, 2, 24, 9, 30, 0, 0, time.UTC)
	dt := &extraction.DateTimePayload{ISOWeekday: intp(2), StartTime: "15:00"}

	got := ExtrapolateStart(oldStart, testNow, time.UTC, dt)
	want := time.Date(2026, 3, 3, 15, 0, 0, 0, time.UTC) // Tuesday of the current week
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExtrapolateStartRelative(t *testing.T) {
	oldStart := time.Date(2026, 2, 24, 9, 30, 0, 0, time.UTC)
	dt := &extraction.DateTimePayload{
		RelativeTimeFromNow:       []extraction.RelativeTime{{Value: 2, Unit: "hour"}},
		RelativeTimeChangeFromNow: "add",
	}
	got := ExtrapolateStart(oldStart, testNow, time.UTC, dt)
	want := testNow.Add(2 * time.Hour)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExtrapolateStartAllDay(t *testing.T) {
	oldStart := time.Date(2026, 3, 3, 9, 30, 0, 0, time.UTC)
	allDay := true
	got := ExtrapolateStart(oldStart, testNow, time.UTC, &extraction.DateTimePayload{AllDay: &allDay})
	if got.Hour() != 0 || got.Minute() != 0 {
		t.Errorf("all-day start should be midnight, got %v", got)
	}
}

func TestResolveEnd(t *testing.T) {
	start := time.Date(2026, 3, 3, 15, 0, 0, 0, time.UTC)

	// Explicit end time wins over duration.
	dt := &extraction.DateTimePayload{EndTime: "16:30", Duration: intp(15)}
	end, dur := ResolveEnd(start, 30*time.Minute, dt)
	if end.Hour() != 16 || end.Minute() != 30 || dur != 90*time.Minute {
		t.Errorf("end = %v dur = %v", end, dur)
	}

	// Duration when no end time.
	end, dur = ResolveEnd(start, 30*time.Minute, &extraction.DateTimePayload{Duration: intp(45)})
	if dur != 45*time.Minute || !end.Equal(start.Add(45*time.Minute)) {
		t.Errorf("end = %v dur = %v", end, dur)
	}

	// Neither: keep the old span.
	end, dur = ResolveEnd(start, 30*time.Minute, nil)
	if dur != 30*time.Minute || !end.Equal(start.Add(30*time.Minute)) {
		t.Errorf("end = %v dur = %v", end, dur)
	}

	// End before start rolls to the next day.
	end, _ = ResolveEnd(start, 0, &extraction.DateTimePayload{EndTime: "01:00"})
	if !end.After(start) {
		t.Errorf("end %v should be after start %v", end, start)
	}
}

func TestBuildRRule(t *testing.T) {
	start := time.Date(2026, 3, 3, 15, 0, 0, 0, time.UTC)
	rule := &calendar.RecurrenceRule{
		Frequency: calendar.FreqWeekly,
		Interval:  2,
		ByWeekDay: []string{"TU", "TH"},
	}
	s, err := BuildRRule(rule, start)
	if err != nil {
		t.Fatalf("BuildRRule: %v", err)
	}
	for _, want := range []string{"FREQ=WEEKLY", "INTERVAL=2", "TU", "TH"} {
		if !strings.Contains(s, want) {
			t.Errorf("rrule %q missing %s", s, want)
		}
	}

	if s, err := BuildRRule(nil, start); err != nil || s != "" {
		t.Errorf("nil rule should render empty, got %q, %v", s, err)
	}

	if _, err := BuildRRule(&calendar.RecurrenceRule{Frequency: "fortnightly"}, start); err == nil {
		t.Error("unknown frequency should fail")
	}
}

func TestRecurrenceFromParam(t *testing.T) {
	rule, err := RecurrenceFromParam("weekly", 0, []string{"MO"}, nil, 10, "")
	if err != nil {
		t.Fatalf("RecurrenceFromParam: %v", err)
	}
	if rule.Interval != 1 {
		t.Errorf("interval should default to 1, got %d", rule.Interval)
	}
	if rule.Occurrence != 10 {
		t.Errorf("occurrence = %d", rule.Occurrence)
	}

	if rule, err := RecurrenceFromParam("", 0, nil, nil, 0, ""); err != nil || rule != nil {
		t.Errorf("empty frequency should yield no rule, got %v, %v", rule, err)
	}

	if _, err := RecurrenceFromParam("weekly", 1, nil, nil, 0, "not-a-date"); err == nil {
		t.Error("bad end date should fail")
	}
}
