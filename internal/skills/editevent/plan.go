package editevent

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/cal-pilot/internal/calendar"
	"github.com/ziadkadry99/cal-pilot/internal/extraction"
	"github.com/ziadkadry99/cal-pilot/internal/skills"
)

// ConferenceActionKind discriminates what has to happen to the event's
// conference.
type ConferenceActionKind string

const (
	// ConferenceNone leaves the conference untouched.
	ConferenceNone ConferenceActionKind = "none"
	// ConferenceCreate attaches a new meeting to an event that has none.
	ConferenceCreate ConferenceActionKind = "create"
	// ConferenceUpdate moves the existing meeting, same app.
	ConferenceUpdate ConferenceActionKind = "update"
	// ConferenceRecreate switches apps: the old meeting is deleted and a
	// new one created on the requested app.
	ConferenceRecreate ConferenceActionKind = "recreate"
)

// ConferenceAction is the planned conference step. OldConferenceID is
// set for update and recreate.
type ConferenceAction struct {
	Kind            ConferenceActionKind
	App             calendar.ConferenceApp
	OldConferenceID string
}

// Plan is every mutation one edit turn will run, decided up front so
// the execution step is a straight walk with no further branching.
type Plan struct {
	Event *calendar.Event
	Patch calendar.EventPatch

	Conference ConferenceAction

	// Old buffer events to remove, and their replacements.
	RemoveEventIDs []string
	PreEvent       *calendar.Event
	PostEvent      *calendar.Event

	// Full-replacement diffs: the delete side always runs when the
	// replace flag is set, even if the new list is empty.
	ReplaceReminders  bool
	Reminders         []calendar.Reminder
	ReplaceTimeRanges bool
	TimeRanges        []calendar.PreferredTimeRange

	Attendees  []calendar.Attendee
	TrainIndex bool
}

// BuildPlan derives the mutation plan for one resolved event from the
// accumulated draft.
func BuildPlan(ctx context.Context, deps *skills.Deps, old *calendar.Event, draft *EventDraft, dt *extraction.DateTimePayload, now time.Time) (*Plan, error) {
	tz, err := time.LoadLocation(old.Timezone)
	if err != nil {
		tz = time.UTC
	}

	event := *old
	patch := calendar.EventPatch{}

	start := skills.ExtrapolateStart(old.StartDate, now, tz, dt)
	oldSpan := old.EndDate.Sub(old.StartDate)
	end, span := skills.ResolveEnd(start, oldSpan, dt)

	timeChanged := !start.Equal(old.StartDate) || !end.Equal(old.EndDate)
	event.StartDate = start
	event.EndDate = end
	event.Duration = int(span / time.Minute)
	if timeChanged {
		patch.Start = calendar.Time(start)
		patch.End = calendar.Time(end)
		event.Modified.Duration = event.Duration != old.Duration
	}

	if draft.Title != "" && draft.Title != old.Title {
		event.Title = draft.Title
		patch.Summary = calendar.String(draft.Title)
	}
	if draft.Notes != "" {
		event.Notes = draft.Notes
		patch.Description = calendar.String(draft.Notes)
	}
	if draft.Location != "" {
		event.Location = draft.Location
		patch.Location = calendar.String(draft.Location)
	}
	if draft.Transparency != "" {
		event.Transparency = draft.Transparency
		patch.Transparency = calendar.String(draft.Transparency)
		event.Modified.Availability = true
	}
	if draft.Visibility != "" {
		event.Visibility = draft.Visibility
		patch.Visibility = calendar.String(draft.Visibility)
	}
	if draft.Priority > 1 {
		event.Priority = draft.Priority
		event.Modified.PriorityLevel = true
	}
	if draft.IsFollowUp != nil {
		event.IsFollowUp = *draft.IsFollowUp
	}
	if draft.IsBreak != nil {
		event.IsBreak = *draft.IsBreak
	}
	if dt != nil && dt.AllDay != nil {
		event.AllDay = *dt.AllDay
		patch.AllDay = calendar.Bool(event.AllDay)
	}

	if draft.Recur != nil {
		rule, err := skills.RecurrenceFromParam(draft.Recur.Frequency, draft.Recur.Interval, draft.Recur.ByWeekDay, draft.Recur.ByMonthDay, draft.Recur.Occurrence, draft.Recur.EndDate)
		if err != nil {
			return nil, err
		}
		rrule, err := skills.BuildRRule(rule, start)
		if err != nil {
			return nil, err
		}
		event.RecurrenceRule = rule
		event.Recurrence = rrule
		patch.Recurrence = calendar.String(rrule)
	}

	plan := &Plan{Event: &event}

	plan.Conference, err = planConference(ctx, deps, old, draft)
	if err != nil {
		return nil, err
	}

	if draft.BufferTime != nil {
		event.BufferTime = &calendar.BufferTime{
			BeforeEvent: draft.BufferTime.BeforeEvent,
			AfterEvent:  draft.BufferTime.AfterEvent,
		}
		event.Modified.TimeBlocking = true
		if old.PreEventID != "" {
			plan.RemoveEventIDs = append(plan.RemoveEventIDs, old.PreEventID)
		}
		if old.PostEventID != "" {
			plan.RemoveEventIDs = append(plan.RemoveEventIDs, old.PostEventID)
		}
		event.PreEventID, event.PostEventID = "", ""
		if draft.BufferTime.BeforeEvent > 0 {
			plan.PreEvent = bufferEvent(&event, -draft.BufferTime.BeforeEvent)
			event.PreEventID = plan.PreEvent.ID
		}
		if draft.BufferTime.AfterEvent > 0 {
			plan.PostEvent = bufferEvent(&event, draft.BufferTime.AfterEvent)
			event.PostEventID = plan.PostEvent.ID
		}
	}

	if len(draft.Alarms) > 0 {
		plan.ReplaceReminders = true
		event.Modified.Reminders = true
		overrides := make([]calendar.ReminderOverride, 0, len(draft.Alarms))
		for _, minutes := range draft.Alarms {
			plan.Reminders = append(plan.Reminders, calendar.Reminder{
				ID:       uuid.NewString(),
				EventID:  event.ID,
				UserID:   event.UserID,
				Minutes:  minutes,
				Timezone: event.Timezone,
			})
			overrides = append(overrides, calendar.ReminderOverride{Method: "popup", Minutes: minutes})
		}
		patch.Reminders = &calendar.ReminderSettings{Overrides: overrides}
	}

	if len(draft.TimePreferences) > 0 {
		plan.ReplaceTimeRanges = true
		event.Modified.TimePreference = true
		plan.TimeRanges = timeRangesFromPreferences(&event, draft.TimePreferences)
	}

	if len(draft.Attendees) > 0 {
		attendees, err := deps.DisambiguateAttendees(ctx, event.UserID, event.ID, draft.Attendees)
		if err != nil {
			return nil, fmt.Errorf("resolving attendees: %w", err)
		}
		plan.Attendees = attendees
		patch.AttendeeEmails = skills.AttendeeEmails(attendees)
	}

	plan.TrainIndex = plan.ReplaceTimeRanges || event.Priority > 1
	plan.Patch = patch
	return plan, nil
}

// planConference decides the conference branch: nothing requested
// leaves it alone; no existing conference creates one; same app moves
// the existing meeting; a different app replaces it.
func planConference(ctx context.Context, deps *skills.Deps, old *calendar.Event, draft *EventDraft) (ConferenceAction, error) {
	if draft.Conference == nil || draft.Conference.App == "" {
		return ConferenceAction{Kind: ConferenceNone}, nil
	}
	app := calendar.ConferenceApp(draft.Conference.App)
	if old.ConferenceID == "" {
		return ConferenceAction{Kind: ConferenceCreate, App: app}, nil
	}

	existing, err := deps.Store.GetConference(ctx, old.ConferenceID)
	if err != nil {
		return ConferenceAction{}, fmt.Errorf("loading conference %s: %w", old.ConferenceID, err)
	}
	if existing == nil || existing.App == app {
		return ConferenceAction{Kind: ConferenceUpdate, App: app, OldConferenceID: old.ConferenceID}, nil
	}
	return ConferenceAction{Kind: ConferenceRecreate, App: app, OldConferenceID: old.ConferenceID}, nil
}

func bufferEvent(main *calendar.Event, minutes int) *calendar.Event {
	e := &calendar.Event{
		ID:         uuid.NewString(),
		UserID:     main.UserID,
		CalendarID: main.CalendarID,
		Timezone:   main.Timezone,
		Priority:   1,
		Modifiable: true,
		IsBreak:    true,
	}
	if minutes < 0 {
		e.Title = "Buffer before " + main.Title
		e.IsPreEvent = true
		e.StartDate = main.StartDate.Add(time.Duration(minutes) * time.Minute)
		e.EndDate = main.StartDate
		e.Duration = -minutes
	} else {
		e.Title = "Buffer after " + main.Title
		e.IsPostEvent = true
		e.StartDate = main.EndDate
		e.EndDate = main.EndDate.Add(time.Duration(minutes) * time.Minute)
		e.Duration = minutes
	}
	return e
}

func timeRangesFromPreferences(event *calendar.Event, prefs []extraction.TimePreference) []calendar.PreferredTimeRange {
	var ranges []calendar.PreferredTimeRange
	for _, p := range prefs {
		days := p.DayOfWeek
		if len(days) == 0 {
			days = []int{0} // any day
		}
		for _, day := range days {
			ranges = append(ranges, calendar.PreferredTimeRange{
				ID:        uuid.NewString(),
				EventID:   event.ID,
				UserID:    event.UserID,
				DayOfWeek: day,
				StartTime: p.TimeRange.StartTime,
				EndTime:   p.TimeRange.EndTime,
			})
		}
	}
	return ranges
}
