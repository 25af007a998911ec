package editevent

import (
	"context"
	"fmt"

	"github.com/ziadkadry99/cal-pilot/internal/calendar"
	"github.com/ziadkadry99/cal-pilot/internal/conferencing"
	"github.com/ziadkadry99/cal-pilot/internal/skills"
	"github.com/ziadkadry99/cal-pilot/internal/vectordb"
)

// Execute runs the plan's mutations in their fixed order: old reminder
// and preference rows go first, then the conference step, then the old
// buffer events, then the provider patch, then the new rows, and the
// index last. Steps are not transactional; a failure surfaces as an
// error after the earlier steps have already applied.
func Execute(ctx context.Context, deps *skills.Deps, plan *Plan) error {
	event := plan.Event

	if plan.ReplaceReminders {
		if err := deps.Store.DeleteRemindersForEvents(ctx, []string{event.ID}, event.UserID); err != nil {
			return fmt.Errorf("deleting old reminders: %w", err)
		}
	}
	if plan.ReplaceTimeRanges {
		if _, err := deps.Store.DeletePreferredTimeRangesForEvent(ctx, event.ID); err != nil {
			return fmt.Errorf("deleting old preferred time ranges: %w", err)
		}
	}

	if err := runConference(ctx, deps, plan); err != nil {
		return err
	}

	for _, id := range plan.RemoveEventIDs {
		if err := removeBufferEvent(ctx, deps, event, id); err != nil {
			return err
		}
	}

	callCtx, cancel := deps.CallCtx(ctx)
	err := deps.Calendar.PatchEvent(callCtx, event.UserID, event.CalendarID, event.ProviderEventID, plan.Patch)
	cancel()
	if err != nil {
		return fmt.Errorf("patching provider event: %w", err)
	}

	upserts := []*calendar.Event{event}
	for _, buffer := range []*calendar.Event{plan.PreEvent, plan.PostEvent} {
		if buffer == nil {
			continue
		}
		if err := createBufferEvent(ctx, deps, buffer); err != nil {
			return err
		}
		upserts = append(upserts, buffer)
	}
	if err := deps.Store.UpsertEvents(ctx, upserts); err != nil {
		return fmt.Errorf("saving events: %w", err)
	}

	if len(plan.Reminders) > 0 {
		if err := deps.Store.InsertReminders(ctx, plan.Reminders); err != nil {
			return fmt.Errorf("saving reminders: %w", err)
		}
	}
	if len(plan.TimeRanges) > 0 {
		if err := deps.Store.UpsertPreferredTimeRanges(ctx, plan.TimeRanges); err != nil {
			return fmt.Errorf("saving preferred time ranges: %w", err)
		}
	}
	if len(plan.Attendees) > 0 {
		if err := deps.Store.UpsertAttendees(ctx, plan.Attendees); err != nil {
			return fmt.Errorf("saving attendees: %w", err)
		}
	}

	doc := vectordb.EventDoc{EventID: event.ID, UserID: event.UserID, Title: event.Title, StartDate: event.StartDate}
	if err := deps.Index.IndexEvent(ctx, doc); err != nil {
		return fmt.Errorf("indexing event: %w", err)
	}
	if plan.TrainIndex {
		if err := deps.Index.TrainEvent(ctx, doc); err != nil {
			return fmt.Errorf("training index: %w", err)
		}
	}
	return nil
}

// runConference applies the planned conference step. A conferencing
// backend failure downgrades the event to no conference instead of
// failing the edit: the time change matters more than the meeting
// link.
func runConference(ctx context.Context, deps *skills.Deps, plan *Plan) error {
	action := plan.Conference
	if action.Kind == ConferenceNone {
		return nil
	}
	event := plan.Event

	provider, ok := deps.Conferencing[action.App]
	if !ok {
		deps.Logf("no conferencing backend for %s, dropping conference from event %s", action.App, event.ID)
		return degradeConference(plan)
	}

	req := conferencing.MeetingRequest{
		Topic:      event.Title,
		Start:      event.StartDate,
		Timezone:   event.Timezone,
		Duration:   event.Duration,
		Invitees:   plan.Patch.AttendeeEmails,
		Recurrence: event.RecurrenceRule,
	}

	switch action.Kind {
	case ConferenceUpdate:
		callCtx, cancel := deps.CallCtx(ctx)
		err := provider.UpdateMeeting(callCtx, event.UserID, action.OldConferenceID, req)
		cancel()
		if err != nil {
			deps.Logf("updating meeting %s failed: %v; dropping conference from event %s", action.OldConferenceID, err, event.ID)
			return degradeConference(plan)
		}
		conference, err := deps.Store.GetConference(ctx, action.OldConferenceID)
		if err != nil {
			return fmt.Errorf("loading conference: %w", err)
		}
		if conference == nil {
			conference = &calendar.Conference{ID: action.OldConferenceID, UserID: event.UserID, CalendarID: event.CalendarID, IsHost: true}
		}
		conference.App = action.App
		conference.Name = event.Title
		if err := deps.Store.UpsertConference(ctx, conference); err != nil {
			return fmt.Errorf("saving conference: %w", err)
		}
		return attachConference(plan, conference)

	case ConferenceRecreate:
		callCtx, cancel := deps.CallCtx(ctx)
		err := provider.DeleteMeeting(callCtx, event.UserID, action.OldConferenceID)
		cancel()
		if err != nil {
			// The old meeting may already be gone on the backend.
			deps.Logf("deleting meeting %s failed: %v", action.OldConferenceID, err)
		}
		if err := deps.Store.DeleteConference(ctx, action.OldConferenceID); err != nil {
			return fmt.Errorf("deleting old conference: %w", err)
		}
		fallthrough

	case ConferenceCreate:
		callCtx, cancel := deps.CallCtx(ctx)
		meeting, err := provider.CreateMeeting(callCtx, event.UserID, req)
		cancel()
		if err != nil {
			deps.Logf("creating meeting failed: %v; dropping conference from event %s", err, event.ID)
			return degradeConference(plan)
		}
		conference := &calendar.Conference{
			ID: meeting.ID, UserID: event.UserID, CalendarID: event.CalendarID,
			App: action.App, Name: event.Title, JoinURL: meeting.JoinURL, StartURL: meeting.StartURL, IsHost: true,
		}
		if meeting.JoinURL != "" {
			conference.EntryPoints = []calendar.EntryPoint{{Type: "video", URI: meeting.JoinURL, Password: meeting.Password}}
		}
		if err := deps.Store.UpsertConference(ctx, conference); err != nil {
			return fmt.Errorf("saving conference: %w", err)
		}
		return attachConference(plan, conference)
	}
	return nil
}

func attachConference(plan *Plan, conference *calendar.Conference) error {
	plan.Event.ConferenceID = conference.ID
	plan.Patch.Conference = &calendar.ConferenceSolution{
		Type:         "addOn",
		Name:         string(conference.App),
		ConferenceID: conference.ID,
		EntryPoints:  conference.EntryPoints,
	}
	return nil
}

func degradeConference(plan *Plan) error {
	plan.Event.ConferenceID = ""
	plan.Patch.Conference = nil
	return nil
}

func removeBufferEvent(ctx context.Context, deps *skills.Deps, main *calendar.Event, id string) error {
	buffer, err := deps.Store.GetEvent(ctx, id)
	if err != nil {
		return fmt.Errorf("loading buffer event %s: %w", id, err)
	}
	if buffer == nil {
		return nil
	}
	if buffer.ProviderEventID != "" {
		callCtx, cancel := deps.CallCtx(ctx)
		err := deps.Calendar.DeleteEvent(callCtx, main.UserID, buffer.CalendarID, buffer.ProviderEventID)
		cancel()
		if err != nil {
			return fmt.Errorf("deleting provider buffer event %s: %w", id, err)
		}
	}
	if err := deps.Store.DeleteEvent(ctx, id); err != nil {
		return fmt.Errorf("deleting buffer event %s: %w", id, err)
	}
	if err := deps.Index.DeleteEvent(ctx, id); err != nil {
		return fmt.Errorf("unindexing buffer event %s: %w", id, err)
	}
	return nil
}

func createBufferEvent(ctx context.Context, deps *skills.Deps, buffer *calendar.Event) error {
	patch := calendar.EventPatch{
		Summary:      calendar.String(buffer.Title),
		Start:        calendar.Time(buffer.StartDate),
		End:          calendar.Time(buffer.EndDate),
		Timezone:     calendar.String(buffer.Timezone),
		Transparency: calendar.String("opaque"),
	}
	callCtx, cancel := deps.CallCtx(ctx)
	created, err := deps.Calendar.CreateEvent(callCtx, buffer.UserID, buffer.CalendarID, buffer.ID, patch)
	cancel()
	if err != nil {
		return fmt.Errorf("creating provider buffer event: %w", err)
	}
	buffer.ProviderEventID = created.ProviderEventID
	return nil
}
