package editevent

import (
	"github.com/ziadkadry99/cal-pilot/internal/extraction"
)

// EventDraft is the accumulated picture of what the user wants changed,
// built up across turns. Zero values mean "not mentioned yet".
type EventDraft struct {
	Title           string                      `json:"title,omitempty"`
	OldTitle        string                      `json:"oldTitle,omitempty"`
	Notes           string                      `json:"notes,omitempty"`
	Location        string                      `json:"location,omitempty"`
	TaskList        string                      `json:"taskList,omitempty"`
	Attendees       []extraction.AttendeeParam  `json:"attendees,omitempty"`
	Conference      *extraction.ConferenceParam `json:"conference,omitempty"`
	BufferTime      *extraction.BufferTimeParam `json:"bufferTime,omitempty"`
	Alarms          []int                       `json:"alarms,omitempty"`
	Priority        int                         `json:"priority,omitempty"`
	Transparency    string                      `json:"transparency,omitempty"`
	Visibility      string                      `json:"visibility,omitempty"`
	IsFollowUp      *bool                       `json:"isFollowUp,omitempty"`
	IsBreak         *bool                       `json:"isBreak,omitempty"`
	Recur           *extraction.RecurParam      `json:"recur,omitempty"`
	TimePreferences []extraction.TimePreference `json:"timePreferences,omitempty"`
}

// BuildDraft assembles the first-turn draft from the two extraction
// payloads. Priority defaults to 1 so an unstated priority never reads
// as urgent.
func BuildDraft(params extraction.Params, dt *extraction.DateTimePayload) *EventDraft {
	d := &EventDraft{
		Title:        params.Title,
		OldTitle:     params.OldTitle,
		Notes:        params.Description,
		Location:     params.Location,
		TaskList:     params.TaskList,
		Attendees:    params.Attendees,
		Conference:   params.Conference,
		BufferTime:   params.BufferTime,
		Alarms:       params.Alarms,
		Priority:     params.Priority,
		Transparency: params.Transparency,
		Visibility:   params.Visibility,
		IsFollowUp:   params.IsFollowUp,
		IsBreak:      params.IsBreak,
	}
	if d.Title == "" {
		d.Title = params.Summary
	}
	if d.Notes == "" {
		d.Notes = params.Notes
	}
	if d.Priority <= 0 {
		d.Priority = 1
	}
	if dt != nil {
		d.Recur = dt.Recur
		d.TimePreferences = dt.TimePreferences
	}
	return d
}

// MergeDraft folds a follow-up turn's draft into the carried one.
// Carried values win: the follow-up only fills what earlier turns left
// blank, so an answer to "which day?" cannot silently overwrite the
// title the user already gave. Lists follow the same rule wholesale: a
// carried non-empty list is kept as-is.
func MergeDraft(carried, incoming *EventDraft) *EventDraft {
	if carried == nil {
		return incoming
	}
	if incoming == nil {
		return carried
	}
	out := *carried
	if out.Title == "" {
		out.Title = incoming.Title
	}
	if out.OldTitle == "" {
		out.OldTitle = incoming.OldTitle
	}
	if out.Notes == "" {
		out.Notes = incoming.Notes
	}
	if out.Location == "" {
		out.Location = incoming.Location
	}
	if out.TaskList == "" {
		out.TaskList = incoming.TaskList
	}
	if len(out.Attendees) == 0 {
		out.Attendees = incoming.Attendees
	}
	if out.Conference == nil {
		out.Conference = incoming.Conference
	}
	if out.BufferTime == nil {
		out.BufferTime = incoming.BufferTime
	}
	if len(out.Alarms) == 0 {
		out.Alarms = incoming.Alarms
	}
	if out.Priority <= 1 && incoming.Priority > 1 {
		out.Priority = incoming.Priority
	}
	if out.Transparency == "" {
		out.Transparency = incoming.Transparency
	}
	if out.Visibility == "" {
		out.Visibility = incoming.Visibility
	}
	if out.IsFollowUp == nil {
		out.IsFollowUp = incoming.IsFollowUp
	}
	if out.IsBreak == nil {
		out.IsBreak = incoming.IsBreak
	}
	if out.Recur == nil {
		out.Recur = incoming.Recur
	}
	if len(out.TimePreferences) == 0 {
		out.TimePreferences = incoming.TimePreferences
	}
	return &out
}

// MergeDateTime folds a follow-up date payload into the carried one,
// with the same carried-wins rule applied field by field.
func MergeDateTime(carried, incoming *extraction.DateTimePayload) *extraction.DateTimePayload {
	if carried == nil {
		return incoming
	}
	if incoming == nil {
		return carried
	}
	out := *carried
	if out.Year == nil {
		out.Year = incoming.Year
	}
	if out.Month == nil {
		out.Month = incoming.Month
	}
	if out.Day == nil {
		out.Day = incoming.Day
	}
	if out.ISOWeekday == nil {
		out.ISOWeekday = incoming.ISOWeekday
	}
	if out.Hour == nil {
		out.Hour = incoming.Hour
	}
	if out.Minute == nil {
		out.Minute = incoming.Minute
	}
	if out.StartTime == "" {
		out.StartTime = incoming.StartTime
	}
	if out.EndTime == "" {
		out.EndTime = incoming.EndTime
	}
	if out.Duration == nil {
		out.Duration = incoming.Duration
	}
	if out.RelativeTimeChangeFromNow == "" {
		out.RelativeTimeChangeFromNow = incoming.RelativeTimeChangeFromNow
	}
	if len(out.RelativeTimeFromNow) == 0 {
		out.RelativeTimeFromNow = incoming.RelativeTimeFromNow
	}
	if out.Recur == nil {
		out.Recur = incoming.Recur
	}
	if len(out.TimePreferences) == 0 {
		out.TimePreferences = incoming.TimePreferences
	}
	if out.AllDay == nil {
		out.AllDay = incoming.AllDay
	}
	if out.Method == "" {
		out.Method = incoming.Method
	}
	return &out
}
