package extraction

// AttendeeParam is an attendee as the user mentioned them: possibly a
// bare name that still needs an email looked up from contacts.
type AttendeeParam struct {
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	IsHost bool   `json:"isHost,omitempty"`
}

// ConferenceParam names the conferencing app the user asked for.
type ConferenceParam struct {
	App string `json:"app,omitempty"` // "google" or "zoom"
}

// BufferTimeParam is the requested padding around the event, minutes.
type BufferTimeParam struct {
	BeforeEvent int `json:"beforeEvent,omitempty"`
	AfterEvent  int `json:"afterEvent,omitempty"`
}

// RecurParam is the recurrence the user described.
type RecurParam struct {
	Frequency  string   `json:"frequency,omitempty"` // daily, weekly, monthly, yearly
	Interval   int      `json:"interval,omitempty"`
	ByWeekDay  []string `json:"byWeekDay,omitempty"` // MO..SU
	ByMonthDay []int    `json:"byMonthDay,omitempty"`
	Occurrence int      `json:"occurrence,omitempty"`
	EndDate    string   `json:"endDate,omitempty"` // RFC 3339
}

// Params are the non-temporal attributes pulled out of one user turn.
type Params struct {
	Title        string           `json:"title,omitempty"`
	Summary      string           `json:"summary,omitempty"`
	OldTitle     string           `json:"oldTitle,omitempty"`
	Description  string           `json:"description,omitempty"`
	Notes        string           `json:"notes,omitempty"`
	TaskList     string           `json:"taskList,omitempty"`
	Location     string           `json:"location,omitempty"`
	Attendees    []AttendeeParam  `json:"attendees,omitempty"`
	Conference   *ConferenceParam `json:"conference,omitempty"`
	BufferTime   *BufferTimeParam `json:"bufferTime,omitempty"`
	Alarms       []int            `json:"alarms,omitempty"` // minutes before start
	Priority     int              `json:"priority,omitempty"`
	Transparency string           `json:"transparency,omitempty"` // opaque, transparent
	Visibility   string           `json:"visibility,omitempty"`   // default, public, private
	IsFollowUp   *bool            `json:"isFollowUp,omitempty"`
	IsBreak      *bool            `json:"isBreak,omitempty"`
}

// IntentPayload is the structured result of intent extraction.
type IntentPayload struct {
	Params Params `json:"params"`
}

// RelativeTime is an offset like "in two hours".
type RelativeTime struct {
	Value int    `json:"value"`
	Unit  string `json:"unit"` // minute, hour, day, week, month, year
}

// TimeRange is a clock interval in HH:MM form.
type TimeRange struct {
	StartTime string `json:"startTime,omitempty"`
	EndTime   string `json:"endTime,omitempty"`
}

// TimePreference is one preferred window the user stated, possibly
// scoped to weekdays. DayOfWeek uses ISO numbering, 0 meaning any day.
type TimePreference struct {
	DayOfWeek []int     `json:"dayOfWeek,omitempty"`
	TimeRange TimeRange `json:"timeRange,omitempty"`
}

// DateTimePayload is the structured result of date/time extraction.
// Pointer fields distinguish "not mentioned" from a zero value.
type DateTimePayload struct {
	Year                      *int             `json:"year,omitempty"`
	Month                     *int             `json:"month,omitempty"`
	Day                       *int             `json:"day,omitempty"`
	ISOWeekday                *int             `json:"isoWeekday,omitempty"` // 1 = Monday
	Hour                      *int             `json:"hour,omitempty"`
	Minute                    *int             `json:"minute,omitempty"`
	StartTime                 string           `json:"startTime,omitempty"` // HH:MM
	EndTime                   string           `json:"endTime,omitempty"`
	Duration                  *int             `json:"duration,omitempty"` // minutes
	RelativeTimeChangeFromNow string           `json:"relativeTimeChangeFromNow,omitempty"` // add, subtract
	RelativeTimeFromNow       []RelativeTime   `json:"relativeTimeFromNow,omitempty"`
	Recur                     *RecurParam      `json:"recur,omitempty"`
	TimePreferences           []TimePreference `json:"timePreferences,omitempty"`
	AllDay                    *bool            `json:"allDay,omitempty"`
	Method                    string           `json:"method,omitempty"`
}

// HasDate reports whether the payload pins a calendar day.
func (p *DateTimePayload) HasDate() bool {
	return p != nil && (p.Day != nil || p.ISOWeekday != nil || len(p.RelativeTimeFromNow) > 0)
}

// HasTime reports whether the payload pins a clock time.
func (p *DateTimePayload) HasTime() bool {
	return p != nil && (p.Hour != nil || p.Minute != nil || p.StartTime != "")
}
