package calendar

import "time"

// ConferenceApp identifies which backend hosts a conference.
type ConferenceApp string

const (
	AppGoogle ConferenceApp = "google"
	AppZoom   ConferenceApp = "zoom"
)

// EmailEntry is one address of an attendee or contact.
type EmailEntry struct {
	Primary bool   `json:"primary"`
	Value   string `json:"value"`
}

// EntryPoint describes one way of joining a conference.
type EntryPoint struct {
	Type     string `json:"entryPointType"`
	Label    string `json:"label,omitempty"`
	Password string `json:"password,omitempty"`
	URI      string `json:"uri"`
}

// Conference is a meeting attached to an event, hosted either on the
// calendar platform itself or on a third-party app.
type Conference struct {
	ID          string        `json:"id"`
	UserID      string        `json:"userId"`
	CalendarID  string        `json:"calendarId"`
	App         ConferenceApp `json:"app"`
	Name        string        `json:"name"`
	Notes       string        `json:"notes"`
	JoinURL     string        `json:"joinUrl,omitempty"`
	StartURL    string        `json:"startUrl,omitempty"`
	IsHost      bool          `json:"isHost"`
	EntryPoints []EntryPoint  `json:"entryPoints,omitempty"`
	Deleted     bool          `json:"deleted"`
	CreatedAt   time.Time     `json:"createdDate"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// Attendee is one participant of an event.
type Attendee struct {
	ID        string       `json:"id"`
	EventID   string       `json:"eventId"`
	UserID    string       `json:"userId"`
	ContactID string       `json:"contactId,omitempty"`
	Name      string       `json:"name"`
	Emails    []EmailEntry `json:"emails"`
	Deleted   bool         `json:"deleted"`
	CreatedAt time.Time    `json:"createdDate"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// Reminder is one alarm for an event, minutes before start.
type Reminder struct {
	ID         string    `json:"id"`
	EventID    string    `json:"eventId"`
	UserID     string    `json:"userId"`
	Minutes    int       `json:"minutes"`
	Timezone   string    `json:"timezone"`
	UseDefault bool      `json:"useDefault"`
	Deleted    bool      `json:"deleted"`
	CreatedAt  time.Time `json:"createdDate"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// PreferredTimeRange is one window the user prefers the event to occupy.
// DayOfWeek is ISO (1 = Monday); 0 means any day.
type PreferredTimeRange struct {
	ID        string    `json:"id"`
	EventID   string    `json:"eventId"`
	UserID    string    `json:"userId"`
	DayOfWeek int       `json:"dayOfWeek"`
	StartTime string    `json:"startTime"` // "HH:mm"
	EndTime   string    `json:"endTime"`   // "HH:mm"
	CreatedAt time.Time `json:"createdDate"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RecurrenceFrequency is the repeat unit of a recurrence rule.
type RecurrenceFrequency string

const (
	FreqDaily   RecurrenceFrequency = "daily"
	FreqWeekly  RecurrenceFrequency = "weekly"
	FreqMonthly RecurrenceFrequency = "monthly"
	FreqYearly  RecurrenceFrequency = "yearly"
)

// RecurrenceRule is the structured form of an event's recurrence. The
// persisted RRULE string on the event is always derived from this record.
type RecurrenceRule struct {
	Frequency  RecurrenceFrequency `json:"frequency"`
	Interval   int                 `json:"interval"`
	ByWeekDay  []string            `json:"byWeekDay,omitempty"`
	ByMonthDay []int               `json:"byMonthDay,omitempty"`
	Occurrence int                 `json:"occurrence,omitempty"`
	EndDate    string              `json:"endDate,omitempty"`
}

// BufferTime requests empty blocking events around the main event,
// in minutes.
type BufferTime struct {
	BeforeEvent int `json:"beforeEvent,omitempty"`
	AfterEvent  int `json:"afterEvent,omitempty"`
}

// ModifiedFlags records which attributes the user has explicitly set.
// The planner only raises a flag for attributes touched in the current
// turn; untouched attributes keep their stored value.
type ModifiedFlags struct {
	Availability   bool `json:"availability,omitempty"`
	TimeBlocking   bool `json:"timeBlocking,omitempty"`
	TimePreference bool `json:"timePreference,omitempty"`
	Reminders      bool `json:"reminders,omitempty"`
	PriorityLevel  bool `json:"priorityLevel,omitempty"`
	Duration       bool `json:"duration,omitempty"`
	Modifiable     bool `json:"modifiable,omitempty"`
}

// Event is the primary calendar entity.
type Event struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	CalendarID      string          `json:"calendarId"`
	ProviderEventID string          `json:"providerEventId"`
	Title           string          `json:"title"`
	Notes           string          `json:"notes"`
	Location        string          `json:"location"`
	StartDate       time.Time       `json:"startDate"`
	EndDate         time.Time       `json:"endDate"`
	Duration        int             `json:"duration"` // minutes
	Timezone        string          `json:"timezone"`
	AllDay          bool            `json:"allDay"`
	Priority        int             `json:"priority"`
	Transparency    string          `json:"transparency,omitempty"`
	Visibility      string          `json:"visibility,omitempty"`
	ConferenceID    string          `json:"conferenceId,omitempty"`
	PreEventID      string          `json:"preEventId,omitempty"`
	PostEventID     string          `json:"postEventId,omitempty"`
	IsPreEvent      bool            `json:"isPreEvent"`
	IsPostEvent     bool            `json:"isPostEvent"`
	IsFollowUp      bool            `json:"isFollowUp"`
	IsBreak         bool            `json:"isBreak"`
	Modifiable      bool            `json:"modifiable"`
	Recurrence      string          `json:"recurrence,omitempty"` // RRULE string
	RecurrenceRule  *RecurrenceRule `json:"recurrenceRule,omitempty"`
	BufferTime      *BufferTime     `json:"bufferTime,omitempty"`
	Modified        ModifiedFlags   `json:"userModified"`
	Deleted         bool            `json:"deleted"`
	CreatedAt       time.Time       `json:"createdDate"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// MeetingPreferences are the user's defaults applied when the draft
// leaves a conference or notification attribute unspecified.
type MeetingPreferences struct {
	UserID                string `json:"userId"`
	Name                  string `json:"name"`
	PrimaryEmail          string `json:"primaryEmail"`
	SendUpdates           string `json:"sendUpdates"`
	GuestsCanInviteOthers bool   `json:"guestsCanInviteOthers"`
	Transparency          string `json:"transparency"`
	Visibility            string `json:"visibility"`
}
