package calendar

import (
	"context"
	"time"
)

// ConferenceSolution describes the conference data attached to a
// provider-side event patch.
type ConferenceSolution struct {
	Type         string // "hangoutsMeet" or "addOn"
	Name         string
	ConferenceID string
	EntryPoints  []EntryPoint
	RequestID    string // set when the platform must create the conference itself
}

// ReminderOverride is one provider-side reminder setting.
type ReminderOverride struct {
	Method  string
	Minutes int
}

// ReminderSettings carries the reminder block of a provider-side patch.
type ReminderSettings struct {
	UseDefault bool
	Overrides  []ReminderOverride
}

// EventPatch is the set of provider-side event attributes one mutation
// may set. Nil pointer fields are left untouched on the provider.
type EventPatch struct {
	Summary               *string
	Description           *string
	Location              *string
	Start                 *time.Time
	End                   *time.Time
	Timezone              *string
	AllDay                *bool
	AttendeeEmails        []string
	Conference            *ConferenceSolution
	Recurrence            *string
	Reminders             *ReminderSettings
	Transparency          *string
	Visibility            *string
	SendUpdates           string
	GuestsCanInviteOthers *bool
	GuestsCanModify       *bool
	GuestsCanSeeGuests    *bool
}

// CreatedEvent is the provider's handle for a newly created event.
type CreatedEvent struct {
	ProviderEventID string
}

// Provider is the third-party calendar backend. Implementations wrap a
// real SDK; tests and the local REPL use the in-memory Fake.
type Provider interface {
	CreateEvent(ctx context.Context, userID, calendarID, eventID string, patch EventPatch) (*CreatedEvent, error)
	PatchEvent(ctx context.Context, userID, calendarID, providerEventID string, patch EventPatch) error
	DeleteEvent(ctx context.Context, userID, calendarID, providerEventID string) error
}

// String returns a pointer to s, for optional EventPatch fields.
func String(s string) *string { return &s }

// Bool returns a pointer to b, for optional EventPatch fields.
func Bool(b bool) *bool { return &b }

// Time returns a pointer to t, for optional EventPatch fields.
func Time(t time.Time) *time.Time { return &t }
