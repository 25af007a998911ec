// Package conferencing abstracts the third-party meeting backend used
// when an event requests a conference the calendar platform does not host
// itself.
package conferencing

import (
	"context"
	"time"

	"github.com/ziadkadry99/cal-pilot/internal/calendar"
)

// Meeting is the provider's record of a scheduled conference.
type Meeting struct {
	ID       string
	Agenda   string
	JoinURL  string
	StartURL string
	Password string
}

// MeetingRequest carries everything the backend needs to create or
// update a meeting.
type MeetingRequest struct {
	Topic      string
	Start      time.Time
	Timezone   string
	Duration   int // minutes
	HostName   string
	HostEmail  string
	Invitees   []string
	Recurrence *calendar.RecurrenceRule
}

// Provider is the third-party conferencing backend.
type Provider interface {
	CreateMeeting(ctx context.Context, userID string, req MeetingRequest) (*Meeting, error)
	UpdateMeeting(ctx context.Context, userID, meetingID string, req MeetingRequest) error
	DeleteMeeting(ctx context.Context, userID, meetingID string) error
}
