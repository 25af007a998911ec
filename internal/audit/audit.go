// Package audit keeps a trail of every mutation the skills apply to
// the calendar, queryable per user and per event.
package audit

import "time"

// Action describes what was done to an event.
type Action string

const (
	ActionEventEdited           Action = "event_edited"
	ActionConferenceCreated     Action = "conference_created"
	ActionConferenceUpdated     Action = "conference_updated"
	ActionConferenceRecreated   Action = "conference_recreated"
	ActionPreferredTimesCleared Action = "preferred_times_cleared"
)

// Entry is a single audit trail record.
type Entry struct {
	ID             string    `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	UserID         string    `json:"userId"`
	ConversationID string    `json:"conversationId,omitempty"`
	Skill          string    `json:"skill"`
	Action         Action    `json:"action"`
	EventID        string    `json:"eventId"`
	Summary        string    `json:"summary"`
	Detail         string    `json:"detail,omitempty"`
}
