package calendar

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/cal-pilot/internal/db"
)

// Store persists events and their satellite records (conferences,
// attendees, reminders, preferred time ranges) in SQLite.
type Store struct {
	db *db.DB
}

// NewStore creates a calendar store over the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// GetEvent loads an event by primary key. Returns nil if not found.
func (s *Store) GetEvent(ctx context.Context, id string) (*Event, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, calendar_id, provider_event_id, title, notes, location,
		       start_date, end_date, duration, timezone, all_day, priority,
		       transparency, visibility,
		       COALESCE(conference_id, ''), COALESCE(pre_event_id, ''), COALESCE(post_event_id, ''),
		       is_pre_event, is_post_event, is_follow_up, is_break, modifiable,
		       recurrence, COALESCE(recurrence_rule, ''), COALESCE(buffer_time, ''),
		       modified_flags, deleted, created_at, updated_at
		FROM events WHERE id = ?`, id)

	ev, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading event %s: %w", id, err)
	}
	return ev, nil
}

// ListEvents returns all live events for a user, newest start first.
func (s *Store) ListEvents(ctx context.Context, userID string) ([]*Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, calendar_id, provider_event_id, title, notes, location,
		       start_date, end_date, duration, timezone, all_day, priority,
		       transparency, visibility,
		       COALESCE(conference_id, ''), COALESCE(pre_event_id, ''), COALESCE(post_event_id, ''),
		       is_pre_event, is_post_event, is_follow_up, is_break, modifiable,
		       recurrence, COALESCE(recurrence_rule, ''), COALESCE(buffer_time, ''),
		       modified_flags, deleted, created_at, updated_at
		FROM events WHERE user_id = ? AND deleted = 0
		ORDER BY start_date DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// AllEvents returns every live event across all users, for reindexing.
func (s *Store) AllEvents(ctx context.Context) ([]*Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, calendar_id, provider_event_id, title, notes, location,
		       start_date, end_date, duration, timezone, all_day, priority,
		       transparency, visibility,
		       COALESCE(conference_id, ''), COALESCE(pre_event_id, ''), COALESCE(post_event_id, ''),
		       is_pre_event, is_post_event, is_follow_up, is_break, modifiable,
		       recurrence, COALESCE(recurrence_rule, ''), COALESCE(buffer_time, ''),
		       modified_flags, deleted, created_at, updated_at
		FROM events WHERE deleted = 0
		ORDER BY start_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*Event, error) {
	var (
		ev                   Event
		start, end           string
		ruleJSON, bufferJSON string
		flagsJSON            string
	)
	err := row.Scan(
		&ev.ID, &ev.UserID, &ev.CalendarID, &ev.ProviderEventID, &ev.Title, &ev.Notes, &ev.Location,
		&start, &end, &ev.Duration, &ev.Timezone, &ev.AllDay, &ev.Priority,
		&ev.Transparency, &ev.Visibility,
		&ev.ConferenceID, &ev.PreEventID, &ev.PostEventID,
		&ev.IsPreEvent, &ev.IsPostEvent, &ev.IsFollowUp, &ev.IsBreak, &ev.Modifiable,
		&ev.Recurrence, &ruleJSON, &bufferJSON,
		&flagsJSON, &ev.Deleted, &ev.CreatedAt, &ev.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if start != "" {
		ev.StartDate, _ = time.Parse(time.RFC3339, start)
	}
	if end != "" {
		ev.EndDate, _ = time.Parse(time.RFC3339, end)
	}
	if ruleJSON != "" {
		var rule RecurrenceRule
		if err := json.Unmarshal([]byte(ruleJSON), &rule); err == nil {
			ev.RecurrenceRule = &rule
		}
	}
	if bufferJSON != "" {
		var buf BufferTime
		if err := json.Unmarshal([]byte(bufferJSON), &buf); err == nil {
			ev.BufferTime = &buf
		}
	}
	if flagsJSON != "" {
		json.Unmarshal([]byte(flagsJSON), &ev.Modified)
	}
	return &ev, nil
}

// UpsertEvents inserts or replaces the given events.
func (s *Store) UpsertEvents(ctx context.Context, events []*Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, ev := range events {
		if ev == nil {
			continue
		}
		if ev.ID == "" {
			ev.ID = uuid.New().String()
		}
		now := time.Now().UTC()
		if ev.CreatedAt.IsZero() {
			ev.CreatedAt = now
		}
		ev.UpdatedAt = now

		ruleJSON := marshalOrEmpty(ev.RecurrenceRule)
		bufferJSON := marshalOrEmpty(ev.BufferTime)
		flagsJSON, _ := json.Marshal(ev.Modified)

		_, err = tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO events (
				id, user_id, calendar_id, provider_event_id, title, notes, location,
				start_date, end_date, duration, timezone, all_day, priority,
				transparency, visibility, conference_id, pre_event_id, post_event_id,
				is_pre_event, is_post_event, is_follow_up, is_break, modifiable,
				recurrence, recurrence_rule, buffer_time, modified_flags, deleted,
				created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			ev.ID, ev.UserID, ev.CalendarID, ev.ProviderEventID, ev.Title, ev.Notes, ev.Location,
			formatTime(ev.StartDate), formatTime(ev.EndDate), ev.Duration, ev.Timezone, ev.AllDay, ev.Priority,
			ev.Transparency, ev.Visibility, nullIfEmpty(ev.ConferenceID), nullIfEmpty(ev.PreEventID), nullIfEmpty(ev.PostEventID),
			ev.IsPreEvent, ev.IsPostEvent, ev.IsFollowUp, ev.IsBreak, ev.Modifiable,
			ev.Recurrence, nullIfEmpty(ruleJSON), nullIfEmpty(bufferJSON), string(flagsJSON), ev.Deleted,
			ev.CreatedAt, ev.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("upserting event %s: %w", ev.ID, err)
		}
	}

	return tx.Commit()
}

// DeleteEvent removes an event row entirely.
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting event %s: %w", id, err)
	}
	return nil
}

// GetConference loads a conference by id. Returns nil if not found.
func (s *Store) GetConference(ctx context.Context, id string) (*Conference, error) {
	var (
		c       Conference
		epJSON  string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, calendar_id, app, name, notes, join_url, start_url,
		       is_host, entry_points, deleted, created_at, updated_at
		FROM conferences WHERE id = ?`, id).Scan(
		&c.ID, &c.UserID, &c.CalendarID, &c.App, &c.Name, &c.Notes, &c.JoinURL, &c.StartURL,
		&c.IsHost, &epJSON, &c.Deleted, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading conference %s: %w", id, err)
	}
	json.Unmarshal([]byte(epJSON), &c.EntryPoints)
	return &c, nil
}

// UpsertConference inserts or replaces a conference.
func (s *Store) UpsertConference(ctx context.Context, c *Conference) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	epJSON, _ := json.Marshal(c.EntryPoints)
	if c.EntryPoints == nil {
		epJSON = []byte("[]")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO conferences (
			id, user_id, calendar_id, app, name, notes, join_url, start_url,
			is_host, entry_points, deleted, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.CalendarID, c.App, c.Name, c.Notes, c.JoinURL, c.StartURL,
		c.IsHost, string(epJSON), c.Deleted, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting conference %s: %w", c.ID, err)
	}
	return nil
}

// DeleteConference removes a conference row.
func (s *Store) DeleteConference(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM conferences WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting conference %s: %w", id, err)
	}
	return nil
}

// InsertReminders adds the given reminders.
func (s *Store) InsertReminders(ctx context.Context, reminders []Reminder) error {
	if len(reminders) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, r := range reminders {
		if r.ID == "" {
			r.ID = uuid.New().String()
		}
		now := time.Now().UTC()
		_, err = tx.ExecContext(ctx, `
			INSERT INTO reminders (id, event_id, user_id, minutes, timezone, use_default, deleted, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.EventID, r.UserID, r.Minutes, r.Timezone, r.UseDefault, r.Deleted, now, now,
		)
		if err != nil {
			return fmt.Errorf("inserting reminder: %w", err)
		}
	}
	return tx.Commit()
}

// DeleteRemindersForEvents removes all reminders owned by userID on the
// given events.
func (s *Store) DeleteRemindersForEvents(ctx context.Context, eventIDs []string, userID string) error {
	for _, id := range eventIDs {
		if _, err := s.db.ExecContext(ctx,
			`DELETE FROM reminders WHERE event_id = ? AND user_id = ?`, id, userID); err != nil {
			return fmt.Errorf("deleting reminders for event %s: %w", id, err)
		}
	}
	return nil
}

// ListRemindersForEvent returns all reminders of an event.
func (s *Store) ListRemindersForEvent(ctx context.Context, eventID string) ([]Reminder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_id, user_id, minutes, timezone, use_default, deleted, created_at, updated_at
		FROM reminders WHERE event_id = ? ORDER BY minutes`, eventID)
	if err != nil {
		return nil, fmt.Errorf("listing reminders: %w", err)
	}
	defer rows.Close()

	var out []Reminder
	for rows.Next() {
		var r Reminder
		if err := rows.Scan(&r.ID, &r.EventID, &r.UserID, &r.Minutes, &r.Timezone,
			&r.UseDefault, &r.Deleted, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// UpsertPreferredTimeRanges inserts or replaces preferred time ranges.
func (s *Store) UpsertPreferredTimeRanges(ctx context.Context, ranges []PreferredTimeRange) error {
	if len(ranges) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, pt := range ranges {
		if pt.ID == "" {
			pt.ID = uuid.New().String()
		}
		now := time.Now().UTC()
		_, err = tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO preferred_time_ranges (id, event_id, user_id, day_of_week, start_time, end_time, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			pt.ID, pt.EventID, pt.UserID, pt.DayOfWeek, pt.StartTime, pt.EndTime, now, now,
		)
		if err != nil {
			return fmt.Errorf("upserting preferred time range: %w", err)
		}
	}
	return tx.Commit()
}

// DeletePreferredTimeRangesForEvent removes every preferred time range of
// an event and reports how many rows were removed.
func (s *Store) DeletePreferredTimeRangesForEvent(ctx context.Context, eventID string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM preferred_time_ranges WHERE event_id = ?`, eventID)
	if err != nil {
		return 0, fmt.Errorf("deleting preferred time ranges for event %s: %w", eventID, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// ListPreferredTimeRangesForEvent returns all preferred time ranges of an event.
func (s *Store) ListPreferredTimeRangesForEvent(ctx context.Context, eventID string) ([]PreferredTimeRange, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_id, user_id, day_of_week, start_time, end_time, created_at, updated_at
		FROM preferred_time_ranges WHERE event_id = ? ORDER BY day_of_week, start_time`, eventID)
	if err != nil {
		return nil, fmt.Errorf("listing preferred time ranges: %w", err)
	}
	defer rows.Close()

	var out []PreferredTimeRange
	for rows.Next() {
		var pt PreferredTimeRange
		if err := rows.Scan(&pt.ID, &pt.EventID, &pt.UserID, &pt.DayOfWeek,
			&pt.StartTime, &pt.EndTime, &pt.CreatedAt, &pt.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, pt)
	}
	return out, rows.Err()
}

// UpsertAttendees inserts or replaces attendees for their events.
func (s *Store) UpsertAttendees(ctx context.Context, attendees []Attendee) error {
	if len(attendees) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, a := range attendees {
		if a.ID == "" {
			a.ID = uuid.New().String()
		}
		emailsJSON, _ := json.Marshal(a.Emails)
		now := time.Now().UTC()
		_, err = tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO attendees (id, event_id, user_id, contact_id, name, emails, deleted, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.EventID, a.UserID, nullIfEmpty(a.ContactID), a.Name, string(emailsJSON), a.Deleted, now, now,
		)
		if err != nil {
			return fmt.Errorf("upserting attendee: %w", err)
		}
	}
	return tx.Commit()
}

// ListAttendeesForEvent returns all attendees of an event.
func (s *Store) ListAttendeesForEvent(ctx context.Context, eventID string) ([]Attendee, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_id, user_id, COALESCE(contact_id, ''), name, emails, deleted, created_at, updated_at
		FROM attendees WHERE event_id = ?`, eventID)
	if err != nil {
		return nil, fmt.Errorf("listing attendees: %w", err)
	}
	defer rows.Close()

	var out []Attendee
	for rows.Next() {
		var (
			a          Attendee
			emailsJSON string
		)
		if err := rows.Scan(&a.ID, &a.EventID, &a.UserID, &a.ContactID, &a.Name,
			&emailsJSON, &a.Deleted, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		json.Unmarshal([]byte(emailsJSON), &a.Emails)
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetMeetingPreferences loads the user's meeting defaults. Returns a zero
// preferences record (not nil) when none are stored.
func (s *Store) GetMeetingPreferences(ctx context.Context, userID string) (*MeetingPreferences, error) {
	var p MeetingPreferences
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, name, primary_email, send_updates, guests_can_invite_others, transparency, visibility
		FROM meeting_preferences WHERE user_id = ?`, userID).Scan(
		&p.UserID, &p.Name, &p.PrimaryEmail, &p.SendUpdates,
		&p.GuestsCanInviteOthers, &p.Transparency, &p.Visibility,
	)
	if err == sql.ErrNoRows {
		return &MeetingPreferences{UserID: userID, SendUpdates: "all", Transparency: "opaque", Visibility: "default"}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading meeting preferences: %w", err)
	}
	return &p, nil
}

// UpsertMeetingPreferences stores the user's meeting defaults.
func (s *Store) UpsertMeetingPreferences(ctx context.Context, p *MeetingPreferences) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO meeting_preferences
			(user_id, name, primary_email, send_updates, guests_can_invite_others, transparency, visibility, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, p.Name, p.PrimaryEmail, p.SendUpdates,
		p.GuestsCanInviteOthers, p.Transparency, p.Visibility, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upserting meeting preferences: %w", err)
	}
	return nil
}

func marshalOrEmpty(v any) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case *RecurrenceRule:
		if t == nil {
			return ""
		}
	case *BufferTime:
		if t == nil {
			return ""
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
