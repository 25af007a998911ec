// Package skills implements the conversational calendar skills and the
// machinery they share: resolving which event the user means, turning
// extracted date fragments into concrete times, and looking up
// attendee emails from contacts.
package skills

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/ziadkadry99/cal-pilot/internal/audit"
	"github.com/ziadkadry99/cal-pilot/internal/calendar"
	"github.com/ziadkadry99/cal-pilot/internal/conferencing"
	"github.com/ziadkadry99/cal-pilot/internal/contacts"
	"github.com/ziadkadry99/cal-pilot/internal/extraction"
	"github.com/ziadkadry99/cal-pilot/internal/vectordb"
)

// ErrEventNotFound means no indexed event matched the user's reference
// within the search window.
var ErrEventNotFound = errors.New("no matching event found")

// Deps bundles everything a skill needs to run a turn.
type Deps struct {
	Store        *calendar.Store
	Contacts     *contacts.Store
	Index        vectordb.EventIndex
	Calendar     calendar.Provider
	Conferencing map[calendar.ConferenceApp]conferencing.Provider
	Extractor    extraction.Extractor
	Audit        *audit.Store
	Logger       *log.Logger
	Timezone     *time.Location
	CallTimeout  time.Duration
	TurnTimeout  time.Duration
	Now          func() time.Time
}

// Clock returns the current time, honoring the test clock when set.
func (d *Deps) Clock() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Location returns the configured timezone, defaulting to UTC.
func (d *Deps) Location() *time.Location {
	if d.Timezone != nil {
		return d.Timezone
	}
	return time.UTC
}

// CallCtx bounds one provider call. The turn context still caps the
// whole turn.
func (d *Deps) CallCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.CallTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d.CallTimeout)
}

// TurnCtx bounds one whole skill turn.
func (d *Deps) TurnCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.TurnTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d.TurnTimeout)
}

// Logf logs through the configured logger; a nil logger stays silent.
func (d *Deps) Logf(format string, args ...any) {
	if d.Logger != nil {
		d.Logger.Printf(format, args...)
	}
}

// Record writes an audit entry when an audit store is configured. A
// failed write never fails the turn.
func (d *Deps) Record(ctx context.Context, entry audit.Entry) {
	if d.Audit == nil {
		return
	}
	if err := d.Audit.Log(ctx, entry); err != nil {
		d.Logf("skills: recording audit entry: %v", err)
	}
}
