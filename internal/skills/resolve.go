package skills

import (
	"context"
	"fmt"

	"github.com/ziadkadry99/cal-pilot/internal/calendar"
)

// ResolveEvent finds the stored event the user is talking about. The
// reference is matched against the semantic index within the search
// window; oldTitle takes precedence over title, since an edit that
// renames an event refers to it by its current name. Returns
// ErrEventNotFound when nothing in the window matches.
func (d *Deps) ResolveEvent(ctx context.Context, userID, title, oldTitle string, boundary SearchBoundary) (*calendar.Event, error) {
	reference := oldTitle
	if reference == "" {
		reference = title
	}
	if reference == "" {
		return nil, ErrEventNotFound
	}

	callCtx, cancel := d.CallCtx(ctx)
	defer cancel()
	hits, err := d.Index.SearchEvents(callCtx, userID, reference, boundary.Start, boundary.End, 3)
	if err != nil {
		return nil, fmt.Errorf("searching events: %w", err)
	}
	if len(hits) == 0 {
		return nil, ErrEventNotFound
	}

	event, err := d.Store.GetEvent(ctx, hits[0].EventID)
	if err != nil {
		return nil, fmt.Errorf("loading event %s: %w", hits[0].EventID, err)
	}
	if event == nil {
		// The index can lag behind deletions.
		return nil, ErrEventNotFound
	}
	return event, nil
}
