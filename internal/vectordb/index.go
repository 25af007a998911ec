// Package vectordb holds the semantic event index. Event titles are
// embedded and searched by similarity so a conversational instruction
// like "move my standup" can locate the concrete calendar event.
package vectordb

import (
	"context"
	"time"
)

// EventDoc is one indexed event.
type EventDoc struct {
	EventID   string
	UserID    string
	Title     string
	StartDate time.Time
}

// SearchHit pairs an indexed event with its similarity score.
type SearchHit struct {
	EventID    string
	Title      string
	StartDate  time.Time
	Similarity float32
}

// EventIndex defines semantic storage and lookup of events. Training
// documents live in a separate collection consumed by the scheduling
// optimizer; they share the event id keyspace.
type EventIndex interface {
	// IndexEvent adds or updates an event document.
	IndexEvent(ctx context.Context, doc EventDoc) error

	// SearchEvents returns the closest events by title for one user,
	// restricted to events starting inside [windowStart, windowEnd].
	SearchEvents(ctx context.Context, userID, title string, windowStart, windowEnd time.Time, limit int) ([]SearchHit, error)

	// DeleteEvent removes an event document.
	DeleteEvent(ctx context.Context, eventID string) error

	// TrainEvent records an event in the training collection.
	TrainEvent(ctx context.Context, doc EventDoc) error

	// DeleteTraining removes an event's training document.
	DeleteTraining(ctx context.Context, eventID string) error

	// Persist saves the index to the given directory.
	Persist(ctx context.Context, dir string) error

	// Load restores the index from the given directory.
	Load(ctx context.Context, dir string) error

	// Count returns the number of indexed events.
	Count() int
}
