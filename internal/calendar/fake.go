package calendar

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// FakeProvider is an in-memory calendar backend used by tests and the
// local chat REPL. It records every call in order.
type FakeProvider struct {
	mu      sync.Mutex
	events  map[string]EventPatch // keyed by provider event id
	Calls   []string
	FailOn  string // method name that should return an error ("" = never)
}

// NewFakeProvider creates an empty fake backend.
func NewFakeProvider() *FakeProvider {
	return &FakeProvider{events: make(map[string]EventPatch)}
}

func (f *FakeProvider) CreateEvent(_ context.Context, userID, calendarID, eventID string, patch EventPatch) (*CreatedEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, "CreateEvent")
	if f.FailOn == "CreateEvent" {
		return nil, fmt.Errorf("fake calendar: create failed")
	}
	id := "prov-" + uuid.New().String()
	f.events[id] = patch
	return &CreatedEvent{ProviderEventID: id}, nil
}

func (f *FakeProvider) PatchEvent(_ context.Context, userID, calendarID, providerEventID string, patch EventPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, "PatchEvent")
	if f.FailOn == "PatchEvent" {
		return fmt.Errorf("fake calendar: patch failed")
	}
	f.events[providerEventID] = patch
	return nil
}

func (f *FakeProvider) DeleteEvent(_ context.Context, userID, calendarID, providerEventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, "DeleteEvent")
	if f.FailOn == "DeleteEvent" {
		return fmt.Errorf("fake calendar: delete failed")
	}
	delete(f.events, providerEventID)
	return nil
}

// Event returns the last patch recorded for a provider event id.
func (f *FakeProvider) Event(providerEventID string) (EventPatch, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.events[providerEventID]
	return p, ok
}
