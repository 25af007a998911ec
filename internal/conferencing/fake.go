package conferencing

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// FakeProvider is an in-memory conferencing backend for tests and the
// local chat REPL.
type FakeProvider struct {
	mu       sync.Mutex
	meetings map[string]MeetingRequest
	Calls    []string
	FailOn   string
}

// NewFakeProvider creates an empty fake backend.
func NewFakeProvider() *FakeProvider {
	return &FakeProvider{meetings: make(map[string]MeetingRequest)}
}

func (f *FakeProvider) CreateMeeting(_ context.Context, userID string, req MeetingRequest) (*Meeting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, "CreateMeeting")
	if f.FailOn == "CreateMeeting" {
		return nil, fmt.Errorf("fake conferencing: create failed")
	}
	id := "meet-" + uuid.New().String()
	f.meetings[id] = req
	return &Meeting{
		ID:       id,
		Agenda:   req.Topic,
		JoinURL:  "https://meet.example.com/" + id,
		StartURL: "https://meet.example.com/" + id + "/host",
		Password: "s3cret",
	}, nil
}

func (f *FakeProvider) UpdateMeeting(_ context.Context, userID, meetingID string, req MeetingRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, "UpdateMeeting")
	if f.FailOn == "UpdateMeeting" {
		return fmt.Errorf("fake conferencing: update failed")
	}
	f.meetings[meetingID] = req
	return nil
}

func (f *FakeProvider) DeleteMeeting(_ context.Context, userID, meetingID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, "DeleteMeeting")
	if f.FailOn == "DeleteMeeting" {
		return fmt.Errorf("fake conferencing: delete failed")
	}
	delete(f.meetings, meetingID)
	return nil
}

// Meeting returns the last request recorded for a meeting id.
func (f *FakeProvider) Meeting(id string) (MeetingRequest, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.meetings[id]
	return m, ok
}
