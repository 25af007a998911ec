package skills

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ziadkadry99/cal-pilot/internal/dialogue"
)

// Handler is one conversational skill.
type Handler interface {
	HandleTurn(ctx context.Context, state *dialogue.State) dialogue.Action
}

// Hub routes user turns to skills and keeps the dialogue state of every
// open conversation. Conversations live in memory; a finished one can
// be continued with a fresh request under the same id.
type Hub struct {
	mu            sync.Mutex
	skills        map[string]Handler
	conversations map[string]*dialogue.State
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		skills:        make(map[string]Handler),
		conversations: make(map[string]*dialogue.State),
	}
}

// Register adds a skill under its name.
func (h *Hub) Register(name string, handler Handler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.skills[name] = handler
}

// Skills lists the registered skill names.
func (h *Hub) Skills() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	names := make([]string, 0, len(h.skills))
	for name := range h.skills {
		names = append(names, name)
	}
	return names
}

// Process runs one user turn. An empty conversation id starts a new
// conversation; the returned id addresses follow-up turns.
func (h *Hub) Process(ctx context.Context, conversationID, userID, skillName, message string) (string, dialogue.Action, error) {
	h.mu.Lock()
	handler, ok := h.skills[skillName]
	if !ok {
		h.mu.Unlock()
		return "", dialogue.Action{}, fmt.Errorf("unknown skill %q", skillName)
	}
	if conversationID == "" {
		conversationID = uuid.NewString()
	}
	state, ok := h.conversations[conversationID]
	if !ok || state.UserID != userID {
		state = dialogue.New(conversationID, userID, skillName)
		h.conversations[conversationID] = state
	}
	if state.Skill != skillName {
		// Switching skills abandons the old request.
		state = dialogue.New(conversationID, userID, skillName)
		h.conversations[conversationID] = state
	}
	h.mu.Unlock()

	state.AddUserMessage(message)
	action := handler.HandleTurn(ctx, state)
	return conversationID, action, nil
}

// State returns the dialogue state of a conversation, or nil.
func (h *Hub) State(conversationID string) *dialogue.State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.conversations[conversationID]
}
