// Package dialogue holds the per-conversation state a skill reads and
// mutates across turns: the message transcript, the turn status, and
// the carried extraction payloads a follow-up turn merges into.
package dialogue

import (
	"encoding/json"
	"time"
)

// Role of a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Status describes where a skill left the conversation after a turn.
type Status string

const (
	// StatusPending marks a fresh request that no turn has processed yet.
	StatusPending Status = "pending"
	// StatusMissingFields means the skill asked the user for more
	// attributes and is waiting for the answer.
	StatusMissingFields Status = "missing_fields"
	// StatusEventNotFound means the referenced event could not be
	// resolved and the skill gave up on this request.
	StatusEventNotFound Status = "event_not_found"
	// StatusCompleted means the mutation plan ran to the end.
	StatusCompleted Status = "completed"
	// StatusExtractionFailed means the language model produced no
	// usable structured payload for the turn.
	StatusExtractionFailed Status = "extraction_failed"
)

// Message is one transcript entry.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Carried is the state a missing-fields turn hands to its follow-up:
// the partial draft plus the raw extraction payloads it was built from.
// The four fields are always set together, or all absent.
type Carried struct {
	Draft    json.RawMessage `json:"draft,omitempty"`
	Extra    json.RawMessage `json:"extra,omitempty"`
	Intent   json.RawMessage `json:"intent,omitempty"`
	DateTime json.RawMessage `json:"dateTime,omitempty"`
}

// Empty reports whether nothing was carried from a previous turn.
func (c Carried) Empty() bool {
	return c.Draft == nil && c.Extra == nil && c.Intent == nil && c.DateTime == nil
}

// State is the whole dialogue record of one conversation.
type State struct {
	ConversationID string    `json:"conversationId"`
	UserID         string    `json:"userId"`
	Skill          string    `json:"skill"`
	Status         Status    `json:"status"`
	Messages       []Message `json:"messages"`
	Required       string    `json:"required,omitempty"`
	Carried        Carried   `json:"carried,omitempty"`
}

// New starts a pending conversation for one user and skill.
func New(conversationID, userID, skill string) *State {
	return &State{
		ConversationID: conversationID,
		UserID:         userID,
		Skill:          skill,
		Status:         StatusPending,
	}
}

// AddUserMessage appends a user turn to the transcript.
func (s *State) AddUserMessage(content string) {
	s.Messages = append(s.Messages, Message{Role: RoleUser, Content: content, Timestamp: time.Now().UTC()})
}

// AddAssistantMessage appends the assistant's reply to the transcript.
func (s *State) AddAssistantMessage(content string) {
	s.Messages = append(s.Messages, Message{Role: RoleAssistant, Content: content, Timestamp: time.Now().UTC()})
}

// LatestUserMessage returns the most recent user message, or nil when
// the transcript has none.
func (s *State) LatestUserMessage() *Message {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleUser {
			return &s.Messages[i]
		}
	}
	return nil
}

// PriorExchange returns the user/assistant pair that preceded the
// latest user message: the question the assistant asked and the user
// message it was asked about. Either may be nil when the transcript is
// too short.
func (s *State) PriorExchange() (user, assistant *Message) {
	latest := -1
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleUser {
			latest = i
			break
		}
	}
	if latest < 0 {
		return nil, nil
	}
	for i := latest - 1; i >= 0; i-- {
		switch s.Messages[i].Role {
		case RoleAssistant:
			if assistant == nil {
				assistant = &s.Messages[i]
			}
		case RoleUser:
			if assistant != nil {
				user = &s.Messages[i]
				return user, assistant
			}
		}
	}
	return nil, assistant
}

// AwaitFields records that the skill asked for more attributes,
// carrying the partial work into the next turn. The carried payloads
// are stored as one unit so a follow-up never sees a half-written mix
// of old and new turns.
func (s *State) AwaitFields(required string, carried Carried) {
	s.Status = StatusMissingFields
	s.Required = required
	s.Carried = carried
}

// Finish terminates the conversation with the given status, clearing
// any carried state.
func (s *State) Finish(status Status) {
	s.Status = status
	s.Required = ""
	s.Carried = Carried{}
}

// Action is what a skill turn hands back to the caller: the reply to
// show and the status the conversation moved to.
type Action struct {
	Reply  string `json:"reply"`
	Status Status `json:"status"`
}
