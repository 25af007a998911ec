// Package editevent implements the conversational edit-event skill:
// the user describes a change to an existing calendar event across one
// or more turns, and the skill finds the event, accumulates the
// requested changes, and applies them in one planned pass.
package editevent

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/ziadkadry99/cal-pilot/internal/dialogue"
	"github.com/ziadkadry99/cal-pilot/internal/fields"
	"github.com/ziadkadry99/cal-pilot/internal/skills"
)

//go:embed requiredfields.yaml
var requiredFieldsYAML []byte

const (
	// Name identifies the skill in dialogue state and over the API.
	Name = "editEvent"

	replyEdited   = "event successfully edited"
	replyNotFound = "Oops... I couldn't find the event. Sorry :("
	replyFallback = "I wasn't able to process that request. Could you try rephrasing it?"
)

// Skill edits existing calendar events through conversation.
type Skill struct {
	deps *skills.Deps
	spec *fields.Spec
}

// New creates the skill, loading its required-fields declaration.
func New(deps *skills.Deps) (*Skill, error) {
	spec, err := fields.Load(requiredFieldsYAML)
	if err != nil {
		return nil, fmt.Errorf("loading edit event field spec: %w", err)
	}
	return &Skill{deps: deps, spec: spec}, nil
}

// HandleTurn advances the conversation by one turn. It reads the
// latest user message, dispatches on the conversation's status, and
// leaves the state with exactly one new assistant message and either a
// terminal status or a missing-fields continuation.
func (s *Skill) HandleTurn(ctx context.Context, state *dialogue.State) dialogue.Action {
	ctx, cancel := s.deps.TurnCtx(ctx)
	defer cancel()

	msg := state.LatestUserMessage()
	if msg == nil {
		state.AddAssistantMessage(replyFallback)
		state.Finish(dialogue.StatusExtractionFailed)
		return dialogue.Action{Reply: replyFallback, Status: dialogue.StatusExtractionFailed}
	}

	var result turnResult
	switch state.Status {
	case dialogue.StatusMissingFields:
		result = s.processMissingFields(ctx, state, msg.Content)
	default:
		// Pending, or a fresh request on a finished conversation.
		result = s.processPending(ctx, state, msg.Content)
	}

	state.AddAssistantMessage(result.reply)
	if result.status == dialogue.StatusMissingFields {
		state.AwaitFields(result.required, result.carried)
	} else {
		state.Finish(result.status)
	}
	return dialogue.Action{Reply: result.reply, Status: result.status}
}
