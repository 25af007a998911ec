// Package removepreferred implements the skill that strips every
// preferred time range from an event, including the trained index
// entry those preferences fed.
package removepreferred

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ziadkadry99/cal-pilot/internal/audit"
	"github.com/ziadkadry99/cal-pilot/internal/dialogue"
	"github.com/ziadkadry99/cal-pilot/internal/extraction"
	"github.com/ziadkadry99/cal-pilot/internal/fields"
	"github.com/ziadkadry99/cal-pilot/internal/skills"
)

//go:embed requiredfields.yaml
var requiredFieldsYAML []byte

const (
	// Name identifies the skill in dialogue state and over the API.
	Name = "removeAllPreferredTimes"

	replyRemoved  = "successfully removed all preferred times"
	replyNotFound = "Oops... I couldn't find the event. Sorry :("
	replyFallback = "I wasn't able to process that request. Could you try rephrasing it?"
)

// Skill removes all preferred time ranges from one event.
type Skill struct {
	deps *skills.Deps
	spec *fields.Spec
}

// New creates the skill, loading its required-fields declaration.
func New(deps *skills.Deps) (*Skill, error) {
	spec, err := fields.Load(requiredFieldsYAML)
	if err != nil {
		return nil, fmt.Errorf("loading remove preferred times field spec: %w", err)
	}
	return &Skill{deps: deps, spec: spec}, nil
}

// draft is the accumulated state of one request: just the event
// reference.
type draft struct {
	Title string `json:"title,omitempty"`
}

// HandleTurn advances the conversation by one turn.
func (s *Skill) HandleTurn(ctx context.Context, state *dialogue.State) dialogue.Action {
	ctx, cancel := s.deps.TurnCtx(ctx)
	defer cancel()

	msg := state.LatestUserMessage()
	if msg == nil {
		state.AddAssistantMessage(replyFallback)
		state.Finish(dialogue.StatusExtractionFailed)
		return dialogue.Action{Reply: replyFallback, Status: dialogue.StatusExtractionFailed}
	}

	status, reply := s.processTurn(ctx, state, msg.Content)

	state.AddAssistantMessage(reply)
	if status != dialogue.StatusMissingFields {
		state.Finish(status)
	}
	return dialogue.Action{Reply: reply, Status: status}
}

func (s *Skill) processTurn(ctx context.Context, state *dialogue.State, message string) (dialogue.Status, string) {
	now := s.deps.Clock()
	tz := s.deps.Location()

	var intent *extraction.IntentPayload
	var err error
	if state.Status == dialogue.StatusMissingFields {
		var exchange extraction.Exchange
		if user, assistant := state.PriorExchange(); user != nil || assistant != nil {
			if user != nil {
				exchange.UserMessage = user.Content
			}
			if assistant != nil {
				exchange.AssistantQuestion = assistant.Content
			}
		}
		callCtx, cancel := s.deps.CallCtx(ctx)
		intent, err = s.deps.Extractor.ExtractMissingIntent(callCtx, exchange, message, now, tz.String())
		cancel()
	} else {
		callCtx, cancel := s.deps.CallCtx(ctx)
		intent, err = s.deps.Extractor.ExtractIntent(callCtx, message, now, tz.String())
		cancel()
	}
	if err != nil {
		s.deps.Logf("remove preferred times: extraction failed: %v", err)
		return dialogue.StatusExtractionFailed, replyFallback
	}

	d := s.mergeDraft(state, intent)

	doc, err := fields.DocOf(d)
	if err != nil {
		s.deps.Logf("remove preferred times: field check failed: %v", err)
		return dialogue.StatusExtractionFailed, replyFallback
	}
	if ok, missing := fields.Evaluate(s.spec.Required, doc); !ok {
		report := fields.Report{Required: missing}
		question := "Which event should I remove the preferred times from?"
		callCtx, cancel := s.deps.CallCtx(ctx)
		if generated, err := s.deps.Extractor.RequestMissingFields(callCtx, message, report.Describe()); err == nil && generated != "" {
			question = generated
		}
		cancel()

		carried := dialogue.Carried{}
		if data, err := json.Marshal(d); err == nil {
			carried.Draft = data
		}
		if data, err := json.Marshal(intent); err == nil {
			carried.Intent = data
		}
		state.AwaitFields(report.Describe(), carried)
		return dialogue.StatusMissingFields, question
	}

	return s.removeAll(ctx, state, message, d)
}

// mergeDraft folds this turn's extraction into any carried draft,
// carried values winning.
func (s *Skill) mergeDraft(state *dialogue.State, intent *extraction.IntentPayload) *draft {
	d := &draft{}
	if len(state.Carried.Draft) > 0 {
		json.Unmarshal(state.Carried.Draft, d)
	}
	if d.Title == "" {
		d.Title = intent.Params.Title
	}
	if d.Title == "" {
		d.Title = intent.Params.OldTitle
	}
	if d.Title == "" {
		d.Title = intent.Params.Summary
	}
	return d
}

func (s *Skill) removeAll(ctx context.Context, state *dialogue.State, message string, d *draft) (dialogue.Status, string) {
	boundary := skills.BoundaryFor(s.deps.Clock(), s.deps.Location(), nil)
	event, err := s.deps.ResolveEvent(ctx, state.UserID, d.Title, "", boundary)
	if errors.Is(err, skills.ErrEventNotFound) {
		return dialogue.StatusEventNotFound, replyNotFound
	}
	if err != nil {
		s.deps.Logf("remove preferred times: resolving event failed: %v", err)
		return dialogue.StatusExtractionFailed, replyFallback
	}

	removed, err := s.deps.Store.DeletePreferredTimeRangesForEvent(ctx, event.ID)
	if err != nil {
		s.deps.Logf("remove preferred times: deleting ranges failed: %v", err)
		return dialogue.StatusExtractionFailed, replyFallback
	}
	if err := s.deps.Index.DeleteTraining(ctx, event.ID); err != nil {
		s.deps.Logf("remove preferred times: deleting training doc failed: %v", err)
		return dialogue.StatusExtractionFailed, replyFallback
	}
	s.deps.Logf("remove preferred times: removed %d ranges from event %s", removed, event.ID)

	s.deps.Record(ctx, audit.Entry{
		UserID:         state.UserID,
		ConversationID: state.ConversationID,
		Skill:          Name,
		Action:         audit.ActionPreferredTimesCleared,
		EventID:        event.ID,
		Summary:        fmt.Sprintf("cleared %d preferred time ranges on %q", removed, event.Title),
	})

	reply := replyRemoved
	callCtx, cancel := s.deps.CallCtx(ctx)
	if generated, err := s.deps.Extractor.Reply(callCtx, message, replyRemoved); err == nil && generated != "" {
		reply = generated
	}
	cancel()
	return dialogue.StatusCompleted, reply
}
