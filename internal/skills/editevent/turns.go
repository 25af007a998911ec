package editevent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ziadkadry99/cal-pilot/internal/audit"
	"github.com/ziadkadry99/cal-pilot/internal/dialogue"
	"github.com/ziadkadry99/cal-pilot/internal/extraction"
	"github.com/ziadkadry99/cal-pilot/internal/fields"
	"github.com/ziadkadry99/cal-pilot/internal/skills"
)

// turnResult is what one turn processor decides: the reply, the next
// status, and the carried state when more input is needed.
type turnResult struct {
	status   dialogue.Status
	reply    string
	required string
	carried  dialogue.Carried
}

func failedTurn() turnResult {
	return turnResult{status: dialogue.StatusExtractionFailed, reply: replyFallback}
}

// processPending handles the first turn of a request: both extractions
// run against the raw message and the draft starts from scratch.
func (s *Skill) processPending(ctx context.Context, state *dialogue.State, message string) turnResult {
	now := s.deps.Clock()
	tz := s.deps.Location()

	callCtx, cancel := s.deps.CallCtx(ctx)
	intent, err := s.deps.Extractor.ExtractIntent(callCtx, message, now, tz.String())
	cancel()
	if err != nil {
		s.deps.Logf("edit event: intent extraction failed: %v", err)
		return failedTurn()
	}

	callCtx, cancel = s.deps.CallCtx(ctx)
	dt, err := s.deps.Extractor.ExtractDateTime(callCtx, message, now, tz.String())
	cancel()
	if err != nil {
		s.deps.Logf("edit event: date extraction failed: %v", err)
		return failedTurn()
	}

	draft := BuildDraft(intent.Params, dt)
	return s.finishTurn(ctx, state, message, draft, intent, dt)
}

// processMissingFields handles the answer to a question the skill
// asked earlier. The answer is extracted in the light of the prior
// exchange and merged into the carried draft, carried values winning.
func (s *Skill) processMissingFields(ctx context.Context, state *dialogue.State, message string) turnResult {
	now := s.deps.Clock()
	tz := s.deps.Location()

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
	intent, err := s.deps.Extractor.ExtractMissingIntent(callCtx, exchange, message, now, tz.String())
	cancel()
	if err != nil {
		s.deps.Logf("edit event: follow-up intent extraction failed: %v", err)
		return failedTurn()
	}

	callCtx, cancel = s.deps.CallCtx(ctx)
	dt, err := s.deps.Extractor.ExtractMissingDateTime(callCtx, exchange, message, now, tz.String())
	cancel()
	if err != nil {
		s.deps.Logf("edit event: follow-up date extraction failed: %v", err)
		return failedTurn()
	}

	carriedDraft, carriedDT := decodeCarried(state.Carried)
	draft := MergeDraft(carriedDraft, BuildDraft(intent.Params, dt))
	merged := MergeDateTime(carriedDT, dt)
	return s.finishTurn(ctx, state, message, draft, intent, merged)
}

// finishTurn is the shared back half of both processors: resolve
// attendees, check required fields, and either ask for what is missing
// or resolve the event and run the plan.
func (s *Skill) finishTurn(ctx context.Context, state *dialogue.State, message string, draft *EventDraft, intent *extraction.IntentPayload, dt *extraction.DateTimePayload) turnResult {
	now := s.deps.Clock()
	tz := s.deps.Location()

	// Resolve attendee emails before the field check so a known
	// contact never triggers a question.
	if len(draft.Attendees) > 0 {
		resolved, err := s.deps.DisambiguateAttendees(ctx, state.UserID, "", draft.Attendees)
		if err != nil {
			s.deps.Logf("edit event: attendee lookup failed: %v", err)
			return failedTurn()
		}
		for i := range draft.Attendees {
			if draft.Attendees[i].Email == "" && i < len(resolved) {
				if emails := skills.AttendeeEmails(resolved[i : i+1]); len(emails) > 0 {
					draft.Attendees[i].Email = emails[0]
				}
			}
		}
	}

	report, err := s.checkFields(draft, dt)
	if err != nil {
		s.deps.Logf("edit event: field check failed: %v", err)
		return failedTurn()
	}
	if !report.Empty() {
		return s.askForFields(ctx, message, report, draft, intent, dt)
	}

	boundary := skills.BoundaryFor(now, tz, dt)
	event, err := s.deps.ResolveEvent(ctx, state.UserID, draft.Title, draft.OldTitle, boundary)
	if errors.Is(err, skills.ErrEventNotFound) {
		return turnResult{status: dialogue.StatusEventNotFound, reply: replyNotFound}
	}
	if err != nil {
		s.deps.Logf("edit event: resolving event failed: %v", err)
		return failedTurn()
	}

	plan, err := BuildPlan(ctx, s.deps, event, draft, dt, now)
	if err != nil {
		s.deps.Logf("edit event: planning failed: %v", err)
		return failedTurn()
	}
	if err := Execute(ctx, s.deps, plan); err != nil {
		s.deps.Logf("edit event: executing plan failed: %v", err)
		return failedTurn()
	}

	s.recordAudit(ctx, state, plan)

	reply := replyEdited
	callCtx, cancel := s.deps.CallCtx(ctx)
	if generated, err := s.deps.Extractor.Reply(callCtx, message, replyEdited); err == nil && generated != "" {
		reply = generated
	}
	cancel()
	return turnResult{status: dialogue.StatusCompleted, reply: reply}
}

// checkFields evaluates the required-fields spec against the combined
// draft and date documents.
func (s *Skill) checkFields(draft *EventDraft, dt *extraction.DateTimePayload) (*fields.Report, error) {
	doc, err := fields.DocOf(draft)
	if err != nil {
		return nil, err
	}
	if dt != nil {
		dtDoc, err := fields.DocOf(dt)
		if err != nil {
			return nil, err
		}
		for k, v := range dtDoc {
			if _, taken := doc[k]; !taken {
				doc[k] = v
			}
		}
	}

	var report fields.Report
	if _, missing := fields.Evaluate(s.spec.Required, doc); len(missing) > 0 {
		report.Required = missing
	}
	report.Required = append(report.Required, fields.EvaluateTriggered(s.spec.Optional, doc)...)
	if _, missing := fields.Evaluate(s.spec.DateTime.Required, doc); len(missing) > 0 {
		report.DateTime.Required = missing
	}
	return &report, nil
}

// askForFields writes the question for the missing attributes and
// packages the carried state for the follow-up turn.
func (s *Skill) askForFields(ctx context.Context, message string, report *fields.Report, draft *EventDraft, intent *extraction.IntentPayload, dt *extraction.DateTimePayload) turnResult {
	question := "Could you share " + report.Describe() + "?"
	callCtx, cancel := s.deps.CallCtx(ctx)
	if generated, err := s.deps.Extractor.RequestMissingFields(callCtx, message, report.Describe()); err == nil && generated != "" {
		question = generated
	}
	cancel()

	return turnResult{
		status:   dialogue.StatusMissingFields,
		reply:    question,
		required: report.Describe(),
		carried:  encodeCarried(draft, intent, dt),
	}
}

func encodeCarried(draft *EventDraft, intent *extraction.IntentPayload, dt *extraction.DateTimePayload) dialogue.Carried {
	c := dialogue.Carried{}
	if data, err := json.Marshal(draft); err == nil {
		c.Draft = data
	}
	if intent != nil {
		if data, err := json.Marshal(intent); err == nil {
			c.Intent = data
		}
	}
	if dt != nil {
		if data, err := json.Marshal(dt); err == nil {
			c.DateTime = data
		}
	}
	return c
}

// recordAudit notes the applied edit, and any conferencing change, in
// the audit trail.
func (s *Skill) recordAudit(ctx context.Context, state *dialogue.State, plan *Plan) {
	detail := ""
	if plan.Patch.Start != nil {
		detail = "start " + plan.Patch.Start.Format(time.RFC3339)
	}
	s.deps.Record(ctx, audit.Entry{
		UserID:         state.UserID,
		ConversationID: state.ConversationID,
		Skill:          Name,
		Action:         audit.ActionEventEdited,
		EventID:        plan.Event.ID,
		Summary:        fmt.Sprintf("edited %q", plan.Event.Title),
		Detail:         detail,
	})

	var conferenceAction audit.Action
	switch plan.Conference.Kind {
	case ConferenceCreate:
		conferenceAction = audit.ActionConferenceCreated
	case ConferenceUpdate:
		conferenceAction = audit.ActionConferenceUpdated
	case ConferenceRecreate:
		conferenceAction = audit.ActionConferenceRecreated
	default:
		return
	}
	s.deps.Record(ctx, audit.Entry{
		UserID:         state.UserID,
		ConversationID: state.ConversationID,
		Skill:          Name,
		Action:         conferenceAction,
		EventID:        plan.Event.ID,
		Summary:        fmt.Sprintf("%s conference on %q", plan.Conference.Kind, plan.Event.Title),
	})
}

func decodeCarried(c dialogue.Carried) (*EventDraft, *extraction.DateTimePayload) {
	var draft *EventDraft
	if len(c.Draft) > 0 {
		draft = &EventDraft{}
		if err := json.Unmarshal(c.Draft, draft); err != nil {
			draft = nil
		}
	}
	var dt *extraction.DateTimePayload
	if len(c.DateTime) > 0 {
		dt = &extraction.DateTimePayload{}
		if err := json.Unmarshal(c.DateTime, dt); err != nil {
			dt = nil
		}
	}
	return draft, dt
}
