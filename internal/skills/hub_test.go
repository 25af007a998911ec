package skills

import (
	"context"
	"testing"

	"github.com/ziadkadry99/cal-pilot/internal/dialogue"
)

type echoSkill struct{ status dialogue.Status }

func (e echoSkill) HandleTurn(ctx context.Context, state *dialogue.State) dialogue.Action {
	msg := state.LatestUserMessage()
	state.AddAssistantMessage("echo: " + msg.Content)
	state.Finish(e.status)
	return dialogue.Action{Reply: "echo: " + msg.Content, Status: e.status}
}

func TestHubProcess(t *testing.T) {
	hub := NewHub()
	hub.Register("echo", echoSkill{status: dialogue.StatusCompleted})

	id, action, err := hub.Process(context.Background(), "", "u1", "echo", "hello")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if id == "" {
		t.Error("a new conversation must get an id")
	}
	if action.Reply != "echo: hello" || action.Status != dialogue.StatusCompleted {
		t.Errorf("action = %+v", action)
	}

	// A follow-up reuses the same state.
	id2, _, err := hub.Process(context.Background(), id, "u1", "echo", "again")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if id2 != id {
		t.Errorf("conversation id changed: %s -> %s", id, id2)
	}
	if state := hub.State(id); state == nil || len(state.Messages) != 4 {
		t.Errorf("transcript should accumulate, state = %+v", state)
	}
}

func TestHubUnknownSkill(t *testing.T) {
	hub := NewHub()
	if _, _, err := hub.Process(context.Background(), "", "u1", "nope", "hi"); err == nil {
		t.Fatal("expected error for unknown skill")
	}
}

func TestHubSkillSwitchResetsConversation(t *testing.T) {
	hub := NewHub()
	hub.Register("a", echoSkill{status: dialogue.StatusMissingFields})
	hub.Register("b", echoSkill{status: dialogue.StatusCompleted})

	id, _, _ := hub.Process(context.Background(), "", "u1", "a", "first")
	hub.Process(context.Background(), id, "u1", "b", "second")

	state := hub.State(id)
	if state.Skill != "b" {
		t.Errorf("skill = %s", state.Skill)
	}
	if len(state.Messages) != 2 {
		t.Errorf("switching skills should reset the transcript, got %d messages", len(state.Messages))
	}
}
