package mcp

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/cal-pilot/internal/dialogue"
	"github.com/ziadkadry99/cal-pilot/internal/skills"
	"github.com/ziadkadry99/cal-pilot/internal/skills/editevent"
	"github.com/ziadkadry99/cal-pilot/internal/skills/removepreferred"
	"github.com/ziadkadry99/cal-pilot/internal/vectordb"
)

// echoSkill answers every turn with a fixed reply.
type echoSkill struct {
	reply  string
	status dialogue.Status
}

func (e *echoSkill) HandleTurn(_ context.Context, state *dialogue.State) dialogue.Action {
	state.AddAssistantMessage(e.reply)
	state.Finish(e.status)
	return dialogue.Action{Reply: e.reply, Status: e.status}
}

func newTestServer(t *testing.T) (*Server, *vectordb.MemoryIndex) {
	t.Helper()
	hub := skills.NewHub()
	hub.Register(editevent.Name, &echoSkill{reply: "event successfully edited", status: dialogue.StatusCompleted})
	hub.Register(removepreferred.Name, &echoSkill{reply: "successfully removed all preferred times", status: dialogue.StatusCompleted})
	index := vectordb.NewMemoryIndex()
	return NewServer(hub, index), index
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		name     string
		tool     mcp.Tool
		wantName string
	}{
		{"edit_event", editEventTool, "edit_event"},
		{"remove_preferred_times", removePreferredTimesTool, "remove_preferred_times"},
		{"search_events", searchEventsTool, "search_events"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestNewServer(t *testing.T) {
	srv, index := newTestServer(t)
	if srv == nil {
		t.Fatal("NewServer returned nil")
	}
	if srv.mcp == nil {
		t.Fatal("MCP server not initialized")
	}
	if srv.index != vectordb.EventIndex(index) {
		t.Error("index not set correctly")
	}
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) != 1 {
		t.Fatalf("content length = %d, want 1", len(result.Content))
	}
	text, ok := mcp.AsTextContent(result.Content[0])
	if !ok {
		t.Fatalf("content is not text: %T", result.Content[0])
	}
	return text.Text
}

func TestHandleEditEvent(t *testing.T) {
	srv, _ := newTestServer(t)

	result, err := srv.handleEditEvent(context.Background(), callRequest(map[string]any{
		"user_id": "u1",
		"message": "move my standup to thursday",
	}))
	if err != nil {
		t.Fatalf("handleEditEvent: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, result))
	}

	text := resultText(t, result)
	if !strings.Contains(text, "status: completed") {
		t.Errorf("result missing status, got:\n%s", text)
	}
	if !strings.Contains(text, "event successfully edited") {
		t.Errorf("result missing reply, got:\n%s", text)
	}
	if !strings.Contains(text, "conversation: ") {
		t.Errorf("result missing conversation id, got:\n%s", text)
	}
}

func TestHandleTurnMissingParams(t *testing.T) {
	srv, _ := newTestServer(t)

	result, err := srv.handleEditEvent(context.Background(), callRequest(map[string]any{
		"message": "move my standup",
	}))
	if err != nil {
		t.Fatalf("handleEditEvent: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error for missing user_id")
	}

	result, err = srv.handleRemovePreferredTimes(context.Background(), callRequest(map[string]any{
		"user_id": "u1",
	}))
	if err != nil {
		t.Fatalf("handleRemovePreferredTimes: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error for missing message")
	}
}

func TestHandleSearchEvents(t *testing.T) {
	srv, index := newTestServer(t)

	err := index.IndexEvent(context.Background(), vectordb.EventDoc{
		EventID:   "evt1",
		UserID:    "u1",
		Title:     "weekly standup",
		StartDate: time.Now().AddDate(0, 0, 2),
	})
	if err != nil {
		t.Fatalf("IndexEvent: %v", err)
	}

	result, err := srv.handleSearchEvents(context.Background(), callRequest(map[string]any{
		"user_id": "u1",
		"query":   "standup",
	}))
	if err != nil {
		t.Fatalf("handleSearchEvents: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, result))
	}

	text := resultText(t, result)
	if !strings.Contains(text, "weekly standup") {
		t.Errorf("result missing event title, got:\n%s", text)
	}
}

func TestHandleSearchEventsNoResults(t *testing.T) {
	srv, _ := newTestServer(t)

	result, err := srv.handleSearchEvents(context.Background(), callRequest(map[string]any{
		"user_id": "u1",
		"query":   "standup",
	}))
	if err != nil {
		t.Fatalf("handleSearchEvents: %v", err)
	}

	if got := resultText(t, result); got != "No matching events found." {
		t.Errorf("result = %q", got)
	}
}
