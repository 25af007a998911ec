package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/cal-pilot/internal/skills/editevent"
	"github.com/ziadkadry99/cal-pilot/internal/skills/removepreferred"
	"github.com/ziadkadry99/cal-pilot/internal/vectordb"
)

// handleEditEvent runs one dialogue turn of the edit event skill.
func (s *Server) handleEditEvent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.handleTurn(ctx, request, editevent.Name)
}

// handleRemovePreferredTimes runs one dialogue turn of the preferred
// times removal skill.
func (s *Server) handleRemovePreferredTimes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.handleTurn(ctx, request, removepreferred.Name)
}

func (s *Server) handleTurn(ctx context.Context, request mcp.CallToolRequest, skill string) (*mcp.CallToolResult, error) {
	userID, err := request.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: user_id"), nil
	}
	message, err := request.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: message"), nil
	}
	conversationID := request.GetString("conversation_id", "")

	conversationID, action, err := s.hub.Process(ctx, conversationID, userID, skill, message)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("turn failed: %v", err)), nil
	}

	return mcp.NewToolResultText(formatTurn(conversationID, string(action.Status), action.Reply)), nil
}

// handleSearchEvents looks up events by title similarity inside the
// default scheduling window.
func (s *Server) handleSearchEvents(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := request.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: user_id"), nil
	}
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	limit := request.GetInt("limit", 5)
	if limit <= 0 {
		limit = 5
	}

	now := time.Now()
	hits, err := s.index.SearchEvents(ctx, userID, query, now.AddDate(0, 0, -14), now.AddDate(0, 0, 28), limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	if len(hits) == 0 {
		return mcp.NewToolResultText("No matching events found."), nil
	}

	return mcp.NewToolResultText(formatSearchHits(hits)), nil
}

// formatTurn renders a dialogue turn result as text. The conversation
// ID is always included so the client can continue the dialogue.
func formatTurn(conversationID, status, reply string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "conversation: %s\n", conversationID)
	fmt.Fprintf(&sb, "status: %s\n\n", status)
	sb.WriteString(reply)
	return sb.String()
}

// formatSearchHits renders index hits as a numbered list.
func formatSearchHits(hits []vectordb.SearchHit) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d event(s):\n\n", len(hits))
	for i, h := range hits {
		fmt.Fprintf(&sb, "%d. %s (starts %s, similarity %.2f)\n",
			i+1, h.Title, h.StartDate.Format(time.RFC3339), h.Similarity)
	}
	return sb.String()
}
