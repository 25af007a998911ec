package mcp

import "github.com/mark3labs/mcp-go/mcp"

// editEventTool defines the edit_event MCP tool.
var editEventTool = mcp.NewTool("edit_event",
	mcp.WithDescription("Edit a calendar event conversationally. Each call is one dialogue turn; when the reply asks for more details, call again with the same conversation_id and the extra information."),
	mcp.WithString("user_id",
		mcp.Required(),
		mcp.Description("ID of the calendar owner"),
	),
	mcp.WithString("message",
		mcp.Required(),
		mcp.Description("Natural language instruction, e.g. \"move my standup to Thursday at 2pm\""),
	),
	mcp.WithString("conversation_id",
		mcp.Description("Conversation to continue. Omit to start a new one; the reply includes the assigned ID."),
	),
)

// removePreferredTimesTool defines the remove_preferred_times MCP tool.
var removePreferredTimesTool = mcp.NewTool("remove_preferred_times",
	mcp.WithDescription("Remove every preferred time range from a calendar event, named conversationally. Follow-up turns work like edit_event."),
	mcp.WithString("user_id",
		mcp.Required(),
		mcp.Description("ID of the calendar owner"),
	),
	mcp.WithString("message",
		mcp.Required(),
		mcp.Description("Natural language instruction naming the event"),
	),
	mcp.WithString("conversation_id",
		mcp.Description("Conversation to continue. Omit to start a new one."),
	),
)

// searchEventsTool defines the search_events MCP tool.
var searchEventsTool = mcp.NewTool("search_events",
	mcp.WithDescription("Search a user's upcoming and recent events by title similarity."),
	mcp.WithString("user_id",
		mcp.Required(),
		mcp.Description("ID of the calendar owner"),
	),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Event title or fragment to search for"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of results to return (default 5)"),
	),
)
