package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// chatRequest is the incoming WebSocket message format.
type chatRequest struct {
	ConversationID string `json:"conversationId,omitempty"`
	UserID         string `json:"userId"`
	Skill          string `json:"skill"`
	Content        string `json:"content"`
}

// chatResponse is the outgoing WebSocket message format.
type chatResponse struct {
	Type           string `json:"type"` // "response" or "error"
	ConversationID string `json:"conversationId,omitempty"`
	Content        string `json:"content"`
	Status         string `json:"status,omitempty"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("server: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("server: websocket read: %v", err)
			}
			return
		}

		var req chatRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			sendError(conn, "", "invalid message format")
			continue
		}
		if req.Content == "" || req.UserID == "" || req.Skill == "" {
			sendError(conn, req.ConversationID, "userId, skill and content are required")
			continue
		}

		conversationID, action, err := s.hub.Process(r.Context(), req.ConversationID, req.UserID, req.Skill, req.Content)
		if err != nil {
			sendError(conn, req.ConversationID, err.Error())
			continue
		}

		sendResponse(conn, chatResponse{
			Type:           "response",
			ConversationID: conversationID,
			Content:        action.Reply,
			Status:         string(action.Status),
		})
	}
}

func sendResponse(conn *websocket.Conn, resp chatResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("server: websocket write: %v", err)
	}
}

func sendError(conn *websocket.Conn, conversationID, message string) {
	resp := chatResponse{
		Type:           "error",
		ConversationID: conversationID,
		Content:        message,
	}
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("server: websocket write error: %v", err)
	}
}
