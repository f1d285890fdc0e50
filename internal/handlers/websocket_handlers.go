package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"vibelink/internal/engine/actors"
	"vibelink/internal/middleware"
	"vibelink/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: Implement proper origin checking based on config
		return true
	},
}

// wsAction is the envelope of an inbound frame from a view connection.
type wsAction struct {
	Action    string `json:"action"`
	RequestID string `json:"requestId,omitempty"`
	CommentID string `json:"commentId,omitempty"`
	ParentID  string `json:"parentId,omitempty"`
	Content   string `json:"content,omitempty"`
}

// HandleWebSocket opens a view session over a WebSocket connection. The
// view query parameter selects which session actor backs the connection:
// matches, thread (with contentId) or chat (with chatId). The session is
// spawned when the socket opens and stopped when it closes.
func (s *Server) HandleWebSocket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// 1. Authenticate using JWT from query parameter
		tokenString := r.URL.Query().Get("token")
		if tokenString == "" {
			log.Println("WebSocket connection failed: Missing token")
			http.Error(w, "Missing authentication token", http.StatusUnauthorized)
			return
		}

		claims, err := middleware.ValidateToken(tokenString)
		if err != nil {
			log.Printf("WebSocket connection failed: Invalid token: %v", err)
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		userID := claims.UserID
		if userID == uuid.Nil {
			log.Println("WebSocket connection failed: Nil userID in token claims")
			http.Error(w, "Invalid user ID in token", http.StatusInternalServerError)
			return
		}

		view := r.URL.Query().Get("view")

		// 2. Upgrade connection
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed for User %s: %v", userID, err)
			return
		}
		log.Printf("WebSocket connection upgraded for User %s (view=%s)", userID, view)

		// 3. Create and register the client
		client := &websocket.Client{
			Hub:    s.WSHub,
			UserID: userID,
			Conn:   conn,
			Send:   make(chan []byte, 256),
		}

		out := client.Enqueue

		// 4. Spawn the session actor backing this view
		var sessionPID *actor.PID
		switch view {
		case "matches":
			sessionPID = s.Engine.SpawnMatchSession(userID, out)
		case "thread":
			contentID, err := uuid.Parse(r.URL.Query().Get("contentId"))
			if err != nil {
				conn.Close()
				return
			}
			sessionPID = s.Engine.SpawnThreadSession(userID, contentID, out)
		case "chat":
			chatID, err := uuid.Parse(r.URL.Query().Get("chatId"))
			if err != nil {
				conn.Close()
				return
			}
			sessionPID = s.Engine.SpawnChatSession(userID, chatID, out)
		default:
			// Notification-only connection without a backing session.
			sessionPID = nil
		}

		client.OnMessage = func(payload []byte) {
			s.dispatchSessionAction(sessionPID, view, payload)
		}
		client.OnClose = func() {
			s.Engine.StopSession(sessionPID)
		}

		client.Hub.Register <- client

		// 5. Start read and write pumps
		go client.WritePump()
		go client.ReadPump()
	}
}

// dispatchSessionAction translates an inbound frame into a session message.
// Malformed frames and unknown actions are dropped with a log line.
func (s *Server) dispatchSessionAction(sessionPID *actor.PID, view string, payload []byte) {
	if sessionPID == nil {
		return
	}

	var action wsAction
	if err := json.Unmarshal(payload, &action); err != nil {
		log.Printf("WebSocket: dropping malformed frame: %v", err)
		return
	}

	var msg interface{}
	switch view {
	case "matches":
		switch action.Action {
		case "accept_request":
			requestID, err := uuid.Parse(action.RequestID)
			if err != nil {
				return
			}
			msg = &actors.AcceptFriendRequestMsg{RequestID: requestID}
		case "reject_request":
			requestID, err := uuid.Parse(action.RequestID)
			if err != nil {
				return
			}
			msg = &actors.RejectFriendRequestMsg{RequestID: requestID}
		case "refresh":
			msg = &actors.RefreshMatchesMsg{}
		}
	case "thread":
		switch action.Action {
		case "toggle_like":
			commentID, err := uuid.Parse(action.CommentID)
			if err != nil {
				return
			}
			msg = &actors.ToggleLikeMsg{CommentID: commentID}
		case "post_comment":
			post := &actors.PostCommentMsg{Content: action.Content}
			if action.ParentID != "" {
				parentID, err := uuid.Parse(action.ParentID)
				if err != nil {
					return
				}
				post.ParentID = &parentID
			}
			msg = post
		case "refresh":
			msg = &actors.RefreshThreadMsg{}
		}
	case "chat":
		switch action.Action {
		case "send_message":
			msg = &actors.SendMessageMsg{Content: action.Content}
		case "refresh":
			msg = &actors.RefreshChatMsg{}
		}
	}

	if msg == nil {
		log.Printf("WebSocket: unknown action %q for view %q", action.Action, view)
		return
	}

	s.Context.Send(sessionPID, msg)
}
