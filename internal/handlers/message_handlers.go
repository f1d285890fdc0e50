package handlers

import (
	"encoding/json"
	"net/http"

	"vibelink/internal/engine/actors"
	"vibelink/internal/middleware"

	"github.com/google/uuid"
)

// SendChatMessageRequest represents a request to send a chat message
type SendChatMessageRequest struct {
	ChatID  string `json:"chatId"`
	Content string `json:"content"`
}

// MarkMessageReadRequest represents a request to mark a message read
type MarkMessageReadRequest struct {
	MessageID string `json:"messageId"`
}

// HandleGetChatMessages returns all messages of a chat, oldest first.
func (s *Server) HandleGetChatMessages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.Metrics.IncrementRequests()

		if _, ok := middleware.GetUserIDFromContext(r.Context()); !ok {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		chatIDStr := r.URL.Query().Get("chatId")
		chatID, err := uuid.Parse(chatIDStr)
		if err != nil {
			http.Error(w, "Invalid chatId format", http.StatusBadRequest)
			return
		}

		result, err := s.requestActor(s.Engine.GetChatActor(), &actors.GetChatMessagesMsg{ChatID: chatID})
		if err != nil {
			http.Error(w, "Failed to get messages", http.StatusInternalServerError)
			return
		}

		s.respondActorResult(w, result)
	}
}

// HandleSendChatMessage sends a message from the authenticated user.
func (s *Server) HandleSendChatMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.Metrics.IncrementRequests()

		senderID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		var req SendChatMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		chatID, err := uuid.Parse(req.ChatID)
		if err != nil {
			http.Error(w, "Invalid chatId format", http.StatusBadRequest)
			return
		}

		result, err := s.requestActor(s.Engine.GetChatActor(), &actors.SendChatMessageMsg{
			ChatID:   chatID,
			SenderID: senderID,
			Content:  req.Content,
		})
		if err != nil {
			http.Error(w, "Failed to send message", http.StatusInternalServerError)
			return
		}

		s.respondActorResult(w, result)
	}
}

// HandleMarkMessageRead marks a message as read by the authenticated user.
func (s *Server) HandleMarkMessageRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.Metrics.IncrementRequests()

		readerID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		var req MarkMessageReadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		messageID, err := uuid.Parse(req.MessageID)
		if err != nil {
			http.Error(w, "Invalid messageId format", http.StatusBadRequest)
			return
		}

		result, err := s.requestActor(s.Engine.GetChatActor(), &actors.MarkMessageReadMsg{
			MessageID: messageID,
			ReaderID:  readerID,
		})
		if err != nil {
			http.Error(w, "Failed to mark message read", http.StatusInternalServerError)
			return
		}

		s.respondActorResult(w, result)
	}
}
