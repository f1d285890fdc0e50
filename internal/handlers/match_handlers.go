package handlers

import (
	"encoding/json"
	"net/http"

	"vibelink/internal/engine/actors"
	"vibelink/internal/middleware"

	"github.com/google/uuid"
)

// SendFriendRequestRequest represents a request to send a friend request
type SendFriendRequestRequest struct {
	ReceiverID string `json:"receiverId"`
	Message    string `json:"message,omitempty"`
}

// RespondFriendRequestRequest represents an accept or reject of a request
type RespondFriendRequestRequest struct {
	RequestID string `json:"requestId"`
	Accept    bool   `json:"accept"`
}

// HandleGetMatches returns the consolidated match list for the
// authenticated user.
func (s *Server) HandleGetMatches() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.Metrics.IncrementRequests()

		viewerID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		result, err := s.requestActor(s.Engine.GetMatchActor(), &actors.GetConsolidatedMatchesMsg{ViewerID: viewerID})
		if err != nil {
			http.Error(w, "Failed to get matches", http.StatusInternalServerError)
			return
		}

		s.respondActorResult(w, result)
	}
}

// HandleGetFriendRequests returns friend requests involving the
// authenticated user.
func (s *Server) HandleGetFriendRequests() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.Metrics.IncrementRequests()

		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		result, err := s.requestActor(s.Engine.GetMatchActor(), &actors.GetFriendRequestsMsg{UserID: userID})
		if err != nil {
			http.Error(w, "Failed to get friend requests", http.StatusInternalServerError)
			return
		}

		s.respondActorResult(w, result)
	}
}

// HandleSendFriendRequest creates a friend request from the authenticated
// user.
func (s *Server) HandleSendFriendRequest() http.HandlerFunc {
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

		var req SendFriendRequestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		receiverID, err := uuid.Parse(req.ReceiverID)
		if err != nil {
			http.Error(w, "Invalid receiverId format", http.StatusBadRequest)
			return
		}

		result, err := s.requestActor(s.Engine.GetMatchActor(), &actors.SendFriendRequestMsg{
			SenderID:   senderID,
			ReceiverID: receiverID,
			Message:    req.Message,
		})
		if err != nil {
			http.Error(w, "Failed to send friend request", http.StatusInternalServerError)
			return
		}

		// Nudge the receiver's open connections so they see the request
		// without waiting for a poll.
		if _, isErr := result.(error); !isErr {
			if payload, err := json.Marshal(map[string]string{"type": "friend_request_received"}); err == nil {
				s.WSHub.SendDirectMessage(receiverID, payload)
			}
		}

		s.respondActorResult(w, result)
	}
}

// HandleRespondFriendRequest accepts or rejects a pending request.
func (s *Server) HandleRespondFriendRequest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.Metrics.IncrementRequests()

		receiverID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		var req RespondFriendRequestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		requestID, err := uuid.Parse(req.RequestID)
		if err != nil {
			http.Error(w, "Invalid requestId format", http.StatusBadRequest)
			return
		}

		result, err := s.requestActor(s.Engine.GetMatchActor(), &actors.RespondFriendRequestMsg{
			RequestID:  requestID,
			ReceiverID: receiverID,
			Accept:     req.Accept,
		})
		if err != nil {
			http.Error(w, "Failed to respond to friend request", http.StatusInternalServerError)
			return
		}

		s.respondActorResult(w, result)
	}
}

// HandleCancelFriendRequest deletes a pending request sent by the
// authenticated user.
func (s *Server) HandleCancelFriendRequest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.Metrics.IncrementRequests()

		senderID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		requestIDStr := r.URL.Query().Get("requestId")
		requestID, err := uuid.Parse(requestIDStr)
		if err != nil {
			http.Error(w, "Invalid requestId format", http.StatusBadRequest)
			return
		}

		result, err := s.requestActor(s.Engine.GetMatchActor(), &actors.CancelFriendRequestMsg{
			RequestID: requestID,
			SenderID:  senderID,
		})
		if err != nil {
			http.Error(w, "Failed to cancel friend request", http.StatusInternalServerError)
			return
		}

		s.respondActorResult(w, result)
	}
}
