package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"vibelink/internal/engine/actors"
	"vibelink/internal/middleware"
	"vibelink/internal/models"

	"github.com/google/uuid"
)

// CreateCommentRequest represents a request to create a new comment
type CreateCommentRequest struct {
	ContentID string `json:"contentId"`
	Content   string `json:"content"`
	ParentID  string `json:"parentId,omitempty"`
	// IDs of users the author picked from mention autocomplete.
	SelectedMentionIDs []string `json:"selectedMentionIds,omitempty"`
}

// ToggleCommentLikeRequest represents a like or unlike of a comment
type ToggleCommentLikeRequest struct {
	CommentID string `json:"commentId"`
	Like      bool   `json:"like"`
}

// HandleGetCommentThread returns the assembled two-level thread for a
// content item, annotated for the authenticated viewer when there is one.
func (s *Server) HandleGetCommentThread() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.Metrics.IncrementRequests()

		contentIDStr := r.URL.Query().Get("contentId")
		contentID, err := uuid.Parse(contentIDStr)
		if err != nil {
			http.Error(w, "Invalid contentId format", http.StatusBadRequest)
			return
		}

		// Anonymous viewers get the thread without like annotations.
		viewerID, _ := middleware.GetUserIDFromContext(r.Context())

		result, err := s.requestActor(s.Engine.GetCommentActor(), &actors.GetCommentThreadMsg{
			ContentID: contentID,
			ViewerID:  viewerID,
		})
		if err != nil {
			http.Error(w, "Failed to get comments", http.StatusInternalServerError)
			return
		}

		s.respondActorResult(w, result)
	}
}

// HandleCreateComment creates a comment or reply authored by the
// authenticated user.
func (s *Server) HandleCreateComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.Metrics.IncrementRequests()

		authorID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		var req CreateCommentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		contentID, err := uuid.Parse(req.ContentID)
		if err != nil {
			http.Error(w, "Invalid contentId format", http.StatusBadRequest)
			return
		}

		var parentID *uuid.UUID
		if req.ParentID != "" {
			parsed, err := uuid.Parse(req.ParentID)
			if err != nil {
				http.Error(w, "Invalid parentId format", http.StatusBadRequest)
				return
			}
			parentID = &parsed
		}

		result, err := s.requestActor(s.Engine.GetCommentActor(), &actors.CreateCommentMsg{
			ContentID:        contentID,
			AuthorID:         authorID,
			ParentID:         parentID,
			Content:          req.Content,
			SelectedMentions: s.resolveMentionUsers(r, req.SelectedMentionIDs),
		})
		if err != nil {
			http.Error(w, "Failed to create comment", http.StatusInternalServerError)
			return
		}

		s.respondActorResult(w, result)
	}
}

// resolveMentionUsers loads the users behind the selected mention ids.
// Unknown ids are skipped; mentioning is best-effort.
func (s *Server) resolveMentionUsers(r *http.Request, ids []string) []*models.User {
	if len(ids) == 0 {
		return nil
	}

	users := make([]*models.User, 0, len(ids))
	for _, idStr := range ids {
		id, err := uuid.Parse(idStr)
		if err != nil {
			continue
		}
		user, err := s.Store.GetUser(r.Context(), id)
		if err != nil {
			log.Printf("HTTP Handler: Skipping unknown mention candidate %s: %v", idStr, err)
			continue
		}
		users = append(users, user)
	}
	return users
}

// HandleDeleteComment deletes a comment authored by the authenticated user.
func (s *Server) HandleDeleteComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.Metrics.IncrementRequests()

		authorID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		commentIDStr := r.URL.Query().Get("commentId")
		commentID, err := uuid.Parse(commentIDStr)
		if err != nil {
			http.Error(w, "Invalid commentId format", http.StatusBadRequest)
			return
		}

		result, err := s.requestActor(s.Engine.GetCommentActor(), &actors.DeleteCommentMsg{
			CommentID: commentID,
			AuthorID:  authorID,
		})
		if err != nil {
			http.Error(w, "Failed to delete comment", http.StatusInternalServerError)
			return
		}

		s.respondActorResult(w, result)
	}
}

// HandleToggleCommentLike likes or unlikes a comment for the authenticated
// user.
func (s *Server) HandleToggleCommentLike() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.Metrics.IncrementRequests()

		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		var req ToggleCommentLikeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		commentID, err := uuid.Parse(req.CommentID)
		if err != nil {
			http.Error(w, "Invalid commentId format", http.StatusBadRequest)
			return
		}

		result, err := s.requestActor(s.Engine.GetCommentActor(), &actors.ToggleCommentLikeMsg{
			CommentID: commentID,
			UserID:    userID,
			Like:      req.Like,
		})
		if err != nil {
			http.Error(w, "Failed to toggle comment like", http.StatusInternalServerError)
			return
		}

		s.respondActorResult(w, result)
	}
}
