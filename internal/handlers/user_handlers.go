package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"vibelink/internal/engine/actors"
	"vibelink/internal/middleware"

	"github.com/google/uuid"
)

// RegisterUserRequest represents a request to register a new user
type RegisterUserRequest struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a request to log in a user
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents a response to a login request
type LoginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
	Error   string `json:"error,omitempty"`
	UserID  string `json:"userId"`
}

// HandleUserRegistration handles requests to register a new user
func (s *Server) HandleUserRegistration() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.Metrics.IncrementRequests()

		var req RegisterUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		result, err := s.requestActor(s.Engine.GetUserActor(), &actors.RegisterUserMsg{
			Username: req.Username,
			FullName: req.FullName,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			http.Error(w, "Failed to register user", http.StatusInternalServerError)
			return
		}

		s.respondActorResult(w, result)
	}
}

// HandleUserLogin handles requests to log in a user
func (s *Server) HandleUserLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.Metrics.IncrementRequests()

		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		result, err := s.requestActor(s.Engine.GetUserActor(), &actors.LoginMsg{
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			log.Printf("HTTP Handler: Error getting login result: %v", err)
			http.Error(w, "Failed to process login", http.StatusInternalServerError)
			return
		}

		loginResp, ok := result.(*actors.LoginResponse)
		if !ok {
			log.Printf("HTTP Handler: Invalid response type: %T", result)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		response := &LoginResponse{
			Success: loginResp.Success,
			Error:   loginResp.Error,
			UserID:  loginResp.UserID,
		}

		// Only generate token if login was successful
		if loginResp.Success {
			userID, err := uuid.Parse(loginResp.UserID)
			if err != nil {
				log.Printf("HTTP Handler: Invalid user ID format: %v", err)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			token, err := middleware.GenerateToken(userID)
			if err != nil {
				log.Printf("HTTP Handler: Failed to generate token: %v", err)
				http.Error(w, "Failed to generate auth token", http.StatusInternalServerError)
				return
			}
			response.Token = token
		}

		respondJSON(w, http.StatusOK, response)
	}
}

// HandleUserProfile handles requests to get a user's profile
func (s *Server) HandleUserProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.Metrics.IncrementRequests()

		userIDStr := r.URL.Query().Get("userId")
		if userIDStr == "" {
			// Default to the authenticated user.
			if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
				userIDStr = id.String()
			}
		}
		if userIDStr == "" {
			http.Error(w, "User ID required", http.StatusBadRequest)
			return
		}

		userID, err := uuid.Parse(userIDStr)
		if err != nil {
			http.Error(w, "Invalid user ID format", http.StatusBadRequest)
			return
		}

		result, err := s.requestActor(s.Engine.GetUserActor(), &actors.GetUserProfileMsg{UserID: userID})
		if err != nil {
			http.Error(w, "Failed to get user profile", http.StatusInternalServerError)
			return
		}

		s.respondActorResult(w, result)
	}
}

// HandleUserSearch handles username prefix searches for mention autocomplete
func (s *Server) HandleUserSearch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.Metrics.IncrementRequests()

		prefix := r.URL.Query().Get("q")
		if prefix == "" {
			http.Error(w, "Query required", http.StatusBadRequest)
			return
		}

		limit := 0
		if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
			if parsed, err := strconv.Atoi(limitStr); err == nil {
				limit = parsed
			}
		}

		result, err := s.requestActor(s.Engine.GetUserActor(), &actors.SearchUsersMsg{
			UsernamePrefix: prefix,
			Limit:          limit,
		})
		if err != nil {
			http.Error(w, "Failed to search users", http.StatusInternalServerError)
			return
		}

		s.respondActorResult(w, result)
	}
}

// HandleAvatarUpload stores an uploaded avatar image and records its URL on
// the user's profile.
func (s *Server) HandleAvatarUpload() http.HandlerFunc {
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

		// 5 MB upload cap.
		r.Body = http.MaxBytesReader(w, r.Body, 5<<20)
		if err := r.ParseMultipartForm(5 << 20); err != nil {
			http.Error(w, "Invalid upload", http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("avatar")
		if err != nil {
			http.Error(w, "avatar file required", http.StatusBadRequest)
			return
		}
		defer file.Close()

		urlPath, err := s.Storage.Save(header.Filename, header.Header.Get("Content-Type"), file)
		if err != nil {
			log.Printf("HTTP Handler: Failed to store avatar for %s: %v", userID, err)
			http.Error(w, "Failed to store avatar", http.StatusInternalServerError)
			return
		}

		result, err := s.requestActor(s.Engine.GetUserActor(), &actors.UpdateAvatarMsg{
			UserID:    userID,
			AvatarURL: urlPath,
		})
		if err != nil {
			http.Error(w, "Failed to update avatar", http.StatusInternalServerError)
			return
		}

		s.respondActorResult(w, result)
	}
}
