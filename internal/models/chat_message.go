package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is a single direct chat message inside a conversation.
type ChatMessage struct {
	ID        uuid.UUID `json:"id"`
	ChatID    uuid.UUID `json:"chatId"`
	SenderID  uuid.UUID `json:"senderId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	IsRead    bool      `json:"isRead"`
}

// StatusResponse is a generic success/failure payload for mutations.
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
