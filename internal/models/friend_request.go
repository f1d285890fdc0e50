package models

import (
	"time"

	"github.com/google/uuid"
)

// FriendRequestStatus is the lifecycle state of a friend request.
type FriendRequestStatus string

const (
	FriendRequestPending  FriendRequestStatus = "pending"
	FriendRequestAccepted FriendRequestStatus = "accepted"
	FriendRequestRejected FriendRequestStatus = "rejected"
)

// FriendRequest is created by the sender and mutated only by the receiver
// (status transition) or deleted by the sender while still pending.
type FriendRequest struct {
	ID          uuid.UUID           `json:"id"`
	SenderID    uuid.UUID           `json:"senderId"`
	ReceiverID  uuid.UUID           `json:"receiverId"`
	Message     string              `json:"message,omitempty"`
	Status      FriendRequestStatus `json:"status"`
	CreatedAt   time.Time           `json:"createdAt"`
	RespondedAt *time.Time          `json:"respondedAt,omitempty"`
}
