package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a two-level comment on a content item. A comment with a
// non-nil ParentID is a reply and is never itself re-nested.
type Comment struct {
	ID             uuid.UUID   `json:"id"`
	ContentID      uuid.UUID   `json:"contentId"`
	UserID         uuid.UUID   `json:"userId"`
	AuthorUsername string      `json:"authorUsername,omitempty"`
	ParentID       *uuid.UUID  `json:"parentId,omitempty"`
	Content        string      `json:"content"`
	MentionedUsers []uuid.UUID `json:"mentionedUsers,omitempty"`
	LikeCount      int         `json:"likeCount"`
	ReplyCount     int         `json:"replyCount"`
	CreatedAt      time.Time   `json:"createdAt"`

	// Viewer-specific annotations, not stored.
	UserHasLiked bool       `json:"userHasLiked"`
	Replies      []*Comment `json:"replies,omitempty"`
}

// CommentLike records that a user has liked a comment. Existence implies
// "has liked"; the store enforces uniqueness per (comment, user).
type CommentLike struct {
	CommentID uuid.UUID `json:"commentId"`
	UserID    uuid.UUID `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}
