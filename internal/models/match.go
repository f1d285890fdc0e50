package models

import (
	"time"

	"github.com/google/uuid"
)

// MatchType describes which relation sources contributed to a consolidated match.
type MatchType string

const (
	MatchTypeProject MatchType = "project"
	MatchTypeDirect  MatchType = "direct"
	MatchTypeBoth    MatchType = "both"
)

// ProjectSnapshot is the project context captured when a project match was created.
type ProjectSnapshot struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CoverURL    string `json:"coverUrl,omitempty"`
}

// ProjectMatch links two users that collaborated on a specific project.
// Rows are created by the external matching process and are read-only here.
type ProjectMatch struct {
	ID        uuid.UUID       `json:"id"`
	ProjectID uuid.UUID       `json:"projectId"`
	CreatorID uuid.UUID       `json:"creatorId"`
	UserID    uuid.UUID       `json:"userId"`
	ChatID    *uuid.UUID      `json:"chatId,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	Project   ProjectSnapshot `json:"project"`
}

// DirectMatch links two users outside of any project.
type DirectMatch struct {
	ID        uuid.UUID  `json:"id"`
	User1ID   uuid.UUID  `json:"user1Id"`
	User2ID   uuid.UUID  `json:"user2Id"`
	ChatID    *uuid.UUID `json:"chatId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// ConsolidatedMatch is the merged conversation record for one counterpart
// user. It is a pure projection rebuilt on every fetch, never written back.
type ConsolidatedMatch struct {
	CounterpartID    uuid.UUID         `json:"counterpartId"`
	ChatID           *uuid.UUID        `json:"chatId,omitempty"`
	Projects         []ProjectSnapshot `json:"projects"`
	MatchType        MatchType         `json:"matchType"`
	LatestActivityAt time.Time         `json:"latestActivityAt"`
}
