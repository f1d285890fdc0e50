package actors

import (
	"testing"
	"time"

	"vibelink/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestConsolidateMatchesMergesPerCounterpart(t *testing.T) {
	viewer := uuid.New()
	other := uuid.New()
	chatID := uuid.New()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	projectMatches := []*models.ProjectMatch{
		{
			ID:        uuid.New(),
			ProjectID: uuid.New(),
			CreatorID: viewer,
			UserID:    other,
			ChatID:    &chatID,
			CreatedAt: base,
			Project:   models.ProjectSnapshot{Title: "First project"},
		},
		{
			ID:        uuid.New(),
			ProjectID: uuid.New(),
			CreatorID: other,
			UserID:    viewer,
			CreatedAt: base.Add(time.Hour),
			Project:   models.ProjectSnapshot{Title: "Second project"},
		},
	}
	directMatches := []*models.DirectMatch{
		{
			ID:        uuid.New(),
			User1ID:   other,
			User2ID:   viewer,
			CreatedAt: base.Add(2 * time.Hour),
		},
	}

	result := ConsolidateMatches(viewer, projectMatches, directMatches)

	assert.Len(t, result, 1)
	entry := result[0]
	assert.Equal(t, other, entry.CounterpartID)
	assert.Equal(t, models.MatchTypeBoth, entry.MatchType)
	assert.Len(t, entry.Projects, 2)
	assert.Equal(t, "First project", entry.Projects[0].Title)
	assert.Equal(t, "Second project", entry.Projects[1].Title)
	// First non-nil chat id wins.
	assert.NotNil(t, entry.ChatID)
	assert.Equal(t, chatID, *entry.ChatID)
	// Latest activity is the max over every contributing row.
	assert.Equal(t, base.Add(2*time.Hour), entry.LatestActivityAt)
}

func TestConsolidateMatchesChatIDKeepsFirstNonNil(t *testing.T) {
	viewer := uuid.New()
	other := uuid.New()
	directChat := uuid.New()
	base := time.Now()

	projectMatches := []*models.ProjectMatch{
		{ID: uuid.New(), CreatorID: viewer, UserID: other, CreatedAt: base, Project: models.ProjectSnapshot{Title: "No chat"}},
	}
	directMatches := []*models.DirectMatch{
		{ID: uuid.New(), User1ID: viewer, User2ID: other, ChatID: &directChat, CreatedAt: base.Add(time.Minute)},
	}

	result := ConsolidateMatches(viewer, projectMatches, directMatches)

	assert.Len(t, result, 1)
	assert.NotNil(t, result[0].ChatID)
	assert.Equal(t, directChat, *result[0].ChatID)
}

func TestConsolidateMatchesSortsByLatestActivityDesc(t *testing.T) {
	viewer := uuid.New()
	older := uuid.New()
	newer := uuid.New()
	base := time.Now()

	projectMatches := []*models.ProjectMatch{
		{ID: uuid.New(), CreatorID: viewer, UserID: older, CreatedAt: base.Add(-time.Hour), Project: models.ProjectSnapshot{Title: "Old"}},
		{ID: uuid.New(), CreatorID: viewer, UserID: newer, CreatedAt: base, Project: models.ProjectSnapshot{Title: "New"}},
	}

	result := ConsolidateMatches(viewer, projectMatches, nil)

	assert.Len(t, result, 2)
	assert.Equal(t, newer, result[0].CounterpartID)
	assert.Equal(t, older, result[1].CounterpartID)
}

func TestConsolidateMatchesTiesKeepFoldInOrder(t *testing.T) {
	viewer := uuid.New()
	first := uuid.New()
	second := uuid.New()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	projectMatches := []*models.ProjectMatch{
		{ID: uuid.New(), CreatorID: viewer, UserID: first, CreatedAt: at, Project: models.ProjectSnapshot{Title: "A"}},
		{ID: uuid.New(), CreatorID: viewer, UserID: second, CreatedAt: at, Project: models.ProjectSnapshot{Title: "B"}},
	}

	result := ConsolidateMatches(viewer, projectMatches, nil)

	assert.Len(t, result, 2)
	assert.Equal(t, first, result[0].CounterpartID)
	assert.Equal(t, second, result[1].CounterpartID)
}

func TestConsolidateMatchesDirectOnly(t *testing.T) {
	viewer := uuid.New()
	other := uuid.New()

	directMatches := []*models.DirectMatch{
		{ID: uuid.New(), User1ID: viewer, User2ID: other, CreatedAt: time.Now()},
	}

	result := ConsolidateMatches(viewer, nil, directMatches)

	assert.Len(t, result, 1)
	assert.Equal(t, models.MatchTypeDirect, result[0].MatchType)
	assert.Empty(t, result[0].Projects)
	assert.Nil(t, result[0].ChatID)
}

func TestConsolidateMatchesDropsSelfAndNilCounterparts(t *testing.T) {
	viewer := uuid.New()

	projectMatches := []*models.ProjectMatch{
		{ID: uuid.New(), CreatorID: viewer, UserID: viewer, CreatedAt: time.Now()},
		{ID: uuid.New(), CreatorID: viewer, UserID: uuid.Nil, CreatedAt: time.Now()},
	}
	directMatches := []*models.DirectMatch{
		{ID: uuid.New(), User1ID: viewer, User2ID: viewer, CreatedAt: time.Now()},
	}

	result := ConsolidateMatches(viewer, projectMatches, directMatches)

	assert.Empty(t, result)
}

func TestConsolidateMatchesEmptyInputs(t *testing.T) {
	result := ConsolidateMatches(uuid.New(), nil, nil)
	assert.NotNil(t, result)
	assert.Empty(t, result)
}
