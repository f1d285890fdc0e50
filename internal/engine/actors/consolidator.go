package actors

import (
	"sort"

	"vibelink/internal/models"

	"github.com/google/uuid"
)

// ConsolidateMatches merges the two relation sources into one conversation
// entry per counterpart user. Project matches are folded in first, then
// direct matches; an entry touched by both sources is promoted to "both".
// The chat id keeps the first non-nil value seen and latest activity keeps
// the newest created_at among all contributing rows. The result is sorted
// by latest activity descending; ties keep fold-in order.
func ConsolidateMatches(viewerID uuid.UUID, projectMatches []*models.ProjectMatch, directMatches []*models.DirectMatch) []*models.ConsolidatedMatch {
	byCounterpart := make(map[uuid.UUID]*models.ConsolidatedMatch)
	order := make([]uuid.UUID, 0, len(projectMatches)+len(directMatches))

	for _, match := range projectMatches {
		counterpart := match.UserID
		if match.CreatorID != viewerID {
			counterpart = match.CreatorID
		}
		// Self-matches and nil counterparts indicate bad upstream data;
		// drop them silently.
		if counterpart == uuid.Nil || counterpart == viewerID {
			continue
		}

		entry, exists := byCounterpart[counterpart]
		if !exists {
			entry = &models.ConsolidatedMatch{
				CounterpartID:    counterpart,
				ChatID:           match.ChatID,
				Projects:         []models.ProjectSnapshot{match.Project},
				MatchType:        models.MatchTypeProject,
				LatestActivityAt: match.CreatedAt,
			}
			byCounterpart[counterpart] = entry
			order = append(order, counterpart)
			continue
		}

		entry.Projects = append(entry.Projects, match.Project)
		if entry.MatchType == models.MatchTypeDirect {
			entry.MatchType = models.MatchTypeBoth
		}
		if entry.ChatID == nil {
			entry.ChatID = match.ChatID
		}
		if match.CreatedAt.After(entry.LatestActivityAt) {
			entry.LatestActivityAt = match.CreatedAt
		}
	}

	for _, match := range directMatches {
		counterpart := match.User2ID
		if match.User1ID != viewerID {
			counterpart = match.User1ID
		}
		if counterpart == uuid.Nil || counterpart == viewerID {
			continue
		}

		entry, exists := byCounterpart[counterpart]
		if !exists {
			entry = &models.ConsolidatedMatch{
				CounterpartID:    counterpart,
				ChatID:           match.ChatID,
				Projects:         []models.ProjectSnapshot{},
				MatchType:        models.MatchTypeDirect,
				LatestActivityAt: match.CreatedAt,
			}
			byCounterpart[counterpart] = entry
			order = append(order, counterpart)
			continue
		}

		if entry.MatchType == models.MatchTypeProject {
			entry.MatchType = models.MatchTypeBoth
		}
		if entry.ChatID == nil {
			entry.ChatID = match.ChatID
		}
		if match.CreatedAt.After(entry.LatestActivityAt) {
			entry.LatestActivityAt = match.CreatedAt
		}
	}

	consolidated := make([]*models.ConsolidatedMatch, 0, len(order))
	for _, counterpart := range order {
		consolidated = append(consolidated, byCounterpart[counterpart])
	}

	sort.SliceStable(consolidated, func(i, j int) bool {
		return consolidated[i].LatestActivityAt.After(consolidated[j].LatestActivityAt)
	})

	return consolidated
}
