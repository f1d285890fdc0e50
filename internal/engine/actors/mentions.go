package actors

import (
	"regexp"

	"vibelink/internal/models"

	"github.com/google/uuid"
)

var mentionPattern = regexp.MustCompile(`@(\w+)`)

// ExtractMentions scans a drafted comment for @username tokens and resolves
// them against the users the author explicitly picked from the autocomplete
// suggestions. An @word token with no matching selected user is left
// untracked, even if it happens to name a real account.
func ExtractMentions(content string, selected []*models.User) []uuid.UUID {
	if len(selected) == 0 {
		return nil
	}

	byUsername := make(map[string]uuid.UUID, len(selected))
	for _, user := range selected {
		if user != nil && user.Username != "" {
			byUsername[user.Username] = user.ID
		}
	}

	var mentioned []uuid.UUID
	seen := make(map[uuid.UUID]bool)
	for _, token := range mentionPattern.FindAllStringSubmatch(content, -1) {
		id, ok := byUsername[token[1]]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		mentioned = append(mentioned, id)
	}
	return mentioned
}
