package actors

import (
	"testing"

	"vibelink/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestExtractMentionsOnlySelectedUsers(t *testing.T) {
	alice := &models.User{ID: uuid.New(), Username: "alice"}
	bob := &models.User{ID: uuid.New(), Username: "bob"}

	// carol is named in the text but was never picked from autocomplete.
	mentioned := ExtractMentions("hey @alice and @carol, ping @bob", []*models.User{alice, bob})

	assert.Equal(t, []uuid.UUID{alice.ID, bob.ID}, mentioned)
}

func TestExtractMentionsDeduplicates(t *testing.T) {
	alice := &models.User{ID: uuid.New(), Username: "alice"}

	mentioned := ExtractMentions("@alice @alice @alice", []*models.User{alice})

	assert.Equal(t, []uuid.UUID{alice.ID}, mentioned)
}

func TestExtractMentionsNoSelection(t *testing.T) {
	assert.Nil(t, ExtractMentions("hi @alice", nil))
}

func TestExtractMentionsNoTokens(t *testing.T) {
	alice := &models.User{ID: uuid.New(), Username: "alice"}
	assert.Empty(t, ExtractMentions("no mentions here", []*models.User{alice}))
}
