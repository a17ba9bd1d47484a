package receipt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buriane/taghiane/internal/models"
)

func TestSetParticipants(t *testing.T) {
	d := SetParticipants(sampleDraft(), []models.Participant{
		{ID: "u1", Name: CurrentUserName},
		{Name: "  Sari "},
		{Name: "   "},
	})

	require.Len(t, d.Participants, 2)
	assert.Equal(t, "Sari", d.Participants[1].Name)
	assert.NotEmpty(t, d.Participants[1].ID)
	assert.Equal(t, []string{"u1"}, d.Items[0].AssignedTo)
	// Budi (p2) was removed and Sari added, so the split item follows the new roster.
	assert.True(t, d.Items[1].SplitEvenly)
	assert.Equal(t, []string{"u1", d.Participants[1].ID}, d.Items[1].AssignedTo)
}

func TestSetParticipantsKeepsEvenSplitInSync(t *testing.T) {
	d := sampleDraft()

	grown := SetParticipants(d, append(d.Participants, models.Participant{ID: "p3", Name: "Citra"}))
	assert.Equal(t, []string{"u1", "p2", "p3"}, grown.Items[1].AssignedTo)
	assert.Equal(t, []string{"u1"}, grown.Items[0].AssignedTo)

	shrunk := SetParticipants(grown, []models.Participant{{ID: "p3", Name: "Citra"}})
	assert.Equal(t, []string{"p3"}, shrunk.Items[1].AssignedTo)
	assert.Empty(t, shrunk.Items[0].AssignedTo)

	// The input draft is left alone.
	assert.Equal(t, []string{"u1", "p2"}, d.Items[1].AssignedTo)
}

func TestEnsureCurrentUser(t *testing.T) {
	d := models.Receipt{Participants: []models.Participant{{ID: "p2", Name: "Budi"}}}

	got := EnsureCurrentUser(d, "user_123")
	require.Len(t, got.Participants, 2)
	assert.Equal(t, models.Participant{ID: "user_123", Name: CurrentUserName}, got.Participants[0])
	assert.Equal(t, "user_123", got.CurrentUserID)

	again := EnsureCurrentUser(got, "user_123")
	assert.Len(t, again.Participants, 2)

	assert.Equal(t, d, EnsureCurrentUser(d, ""))
}

func TestToggleAssignment(t *testing.T) {
	d := sampleDraft()

	added, err := ToggleAssignment(d, "i1", "p2")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "p2"}, added.Items[0].AssignedTo)

	removed, err := ToggleAssignment(added, "i1", "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p2"}, removed.Items[0].AssignedTo)

	// Toggling someone off an evenly split item leaves the rest of the roster.
	split, err := ToggleAssignment(d, "i2", "p2")
	require.NoError(t, err)
	assert.False(t, split.Items[1].SplitEvenly)
	assert.Equal(t, []string{"u1"}, split.Items[1].AssignedTo)

	_, err = ToggleAssignment(d, "missing", "u1")
	assert.ErrorIs(t, err, ErrItemNotFound)

	_, err = ToggleAssignment(d, "i1", "stranger")
	assert.ErrorIs(t, err, ErrParticipantNotFound)
}

func TestToggleSplitEvenly(t *testing.T) {
	d := sampleDraft()

	on, err := ToggleSplitEvenly(d, "i1")
	require.NoError(t, err)
	assert.True(t, on.Items[0].SplitEvenly)
	assert.Equal(t, []string{"u1", "p2"}, on.Items[0].AssignedTo)

	off, err := ToggleSplitEvenly(on, "i1")
	require.NoError(t, err)
	assert.False(t, off.Items[0].SplitEvenly)
	assert.Empty(t, off.Items[0].AssignedTo)

	_, err = ToggleSplitEvenly(d, "missing")
	assert.ErrorIs(t, err, ErrItemNotFound)
}
