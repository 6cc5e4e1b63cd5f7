package pairings

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func players(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
	}
	return ids
}

func TestRoundRobin_SingleLeg(t *testing.T) {
	ids := players(4)

	got, err := RoundRobin(ids, 1)
	require.NoError(t, err)
	require.Len(t, got, 6)

	seen := make(map[[2]uuid.UUID]bool)
	for i, p := range got {
		assert.Equal(t, i+1, p.Order)
		assert.Equal(t, 1, p.Leg)
		assert.NotEqual(t, p.PlayerOneID, p.PlayerTwoID)
		key := [2]uuid.UUID{p.PlayerOneID, p.PlayerTwoID}
		assert.False(t, seen[key], "pair scheduled twice")
		seen[key] = true
	}
	assert.Equal(t, ids[0], got[0].PlayerOneID)
	assert.Equal(t, ids[1], got[0].PlayerTwoID)
}

func TestRoundRobin_DoubleLegSwapsSides(t *testing.T) {
	ids := players(3)

	got, err := RoundRobin(ids, 2)
	require.NoError(t, err)
	require.Len(t, got, 6)

	for i := 0; i < 3; i++ {
		first, second := got[i], got[i+3]
		assert.Equal(t, 2, second.Leg)
		assert.Equal(t, first.PlayerOneID, second.PlayerTwoID)
		assert.Equal(t, first.PlayerTwoID, second.PlayerOneID)
		assert.Equal(t, first.Order+3, second.Order)
	}
}

func TestRoundRobin_Errors(t *testing.T) {
	_, err := RoundRobin(players(1), 1)
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)

	_, err = RoundRobin(players(2), 3)
	assert.ErrorIs(t, err, ErrInvalidLegs)
}
