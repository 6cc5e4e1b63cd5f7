package services

import (
	"context"
	"testing"

	"github.com/Dosada05/tournament-rewards/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankLeaderboard(t *testing.T) {
	entries := []models.LeaderboardEntry{
		{Username: "first", Score: 3},
		{Username: "second", Score: 7},
		{Username: "third", Score: 3},
		{Username: "fourth", Score: 10},
	}

	ranked := RankLeaderboard(entries)
	names := make([]string, len(ranked))
	for i, e := range ranked {
		names[i] = e.Username
	}
	assert.Equal(t, []string{"fourth", "second", "first", "third"}, names)
	assert.Equal(t, "first", entries[0].Username, "input must not be reordered")

	assert.Equal(t, ranked, RankLeaderboard(ranked))
	assert.Empty(t, RankLeaderboard(nil))
}

func TestRankLeaderboard_AllTiedKeepsRegistrationOrder(t *testing.T) {
	entries := []models.LeaderboardEntry{{Username: "a"}, {Username: "b"}, {Username: "c"}}
	assert.Equal(t, entries, RankLeaderboard(entries))
}

func TestBuildLeaderboard(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	players := []models.Registration{{UserID: a, Username: "alice"}, {UserID: b, Username: "bob"}}

	board := BuildLeaderboard(players, models.PlayerScores{b: 4})
	require.Len(t, board, 2)
	assert.Equal(t, "bob", board[0].Username)
	assert.Equal(t, 4, board[0].Score)
	assert.Equal(t, 0, board[1].Score)
}

func TestClassifyResult(t *testing.T) {
	tests := []struct {
		one, two int
		want     models.MatchResult
	}{
		{80, 42, models.ResultPlayerOne},
		{10, 10, models.ResultDraw},
		{5, 100, models.ResultPlayerTwo},
		{0, 0, models.ResultDraw},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyResult(tt.one, tt.two), "%d vs %d", tt.one, tt.two)
	}
}

func TestTournamentPoints(t *testing.T) {
	one, two := TournamentPoints(models.ResultPlayerOne)
	assert.Equal(t, []int{3, 0}, []int{one, two})

	one, two = TournamentPoints(models.ResultDraw)
	assert.Equal(t, []int{1, 1}, []int{one, two})

	one, two = TournamentPoints(models.ResultPlayerTwo)
	assert.Equal(t, []int{0, 3}, []int{one, two})
}

func TestRandomScoreGenerator_Bounds(t *testing.T) {
	gen, err := NewRandomScoreGenerator(5, 100)
	require.NoError(t, err)

	for i := 0; i < 1000; i++ {
		one, two, err := gen.Scores(context.Background(), &models.Match{})
		require.NoError(t, err)
		assert.True(t, one >= 5 && one <= 100, "score_one out of range: %d", one)
		assert.True(t, two >= 5 && two <= 100, "score_two out of range: %d", two)
	}

	_, err = NewRandomScoreGenerator(10, 5)
	assert.Error(t, err)
	_, err = NewRandomScoreGenerator(-1, 5)
	assert.Error(t, err)
}

func TestNormalizeUsername(t *testing.T) {
	name, err := normalizeUsername("  alice  ")
	require.NoError(t, err)
	assert.Equal(t, "alice", name)

	_, err = normalizeUsername("  ab ")
	assert.ErrorIs(t, err, ErrValidationFailed)

	long := "abcdefghijklmnopqrstuvwxyzabcdefghijklm" // 39
	_, err = normalizeUsername(long)
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = normalizeUsername(long[:38])
	assert.NoError(t, err)
}

func TestNormalizePhone(t *testing.T) {
	raw := "+33 6 12-34-56-78"
	phone, err := normalizePhone(&raw)
	require.NoError(t, err)
	assert.Equal(t, "+33612345678", *phone)

	empty := "  "
	phone, err = normalizePhone(&empty)
	require.NoError(t, err)
	assert.Nil(t, phone)

	bad := "call me"
	_, err = normalizePhone(&bad)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "phone_number", vErr.Field)

	phone, err = normalizePhone(nil)
	assert.NoError(t, err)
	assert.Nil(t, phone)
}

func TestPageNormalize(t *testing.T) {
	p, err := Page{}.normalize()
	require.NoError(t, err)
	assert.Equal(t, Page{Skip: 0, Limit: 100}, p)

	p, err = Page{Skip: 5, Limit: 5000}.normalize()
	require.NoError(t, err)
	assert.Equal(t, 1000, p.Limit)

	_, err = Page{Skip: -1}.normalize()
	assert.ErrorIs(t, err, ErrValidationFailed)
}
