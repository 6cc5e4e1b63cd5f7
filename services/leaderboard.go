package services

import (
	"sort"

	"github.com/Dosada05/tournament-rewards/models"
)

// RankLeaderboard orders entries by score, highest first. Ties keep their
// input order, which callers supply as registration order.
func RankLeaderboard(entries []models.LeaderboardEntry) []models.LeaderboardEntry {
	ranked := make([]models.LeaderboardEntry, len(entries))
	copy(ranked, entries)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// BuildLeaderboard joins registered players with their tournament scores and ranks them.
func BuildLeaderboard(players []models.Registration, scores models.PlayerScores) []models.LeaderboardEntry {
	entries := make([]models.LeaderboardEntry, 0, len(players))
	for _, p := range players {
		entries = append(entries, models.LeaderboardEntry{
			UserID:   p.UserID,
			Username: p.Username,
			Score:    scores[p.UserID],
		})
	}
	return RankLeaderboard(entries)
}
