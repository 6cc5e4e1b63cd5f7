package models

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// LeaderboardEntry serializes as a [username, score] pair.
type LeaderboardEntry struct {
	UserID   uuid.UUID
	Username string
	Score    int
}

func (e LeaderboardEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{e.Username, e.Score})
}

func (e *LeaderboardEntry) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("leaderboard entry must have 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &e.Username); err != nil {
		return errors.Join(errors.New("invalid leaderboard username"), err)
	}
	if err := json.Unmarshal(pair[1], &e.Score); err != nil {
		return errors.Join(errors.New("invalid leaderboard score"), err)
	}
	return nil
}

// Payout is one reward disbursed at tournament end.
type Payout struct {
	Rank     int       `json:"rank"`
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Score    int       `json:"score"`
	Reward   int       `json:"reward"`
}

// FinalStandings is the outcome of ending a tournament.
type FinalStandings struct {
	TournamentID uuid.UUID          `json:"tournament_id"`
	Leaderboard  []LeaderboardEntry `json:"leaderboard"`
	Payouts      []Payout           `json:"payouts"`
	RewardsSum   int                `json:"rewards_sum"`
	ArchiveURL   string             `json:"archive_url,omitempty"`
}
