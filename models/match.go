package models

import (
	"time"

	"github.com/google/uuid"
)

// MatchResult соответствует CHECK-ограничению столбца matches.result.
type MatchResult string

const (
	ResultPlayerOne MatchResult = "PLAYER1"
	ResultDraw      MatchResult = "DRAW"
	ResultPlayerTwo MatchResult = "PLAYER2"
)

func (r MatchResult) Valid() bool {
	switch r {
	case ResultPlayerOne, ResultDraw, ResultPlayerTwo:
		return true
	}
	return false
}

type MatchStatus string

const (
	MatchPending MatchStatus = "pending"
	MatchPlayed  MatchStatus = "played"
)

type Match struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	TournamentID *uuid.UUID  `json:"tournament_id,omitempty" db:"tournament_id"`
	PlayerOneID  *uuid.UUID  `json:"player_one_id" db:"player_one_id"`
	PlayerTwoID  *uuid.UUID  `json:"player_two_id" db:"player_two_id"`
	Result       MatchResult `json:"result" db:"result"`
	ScoreOne     int         `json:"score_one" db:"score_one"`
	ScoreTwo     int         `json:"score_two" db:"score_two"`
	Status       MatchStatus `json:"status" db:"status"`
	Credited     bool        `json:"credited" db:"credited"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
}

// BelongsTo reports whether the match was scheduled inside the given tournament.
func (m *Match) BelongsTo(tournamentID uuid.UUID) bool {
	return m.TournamentID != nil && *m.TournamentID == tournamentID
}
