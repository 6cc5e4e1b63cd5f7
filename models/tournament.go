package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const DefaultMaxPlayer = 20

// Phase is derived from the tournament window and the finalization flag; it is never stored.
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseActive     Phase = "active"
	PhaseEnded      Phase = "ended"
)

// PlayerScores maps a registered player to their tournament score (jsonb column).
type PlayerScores map[uuid.UUID]int

func (p PlayerScores) Value() (driver.Value, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p)
}

func (p *PlayerScores) Scan(src interface{}) error {
	return scanJSONB(src, p)
}

// RewardsRange maps an "inf-sup" rank range to the reward each rank in it receives (jsonb column).
type RewardsRange map[string]int

func (r RewardsRange) Value() (driver.Value, error) {
	if r == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(r)
}

func (r *RewardsRange) Scan(src interface{}) error {
	return scanJSONB(src, r)
}

func scanJSONB(src interface{}, dst interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		data = []byte("{}")
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", src)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return errors.Join(errors.New("failed to decode jsonb column"), err)
	}
	return nil
}

type Tournament struct {
	ID           uuid.UUID    `json:"id" db:"id"`
	MaxPlayer    int          `json:"max_player" db:"max_player"`
	BeginAt      time.Time    `json:"begin" db:"begin_at"`
	EndAt        time.Time    `json:"end" db:"end_at"`
	PlayerScore  PlayerScores `json:"player_score" db:"player_score"`
	RewardsRange RewardsRange `json:"rewards_range" db:"rewards_range"`
	RewardsSum   int          `json:"rewards_sum" db:"rewards_sum"`
	FinalizedAt  *time.Time   `json:"finalized_at,omitempty" db:"finalized_at"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`

	Phase   Phase          `json:"phase,omitempty" db:"-"`
	Players []Registration `json:"players,omitempty" db:"-"`
	Matches []Match        `json:"matches,omitempty" db:"-"`
}

// PhaseAt classifies the tournament against now. Finalization is terminal.
func (t *Tournament) PhaseAt(now time.Time) Phase {
	switch {
	case t.FinalizedAt != nil:
		return PhaseEnded
	case now.Before(t.BeginAt):
		return PhaseNotStarted
	case now.After(t.EndAt):
		return PhaseEnded
	default:
		return PhaseActive
	}
}

// IsRegistered reports whether the user has a score entry, which Register creates for every member.
func (t *Tournament) IsRegistered(userID uuid.UUID) bool {
	_, ok := t.PlayerScore[userID]
	return ok
}
