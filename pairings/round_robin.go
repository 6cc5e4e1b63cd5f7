package pairings

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNotEnoughPlayers = errors.New("round-robin needs at least 2 players")
	ErrInvalidLegs      = errors.New("round-robin supports 1 or 2 legs")
)

// Pairing is one scheduled head-to-head between two registered players.
type Pairing struct {
	Order       int
	Leg         int
	PlayerOneID uuid.UUID
	PlayerTwoID uuid.UUID
}

// RoundRobin pairs every player with every other player once per leg.
// In the second leg the sides are swapped. Order is 1-based and unique.
func RoundRobin(players []uuid.UUID, legs int) ([]Pairing, error) {
	if len(players) < 2 {
		return nil, fmt.Errorf("%w (found %d)", ErrNotEnoughPlayers, len(players))
	}
	if legs != 1 && legs != 2 {
		return nil, fmt.Errorf("%w (got %d)", ErrInvalidLegs, legs)
	}

	perLeg := len(players) * (len(players) - 1) / 2
	pairings := make([]Pairing, 0, perLeg*legs)

	order := 0
	for i := 0; i < len(players); i++ {
		for j := i + 1; j < len(players); j++ {
			order++
			pairings = append(pairings, Pairing{
				Order:       order,
				Leg:         1,
				PlayerOneID: players[i],
				PlayerTwoID: players[j],
			})
		}
	}

	if legs == 2 {
		for _, p := range pairings[:perLeg] {
			pairings = append(pairings, Pairing{
				Order:       p.Order + perLeg,
				Leg:         2,
				PlayerOneID: p.PlayerTwoID,
				PlayerTwoID: p.PlayerOneID,
			})
		}
	}

	return pairings, nil
}
