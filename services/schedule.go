package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/tournament-rewards/models"
	"github.com/Dosada05/tournament-rewards/pairings"
	"github.com/Dosada05/tournament-rewards/repositories"
	"github.com/google/uuid"
)

// ScheduleRoundRobin creates one pending match per pair of registered players
// (two per pair when legs is 2). Same phase rules as InitiateMatch.
func (s *tournamentService) ScheduleRoundRobin(ctx context.Context, id uuid.UUID, legs int) ([]models.Match, error) {
	if legs == 0 {
		legs = 1
	}
	if legs != 1 && legs != 2 {
		return nil, newValidationError("legs", legs, "must be 1 or 2")
	}

	var created []models.Match
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, id)
		if err != nil {
			return err
		}
		if err := s.requireActive(t); err != nil {
			return err
		}

		players, err := s.tournamentRepo.ListPlayers(ctx, exec, id)
		if err != nil {
			return err
		}
		ids := make([]uuid.UUID, 0, len(players))
		for _, p := range players {
			ids = append(ids, p.UserID)
		}

		schedule, err := pairings.RoundRobin(ids, legs)
		if err != nil {
			if errors.Is(err, pairings.ErrNotEnoughPlayers) {
				return fmt.Errorf("%w: %d registered", ErrNotEnoughPlayers, len(ids))
			}
			return err
		}

		created = make([]models.Match, 0, len(schedule))
		for _, p := range schedule {
			m := newTournamentMatch(id, p.PlayerOneID, p.PlayerTwoID)
			if err := s.matchRepo.Create(ctx, exec, m); err != nil {
				return err
			}
			created = append(created, *m)
		}
		return nil
	})
	if err != nil {
		return nil, withID(handleRepositoryError(err), ErrTournamentNotFound, id)
	}

	s.logger.Info("round-robin scheduled",
		slog.String("tournament_id", id.String()),
		slog.Int("legs", legs),
		slog.Int("matches", len(created)))
	return created, nil
}
