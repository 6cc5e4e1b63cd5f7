package services

import (
	"context"
	"fmt"

	"github.com/Dosada05/tournament-rewards/models"
	"github.com/Dosada05/tournament-rewards/repositories"
	"github.com/google/uuid"
)

type CreateMatchInput struct {
	PlayerOneID *uuid.UUID          `json:"player_one_id"`
	PlayerTwoID *uuid.UUID          `json:"player_two_id"`
	Result      *models.MatchResult `json:"result"`
	ScoreOne    *int                `json:"score_one"`
	ScoreTwo    *int                `json:"score_two"`
}

type MatchPatch struct {
	PlayerOneID *uuid.UUID          `json:"player_one_id"`
	PlayerTwoID *uuid.UUID          `json:"player_two_id"`
	Result      *models.MatchResult `json:"result"`
	ScoreOne    *int                `json:"score_one"`
	ScoreTwo    *int                `json:"score_two"`
}

// MatchService manages standalone match records. Tournament matches go through TournamentService.
type MatchService interface {
	CreateMatch(ctx context.Context, input CreateMatchInput) (*models.Match, error)
	ListMatches(ctx context.Context, page Page) ([]models.Match, error)
	GetMatch(ctx context.Context, id uuid.UUID) (*models.Match, error)
	UpdateMatch(ctx context.Context, id uuid.UUID, patch MatchPatch) (*models.Match, error)
	DeleteMatch(ctx context.Context, id uuid.UUID) error
}

type matchService struct {
	tx        repositories.Transactor
	matchRepo repositories.MatchRepository
}

func NewMatchService(tx repositories.Transactor, matchRepo repositories.MatchRepository) MatchService {
	return &matchService{tx: tx, matchRepo: matchRepo}
}

func (s *matchService) CreateMatch(ctx context.Context, input CreateMatchInput) (*models.Match, error) {
	match := &models.Match{
		PlayerOneID: input.PlayerOneID,
		PlayerTwoID: input.PlayerTwoID,
		ScoreOne:    derefInt(input.ScoreOne),
		ScoreTwo:    derefInt(input.ScoreTwo),
		Result:      models.ResultDraw,
		Status:      models.MatchPending,
	}
	if err := applyMatchOutcome(match, input.Result, input.ScoreOne != nil || input.ScoreTwo != nil); err != nil {
		return nil, err
	}
	if err := validateMatch(match); err != nil {
		return nil, err
	}

	if err := s.matchRepo.Create(ctx, nil, match); err != nil {
		return nil, handleRepositoryError(err)
	}
	return match, nil
}

func (s *matchService) ListMatches(ctx context.Context, page Page) ([]models.Match, error) {
	page, err := page.normalize()
	if err != nil {
		return nil, err
	}
	matches, err := s.matchRepo.List(ctx, page.Limit, page.Skip)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return matches, nil
}

func (s *matchService) GetMatch(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, withID(handleRepositoryError(err), ErrMatchNotFound, id)
	}
	return match, nil
}

// UpdateMatch edits a standalone match. Tournament matches change only through
// the tournament lifecycle.
func (s *matchService) UpdateMatch(ctx context.Context, id uuid.UUID, patch MatchPatch) (*models.Match, error) {
	var updated *models.Match
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		match, err := s.matchRepo.GetByIDForUpdate(ctx, exec, id)
		if err != nil {
			return err
		}
		if match.TournamentID != nil {
			return fmt.Errorf("%w: tournament %s", ErrMatchManagedByTournament, *match.TournamentID)
		}

		if patch.PlayerOneID != nil {
			match.PlayerOneID = patch.PlayerOneID
		}
		if patch.PlayerTwoID != nil {
			match.PlayerTwoID = patch.PlayerTwoID
		}
		if patch.ScoreOne != nil {
			match.ScoreOne = *patch.ScoreOne
		}
		if patch.ScoreTwo != nil {
			match.ScoreTwo = *patch.ScoreTwo
		}
		if err := applyMatchOutcome(match, patch.Result, patch.ScoreOne != nil || patch.ScoreTwo != nil); err != nil {
			return err
		}
		if err := validateMatch(match); err != nil {
			return err
		}

		if err := s.matchRepo.Update(ctx, exec, match); err != nil {
			return err
		}
		updated = match
		return nil
	})
	if err != nil {
		return nil, withID(handleRepositoryError(err), ErrMatchNotFound, id)
	}
	return updated, nil
}

func (s *matchService) DeleteMatch(ctx context.Context, id uuid.UUID) error {
	return withID(handleRepositoryError(s.matchRepo.Delete(ctx, id)), ErrMatchNotFound, id)
}

// applyMatchOutcome sets an explicit result, or derives it when only scores changed.
func applyMatchOutcome(m *models.Match, result *models.MatchResult, scoresChanged bool) error {
	switch {
	case result != nil:
		if !result.Valid() {
			return newValidationError("result", *result, "must be one of PLAYER1, DRAW, PLAYER2")
		}
		m.Result = *result
	case scoresChanged:
		m.Result = ClassifyResult(m.ScoreOne, m.ScoreTwo)
	}
	return nil
}

func validateMatch(m *models.Match) error {
	if m.ScoreOne < 0 {
		return newValidationError("score_one", m.ScoreOne, "must not be negative")
	}
	if m.ScoreTwo < 0 {
		return newValidationError("score_two", m.ScoreTwo, "must not be negative")
	}
	if m.PlayerOneID != nil && m.PlayerTwoID != nil && *m.PlayerOneID == *m.PlayerTwoID {
		return newValidationError("player_two_id", m.PlayerTwoID.String(), "players must be different")
	}
	return nil
}
