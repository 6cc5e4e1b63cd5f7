package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-rewards/live"
	"github.com/Dosada05/tournament-rewards/models"
	"github.com/Dosada05/tournament-rewards/repositories"
	"github.com/google/uuid"
)

// LeaderboardCache keeps computed leaderboards between score changes. Set must
// skip the write when Invalidate ran after the given generation was read.
type LeaderboardCache interface {
	Get(ctx context.Context, tournamentID uuid.UUID) ([]models.LeaderboardEntry, bool, error)
	Generation(ctx context.Context, tournamentID uuid.UUID) (int64, error)
	Set(ctx context.Context, tournamentID uuid.UUID, generation int64, board []models.LeaderboardEntry) (bool, error)
	Invalidate(ctx context.Context, tournamentID uuid.UUID) error
}

// ResultsArchiver stores the final standings of a tournament and returns where they live.
type ResultsArchiver interface {
	ArchiveStandings(ctx context.Context, standings *models.FinalStandings) (string, error)
}

// Broadcaster pushes messages to websocket subscribers of a room.
type Broadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

// handleRepositoryError переводит ошибки репозиториев в ошибки сервисного слоя.
func handleRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrUserUsernameConflict):
		return ErrUsernameTaken
	case errors.Is(err, repositories.ErrUserPhoneConflict):
		return ErrPhoneTaken
	case errors.Is(err, repositories.ErrPlayerAlreadyRegistered):
		return ErrAlreadyRegistered
	case errors.Is(err, repositories.ErrMatchPlayerInvalid),
		errors.Is(err, repositories.ErrTournamentPlayerNotFound):
		return ErrUserNotFound
	case errors.Is(err, repositories.ErrMatchTournamentGone):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrTournamentInvalidWindow):
		return newValidationError("end", nil, "must be after begin")
	case errors.Is(err, repositories.ErrTournamentInvalidCap):
		return newValidationError("max_player", nil, "must be positive")
	}
	return err
}

// withID appends the identifier of the missing entity to a bare not-found error.
func withID(err, notFound error, id uuid.UUID) error {
	if err == notFound {
		return fmt.Errorf("%w: %s", notFound, id)
	}
	return err
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func (s *tournamentService) broadcast(id uuid.UUID, event string, payload interface{}) {
	if s.broadcaster == nil {
		return
	}
	room := live.RoomForTournament(id.String())
	s.broadcaster.BroadcastToRoom(room, live.Message{Type: event, Payload: payload, RoomID: room})
}
