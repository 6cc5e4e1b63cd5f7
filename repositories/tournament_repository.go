package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/tournament-rewards/models"
	"github.com/google/uuid"
)

var (
	ErrTournamentNotFound       = errors.New("tournament not found")
	ErrTournamentInvalidWindow  = errors.New("tournament begin must be before end")
	ErrTournamentInvalidCap     = errors.New("tournament max_player must be positive")
	ErrPlayerAlreadyRegistered  = errors.New("player already registered in tournament")
	ErrTournamentPlayerNotFound = errors.New("tournament player reference is invalid")
)

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Tournament, error)
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Tournament, error)
	List(ctx context.Context, limit, offset int) ([]models.Tournament, error)
	Update(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	UpdateScores(ctx context.Context, exec SQLExecutor, id uuid.UUID, scores models.PlayerScores) error
	MarkFinalized(ctx context.Context, exec SQLExecutor, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, exec SQLExecutor, id uuid.UUID) error

	AddPlayer(ctx context.Context, exec SQLExecutor, tournamentID, userID uuid.UUID) error
	CountPlayers(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID) (int, error)
	IsPlayer(ctx context.Context, exec SQLExecutor, tournamentID, userID uuid.UUID) (bool, error)
	ListPlayers(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID) ([]models.Registration, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `id, max_player, begin_at, end_at, player_score, rewards_range, rewards_sum, finalized_at, created_at`

func scanTournament(s rowScanner, t *models.Tournament) error {
	err := s.Scan(
		&t.ID, &t.MaxPlayer, &t.BeginAt, &t.EndAt, &t.PlayerScore,
		&t.RewardsRange, &t.RewardsSum, &t.FinalizedAt, &t.CreatedAt,
	)
	if err != nil {
		return err
	}
	t.BeginAt = t.BeginAt.UTC()
	t.EndAt = t.EndAt.UTC()
	if t.FinalizedAt != nil {
		utc := t.FinalizedAt.UTC()
		t.FinalizedAt = &utc
	}
	return nil
}

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.PlayerScore == nil {
		t.PlayerScore = models.PlayerScores{}
	}
	if t.RewardsRange == nil {
		t.RewardsRange = models.RewardsRange{}
	}
	query := `
		INSERT INTO tournaments (id, max_player, begin_at, end_at, player_score, rewards_range, rewards_sum)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		t.ID, t.MaxPlayer, t.BeginAt.UTC(), t.EndAt.UTC(), t.PlayerScore, t.RewardsRange, t.RewardsSum,
	).Scan(&t.CreatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Tournament, error) {
	return r.getOne(ctx, exec, id, false)
}

// GetByIDForUpdate locks the tournament row until the surrounding transaction ends.
func (r *postgresTournamentRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Tournament, error) {
	return r.getOne(ctx, exec, id, true)
}

func (r *postgresTournamentRepository) getOne(ctx context.Context, exec SQLExecutor, id uuid.UUID, forUpdate bool) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1` + lockClause(forUpdate)

	t := &models.Tournament{}
	if err := scanTournament(r.getExecutor(exec).QueryRowContext(ctx, query, id), t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament: %w", err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, limit, offset int) ([]models.Tournament, error) {
	query := `
		SELECT ` + tournamentColumns + `
		FROM tournaments
		ORDER BY begin_at DESC, created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if err := scanTournament(rows, &t); err != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", err)
		}
		tournaments = append(tournaments, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) Update(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	query := `
		UPDATE tournaments SET
			max_player = $1,
			begin_at = $2,
			end_at = $3,
			rewards_range = $4,
			rewards_sum = $5
		WHERE id = $6`

	result, err := r.getExecutor(exec).ExecContext(ctx, query,
		t.MaxPlayer, t.BeginAt.UTC(), t.EndAt.UTC(), t.RewardsRange, t.RewardsSum, t.ID,
	)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateScores(ctx context.Context, exec SQLExecutor, id uuid.UUID, scores models.PlayerScores) error {
	result, err := r.getExecutor(exec).ExecContext(ctx,
		`UPDATE tournaments SET player_score = $1 WHERE id = $2`, scores, id)
	if err != nil {
		return fmt.Errorf("failed to update scores of tournament %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

// MarkFinalized sets the terminal flag. It matches nothing when the flag is already set.
func (r *postgresTournamentRepository) MarkFinalized(ctx context.Context, exec SQLExecutor, id uuid.UUID, at time.Time) error {
	result, err := r.getExecutor(exec).ExecContext(ctx,
		`UPDATE tournaments SET finalized_at = $1 WHERE id = $2 AND finalized_at IS NULL`, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to finalize tournament %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, exec SQLExecutor, id uuid.UUID) error {
	result, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tournament %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) AddPlayer(ctx context.Context, exec SQLExecutor, tournamentID, userID uuid.UUID) error {
	_, err := r.getExecutor(exec).ExecContext(ctx,
		`INSERT INTO tournament_players (tournament_id, user_id) VALUES ($1, $2)`, tournamentID, userID)
	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) CountPlayers(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID) (int, error) {
	var count int
	err := r.getExecutor(exec).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tournament_players WHERE tournament_id = $1`, tournamentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count players of tournament %s: %w", tournamentID, err)
	}
	return count, nil
}

func (r *postgresTournamentRepository) IsPlayer(ctx context.Context, exec SQLExecutor, tournamentID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.getExecutor(exec).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM tournament_players WHERE tournament_id = $1 AND user_id = $2)`,
		tournamentID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check registration of user %s: %w", userID, err)
	}
	return exists, nil
}

// ListPlayers returns memberships in registration order.
func (r *postgresTournamentRepository) ListPlayers(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID) ([]models.Registration, error) {
	query := `
		SELECT tp.user_id, u.username, tp.registered_at
		FROM tournament_players tp
		JOIN users u ON u.id = tp.user_id
		WHERE tp.tournament_id = $1
		ORDER BY tp.registered_at, tp.user_id`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players of tournament %s: %w", tournamentID, err)
	}
	defer rows.Close()

	players := make([]models.Registration, 0)
	for rows.Next() {
		var p models.Registration
		if err := rows.Scan(&p.UserID, &p.Username, &p.RegisteredAt); err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return players, nil
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if constraint, ok := pqConstraint(err, pqUniqueViolation); ok && constraint == "tournament_players_pkey" {
		return ErrPlayerAlreadyRegistered
	}
	if _, ok := pqConstraint(err, pqForeignKeyViolation); ok {
		return ErrTournamentPlayerNotFound
	}
	if constraint, ok := pqConstraint(err, pqCheckViolation); ok {
		switch constraint {
		case "tournaments_window_check":
			return ErrTournamentInvalidWindow
		case "tournaments_max_player_check":
			return ErrTournamentInvalidCap
		}
	}
	return err
}
