package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-rewards/models"
	"github.com/google/uuid"
)

var (
	ErrMatchNotFound       = errors.New("match not found")
	ErrMatchPlayerInvalid  = errors.New("match player reference is invalid")
	ErrMatchTournamentGone = errors.New("match tournament reference is invalid")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Match, error)
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Match, error)
	List(ctx context.Context, limit, offset int) ([]models.Match, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID) ([]models.Match, error)
	Update(ctx context.Context, exec SQLExecutor, match *models.Match) error
	UpdateState(ctx context.Context, exec SQLExecutor, match *models.Match) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `id, tournament_id, player_one_id, player_two_id, result, score_one, score_two, status, credited, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMatch(s rowScanner, m *models.Match) error {
	return s.Scan(
		&m.ID, &m.TournamentID, &m.PlayerOneID, &m.PlayerTwoID,
		&m.Result, &m.ScoreOne, &m.ScoreTwo, &m.Status, &m.Credited, &m.CreatedAt,
	)
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Result == "" {
		m.Result = models.ResultDraw
	}
	if m.Status == "" {
		m.Status = models.MatchPending
	}
	query := `
		INSERT INTO matches (id, tournament_id, player_one_id, player_two_id, result, score_one, score_two, status, credited)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		m.ID, m.TournamentID, m.PlayerOneID, m.PlayerTwoID,
		m.Result, m.ScoreOne, m.ScoreTwo, m.Status, m.Credited,
	).Scan(&m.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Match, error) {
	return r.getOne(ctx, exec, id, false)
}

func (r *postgresMatchRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Match, error) {
	return r.getOne(ctx, exec, id, true)
}

func (r *postgresMatchRepository) getOne(ctx context.Context, exec SQLExecutor, id uuid.UUID, forUpdate bool) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1` + lockClause(forUpdate)

	var m models.Match
	if err := scanMatch(r.getExecutor(exec).QueryRowContext(ctx, query, id), &m); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match: %w", err)
	}
	return &m, nil
}

func (r *postgresMatchRepository) List(ctx context.Context, limit, offset int) ([]models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches ORDER BY created_at, id LIMIT $1 OFFSET $2`
	return r.query(ctx, r.db, query, limit, offset)
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID) ([]models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1 ORDER BY created_at, id`
	return r.query(ctx, r.getExecutor(exec), query, tournamentID)
}

func (r *postgresMatchRepository) query(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]models.Match, error) {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		var m models.Match
		if err := scanMatch(rows, &m); err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

// Update rewrites the editable fields. status and credited belong to the
// tournament lifecycle and only change through UpdateState.
func (r *postgresMatchRepository) Update(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	query := `
		UPDATE matches SET
			player_one_id = $1,
			player_two_id = $2,
			result = $3,
			score_one = $4,
			score_two = $5
		WHERE id = $6`

	result, err := r.getExecutor(exec).ExecContext(ctx, query,
		m.PlayerOneID, m.PlayerTwoID, m.Result, m.ScoreOne, m.ScoreTwo, m.ID,
	)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

// UpdateState stores the outcome of a played match together with its credit flag.
func (r *postgresMatchRepository) UpdateState(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	query := `
		UPDATE matches SET
			result = $1,
			score_one = $2,
			score_two = $3,
			status = $4,
			credited = $5
		WHERE id = $6`

	result, err := r.getExecutor(exec).ExecContext(ctx, query,
		m.Result, m.ScoreOne, m.ScoreTwo, m.Status, m.Credited, m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update match %s state: %w", m.ID, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete match %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if constraint, ok := pqConstraint(err, pqForeignKeyViolation); ok {
		switch constraint {
		case "matches_tournament_id_fkey":
			return ErrMatchTournamentGone
		default:
			return ErrMatchPlayerInvalid
		}
	}
	return err
}
