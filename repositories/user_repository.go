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
	ErrUserNotFound         = errors.New("user not found")
	ErrUserUsernameConflict = errors.New("user username conflict")
	ErrUserPhoneConflict    = errors.New("user phone number conflict")
)

type UserRepository interface {
	Create(ctx context.Context, exec SQLExecutor, user *models.User) error
	GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, exec SQLExecutor, username string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	AddPoints(ctx context.Context, exec SQLExecutor, id uuid.UUID, delta int) error
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const userColumns = `id, username, phone_number, points, created_at`

func (r *postgresUserRepository) Create(ctx context.Context, exec SQLExecutor, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	query := `
		INSERT INTO users (id, username, phone_number, points)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		user.ID, user.Username, user.PhoneNumber, user.Points,
	).Scan(&user.CreatedAt)

	return r.handleUserError(err)
}

func (r *postgresUserRepository) GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.getExecutor(exec).QueryRowContext(ctx, query, id))
}

func (r *postgresUserRepository) GetByUsername(ctx context.Context, exec SQLExecutor, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.scanOne(r.getExecutor(exec).QueryRowContext(ctx, query, username))
}

func (r *postgresUserRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY created_at, id
		LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.PhoneNumber, &u.Points, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *postgresUserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET
			username = $1,
			phone_number = $2,
			points = $3
		WHERE id = $4`

	result, err := r.db.ExecContext(ctx, query, user.Username, user.PhoneNumber, user.Points, user.ID)
	if err != nil {
		return r.handleUserError(err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

// AddPoints increments the global counter in a single statement so concurrent
// disbursements never overwrite each other.
func (r *postgresUserRepository) AddPoints(ctx context.Context, exec SQLExecutor, id uuid.UUID, delta int) error {
	result, err := r.getExecutor(exec).ExecContext(ctx,
		`UPDATE users SET points = points + $1 WHERE id = $2`, delta, id)
	if err != nil {
		return fmt.Errorf("failed to add %d points to user %s: %w", delta, id, err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) scanOne(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.PhoneNumber, &u.Points, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

func (r *postgresUserRepository) handleUserError(err error) error {
	if err == nil {
		return nil
	}
	if constraint, ok := pqConstraint(err, pqUniqueViolation); ok {
		switch constraint {
		case "users_username_key":
			return ErrUserUsernameConflict
		case "users_phone_number_key":
			return ErrUserPhoneConflict
		}
	}
	return err
}
