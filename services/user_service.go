package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/tournament-rewards/models"
	"github.com/Dosada05/tournament-rewards/repositories"
	"github.com/google/uuid"
)

type CreateUserInput struct {
	Username    string  `json:"username"`
	PhoneNumber *string `json:"phone_number"`
}

// UserPatch holds the fields a client may change; nil means unchanged.
type UserPatch struct {
	Username    *string `json:"username"`
	PhoneNumber *string `json:"phone_number"`
	Points      *int    `json:"points"`
}

type UserService interface {
	CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error)
	ListUsers(ctx context.Context, page Page) ([]models.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, patch UserPatch) (*models.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

type userService struct {
	userRepo repositories.UserRepository
	logger   *slog.Logger
}

func NewUserService(userRepo repositories.UserRepository, logger *slog.Logger) UserService {
	return &userService{userRepo: userRepo, logger: logger}
}

func (s *userService) CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error) {
	username, err := normalizeUsername(input.Username)
	if err != nil {
		return nil, err
	}
	phone, err := normalizePhone(input.PhoneNumber)
	if err != nil {
		return nil, err
	}

	user := &models.User{Username: username, PhoneNumber: phone}
	if err := s.userRepo.Create(ctx, nil, user); err != nil {
		return nil, handleRepositoryError(err)
	}
	s.logger.Info("user created", slog.String("user_id", user.ID.String()), slog.String("username", user.Username))
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, page Page) ([]models.User, error) {
	page, err := page.normalize()
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.List(ctx, page.Limit, page.Skip)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, withID(handleRepositoryError(err), ErrUserNotFound, id)
	}
	return user, nil
}

func (s *userService) UpdateUser(ctx context.Context, id uuid.UUID, patch UserPatch) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, withID(handleRepositoryError(err), ErrUserNotFound, id)
	}

	if patch.Username != nil {
		name, err := normalizeUsername(*patch.Username)
		if err != nil {
			return nil, err
		}
		user.Username = name
	}
	if patch.PhoneNumber != nil {
		phone, err := normalizePhone(patch.PhoneNumber)
		if err != nil {
			return nil, err
		}
		user.PhoneNumber = phone
	}
	if patch.Points != nil {
		if *patch.Points < 0 {
			return nil, newValidationError("points", *patch.Points, "must not be negative")
		}
		user.Points = *patch.Points
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, withID(handleRepositoryError(err), ErrUserNotFound, id)
	}
	return user, nil
}

// DeleteUser removes the user row; tournament memberships cascade and match slots are cleared.
func (s *userService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return withID(handleRepositoryError(err), ErrUserNotFound, id)
	}
	s.logger.Info("user deleted", slog.String("user_id", id.String()))
	return nil
}
