package handlers

import (
	"context"

	"github.com/Dosada05/tournament-rewards/models"
	"github.com/Dosada05/tournament-rewards/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type UserServiceMock struct {
	mock.Mock
}

func (m *UserServiceMock) CreateUser(ctx context.Context, input services.CreateUserInput) (*models.User, error) {
	args := m.Called(ctx, input)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *UserServiceMock) ListUsers(ctx context.Context, page services.Page) ([]models.User, error) {
	args := m.Called(ctx, page)
	users, _ := args.Get(0).([]models.User)
	return users, args.Error(1)
}

func (m *UserServiceMock) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *UserServiceMock) UpdateUser(ctx context.Context, id uuid.UUID, patch services.UserPatch) (*models.User, error) {
	args := m.Called(ctx, id, patch)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *UserServiceMock) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type TournamentServiceMock struct {
	mock.Mock
}

func (m *TournamentServiceMock) CreateTournament(ctx context.Context, input services.CreateTournamentInput) (*models.Tournament, error) {
	args := m.Called(ctx, input)
	t, _ := args.Get(0).(*models.Tournament)
	return t, args.Error(1)
}

func (m *TournamentServiceMock) ListTournaments(ctx context.Context, page services.Page) ([]models.Tournament, error) {
	args := m.Called(ctx, page)
	ts, _ := args.Get(0).([]models.Tournament)
	return ts, args.Error(1)
}

func (m *TournamentServiceMock) GetTournament(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(*models.Tournament)
	return t, args.Error(1)
}

func (m *TournamentServiceMock) UpdateTournament(ctx context.Context, id uuid.UUID, patch services.TournamentPatch) (*models.Tournament, error) {
	args := m.Called(ctx, id, patch)
	t, _ := args.Get(0).(*models.Tournament)
	return t, args.Error(1)
}

func (m *TournamentServiceMock) DeleteTournament(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *TournamentServiceMock) Register(ctx context.Context, id uuid.UUID, input services.RegisterInput) (*models.User, error) {
	args := m.Called(ctx, id, input)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *TournamentServiceMock) ListPlayers(ctx context.Context, id uuid.UUID) ([]models.Registration, error) {
	args := m.Called(ctx, id)
	players, _ := args.Get(0).([]models.Registration)
	return players, args.Error(1)
}

func (m *TournamentServiceMock) InitiateMatch(ctx context.Context, id uuid.UUID, playerOneID, playerTwoID uuid.UUID) (*models.Match, error) {
	args := m.Called(ctx, id, playerOneID, playerTwoID)
	match, _ := args.Get(0).(*models.Match)
	return match, args.Error(1)
}

func (m *TournamentServiceMock) ScheduleRoundRobin(ctx context.Context, id uuid.UUID, legs int) ([]models.Match, error) {
	args := m.Called(ctx, id, legs)
	matches, _ := args.Get(0).([]models.Match)
	return matches, args.Error(1)
}

func (m *TournamentServiceMock) StartMatch(ctx context.Context, id, matchID uuid.UUID, scores *services.ScoreInput) (*models.Match, error) {
	args := m.Called(ctx, id, matchID, scores)
	match, _ := args.Get(0).(*models.Match)
	return match, args.Error(1)
}

func (m *TournamentServiceMock) RecordResult(ctx context.Context, id, matchID uuid.UUID) (*models.Match, error) {
	args := m.Called(ctx, id, matchID)
	match, _ := args.Get(0).(*models.Match)
	return match, args.Error(1)
}

func (m *TournamentServiceMock) EndTournament(ctx context.Context, id uuid.UUID) (*models.FinalStandings, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*models.FinalStandings)
	return s, args.Error(1)
}

func (m *TournamentServiceMock) Leaderboard(ctx context.Context, id uuid.UUID) ([]models.LeaderboardEntry, error) {
	args := m.Called(ctx, id)
	board, _ := args.Get(0).([]models.LeaderboardEntry)
	return board, args.Error(1)
}

type MatchServiceMock struct {
	mock.Mock
}

func (m *MatchServiceMock) CreateMatch(ctx context.Context, input services.CreateMatchInput) (*models.Match, error) {
	args := m.Called(ctx, input)
	match, _ := args.Get(0).(*models.Match)
	return match, args.Error(1)
}

func (m *MatchServiceMock) ListMatches(ctx context.Context, page services.Page) ([]models.Match, error) {
	args := m.Called(ctx, page)
	matches, _ := args.Get(0).([]models.Match)
	return matches, args.Error(1)
}

func (m *MatchServiceMock) GetMatch(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	args := m.Called(ctx, id)
	match, _ := args.Get(0).(*models.Match)
	return match, args.Error(1)
}

func (m *MatchServiceMock) UpdateMatch(ctx context.Context, id uuid.UUID, patch services.MatchPatch) (*models.Match, error) {
	args := m.Called(ctx, id, patch)
	match, _ := args.Get(0).(*models.Match)
	return match, args.Error(1)
}

func (m *MatchServiceMock) DeleteMatch(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}
