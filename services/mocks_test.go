package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/Dosada05/tournament-rewards/models"
	"github.com/Dosada05/tournament-rewards/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeTransactor runs the unit of work inline; repositories receive a nil executor.
type fakeTransactor struct {
	calls int
}

func (f *fakeTransactor) WithinTx(_ context.Context, fn func(exec repositories.SQLExecutor) error) error {
	f.calls++
	return fn(nil)
}

// --- UserRepository ---

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) Create(ctx context.Context, exec repositories.SQLExecutor, user *models.User) error {
	args := m.Called(ctx, exec, user)
	if args.Error(0) == nil && user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *UserRepositoryMock) GetByID(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, exec, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *UserRepositoryMock) GetByUsername(ctx context.Context, exec repositories.SQLExecutor, username string) (*models.User, error) {
	args := m.Called(ctx, exec, username)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *UserRepositoryMock) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	args := m.Called(ctx, limit, offset)
	users, _ := args.Get(0).([]models.User)
	return users, args.Error(1)
}

func (m *UserRepositoryMock) Update(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepositoryMock) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *UserRepositoryMock) AddPoints(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID, delta int) error {
	return m.Called(ctx, exec, id, delta).Error(0)
}

// --- MatchRepository ---

type MatchRepositoryMock struct {
	mock.Mock
}

func (m *MatchRepositoryMock) Create(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	args := m.Called(ctx, exec, match)
	if args.Error(0) == nil && match.ID == uuid.Nil {
		match.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MatchRepositoryMock) GetByID(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID) (*models.Match, error) {
	args := m.Called(ctx, exec, id)
	match, _ := args.Get(0).(*models.Match)
	return match, args.Error(1)
}

func (m *MatchRepositoryMock) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID) (*models.Match, error) {
	args := m.Called(ctx, exec, id)
	match, _ := args.Get(0).(*models.Match)
	return match, args.Error(1)
}

func (m *MatchRepositoryMock) List(ctx context.Context, limit, offset int) ([]models.Match, error) {
	args := m.Called(ctx, limit, offset)
	matches, _ := args.Get(0).([]models.Match)
	return matches, args.Error(1)
}

func (m *MatchRepositoryMock) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID uuid.UUID) ([]models.Match, error) {
	args := m.Called(ctx, exec, tournamentID)
	matches, _ := args.Get(0).([]models.Match)
	return matches, args.Error(1)
}

func (m *MatchRepositoryMock) Update(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	return m.Called(ctx, exec, match).Error(0)
}

func (m *MatchRepositoryMock) UpdateState(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	return m.Called(ctx, exec, match).Error(0)
}

func (m *MatchRepositoryMock) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// --- TournamentRepository ---

type TournamentRepositoryMock struct {
	mock.Mock
}

func (m *TournamentRepositoryMock) Create(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) error {
	args := m.Called(ctx, exec, t)
	if args.Error(0) == nil && t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *TournamentRepositoryMock) GetByID(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID) (*models.Tournament, error) {
	args := m.Called(ctx, exec, id)
	t, _ := args.Get(0).(*models.Tournament)
	return t, args.Error(1)
}

func (m *TournamentRepositoryMock) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID) (*models.Tournament, error) {
	args := m.Called(ctx, exec, id)
	t, _ := args.Get(0).(*models.Tournament)
	return t, args.Error(1)
}

func (m *TournamentRepositoryMock) List(ctx context.Context, limit, offset int) ([]models.Tournament, error) {
	args := m.Called(ctx, limit, offset)
	ts, _ := args.Get(0).([]models.Tournament)
	return ts, args.Error(1)
}

func (m *TournamentRepositoryMock) Update(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) error {
	return m.Called(ctx, exec, t).Error(0)
}

func (m *TournamentRepositoryMock) UpdateScores(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID, scores models.PlayerScores) error {
	return m.Called(ctx, exec, id, scores).Error(0)
}

func (m *TournamentRepositoryMock) MarkFinalized(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, exec, id, at).Error(0)
}

func (m *TournamentRepositoryMock) Delete(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID) error {
	return m.Called(ctx, exec, id).Error(0)
}

func (m *TournamentRepositoryMock) AddPlayer(ctx context.Context, exec repositories.SQLExecutor, tournamentID, userID uuid.UUID) error {
	return m.Called(ctx, exec, tournamentID, userID).Error(0)
}

func (m *TournamentRepositoryMock) CountPlayers(ctx context.Context, exec repositories.SQLExecutor, tournamentID uuid.UUID) (int, error) {
	args := m.Called(ctx, exec, tournamentID)
	return args.Int(0), args.Error(1)
}

func (m *TournamentRepositoryMock) IsPlayer(ctx context.Context, exec repositories.SQLExecutor, tournamentID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, exec, tournamentID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *TournamentRepositoryMock) ListPlayers(ctx context.Context, exec repositories.SQLExecutor, tournamentID uuid.UUID) ([]models.Registration, error) {
	args := m.Called(ctx, exec, tournamentID)
	players, _ := args.Get(0).([]models.Registration)
	return players, args.Error(1)
}

// --- collaborators ---

type LeaderboardCacheMock struct {
	mock.Mock
}

func (m *LeaderboardCacheMock) Get(ctx context.Context, id uuid.UUID) ([]models.LeaderboardEntry, bool, error) {
	args := m.Called(ctx, id)
	board, _ := args.Get(0).([]models.LeaderboardEntry)
	return board, args.Bool(1), args.Error(2)
}

func (m *LeaderboardCacheMock) Generation(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	gen, _ := args.Get(0).(int64)
	return gen, args.Error(1)
}

func (m *LeaderboardCacheMock) Set(ctx context.Context, id uuid.UUID, generation int64, board []models.LeaderboardEntry) (bool, error) {
	args := m.Called(ctx, id, generation, board)
	return args.Bool(0), args.Error(1)
}

func (m *LeaderboardCacheMock) Invalidate(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type fixedScores struct {
	one, two int
}

func (f fixedScores) Scores(context.Context, *models.Match) (int, int, error) {
	return f.one, f.two, nil
}

type recordingBroadcaster struct {
	rooms    []string
	messages []interface{}
}

func (r *recordingBroadcaster) BroadcastToRoom(room string, msg interface{}) {
	r.rooms = append(r.rooms, room)
	r.messages = append(r.messages, msg)
}

type archiverStub struct {
	location string
	err      error
	got      *models.FinalStandings
}

func (a *archiverStub) ArchiveStandings(_ context.Context, s *models.FinalStandings) (string, error) {
	a.got = s
	return a.location, a.err
}
