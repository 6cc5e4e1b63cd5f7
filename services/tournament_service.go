package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/tournament-rewards/live"
	"github.com/Dosada05/tournament-rewards/models"
	"github.com/Dosada05/tournament-rewards/repositories"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type CreateTournamentInput struct {
	MaxPlayer    *int                `json:"max_player"`
	Begin        time.Time           `json:"begin"`
	End          time.Time           `json:"end"`
	RewardsRange models.RewardsRange `json:"rewards_range"`
}

// TournamentPatch holds the fields a client may change before the tournament starts.
type TournamentPatch struct {
	MaxPlayer    *int                 `json:"max_player"`
	Begin        *time.Time           `json:"begin"`
	End          *time.Time           `json:"end"`
	RewardsRange *models.RewardsRange `json:"rewards_range"`
}

// RegisterInput identifies a player either by id or by username; an unknown username creates the user.
type RegisterInput struct {
	ID          *uuid.UUID `json:"id"`
	Username    string     `json:"username"`
	PhoneNumber *string    `json:"phone_number"`
}

// ScoreInput overrides the score generator when a match is started.
type ScoreInput struct {
	ScoreOne int `json:"score_one"`
	ScoreTwo int `json:"score_two"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	ListTournaments(ctx context.Context, page Page) ([]models.Tournament, error)
	GetTournament(ctx context.Context, id uuid.UUID) (*models.Tournament, error)
	UpdateTournament(ctx context.Context, id uuid.UUID, patch TournamentPatch) (*models.Tournament, error)
	DeleteTournament(ctx context.Context, id uuid.UUID) error

	Register(ctx context.Context, id uuid.UUID, input RegisterInput) (*models.User, error)
	ListPlayers(ctx context.Context, id uuid.UUID) ([]models.Registration, error)
	InitiateMatch(ctx context.Context, id uuid.UUID, playerOneID, playerTwoID uuid.UUID) (*models.Match, error)
	ScheduleRoundRobin(ctx context.Context, id uuid.UUID, legs int) ([]models.Match, error)
	StartMatch(ctx context.Context, id, matchID uuid.UUID, scores *ScoreInput) (*models.Match, error)
	RecordResult(ctx context.Context, id, matchID uuid.UUID) (*models.Match, error)
	EndTournament(ctx context.Context, id uuid.UUID) (*models.FinalStandings, error)
	Leaderboard(ctx context.Context, id uuid.UUID) ([]models.LeaderboardEntry, error)
}

type tournamentService struct {
	tx             repositories.Transactor
	tournamentRepo repositories.TournamentRepository
	userRepo       repositories.UserRepository
	matchRepo      repositories.MatchRepository
	scorer         ScoreGenerator
	cache          LeaderboardCache
	archiver       ResultsArchiver
	broadcaster    Broadcaster
	logger         *slog.Logger
	now            func() time.Time
}

// NewTournamentService wires the lifecycle controller. cache, archiver and
// broadcaster are optional and may be nil.
func NewTournamentService(
	tx repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	userRepo repositories.UserRepository,
	matchRepo repositories.MatchRepository,
	scorer ScoreGenerator,
	cache LeaderboardCache,
	archiver ResultsArchiver,
	broadcaster Broadcaster,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tx:             tx,
		tournamentRepo: tournamentRepo,
		userRepo:       userRepo,
		matchRepo:      matchRepo,
		scorer:         scorer,
		cache:          cache,
		archiver:       archiver,
		broadcaster:    broadcaster,
		logger:         logger,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// --- CRUD ---

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	maxPlayer := models.DefaultMaxPlayer
	if input.MaxPlayer != nil {
		maxPlayer = *input.MaxPlayer
	}
	if maxPlayer <= 0 {
		return nil, newValidationError("max_player", maxPlayer, "must be positive")
	}
	if err := validateWindow(input.Begin, input.End); err != nil {
		return nil, err
	}
	sum, err := RewardsSum(input.RewardsRange)
	if err != nil {
		return nil, err
	}

	t := &models.Tournament{
		MaxPlayer:    maxPlayer,
		BeginAt:      input.Begin.UTC(),
		EndAt:        input.End.UTC(),
		PlayerScore:  models.PlayerScores{},
		RewardsRange: input.RewardsRange,
		RewardsSum:   sum,
	}
	if err := s.tournamentRepo.Create(ctx, nil, t); err != nil {
		return nil, handleRepositoryError(err)
	}
	t.Phase = t.PhaseAt(s.now())

	s.logger.Info("tournament created",
		slog.String("tournament_id", t.ID.String()),
		slog.Int("max_player", t.MaxPlayer),
		slog.Int("rewards_sum", t.RewardsSum))
	return t, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, page Page) ([]models.Tournament, error) {
	page, err := page.normalize()
	if err != nil {
		return nil, err
	}
	tournaments, err := s.tournamentRepo.List(ctx, page.Limit, page.Skip)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	now := s.now()
	for i := range tournaments {
		tournaments[i].Phase = tournaments[i].PhaseAt(now)
	}
	return tournaments, nil
}

// GetTournament loads the tournament with its players and matches in parallel.
func (s *tournamentService) GetTournament(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	var (
		t       *models.Tournament
		players []models.Registration
		matches []models.Match
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		t, err = s.tournamentRepo.GetByID(gCtx, nil, id)
		return err
	})
	g.Go(func() error {
		var err error
		players, err = s.tournamentRepo.ListPlayers(gCtx, nil, id)
		return err
	})
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.ListByTournament(gCtx, nil, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, withID(handleRepositoryError(err), ErrTournamentNotFound, id)
	}

	t.Players = players
	t.Matches = matches
	t.Phase = t.PhaseAt(s.now())
	return t, nil
}

func (s *tournamentService) UpdateTournament(ctx context.Context, id uuid.UUID, patch TournamentPatch) (*models.Tournament, error) {
	var updated *models.Tournament
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.lockNotStarted(ctx, exec, id)
		if err != nil {
			return err
		}

		if patch.MaxPlayer != nil {
			if *patch.MaxPlayer <= 0 {
				return newValidationError("max_player", *patch.MaxPlayer, "must be positive")
			}
			count, err := s.tournamentRepo.CountPlayers(ctx, exec, id)
			if err != nil {
				return err
			}
			if *patch.MaxPlayer < count {
				return newValidationError("max_player", *patch.MaxPlayer,
					fmt.Sprintf("must not be below the %d players already registered", count))
			}
			t.MaxPlayer = *patch.MaxPlayer
		}
		if patch.Begin != nil {
			t.BeginAt = patch.Begin.UTC()
		}
		if patch.End != nil {
			t.EndAt = patch.End.UTC()
		}
		if err := validateWindow(t.BeginAt, t.EndAt); err != nil {
			return err
		}
		if patch.RewardsRange != nil {
			sum, err := RewardsSum(*patch.RewardsRange)
			if err != nil {
				return err
			}
			t.RewardsRange = *patch.RewardsRange
			t.RewardsSum = sum
		}

		if err := s.tournamentRepo.Update(ctx, exec, t); err != nil {
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, withID(handleRepositoryError(err), ErrTournamentNotFound, id)
	}
	updated.Phase = updated.PhaseAt(s.now())
	return updated, nil
}

func (s *tournamentService) DeleteTournament(ctx context.Context, id uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if _, err := s.lockNotStarted(ctx, exec, id); err != nil {
			return err
		}
		return s.tournamentRepo.Delete(ctx, exec, id)
	})
	if err != nil {
		return withID(handleRepositoryError(err), ErrTournamentNotFound, id)
	}
	s.invalidateLeaderboard(ctx, id)
	s.logger.Info("tournament deleted", slog.String("tournament_id", id.String()))
	return nil
}

// lockNotStarted locks the tournament row and rejects it unless registration is still open.
func (s *tournamentService) lockNotStarted(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, id)
	if err != nil {
		return nil, err
	}
	switch t.PhaseAt(s.now()) {
	case models.PhaseActive:
		return nil, ErrTournamentAlreadyStarted
	case models.PhaseEnded:
		return nil, ErrTournamentAlreadyEnded
	}
	return t, nil
}

// requireActive rejects tournaments outside their play window.
func (s *tournamentService) requireActive(t *models.Tournament) error {
	switch t.PhaseAt(s.now()) {
	case models.PhaseNotStarted:
		return ErrTournamentNotStarted
	case models.PhaseEnded:
		return ErrTournamentAlreadyEnded
	}
	return nil
}

// --- Lifecycle ---

func (s *tournamentService) Register(ctx context.Context, id uuid.UUID, input RegisterInput) (*models.User, error) {
	var player *models.User
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.lockNotStarted(ctx, exec, id)
		if err != nil {
			return err
		}

		count, err := s.tournamentRepo.CountPlayers(ctx, exec, id)
		if err != nil {
			return err
		}
		if count >= t.MaxPlayer {
			return fmt.Errorf("%w: limit is %d", ErrTournamentFull, t.MaxPlayer)
		}

		player, err = s.resolvePlayer(ctx, exec, input)
		if err != nil {
			return err
		}

		registered, err := s.tournamentRepo.IsPlayer(ctx, exec, id, player.ID)
		if err != nil {
			return err
		}
		if registered {
			return fmt.Errorf("%w: %s", ErrAlreadyRegistered, player.Username)
		}

		if err := s.tournamentRepo.AddPlayer(ctx, exec, id, player.ID); err != nil {
			return err
		}
		if t.PlayerScore == nil {
			t.PlayerScore = models.PlayerScores{}
		}
		t.PlayerScore[player.ID] = 0
		return s.tournamentRepo.UpdateScores(ctx, exec, id, t.PlayerScore)
	})
	if err != nil {
		return nil, withID(handleRepositoryError(err), ErrTournamentNotFound, id)
	}

	s.logger.Info("player registered",
		slog.String("tournament_id", id.String()),
		slog.String("user_id", player.ID.String()))
	s.invalidateLeaderboard(ctx, id)
	s.broadcast(id, live.EventPlayerRegistered, player)
	return player, nil
}

// resolvePlayer looks the user up by id, or gets-or-creates them by username.
func (s *tournamentService) resolvePlayer(ctx context.Context, exec repositories.SQLExecutor, input RegisterInput) (*models.User, error) {
	if input.ID != nil {
		user, err := s.userRepo.GetByID(ctx, exec, *input.ID)
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, *input.ID)
		}
		return user, err
	}

	username, err := normalizeUsername(input.Username)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByUsername(ctx, exec, username)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, err
	}

	phone, err := normalizePhone(input.PhoneNumber)
	if err != nil {
		return nil, err
	}
	user = &models.User{Username: username, PhoneNumber: phone}
	if err := s.userRepo.Create(ctx, exec, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *tournamentService) ListPlayers(ctx context.Context, id uuid.UUID) ([]models.Registration, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, id); err != nil {
		return nil, withID(handleRepositoryError(err), ErrTournamentNotFound, id)
	}
	players, err := s.tournamentRepo.ListPlayers(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	return players, nil
}

func (s *tournamentService) InitiateMatch(ctx context.Context, id uuid.UUID, playerOneID, playerTwoID uuid.UUID) (*models.Match, error) {
	if playerOneID == playerTwoID {
		return nil, newValidationError("player_2_id", playerTwoID.String(), "players must be different")
	}

	var match *models.Match
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetByID(ctx, exec, id)
		if err != nil {
			return err
		}
		if err := s.requireActive(t); err != nil {
			return err
		}
		if err := s.requireRegistered(ctx, exec, id, "player_1", playerOneID); err != nil {
			return err
		}
		if err := s.requireRegistered(ctx, exec, id, "player_2", playerTwoID); err != nil {
			return err
		}

		match = newTournamentMatch(id, playerOneID, playerTwoID)
		return s.matchRepo.Create(ctx, exec, match)
	})
	if err != nil {
		return nil, withID(handleRepositoryError(err), ErrTournamentNotFound, id)
	}

	s.logger.Info("match initiated",
		slog.String("tournament_id", id.String()),
		slog.String("match_id", match.ID.String()))
	return match, nil
}

func (s *tournamentService) requireRegistered(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID, slot string, userID uuid.UUID) error {
	if _, err := s.userRepo.GetByID(ctx, exec, userID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return fmt.Errorf("%w: %s %s", ErrUserNotFound, slot, userID)
		}
		return err
	}
	registered, err := s.tournamentRepo.IsPlayer(ctx, exec, id, userID)
	if err != nil {
		return err
	}
	if !registered {
		return fmt.Errorf("%w: %s", ErrPlayerNotRegistered, slot)
	}
	return nil
}

func newTournamentMatch(tournamentID, playerOneID, playerTwoID uuid.UUID) *models.Match {
	return &models.Match{
		TournamentID: &tournamentID,
		PlayerOneID:  &playerOneID,
		PlayerTwoID:  &playerTwoID,
		Result:       models.ResultDraw,
		Status:       models.MatchPending,
	}
}

func (s *tournamentService) StartMatch(ctx context.Context, id, matchID uuid.UUID, scores *ScoreInput) (*models.Match, error) {
	if scores != nil {
		if scores.ScoreOne < 0 {
			return nil, newValidationError("score_one", scores.ScoreOne, "must not be negative")
		}
		if scores.ScoreTwo < 0 {
			return nil, newValidationError("score_two", scores.ScoreTwo, "must not be negative")
		}
	}

	var match *models.Match
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetByID(ctx, exec, id)
		if err != nil {
			return err
		}
		if err := s.requireActive(t); err != nil {
			return err
		}

		m, err := s.lockTournamentMatch(ctx, exec, id, matchID)
		if err != nil {
			return err
		}
		if m.Status == models.MatchPlayed {
			return ErrMatchAlreadyPlayed
		}

		if scores != nil {
			m.ScoreOne, m.ScoreTwo = scores.ScoreOne, scores.ScoreTwo
		} else {
			m.ScoreOne, m.ScoreTwo, err = s.scorer.Scores(ctx, m)
			if err != nil {
				return fmt.Errorf("failed to generate scores: %w", err)
			}
		}
		m.Result = ClassifyResult(m.ScoreOne, m.ScoreTwo)
		m.Status = models.MatchPlayed

		if err := s.matchRepo.UpdateState(ctx, exec, m); err != nil {
			return err
		}
		match = m
		return nil
	})
	if err != nil {
		return nil, withID(withID(handleRepositoryError(err), ErrTournamentNotFound, id), ErrMatchNotFound, matchID)
	}

	s.logger.Info("match played",
		slog.String("match_id", match.ID.String()),
		slog.String("result", string(match.Result)),
		slog.Int("score_one", match.ScoreOne),
		slog.Int("score_two", match.ScoreTwo))
	return match, nil
}

func (s *tournamentService) lockTournamentMatch(ctx context.Context, exec repositories.SQLExecutor, id, matchID uuid.UUID) (*models.Match, error) {
	m, err := s.matchRepo.GetByIDForUpdate(ctx, exec, matchID)
	if err != nil {
		return nil, err
	}
	if !m.BelongsTo(id) {
		return nil, ErrMatchNotInTournament
	}
	if m.PlayerOneID == nil || m.PlayerTwoID == nil {
		return nil, fmt.Errorf("%w: match has an empty player slot", ErrPlayerNotRegistered)
	}
	return m, nil
}

// RecordResult credits a played match to the tournament scores exactly once.
func (s *tournamentService) RecordResult(ctx context.Context, id, matchID uuid.UUID) (*models.Match, error) {
	var match *models.Match
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, id)
		if err != nil {
			return err
		}
		if err := s.requireActive(t); err != nil {
			return err
		}

		m, err := s.lockTournamentMatch(ctx, exec, id, matchID)
		if err != nil {
			return err
		}
		if m.Status != models.MatchPlayed {
			return ErrMatchNotPlayed
		}
		if m.Credited {
			return ErrMatchAlreadyCredited
		}

		// Очки получают только зарегистрированные участники.
		if !t.IsRegistered(*m.PlayerOneID) {
			return fmt.Errorf("%w: player_1", ErrPlayerNotRegistered)
		}
		if !t.IsRegistered(*m.PlayerTwoID) {
			return fmt.Errorf("%w: player_2", ErrPlayerNotRegistered)
		}

		one, two := TournamentPoints(m.Result)
		t.PlayerScore[*m.PlayerOneID] += one
		t.PlayerScore[*m.PlayerTwoID] += two
		if err := s.tournamentRepo.UpdateScores(ctx, exec, id, t.PlayerScore); err != nil {
			return err
		}

		m.Credited = true
		if err := s.matchRepo.UpdateState(ctx, exec, m); err != nil {
			return err
		}
		match = m
		return nil
	})
	if err != nil {
		return nil, withID(withID(handleRepositoryError(err), ErrTournamentNotFound, id), ErrMatchNotFound, matchID)
	}

	s.logger.Info("match result credited",
		slog.String("tournament_id", id.String()),
		slog.String("match_id", matchID.String()),
		slog.String("result", string(match.Result)))

	s.invalidateLeaderboard(ctx, id)
	if board, err := s.Leaderboard(ctx, id); err == nil {
		s.broadcast(id, live.EventLeaderboardUpdated, board)
	} else {
		s.logger.Warn("failed to refresh leaderboard after crediting", slog.String("tournament_id", id.String()), slog.Any("error", err))
	}
	return match, nil
}

// EndTournament ranks players, pays the reward table into their global points and
// marks the tournament finalized, all in one transaction.
func (s *tournamentService) EndTournament(ctx context.Context, id uuid.UUID) (*models.FinalStandings, error) {
	var standings *models.FinalStandings
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetByIDForUpdate(ctx, exec, id)
		if err != nil {
			return err
		}
		if t.FinalizedAt != nil {
			return ErrTournamentAlreadyEnded
		}
		now := s.now()
		if t.PhaseAt(now) == models.PhaseNotStarted {
			return ErrTournamentNotStarted
		}

		players, err := s.tournamentRepo.ListPlayers(ctx, exec, id)
		if err != nil {
			return err
		}
		board := BuildLeaderboard(players, t.PlayerScore)

		rewards, err := ExpandRewards(t.RewardsRange)
		if err != nil {
			return err
		}
		payouts := DistributeRewards(board, rewards)
		for _, p := range payouts {
			if p.Reward == 0 {
				continue
			}
			if err := s.userRepo.AddPoints(ctx, exec, p.UserID, p.Reward); err != nil {
				return fmt.Errorf("failed to pay reward to %s: %w", p.UserID, err)
			}
		}

		if err := s.tournamentRepo.MarkFinalized(ctx, exec, id, now); err != nil {
			return err
		}

		standings = &models.FinalStandings{
			TournamentID: id,
			Leaderboard:  board,
			Payouts:      payouts,
			RewardsSum:   t.RewardsSum,
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to end tournament", slog.String("tournament_id", id.String()), slog.Any("error", err))
		return nil, withID(handleRepositoryError(err), ErrTournamentNotFound, id)
	}

	s.logger.Info("tournament finalized",
		slog.String("tournament_id", id.String()),
		slog.Int("players", len(standings.Leaderboard)),
		slog.Int("payouts", len(standings.Payouts)))

	if s.archiver != nil {
		location, err := s.archiver.ArchiveStandings(ctx, standings)
		if err != nil {
			s.logger.Error("failed to archive final standings", slog.String("tournament_id", id.String()), slog.Any("error", err))
		} else {
			standings.ArchiveURL = location
		}
	}
	s.invalidateLeaderboard(ctx, id)
	s.broadcast(id, live.EventTournamentFinalized, standings)
	return standings, nil
}

// Leaderboard returns the ranked [username, score] list, served from cache when possible.
func (s *tournamentService) Leaderboard(ctx context.Context, id uuid.UUID) ([]models.LeaderboardEntry, error) {
	// Поколение читается до загрузки из базы.
	generation, cacheable := int64(0), false
	if s.cache != nil {
		board, ok, err := s.cache.Get(ctx, id)
		if err != nil {
			s.logger.Warn("leaderboard cache read failed", slog.String("tournament_id", id.String()), slog.Any("error", err))
		} else if ok {
			return board, nil
		} else if generation, err = s.cache.Generation(ctx, id); err != nil {
			s.logger.Warn("leaderboard cache generation read failed", slog.String("tournament_id", id.String()), slog.Any("error", err))
		} else {
			cacheable = true
		}
	}

	t, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, withID(handleRepositoryError(err), ErrTournamentNotFound, id)
	}
	players, err := s.tournamentRepo.ListPlayers(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	board := BuildLeaderboard(players, t.PlayerScore)

	if cacheable {
		stored, err := s.cache.Set(ctx, id, generation, board)
		switch {
		case err != nil:
			s.logger.Warn("leaderboard cache write failed", slog.String("tournament_id", id.String()), slog.Any("error", err))
		case !stored:
			s.logger.Debug("leaderboard changed while loading, cache write skipped", slog.String("tournament_id", id.String()))
		}
	}
	return board, nil
}

func (s *tournamentService) invalidateLeaderboard(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.Warn("leaderboard cache invalidation failed", slog.String("tournament_id", id.String()), slog.Any("error", err))
	}
}
