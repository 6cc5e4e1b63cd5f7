package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Dosada05/tournament-rewards/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// LeaderboardCache stores the ranked leaderboard of a tournament as one JSON value.
// A sorted set is not used because ties must keep registration order.
//
// Every Invalidate bumps a per-tournament generation. Set only writes when the
// generation still equals the one the caller read before loading the board,
// so a reader that loaded scores before a write cannot cache them after it.
type LeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLeaderboardCache(client *redis.Client, ttl time.Duration) *LeaderboardCache {
	return &LeaderboardCache{client: client, ttl: ttl}
}

// NewClient connects to redis and verifies the connection.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return client, nil
}

func tournamentKey(tournamentID uuid.UUID) string {
	return fmt.Sprintf("leaderboard:tournament:%s", tournamentID)
}

func generationKey(tournamentID uuid.UUID) string {
	return fmt.Sprintf("leaderboard:gen:%s", tournamentID)
}

// KEYS[1] board, KEYS[2] generation; ARGV[1] expected generation, ARGV[2] board, ARGV[3] ttl in ms.
var setIfGeneration = redis.NewScript(`
local gen = redis.call('GET', KEYS[2]) or '0'
if gen ~= ARGV[1] then
	return 0
end
if ARGV[3] == '0' then
	redis.call('SET', KEYS[1], ARGV[2])
else
	redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
end
return 1
`)

func (c *LeaderboardCache) Get(ctx context.Context, tournamentID uuid.UUID) ([]models.LeaderboardEntry, bool, error) {
	raw, err := c.client.Get(ctx, tournamentKey(tournamentID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached leaderboard: %w", err)
	}

	var board []models.LeaderboardEntry
	if err := json.Unmarshal(raw, &board); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached leaderboard: %w", err)
	}
	return board, true, nil
}

// Generation returns the current invalidation counter of the tournament.
func (c *LeaderboardCache) Generation(ctx context.Context, tournamentID uuid.UUID) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(tournamentID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read leaderboard generation: %w", err)
	}
	return gen, nil
}

// Set caches board unless the tournament was invalidated after generation was read.
// It reports whether the board was stored.
func (c *LeaderboardCache) Set(ctx context.Context, tournamentID uuid.UUID, generation int64, board []models.LeaderboardEntry) (bool, error) {
	if board == nil {
		board = []models.LeaderboardEntry{}
	}
	raw, err := json.Marshal(board)
	if err != nil {
		return false, fmt.Errorf("failed to encode leaderboard: %w", err)
	}

	stored, err := setIfGeneration.Run(ctx, c.client,
		[]string{tournamentKey(tournamentID), generationKey(tournamentID)},
		strconv.FormatInt(generation, 10), raw, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("failed to cache leaderboard: %w", err)
	}
	return stored == 1, nil
}

// Invalidate drops the cached board and bumps the generation in one transaction.
func (c *LeaderboardCache) Invalidate(ctx context.Context, tournamentID uuid.UUID) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(tournamentID))
		pipe.Del(ctx, tournamentKey(tournamentID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate cached leaderboard: %w", err)
	}
	return nil
}
