package services

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Dosada05/tournament-rewards/models"
)

var rewardKeyPattern = regexp.MustCompile(`^\d{1,2}-\d{1,2}$`)

// MaxRewardsSum bounds a single reward and the table total; both are stored as INTEGER.
const MaxRewardsSum = math.MaxInt32

// RankRange is an inclusive, 1-based range of leaderboard positions.
type RankRange struct {
	Inf int
	Sup int
}

func (r RankRange) Size() int {
	return r.Sup - r.Inf + 1
}

// ParseRewardKey parses an "inf-sup" key.
func ParseRewardKey(key string) (RankRange, error) {
	if !rewardKeyPattern.MatchString(key) {
		return RankRange{}, newValidationError("rewards_range", key, `key must match "inf-sup" with 1 or 2 digits each`)
	}
	bounds := strings.SplitN(key, "-", 2)
	inf, _ := strconv.Atoi(bounds[0])
	sup, _ := strconv.Atoi(bounds[1])
	if inf > sup {
		return RankRange{}, newValidationError("rewards_range", key, "range lower bound is greater than upper bound")
	}
	return RankRange{Inf: inf, Sup: sup}, nil
}

type rewardTier struct {
	RankRange
	reward int
}

func parseRewardTiers(table models.RewardsRange) ([]rewardTier, error) {
	tiers := make([]rewardTier, 0, len(table))
	for key, reward := range table {
		rr, err := ParseRewardKey(key)
		if err != nil {
			return nil, err
		}
		if reward < 0 {
			return nil, newValidationError("rewards_range", key, "reward must not be negative")
		}
		if reward > MaxRewardsSum {
			return nil, newValidationError("rewards_range", key, fmt.Sprintf("reward must not exceed %d", MaxRewardsSum))
		}
		tiers = append(tiers, rewardTier{RankRange: rr, reward: reward})
	}
	sort.Slice(tiers, func(i, j int) bool {
		if tiers[i].Inf != tiers[j].Inf {
			return tiers[i].Inf < tiers[j].Inf
		}
		return tiers[i].Sup < tiers[j].Sup
	})
	return tiers, nil
}

// ExpandRewards flattens the table into one reward per rank: each range, in
// ascending order, contributes sup-inf+1 copies of its reward.
func ExpandRewards(table models.RewardsRange) ([]int, error) {
	tiers, err := parseRewardTiers(table)
	if err != nil {
		return nil, err
	}
	rewards := make([]int, 0)
	for _, tier := range tiers {
		for i := 0; i < tier.Size(); i++ {
			rewards = append(rewards, tier.reward)
		}
	}
	return rewards, nil
}

// RewardsSum is the total a fully populated leaderboard would receive.
func RewardsSum(table models.RewardsRange) (int, error) {
	tiers, err := parseRewardTiers(table)
	if err != nil {
		return 0, err
	}
	var sum int64
	for _, tier := range tiers {
		sum += int64(tier.Size()) * int64(tier.reward)
		if sum > MaxRewardsSum {
			return 0, newValidationError("rewards_range", table, fmt.Sprintf("total rewards must not exceed %d", MaxRewardsSum))
		}
	}
	return int(sum), nil
}

// DistributeRewards pairs the i-th ranked player with rewards[i]. Players
// beyond the table get nothing and surplus rewards are not paid.
func DistributeRewards(board []models.LeaderboardEntry, rewards []int) []models.Payout {
	n := min(len(board), len(rewards))
	payouts := make([]models.Payout, 0, n)
	for i := 0; i < n; i++ {
		payouts = append(payouts, models.Payout{
			Rank:     i + 1,
			UserID:   board[i].UserID,
			Username: board[i].Username,
			Score:    board[i].Score,
			Reward:   rewards[i],
		})
	}
	return payouts
}
