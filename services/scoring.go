package services

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/Dosada05/tournament-rewards/models"
)

const (
	pointsWin  = 3
	pointsDraw = 1
	pointsLoss = 0
)

// ScoreGenerator produces the two scores of a match being played.
type ScoreGenerator interface {
	Scores(ctx context.Context, match *models.Match) (scoreOne, scoreTwo int, err error)
}

type randomScoreGenerator struct {
	min, max int
}

// NewRandomScoreGenerator draws each score uniformly from [min, max].
func NewRandomScoreGenerator(min, max int) (ScoreGenerator, error) {
	if min < 0 || min > max {
		return nil, fmt.Errorf("invalid score bounds [%d, %d]", min, max)
	}
	return &randomScoreGenerator{min: min, max: max}, nil
}

func (g *randomScoreGenerator) Scores(_ context.Context, _ *models.Match) (int, int, error) {
	span := g.max - g.min + 1
	return g.min + rand.IntN(span), g.min + rand.IntN(span), nil
}

// ClassifyResult compares the two scores strictly.
func ClassifyResult(scoreOne, scoreTwo int) models.MatchResult {
	switch {
	case scoreOne > scoreTwo:
		return models.ResultPlayerOne
	case scoreOne < scoreTwo:
		return models.ResultPlayerTwo
	default:
		return models.ResultDraw
	}
}

// TournamentPoints returns the score delta for player one and player two.
func TournamentPoints(result models.MatchResult) (int, int) {
	switch result {
	case models.ResultPlayerOne:
		return pointsWin, pointsLoss
	case models.ResultPlayerTwo:
		return pointsLoss, pointsWin
	default:
		return pointsDraw, pointsDraw
	}
}
