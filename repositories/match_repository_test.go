package repositories

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Dosada05/tournament-rewards/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchRepository_UpdateLeavesLifecycleColumns(t *testing.T) {
	conn, mock := newMockDB(t)
	repo := NewPostgresMatchRepository(conn)
	p1, p2 := uuid.New(), uuid.New()
	m := &models.Match{ID: uuid.New(), PlayerOneID: &p1, PlayerTwoID: &p2, Result: models.ResultPlayerOne,
		ScoreOne: 3, ScoreTwo: 1, Status: models.MatchPlayed, Credited: true}

	mock.ExpectExec(regexp.QuoteMeta("score_two = $5\n\t\tWHERE id = $6")).
		WithArgs(p1.String(), p2.String(), models.ResultPlayerOne, 3, 1, m.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), nil, m))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchRepository_UpdateState(t *testing.T) {
	conn, mock := newMockDB(t)
	repo := NewPostgresMatchRepository(conn)
	m := &models.Match{ID: uuid.New(), Result: models.ResultDraw, ScoreOne: 2, ScoreTwo: 2,
		Status: models.MatchPlayed, Credited: true}

	mock.ExpectExec(regexp.QuoteMeta("credited = $5")).
		WithArgs(models.ResultDraw, 2, 2, models.MatchPlayed, true, m.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("credited = $5")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.UpdateState(context.Background(), nil, m))
	assert.ErrorIs(t, repo.UpdateState(context.Background(), nil, m), ErrMatchNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
