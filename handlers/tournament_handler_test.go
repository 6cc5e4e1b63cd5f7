package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Dosada05/tournament-rewards/models"
	"github.com/Dosada05/tournament-rewards/services"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTournamentRouter(svc services.TournamentService) *chi.Mux {
	h := NewTournamentHandler(svc, discardLogger())
	r := chi.NewRouter()
	r.Post("/tournaments/", h.CreateTournament)
	r.Put("/tournaments/update/{id}", h.UpdateTournamentByID)
	r.Post("/tournaments/{id}/register", h.Register)
	r.Post("/tournaments/{id}/match", h.InitiateMatch)
	r.Post("/tournaments/{id}/schedule", h.ScheduleRoundRobin)
	r.Post("/tournaments/{id}/match/{match_id}/start", h.StartMatch)
	r.Post("/tournaments/{id}/end", h.EndTournament)
	r.Get("/tournaments/{id}/leaderboard", h.Leaderboard)
	return r
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRegister_StatusMapping(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "created", wantStatus: http.StatusCreated},
		{name: "full", err: fmt.Errorf("%w: limit is 2", services.ErrTournamentFull), wantStatus: http.StatusNotAcceptable},
		{name: "duplicate", err: services.ErrAlreadyRegistered, wantStatus: http.StatusNotAcceptable},
		{name: "started", err: services.ErrTournamentAlreadyStarted, wantStatus: http.StatusNotAcceptable},
		{name: "unknown user", err: services.ErrUserNotFound, wantStatus: http.StatusNotFound},
		{name: "unknown tournament", err: services.ErrTournamentNotFound, wantStatus: http.StatusNotFound},
		{name: "phone taken", err: services.ErrPhoneTaken, wantStatus: http.StatusBadRequest},
		{name: "database down", err: errors.New("dial tcp: refused"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &TournamentServiceMock{}
			var user *models.User
			if tt.err == nil {
				user = &models.User{ID: uuid.New(), Username: "alice"}
			}
			svc.On("Register", mock.Anything, id, services.RegisterInput{Username: "alice"}).Return(user, tt.err)

			rec := serve(newTournamentRouter(svc), http.MethodPost, "/tournaments/"+id.String()+"/register", `{"username":"alice"}`)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.err != nil {
				assert.Contains(t, decodeBody(t, rec), "error")
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestCreateTournament_ValidationNamesField(t *testing.T) {
	svc := &TournamentServiceMock{}
	svc.On("CreateTournament", mock.Anything, mock.Anything).
		Return(nil, &services.ValidationError{Field: "rewards_range", Value: "3-1", Reason: "inf must not exceed sup"})

	body := `{"begin":"2026-06-01T10:00:00Z","end":"2026-06-01T12:00:00Z","rewards_range":{"3-1":5}}`
	rec := serve(newTournamentRouter(svc), http.MethodPost, "/tournaments/", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "rewards_range", decodeBody(t, rec)["field"])
}

func TestCreateTournament_RejectsUnknownKeys(t *testing.T) {
	svc := &TournamentServiceMock{}
	rec := serve(newTournamentRouter(svc), http.MethodPost, "/tournaments/", `{"name":"cup"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "CreateTournament", mock.Anything, mock.Anything)
}

func TestUpdateTournament(t *testing.T) {
	svc := &TournamentServiceMock{}
	router := newTournamentRouter(svc)
	id := uuid.New()

	rec := serve(router, http.MethodPut, "/tournaments/update/"+id.String(), `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.On("UpdateTournament", mock.Anything, id, mock.Anything).Return(nil, services.ErrTournamentAlreadyStarted)
	rec = serve(router, http.MethodPut, "/tournaments/update/"+id.String(), `{"max_player":4}`)
	assert.Equal(t, http.StatusNotAcceptable, rec.Code)
}

func TestInitiateMatch_QueryParams(t *testing.T) {
	svc := &TournamentServiceMock{}
	router := newTournamentRouter(svc)
	id, p1, p2 := uuid.New(), uuid.New(), uuid.New()

	rec := serve(router, http.MethodPost, "/tournaments/"+id.String()+"/match?player_1_id="+p1.String(), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.On("InitiateMatch", mock.Anything, id, p1, p2).Return(nil, fmt.Errorf("%w: player_2", services.ErrPlayerNotRegistered))
	rec = serve(router, http.MethodPost,
		fmt.Sprintf("/tournaments/%s/match?player_1_id=%s&player_2_id=%s", id, p1, p2), "")
	assert.Equal(t, http.StatusNotAcceptable, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "player_2")
}

func TestStartMatch_OptionalScores(t *testing.T) {
	svc := &TournamentServiceMock{}
	router := newTournamentRouter(svc)
	id, matchID := uuid.New(), uuid.New()
	target := fmt.Sprintf("/tournaments/%s/match/%s/start", id, matchID)
	played := &models.Match{ID: matchID, Status: models.MatchPlayed, Result: models.ResultPlayerOne}

	svc.On("StartMatch", mock.Anything, id, matchID, (*services.ScoreInput)(nil)).Return(played, nil).Once()
	rec := serve(router, http.MethodPost, target, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	svc.On("StartMatch", mock.Anything, id, matchID, &services.ScoreInput{ScoreOne: 3, ScoreTwo: 1}).Return(played, nil).Once()
	rec = serve(router, http.MethodPost, target, `{"score_one":3,"score_two":1}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	svc.AssertExpectations(t)
}

func TestStartMatch_EmptyChunkedBody(t *testing.T) {
	svc := &TournamentServiceMock{}
	router := newTournamentRouter(svc)
	id, matchID := uuid.New(), uuid.New()
	target := fmt.Sprintf("/tournaments/%s/match/%s/start", id, matchID)
	played := &models.Match{ID: matchID, Status: models.MatchPlayed, Result: models.ResultDraw}

	svc.On("StartMatch", mock.Anything, id, matchID, (*services.ScoreInput)(nil)).Return(played, nil).Once()
	svc.On("StartMatch", mock.Anything, id, matchID, &services.ScoreInput{ScoreOne: 1, ScoreTwo: 2}).Return(played, nil).Once()

	// unknown length, as with Transfer-Encoding: chunked
	for _, body := range []string{"", `{"score_one":1,"score_two":2}`} {
		req := httptest.NewRequest(http.MethodPost, target, io.NopCloser(strings.NewReader(body)))
		require.Equal(t, int64(-1), req.ContentLength)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	svc.AssertExpectations(t)
}

func TestScheduleRoundRobin_Legs(t *testing.T) {
	svc := &TournamentServiceMock{}
	router := newTournamentRouter(svc)
	id := uuid.New()

	svc.On("ScheduleRoundRobin", mock.Anything, id, 2).Return([]models.Match{{ID: uuid.New()}}, nil)
	rec := serve(router, http.MethodPost, "/tournaments/"+id.String()+"/schedule?legs=2", "")
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = serve(router, http.MethodPost, "/tournaments/"+id.String()+"/schedule?legs=two", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLeaderboard_PairEncoding(t *testing.T) {
	svc := &TournamentServiceMock{}
	id := uuid.New()
	svc.On("Leaderboard", mock.Anything, id).Return([]models.LeaderboardEntry{
		{Username: "alice", Score: 7},
		{Username: "bob", Score: 3},
	}, nil)

	rec := serve(newTournamentRouter(svc), http.MethodGet, "/tournaments/"+id.String()+"/leaderboard", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var pairs [][]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pairs))
	assert.Equal(t, [][]interface{}{{"alice", float64(7)}, {"bob", float64(3)}}, pairs)
}

func TestLeaderboard_EmptyIsArray(t *testing.T) {
	svc := &TournamentServiceMock{}
	id := uuid.New()
	svc.On("Leaderboard", mock.Anything, id).Return(nil, nil)

	rec := serve(newTournamentRouter(svc), http.MethodGet, "/tournaments/"+id.String()+"/leaderboard", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestEndTournament(t *testing.T) {
	svc := &TournamentServiceMock{}
	router := newTournamentRouter(svc)
	id := uuid.New()

	svc.On("EndTournament", mock.Anything, id).Return(&models.FinalStandings{
		TournamentID: id,
		Payouts:      []models.Payout{{Rank: 1, Username: "alice", Reward: 10}},
	}, nil).Once()
	rec := serve(router, http.MethodPost, "/tournaments/"+id.String()+"/end", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	svc.On("EndTournament", mock.Anything, id).Return(nil, services.ErrTournamentAlreadyEnded).Once()
	rec = serve(router, http.MethodPost, "/tournaments/"+id.String()+"/end", "")
	assert.Equal(t, http.StatusNotAcceptable, rec.Code)
}

func TestInvalidTournamentID(t *testing.T) {
	svc := &TournamentServiceMock{}
	rec := serve(newTournamentRouter(svc), http.MethodPost, "/tournaments/42/end", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "EndTournament", mock.Anything, mock.Anything)
}
