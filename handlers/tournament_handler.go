package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Dosada05/tournament-rewards/models"
	"github.com/Dosada05/tournament-rewards/services"
)

type TournamentHandler struct {
	responder
	tournamentService services.TournamentService
}

func NewTournamentHandler(ts services.TournamentService, logger *slog.Logger) *TournamentHandler {
	return &TournamentHandler{
		responder:         responder{logger: logger},
		tournamentService: ts,
	}
}

func (h *TournamentHandler) CreateTournament(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.CreateTournament(r.Context(), input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, tournament, nil); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	tournaments, err := h.tournamentService.ListTournaments(r.Context(), page)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, tournaments, nil); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) GetTournamentByID(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.GetTournament(r.Context(), id)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, tournament, nil); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) UpdateTournamentByID(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	var patch services.TournamentPatch
	if err := readJSON(w, r, &patch); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	if patch == (services.TournamentPatch{}) {
		h.badRequestResponse(w, r, errors.New("no fields provided for update"))
		return
	}

	tournament, err := h.tournamentService.UpdateTournament(r.Context(), id, patch)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, tournament, nil); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) DeleteTournamentByID(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.DeleteTournament(r.Context(), id); err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TournamentHandler) Register(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	var input services.RegisterInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	user, err := h.tournamentService.Register(r.Context(), id, input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, user, nil); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	players, err := h.tournamentService.ListPlayers(r.Context(), id)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, players, nil); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// InitiateMatch serves both /match and /init_match; players come from the query string.
func (h *TournamentHandler) InitiateMatch(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	playerOne, err := getIDFromQuery(r, "player_1_id")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	playerTwo, err := getIDFromQuery(r, "player_2_id")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	match, err := h.tournamentService.InitiateMatch(r.Context(), id, playerOne, playerTwo)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, match, nil); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) ScheduleRoundRobin(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	legs, err := intFromQuery(r, "legs", 1)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	matches, err := h.tournamentService.ScheduleRoundRobin(r.Context(), id, legs)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, matches, nil); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) StartMatch(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	matchID, err := getIDFromURL(r, "match_id")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	var scores services.ScoreInput
	supplied, err := readOptionalJSON(w, r, &scores)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	var input *services.ScoreInput
	if supplied {
		input = &scores
	}

	match, err := h.tournamentService.StartMatch(r.Context(), id, matchID, input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, match, nil); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) RecordResult(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	matchID, err := getIDFromURL(r, "match_id")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	match, err := h.tournamentService.RecordResult(r.Context(), id, matchID)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, match, nil); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) EndTournament(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	standings, err := h.tournamentService.EndTournament(r.Context(), id)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, standings, nil); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// Leaderboard responds with [[username, score], ...], highest score first.
func (h *TournamentHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	board, err := h.tournamentService.Leaderboard(r.Context(), id)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	if board == nil {
		board = []models.LeaderboardEntry{}
	}

	if err := writeJSON(w, http.StatusOK, board, nil); err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
