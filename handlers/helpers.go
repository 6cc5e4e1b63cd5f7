package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Dosada05/tournament-rewards/services"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type jsonResponse map[string]interface{}

var errEmptyBody = errors.New("body must not be empty")

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errEmptyBody
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case err.Error() == "http: request body too large":
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err) // ошибка программиста: передан не указатель
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

// readOptionalJSON decodes the body when there is one; an empty body, including
// an empty chunked one, leaves dst untouched.
func readOptionalJSON(w http.ResponseWriter, r *http.Request, dst interface{}) (bool, error) {
	if r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 {
		return false, nil
	}
	if err := readJSON(w, r, dst); err != nil {
		if errors.Is(err, errEmptyBody) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

// responder carries the logger shared by every handler's error responses.
type responder struct {
	logger *slog.Logger
}

func (rs responder) errorResponse(w http.ResponseWriter, r *http.Request, status int, env jsonResponse) {
	if err := writeJSON(w, status, env, nil); err != nil {
		rs.logger.Error("failed to write error response",
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (rs responder) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	rs.logger.Error("internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err))
	message := "the server encountered a problem and could not process your request"
	rs.errorResponse(w, r, http.StatusInternalServerError, jsonResponse{"error": message})
}

func (rs responder) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	rs.errorResponse(w, r, http.StatusBadRequest, jsonResponse{"error": err.Error()})
}

func (rs responder) failedValidationResponse(w http.ResponseWriter, r *http.Request, vErr *services.ValidationError) {
	rs.errorResponse(w, r, http.StatusBadRequest, jsonResponse{"error": vErr.Error(), "field": vErr.Field})
}

func (rs responder) notFoundResponse(w http.ResponseWriter, r *http.Request, err error) {
	rs.errorResponse(w, r, http.StatusNotFound, jsonResponse{"error": err.Error()})
}

// notAcceptableResponse reports a lifecycle precondition the tournament does not meet.
func (rs responder) notAcceptableResponse(w http.ResponseWriter, r *http.Request, err error) {
	rs.errorResponse(w, r, http.StatusNotAcceptable, jsonResponse{"error": err.Error()})
}

// mapServiceErrorToHTTP преобразует ошибки сервисного слоя в HTTP-ответы
func (rs responder) mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *services.ValidationError
	switch {
	case errors.As(err, &vErr):
		rs.failedValidationResponse(w, r, vErr)

	// Ресурс не найден
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrMatchNotFound),
		errors.Is(err, services.ErrTournamentNotFound):
		rs.notFoundResponse(w, r, err)

	// Уникальность имени и телефона
	case errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrPhoneTaken),
		errors.Is(err, services.ErrValidationFailed):
		rs.badRequestResponse(w, r, err)

	// Правила жизненного цикла турнира
	case errors.Is(err, services.ErrTournamentNotStarted),
		errors.Is(err, services.ErrTournamentAlreadyStarted),
		errors.Is(err, services.ErrTournamentAlreadyEnded),
		errors.Is(err, services.ErrTournamentFull),
		errors.Is(err, services.ErrAlreadyRegistered),
		errors.Is(err, services.ErrPlayerNotRegistered),
		errors.Is(err, services.ErrMatchNotInTournament),
		errors.Is(err, services.ErrMatchAlreadyPlayed),
		errors.Is(err, services.ErrMatchNotPlayed),
		errors.Is(err, services.ErrMatchAlreadyCredited),
		errors.Is(err, services.ErrMatchManagedByTournament),
		errors.Is(err, services.ErrNotEnoughPlayers):
		rs.notAcceptableResponse(w, r, err)

	default:
		rs.serverErrorResponse(w, r, err)
	}
}

func getIDFromURL(r *http.Request, paramName string) (uuid.UUID, error) {
	idStr := chi.URLParam(r, paramName)
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("missing %s in URL path", paramName)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s format: %q", paramName, idStr)
	}
	return id, nil
}

func getIDFromQuery(r *http.Request, name string) (uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("query parameter %s is required", name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s format: %q", name, raw)
	}
	return id, nil
}

func intFromQuery(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("query parameter %s must be an integer", name)
	}
	return n, nil
}

func pageFromQuery(r *http.Request) (services.Page, error) {
	skip, err := intFromQuery(r, "skip", 0)
	if err != nil {
		return services.Page{}, err
	}
	limit, err := intFromQuery(r, "limit", 0)
	if err != nil {
		return services.Page{}, err
	}
	return services.Page{Skip: skip, Limit: limit}, nil
}
