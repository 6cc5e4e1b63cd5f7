package services

import (
	"errors"
	"fmt"
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	ErrValidationFailed = errors.New("validation failed")

	// Ресурс не найден
	ErrUserNotFound       = errors.New("user not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrTournamentNotFound = errors.New("tournament not found")

	// Конфликты уникальности
	ErrUsernameTaken = errors.New("user already registered")
	ErrPhoneTaken    = errors.New("phone number already registered")

	// Нарушения жизненного цикла турнира
	ErrTournamentNotStarted     = errors.New("tournament not yet started")
	ErrTournamentAlreadyStarted = errors.New("tournament already started")
	ErrTournamentAlreadyEnded   = errors.New("tournament already ended")
	ErrTournamentFull           = errors.New("too many players")
	ErrAlreadyRegistered        = errors.New("player already registered")
	ErrPlayerNotRegistered      = errors.New("player not registered")
	ErrMatchNotInTournament     = errors.New("match does not belong to this tournament")
	ErrMatchAlreadyPlayed       = errors.New("match already played")
	ErrMatchNotPlayed           = errors.New("match has not been played yet")
	ErrMatchAlreadyCredited     = errors.New("match result already credited")
	ErrMatchManagedByTournament = errors.New("tournament match can only change through the tournament endpoints")
	ErrNotEnoughPlayers         = errors.New("not enough registered players")
)

// ValidationError names the offending input field. It matches ErrValidationFailed with errors.Is.
type ValidationError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

func newValidationError(field string, value interface{}, reason string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}
