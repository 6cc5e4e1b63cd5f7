package services

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	usernameMinLen = 3
	usernameMaxLen = 38

	defaultPageLimit = 100
	maxPageLimit     = 1000
)

var phonePattern = regexp.MustCompile(`^\+?[1-9][0-9]{5,14}$`)

// Page is a skip/limit window over a listing.
type Page struct {
	Skip  int
	Limit int
}

func (p Page) normalize() (Page, error) {
	if p.Skip < 0 {
		return p, newValidationError("skip", p.Skip, "must not be negative")
	}
	if p.Limit < 0 {
		return p, newValidationError("limit", p.Limit, "must not be negative")
	}
	if p.Limit == 0 {
		p.Limit = defaultPageLimit
	}
	if p.Limit > maxPageLimit {
		p.Limit = maxPageLimit
	}
	return p, nil
}

// normalizeUsername trims surrounding whitespace and enforces the length bounds.
func normalizeUsername(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	n := utf8.RuneCountInString(name)
	if n < usernameMinLen || n > usernameMaxLen {
		return "", newValidationError("username", raw, "must be between 3 and 38 characters")
	}
	return name, nil
}

// normalizePhone strips spaces and dashes. Empty input means no phone number.
func normalizePhone(raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	phone := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(*raw))
	if phone == "" {
		return nil, nil
	}
	if !phonePattern.MatchString(phone) {
		return nil, newValidationError("phone_number", *raw, "must be an international phone number")
	}
	return &phone, nil
}

func validateWindow(begin, end time.Time) error {
	if begin.IsZero() {
		return newValidationError("begin", begin, "is required")
	}
	if end.IsZero() {
		return newValidationError("end", end, "is required")
	}
	if !begin.Before(end) {
		return newValidationError("end", end, "must be after begin")
	}
	return nil
}
