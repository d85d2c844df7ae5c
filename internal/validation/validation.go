package validation

import (
	"math"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/habitlog/internal/constants"
	apperrors "github.com/julianstephens/habitlog/internal/errors"
	"github.com/julianstephens/habitlog/internal/utils"
)

const (
	MaxUsernameLen    = 64
	MaxNameLen        = 120
	MinPasswordLen    = 6
	MaxPasswordLen    = 72 // bcrypt input limit
	MaxHoursPerDay    = 24.0
	MaxDescriptionLen = 2000
)

// Registration checks the registration form fields.
func Registration(username, email, password string) error {
	if username == "" {
		return apperrors.Validation("username", "is required")
	}
	if len(username) > MaxUsernameLen {
		return apperrors.Validation("username", "must be at most %d characters", MaxUsernameLen)
	}
	if strings.ContainsAny(username, " \t\r\n") {
		return apperrors.Validation("username", "must not contain whitespace")
	}
	if email == "" {
		return apperrors.Validation("email", "is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return apperrors.Validation("email", "%q is not a valid address", email)
	}
	return Password(password)
}

// Password enforces the password length bounds. The upper bound is in bytes.
func Password(password string) error {
	if len(password) < MinPasswordLen {
		return apperrors.Validation("password", "must be at least %d characters", MinPasswordLen)
	}
	if len(password) > MaxPasswordLen {
		return apperrors.Validation("password", "must be at most %d bytes", MaxPasswordLen)
	}
	return nil
}

// HabitName checks a habit name.
func HabitName(name string) error {
	if name == "" {
		return apperrors.Validation("name", "is required")
	}
	if len(name) > MaxNameLen {
		return apperrors.Validation("name", "must be at most %d characters", MaxNameLen)
	}
	return nil
}

// Description checks a habit description.
func Description(description string) error {
	if len(description) > MaxDescriptionLen {
		return apperrors.Validation("description", "must be at most %d characters", MaxDescriptionLen)
	}
	return nil
}

// Category returns the category to store, defaulting blank input.
func Category(category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		return constants.DefaultCategory
	}
	return category
}

// TargetHours parses a weekly target. Blank input is 0 and negative values
// are coerced to 0.
func TargetHours(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := parseReal(raw)
	if err != nil {
		return 0, apperrors.Validation("target_hours", "%q is not a number", raw)
	}
	return CoerceTarget(v), nil
}

// CoerceTarget clamps a target to a non-negative real.
func CoerceTarget(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// LogHours parses the hours recorded for a single day. Blank input is 0.
func LogHours(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := parseReal(raw)
	if err != nil {
		return 0, apperrors.Validation("hours", "%q is not a number", raw)
	}
	if err := Hours(v); err != nil {
		return 0, err
	}
	return v, nil
}

// Hours checks a parsed hours value.
func Hours(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return apperrors.Validation("hours", "must be a finite number")
	}
	if v < 0 {
		return apperrors.Validation("hours", "must not be negative")
	}
	if v > MaxHoursPerDay {
		return apperrors.Validation("hours", "must be at most %g", MaxHoursPerDay)
	}
	return nil
}

// LogDate parses a YYYY-MM-DD date and returns it normalized.
func LogDate(raw string, loc *time.Location) (string, error) {
	raw = strings.TrimSpace(raw)
	day, err := utils.ParseDay(raw, loc)
	if err != nil {
		return "", apperrors.Validation("date", "invalid date %q (expected YYYY-MM-DD)", raw)
	}
	return utils.FormatDay(day), nil
}

func parseReal(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}
