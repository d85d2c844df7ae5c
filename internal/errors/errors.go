package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/habitlog/internal/logger"
)

var (
	// ErrDuplicateUsername is returned when registering a username that is taken
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrDuplicateEmail is returned when registering an email that is taken
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInvalidCredentials covers both unknown users and wrong passwords
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrAccessDenied is returned when a habit is missing or owned by another user
	ErrAccessDenied = errors.New("access denied")
	// ErrUnauthenticated is returned when no valid session is present
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrNotFound is returned by storage when a record does not exist
	ErrNotFound = errors.New("not found")
)

// ValidationError describes a rejected form field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validation returns a new ValidationError for field
func Validation(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err wraps a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Is and As re-export the standard helpers so callers need a single import.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
