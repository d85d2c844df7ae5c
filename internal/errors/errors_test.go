package errors

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "simple error",
			err:      errors.New("something went wrong"),
			expected: "Error: something went wrong",
		},
		{
			name:     "sentinel error",
			err:      ErrDuplicateUsername,
			expected: "Error: username already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.err)
			if result != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatf(t *testing.T) {
	result := Formatf("failed to load %s", "database")
	if result != "Error: failed to load database" {
		t.Errorf("Formatf() = %q, want %q", result, "Error: failed to load database")
	}
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "with field",
			err:      Validation("date", "invalid date %q (expected YYYY-MM-DD)", "01/02/2024"),
			expected: `date: invalid date "01/02/2024" (expected YYYY-MM-DD)`,
		},
		{
			name:     "without field",
			err:      &ValidationError{Message: "form is empty"},
			expected: "form is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.expected {
				t.Errorf("Error() = %q, want %q", tt.err.Error(), tt.expected)
			}
			if !IsValidation(tt.err) {
				t.Error("IsValidation() = false, want true")
			}
		})
	}
}

func TestIsValidationWrapped(t *testing.T) {
	wrapped := fmt.Errorf("log habit: %w", Validation("hours", "must be a number"))
	if !IsValidation(wrapped) {
		t.Error("IsValidation() = false for wrapped validation error")
	}

	var ve *ValidationError
	if !As(wrapped, &ve) {
		t.Fatal("As() = false for wrapped validation error")
	}
	if ve.Field != "hours" {
		t.Errorf("Field = %q, want %q", ve.Field, "hours")
	}

	if IsValidation(ErrAccessDenied) {
		t.Error("IsValidation() = true for sentinel error")
	}
}

func TestSentinelsWrap(t *testing.T) {
	err := fmt.Errorf("get habit 7: %w", ErrAccessDenied)
	if !Is(err, ErrAccessDenied) {
		t.Error("Is() = false for wrapped ErrAccessDenied")
	}
	if Is(err, ErrNotFound) {
		t.Error("Is() = true for unrelated sentinel")
	}
}

// TestFatal tests the Fatal function using exec helper process
func TestFatal(t *testing.T) {
	if os.Getenv("GO_TEST_FATAL") == "1" {
		Fatal(errors.New("test error"))
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestFatal$")
	cmd.Env = append(os.Environ(), "GO_TEST_FATAL=1")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if e, ok := err.(*exec.ExitError); ok && !e.Success() {
		if e.ExitCode() != 1 {
			t.Errorf("Fatal() exit code = %d, want 1", e.ExitCode())
		}
		if !strings.Contains(stderr.String(), "Error: test error") {
			t.Errorf("Fatal() stderr = %q, want to contain %q", stderr.String(), "Error: test error")
		}
	} else {
		t.Errorf("Fatal() did not exit with error: %v", err)
	}
}

// TestFatal_NilError tests that Fatal does nothing when passed a nil error
func TestFatal_NilError(t *testing.T) {
	if os.Getenv("GO_TEST_FATAL_NIL") == "1" {
		Fatal(nil)
		os.Exit(0)
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestFatal_NilError")
	cmd.Env = append(os.Environ(), "GO_TEST_FATAL_NIL=1")

	if err := cmd.Run(); err != nil {
		t.Errorf("Fatal(nil) should not exit, but got error: %v", err)
	}
}
