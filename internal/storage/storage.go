package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/habitlog/internal/storage/postgres"
	"github.com/julianstephens/habitlog/internal/storage/sqlite"
)

var (
	_ Provider = (*sqlite.Store)(nil)
	_ Provider = (*postgres.Store)(nil)
)

// IsPostgres reports whether dsn names a PostgreSQL database rather than a SQLite file
func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}

// HasEmbeddedCredentials reports whether a PostgreSQL connection string carries a password
func HasEmbeddedCredentials(dsn string) bool {
	_, err := postgres.ValidateConnString(dsn)
	return errors.Is(err, postgres.ErrEmbeddedCredentials)
}

// ExpandPath resolves a leading ~ to the user's home directory
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// New returns the Provider for dsn without opening it. Callers follow up
// with Init or Load.
func New(dsn string, allowCredentials bool) (Provider, error) {
	if IsPostgres(dsn) {
		if _, err := postgres.ValidateConnString(dsn); err != nil {
			if !errors.Is(err, postgres.ErrEmbeddedCredentials) || !allowCredentials {
				return nil, err
			}
		}
		return postgres.New(dsn), nil
	}

	path, err := ExpandPath(dsn)
	if err != nil {
		return nil, err
	}
	return sqlite.NewStore(path), nil
}
