package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/julianstephens/habitlog/internal/backup"
	"github.com/julianstephens/habitlog/internal/config"
	apperrors "github.com/julianstephens/habitlog/internal/errors"
	"github.com/julianstephens/habitlog/internal/habits"
	"github.com/julianstephens/habitlog/internal/logger"
	"github.com/julianstephens/habitlog/internal/models"
	"github.com/julianstephens/habitlog/internal/stats"
	"github.com/julianstephens/habitlog/internal/storage"
	"github.com/julianstephens/habitlog/internal/storage/sqlite"
)

// Context is handed to every command's Run method. The embedded
// context.Context is cancelled on SIGINT/SIGTERM.
type Context struct {
	context.Context
	Store    storage.Provider
	Config   config.Config
	Location *time.Location
	Out      io.Writer
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.writer(), format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.writer(), args...)
}

func (c *Context) writer() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) location() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

func (c *Context) HabitService() *habits.Service {
	return habits.NewService(c.Store, habits.WithLocation(c.location()))
}

func (c *Context) StatsService() *stats.Service {
	return stats.NewService(c.Store, stats.WithLocation(c.location()))
}

// LookupUser resolves a username given on the command line
func (c *Context) LookupUser(username string) (models.User, error) {
	user, err := c.Store.GetUserByUsername(c, username)
	if errors.Is(err, apperrors.ErrNotFound) {
		return models.User{}, fmt.Errorf("no user named %q", username)
	}
	return user, err
}

// SQLitePath returns the database file when the store is SQLite
func (c *Context) SQLitePath() (string, bool) {
	if s, ok := c.Store.(*sqlite.Store); ok {
		return s.GetConfigPath(), true
	}
	return "", false
}

// PerformAutomaticBackup snapshots a SQLite database after a write and only
// logs failures
func (c *Context) PerformAutomaticBackup() {
	path, ok := c.SQLitePath()
	if !ok {
		return
	}
	if _, err := backup.NewManager(path).Create(c); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}
