package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/habitlog/internal/cli"
	"github.com/julianstephens/habitlog/internal/cli/backups"
	"github.com/julianstephens/habitlog/internal/cli/habits"
	"github.com/julianstephens/habitlog/internal/cli/system"
	"github.com/julianstephens/habitlog/internal/cli/users"
	"github.com/julianstephens/habitlog/internal/config"
	"github.com/julianstephens/habitlog/internal/constants"
	"github.com/julianstephens/habitlog/internal/keyring"
	"github.com/julianstephens/habitlog/internal/logger"
	"github.com/julianstephens/habitlog/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"SQLite path or PostgreSQL connection string. PostgreSQL passwords must NOT be embedded; use the OS keyring, environment variables or .pgpass instead." placeholder:"PATH|DSN"`
	Debug   bool   `help:"Enable debug logging to stderr."`

	Serve   system.ServeCmd   `cmd:"" help:"Run the web application." default:"withargs"`
	Init    system.InitCmd    `cmd:"" help:"Initialize habitlog storage."`
	Migrate system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	User    users.UserCmd     `cmd:"" help:"Manage users."`
	Habit   habits.HabitCmd   `cmd:"" help:"Manage habits and daily logs."`
	Stats   habits.StatsCmd   `cmd:"" help:"Show dashboard statistics for a user."`
	Backup  struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string with the password masked."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
	} `cmd:"" help:"Manage the database connection string in the OS keyring."`
}

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Track hours spent on personal habits against weekly targets"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)
	command := kctx.Command()

	if err := logger.Init(logger.Config{
		Debug:  cfg.Debug || CLI.Debug,
		LogDir: cfg.LogDirectory(),
		Stderr: command == "serve",
		JSON:   command == "serve",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCtx := &cli.Context{
		Context:  ctx,
		Config:   cfg,
		Location: loc,
		Out:      os.Stdout,
	}

	// keyring commands never touch the database
	if !strings.HasPrefix(command, "keyring") {
		store, err := openStore(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		appCtx.Store = store

		// init and serve create or migrate storage themselves
		if command != "init" && command != "serve" && command != "doctor" {
			if err := store.Load(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}
	}

	if err := kctx.Run(appCtx); err != nil {
		logger.Error("Command failed", "command", command, "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// openStore picks the database from --config, then HABITLOG_DATABASE, then
// the OS keyring, then the default SQLite path. Only a keyring-held
// connection string may carry a password.
func openStore(cfg config.Config) (storage.Provider, error) {
	dsn, fromKeyring := resolveDSN(cfg)
	if storage.IsPostgres(dsn) && !fromKeyring && storage.HasEmbeddedCredentials(dsn) {
		return nil, errors.New("PostgreSQL connection strings with embedded credentials are NOT allowed. " +
			"Store the connection string with 'habitlog keyring set', or use environment variables or a .pgpass file")
	}
	return storage.New(dsn, fromKeyring)
}

func resolveDSN(cfg config.Config) (string, bool) {
	if CLI.Config != "" {
		return CLI.Config, false
	}
	if _, ok := os.LookupEnv("HABITLOG_DATABASE"); ok {
		return cfg.Database, false
	}
	if connStr, err := keyring.GetConnectionString(); err == nil {
		return connStr, true
	} else if !errors.Is(err, keyring.ErrNotFound) {
		logger.Debug("Keyring unavailable", "error", err)
	}
	return cfg.Database, false
}
