package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitlog/internal/backup"
	"github.com/julianstephens/habitlog/internal/cli"
	"github.com/julianstephens/habitlog/internal/session"
	"github.com/julianstephens/habitlog/internal/utils"
)

type DoctorCmd struct{}

type check struct {
	name    string
	run     func(*cli.Context) error
	needsDB bool
	// warnOnly failures are reported but do not fail the command
	warnOnly bool
}

var doctorChecks = []check{
	{name: "Schema version", run: checkSchemaVersion, needsDB: true},
	{name: "Migrations complete", run: checkMigrationsComplete, needsDB: true},
	{name: "Backups present", run: checkBackupsPresent, warnOnly: true},
	{name: "Clock/timezone", run: checkClockTimezone},
	{name: "Session store", run: checkSessionStore},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println(cli.TitleStyle.Render("Running diagnostics..."))
	ctx.Println()

	hasError := false
	dbReachable := true
	if err := checkDBReachable(ctx); err != nil {
		report(ctx, "Database reachable", err, false)
		hasError = true
		dbReachable = false
	} else {
		report(ctx, "Database reachable", nil, false)
	}

	for _, c := range doctorChecks {
		if c.needsDB && !dbReachable {
			ctx.Println(cli.MutedStyle.Render(fmt.Sprintf("⊘ %s: SKIPPED (database not reachable)", c.name)))
			continue
		}
		err := c.run(ctx)
		report(ctx, c.name, err, c.warnOnly)
		if err != nil && !c.warnOnly {
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println(cli.FailStyle.Render("Diagnostics completed with errors."))
		return errors.New("one or more health checks failed")
	}
	ctx.Println(cli.OKStyle.Render("All diagnostics passed!"))
	return nil
}

func report(ctx *cli.Context, name string, err error, warnOnly bool) {
	switch {
	case err == nil:
		ctx.Println(cli.OKStyle.Render(fmt.Sprintf("✓ %s: OK", name)))
	case warnOnly:
		ctx.Println(cli.WarnStyle.Render(fmt.Sprintf("⚠ %s: WARNING", name)))
		ctx.Printf("   %v\n", err)
	default:
		ctx.Println(cli.FailStyle.Render(fmt.Sprintf("❌ %s: FAIL", name)))
		ctx.Printf("   Error: %v\n", err)
	}
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(ctx); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	if err := ctx.Store.Ping(ctx); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	st, err := ctx.Store.SchemaStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if st.Current > st.Latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", st.Current, st.Latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	st, err := ctx.Store.SchemaStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if st.Pending > 0 {
		return fmt.Errorf("%d pending migration(s), run 'habitlog migrate'", st.Pending)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	path, ok := ctx.SQLitePath()
	if !ok {
		return nil
	}
	backups, err := backup.NewManager(path).List()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		return errors.New("no backups found, run 'habitlog backup create'")
	}
	if age := time.Since(backups[0].Timestamp); age > 7*24*time.Hour {
		return fmt.Errorf("most recent backup is %d days old", int(age.Hours()/24))
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	if !utils.ValidateTimezone(ctx.Config.Timezone) {
		return fmt.Errorf("invalid timezone %q", ctx.Config.Timezone)
	}
	if now := time.Now(); now.Year() < 2020 {
		return fmt.Errorf("system clock looks wrong: %s", now.Format(time.RFC3339))
	}
	return nil
}

func checkSessionStore(ctx *cli.Context) error {
	if ctx.Config.RedisURL == "" {
		return nil
	}
	rs, err := session.NewRedisStore(ctx, ctx.Config.RedisURL)
	if err != nil {
		return err
	}
	return rs.Close()
}
