package system

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/habitlog/internal/cli"
	"github.com/julianstephens/habitlog/internal/config"
	"github.com/julianstephens/habitlog/internal/session"
	"github.com/julianstephens/habitlog/internal/storage/sqlite"
)

func setupTestContext(t *testing.T, initialize bool) (*cli.Context, *sqlite.Store, *bytes.Buffer) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "habitlog.db"))
	if initialize {
		if err := store.Init(context.Background()); err != nil {
			t.Fatalf("failed to initialize store: %v", err)
		}
	}
	t.Cleanup(func() { store.Close() })

	out := &bytes.Buffer{}
	ctx := &cli.Context{
		Context: context.Background(),
		Store:   store,
		Config:  config.Config{Timezone: "UTC"},
		Out:     out,
	}
	return ctx, store, out
}

func TestInitCmd_Success(t *testing.T) {
	ctx, store, out := setupTestContext(t, false)

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init command failed: %v", err)
	}
	if _, err := os.Stat(store.GetConfigPath()); err != nil {
		t.Errorf("database file was not created: %v", err)
	}
	if !strings.Contains(out.String(), "Initialized habitlog storage") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestInitCmd_Idempotent(t *testing.T) {
	ctx, _, _ := setupTestContext(t, false)

	for i := 0; i < 2; i++ {
		if err := (&InitCmd{}).Run(ctx); err != nil {
			t.Fatalf("init #%d failed: %v", i, err)
		}
	}
}

func TestInitCmd_Force(t *testing.T) {
	ctx, store, out := setupTestContext(t, true)

	if _, err := store.GetDB().Exec(`INSERT INTO users (username, email, password_hash, created_at) VALUES ('alice', 'a@example.com', 'x', '2024-01-01T00:00:00Z')`); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	if err := (&InitCmd{Force: true}).Run(ctx); err != nil {
		t.Fatalf("init --force failed: %v", err)
	}
	if !strings.Contains(out.String(), "Deleted existing database") {
		t.Errorf("expected deletion notice, got %q", out.String())
	}

	var n int
	if err := store.GetDB().QueryRow("SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("expected empty users table after --force, got %d rows", n)
	}
}

func TestMigrateCmd_UpToDate(t *testing.T) {
	ctx, _, out := setupTestContext(t, true)

	if err := (&MigrateCmd{}).Run(ctx); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if !strings.Contains(out.String(), "up to date") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestMigrateCmd_Uninitialized(t *testing.T) {
	ctx, _, _ := setupTestContext(t, false)

	if err := (&MigrateCmd{}).Run(ctx); err == nil {
		t.Error("expected error for missing database")
	}
}

func TestDoctorCmd_HealthyDB(t *testing.T) {
	ctx, _, out := setupTestContext(t, true)

	// missing backups only warn
	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Fatalf("doctor failed on healthy database: %v\n%s", err, out.String())
	}
	if !strings.Contains(out.String(), "Backups present: WARNING") {
		t.Errorf("expected backup warning, got %q", out.String())
	}
}

func TestDoctorCmd_NewerSchema(t *testing.T) {
	ctx, store, out := setupTestContext(t, true)

	if _, err := store.GetDB().Exec("UPDATE schema_version SET version = 999"); err != nil {
		t.Fatalf("failed to bump schema version: %v", err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("expected doctor to fail on a newer schema")
	}
	if !strings.Contains(out.String(), "Schema version: FAIL") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestDoctorCmd_Unreachable(t *testing.T) {
	ctx, _, out := setupTestContext(t, false)

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("expected doctor to fail without a database")
	}
	if !strings.Contains(out.String(), "SKIPPED") {
		t.Errorf("expected skipped checks, got %q", out.String())
	}
}

func TestDoctorCmd_BadTimezone(t *testing.T) {
	ctx, _, _ := setupTestContext(t, true)
	ctx.Config.Timezone = "Mars/Olympus_Mons"

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("expected doctor to fail on an invalid timezone")
	}
}

func TestOpenSessionStore(t *testing.T) {
	ctx, _, _ := setupTestContext(t, true)

	store, closeFn, err := openSessionStore(ctx)
	if err != nil {
		t.Fatalf("openSessionStore failed: %v", err)
	}
	defer closeFn()
	if _, ok := store.(*session.SQLStore); !ok {
		t.Errorf("expected SQL session store, got %T", store)
	}

	ctx.Config.RedisURL = "not a url"
	if _, _, err := openSessionStore(ctx); err == nil {
		t.Error("expected error for invalid redis url")
	}
}
