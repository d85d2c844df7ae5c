package backups

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/habitlog/internal/backup"
	"github.com/julianstephens/habitlog/internal/cli"
	"github.com/julianstephens/habitlog/internal/models"
	"github.com/julianstephens/habitlog/internal/storage/postgres"
	"github.com/julianstephens/habitlog/internal/storage/sqlite"
)

func setupTestContext(t *testing.T) (*cli.Context, *sqlite.Store, *bytes.Buffer) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "habitlog.db"))
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	out := &bytes.Buffer{}
	return &cli.Context{Context: context.Background(), Store: store, Out: out}, store, out
}

func TestBackupCreateAndList(t *testing.T) {
	ctx, _, out := setupTestContext(t)

	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatalf("backup list failed: %v", err)
	}
	if !strings.Contains(out.String(), "No backups found.") {
		t.Errorf("unexpected output: %q", out.String())
	}

	out.Reset()
	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("backup create failed: %v", err)
	}
	if !strings.Contains(out.String(), "Backup created: habitlog-") {
		t.Errorf("unexpected output: %q", out.String())
	}

	out.Reset()
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatalf("backup list failed: %v", err)
	}
	if !strings.Contains(out.String(), "Available backups (1 total") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestBackupRestoreByFilename(t *testing.T) {
	ctx, store, out := setupTestContext(t)
	bg := context.Background()

	user, err := store.CreateUser(bg, models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x"})
	if err != nil {
		t.Fatal(err)
	}
	info, err := backup.NewManager(store.GetConfigPath()).Create(bg)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.CreateHabit(bg, models.Habit{UserID: user.ID, Name: "Reading", Category: "General"}); err != nil {
		t.Fatal(err)
	}

	cmd := &BackupRestoreCmd{BackupFile: filepath.Base(info.Path), Yes: true}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("backup restore failed: %v", err)
	}
	if !strings.Contains(out.String(), "Database restored successfully!") {
		t.Errorf("unexpected output: %q", out.String())
	}

	if err := store.Load(bg); err != nil {
		t.Fatalf("failed to reload store: %v", err)
	}
	list, err := store.ListHabits(bg, user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("expected habits from after the backup to be gone, got %d", len(list))
	}
}

func TestBackupRestoreMissingFile(t *testing.T) {
	ctx, _, _ := setupTestContext(t)

	if err := (&BackupRestoreCmd{BackupFile: "habitlog-19990101-000000.db", Yes: true}).Run(ctx); err == nil {
		t.Error("expected error for missing backup")
	}
}

func TestBackupRequiresSQLite(t *testing.T) {
	ctx := &cli.Context{Context: context.Background(), Store: postgres.New("postgres://user@localhost/habitlog"), Out: &bytes.Buffer{}}

	if err := (&BackupCreateCmd{}).Run(ctx); err != errNotSQLite {
		t.Errorf("expected errNotSQLite, got %v", err)
	}
}
