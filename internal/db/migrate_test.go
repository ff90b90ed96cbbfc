package db

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestPendingMigrations(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"0002_profiles.up.sql",
		"0001_init.up.sql",
		"0001_init.down.sql",
		"0003_stats.up.sql",
		"README.md",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "9999_dir.up.sql"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := PendingMigrations(dir, map[string]bool{"0002_profiles": true})
	if err != nil {
		t.Fatalf("PendingMigrations() error: %v", err)
	}
	want := []string{"0001_init", "0003_stats"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PendingMigrations() = %v, want %v", got, want)
	}
}

func TestPendingMigrations_MissingDir(t *testing.T) {
	if _, err := PendingMigrations(filepath.Join(t.TempDir(), "nope"), nil); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestRepoMigrationsArePaired(t *testing.T) {
	dir := filepath.Join("..", "..", "migrations")
	ups, err := PendingMigrations(dir, nil)
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	if len(ups) == 0 {
		t.Fatal("no migrations found")
	}
	for _, v := range ups {
		if _, err := os.Stat(filepath.Join(dir, v+".down.sql")); err != nil {
			t.Errorf("migration %s has no down file", v)
		}
	}
}
