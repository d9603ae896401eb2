package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/multierr"
)

func TestCreateSQLMigrationUsesTimestampAndSlug(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	path, err := createSQLMigration(dir, "  Add Item--Tags ", now)
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if filepath.Base(path) != "20260301093000_add_item_tags.sql" {
		t.Fatalf("unexpected file name %s", filepath.Base(path))
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	if !strings.Contains(string(content), "-- add_item_tags: keep statements portable") {
		t.Fatalf("unexpected template:\n%s", content)
	}

	if _, err := createSQLMigration(dir, "add item tags", now); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected existing migration error, got %v", err)
	}
}

func TestValidateDirReportsEveryProblem(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	valid := "-- +goose Up\nSELECT 1;\n-- +goose Down\nSELECT 1;\n"
	write("20260301090000_ok.sql", valid)
	write("20260301090000_dup.sql", valid)
	write("bad-name.sql", valid)
	write("20260301091000_no_down.sql", "-- +goose Up\nSELECT 1;\n")
	write("20260301092000_reversed.sql", "-- +goose Down\n-- +goose Up\n")
	write("README.md", "ignored")

	err := ValidateDir(dir)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	errs := multierr.Errors(err)
	if len(errs) != 4 {
		t.Fatalf("expected 4 problems, got %d: %v", len(errs), err)
	}
	for _, want := range []string{"duplicate migration version", "invalid migration filename", "missing \"-- +goose Down\"", "Down before Up"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}
}

func TestValidateDirRequiresDir(t *testing.T) {
	if err := ValidateDir(""); err == nil {
		t.Fatal("expected error for empty dir")
	}
	if err := ValidateDir(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing dir")
	}
}
