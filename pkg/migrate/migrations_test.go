package migrate_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/angelmondragon/itempurchase/pkg/migrate"
	_ "github.com/mattn/go-sqlite3"
)

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations: %v", err)
	}
}

func TestItemsMigrationContainsSchema(t *testing.T) {
	content := readMigration(t, "*_create_items.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS items",
		"price numeric(12,2) NOT NULL",
		"CHECK (price >= 0)",
		"CREATE INDEX IF NOT EXISTS idx_items_type_family",
		"DROP TABLE IF EXISTS items",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestPurchasesMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_purchases.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS purchases",
		"CREATE TABLE IF NOT EXISTS purchase_lines",
		"FOREIGN KEY (purchase_id) REFERENCES purchases(id) ON DELETE CASCADE",
		"CHECK (quantity > 0)",
		"CHECK (status IN ('placed', 'fulfilled', 'canceled'))",
		"DROP TABLE IF EXISTS purchase_lines",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestPurchaseIdempotencyMigration(t *testing.T) {
	content := readMigration(t, "*_add_purchase_idempotency_key.sql")
	for _, sub := range []string{
		"ADD COLUMN idempotency_key text NULL",
		"CREATE UNIQUE INDEX IF NOT EXISTS uq_purchases_account_idempotency_key ON purchases (account_id, idempotency_key)",
		"DROP INDEX IF EXISTS uq_purchases_account_idempotency_key",
	} {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationsApplyOnSQLite(t *testing.T) {
	sqlDB, err := sql.Open("sqlite3", "file:migrate_apply?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	ctx := context.Background()
	if err := migrate.Run(ctx, sqlDB, "sqlite3", "migrations", "up"); err != nil {
		t.Fatalf("goose up: %v", err)
	}

	for _, table := range []string{"accounts", "users", "items", "purchases", "purchase_lines"} {
		var name string
		row := sqlDB.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table)
		if err := row.Scan(&name); err != nil {
			t.Fatalf("expected table %s after migrate up: %v", table, err)
		}
	}

	if err := migrate.Run(ctx, sqlDB, "sqlite3", "migrations", "reset"); err != nil {
		t.Fatalf("goose reset: %v", err)
	}
}

func TestRunRequiresArguments(t *testing.T) {
	if err := migrate.Run(context.Background(), nil, "", "migrations", "up"); err == nil {
		t.Fatalf("expected error without db")
	}
	if err := migrate.MigrateToVersion(context.Background(), nil, "", "migrations", "not-a-version"); err == nil {
		t.Fatalf("expected error for invalid version")
	}
}

func TestCreateSQLMigrationSanitizesName(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Item Tags!")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_item_tags.sql") {
		t.Fatalf("unexpected migration path %s", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("created migration should validate: %v", err)
	}
	if _, err := migrate.CreateSQLMigration(dir, "!!!"); err == nil {
		t.Fatalf("expected error for name that sanitizes to empty")
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration file found for %s", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
