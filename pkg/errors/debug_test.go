package errors

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

func TestDumpCollectsChainAndPostgresDetails(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "purchase_lines_purchase_item_key",
		TableName:      "purchase_lines",
		Message:        "duplicate key value violates unique constraint",
	}
	err := Wrap(CodeDependency, fmt.Errorf("insert line: %w", pgErr), "db: insert purchase line")

	dump := Dump(err)
	if dump.Code != CodeDependency {
		t.Fatalf("expected dependency code, got %s", dump.Code)
	}
	if !dump.Retryable {
		t.Fatalf("dependency errors should be marked retryable")
	}
	if dump.DB == nil || dump.DB.Driver != "pgx" {
		t.Fatalf("expected pgx details, got %+v", dump.DB)
	}
	if dump.DB.Code != "23505" || dump.DB.Table != "purchase_lines" {
		t.Fatalf("unexpected pg details %+v", dump.DB)
	}
	if len(dump.Chain) != 3 {
		t.Fatalf("expected 3 chain entries, got %d: %v", len(dump.Chain), dump.Chain)
	}

	fields := dump.Fields()
	if fields["db_constraint"] != "purchase_lines_purchase_item_key" {
		t.Fatalf("expected constraint field, got %v", fields)
	}
	if _, ok := fields["db_column"]; ok {
		t.Fatalf("empty column should be omitted, got %v", fields)
	}
}

func TestDumpRecognisesPQAndSQLite(t *testing.T) {
	pqDump := Dump(fmt.Errorf("wrap: %w", &pq.Error{Code: "23503", Table: "purchases"}))
	if pqDump.DB == nil || pqDump.DB.Driver != "pq" || pqDump.DB.Code != "23503" {
		t.Fatalf("unexpected pq details %+v", pqDump.DB)
	}

	sqliteDump := Dump(fmt.Errorf("wrap: %w", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}))
	if sqliteDump.DB == nil || sqliteDump.DB.Driver != "sqlite3" {
		t.Fatalf("unexpected sqlite details %+v", sqliteDump.DB)
	}
	if sqliteDump.DB.Code != fmt.Sprintf("%d", int(sqlite3.ErrConstraintUnique)) {
		t.Fatalf("expected extended code, got %q", sqliteDump.DB.Code)
	}
}

func TestDumpWithoutDriverError(t *testing.T) {
	dump := Dump(New(CodeValidation, "bad"))
	if dump.DB != nil {
		t.Fatalf("expected no db details, got %+v", dump.DB)
	}
	if _, ok := dump.Fields()["db_driver"]; ok {
		t.Fatal("db fields should be absent")
	}
}

func TestDumpNil(t *testing.T) {
	if d := Dump(nil); d.TopMessage != "" || d.Chain != nil {
		t.Fatalf("expected empty dump, got %+v", d)
	}
}
