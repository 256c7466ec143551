package evaluator

import (
	"bytes"
	"lox/internal/lexer"
	"lox/internal/object"
	"lox/internal/parser"
	"testing"
)

func runSQL(t *testing.T, input string) (object.Object, string) {
	t.Helper()

	l := lexer.New(input)
	p := parser.New(l)
	program := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("parser errors: %v", p.Errors())
	}

	var out bytes.Buffer
	e := New(&WriterPrinter{Out: &out})
	result := e.Eval(program, NewRootEnvironment())
	return result, out.String()
}

func TestSQLiteRoundTrip(t *testing.T) {
	input := `
var db = sqlOpen("sqlite3", ":memory:");
sqlExec(db, "CREATE TABLE kv (k TEXT, v INTEGER)");
var inserted = sqlExec(db, "INSERT INTO kv VALUES ('answer', 42)");
print inserted;
print sqlQueryValue(db, "SELECT v FROM kv WHERE k = 'answer'");
print sqlQueryValue(db, "SELECT k FROM kv WHERE v = 42");
sqlClose(db);
`
	result, printed := runSQL(t, input)
	if errObj, ok := result.(*object.Error); ok {
		t.Fatalf("unexpected error: %s", errObj.Inspect())
	}
	if printed != "1\n42\nanswer\n" {
		t.Errorf("printed %q, want %q", printed, "1\n42\nanswer\n")
	}
}

func TestSQLQueryNoRowsYieldsNil(t *testing.T) {
	input := `
var db = sqlOpen("sqlite3", ":memory:");
sqlExec(db, "CREATE TABLE empty (x INTEGER)");
print sqlQueryValue(db, "SELECT x FROM empty");
sqlClose(db);
`
	result, printed := runSQL(t, input)
	if errObj, ok := result.(*object.Error); ok {
		t.Fatalf("unexpected error: %s", errObj.Inspect())
	}
	if printed != "nil\n" {
		t.Errorf("printed %q, want %q", printed, "nil\n")
	}
}

func TestSQLUnknownDriver(t *testing.T) {
	result, _ := runSQL(t, `sqlOpen("oracle", "dsn");`)
	errObj, ok := result.(*object.Error)
	if !ok {
		t.Fatalf("expected error, got %T", result)
	}
	if errObj.Kind != object.NativeFailure {
		t.Errorf("error kind = %q, want %q", errObj.Kind, object.NativeFailure)
	}
}

func TestSQLBadHandle(t *testing.T) {
	tests := []string{
		`sqlExec(999, "SELECT 1");`,
		`sqlQueryValue(999, "SELECT 1");`,
		`sqlClose(999);`,
	}

	for _, input := range tests {
		result, _ := runSQL(t, input)
		errObj, ok := result.(*object.Error)
		if !ok {
			t.Fatalf("input %q: expected error, got %T", input, result)
		}
		if errObj.Kind != object.NativeFailure {
			t.Errorf("input %q: error kind = %q, want %q", input, errObj.Kind, object.NativeFailure)
		}
	}
}

func TestSQLArgumentValidation(t *testing.T) {
	tests := []struct {
		input string
		kind  object.ErrorKind
	}{
		{`sqlOpen("sqlite3");`, object.ArityMismatch},
		{`sqlOpen(1, ":memory:");`, object.NativeFailure},
		{`sqlExec("nope", "SELECT 1");`, object.NativeFailure},
		{`sqlClose("nope");`, object.NativeFailure},
	}

	for _, tt := range tests {
		result, _ := runSQL(t, tt.input)
		errObj, ok := result.(*object.Error)
		if !ok {
			t.Fatalf("input %q: expected error, got %T", tt.input, result)
		}
		if errObj.Kind != tt.kind {
			t.Errorf("input %q: error kind = %q, want %q", tt.input, errObj.Kind, tt.kind)
		}
	}
}

func TestSQLStatementErrorSurfacesAsFailure(t *testing.T) {
	input := `
var db = sqlOpen("sqlite3", ":memory:");
sqlExec(db, "NOT VALID SQL AT ALL");
`
	result, _ := runSQL(t, input)
	errObj, ok := result.(*object.Error)
	if !ok {
		t.Fatalf("expected error, got %T", result)
	}
	if errObj.Kind != object.NativeFailure {
		t.Errorf("error kind = %q, want %q", errObj.Kind, object.NativeFailure)
	}
}
