package evaluator

import (
	"database/sql"
	"fmt"
	"log/slog"
	"lox/internal/object"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Scalar SQL natives over database/sql. A script opens a connection by
// driver name and DSN, receives a numeric handle, and runs statements and
// single-value queries against it. Connections are process-wide and live
// until sqlClose.

var sqlDrivers = map[string]bool{
	"sqlite3":  true,
	"mysql":    true,
	"postgres": true,
}

type sqlConnTable struct {
	mu    sync.Mutex
	next  int64
	conns map[int64]*sql.DB
}

var sqlConns = &sqlConnTable{conns: make(map[int64]*sql.DB)}

func (t *sqlConnTable) add(db *sql.DB) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	t.conns[t.next] = db
	return t.next
}

func (t *sqlConnTable) get(id int64) (*sql.DB, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	db, ok := t.conns[id]
	return db, ok
}

func (t *sqlConnTable) remove(id int64) (*sql.DB, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	db, ok := t.conns[id]
	if ok {
		delete(t.conns, id)
	}
	return db, ok
}

func init() {
	builtins["sqlOpen"] = nativeSqlOpen()
	builtins["sqlExec"] = nativeSqlExec()
	builtins["sqlQueryValue"] = nativeSqlQueryValue()
	builtins["sqlClose"] = nativeSqlClose()
}

func nativeSqlOpen() *object.Native {
	return &object.Native{
		NativeName: "sqlOpen",
		NumParams:  2,
		Fn: func(args ...object.Object) object.Object {
			if len(args) != 2 {
				return newError(object.ArityMismatch, "wrong number of arguments to sqlOpen: got %d, want 2",
					len(args))
			}
			driver, ok := args[0].(*object.String)
			if !ok {
				return newError(object.NativeFailure, "sqlOpen driver must be STRING, got %s", args[0].Type())
			}
			dsn, ok := args[1].(*object.String)
			if !ok {
				return newError(object.NativeFailure, "sqlOpen dsn must be STRING, got %s", args[1].Type())
			}
			if !sqlDrivers[driver.Value] {
				return newError(object.NativeFailure, "unknown sql driver %q", driver.Value)
			}

			db, err := sql.Open(driver.Value, dsn.Value)
			if err != nil {
				return newError(object.NativeFailure, "sqlOpen: %s", err.Error())
			}

			handle := sqlConns.add(db)
			slog.Debug("opened sql connection",
				slog.String("driver", driver.Value),
				slog.Int64("handle", handle))
			return &object.Number{Value: float64(handle)}
		},
	}
}

func nativeSqlExec() *object.Native {
	return &object.Native{
		NativeName: "sqlExec",
		NumParams:  2,
		Fn: func(args ...object.Object) object.Object {
			db, errObj := sqlConnArg("sqlExec", args)
			if errObj != nil {
				return errObj
			}
			stmt := args[1].(*object.String)

			result, err := db.Exec(stmt.Value)
			if err != nil {
				return newError(object.NativeFailure, "sqlExec: %s", err.Error())
			}
			affected, err := result.RowsAffected()
			if err != nil {
				// Some drivers cannot report affected rows for every
				// statement kind.
				affected = 0
			}
			return &object.Number{Value: float64(affected)}
		},
	}
}

func nativeSqlQueryValue() *object.Native {
	return &object.Native{
		NativeName: "sqlQueryValue",
		NumParams:  2,
		Fn: func(args ...object.Object) object.Object {
			db, errObj := sqlConnArg("sqlQueryValue", args)
			if errObj != nil {
				return errObj
			}
			query := args[1].(*object.String)

			var value any
			err := db.QueryRow(query.Value).Scan(&value)
			if err == sql.ErrNoRows {
				return NIL
			}
			if err != nil {
				return newError(object.NativeFailure, "sqlQueryValue: %s", err.Error())
			}
			return sqlValueToObject(value)
		},
	}
}

func nativeSqlClose() *object.Native {
	return &object.Native{
		NativeName: "sqlClose",
		NumParams:  1,
		Fn: func(args ...object.Object) object.Object {
			if len(args) != 1 {
				return newError(object.ArityMismatch, "wrong number of arguments to sqlClose: got %d, want 1",
					len(args))
			}
			handle, ok := args[0].(*object.Number)
			if !ok {
				return newError(object.NativeFailure, "sqlClose handle must be NUMBER, got %s", args[0].Type())
			}

			db, ok := sqlConns.remove(int64(handle.Value))
			if !ok {
				return newError(object.NativeFailure, "sqlClose: no open connection for handle %s", handle.Inspect())
			}
			if err := db.Close(); err != nil {
				return newError(object.NativeFailure, "sqlClose: %s", err.Error())
			}
			return NIL
		},
	}
}

// sqlConnArg validates the common (handle, sql-string) argument shape and
// resolves the handle to its connection.
func sqlConnArg(name string, args []object.Object) (*sql.DB, *object.Error) {
	if len(args) != 2 {
		return nil, newError(object.ArityMismatch, "wrong number of arguments to %s: got %d, want 2",
			name, len(args))
	}
	handle, ok := args[0].(*object.Number)
	if !ok {
		return nil, newError(object.NativeFailure, "%s handle must be NUMBER, got %s", name, args[0].Type())
	}
	if _, ok := args[1].(*object.String); !ok {
		return nil, newError(object.NativeFailure, "%s statement must be STRING, got %s", name, args[1].Type())
	}

	db, ok := sqlConns.get(int64(handle.Value))
	if !ok {
		return nil, newError(object.NativeFailure, "%s: no open connection for handle %s", name, handle.Inspect())
	}
	return db, nil
}

// sqlValueToObject maps a scanned column value into the language's value
// model. Anything without a numeric, boolean or textual shape comes back as
// its string form.
func sqlValueToObject(v any) object.Object {
	switch x := v.(type) {
	case nil:
		return NIL
	case int64:
		return &object.Number{Value: float64(x)}
	case float64:
		return &object.Number{Value: x}
	case bool:
		return nativeBoolToBooleanObject(x)
	case []byte:
		return &object.String{Value: string(x)}
	case string:
		return &object.String{Value: x}
	case time.Time:
		return &object.String{Value: x.Format(time.RFC3339)}
	default:
		return &object.String{Value: fmt.Sprintf("%v", x)}
	}
}
