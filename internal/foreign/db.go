package foreign

import (
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"mosa/internal/object"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// RowLayout is the layout id of rows returned by db:query.
const RowLayout = "Row"

// db:open(driver, dsn) returns a handle number. Drivers: sqlite3, mysql, postgres.
func (h *Host) dbOpen(args []object.Object) object.Object {
	if !arity("db:open", args, 2) {
		return object.NULL
	}
	driver, err := unpackString(args[0], "driver")
	if err != nil {
		return invalid("db:open", "%v", err)
	}
	dsn, err := unpackString(args[1], "dsn")
	if err != nil {
		return invalid("db:open", "%v", err)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return invalid("db:open", "failed to open connection: %v", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return invalid("db:open", "failed to ping database: %v", err)
	}

	h.mu.Lock()
	h.nextHandle++
	id := h.nextHandle
	h.dbs[id] = db
	h.mu.Unlock()

	slog.Debug("opened database", slog.String("driver", driver), slog.Int64("handle", id))
	return number(float64(id))
}

// db:exec(handle, sql, params...) returns the number of affected rows.
func (h *Host) dbExec(args []object.Object) object.Object {
	if !arity("db:exec", args, 2) {
		return object.NULL
	}
	db, tx, query, err := h.statement(args)
	if err != nil {
		return invalid("db:exec", "%v", err)
	}

	params := sqlParams(args[2:])
	var res sql.Result
	if tx != nil {
		res, err = tx.Exec(query, params...)
	} else {
		res, err = db.Exec(query, params...)
	}
	if err != nil {
		return invalid("db:exec", "exec failed: %v", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return invalid("db:exec", "%v", err)
	}
	return number(float64(affected))
}

// db:query(handle, sql, params...) returns an iterable of Row layouts with
// one field per column.
func (h *Host) dbQuery(args []object.Object) object.Object {
	if !arity("db:query", args, 2) {
		return object.NULL
	}
	db, tx, query, err := h.statement(args)
	if err != nil {
		return invalid("db:query", "%v", err)
	}

	params := sqlParams(args[2:])
	var rows *sql.Rows
	if tx != nil {
		rows, err = tx.Query(query, params...)
	} else {
		rows, err = db.Query(query, params...)
	}
	if err != nil {
		return invalid("db:query", "query failed: %v", err)
	}
	defer rows.Close()

	result, err := renderRows(rows)
	if err != nil {
		return invalid("db:query", "%v", err)
	}
	return result
}

func (h *Host) dbBegin(args []object.Object) object.Object {
	if !arity("db:begin", args, 1) {
		return object.NULL
	}
	id, err := unpackHandle(args[0])
	if err != nil {
		return invalid("db:begin", "%v", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	db, ok := h.dbs[id]
	if !ok {
		return invalid("db:begin", "invalid connection handle %d", id)
	}
	if _, open := h.txs[id]; open {
		return invalid("db:begin", "handle %d already has an open transaction", id)
	}
	tx, err := db.Begin()
	if err != nil {
		return invalid("db:begin", "failed to begin transaction: %v", err)
	}
	h.txs[id] = tx
	return object.TRUE
}

func (h *Host) dbCommit(args []object.Object) object.Object {
	return h.finish("db:commit", args, (*sql.Tx).Commit)
}

func (h *Host) dbRollback(args []object.Object) object.Object {
	return h.finish("db:rollback", args, (*sql.Tx).Rollback)
}

func (h *Host) finish(native string, args []object.Object, end func(*sql.Tx) error) object.Object {
	if !arity(native, args, 1) {
		return object.NULL
	}
	id, err := unpackHandle(args[0])
	if err != nil {
		return invalid(native, "%v", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	tx, ok := h.txs[id]
	if !ok {
		return invalid(native, "handle %d has no open transaction", id)
	}
	delete(h.txs, id)
	if err := end(tx); err != nil {
		return invalid(native, "%v", err)
	}
	return object.TRUE
}

func (h *Host) dbClose(args []object.Object) object.Object {
	if !arity("db:close", args, 1) {
		return object.NULL
	}
	id, err := unpackHandle(args[0])
	if err != nil {
		return invalid("db:close", "%v", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if tx, ok := h.txs[id]; ok {
		rollback(id, tx)
		delete(h.txs, id)
	}
	db, ok := h.dbs[id]
	if !ok {
		return object.FALSE
	}
	delete(h.dbs, id)
	if err := db.Close(); err != nil {
		return invalid("db:close", "%v", err)
	}
	return object.TRUE
}

// statement resolves the handle and query text shared by exec and query.
// An open transaction on the handle takes precedence over the connection.
func (h *Host) statement(args []object.Object) (*sql.DB, *sql.Tx, string, error) {
	id, err := unpackHandle(args[0])
	if err != nil {
		return nil, nil, "", err
	}
	query, err := unpackString(args[1], "sql")
	if err != nil {
		return nil, nil, "", err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	db, ok := h.dbs[id]
	if !ok {
		return nil, nil, "", fmt.Errorf("invalid connection handle %d", id)
	}
	return db, h.txs[id], query, nil
}

func sqlParams(args []object.Object) []interface{} {
	params := make([]interface{}, len(args))
	for i, arg := range args {
		switch v := arg.(type) {
		case *object.Number:
			if v.Value == math.Trunc(v.Value) && math.Abs(v.Value) < 1<<53 {
				params[i] = int64(v.Value)
			} else {
				params[i] = v.Value
			}
		case *object.String:
			params[i] = v.Value
		case *object.Boolean:
			params[i] = v.Value
		case *object.Null:
			params[i] = nil
		default:
			params[i] = arg.Inspect()
		}
	}
	return params
}

func renderRows(rows *sql.Rows) (object.Object, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	types, _ := rows.ColumnTypes()

	var result []object.Object
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		fields := object.NewFieldTable()
		for i, col := range columns {
			var typeName string
			if i < len(types) {
				typeName = types[i].DatabaseTypeName()
			}
			fields.Set(col, mapValue(values[i], typeName))
		}
		result = append(result, &object.Layout{LayoutID: RowLayout, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return object.NewIterableOf(result...), nil
}

// mapValue converts a scanned column. Drivers hand numeric columns over as
// bytes, so those are parsed when the column type is numeric.
func mapValue(v interface{}, dbType string) object.Object {
	switch x := v.(type) {
	case nil:
		return object.NULL
	case int64:
		return number(float64(x))
	case float64:
		return number(x)
	case bool:
		return object.NativeBoolToBooleanObject(x)
	case []byte:
		s := string(x)
		if isNumericColumn(dbType) {
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return number(f)
			}
		}
		return &object.String{Value: s}
	case string:
		return &object.String{Value: x}
	case time.Time:
		return &object.String{Value: x.Format(time.RFC3339)}
	}
	return &object.String{Value: fmt.Sprint(v)}
}

func isNumericColumn(dbType string) bool {
	t := strings.ToUpper(dbType)
	for _, kind := range []string{"INT", "DEC", "NUMERIC", "FLOAT", "DOUBLE", "REAL"} {
		if strings.Contains(t, kind) {
			return true
		}
	}
	return false
}
