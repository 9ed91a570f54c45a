package foreign

import (
	"database/sql"
	"io"
	"log/slog"
	"mosa/internal/object"
	"os"
	"sort"
	"sync"
)

// Host owns the resources natives hand out to programs: the output stream
// and open database handles.
type Host struct {
	Out io.Writer

	mu         sync.Mutex
	nextHandle int64
	dbs        map[int64]*sql.DB
	txs        map[int64]*sql.Tx
}

func NewHost(out io.Writer) *Host {
	if out == nil {
		out = os.Stdout
	}
	return &Host{
		Out: out,
		dbs: make(map[int64]*sql.DB),
		txs: make(map[int64]*sql.Tx),
	}
}

// Natives maps every host path to its implementation.
func (h *Host) Natives() map[string]object.NativeFunction {
	return map[string]object.NativeFunction{
		"io:print":   h.ioPrint,
		"io:printLn": h.ioPrintLn,

		"str:len":   strLen,
		"str:upper": strUpper,
		"str:lower": strLower,
		"str:title": strTitle,
		"str:trim":  strTrim,
		"str:from":  strFrom,

		"math:floor": mathFloor,
		"math:abs":   mathAbs,
		"math:sqrt":  mathSqrt,
		"math:pow":   mathPow,
		"math:mod":   mathMod,

		"iter:of":  iterOf,
		"iter:len": iterLen,
		"iter:at":  iterAt,

		"db:open":     h.dbOpen,
		"db:exec":     h.dbExec,
		"db:query":    h.dbQuery,
		"db:begin":    h.dbBegin,
		"db:commit":   h.dbCommit,
		"db:rollback": h.dbRollback,
		"db:close":    h.dbClose,
	}
}

// Register adds every native to reg.
func (h *Host) Register(reg *object.NativeRegistry) {
	natives := h.Natives()
	paths := make([]string, 0, len(natives))
	for path, fn := range natives {
		reg.Add(path, fn)
		paths = append(paths, path)
	}
	sort.Strings(paths)
	slog.Debug("registered natives", slog.Any("paths", paths))
}

// Close releases every handle a program left open.
func (h *Host) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, tx := range h.txs {
		rollback(id, tx)
		delete(h.txs, id)
	}
	for id, db := range h.dbs {
		if err := db.Close(); err != nil {
			slog.Warn("failed to close database", slog.Int64("handle", id), slog.Any("error", err))
		}
		delete(h.dbs, id)
	}
}

func rollback(id int64, tx *sql.Tx) {
	if err := tx.Rollback(); err != nil {
		slog.Warn("failed to roll back transaction", slog.Int64("handle", id), slog.Any("error", err))
	}
}
