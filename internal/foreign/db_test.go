package foreign

import (
	"bytes"
	"log/slog"
	"mosa/internal/object"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSqliteRoundTrip(t *testing.T) {
	h := NewHost(nil)
	defer h.Close()
	natives := h.Natives()

	handle := natives["db:open"]([]object.Object{str("sqlite3"), str("file:roundtrip?mode=memory&cache=shared")})
	require.IsType(t, &object.Number{}, handle)

	created := natives["db:exec"]([]object.Object{handle, str("CREATE TABLE users (id INTEGER, name TEXT, score REAL)")})
	require.Equal(t, num(0), created)

	inserted := natives["db:exec"]([]object.Object{handle,
		str("INSERT INTO users (id, name, score) VALUES (?, ?, ?), (?, ?, ?)"),
		num(1), str("ada"), num(9.5),
		num(2), str("bob"), object.NULL,
	})
	assert.Equal(t, num(2), inserted)

	rows := natives["db:query"]([]object.Object{handle, str("SELECT id, name, score FROM users ORDER BY id")})
	it, ok := rows.(*object.Iterable)
	require.True(t, ok, "got %s", rows.Inspect())
	require.Len(t, it.Pairs, 2)

	first := it.Pairs[0].Value.(*object.Layout)
	assert.Equal(t, RowLayout, first.LayoutID)
	assert.Equal(t, []string{"id", "name", "score"}, first.Fields.Names())
	name, _ := first.Fields.Get("name")
	assert.Equal(t, str("ada"), name)

	second := it.Pairs[1].Value.(*object.Layout)
	score, _ := second.Fields.Get("score")
	assert.Same(t, object.NULL, score)

	assert.Same(t, object.TRUE, natives["db:close"]([]object.Object{handle}))
	assert.Same(t, object.FALSE, natives["db:close"]([]object.Object{handle}))
}

func TestSqliteTransactionRollback(t *testing.T) {
	h := NewHost(nil)
	defer h.Close()
	natives := h.Natives()

	handle := natives["db:open"]([]object.Object{str("sqlite3"), str("file:rollback?mode=memory&cache=shared")})
	natives["db:exec"]([]object.Object{handle, str("CREATE TABLE t (v INTEGER)")})

	assert.Same(t, object.TRUE, natives["db:begin"]([]object.Object{handle}))
	natives["db:exec"]([]object.Object{handle, str("INSERT INTO t (v) VALUES (1)")})
	assert.Same(t, object.TRUE, natives["db:rollback"]([]object.Object{handle}))
	assert.Same(t, object.NULL, natives["db:commit"]([]object.Object{handle}))

	rows := natives["db:query"]([]object.Object{handle, str("SELECT v FROM t")})
	assert.Empty(t, rows.(*object.Iterable).Pairs)
}

func TestDbInvalidInput(t *testing.T) {
	natives := NewHost(nil).Natives()

	assert.Same(t, object.NULL, natives["db:open"]([]object.Object{str("nope"), str("")}))
	assert.Same(t, object.NULL, natives["db:exec"]([]object.Object{num(42), str("SELECT 1")}))
	assert.Same(t, object.NULL, natives["db:query"]([]object.Object{str("x"), str("SELECT 1")}))
}

func TestCloseLogsFailedRollback(t *testing.T) {
	var logs bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	defer slog.SetDefault(previous)

	h := NewHost(nil)
	natives := h.Natives()
	handle := natives["db:open"]([]object.Object{str("sqlite3"), str("file:closelog?mode=memory&cache=shared")})
	require.Same(t, object.TRUE, natives["db:begin"]([]object.Object{handle}))

	// finish the transaction behind the host's back so the rollback fails
	id := int64(handle.(*object.Number).Value)
	require.NoError(t, h.txs[id].Commit())

	h.Close()
	assert.Contains(t, logs.String(), "failed to roll back transaction")
	assert.Empty(t, h.txs)
	assert.Empty(t, h.dbs)
}
