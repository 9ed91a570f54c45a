package repl

import (
	"bytes"
	"mosa/internal/object"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func TestSessionKeepsDeclarations(t *testing.T) {
	session, err := NewSession(t.TempDir(), nil)
	require.NoError(t, err)

	_, err = session.Eval("let x = 20")
	require.NoError(t, err)
	_, err = session.Eval("fn inc(n: num) -> num { n + 1 }")
	require.NoError(t, err)

	result, err := session.Eval("inc(x) + 1")
	require.NoError(t, err)
	assert.Equal(t, "22", result.Inspect())
}

func TestSessionLoadsImports(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "greet.mosa"),
		[]byte(`exp fn hello() -> str { "hello" }`), 0o644))

	session, err := NewSession(root, nil)
	require.NoError(t, err)

	_, err = session.Eval("use greet ~> hello")
	require.NoError(t, err)
	result, err := session.Eval("hello()")
	require.NoError(t, err)
	assert.Equal(t, "hello", result.Inspect())
}

func TestStart(t *testing.T) {
	natives := object.NewNativeRegistry()
	session, err := NewSession(t.TempDir(), natives)
	require.NoError(t, err)

	in := strings.NewReader(strings.Join([]string{
		"let a = 2",
		"",
		"a * 21",
		"let = 1",
		"a = \"two\"",
	}, "\n"))
	var out bytes.Buffer
	Start(in, &out, session)

	text := out.String()
	assert.True(t, strings.HasPrefix(text, PROMPT+PROMPT+PROMPT+"42\n"), text)
	assert.Contains(t, text, "parser errors:")
	assert.Contains(t, text, "[ERROR] type mismatch:")
}
