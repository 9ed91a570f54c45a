package main

import (
	"bytes"
	"log/slog"
	"mosa/internal/foreign"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFlagsWin(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mosa.toml"), []byte(`
root = "src"
log_level = "info"
log_format = "text"
natives = ["io:print"]
`), 0o644))

	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--log-level", "debug"}))

	config, err := loadConfig(cmd, filepath.Join(dir, "main.mosa"), flags{logLevel: "debug"})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "src"), config.RootPath)
	assert.Equal(t, "debug", config.LogLevel)
	assert.Equal(t, "text", config.LogFormat)
	assert.Equal(t, []string{"io:print"}, config.Natives)
	assert.Equal(t, Version, config.Version)
}

func TestHostBindings(t *testing.T) {
	host := foreign.NewHost(&bytes.Buffer{})
	defer host.Close()

	all := hostBindings(host, nil)
	assert.Len(t, all, len(host.Natives()))
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Path, all[i].Path)
	}

	some := hostBindings(host, []string{"str:len", "io:print", "no:such"})
	require.Len(t, some, 2)
	assert.Equal(t, "io:print", some[0].Path)
	assert.Equal(t, "str:len", some[1].Path)
}

func TestLogLevelFromString(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, logLevelFromString("debug"))
	assert.Equal(t, slog.LevelWarn, logLevelFromString("warn"))
	assert.Equal(t, slog.LevelError, logLevelFromString("bogus"))
	assert.Greater(t, logLevelFromString("none"), slog.LevelError)
}

func TestVersionCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "mosa version 'vdev' unknown unknown\n", out.String())
}
