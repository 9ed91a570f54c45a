package util

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// ConfigFileName is looked up next to the entry file and in its parents.
const ConfigFileName = "mosa.toml"

// Configuration is the merged result of mosa.toml and the command line.
// Command line flags win over file values.
type Configuration struct {
	Version   string `toml:"-"`
	BuildDate string `toml:"-"`
	Commit    string `toml:"-"`

	RootPath  string `toml:"root"`
	LogLevel  string `toml:"log_level"`
	LogFile   string `toml:"log_file"`
	LogFormat string `toml:"log_format"`
	DebugAST  string `toml:"debug_ast"`

	// Natives lists host paths to expose; empty means all.
	Natives []string `toml:"natives"`
}

func DefaultConfiguration() Configuration {
	return Configuration{
		RootPath:  "",
		LogLevel:  "error",
		LogFormat: "json",
	}
}

// LoadConfig decodes path over the defaults.
func LoadConfig(path string) (Configuration, error) {
	config := DefaultConfiguration()
	meta, err := toml.DecodeFile(path, &config)
	if err != nil {
		return config, errors.Wrapf(err, "parsing %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return config, errors.Errorf("%s: unknown keys %v", path, undecoded)
	}
	return config, nil
}

// FindConfig searches dir and its parents for mosa.toml. It returns an empty
// path and the defaults when there is none.
func FindConfig(dir string) (string, Configuration, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", DefaultConfiguration(), errors.WithStack(err)
	}
	for {
		path := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(path); err == nil {
			config, err := LoadConfig(path)
			return path, config, err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", DefaultConfiguration(), nil
		}
		dir = parent
	}
}
