package main

import (
	"fmt"
	"io"
	"log/slog"
	"mosa/internal/diag"
	"mosa/internal/foreign"
	"mosa/internal/modules"
	"mosa/internal/object"
	"mosa/internal/parser"
	"mosa/internal/repl"
	"mosa/internal/runner"
	"mosa/internal/util"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	// Version is stamped at build time.
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"
)

// errReported is returned once diagnostics were written, so cobra only sets
// the exit status.
var errReported = errors.New("program failed")

type flags struct {
	config    string
	root      string
	logLevel  string
	logFile   string
	logFormat string
	debugAST  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags

	rootCmd := &cobra.Command{
		Use:   "mosa [flags] file.mosa",
		Short: "MoSa language interpreter",
		Long: `Runs a MoSa program. Modules imported with use are read below the
root directory, which defaults to the directory of the entry file.`,
		Example: `  # Run a program
  mosa main.mosa

  # Run with debug logging in a readable format
  mosa --log-level debug --log-format pretty main.mosa

  # Write the parsed AST of every module next to its source
  mosa --debug-ast json main.mosa`,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], f)
		},
	}

	rootCmd.PersistentFlags().StringVar(&f.config, "config", "", "Path to a mosa.toml (default: searched upwards from the entry file)")
	rootCmd.PersistentFlags().StringVar(&f.root, "root", "", "Root directory for imports")
	rootCmd.PersistentFlags().StringVar(&f.logLevel, "log-level", "error", "Log level: debug, info, warn, error, none")
	rootCmd.PersistentFlags().StringVar(&f.logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
	rootCmd.PersistentFlags().StringVar(&f.logFormat, "log-format", "json", "Log format: json, text, pretty")
	rootCmd.PersistentFlags().StringVar(&f.debugAST, "debug-ast", "", "Write each module's AST next to its source: json or text")

	rootCmd.AddCommand(versionCmd(), replCmd(&f))
	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mosa version 'v%s' %s %s\n", Version, BuildDate, Commit)
		},
	}
}

func replCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(cmd, "", *f)
			if err != nil {
				return err
			}
			defer setupLogging(config)()

			host := foreign.NewHost(cmd.OutOrStdout())
			defer host.Close()
			natives := object.NewNativeRegistry()
			for _, b := range hostBindings(host, config.Natives) {
				natives.Add(b.Path, b.Fn)
			}

			root := config.RootPath
			if root == "" {
				root = "."
			}
			session, err := repl.NewSession(root, natives)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "mosa v%s, imports are read below %s\n", Version, root)
			repl.Start(cmd.InOrStdin(), cmd.OutOrStdout(), session)
			return nil
		},
	}
}

func run(cmd *cobra.Command, entry string, f flags) error {
	config, err := loadConfig(cmd, entry, f)
	if err != nil {
		return err
	}
	defer setupLogging(config)()

	host := foreign.NewHost(os.Stdout)
	defer host.Close()

	r := runner.New(entry)
	r.Root = config.RootPath
	r.DumpAST = astDumper(config.DebugAST)
	r = r.AddBindings(hostBindings(host, config.Natives)...)

	slog.Debug("starting",
		slog.String("version", Version),
		slog.String("entry", entry),
		slog.String("root", config.RootPath))

	if _, err := r.Run(); err != nil {
		diag.Report(os.Stderr, err, r.Storage())
		return errReported
	}
	return nil
}

// loadConfig reads mosa.toml and lays the flags that were set on top of it.
func loadConfig(cmd *cobra.Command, entry string, f flags) (util.Configuration, error) {
	var (
		path   string
		config util.Configuration
		err    error
	)
	if f.config != "" {
		path = f.config
		config, err = util.LoadConfig(path)
	} else {
		path, config, err = util.FindConfig(filepath.Dir(entry))
	}
	if err != nil {
		return config, err
	}
	if path != "" && config.RootPath != "" && !filepath.IsAbs(config.RootPath) {
		config.RootPath = filepath.Join(filepath.Dir(path), config.RootPath)
	}

	set := cmd.Flags().Changed
	if set("root") {
		config.RootPath = f.root
	}
	if set("log-level") {
		config.LogLevel = f.logLevel
	}
	if set("log-file") {
		config.LogFile = f.logFile
	}
	if set("log-format") {
		config.LogFormat = f.logFormat
	}
	if set("debug-ast") {
		config.DebugAST = f.debugAST
	}

	config.Version, config.BuildDate, config.Commit = Version, BuildDate, Commit
	return config, nil
}

// setupLogging installs the default logger and returns a func that closes
// the log file, if any.
func setupLogging(config util.Configuration) func() {
	logWriter := configureLogWriter(config.LogFile)
	slog.SetDefault(slog.New(newLogHandler(logWriter, config)))
	if logWriter == os.Stderr {
		return func() {}
	}
	return func() { _ = logWriter.Close() }
}

func configureLogWriter(logFile string) *os.File {
	var logWriter *os.File
	var err error
	if logFile != "" {
		// Create parent directories if they don't exist
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create log directory for '%s': %v; falling back to stderr\n", logFile, err)
			return os.Stderr
		}
		logWriter, err = os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file '%s': %v; falling back to stderr\n", logFile, err)
			logWriter = os.Stderr
		}
	} else {
		logWriter = os.Stderr
	}
	return logWriter
}

func newLogHandler(w *os.File, config util.Configuration) slog.Handler {
	level := logLevelFromString(config.LogLevel)
	switch config.LogFormat {
	case "pretty":
		return tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			NoColor:    !isatty.IsTerminal(w.Fd()),
		})
	case "text":
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	default:
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}
}

func logLevelFromString(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "none":
		return slog.LevelError + 4
	default:
		return slog.LevelError
	}
}

// astDumper writes <source>.ast.json or <source>.ast.txt for every module.
func astDumper(format string) func(m *modules.Module) {
	var render func(m *modules.Module) (string, error)
	var ext string
	switch format {
	case "json":
		ext = ".ast.json"
		render = func(m *modules.Module) (string, error) { return parser.RenderASTAsJSON(m.Program) }
	case "text":
		ext = ".ast.txt"
		render = func(m *modules.Module) (string, error) { return parser.RenderASTAsText(m.Program), nil }
	default:
		return nil
	}

	return func(m *modules.Module) {
		out, err := render(m)
		if err != nil {
			slog.Warn("failed to render AST", slog.String("module", m.Name), slog.Any("error", err))
			return
		}
		if err := writeFile(m.Path+ext, out); err != nil {
			slog.Warn("failed to write AST", slog.String("module", m.Name), slog.Any("error", err))
		}
	}
}

func writeFile(path, content string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.WriteString(f, content)
	return err
}

// hostBindings exposes the host natives named in allowed, or all of them
// when allowed is empty.
func hostBindings(host *foreign.Host, allowed []string) []runner.Binding {
	natives := host.Natives()

	keep := func(string) bool { return true }
	if len(allowed) > 0 {
		set := make(map[string]bool, len(allowed))
		for _, path := range allowed {
			if _, ok := natives[path]; !ok {
				slog.Warn("unknown native in configuration", slog.String("path", path))
			}
			set[path] = true
		}
		keep = func(path string) bool { return set[path] }
	}

	paths := make([]string, 0, len(natives))
	for path := range natives {
		if keep(path) {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)

	bindings := make([]runner.Binding, 0, len(paths))
	for _, path := range paths {
		bindings = append(bindings, runner.Binding{Path: path, Fn: natives[path]})
	}
	return bindings
}
