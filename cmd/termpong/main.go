// termpong is a terminal client for a two-player pong server.
//
// Usage:
//
//	termpong play --role p1     - Join a match as the left paddle
//	termpong serve              - Start an SSH kiosk (ssh p1@host / ssh p2@host)
//	termpong history            - Browse observed points and connections
//
// Global flags:
//
//	--config <path>     - Config file (default search: ~/.termpong, ./configs)
//	--fps <rate>        - Frame rate (default: 60)
//	--db <path>         - History database (default: ~/.termpong/history.db)
//	--log-file <path>   - Log file (default: ~/.termpong/termpong.log)
//	--log-level <lvl>   - debug, info, warn or error
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/termpong/internal/config"
)

var (
	// Global flags
	flagConfig   string
	flagFPS      int
	flagDBPath   string
	flagLogFile  string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "termpong",
	Short: "termpong - Play networked pong in your terminal",
	Long: `termpong connects to a pong server over WebSocket and lets you play
one paddle with the mouse or the arrow keys.

Available commands:
  play     - Join a match as p1 (left) or p2 (right)
  serve    - Start an SSH kiosk; the SSH user picks the paddle
  history  - Show observed points and connection sessions

Examples:
  termpong play --role p1
  termpong play --role p2 --server ws://pong.example.com:9898/ws
  termpong serve --ssh :2222
  termpong history --plain`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Frame rate (frames per second)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to history database (default ~/.termpong/history.db)")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Path to log file (default ~/.termpong/termpong.log)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
}

// loadConfig resolves configuration: defaults, file, .env, environment,
// then flags that were set explicitly.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return config.Config{}, err
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	config.ApplyEnv(&cfg, os.Getenv)

	flags := cmd.Flags()
	if flags.Changed("fps") {
		cfg.Display.FPS = flagFPS
	}
	if flags.Changed("db") {
		cfg.Storage.DBPath = flagDBPath
	}
	if flags.Changed("log-file") {
		cfg.Log.File = flagLogFile
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = flagLogLevel
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// newLogger opens the log file named by cfg. An empty file name logs to
// fallback instead.
func newLogger(cfg config.LogConfig, prefix string, fallback io.Writer) (*log.Logger, io.Closer, error) {
	level := log.InfoLevel
	if cfg.Level != "" {
		parsed, err := log.ParseLevel(cfg.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	out := fallback
	var closer io.Closer = io.NopCloser(nil)
	if cfg.File != "" {
		path, err := config.ExpandHome(cfg.File)
		if err != nil {
			return nil, nil, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("cannot create log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot open log file: %w", err)
		}
		out, closer = f, f
	}

	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           level,
	})
	return logger, closer, nil
}

// terminalSize returns the size of stdout, or 80x24 when it is not a terminal.
func terminalSize() (width, height int) {
	width, height = 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width, height = w, h
	}
	return width, height
}
