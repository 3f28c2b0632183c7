package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/termpong/internal/audio"
	"github.com/vovakirdan/termpong/internal/conn"
	"github.com/vovakirdan/termpong/internal/core"
	"github.com/vovakirdan/termpong/internal/platform/tui"
	"github.com/vovakirdan/termpong/internal/session"
	"github.com/vovakirdan/termpong/internal/storage"
)

var (
	flagRole   string
	flagServer string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Join a match",
	Long: `Connect to the pong server and play one paddle.

The connection is kept open until you quit: when it drops, termpong
reconnects every second.

Controls:
  Mouse drag on the table  - Move your paddle
  Up/W, Down/S             - Nudge your paddle
  Enter or click Start     - Ready up
  ?                        - Toggle help
  Q/Ctrl+C                 - Quit

Examples:
  termpong play --role p1
  termpong play --role p2 --server ws://192.168.1.10:9898/ws
  TERMPONG_ROLE=p2 termpong play`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagRole, "role", "", "Paddle to play: p1 (left) or p2 (right)")
	playCmd.Flags().StringVar(&flagServer, "server", "", "Server WebSocket URL (default ws://localhost:9898/ws)")
}

func runPlay(cmd *cobra.Command, _ []string) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if flagRole != "" {
		cfg.Server.Role = flagRole
	}
	if flagServer != "" {
		cfg.Server.URL = flagServer
	}

	if cfg.Server.Role == "" {
		fmt.Fprintln(os.Stderr, "Error: no role given; use --role p1 or --role p2")
		os.Exit(1)
	}
	role, err := session.ParseRole(cfg.Server.Role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// The TUI owns stdout; logs go to the file.
	logger, logFile, err := newLogger(cfg.Log, "termpong", io.Discard)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	sess := session.New(role)
	logger = logger.With("session", sess.ID.String())

	connCfg := cfg.Connection.Manager(cfg.Server.URL, role)
	connCfg.Logger = logger.WithPrefix("conn")
	mgr, err := conn.New(connCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	width, height := terminalSize()
	opts := tui.Options{
		Table: cfg.Table.Core(),
		Runtime: core.RuntimeConfig{
			ScreenW: width,
			ScreenH: height,
			FPS:     cfg.Display.FPS,
		},
		Audio:   cfg.Audio.Watcher(),
		KeyStep: cfg.Input.KeyStep,
		Logger:  logger,
	}

	// Stderr is the same terminal; a BEL there does not interleave with frames.
	synth, err := audio.New(cfg.Audio.Synth, os.Stderr, cfg.Audio.Interval, logger)
	if err != nil {
		logger.Warn("audio disabled", "err", err)
		synth = audio.NopSynth{}
	}
	opts.Synth = synth

	// History is best-effort; play continues without it.
	if !cfg.Storage.Disabled {
		store, err := storage.Open(cfg.Storage.DBPath)
		if err != nil {
			logger.Warn("could not open history database", "err", err)
		} else {
			defer store.Close()
			opts.History = storage.NewRecorder(store, nil, sess.ID.String(), role.WireName(), mgr.Endpoint())
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting match client", "role", role.WireName(), "endpoint", mgr.Endpoint())
	if err := tui.Run(ctx, mgr, sess, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
