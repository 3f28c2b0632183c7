package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/termpong/internal/config"
	"github.com/vovakirdan/termpong/internal/platform/tui"
	"github.com/vovakirdan/termpong/internal/storage"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout time.Duration
	flagServeServer string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the termpong SSH kiosk",
	Long: `Start an SSH server that runs a match client for each connection.

The SSH user name picks the paddle, so two people can share one pong
server without installing anything:

  ssh p1@localhost -p 23234   # left paddle
  ssh p2@localhost -p 23234   # right paddle

Each session keeps its own WebSocket connection to the pong server.
History from all sessions goes to one database.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.termpong/host_key

Examples:
  termpong serve
  termpong serve --ssh :2222
  termpong serve --server ws://pong.internal:9898/ws`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (default :23234)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().DurationVar(&flagIdleTimeout, "idle-timeout", 0, "Idle timeout before disconnecting (default 30m)")
	serveCmd.Flags().StringVar(&flagServeServer, "server", "", "Pong server WebSocket URL")
}

func runServe(cmd *cobra.Command, _ []string) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if flagSSHAddr != "" {
		cfg.SSH.Address = flagSSHAddr
	}
	if flagHostKey != "" {
		cfg.SSH.HostKeyPath = flagHostKey
	}
	if flagIdleTimeout > 0 {
		cfg.SSH.IdleTimeout = flagIdleTimeout
	}
	if flagServeServer != "" {
		cfg.Server.URL = flagServeServer
	}

	// The kiosk has no local TUI, so logs default to stderr.
	logCfg := cfg.Log
	if !cmd.Flags().Changed("log-file") {
		logCfg.File = ""
	}
	logger, logFile, err := newLogger(logCfg, "termpong-ssh", os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	hostKey, err := expandOrEmpty(cfg.SSH.HostKeyPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	srvCfg := tui.DefaultSSHServerConfig()
	srvCfg.Address = cfg.SSH.Address
	srvCfg.HostKeyPath = hostKey
	srvCfg.IdleTimeout = cfg.SSH.IdleTimeout
	// Role is filled in per session.
	srvCfg.Connection = cfg.Connection.Manager(cfg.Server.URL, 0)
	srvCfg.Match = tui.Options{
		Table:   cfg.Table.Core(),
		Runtime: srvCfg.Match.Runtime,
		Audio:   cfg.Audio.Watcher(),
		KeyStep: cfg.Input.KeyStep,
	}
	srvCfg.Match.Runtime.FPS = cfg.Display.FPS
	srvCfg.Synth = cfg.Audio.Synth
	srvCfg.Logger = logger

	if !cfg.Storage.Disabled {
		store, err := storage.Open(cfg.Storage.DBPath)
		if err != nil {
			logger.Warn("could not open history database", "err", err)
		} else {
			defer store.Close()
			srvCfg.Store = store
		}
	}

	server, err := tui.NewSSHServer(srvCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Starting termpong SSH kiosk on %s\n", server.Addr())
	fmt.Printf("Pong server: %s\n", cfg.Server.URL)
	fmt.Println("Connect with: ssh p1@localhost -p 23234 (or p2@)")
	fmt.Println("Press Ctrl+C to stop")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.ListenAndServe(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func expandOrEmpty(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	return config.ExpandHome(path)
}
