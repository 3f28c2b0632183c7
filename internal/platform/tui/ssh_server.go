package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/termpong/internal/audio"
	"github.com/vovakirdan/termpong/internal/conn"
	"github.com/vovakirdan/termpong/internal/core"
	"github.com/vovakirdan/termpong/internal/session"
	"github.com/vovakirdan/termpong/internal/storage"
)

// SSHServerConfig holds configuration for the SSH kiosk.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.termpong/host_key.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// Connection is the transport template. URL and Role are set per session.
	Connection conn.Config

	// Match is the model template. The screen size comes from the PTY.
	Match Options

	// Synth names the per-session synth; "bell" rings the SSH client's terminal.
	Synth string

	// Store receives history from every session. May be nil.
	Store *storage.Store

	Logger *log.Logger
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		IdleTimeout: 30 * time.Minute,
		Connection:  conn.DefaultConfig(),
		Match: Options{
			Table:   core.DefaultTable(),
			Runtime: core.DefaultConfig(),
			Audio:   audio.DefaultConfig(),
		},
		Synth: "bell",
	}
}

// SSHServer serves one match client per SSH session. The SSH user name
// selects the paddle: ssh p1@host or ssh p2@host.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	logger *log.Logger
}

type roleKey struct{}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig) (*SSHServer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "termpong-ssh",
		})
	}

	srv := &SSHServer{
		config: cfg,
		logger: logger,
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", err)
		}
		hostKeyPath = filepath.Join(home, ".termpong", "host_key")
	}

	if err := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); err != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", err)
	}

	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.roleMiddleware,
			srv.loggingMiddleware,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// roleMiddleware rejects users that do not name a paddle.
func (s *SSHServer) roleMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		role, err := session.ParseRole(sshSession.User())
		if err != nil {
			s.logger.Warn("rejected session", "user", sshSession.User(), "err", err)
			wish.Fatalln(sshSession, "unknown player; connect as p1 or p2 (ssh p1@host)")
			return
		}
		sshSession.Context().SetValue(roleKey{}, role)
		next(newSyncSession(sshSession))
	}
}

// syncSession serialises writes to the session. The renderer flushes a
// frame in a single Write, so a bell from the synth lands between frames.
type syncSession struct {
	ssh.Session
	mu *sync.Mutex
}

func newSyncSession(sess ssh.Session) syncSession {
	return syncSession{Session: sess, mu: &sync.Mutex{}}
}

func (s syncSession) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Session.Write(p)
}

// teaHandler wires a connection manager and a match model for each session.
// The manager lives as long as the SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		wish.Fatalln(sshSession, "termpong needs a terminal; try ssh -t")
		return nil, nil
	}

	role, ok := sshSession.Context().Value(roleKey{}).(session.Role)
	if !ok {
		return nil, nil
	}

	sess := session.New(role)
	logger := s.logger.With("session", sess.ID.String(), "user", sshSession.User())

	connCfg := s.config.Connection
	connCfg.Role = role
	connCfg.Logger = logger.WithPrefix("conn")
	mgr, err := conn.New(connCfg)
	if err != nil {
		logger.Error("cannot create connection manager", "err", err)
		wish.Fatalln(sshSession, "server misconfigured")
		return nil, nil
	}

	ctx := sshSession.Context()
	go func() {
		if err := mgr.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("connection manager exited", "err", err)
		}
	}()

	opts := s.config.Match
	opts.Runtime.ScreenW = pty.Window.Width
	opts.Runtime.ScreenH = pty.Window.Height
	opts.Logger = logger

	synth, err := audio.New(s.config.Synth, sshSession, opts.Audio.Interval, logger)
	if err != nil {
		logger.Warn("audio disabled", "err", err)
		synth = audio.NopSynth{}
	}
	opts.Synth = synth

	if s.config.Store != nil {
		opts.History = storage.NewRecorder(s.config.Store, nil, sess.ID.String(), role.WireName(), mgr.Endpoint())
	}

	return NewModel(mgr, sess, opts), []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until ctx is done.
func (s *SSHServer) ListenAndServe(ctx context.Context) error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	errc := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err, ok := <-errc:
		if ok {
			return fmt.Errorf("ssh server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}
