// Package config provides YAML-based client configuration with .env and
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vovakirdan/termpong/internal/audio"
	"github.com/vovakirdan/termpong/internal/conn"
	"github.com/vovakirdan/termpong/internal/core"
	"github.com/vovakirdan/termpong/internal/session"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid")

// Config contains all client configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Table      TableConfig      `yaml:"table"`
	Connection ConnectionConfig `yaml:"connection"`
	Input      InputConfig      `yaml:"input"`
	Audio      AudioConfig      `yaml:"audio"`
	Display    DisplayConfig    `yaml:"display"`
	Storage    StorageConfig    `yaml:"storage"`
	Log        LogConfig        `yaml:"log"`
	SSH        SSHConfig        `yaml:"ssh"`
}

// ServerConfig selects the pong server and the paddle to play.
type ServerConfig struct {
	URL  string `yaml:"url"`
	Role string `yaml:"role"`
}

// TableConfig is the shared table geometry in table units.
type TableConfig struct {
	Width        float64 `yaml:"width"`
	Height       float64 `yaml:"height"`
	PaddleWidth  float64 `yaml:"paddle_width"`
	PaddleHeight float64 `yaml:"paddle_height"`
	BallSize     float64 `yaml:"ball_size"`
	PaddleInset  float64 `yaml:"paddle_inset"`
}

// Core converts the table section to core.Table.
func (t TableConfig) Core() core.Table {
	return core.Table{
		Width:        t.Width,
		Height:       t.Height,
		PaddleWidth:  t.PaddleWidth,
		PaddleHeight: t.PaddleHeight,
		BallSize:     t.BallSize,
		PaddleInset:  t.PaddleInset,
	}
}

// ConnectionConfig holds transport timings.
type ConnectionConfig struct {
	ReconnectDelay   time.Duration `yaml:"reconnect_delay"`
	KeepAlive        time.Duration `yaml:"keep_alive"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
}

// Manager builds the transport configuration for role.
func (c ConnectionConfig) Manager(url string, role session.Role) conn.Config {
	cfg := conn.DefaultConfig()
	cfg.URL = url
	cfg.Role = role
	cfg.ReconnectDelay = c.ReconnectDelay
	cfg.KeepAlive = c.KeepAlive
	cfg.WriteTimeout = c.WriteTimeout
	cfg.ReadTimeout = c.ReadTimeout
	if c.HandshakeTimeout > 0 {
		cfg.Dialer = &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: c.HandshakeTimeout,
		}
	}
	return cfg
}

// InputConfig tunes keyboard control.
type InputConfig struct {
	KeyStep float64 `yaml:"key_step"`
}

// AudioConfig selects the synth and tunes the motion heuristic.
type AudioConfig struct {
	Synth     string        `yaml:"synth"` // bell, log or none
	Interval  time.Duration `yaml:"interval"`
	Threshold float64       `yaml:"threshold"`
	MinFreq   float64       `yaml:"min_freq"`
	MaxFreq   float64       `yaml:"max_freq"`
	Duration  time.Duration `yaml:"duration"`
	Volume    float64       `yaml:"volume"`
}

// Watcher converts the section to audio.Config.
func (a AudioConfig) Watcher() audio.Config {
	return audio.Config{
		Interval:  a.Interval,
		Threshold: a.Threshold,
		MinFreq:   a.MinFreq,
		MaxFreq:   a.MaxFreq,
		Duration:  a.Duration,
		Volume:    a.Volume,
	}
}

// DisplayConfig controls drawing.
type DisplayConfig struct {
	FPS int `yaml:"fps"`
}

// StorageConfig locates the history database.
type StorageConfig struct {
	DBPath   string `yaml:"db_path"`
	Disabled bool   `yaml:"disabled"`
}

// LogConfig controls the log file.
type LogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

// SSHConfig configures the kiosk server.
type SSHConfig struct {
	Address     string        `yaml:"address"`
	HostKeyPath string        `yaml:"host_key_path"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// Validate rejects configurations the client cannot run with.
func (c Config) Validate() error {
	t := c.Table
	switch {
	case c.Server.URL == "":
		return fmt.Errorf("%w: server.url is empty", ErrInvalid)
	case t.Width <= 0 || t.Height <= 0:
		return fmt.Errorf("%w: table size %vx%v", ErrInvalid, t.Width, t.Height)
	case t.PaddleHeight <= 0 || t.PaddleHeight >= t.Height:
		return fmt.Errorf("%w: paddle_height %v must be in (0, %v)", ErrInvalid, t.PaddleHeight, t.Height)
	case t.PaddleWidth <= 0 || t.BallSize <= 0:
		return fmt.Errorf("%w: paddle_width and ball_size must be positive", ErrInvalid)
	case t.PaddleInset < 0 || t.PaddleInset+t.PaddleWidth > t.Width/2:
		return fmt.Errorf("%w: paddle_inset %v out of range", ErrInvalid, t.PaddleInset)
	case c.Connection.ReconnectDelay <= 0:
		return fmt.Errorf("%w: connection.reconnect_delay must be positive", ErrInvalid)
	case c.Connection.KeepAlive <= 0:
		return fmt.Errorf("%w: connection.keep_alive must be positive", ErrInvalid)
	case c.Connection.WriteTimeout <= 0:
		return fmt.Errorf("%w: connection.write_timeout must be positive", ErrInvalid)
	case c.Connection.ReadTimeout < 0 || c.Connection.HandshakeTimeout < 0:
		return fmt.Errorf("%w: negative connection timeout", ErrInvalid)
	case c.Input.KeyStep <= 0:
		return fmt.Errorf("%w: input.key_step must be positive", ErrInvalid)
	case c.Display.FPS < 1 || c.Display.FPS > 240:
		return fmt.Errorf("%w: display.fps %d must be in [1, 240]", ErrInvalid, c.Display.FPS)
	case c.Audio.Interval <= 0:
		return fmt.Errorf("%w: audio.interval must be positive", ErrInvalid)
	case c.Audio.MinFreq <= 0 || c.Audio.MaxFreq < c.Audio.MinFreq:
		return fmt.Errorf("%w: audio frequencies %v-%v", ErrInvalid, c.Audio.MinFreq, c.Audio.MaxFreq)
	}

	switch c.Audio.Synth {
	case "", "none", "bell", "log":
	default:
		return fmt.Errorf("%w: audio.synth %q", ErrInvalid, c.Audio.Synth)
	}
	if c.Server.Role != "" {
		if _, err := session.ParseRole(c.Server.Role); err != nil {
			return fmt.Errorf("%w: server.role: %w", ErrInvalid, err)
		}
	}
	return nil
}
