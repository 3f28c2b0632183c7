package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/termpong.yaml
var defaultYAML []byte

// DefaultConfig returns the hard-coded configuration used when no YAML
// source can be read.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			URL: "ws://localhost:9898/ws",
		},
		Table: TableConfig{
			Width:        900,
			Height:       500,
			PaddleWidth:  14,
			PaddleHeight: 100,
			BallSize:     14,
			PaddleInset:  2,
		},
		Connection: ConnectionConfig{
			ReconnectDelay:   1000 * time.Millisecond,
			KeepAlive:        5000 * time.Millisecond,
			WriteTimeout:     5 * time.Second,
			ReadTimeout:      15 * time.Second,
			HandshakeTimeout: 10 * time.Second,
		},
		Input: InputConfig{
			KeyStep: 14,
		},
		Audio: AudioConfig{
			Synth:     "bell",
			Interval:  120 * time.Millisecond,
			Threshold: 2,
			MinFreq:   400,
			MaxFreq:   1200,
			Duration:  50 * time.Millisecond,
			Volume:    0.08,
		},
		Display: DisplayConfig{
			FPS: 60,
		},
		Storage: StorageConfig{
			DBPath: "~/.termpong/history.db",
		},
		Log: LogConfig{
			File:  "~/.termpong/termpong.log",
			Level: "info",
		},
		SSH: SSHConfig{
			Address:     ":23234",
			HostKeyPath: "~/.termpong/host_key",
			IdleTimeout: 30 * time.Minute,
		},
	}
}
