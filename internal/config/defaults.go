package config

import "time"

// Default configuration values.
const (
	DefaultAddress        = ":389"
	DefaultMaxConnections = 1024
	DefaultReadTimeout    = 5 * time.Minute
	DefaultWriteTimeout   = 30 * time.Second
	DefaultReadBufferSize = 4096
	DefaultMaxMessageSize = 1 << 20
	DefaultMaxDepth       = 64
)

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:        DefaultAddress,
			MaxConnections: DefaultMaxConnections,
			ReadTimeout:    DefaultReadTimeout,
			WriteTimeout:   DefaultWriteTimeout,
			ReadBufferSize: DefaultReadBufferSize,
		},
		Codec: CodecConfig{
			MaxMessageSize: DefaultMaxMessageSize,
			MaxDepth:       DefaultMaxDepth,
		},
		Logging: LogConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}
