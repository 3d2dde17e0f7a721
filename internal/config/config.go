package config

import "time"

// Config holds the complete ldapwire configuration.
type Config struct {
	Server  ServerConfig `yaml:"server"`
	Codec   CodecConfig  `yaml:"codec"`
	Logging LogConfig    `yaml:"logging"`
}

// ServerConfig holds the connection driver settings.
type ServerConfig struct {
	// Address is the listen address in host:port form.
	Address string `yaml:"address"`
	// MaxConnections caps concurrent connections; 0 means unlimited.
	MaxConnections int           `yaml:"maxConnections"`
	ReadTimeout    time.Duration `yaml:"readTimeout"`
	WriteTimeout   time.Duration `yaml:"writeTimeout"`
	// ReadBufferSize is the size of each chunk read from a connection.
	ReadBufferSize int `yaml:"readBufferSize"`
	// Shutdown is announced to clients before their connections close.
	Shutdown ShutdownConfig `yaml:"shutdown"`
}

// ShutdownConfig holds the graceful disconnect notice sent on shutdown.
type ShutdownConfig struct {
	// TimeOffline is the expected downtime in minutes; 0 means unknown.
	TimeOffline int `yaml:"timeOffline"`
	// Delay is the number of seconds before connections are closed.
	Delay int `yaml:"delay"`
}

// CodecConfig holds the decoder limits applied to every connection.
type CodecConfig struct {
	// MaxMessageSize bounds the encoded size of a single LDAPMessage.
	MaxMessageSize int `yaml:"maxMessageSize"`
	// MaxDepth bounds element and grammar nesting.
	MaxDepth int `yaml:"maxDepth"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}
