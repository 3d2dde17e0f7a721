package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/KilimcininKorOglu/ldapwire/internal/ldap"
)

// ValidationError describes a single invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig validates the configuration and returns every problem
// found. An empty result means the configuration is usable.
func ValidateConfig(config *Config) []error {
	var errs []error

	errs = append(errs, validateServerConfig(&config.Server)...)
	errs = append(errs, validateCodecConfig(&config.Codec)...)
	errs = append(errs, validateLogConfig(&config.Logging)...)

	return errs
}

// validateServerConfig validates server configuration.
func validateServerConfig(config *ServerConfig) []error {
	var errs []error

	if config.Address == "" {
		errs = append(errs, ValidationError{Field: "server.address", Message: "is required"})
	} else if err := validateAddress(config.Address); err != nil {
		errs = append(errs, ValidationError{Field: "server.address", Message: err.Error()})
	}

	if config.MaxConnections < 0 {
		errs = append(errs, ValidationError{Field: "server.maxConnections", Message: "must be non-negative"})
	}
	if config.ReadTimeout < 0 {
		errs = append(errs, ValidationError{Field: "server.readTimeout", Message: "must be non-negative"})
	}
	if config.WriteTimeout < 0 {
		errs = append(errs, ValidationError{Field: "server.writeTimeout", Message: "must be non-negative"})
	}
	if config.ReadBufferSize <= 0 {
		errs = append(errs, ValidationError{Field: "server.readBufferSize", Message: "must be positive"})
	}
	if config.Shutdown.TimeOffline < 0 || config.Shutdown.TimeOffline > ldap.MaxTimeOffline {
		errs = append(errs, ValidationError{
			Field:   "server.shutdown.timeOffline",
			Message: fmt.Sprintf("must be between 0 and %d minutes", ldap.MaxTimeOffline),
		})
	}
	if config.Shutdown.Delay < 0 || config.Shutdown.Delay > ldap.MaxDelay {
		errs = append(errs, ValidationError{
			Field:   "server.shutdown.delay",
			Message: fmt.Sprintf("must be between 0 and %d seconds", ldap.MaxDelay),
		})
	}

	return errs
}

// validateCodecConfig validates decoder limits.
func validateCodecConfig(config *CodecConfig) []error {
	var errs []error

	if config.MaxMessageSize <= 0 {
		errs = append(errs, ValidationError{Field: "codec.maxMessageSize", Message: "must be positive"})
	}
	if config.MaxDepth <= 0 {
		errs = append(errs, ValidationError{Field: "codec.maxDepth", Message: "must be positive"})
	}

	return errs
}

// validateLogConfig validates logging configuration.
func validateLogConfig(config *LogConfig) []error {
	var errs []error

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if config.Level != "" && !validLevels[strings.ToLower(config.Level)] {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: "must be debug, info, warn, or error",
		})
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if config.Format != "" && !validFormats[strings.ToLower(config.Format)] {
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Message: "must be text or json",
		})
	}

	if config.Output != "" && config.Output != "stdout" && config.Output != "stderr" {
		dir := filepath.Dir(config.Output)
		if !filepath.IsAbs(config.Output) {
			errs = append(errs, ValidationError{
				Field:   "logging.output",
				Message: "must be stdout, stderr, or an absolute file path",
			})
		} else if _, err := os.Stat(dir); os.IsNotExist(err) {
			errs = append(errs, ValidationError{
				Field:   "logging.output",
				Message: fmt.Sprintf("directory %s does not exist", dir),
			})
		}
	}

	return errs
}

// validateAddress validates a network address in host:port format.
func validateAddress(addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid address format: %v", err)
	}
	if port == "" {
		return fmt.Errorf("port is required")
	}
	return nil
}
