// Package logging provides structured logging for the ldapwire server.
//
// # Overview
//
// The package exposes a small Logger interface backed by zerolog:
//
//   - Four log levels (debug, info, warn, error)
//   - JSON output, or text output through zerolog's console writer
//   - Request ID tracking per connection
//   - Field-based contextual logging
//
// # Creating a Logger
//
// Create a logger with configuration:
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	    Output: "/var/log/ldapwire/ldapwire.log",
//	})
//
// Or use defaults:
//
//	logger := logging.NewDefault() // Info level, text format, stdout
//
// For testing, use a no-op logger:
//
//	logger := logging.NewNop()
//
// # Structured Logging
//
// Add key-value pairs to log entries:
//
//	logger.Info("message decoded",
//	    "message_id", 7,
//	    "op", "SearchRequest",
//	    "client", "192.168.1.100:54321",
//	)
//
// Output (JSON format):
//
//	{"level":"info","message_id":7,"op":"SearchRequest","client":"192.168.1.100:54321","time":"2026-10-17T10:30:00Z","message":"message decoded"}
//
// # Request ID Tracking
//
// Each connection gets its own request ID:
//
//	connLogger := logger.WithRequestID(logging.GenerateRequestID()).
//	    WithFields("client", conn.RemoteAddr().String())
//	connLogger.Debug("Encoded PDU", "hex", "300c020101650700...")
//
// # Output Destinations
//
//	logging.Config{Output: "stdout"}                // Standard output
//	logging.Config{Output: "stderr"}                // Standard error
//	logging.Config{Output: "/var/log/ldapwire.log"} // File path
package logging
