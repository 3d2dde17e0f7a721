// Package config loads and validates the ldapwire configuration.
//
// Configuration is read from a YAML file. Values may reference the
// environment with ${VAR} or ${VAR:-default}; the substitution happens
// before parsing. Keys that are absent keep their defaults.
//
//	server:
//	  address: ":389"
//	  maxConnections: 1024
//	  readTimeout: 5m
//	  writeTimeout: 30s
//	  readBufferSize: 4096
//	  shutdown:
//	    timeOffline: 0
//	    delay: 0
//	codec:
//	  maxMessageSize: 1048576
//	  maxDepth: 64
//	logging:
//	  level: ${LDAPWIRE_LOG_LEVEL:-info}
//	  format: json
//	  output: stdout
//
// Load and check a file:
//
//	cfg, err := config.LoadConfig("/etc/ldapwire/config.yaml")
//	if err != nil {
//	    return err
//	}
//	if errs := config.ValidateConfig(cfg); len(errs) > 0 {
//	    return errs[0]
//	}
package config
