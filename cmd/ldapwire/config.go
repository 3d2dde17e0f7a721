package main

import (
	"fmt"
	"io"

	"github.com/KilimcininKorOglu/ldapwire/internal/config"
)

// configCmd handles the config command.
func configCmd(args []string, opts options, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "Usage: ldapwire [--config FILE] config validate|show|init")
		return ExitMissingArg
	}

	switch args[0] {
	case "validate":
		if opts.config == "" {
			fmt.Fprintln(stderr, "Error: --config is required")
			return ExitError
		}
		if _, ok := loadConfig(opts.config, stderr); !ok {
			return ExitError
		}
		fmt.Fprintln(stdout, "Configuration is valid")
		return ExitSuccess

	case "show":
		cfg, ok := loadConfig(opts.config, stderr)
		if !ok {
			return ExitError
		}
		return printConfig(cfg, stdout, stderr)

	case "init":
		return printConfig(config.DefaultConfig(), stdout, stderr)

	default:
		fmt.Fprintf(stderr, "Unknown config subcommand: %s\n", args[0])
		return ExitError
	}
}

// loadConfig loads and validates path, or returns the defaults when path
// is empty. Problems are reported on stderr.
func loadConfig(path string, stderr io.Writer) (*config.Config, bool) {
	cfg := config.DefaultConfig()
	if path != "" {
		var err error
		cfg, err = config.LoadConfig(path)
		if err != nil {
			fmt.Fprintf(stderr, "Invalid configuration: %v\n", err)
			return nil, false
		}
	}

	if errs := config.ValidateConfig(cfg); len(errs) > 0 {
		fmt.Fprintln(stderr, "Configuration errors:")
		for _, e := range errs {
			fmt.Fprintf(stderr, "  - %s\n", e)
		}
		return nil, false
	}

	return cfg, true
}

func printConfig(cfg *config.Config, stdout, stderr io.Writer) int {
	data, err := config.Marshal(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitError
	}
	stdout.Write(data)
	return ExitSuccess
}
