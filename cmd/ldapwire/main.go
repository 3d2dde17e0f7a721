// Package main provides the ldapwire command line tool.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mjwhitta/cli"
)

// Exit codes
const (
	ExitSuccess = iota
	ExitError
	ExitMissingArg
)

// options holds the global flags.
type options struct {
	config  string
	dump    bool
	short   bool
	verbose bool
}

func main() {
	var opts options

	cli.Align = true
	cli.Authors = []string{"ldapwire authors"}
	cli.Banner = fmt.Sprintf("%s [OPTIONS] <command> [args...]", os.Args[0])
	cli.Info(
		"ldapwire - incremental LDAPv3 message codec",
		"",
		"Decodes and encodes LDAP messages and runs a minimal LDAP",
		"responder on top of the streaming decoder.",
	)
	cli.ExitStatus(
		"0 - Success",
		"1 - Error",
		"2 - Missing command",
	)

	cli.Flag(&opts.config, "c", "config", "", "Configuration file")
	cli.Flag(&opts.dump, "d", "dump", false, "Print the BER element tree (decode)")
	cli.Flag(&opts.short, "s", "short", false, "Print only the version number (version)")
	cli.Flag(&opts.verbose, "v", "verbose", false, "Log at debug level (serve)")

	cli.Section("Commands",
		"  serve              Run the LDAP responder\n",
		"  decode [HEX...]    Decode hex encoded messages (args or stdin)\n",
		"  config validate    Validate the configuration file\n",
		"  config show        Print the effective configuration\n",
		"  config init        Print the default configuration\n",
		"  version            Print version information",
	)

	cli.Parse()

	if cli.NArg() == 0 {
		cli.Usage(ExitMissingArg)
	}

	os.Exit(run(cli.Arg(0), cli.Args()[1:], opts, os.Stdin, os.Stdout, os.Stderr))
}

// run executes a command and returns an exit code.
// This is separated from main() to facilitate testing.
func run(command string, args []string, opts options, stdin io.Reader, stdout, stderr io.Writer) int {
	switch command {
	case "serve":
		return serveCmd(opts, stderr)
	case "decode":
		return decodeCmd(args, opts, stdin, stdout, stderr)
	case "config":
		return configCmd(args, opts, stdout, stderr)
	case "version":
		return versionCmd(opts, stdout)
	case "help":
		cli.Usage(ExitSuccess)
		return ExitSuccess
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		fmt.Fprintln(stderr, "Run 'ldapwire help' for usage.")
		return ExitError
	}
}
