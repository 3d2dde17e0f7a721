package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KilimcininKorOglu/ldapwire/internal/config"
	"github.com/KilimcininKorOglu/ldapwire/internal/ldap"
)

const (
	anonymousBindHex = "30 0C 02 01 01 60 07 02 01 03 04 00 80 00"
	unbindHex        = "30 05 02 01 02 42 00"
)

func runCmd(t *testing.T, command string, args []string, opts options, stdin string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(command, args, opts, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRun_UnknownCommand(t *testing.T) {
	code, _, stderr := runCmd(t, "frobnicate", nil, options{}, "")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr, "Unknown command: frobnicate")
}

func TestVersion(t *testing.T) {
	code, stdout, _ := runCmd(t, "version", nil, options{}, "")
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "ldapwire version "+version)
	assert.Contains(t, stdout, "Go version:")

	code, stdout, _ = runCmd(t, "version", nil, options{short: true}, "")
	assert.Equal(t, ExitSuccess, code)
	assert.Equal(t, version+"\n", stdout)
}

func TestDecode_Arguments(t *testing.T) {
	code, stdout, stderr := runCmd(t, "decode", strings.Fields(anonymousBindHex), options{}, "")
	require.Equal(t, ExitSuccess, code, stderr)

	assert.Contains(t, stdout, "message 1: BindRequest")
	assert.Contains(t, stdout, "version: 3")
	assert.Contains(t, stdout, "auth: simple")
}

func TestDecode_StdinSeveralMessages(t *testing.T) {
	input := "0x" + strings.ReplaceAll(anonymousBindHex+" "+unbindHex, " ", "") + "\n"
	code, stdout, stderr := runCmd(t, "decode", nil, options{}, input)
	require.Equal(t, ExitSuccess, code, stderr)

	assert.Contains(t, stdout, "message 1: BindRequest")
	assert.Contains(t, stdout, "message 2: UnbindRequest")
}

func TestDecode_Search(t *testing.T) {
	// search base "dc=x", sub, filter (cn=*), attributes [cn]
	input := "30 24 02 01 03 63 1F 04 04 64 63 3D 78 0A 01 02 0A 01 00 02 01 00 02 01 00 01 01 00 87 02 63 6E 30 04 04 02 63 6E"
	code, stdout, stderr := runCmd(t, "decode", []string{input}, options{}, "")
	require.Equal(t, ExitSuccess, code, stderr)

	assert.Contains(t, stdout, "message 3: SearchRequest")
	assert.Contains(t, stdout, "base: dc=x")
	assert.Contains(t, stdout, "scope: sub")
	assert.Contains(t, stdout, "filter: (cn=*)")
	assert.Contains(t, stdout, "attributes: cn")
}

func TestDecode_Response(t *testing.T) {
	// bind response, invalidCredentials, diagnostic "no"
	code, stdout, stderr := runCmd(t, "decode", []string{"30 0E 02 01 01 61 09 0A 01 31 04 00 04 02 6E 6F"}, options{}, "")
	require.Equal(t, ExitSuccess, code, stderr)

	assert.Contains(t, stdout, "message 1: BindResponse")
	assert.Contains(t, stdout, "result: invalidCredentials (49)")
	assert.Contains(t, stdout, "diagnostic: no")
}

func TestDecode_ShutdownNotices(t *testing.T) {
	graceful, err := ldap.NewGracefulDisconnect(&ldap.GracefulDisconnect{
		TimeOffline:        30,
		Delay:              5,
		ReplicatedContexts: []string{"ldap://replica.example.com/"},
	})
	require.NoError(t, err)
	first, err := graceful.Encode()
	require.NoError(t, err)
	second, err := ldap.NewNoticeOfDisconnect(ldap.ResultUnavailable, "bye").Encode()
	require.NoError(t, err)

	code, stdout, stderr := runCmd(t, "decode", []string{hex.EncodeToString(first), hex.EncodeToString(second)}, options{}, "")
	require.Equal(t, ExitSuccess, code, stderr)

	assert.Contains(t, stdout, "name: 1.3.6.1.4.1.18060.0.1.5 (graceful disconnect)")
	assert.Contains(t, stdout, "timeOffline: 30 min")
	assert.Contains(t, stdout, "delay: 5 s")
	assert.Contains(t, stdout, "replicatedContexts: ldap://replica.example.com/")
	assert.Contains(t, stdout, "name: 1.3.6.1.4.1.1466.20036 (Notice of Disconnection)")
	assert.NotContains(t, stdout, "value:")
}

func TestDecode_Dump(t *testing.T) {
	code, stdout, stderr := runCmd(t, "decode", []string{anonymousBindHex, unbindHex}, options{dump: true}, "")
	require.Equal(t, ExitSuccess, code, stderr)

	assert.Contains(t, stdout, "message 1: BindRequest")
	assert.Contains(t, stdout, "message 2: UnbindRequest")
	assert.Contains(t, stdout, "Sequence")
	assert.Contains(t, stdout, "Application")
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  int
		want  string
	}{
		{"invalid hex", "30 0G", ExitError, "invalid hex input"},
		{"truncated", "30 0C 02 01 01 60", ExitError, "input ended inside a message"},
		{"malformed", "31 00", ExitError, "decode error at offset 0"},
		{"empty", "   ", ExitMissingArg, "no input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCmd(t, "decode", nil, options{}, tt.input)
			assert.Equal(t, tt.code, code)
			assert.Contains(t, stderr, tt.want)
		})
	}
}

func TestConfig_Init(t *testing.T) {
	code, stdout, _ := runCmd(t, "config", []string{"init"}, options{}, "")
	require.Equal(t, ExitSuccess, code)

	cfg, err := config.ParseConfig([]byte(stdout))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)
}

func TestConfig_Validate(t *testing.T) {
	valid := writeConfig(t, "codec:\n  maxDepth: 32\n")
	code, stdout, _ := runCmd(t, "config", []string{"validate"}, options{config: valid}, "")
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "Configuration is valid")

	invalid := writeConfig(t, "codec:\n  maxDepth: 0\nlogging:\n  format: xml\n")
	code, _, stderr := runCmd(t, "config", []string{"validate"}, options{config: invalid}, "")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr, "codec.maxDepth")
	assert.Contains(t, stderr, "logging.format")

	malformed := writeConfig(t, "codec: [\n")
	code, _, stderr = runCmd(t, "config", []string{"validate"}, options{config: malformed}, "")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr, "Invalid configuration")

	code, _, stderr = runCmd(t, "config", []string{"validate"}, options{}, "")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr, "--config is required")
}

func TestConfig_Show(t *testing.T) {
	path := writeConfig(t, "server:\n  address: \":10389\"\n")
	code, stdout, _ := runCmd(t, "config", []string{"show"}, options{config: path}, "")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "10389")
	assert.Contains(t, stdout, "maxDepth: 64")
}

func TestConfig_Usage(t *testing.T) {
	code, _, stderr := runCmd(t, "config", nil, options{}, "")
	assert.Equal(t, ExitMissingArg, code)
	assert.Contains(t, stderr, "Usage:")

	code, _, stderr = runCmd(t, "config", []string{"edit"}, options{}, "")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr, "Unknown config subcommand: edit")
}

func TestServe_StopsOnCancel(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.Address = "127.0.0.1:0"
	cfg.Logging.Level = "error"

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	var stderr bytes.Buffer
	assert.Equal(t, ExitSuccess, serve(ctx, cfg, &stderr), stderr.String())
}

func TestServe_ListenError(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.Address = "127.0.0.1:99999"
	cfg.Logging.Level = "error"

	var stderr bytes.Buffer
	assert.Equal(t, ExitError, serve(context.Background(), cfg, &stderr))
	assert.Contains(t, stderr.String(), "Server error")
}

func TestServe_InvalidConfig(t *testing.T) {
	path := writeConfig(t, "server:\n  readBufferSize: 0\n")
	var stderr bytes.Buffer
	assert.Equal(t, ExitError, serveCmd(options{config: path}, &stderr))
	assert.Contains(t, stderr.String(), "server.readBufferSize")
}
