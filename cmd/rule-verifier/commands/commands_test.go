package commands

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func run(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = Execute(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestSchemaCmd(t *testing.T) {
	code, out, _ := run(t, "schema", "validator")
	require.Equal(t, ExitValid, code)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Contains(t, decoded["properties"], "public_key")

	code, out, _ = run(t, "schema", "proof")
	require.Equal(t, ExitValid, code)
	assert.Contains(t, out, "digest")
}

func TestSchemaCmd_RejectsUnknownRecord(t *testing.T) {
	code, _, stderr := run(t, "schema", "receipt")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr, "Error:")
}

func TestVerifyCmd_Errors(t *testing.T) {
	dir := t.TempDir()
	proof := writeFile(t, dir, "proof.json", `{"algorithm":"p256"}`)
	validator := writeFile(t, dir, "validator.json", `{"public_key":"04"}`)
	notWasm := writeFile(t, dir, "guest.wasm", "not wasm")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "missing module", args: []string{"verify", "--proof", proof, "--validator", validator}, want: "no verification module"},
		{name: "missing proof flag", args: []string{"verify", "--module", notWasm, "--validator", validator}, want: "proof"},
		{name: "unreadable module", args: []string{"verify", "--module", filepath.Join(dir, "absent.wasm"), "--proof", proof, "--validator", validator}, want: "read module"},
		{name: "invalid module", args: []string{"verify", "--module", notWasm, "--proof", proof, "--validator", validator}, want: "failed to instantiate module"},
		{name: "bad log level", args: []string{"verify", "--log-level", "loud", "--module", notWasm, "--proof", proof, "--validator", validator}, want: "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := run(t, tt.args...)
			assert.Equal(t, ExitError, code)
			assert.Contains(t, stderr, tt.want)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	newFlags := func() *pflag.FlagSet {
		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.String("module", "", "")
		flags.String("log-level", "info", "")
		flags.Bool("explicit-length", false, "")
		flags.Uint32("max-payload-size", 0, "")
		return flags
	}

	t.Run("defaults", func(t *testing.T) {
		cfg, err := loadConfig(newFlags(), "")
		require.NoError(t, err)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, "text", cfg.Output)
		assert.Empty(t, cfg.Module)
		assert.False(t, cfg.ExplicitLength)
	})

	t.Run("config file", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "verifier.yaml", "module: /opt/guest.wasm\nhost_module: verifier_host\nexplicit_length: true\nmax_payload_size: 4096\n")
		cfg, err := loadConfig(newFlags(), path)
		require.NoError(t, err)
		assert.Equal(t, "/opt/guest.wasm", cfg.Module)
		assert.Equal(t, "verifier_host", cfg.HostModule)
		assert.True(t, cfg.ExplicitLength)
		assert.Equal(t, uint32(4096), cfg.MaxPayloadSize)
	})

	t.Run("environment overrides file, flags override environment", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "verifier.toml", "module = \"/from/file.wasm\"\nlog_level = \"warn\"\n")
		t.Setenv("RULE_VERIFIER_MODULE", "/from/env.wasm")

		cfg, err := loadConfig(newFlags(), path)
		require.NoError(t, err)
		assert.Equal(t, "/from/env.wasm", cfg.Module)
		assert.Equal(t, "warn", cfg.LogLevel)

		flags := newFlags()
		require.NoError(t, flags.Set("module", "/from/flag.wasm"))
		cfg, err = loadConfig(flags, path)
		require.NoError(t, err)
		assert.Equal(t, "/from/flag.wasm", cfg.Module)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadConfig(newFlags(), filepath.Join(t.TempDir(), "absent.yaml"))
		assert.ErrorContains(t, err, "read config")
	})
}

func TestConfigLevel(t *testing.T) {
	level, err := Config{LogLevel: "debug"}.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	_, err = Config{LogLevel: "chatty"}.Level()
	assert.Error(t, err)
}

func TestWriteReport(t *testing.T) {
	report := Report{
		Module:     "rule-guest",
		Entry:      "start_verify",
		Result:     "valid",
		Valid:      true,
		Algorithms: []string{"p256", "secp256k1"},
	}

	var text bytes.Buffer
	require.NoError(t, writeReport(&text, "text", report))
	assert.Equal(t, "valid\n", text.String())

	var js bytes.Buffer
	require.NoError(t, writeReport(&js, "JSON", report))
	var fromJSON Report
	require.NoError(t, json.Unmarshal(js.Bytes(), &fromJSON))
	assert.Equal(t, report, fromJSON)

	var ym bytes.Buffer
	require.NoError(t, writeReport(&ym, "yaml", report))
	var fromYAML Report
	require.NoError(t, yaml.Unmarshal(ym.Bytes(), &fromYAML))
	assert.Equal(t, report, fromYAML)

	assert.Error(t, writeReport(&text, "xml", report))
}

func TestTrimRecord(t *testing.T) {
	assert.Equal(t, []byte(`{"a":1}`), trimRecord([]byte("  {\"a\":1}\n")))
}
