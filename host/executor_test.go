package host

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/reglet-dev/rule-verifier/domain/entities"
	"github.com/reglet-dev/rule-verifier/hostfuncs"
	"github.com/reglet-dev/rule-verifier/wireformat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// emptyModule is the smallest valid WASM binary: magic and version only.
var emptyModule = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

// importingModule imports env.ecdsa_verify with type (i64, i64, i64, i32) -> i32
// and exports nothing.
var importingModule = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	// type section: one func type
	0x01, 0x09, 0x01, 0x60, 0x04, 0x7e, 0x7e, 0x7e, 0x7f, 0x01, 0x7f,
	// import section: "env" "ecdsa_verify" func type 0
	0x02, 0x14, 0x01,
	0x03, 'e', 'n', 'v',
	0x0c, 'e', 'c', 'd', 's', 'a', '_', 'v', 'e', 'r', 'i', 'f', 'y',
	0x00, 0x00,
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestNewExecutor(t *testing.T) {
	ctx := context.Background()
	e, err := NewExecutor(ctx, WithLogger(quietLogger()))
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.NoError(t, e.Close(ctx))
}

func TestNewExecutor_CustomRegistry(t *testing.T) {
	ctx := context.Background()
	registry, err := hostfuncs.NewRegistry(hostfuncs.WithDefaultVerifiers())
	require.NoError(t, err)

	e, err := NewExecutor(ctx, WithRegistry(registry), WithMemoryLimitPages(64))
	require.NoError(t, err)
	defer e.Close(ctx)

	assert.Same(t, registry, e.config.registry)
}

func TestExecutor_Algorithms(t *testing.T) {
	ctx := context.Background()
	e, err := NewExecutor(ctx, WithLogger(quietLogger()))
	require.NoError(t, err)
	defer e.Close(ctx)
	assert.Equal(t, []entities.Algorithm{entities.P256, entities.Secp256k1}, e.Algorithms())

	k1Only, err := hostfuncs.NewRegistry(hostfuncs.WithVerifier(entities.Secp256k1, hostfuncs.VerifySecp256k1))
	require.NoError(t, err)
	narrow, err := NewExecutor(ctx, WithRegistry(k1Only))
	require.NoError(t, err)
	defer narrow.Close(ctx)
	assert.Equal(t, []entities.Algorithm{entities.Secp256k1}, narrow.Algorithms())
}

func TestOptions(t *testing.T) {
	cfg := defaultExecutorConfig()
	assert.Equal(t, wireformat.HostModule, cfg.hostModuleName)
	assert.Equal(t, DefaultMaxPayloadSize, cfg.maxPayloadSize)

	logger := quietLogger()
	for _, opt := range []Option{
		WithHostModuleName("verifier_host"),
		WithHostModuleName(""),
		WithMaxPayloadSize(4096),
		WithMaxPayloadSize(0),
		WithLogger(logger),
		WithLogger(nil),
		WithMemoryLimitPages(16),
	} {
		opt(&cfg)
	}

	assert.Equal(t, "verifier_host", cfg.hostModuleName)
	assert.Equal(t, uint32(4096), cfg.maxPayloadSize)
	assert.Same(t, logger, cfg.logger)
	assert.Equal(t, uint32(16), cfg.memoryLimitPages)
}

func TestLoadVerifier_RequiresExports(t *testing.T) {
	ctx := context.Background()
	e, err := NewExecutor(ctx, WithLogger(quietLogger()))
	require.NoError(t, err)
	defer e.Close(ctx)

	_, err = e.LoadVerifier(ctx, "empty", emptyModule)
	var missing *MissingExportError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, wireformat.ExportAllocate, missing.Export)
	assert.Equal(t, "empty", missing.Module)
}

func TestLoadVerifier_ResolvesHostModule(t *testing.T) {
	ctx := context.Background()

	e, err := NewExecutor(ctx, WithLogger(quietLogger()))
	require.NoError(t, err)
	defer e.Close(ctx)

	// The import resolves, so instantiation gets as far as the export check.
	_, err = e.LoadVerifier(ctx, "importer", importingModule)
	var missing *MissingExportError
	require.ErrorAs(t, err, &missing)

	renamed, err := NewExecutor(ctx, WithLogger(quietLogger()), WithHostModuleName("verifier_host"))
	require.NoError(t, err)
	defer renamed.Close(ctx)

	_, err = renamed.LoadVerifier(ctx, "importer", importingModule)
	require.Error(t, err)
	assert.NotErrorAs(t, err, &missing)
	assert.Contains(t, err.Error(), "failed to instantiate module")
}

func TestLoadVerifier_InvalidBinary(t *testing.T) {
	ctx := context.Background()
	e, err := NewExecutor(ctx, WithLogger(quietLogger()))
	require.NoError(t, err)
	defer e.Close(ctx)

	_, err = e.LoadVerifier(ctx, "garbage", []byte("not wasm"))
	assert.ErrorContains(t, err, "failed to instantiate module")
}
