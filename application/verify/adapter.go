// Package verify implements the signature verification adapter: it marshals
// verification material across the boundary to the host ECDSA capability and
// interprets the raw result code.
package verify

import (
	"context"
	"log/slog"
	"runtime"
	"unsafe"

	"github.com/reglet-dev/rule-verifier/domain/entities"
	"github.com/reglet-dev/rule-verifier/domain/ports"
)

// adapterConfig holds configuration for the Adapter.
type adapterConfig struct {
	logger *slog.Logger
}

func defaultAdapterConfig() adapterConfig {
	return adapterConfig{
		logger: slog.Default(),
	}
}

// Option configures an Adapter.
type Option func(*adapterConfig)

// WithLogger sets the logger used to report indeterminate results.
func WithLogger(logger *slog.Logger) Option {
	return func(c *adapterConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Adapter invokes the host ECDSA capability. It is stateless: every call is a
// single, idempotent exchange and nothing is retried or cached.
type Adapter struct {
	capability ports.SignatureCapability
	config     adapterConfig
}

// NewAdapter creates an Adapter over the given capability.
func NewAdapter(capability ports.SignatureCapability, opts ...Option) *Adapter {
	cfg := defaultAdapterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Adapter{
		capability: capability,
		config:     cfg,
	}
}

// Verify reports whether signature is a valid signature of digest under pubkey.
// It returns true only when the host answers exactly 1. Every other answer,
// including negative error codes, is reported as false.
func (a *Adapter) Verify(signature, digest, pubkey []byte, algorithm entities.Algorithm) bool {
	return a.Check(entities.Material{
		Signature: signature,
		Digest:    digest,
		PublicKey: pubkey,
		Algorithm: algorithm,
	}).Valid()
}

// Check runs the verification and keeps the distinction between a genuine
// invalid signature (host answered 0) and any other host answer (Indeterminate).
func (a *Adapter) Check(m entities.Material) entities.Outcome {
	if !m.Algorithm.Supported() {
		a.config.logger.Warn("verify: unsupported algorithm selector", "algorithm", m.Algorithm.String())
		return entities.Indeterminate
	}

	code := a.capability.ECDSAVerify(addressOf(m.Signature), addressOf(m.Digest), addressOf(m.PublicKey), m.Algorithm.Code())
	// The host reads through the addresses; the slices must outlive the call.
	runtime.KeepAlive(m.Signature)
	runtime.KeepAlive(m.Digest)
	runtime.KeepAlive(m.PublicKey)

	outcome := entities.OutcomeFromResult(code)
	if outcome == entities.Indeterminate {
		a.config.logger.LogAttrs(context.Background(), slog.LevelWarn, "verify: host returned non-boolean result",
			slog.Int("code", int(code)),
			slog.String("algorithm", m.Algorithm.String()),
		)
	}
	return outcome
}

// addressOf returns the address of the first byte of b, or 0 for an empty slice.
func addressOf(b []byte) int64 {
	if len(b) == 0 {
		return 0
	}
	return int64(uintptr(unsafe.Pointer(&b[0])))
}
