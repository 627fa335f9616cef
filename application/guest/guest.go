// Package guest implements the start_verify entry points: it resolves the
// host supplied pointers against guest memory, decodes the proof and validator
// records and asks the host capability to verify the signature.
//
// Boundary violations (pointers the guest never handed out, unterminated
// buffers) panic and therefore trap. Records that cannot be decoded verify as
// false. The entry points only ever return 1 or 0.
package guest

import (
	"context"
	"log/slog"

	"github.com/reglet-dev/rule-verifier/domain/entities"
	domainerrors "github.com/reglet-dev/rule-verifier/domain/errors"
	"github.com/reglet-dev/rule-verifier/domain/ports"
	"github.com/reglet-dev/rule-verifier/internal/abi"
)

// Checker verifies assembled material. *verify.Adapter implements it.
type Checker interface {
	Check(m entities.Material) entities.Outcome
}

type entryConfig struct {
	logger *slog.Logger
}

func defaultEntryConfig() entryConfig {
	return entryConfig{logger: slog.Default()}
}

// Option configures an Entry.
type Option func(*entryConfig)

// WithLogger sets the logger used for decode failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *entryConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Entry wires the memory bridge, the record decoder and the verification
// adapter together.
type Entry struct {
	arena   *abi.Arena
	decoder ports.MaterialDecoder
	checker Checker
	config  entryConfig
}

// NewEntry creates an Entry.
func NewEntry(arena *abi.Arena, decoder ports.MaterialDecoder, checker Checker, opts ...Option) *Entry {
	cfg := defaultEntryConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Entry{
		arena:   arena,
		decoder: decoder,
		checker: checker,
		config:  cfg,
	}
}

// StartVerify verifies NUL terminated proof and validator records located at
// the given guest addresses.
func (e *Entry) StartVerify(proofAddr, validatorAddr uintptr) int32 {
	proof, err := e.arena.ViewOf(proofAddr)
	if err != nil {
		panic(err)
	}
	validator, err := e.arena.ViewOf(validatorAddr)
	if err != nil {
		panic(err)
	}
	return e.run(proof, validator)
}

// StartVerifyLen is StartVerify for hosts that pass explicit lengths. The
// records may contain any byte, NUL included.
func (e *Entry) StartVerifyLen(proofAddr uintptr, proofLen uint32, validatorAddr uintptr, validatorLen uint32) int32 {
	proof, err := e.arena.Region(proofAddr, proofLen)
	if err != nil {
		panic(err)
	}
	validator, err := e.arena.Region(validatorAddr, validatorLen)
	if err != nil {
		panic(err)
	}
	return e.run(proof, validator)
}

func (e *Entry) run(proof, validator []byte) int32 {
	m, err := e.decoder.Decode(proof, validator)
	if err != nil {
		attrs := append(domainerrors.ToErrorDetail(err).LogAttrs(),
			slog.String("error", err.Error()),
			slog.Int("proof_len", len(proof)),
			slog.Int("validator_len", len(validator)),
		)
		e.config.logger.LogAttrs(context.Background(), slog.LevelWarn, "guest: rejecting undecodable records", attrs...)
		return 0
	}
	return e.checker.Check(m).Int()
}
