package host

import (
	"log/slog"

	"github.com/reglet-dev/rule-verifier/hostfuncs"
	"github.com/reglet-dev/rule-verifier/wireformat"
)

// DefaultMaxPayloadSize bounds a single proof or validator record.
const DefaultMaxPayloadSize uint32 = 1 << 20

type executorConfig struct {
	registry         *hostfuncs.VerifierRegistry
	logger           *slog.Logger
	hostModuleName   string
	maxPayloadSize   uint32
	memoryLimitPages uint32
}

func defaultExecutorConfig() executorConfig {
	return executorConfig{
		logger:         slog.Default(),
		hostModuleName: wireformat.HostModule,
		maxPayloadSize: DefaultMaxPayloadSize,
	}
}

// Option defines a functional option for configuring the Executor.
type Option func(*executorConfig)

// WithRegistry replaces the default verifier registry (P256 and secp256k1
// with panic recovery and debug logging).
func WithRegistry(registry *hostfuncs.VerifierRegistry) Option {
	return func(c *executorConfig) {
		c.registry = registry
	}
}

// WithLogger sets the logger for guest log records and host diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *executorConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHostModuleName sets the import module name guests resolve
// ecdsa_verify and log_message from.
func WithHostModuleName(name string) Option {
	return func(c *executorConfig) {
		if name != "" {
			c.hostModuleName = name
		}
	}
}

// WithMaxPayloadSize limits the size of records passed to a guest.
func WithMaxPayloadSize(size uint32) Option {
	return func(c *executorConfig) {
		if size > 0 {
			c.maxPayloadSize = size
		}
	}
}

// WithMemoryLimitPages caps guest linear memory, in 64KiB pages.
func WithMemoryLimitPages(pages uint32) Option {
	return func(c *executorConfig) {
		c.memoryLimitPages = pages
	}
}
