package hostfuncs

import (
	"context"
	"fmt"
	"sort"

	"github.com/reglet-dev/rule-verifier/domain/entities"
	"github.com/reglet-dev/rule-verifier/wireformat"
)

// VerifierRegistry is an immutable collection of verifiers keyed by algorithm
// wire code. Once created via NewRegistry, verifiers cannot be added or removed.
// This ensures thread safety and lock-free lookups during execution.
type VerifierRegistry struct {
	verifiers  map[int32]VerifyFunc
	algorithms []entities.Algorithm // sorted by wire code
	middleware []Middleware
}

// registryBuilder accumulates configuration during registry construction.
type registryBuilder struct {
	verifiers  map[int32]VerifyFunc
	middleware []Middleware
	errors     []error
}

// RegistryOption is a functional option for configuring a VerifierRegistry.
type RegistryOption func(*registryBuilder)

// NewRegistry creates an immutable VerifierRegistry with the given options.
// Returns an error if an algorithm is registered twice or is not supported.
//
// Example usage:
//
//	registry, err := NewRegistry(
//	    WithMiddleware(PanicRecoveryMiddleware()),
//	    WithDefaultVerifiers(),
//	)
func NewRegistry(opts ...RegistryOption) (*VerifierRegistry, error) {
	b := &registryBuilder{
		verifiers: make(map[int32]VerifyFunc),
	}

	for _, opt := range opts {
		opt(b)
	}

	if len(b.errors) > 0 {
		return nil, b.errors[0] // Return first error
	}

	algorithms := make([]entities.Algorithm, 0, len(b.verifiers))
	for code := range b.verifiers {
		algorithms = append(algorithms, entities.Algorithm(code))
	}
	sort.Slice(algorithms, func(i, j int) bool { return algorithms[i] < algorithms[j] })

	// Apply middleware chain to all verifiers (FIFO order)
	wrapped := make(map[int32]VerifyFunc, len(b.verifiers))
	for code, fn := range b.verifiers {
		w := fn
		for i := len(b.middleware) - 1; i >= 0; i-- {
			w = b.middleware[i](w)
		}
		wrapped[code] = w
	}

	return &VerifierRegistry{
		verifiers:  wrapped,
		algorithms: algorithms,
		middleware: b.middleware,
	}, nil
}

// Verify dispatches on the material's algorithm. Unknown algorithms yield
// wireformat.ResultUnsupportedAlgorithm.
func (r *VerifierRegistry) Verify(ctx context.Context, m entities.Material) int32 {
	fn, ok := r.verifiers[m.Algorithm.Code()]
	if !ok {
		return wireformat.ResultUnsupportedAlgorithm
	}
	return fn(ctx, m)
}

// VerifyAt implements ecdsa_verify on top of guest memory: it resolves the
// algorithm code, reads the material through read and verifies it.
func (r *VerifierRegistry) VerifyAt(ctx context.Context, read ReadFunc, sigAddr, digestAddr, pubkeyAddr int64, code int32) int32 {
	algorithm, ok := entities.AlgorithmFromCode(code)
	if !ok || !r.Has(algorithm) {
		return wireformat.ResultUnsupportedAlgorithm
	}

	m, err := ReadMaterial(read, sigAddr, digestAddr, pubkeyAddr, algorithm)
	if err != nil {
		return wireformat.ResultMalformed
	}
	return r.Verify(ctx, m)
}

// Has returns true if a verifier is registered for the algorithm.
func (r *VerifierRegistry) Has(algorithm entities.Algorithm) bool {
	_, ok := r.verifiers[algorithm.Code()]
	return ok
}

// Algorithms returns the registered algorithms ordered by wire code.
func (r *VerifierRegistry) Algorithms() []entities.Algorithm {
	result := make([]entities.Algorithm, len(r.algorithms))
	copy(result, r.algorithms)
	return result
}

// addVerifier registers a verifier for the given algorithm.
func (b *registryBuilder) addVerifier(algorithm entities.Algorithm, fn VerifyFunc) error {
	if !algorithm.Supported() {
		return fmt.Errorf("unsupported algorithm: %s", algorithm)
	}
	if fn == nil {
		return fmt.Errorf("verifier for %s cannot be nil", algorithm)
	}
	if _, exists := b.verifiers[algorithm.Code()]; exists {
		return fmt.Errorf("duplicate verifier for algorithm %s", algorithm)
	}
	b.verifiers[algorithm.Code()] = fn
	return nil
}

// WithVerifier registers a VerifyFunc for an algorithm.
func WithVerifier(algorithm entities.Algorithm, fn VerifyFunc) RegistryOption {
	return func(b *registryBuilder) {
		if err := b.addVerifier(algorithm, fn); err != nil {
			b.errors = append(b.errors, err)
		}
	}
}

// WithDefaultVerifiers registers the built-in P256 and Secp256k1 verifiers.
func WithDefaultVerifiers() RegistryOption {
	return func(b *registryBuilder) {
		WithVerifier(entities.P256, VerifyP256)(b)
		WithVerifier(entities.Secp256k1, VerifySecp256k1)(b)
	}
}

// WithMiddleware adds middleware to the registry.
// Middleware executes in FIFO order (first added wraps first).
func WithMiddleware(mw ...Middleware) RegistryOption {
	return func(b *registryBuilder) {
		b.middleware = append(b.middleware, mw...)
	}
}
