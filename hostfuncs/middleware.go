package hostfuncs

import (
	"context"
	"log/slog"
	"time"

	"github.com/reglet-dev/rule-verifier/domain/entities"
	"github.com/reglet-dev/rule-verifier/wireformat"
)

// Middleware is a function that wraps a VerifyFunc to add cross-cutting behavior.
// Middleware executes in FIFO order (first registered wraps first, onion model).
type Middleware func(next VerifyFunc) VerifyFunc

// PanicRecoveryMiddleware returns a middleware that catches panics and converts
// them to wireformat.ResultInternal instead of crashing the host.
func PanicRecoveryMiddleware(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next VerifyFunc) VerifyFunc {
		return func(ctx context.Context, m entities.Material) (code int32) {
			defer func() {
				if r := recover(); r != nil {
					logger.ErrorContext(ctx, "hostfuncs: verifier panicked",
						"algorithm", m.Algorithm.String(), "panic", r)
					code = wireformat.ResultInternal
				}
			}()
			return next(ctx, m)
		}
	}
}

// LoggingMiddleware returns a middleware that logs every verification at debug level.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next VerifyFunc) VerifyFunc {
		return func(ctx context.Context, m entities.Material) int32 {
			start := time.Now()
			code := next(ctx, m)
			logger.DebugContext(ctx, "hostfuncs: ecdsa_verify",
				"algorithm", m.Algorithm.String(),
				"result", code,
				"outcome", entities.OutcomeFromResult(code).String(),
				"duration", time.Since(start),
			)
			return code
		}
	}
}
