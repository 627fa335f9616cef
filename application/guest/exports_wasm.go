//go:build wasip1

package guest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/reglet-dev/rule-verifier/application/contract"
	"github.com/reglet-dev/rule-verifier/application/verify"
	domainerrors "github.com/reglet-dev/rule-verifier/domain/errors"
	"github.com/reglet-dev/rule-verifier/infrastructure/wasm"
	"github.com/reglet-dev/rule-verifier/internal/abi"
	_ "github.com/reglet-dev/rule-verifier/log" // Initialize WASM logging handler
)

var defaultEntry = sync.OnceValue(func() *Entry {
	return NewEntry(abi.Default(), contract.NewDecoder(), verify.NewAdapter(wasm.NewECDSAAdapter()))
})

//go:wasmexport start_verify
func startVerify(proofPtr, validatorPtr uint32) int32 {
	defer trapOnPanic("start_verify")
	return defaultEntry().StartVerify(uintptr(proofPtr), uintptr(validatorPtr))
}

//go:wasmexport start_verify_len
func startVerifyLen(proofPtr, proofLen, validatorPtr, validatorLen uint32) int32 {
	defer trapOnPanic("start_verify_len")
	return defaultEntry().StartVerifyLen(uintptr(proofPtr), proofLen, uintptr(validatorPtr), validatorLen)
}

// trapOnPanic reports the panic to the host log before letting it unwind into
// a trap.
func trapOnPanic(export string) {
	if r := recover(); r != nil {
		attrs := []slog.Attr{slog.String("export", export), slog.String("error", fmt.Sprint(r))}
		if err, ok := r.(error); ok {
			attrs = append(attrs, domainerrors.ToErrorDetail(err).LogAttrs()...)
		}
		slog.LogAttrs(context.Background(), slog.LevelError, "guest: trapping", attrs...)
		panic(r)
	}
}
