//go:build wasip1

package log

import (
	"log/slog"

	"github.com/reglet-dev/rule-verifier/internal/abi"
)

// Define the host function signature for logging messages. The argument is a
// packed (pointer << 32 | length) reference to a JSON LogMessageWire.
//
//go:wasmimport env log_message
//nolint:revive // intentional snake_case to match WASM import convention
func host_log_message(messagePacked uint64)

// defaultSink copies the payload into guest memory, hands it to the host and
// releases it once the host has read it.
func defaultSink(payload []byte) {
	packed := abi.PtrFromBytes(payload)
	host_log_message(packed)
	abi.DeallocatePacked(packed)
}

// init configures the default slog handler to forward to the host.
func init() {
	slog.SetDefault(slog.New(NewHandler()))
}
