package host

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"

	wazeroadapter "github.com/reglet-dev/rule-verifier/infrastructure/wazero"
	"github.com/reglet-dev/rule-verifier/wireformat"
	"github.com/tetratelabs/wazero/api"
)

// Instance is a loaded verification guest.
type Instance struct {
	module         api.Module
	logger         *slog.Logger
	mu             *sync.Mutex
	name           string
	maxPayloadSize uint32
}

// Name returns the module name the instance was loaded under.
func (i *Instance) Name() string {
	return i.name
}

// Close releases the guest module.
func (i *Instance) Close(ctx context.Context) error {
	return i.module.Close(ctx)
}

// StartVerify hands proof and validator to the guest's start_verify export as
// NUL terminated records and reports whether the signature verified.
func (i *Instance) StartVerify(ctx context.Context, proof, validator []byte) (bool, error) {
	if err := i.checkPayload(proof, true); err != nil {
		return false, fmt.Errorf("proof: %w", err)
	}
	if err := i.checkPayload(validator, true); err != nil {
		return false, fmt.Errorf("validator: %w", err)
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	ctx = wazeroadapter.WithGuestName(ctx, i.name)

	proofPtr, release, err := i.place(ctx, proof, true)
	if err != nil {
		return false, fmt.Errorf("proof: %w", err)
	}
	defer release()

	validatorPtr, release, err := i.place(ctx, validator, true)
	if err != nil {
		return false, fmt.Errorf("validator: %w", err)
	}
	defer release()

	return i.call(ctx, wireformat.ExportStartVerify, uint64(proofPtr), uint64(validatorPtr))
}

// StartVerifyLen is StartVerify over the explicit-length entry point. Records
// may contain NUL bytes.
func (i *Instance) StartVerifyLen(ctx context.Context, proof, validator []byte) (bool, error) {
	if i.module.ExportedFunction(wireformat.ExportStartVerifyLen) == nil {
		return false, ErrNoLengthEntry
	}
	if err := i.checkPayload(proof, false); err != nil {
		return false, fmt.Errorf("proof: %w", err)
	}
	if err := i.checkPayload(validator, false); err != nil {
		return false, fmt.Errorf("validator: %w", err)
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	ctx = wazeroadapter.WithGuestName(ctx, i.name)

	proofPtr, release, err := i.place(ctx, proof, false)
	if err != nil {
		return false, fmt.Errorf("proof: %w", err)
	}
	defer release()

	validatorPtr, release, err := i.place(ctx, validator, false)
	if err != nil {
		return false, fmt.Errorf("validator: %w", err)
	}
	defer release()

	return i.call(ctx, wireformat.ExportStartVerifyLen,
		uint64(proofPtr), uint64(len(proof)), uint64(validatorPtr), uint64(len(validator)))
}

func (i *Instance) checkPayload(payload []byte, terminated bool) error {
	if uint64(len(payload)) > uint64(i.maxPayloadSize) {
		return fmt.Errorf("%w: %d > %d bytes", ErrPayloadTooLarge, len(payload), i.maxPayloadSize)
	}
	if terminated && bytes.IndexByte(payload, 0) >= 0 {
		return ErrEmbeddedNUL
	}
	return nil
}

// place copies payload into a fresh guest buffer, optionally followed by a NUL
// terminator. release frees the buffer with the capacity it was acquired with.
func (i *Instance) place(ctx context.Context, payload []byte, terminated bool) (ptr uint32, release func(), err error) {
	capacity := bufferCapacity(len(payload), terminated)
	if capacity == 0 {
		return 0, func() {}, nil
	}

	results, err := i.module.ExportedFunction(wireformat.ExportAllocate).Call(ctx, uint64(capacity))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to allocate in guest: %w", err)
	}
	if len(results) == 0 {
		return 0, nil, fmt.Errorf("allocate returned no results")
	}
	ptr = api.DecodeU32(results[0])

	release = func() {
		if _, err := i.module.ExportedFunction(wireformat.ExportDeallocate).Call(ctx, uint64(ptr), uint64(capacity)); err != nil {
			i.logger.ErrorContext(ctx, "host: deallocate failed", "guest", i.name, "ptr", ptr, "capacity", capacity, "error", err)
		}
	}

	buf := payload
	if terminated {
		buf = make([]byte, capacity)
		copy(buf, payload)
	}
	if !i.module.Memory().Write(ptr, buf) {
		release()
		return 0, nil, fmt.Errorf("failed to write %d bytes to guest memory at 0x%x", len(buf), ptr)
	}
	return ptr, release, nil
}

func (i *Instance) call(ctx context.Context, export string, params ...uint64) (bool, error) {
	results, err := i.module.ExportedFunction(export).Call(ctx, params...)
	if err != nil {
		return false, fmt.Errorf("%s trapped: %w", export, err)
	}
	if len(results) == 0 {
		return false, fmt.Errorf("%s returned no results", export)
	}
	return interpretResult(export, api.DecodeI32(results[0]))
}

// bufferCapacity is the size acquired for a record: its length plus the
// terminator when one is written.
func bufferCapacity(length int, terminated bool) uint32 {
	if terminated {
		return uint32(length + 1) //nolint:gosec // G115: bounded by maxPayloadSize
	}
	return uint32(length) //nolint:gosec // G115: bounded by maxPayloadSize
}

func interpretResult(export string, result int32) (bool, error) {
	switch result {
	case 1:
		return true, nil
	case 0:
		return false, nil
	default:
		return false, &UnexpectedResultError{Export: export, Result: result}
	}
}
