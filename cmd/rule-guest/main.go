//go:build wasip1

// Command rule-guest is the verification guest. Build it as a WASI reactor:
//
//	GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared -o rule-guest.wasm ./cmd/rule-guest
//
// The module exports allocate, deallocate, start_verify and start_verify_len
// and imports ecdsa_verify and log_message from the "env" module.
package main

import (
	_ "github.com/reglet-dev/rule-verifier/application/guest" // Registers the start_verify exports
)

func main() {}
