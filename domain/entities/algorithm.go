package entities

import "fmt"

// Algorithm selects the signature scheme a verification request is checked against.
// The numeric value is the wire code exchanged with the host capability and must
// never be renumbered without a matching host update.
type Algorithm int32

const (
	// AlgorithmUnknown is the zero value and is never sent to the host.
	AlgorithmUnknown Algorithm = 0

	// P256 is ECDSA over NIST P-256 (secp256r1).
	P256 Algorithm = 1

	// Secp256k1 is ECDSA over the Koblitz curve secp256k1.
	Secp256k1 Algorithm = 2
)

// SupportedAlgorithms lists every selector the shim understands, in wire-code order.
var SupportedAlgorithms = []Algorithm{P256, Secp256k1}

// Code returns the wire code passed to ecdsa_verify.
func (a Algorithm) Code() int32 {
	return int32(a)
}

// Supported reports whether a is one of the closed set of selectors.
func (a Algorithm) Supported() bool {
	return a == P256 || a == Secp256k1
}

// String returns the canonical record name of the algorithm.
func (a Algorithm) String() string {
	switch a {
	case P256:
		return "p256"
	case Secp256k1:
		return "secp256k1"
	default:
		return fmt.Sprintf("algorithm(%d)", int32(a))
	}
}

// AlgorithmFromCode maps a wire code back to its selector.
func AlgorithmFromCode(code int32) (Algorithm, bool) {
	a := Algorithm(code)
	if !a.Supported() {
		return AlgorithmUnknown, false
	}
	return a, true
}

// ParseAlgorithm parses a canonical record name as returned by String. The
// accepted names are exactly the enum published in the record schemas.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch name {
	case "p256":
		return P256, nil
	case "secp256k1":
		return Secp256k1, nil
	default:
		return AlgorithmUnknown, fmt.Errorf("unsupported algorithm %q", name)
	}
}
