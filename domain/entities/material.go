package entities

// Material is the unit handed to the signature verification adapter.
// The slices may alias guest memory owned by the caller; Material values are
// rebuilt for every verification and must never be retained.
type Material struct {
	Signature []byte
	Digest    []byte
	PublicKey []byte
	Algorithm Algorithm
}
