package entities

// ProofRecord is the decoded form of the proof payload handed to start_verify.
// Binary fields are hex encoded so the payload never contains a NUL byte.
type ProofRecord struct {
	// Algorithm names the signature scheme ("p256" or "secp256k1").
	Algorithm string `json:"algorithm" validate:"required,oneof=p256 secp256k1" jsonschema:"enum=p256,enum=secp256k1"`

	// Signature is the hex encoded signature, raw r||s (64 bytes) or ASN.1 DER.
	Signature string `json:"signature" validate:"required,hexadecimal" jsonschema:"pattern=^[0-9a-fA-F]+$"`

	// Digest is the hex encoded 32 byte message digest that was signed.
	Digest string `json:"digest" validate:"required,hexadecimal,len=64" jsonschema:"minLength=64,maxLength=64"`
}

// ValidatorRecord is the decoded form of the validator identity payload.
type ValidatorRecord struct {
	// Algorithm optionally pins the validator key to a scheme. When present it
	// must match the proof's algorithm.
	Algorithm string `json:"algorithm,omitempty" validate:"omitempty,oneof=p256 secp256k1" jsonschema:"enum=p256,enum=secp256k1"`

	// PublicKey is the hex encoded SEC1 public key (33 or 65 bytes).
	PublicKey string `json:"public_key" validate:"required,hexadecimal" jsonschema:"pattern=^[0-9a-fA-F]+$"`
}
