package hostfuncs

import (
	"errors"
)

// Errors raised while reading verification material from guest memory.
// They never cross the boundary; the capability maps them to
// wireformat.ResultMalformed.
var (
	ErrNullAddress      = errors.New("null address")
	ErrUnreadableMemory = errors.New("guest memory out of range")
	ErrPublicKeyFormat  = errors.New("unrecognized public key encoding")
	ErrPublicKeyInvalid = errors.New("public key is not on the curve")
	ErrSignatureFormat  = errors.New("malformed signature")
	ErrDigestFormat     = errors.New("malformed digest")
)
