package entities

// Outcome is the result of a single verification.
type Outcome int

const (
	// Invalid means the host capability answered 0: the signature does not verify.
	Invalid Outcome = iota

	// Valid means the host capability answered exactly 1.
	Valid

	// Indeterminate covers every other host answer (negative error codes,
	// unsupported selectors). The boolean API reports it as invalid.
	Indeterminate
)

// OutcomeFromResult classifies a raw ecdsa_verify result code.
func OutcomeFromResult(code int32) Outcome {
	switch code {
	case 1:
		return Valid
	case 0:
		return Invalid
	default:
		return Indeterminate
	}
}

// Valid reports whether the outcome is exactly Valid.
func (o Outcome) Valid() bool {
	return o == Valid
}

// Int returns the value start_verify hands back to the host (1 or 0).
func (o Outcome) Int() int32 {
	if o == Valid {
		return 1
	}
	return 0
}

func (o Outcome) String() string {
	switch o {
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	default:
		return "indeterminate"
	}
}
