// Package contract decodes the proof and validator records handed to
// start_verify into verification material.
package contract

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/reglet-dev/rule-verifier/domain/entities"
	domainerrors "github.com/reglet-dev/rule-verifier/domain/errors"
	"github.com/reglet-dev/rule-verifier/domain/ports"
	"github.com/reglet-dev/rule-verifier/wireformat"
)

// Compile-time interface compliance check
var _ ports.MaterialDecoder = (*Decoder)(nil)

// Record names used in decode errors.
const (
	RecordProof     = "proof"
	RecordValidator = "validator"
)

// Decoder turns raw proof and validator payloads into entities.Material.
// It is safe for concurrent use.
type Decoder struct {
	validate *validator.Validate
}

// NewDecoder creates a Decoder. Validation errors report JSON field names.
func NewDecoder() *Decoder {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Decoder{validate: v}
}

// Decode parses both records and assembles the verification material.
func (d *Decoder) Decode(proof, validatorPayload []byte) (entities.Material, error) {
	p, err := d.DecodeProof(proof)
	if err != nil {
		return entities.Material{}, err
	}
	v, err := d.DecodeValidator(validatorPayload)
	if err != nil {
		return entities.Material{}, err
	}
	return Assemble(p, v)
}

// DecodeProof parses and validates a proof record.
func (d *Decoder) DecodeProof(data []byte) (entities.ProofRecord, error) {
	var rec entities.ProofRecord
	if err := d.decode(RecordProof, data, &rec); err != nil {
		return entities.ProofRecord{}, err
	}
	return rec, nil
}

// DecodeValidator parses and validates a validator record.
func (d *Decoder) DecodeValidator(data []byte) (entities.ValidatorRecord, error) {
	var rec entities.ValidatorRecord
	if err := d.decode(RecordValidator, data, &rec); err != nil {
		return entities.ValidatorRecord{}, err
	}
	return rec, nil
}

func (d *Decoder) decode(record string, data []byte, target any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return &domainerrors.DecodeError{Record: record, Err: fmt.Errorf("empty payload")}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return &domainerrors.DecodeError{Record: record, Err: err}
	}
	if _, err := dec.Token(); !stdErrors.Is(err, io.EOF) {
		return &domainerrors.DecodeError{Record: record, Err: fmt.Errorf("trailing data after %s object", record)}
	}

	if err := d.validate.Struct(target); err != nil {
		var verrs validator.ValidationErrors
		if stdErrors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &domainerrors.DecodeError{
				Record: record,
				Field:  fe.Field(),
				Err:    fmt.Errorf("failed %q validation", fe.Tag()),
			}
		}
		return &domainerrors.DecodeError{Record: record, Err: err}
	}
	return nil
}

// Assemble converts validated records into material ready for the adapter.
// Signatures are normalized to the r||s wire form.
func Assemble(p entities.ProofRecord, v entities.ValidatorRecord) (entities.Material, error) {
	algorithm, err := entities.ParseAlgorithm(p.Algorithm)
	if err != nil {
		return entities.Material{}, &domainerrors.DecodeError{Record: RecordProof, Field: "algorithm", Err: err}
	}
	if v.Algorithm != "" {
		pinned, err := entities.ParseAlgorithm(v.Algorithm)
		if err != nil {
			return entities.Material{}, &domainerrors.DecodeError{Record: RecordValidator, Field: "algorithm", Err: err}
		}
		if pinned != algorithm {
			return entities.Material{}, &domainerrors.DecodeError{
				Record: RecordValidator,
				Field:  "algorithm",
				Err:    fmt.Errorf("validator key is %s, proof is %s", pinned, algorithm),
			}
		}
	}

	rawSig, err := hex.DecodeString(p.Signature)
	if err != nil {
		return entities.Material{}, &domainerrors.DecodeError{Record: RecordProof, Field: "signature", Err: err}
	}
	sig, err := NormalizeSignature(rawSig)
	if err != nil {
		return entities.Material{}, &domainerrors.DecodeError{Record: RecordProof, Field: "signature", Err: err}
	}

	digest, err := hex.DecodeString(p.Digest)
	if err != nil {
		return entities.Material{}, &domainerrors.DecodeError{Record: RecordProof, Field: "digest", Err: err}
	}
	if len(digest) != wireformat.DigestLength {
		return entities.Material{}, &domainerrors.DecodeError{
			Record: RecordProof,
			Field:  "digest",
			Err:    fmt.Errorf("want %d bytes, got %d", wireformat.DigestLength, len(digest)),
		}
	}

	pubkey, err := hex.DecodeString(v.PublicKey)
	if err != nil {
		return entities.Material{}, &domainerrors.DecodeError{Record: RecordValidator, Field: "public_key", Err: err}
	}
	if err := checkPublicKey(pubkey); err != nil {
		return entities.Material{}, &domainerrors.DecodeError{Record: RecordValidator, Field: "public_key", Err: err}
	}

	return entities.Material{
		Signature: sig,
		Digest:    digest,
		PublicKey: pubkey,
		Algorithm: algorithm,
	}, nil
}

// checkPublicKey verifies that the SEC1 prefix and the length agree, so the
// host derives the same length from the prefix that the guest holds.
func checkPublicKey(key []byte) error {
	if len(key) == 0 {
		return fmt.Errorf("empty key")
	}
	var want int
	switch key[0] {
	case 0x04:
		want = wireformat.UncompressedKeyLength
	case 0x02, 0x03:
		want = wireformat.CompressedKeyLength
	default:
		return fmt.Errorf("unrecognized SEC1 prefix 0x%02x", key[0])
	}
	if len(key) != want {
		return fmt.Errorf("prefix 0x%02x needs %d bytes, got %d", key[0], want, len(key))
	}
	return nil
}
