package schema

import "errors"

// The error taxonomy callers match against. Every public entrypoint in pkg/engine
// returns one of these (wrapped with positional context) rather than an ad
// hoc error, so callers can dispatch on errors.Is.
var (
	// ErrMagicMismatch is returned when a Magic field's bytes don't match
	// the declared literal.
	ErrMagicMismatch = errors.New("bin2json: magic mismatch")
	// ErrIncomplete is returned when a read ran out of bits.
	ErrIncomplete = errors.New("bin2json: incomplete input")
	// ErrEndNotFound is returned when a BytesSize::EndWith sentinel was
	// never found before the input was exhausted.
	ErrEndNotFound = errors.New("bin2json: end sentinel not found")
	// ErrByKeyNotFound is returned when a by/start_key/end_key reference
	// names a field that hasn't been produced.
	ErrByKeyNotFound = errors.New("bin2json: referenced field not found")
	// ErrLengthTargetIsInvalid is returned when a referenced field's value
	// can't be coerced to the integer the reference needs.
	ErrLengthTargetIsInvalid = errors.New("bin2json: referenced field is not a valid length")
	// ErrEnumKeyNotFound is returned when no KeyRangeMap entry matches an
	// Enum's dispatch key.
	ErrEnumKeyNotFound = errors.New("bin2json: enum key not found")
	// ErrUtf8 is returned when a String field's bytes are not valid UTF-8.
	ErrUtf8 = errors.New("bin2json: invalid utf-8")
	// ErrChecksumError is returned when a checksum verification fails on
	// read.
	ErrChecksumError = errors.New("bin2json: checksum mismatch")
	// ErrVerifyError is returned when a Sign field's signature doesn't
	// verify, or the verify operation itself fails.
	ErrVerifyError = errors.New("bin2json: signature verification failed")
	// ErrDecryptError is returned when an Encrypt field's ciphertext fails
	// to decrypt.
	ErrDecryptError = errors.New("bin2json: decrypt failed")
	// ErrTypeError is returned when write input JSON has the wrong shape
	// for the target type.
	ErrTypeError = errors.New("bin2json: value has the wrong shape for this type")
	// ErrValueOverflow is returned when a numeric write input doesn't fit
	// the target variant's capacity.
	ErrValueOverflow = errors.New("bin2json: value overflows target type")
	// ErrBytesSizeError is returned when a write's encoded length doesn't
	// match its declared BytesSize.
	ErrBytesSizeError = errors.New("bin2json: encoded size does not match declared size")
	// ErrLengthError is returned when an array write's element count
	// doesn't match its declared Length.
	ErrLengthError = errors.New("bin2json: array length does not match declared length")
	// ErrByError is returned when a By/Enum-sized field is written outside
	// the struct context that can back-patch it.
	ErrByError = errors.New("bin2json: by/enum-sized field written outside a struct")
	// ErrEnumError is returned when no Enum variant matches on write, or a
	// reverse lookup for a back-patched enum key is ambiguous.
	ErrEnumError = errors.New("bin2json: no matching enum variant")
	// ErrMissField is returned when struct back-patching fails to resolve
	// a field after all passes.
	ErrMissField = errors.New("bin2json: field could not be resolved")
	// ErrEvalExpr is returned when a converter expression fails to
	// evaluate or fails validation.
	ErrEvalExpr = errors.New("bin2json: converter expression failed")
	// ErrEncryptError is returned when an Encrypt field's plaintext fails
	// to encrypt.
	ErrEncryptError = errors.New("bin2json: encrypt failed")
	// ErrSignError is returned when a Sign field's signature can't be
	// computed.
	ErrSignError = errors.New("bin2json: sign failed")
)
