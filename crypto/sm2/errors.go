package sm2

import (
	"github.com/cockroachdb/errors"
)

// Error categories. Every error returned by this package matches exactly one
// of them under errors.Is. A false verdict from Verify is not an error.
var (
	ErrInvalidArgument = errors.New("sm2: invalid argument")
	ErrRandomness      = errors.New("sm2: randomness failure")
	ErrValidation      = errors.New("sm2: validation failure")
)

var (
	ErrNilKey           = errors.Mark(errors.New("sm2: missing key"), ErrInvalidArgument)
	ErrUIDTooLong       = errors.Mark(errors.New("sm2: the uid is too long"), ErrInvalidArgument)
	ErrInvalidSignature = errors.Mark(errors.New("sm2: invalid signature"), ErrInvalidArgument)

	ErrRetriesExhausted = errors.Mark(errors.New("sm2: signing retries exhausted"), ErrRandomness)

	ErrOutOfRange      = errors.Mark(errors.New("sm2: value out of range"), ErrValidation)
	ErrPointNotOnCurve = errors.Mark(errors.New("sm2: point is not on the curve"), ErrValidation)
	ErrWrongOrder      = errors.Mark(errors.New("sm2: point does not have order n"), ErrValidation)
	ErrKeyMismatch     = errors.Mark(errors.New("sm2: private key does not match public key"), ErrValidation)
	ErrInfinity        = errors.Mark(errors.New("sm2: point at infinity"), ErrValidation)
)

// randomnessError wraps a failed RNG read.
func randomnessError(err error) error {
	return errors.Mark(errors.Wrap(err, "sm2: reading randomness"), ErrRandomness)
}
