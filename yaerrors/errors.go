package yaerrors

import "errors"

// ErrTeapot is reported when a method is called on a nil error, which means the
// caller dereferenced an error it never checked.
var ErrTeapot = errors.New("backend developer is a teapot")

// Error kinds of the textbook RSA engine. Match them with errors.Is.
var (
	// ErrConfiguration: a bit-width range without primes, a non-positive batch size,
	// a modulus too small to hold a byte and similar setup mistakes.
	ErrConfiguration = errors.New("configuration error")

	// ErrKeyGenerationExhausted: a bounded search (prime or coprime exponent) hit its attempt ceiling.
	ErrKeyGenerationExhausted = errors.New("key generation exhausted")

	// ErrInvariantViolation: a contract that correct key/stream pairing guarantees was broken,
	// e.g. a cipher unit >= n presented for decryption.
	ErrInvariantViolation = errors.New("invariant violation")
)
