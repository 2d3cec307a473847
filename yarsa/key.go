// Package yarsa is a from-scratch textbook RSA engine that works one byte at a time.
//
// Key material comes from two trial-division primes (package yaprime). The public
// exponent is drawn at random until it is coprime to Euler's totient, and the private
// exponent is its modular inverse by the extended Euclidean algorithm. Every plaintext
// byte is then mapped independently to m^e mod n, so a stream of N bytes becomes N
// cipher units. There is no padding and no integrity check. A stream decrypted with
// the wrong key yields garbage, not an error.
//
// The moduli used here (~20 bits) are deliberately insecure. This package is a
// benchmarking and teaching artifact, not a cryptographic primitive.
//
// Example:
//
//	key, err := yarsa.GenerateKeyPair(yarsa.KeyOpts{BitWidthLow: 10, BitWidthHigh: 11})
//	if err != nil {
//	    log.Fatalf("keygen failed: %v", err)
//	}
//
//	stream := yarsa.Encrypt(&key.PublicKey, []byte("hello"))
//	plain, err := yarsa.Decrypt(key, stream)
package yarsa

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"net/http"

	"github.com/YaCodeDev/GoYaRSABench/yaerrors"
	"github.com/YaCodeDev/GoYaRSABench/yaprime"
)

const (
	// MaxUnit is the largest plaintext unit value (one byte).
	MaxUnit = 0xFF

	DefaultBitWidthLow         = 10
	DefaultBitWidthHigh        = 11
	DefaultMaxExponentAttempts = 1 << 16
)

// PublicKey is the encrypting half {n, e}.
type PublicKey struct {
	N *big.Int
	E *big.Int
}

// KeyPair holds {n, e, d, phi}. D and Phi never leave the process that derived them.
type KeyPair struct {
	PublicKey

	D   *big.Int
	Phi *big.Int
}

// KeyOpts holds parameters for GenerateKeyPair.
//   - BitWidthLow, BitWidthHigh: primes are drawn from [2^low, 2^high). Each bound left at 0
//     takes its default (10 and 11); a bound that is set is never changed.
//   - Seed: optional; when set all randomness comes from a DeterministicReader so the
//     same seed always yields the same key pair.
//   - MaxPrimeAttempts, MaxExponentAttempts: ceilings of the bounded searches; defaults if <= 0.
type KeyOpts struct {
	BitWidthLow         uint
	BitWidthHigh        uint
	Seed                []byte
	MaxPrimeAttempts    int
	MaxExponentAttempts int
}

// DeriveOpts tunes Derive.
//   - Reader: randomness for the public exponent; crypto/rand.Reader if nil.
//   - MaxExponentAttempts: ceiling for the coprime search; DefaultMaxExponentAttempts if <= 0.
type DeriveOpts struct {
	Reader              io.Reader
	MaxExponentAttempts int
}

// GenerateKeyPair is the single entry point for key material: it draws two distinct
// primes from the configured window and derives {n, e, d, phi} from them.
func GenerateKeyPair(opts KeyOpts) (*KeyPair, yaerrors.Error) {
	if opts.BitWidthLow == 0 {
		opts.BitWidthLow = DefaultBitWidthLow
	}

	if opts.BitWidthHigh == 0 {
		opts.BitWidthHigh = DefaultBitWidthHigh
	}

	var reader io.Reader = rand.Reader
	if len(opts.Seed) > 0 {
		reader = NewDeterministicReader(opts.Seed)
	}

	gen, err := yaprime.NewGenerator(opts.BitWidthLow, opts.BitWidthHigh, &yaprime.GeneratorOpts{
		Reader:      reader,
		MaxAttempts: opts.MaxPrimeAttempts,
	})
	if err != nil {
		return nil, err.Wrap("[RSA] failed to create prime generator")
	}

	const primeCount = 2

	primes, err := gen.GenerateDistinct(primeCount)
	if err != nil {
		return nil, err.Wrap("[RSA] failed to draw p and q")
	}

	key, err := Derive(primes[0], primes[1], &DeriveOpts{
		Reader:              reader,
		MaxExponentAttempts: opts.MaxExponentAttempts,
	})
	if err != nil {
		return nil, err.Wrap("[RSA] failed to derive key pair")
	}

	return key, nil
}

// Derive builds a key pair from two distinct primes:
//  1. n = p * q
//  2. phi = (p-1) * (q-1)
//  3. e = random in [2, phi-1] with gcd(e, phi) = 1
//  4. d = e^-1 mod phi
//
// p == q, non-prime inputs and n <= MaxUnit are configuration errors.
func Derive(p, q *big.Int, opts *DeriveOpts) (*KeyPair, yaerrors.Error) {
	n, phi, err := modulus(p, q)
	if err != nil {
		return nil, err
	}

	reader := io.Reader(rand.Reader)
	attempts := DefaultMaxExponentAttempts

	if opts != nil {
		if opts.Reader != nil {
			reader = opts.Reader
		}

		if opts.MaxExponentAttempts > 0 {
			attempts = opts.MaxExponentAttempts
		}
	}

	e, err := ChooseExponent(phi, reader, attempts)
	if err != nil {
		return nil, err.Wrap("[RSA] failed to choose public exponent")
	}

	return withExponent(n, phi, e)
}

// DeriveWithExponent is Derive with a caller-chosen public exponent.
// e must satisfy 1 < e < phi and gcd(e, phi) = 1.
func DeriveWithExponent(p, q, e *big.Int) (*KeyPair, yaerrors.Error) {
	n, phi, err := modulus(p, q)
	if err != nil {
		return nil, err
	}

	if e == nil || e.Cmp(bigOne) <= 0 || e.Cmp(phi) >= 0 {
		return nil, yaerrors.Configuration(fmt.Sprintf("[RSA] exponent %v outside (1, %s)", e, phi))
	}

	if GCD(e, phi).Cmp(bigOne) != 0 {
		return nil, yaerrors.Configuration(fmt.Sprintf("[RSA] exponent %s is not coprime to %s", e, phi))
	}

	return withExponent(n, phi, new(big.Int).Set(e))
}

// ChooseExponent draws e uniformly from [2, phi-1] until gcd(e, phi) = 1.
// It fails with yaerrors.ErrKeyGenerationExhausted after maxAttempts draws.
func ChooseExponent(phi *big.Int, r io.Reader, maxAttempts int) (*big.Int, yaerrors.Error) {
	span := new(big.Int).Sub(phi, bigTwo)
	if span.Sign() <= 0 {
		return nil, yaerrors.Configuration("[RSA] totient too small to hold an exponent: " + phi.String())
	}

	for range maxAttempts {
		e, err := yaprime.RandInt(r, span)
		if err != nil {
			return nil, yaerrors.FromError(http.StatusInternalServerError, err, "[RSA] failed to draw exponent")
		}

		e.Add(e, bigTwo)

		if GCD(e, phi).Cmp(bigOne) == 0 {
			return e, nil
		}
	}

	return nil, yaerrors.Exhausted(
		fmt.Sprintf("[RSA] no exponent coprime to %s in %d attempts", phi, maxAttempts),
	)
}

// Validate checks the invariants that do not need p and q:
// n > MaxUnit, 1 < e < phi, gcd(e, phi) = 1, 0 <= d < phi and e*d mod phi = 1.
func (k *KeyPair) Validate() yaerrors.Error {
	if k == nil || k.N == nil || k.E == nil || k.D == nil || k.Phi == nil {
		return yaerrors.Invariant("[RSA] incomplete key pair")
	}

	if k.N.Cmp(big.NewInt(MaxUnit)) <= 0 {
		return yaerrors.Invariant("[RSA] modulus cannot hold a byte")
	}

	if k.E.Cmp(bigOne) <= 0 || k.E.Cmp(k.Phi) >= 0 {
		return yaerrors.Invariant("[RSA] public exponent out of range")
	}

	if GCD(k.E, k.Phi).Cmp(bigOne) != 0 {
		return yaerrors.Invariant("[RSA] public exponent not coprime to phi")
	}

	if k.D.Sign() < 0 || k.D.Cmp(k.Phi) >= 0 {
		return yaerrors.Invariant("[RSA] private exponent out of range")
	}

	ed := new(big.Int).Mul(k.E, k.D)
	if ed.Mod(ed, k.Phi).Cmp(bigOne) != 0 {
		return yaerrors.Invariant("[RSA] e*d is not 1 mod phi")
	}

	return nil
}

// modulus validates p and q and returns n and phi.
func modulus(p, q *big.Int) (*big.Int, *big.Int, yaerrors.Error) {
	if p == nil || q == nil {
		return nil, nil, yaerrors.Configuration("[RSA] p and q are required")
	}

	if p.Cmp(q) == 0 {
		return nil, nil, yaerrors.Configuration("[RSA] p and q must differ")
	}

	if !yaprime.IsPrime(p) || !yaprime.IsPrime(q) {
		return nil, nil, yaerrors.Configuration(fmt.Sprintf("[RSA] %s and %s must both be prime", p, q))
	}

	n := new(big.Int).Mul(p, q)
	if n.Cmp(big.NewInt(MaxUnit)) <= 0 {
		return nil, nil, yaerrors.Configuration(
			fmt.Sprintf("[RSA] modulus %s cannot hold a byte", n),
		)
	}

	phi := new(big.Int).Mul(
		new(big.Int).Sub(p, bigOne),
		new(big.Int).Sub(q, bigOne),
	)

	return n, phi, nil
}

func withExponent(n, phi, e *big.Int) (*KeyPair, yaerrors.Error) {
	d, err := ModInverse(e, phi)
	if err != nil {
		return nil, err.Wrap("[RSA] failed to invert public exponent")
	}

	return &KeyPair{
		PublicKey: PublicKey{N: n, E: e},
		D:         d,
		Phi:       phi,
	}, nil
}
