package yabaseline

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"fmt"
	"io"
	"math/big"
	"net/http"

	"github.com/YaCodeDev/GoYaRSABench/yaerrors"
	"github.com/YaCodeDev/GoYaRSABench/yarsa"
)

const (
	DefaultRSABits     = 2048
	DefaultRSAExponent = 65537

	minRSABits       = 1024
	primeRounds      = 20
	primeSearchSteps = 1 << 12
)

// RSAOAEP encrypts with RSA OAEP-SHA256. Input is split into chunks of
// Size()-2*32-2 bytes (190 for a 2048-bit key) and every chunk becomes one
// Size()-byte block.
type RSAOAEP struct {
	private *rsa.PrivateKey
}

// NewRSAOAEP generates a key of the given size. With a non-empty seed the key is
// derived from a yarsa.DeterministicReader and is identical for identical seeds;
// otherwise crypto/rand is used. bits <= 0 means DefaultRSABits.
func NewRSAOAEP(bits int, seed []byte) (*RSAOAEP, yaerrors.Error) {
	if bits <= 0 {
		bits = DefaultRSABits
	}

	if bits < minRSABits || bits%2 != 0 {
		return nil, yaerrors.Configuration(
			fmt.Sprintf("[RSA-OAEP] bits must be even and >= %d, got %d", minRSABits, bits),
		)
	}

	if len(seed) == 0 {
		private, err := rsa.GenerateKey(rand.Reader, bits)
		if err != nil {
			return nil, yaerrors.FromError(
				http.StatusInternalServerError,
				err,
				"[RSA-OAEP] failed to generate key",
			)
		}

		return &RSAOAEP{private: private}, nil
	}

	private, err := deterministicRSAKey(yarsa.NewDeterministicReader(seed), bits)
	if err != nil {
		return nil, err.Wrap("[RSA-OAEP] failed to derive seeded key")
	}

	return &RSAOAEP{private: private}, nil
}

func (r *RSAOAEP) Name() string {
	return fmt.Sprintf("rsa-%d-oaep-sha256", r.private.N.BitLen())
}

// PublicKey exposes the encrypting half.
func (r *RSAOAEP) PublicKey() *rsa.PublicKey {
	return &r.private.PublicKey
}

// ChunkSize is the largest plaintext slice a single OAEP block can carry.
func (r *RSAOAEP) ChunkSize() int {
	return r.private.Size() - 2*sha256.Size - 2
}

func (r *RSAOAEP) Encrypt(plain []byte) ([]byte, yaerrors.Error) {
	chunk := r.ChunkSize()
	out := make([]byte, 0, (len(plain)/chunk+1)*r.private.Size())

	for start := 0; start < len(plain); start += chunk {
		end := min(start+chunk, len(plain))

		block, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, &r.private.PublicKey, plain[start:end], nil)
		if err != nil {
			return nil, yaerrors.FromError(
				http.StatusInternalServerError,
				err,
				fmt.Sprintf("[RSA-OAEP] failed to encrypt chunk at %d", start),
			)
		}

		out = append(out, block...)
	}

	return out, nil
}

func (r *RSAOAEP) Decrypt(sealed []byte) ([]byte, yaerrors.Error) {
	size := r.private.Size()

	if len(sealed)%size != 0 {
		return nil, yaerrors.FromString(
			http.StatusBadRequest,
			fmt.Sprintf("[RSA-OAEP] ciphertext length %d is not a multiple of %d", len(sealed), size),
		)
	}

	out := make([]byte, 0, len(sealed)/size*r.ChunkSize())

	for start := 0; start < len(sealed); start += size {
		plain, err := rsa.DecryptOAEP(sha256.New(), nil, r.private, sealed[start:start+size], nil)
		if err != nil {
			return nil, yaerrors.FromError(
				http.StatusBadRequest,
				err,
				fmt.Sprintf("[RSA-OAEP] failed to decrypt block at %d", start),
			)
		}

		out = append(out, plain...)
	}

	return out, nil
}

// deterministicRSAKey draws p and q of bits/2 each with the two top bits set, so
// n always has exactly bits bits, and retries until gcd(e, p-1) = gcd(e, q-1) = 1.
func deterministicRSAKey(r io.Reader, bits int) (*rsa.PrivateKey, yaerrors.Error) {
	e := big.NewInt(DefaultRSAExponent)
	one := big.NewInt(1)

	coprime := func(prime *big.Int) bool {
		return yarsa.GCD(e, new(big.Int).Sub(prime, one)).Cmp(one) == 0
	}

	var p, q *big.Int

	for p == nil || !coprime(p) {
		candidate, err := seededPrime(r, bits/2)
		if err != nil {
			return nil, err
		}

		p = candidate
	}

	for q == nil || q.Cmp(p) == 0 || !coprime(q) {
		candidate, err := seededPrime(r, bits-bits/2)
		if err != nil {
			return nil, err
		}

		q = candidate
	}

	if p.Cmp(q) < 0 {
		p, q = q, p
	}

	phi := new(big.Int).Mul(new(big.Int).Sub(p, one), new(big.Int).Sub(q, one))

	d, yaErr := yarsa.ModInverse(e, phi)
	if yaErr != nil {
		return nil, yaErr.Wrap("[RSA-OAEP] no private exponent")
	}

	private := &rsa.PrivateKey{
		PublicKey: rsa.PublicKey{
			N: new(big.Int).Mul(p, q),
			E: DefaultRSAExponent,
		},
		D:      d,
		Primes: []*big.Int{p, q},
	}

	if err := private.Validate(); err != nil {
		return nil, yaerrors.FromError(
			http.StatusInternalServerError,
			err,
			"[RSA-OAEP] failed to validate private key",
		)
	}

	private.Precompute()

	return private, nil
}

// seededPrime reads a bits-long odd candidate with its two top bits forced and
// walks upward by 2 until a probable prime is found or the bit length would grow.
func seededPrime(r io.Reader, bits int) (*big.Int, yaerrors.Error) {
	buf := make([]byte, (bits+7)/8)
	two := big.NewInt(2)

	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, yaerrors.FromError(
				http.StatusInternalServerError,
				err,
				"[RSA-OAEP] failed to read prime candidate",
			)
		}

		candidate := new(big.Int).SetBytes(buf)

		// Keep exactly bits bits, force the two top bits and oddness.
		candidate.SetBit(candidate, bits-1, 1)
		candidate.SetBit(candidate, bits-2, 1)
		candidate.SetBit(candidate, 0, 1)

		for excess := candidate.BitLen() - 1; excess >= bits; excess-- {
			candidate.SetBit(candidate, excess, 0)
		}

		for range primeSearchSteps {
			if candidate.BitLen() != bits {
				break
			}

			if candidate.ProbablyPrime(primeRounds) {
				return candidate, nil
			}

			candidate.Add(candidate, two)
		}
	}
}
