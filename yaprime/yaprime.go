// Package yaprime draws probabilistic primes from a bit-width window by
// rejection sampling: a uniform candidate in [2^low, 2^high) is accepted
// once it survives trial division by every integer up to its square root.
//
// Trial division is exponential in the bit width, so the window is capped by
// MaxBitWidth. The generator is meant for the deliberately small moduli of the
// textbook RSA benchmark, not for real keys.
//
// Example:
//
//	gen, err := yaprime.NewGenerator(10, 11, nil)
//	if err != nil {
//	    log.Fatalf("bad window: %v", err)
//	}
//
//	p, err := gen.Generate() // 1024 <= p < 2048
package yaprime

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"net/http"

	"github.com/YaCodeDev/GoYaRSABench/yaerrors"
)

const (
	// MaxBitWidth is the widest window trial division is allowed to search.
	MaxBitWidth = 40

	// DefaultMaxAttempts bounds the number of candidates drawn by a single Generate call.
	DefaultMaxAttempts = 1 << 20
)

var (
	bigOne = big.NewInt(1)
	bigTwo = big.NewInt(2)
)

// GeneratorOpts tunes a Generator.
//   - Reader: randomness source; crypto/rand.Reader if nil.
//   - MaxAttempts: candidate ceiling per Generate call; DefaultMaxAttempts if <= 0.
type GeneratorOpts struct {
	Reader      io.Reader
	MaxAttempts int
}

// Generator produces primes uniformly drawn from [2^low, 2^high).
// It is not safe for concurrent use when its Reader is not.
type Generator struct {
	low         uint
	high        uint
	base        *big.Int
	span        *big.Int
	reader      io.Reader
	maxAttempts int
}

// NewGenerator validates the window and returns a Generator for it.
//
// The window must satisfy low < high <= MaxBitWidth and must contain at least
// one prime, otherwise Generate could never terminate. Violations are reported
// as yaerrors.ErrConfiguration.
func NewGenerator(low, high uint, opts *GeneratorOpts) (*Generator, yaerrors.Error) {
	if low >= high {
		return nil, yaerrors.Configuration(
			fmt.Sprintf("[PRIME] empty bit-width window [2^%d, 2^%d)", low, high),
		)
	}

	if high > MaxBitWidth {
		return nil, yaerrors.Configuration(
			fmt.Sprintf("[PRIME] bit width %d exceeds the trial-division limit %d", high, MaxBitWidth),
		)
	}

	base := new(big.Int).Lsh(bigOne, low)
	limit := new(big.Int).Lsh(bigOne, high)

	if FirstPrimeIn(base, limit) == nil {
		return nil, yaerrors.Configuration(
			fmt.Sprintf("[PRIME] window [2^%d, 2^%d) contains no prime", low, high),
		)
	}

	gen := &Generator{
		low:         low,
		high:        high,
		base:        base,
		span:        new(big.Int).Sub(limit, base),
		reader:      rand.Reader,
		maxAttempts: DefaultMaxAttempts,
	}

	if opts != nil {
		if opts.Reader != nil {
			gen.reader = opts.Reader
		}

		if opts.MaxAttempts > 0 {
			gen.maxAttempts = opts.MaxAttempts
		}
	}

	return gen, nil
}

// Generate is a one-shot helper around NewGenerator(low, high, nil).Generate().
func Generate(low, high uint) (*big.Int, yaerrors.Error) {
	gen, err := NewGenerator(low, high, nil)
	if err != nil {
		return nil, err.Wrap("failed to create prime generator")
	}

	return gen.Generate()
}

// Window reports the configured bit widths.
func (g *Generator) Window() (low, high uint) {
	return g.low, g.high
}

// Generate draws candidates until one is prime.
// It returns yaerrors.ErrKeyGenerationExhausted after MaxAttempts rejections.
func (g *Generator) Generate() (*big.Int, yaerrors.Error) {
	for range g.maxAttempts {
		candidate, err := g.draw()
		if err != nil {
			return nil, err
		}

		if IsPrime(candidate) {
			return candidate, nil
		}
	}

	return nil, yaerrors.Exhausted(
		fmt.Sprintf("[PRIME] no prime found in %d attempts", g.maxAttempts),
	)
}

// GenerateDistinct returns count pairwise-distinct primes in draw order.
// Duplicates are redrawn and count against the same attempt ceiling.
func (g *Generator) GenerateDistinct(count int) ([]*big.Int, yaerrors.Error) {
	primes := make([]*big.Int, 0, count)

	for attempts := 0; len(primes) < count; attempts++ {
		if attempts >= g.maxAttempts {
			return nil, yaerrors.Exhausted(
				fmt.Sprintf("[PRIME] %d distinct primes not found in %d attempts", count, g.maxAttempts),
			)
		}

		p, err := g.Generate()
		if err != nil {
			return nil, err.Wrap("failed to generate distinct primes")
		}

		if !containsInt(primes, p) {
			primes = append(primes, p)
		}
	}

	return primes, nil
}

// draw returns a uniform integer in [2^low, 2^high).
func (g *Generator) draw() (*big.Int, yaerrors.Error) {
	offset, err := RandInt(g.reader, g.span)
	if err != nil {
		return nil, yaerrors.FromError(
			http.StatusInternalServerError,
			err,
			"[PRIME] failed to read random candidate",
		)
	}

	return offset.Add(offset, g.base), nil
}

// RandInt returns a uniform integer in [0, limit) read from r by rejection
// sampling over the smallest byte string that can hold limit-1. Every byte
// comes from r, so a deterministic reader gives a deterministic draw.
func RandInt(r io.Reader, limit *big.Int) (*big.Int, error) {
	if limit.Sign() <= 0 {
		return nil, yaerrors.Invariant("[PRIME] random limit must be positive")
	}

	const bitsPerByte = 8

	bitLen := new(big.Int).Sub(limit, bigOne).BitLen()
	if bitLen == 0 {
		return new(big.Int), nil
	}

	buf := make([]byte, (bitLen+bitsPerByte-1)/bitsPerByte)

	topBits := uint(bitLen % bitsPerByte)
	if topBits == 0 {
		topBits = bitsPerByte
	}

	n := new(big.Int)

	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}

		buf[0] &= byte(1<<topBits - 1)

		if n.SetBytes(buf).Cmp(limit) < 0 {
			return n, nil
		}
	}
}

// IsPrime reports whether n is prime by trial division over 2..=floor(sqrt(n)).
// Values <= 1 are never prime.
func IsPrime(n *big.Int) bool {
	if n.Cmp(bigOne) <= 0 {
		return false
	}

	limit := new(big.Int).Sqrt(n)
	divisor := new(big.Int).Set(bigTwo)
	rem := new(big.Int)

	for divisor.Cmp(limit) <= 0 {
		if rem.Rem(n, divisor).Sign() == 0 {
			return false
		}

		divisor.Add(divisor, bigOne)
	}

	return true
}

// FirstPrimeIn returns the smallest prime p with from <= p < to, or nil.
func FirstPrimeIn(from, to *big.Int) *big.Int {
	for c := new(big.Int).Set(from); c.Cmp(to) < 0; c.Add(c, bigOne) {
		if IsPrime(c) {
			return new(big.Int).Set(c)
		}
	}

	return nil
}

func containsInt(values []*big.Int, v *big.Int) bool {
	for _, existing := range values {
		if existing.Cmp(v) == 0 {
			return true
		}
	}

	return false
}
