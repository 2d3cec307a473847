package yaprime_test

import (
	"crypto/rand"
	"errors"
	"math/big"
	"testing"

	"github.com/YaCodeDev/GoYaRSABench/yaerrors"
	"github.com/YaCodeDev/GoYaRSABench/yaprime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	clear(p)

	return len(p), nil
}

type failingReader struct{}

var errReaderBroken = errors.New("reader broken")

func (failingReader) Read([]byte) (int, error) {
	return 0, errReaderBroken
}

func TestIsPrime_Table(t *testing.T) {
	t.Parallel()

	cases := map[int64]bool{
		-7:   false,
		0:    false,
		1:    false,
		2:    true,
		3:    true,
		4:    false,
		9:    false,
		25:   false,
		1021: true,
		1024: false,
		2003: true,
		2047: false, // 23 * 89
		2039: true,
	}

	for n, want := range cases {
		assert.Equal(t, want, yaprime.IsPrime(big.NewInt(n)), "n=%d", n)
	}
}

func TestGenerator_ThousandPrimesInDefaultWindow(t *testing.T) {
	t.Parallel()

	gen, err := yaprime.NewGenerator(10, 11, nil)
	require.Nil(t, err)

	low := big.NewInt(1 << 10)
	high := big.NewInt(1 << 11)

	for range 1000 {
		p, err := gen.Generate()
		require.Nil(t, err)

		assert.True(t, p.ProbablyPrime(20), "composite returned: %s", p)
		assert.True(t, p.Cmp(low) >= 0 && p.Cmp(high) < 0, "out of window: %s", p)
	}
}

func TestGenerate_PackageHelper(t *testing.T) {
	t.Parallel()

	p, err := yaprime.Generate(12, 13)
	require.Nil(t, err)

	assert.True(t, p.ProbablyPrime(20))
	assert.Equal(t, 13, p.BitLen())
}

func TestNewGenerator_InvalidWindows(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		low, high uint
	}{
		{"[Window] zero width", 10, 10},
		{"[Window] inverted", 11, 10},
		{"[Window] only the integer one", 0, 1},
		{"[Window] too wide for trial division", 10, yaprime.MaxBitWidth + 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			gen, err := yaprime.NewGenerator(tc.low, tc.high, nil)

			assert.Nil(t, gen)
			require.NotNil(t, err)
			assert.ErrorIs(t, err, yaerrors.ErrConfiguration)
		})
	}
}

func TestGenerator_ExhaustsOnCompositeStream(t *testing.T) {
	t.Parallel()

	// A zero stream always yields 2^10, which is composite.
	gen, err := yaprime.NewGenerator(10, 11, &yaprime.GeneratorOpts{
		Reader:      zeroReader{},
		MaxAttempts: 32,
	})
	require.Nil(t, err)

	p, err := gen.Generate()

	assert.Nil(t, p)
	require.NotNil(t, err)
	assert.ErrorIs(t, err, yaerrors.ErrKeyGenerationExhausted)
}

func TestGenerator_ReaderFailure(t *testing.T) {
	t.Parallel()

	gen, err := yaprime.NewGenerator(10, 11, &yaprime.GeneratorOpts{Reader: failingReader{}})
	require.Nil(t, err)

	_, err = gen.Generate()

	require.NotNil(t, err)
	assert.ErrorIs(t, err, errReaderBroken)
}

func TestGenerator_GenerateDistinct(t *testing.T) {
	t.Parallel()

	t.Run("[Distinct] both primes of [2, 4)", func(t *testing.T) {
		t.Parallel()

		gen, err := yaprime.NewGenerator(1, 2, nil)
		require.Nil(t, err)

		primes, err := gen.GenerateDistinct(2)
		require.Nil(t, err)
		require.Len(t, primes, 2)

		assert.NotEqual(t, 0, primes[0].Cmp(primes[1]))
	})

	t.Run("[Distinct] more primes than the window holds", func(t *testing.T) {
		t.Parallel()

		gen, err := yaprime.NewGenerator(1, 2, &yaprime.GeneratorOpts{MaxAttempts: 64})
		require.Nil(t, err)

		_, err = gen.GenerateDistinct(3)

		require.NotNil(t, err)
		assert.ErrorIs(t, err, yaerrors.ErrKeyGenerationExhausted)
	})
}

func TestFirstPrimeIn(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(1031), yaprime.FirstPrimeIn(big.NewInt(1024), big.NewInt(2048)).Int64())
	assert.Nil(t, yaprime.FirstPrimeIn(big.NewInt(24), big.NewInt(29)))
}

func TestGenerator_Window(t *testing.T) {
	t.Parallel()

	gen, err := yaprime.NewGenerator(10, 11, nil)
	require.Nil(t, err)

	low, high := gen.Window()

	assert.Equal(t, uint(10), low)
	assert.Equal(t, uint(11), high)
}

func TestRandInt(t *testing.T) {
	t.Parallel()

	t.Run("[Range] draws stay below limit", func(t *testing.T) {
		t.Parallel()

		limit := big.NewInt(1000)
		seen := make(map[int64]struct{})

		for range 2000 {
			n, err := yaprime.RandInt(rand.Reader, limit)
			require.NoError(t, err)

			assert.True(t, n.Sign() >= 0 && n.Cmp(limit) < 0, "out of range: %s", n)

			seen[n.Int64()] = struct{}{}
		}

		assert.Greater(t, len(seen), 500, "draws look far from uniform")
	})

	t.Run("[Edge] limit one always yields zero", func(t *testing.T) {
		t.Parallel()

		n, err := yaprime.RandInt(failingReader{}, big.NewInt(1))
		require.NoError(t, err)

		assert.Equal(t, 0, n.Sign())
	})

	t.Run("[Edge] non-positive limit", func(t *testing.T) {
		t.Parallel()

		_, err := yaprime.RandInt(zeroReader{}, big.NewInt(0))

		assert.ErrorIs(t, err, yaerrors.ErrInvariantViolation)
	})

	t.Run("[Deterministic] zero stream yields zero", func(t *testing.T) {
		t.Parallel()

		n, err := yaprime.RandInt(zeroReader{}, big.NewInt(1<<20))
		require.NoError(t, err)

		assert.Equal(t, 0, n.Sign())
	})
}
