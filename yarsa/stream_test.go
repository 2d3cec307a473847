package yarsa_test

import (
	"context"
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/YaCodeDev/GoYaRSABench/yaerrors"
	"github.com/YaCodeDev/GoYaRSABench/yarsa"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKey(t testing.TB, seed string) *yarsa.KeyPair {
	t.Helper()

	key, err := yarsa.GenerateKeyPair(yarsa.KeyOpts{Seed: []byte(seed)})
	require.Nil(t, err)

	return key
}

func randomBytes(t testing.TB, n int) []byte {
	t.Helper()

	buf := make([]byte, n)

	_, err := rand.Read(buf)
	require.NoError(t, err)

	return buf
}

func TestUnit_EveryByteRoundTrips(t *testing.T) {
	t.Parallel()

	for _, seed := range []string{"unit-A", "unit-B", "unit-C"} {
		key := newKey(t, seed)

		for m := range yarsa.MaxUnit + 1 {
			c := yarsa.EncryptUnit(&key.PublicKey, byte(m))

			require.True(t, c.Sign() >= 0 && c.Cmp(key.N) < 0)

			got, err := yarsa.DecryptUnit(key, c)
			require.Nil(t, err)

			assert.Equal(t, int64(m), got.Int64(), "seed=%s m=%d", seed, m)
		}
	}
}

func TestEncryptInt(t *testing.T) {
	t.Parallel()

	key := newKey(t, "encrypt-int")

	t.Run("[Int] wide message round-trips", func(t *testing.T) {
		t.Parallel()

		m := new(big.Int).Sub(key.N, big.NewInt(2))

		c, err := yarsa.EncryptInt(&key.PublicKey, m)
		require.Nil(t, err)

		got, err := yarsa.DecryptUnit(key, c)
		require.Nil(t, err)

		assert.Equal(t, 0, m.Cmp(got))
	})

	t.Run("[Int] message outside modulus", func(t *testing.T) {
		t.Parallel()

		_, err := yarsa.EncryptInt(&key.PublicKey, key.N)

		assert.ErrorIs(t, err, yaerrors.ErrInvariantViolation)
	})
}

func TestStream_RoundTrip(t *testing.T) {
	t.Parallel()

	key := newKey(t, "stream")

	for _, size := range []int{1, 2, 255, 256, 1000} {
		data := randomBytes(t, size)

		stream := yarsa.Encrypt(&key.PublicKey, data)
		require.Len(t, stream, size)

		got, err := yarsa.Decrypt(key, stream)
		require.Nil(t, err)

		if diff := cmp.Diff(data, got); diff != "" {
			t.Fatalf("round trip mismatch for %d bytes (-want +got):\n%s", size, diff)
		}
	}
}

func TestStream_Empty(t *testing.T) {
	t.Parallel()

	key := newKey(t, "empty")

	stream := yarsa.Encrypt(&key.PublicKey, nil)
	assert.Empty(t, stream)

	got, err := yarsa.Decrypt(key, stream)
	require.Nil(t, err)
	assert.Empty(t, got)
}

func TestStream_RepeatedBytesShareUnits(t *testing.T) {
	t.Parallel()

	key := newKey(t, "repeat")

	stream := yarsa.Encrypt(&key.PublicKey, []byte("AAB"))

	assert.Equal(t, 0, stream[0].Cmp(stream[1]))
	assert.NotEqual(t, 0, stream[0].Cmp(stream[2]))
}

func TestStream_UnitOutsideModulus(t *testing.T) {
	t.Parallel()

	key := newKey(t, "invariant")

	stream := yarsa.Encrypt(&key.PublicKey, []byte("hi"))
	stream = append(stream, new(big.Int).Set(key.N))

	got, err := yarsa.Decrypt(key, stream)

	assert.Nil(t, got)
	assert.ErrorIs(t, err, yaerrors.ErrInvariantViolation)

	_, err = yarsa.Decrypt(key, yarsa.CipherStream{nil})

	assert.ErrorIs(t, err, yaerrors.ErrInvariantViolation)
}

func TestStream_WrongKeyIsSilent(t *testing.T) {
	t.Parallel()

	right := newKey(t, "right")
	wrong := newKey(t, "wrong")

	data := randomBytes(t, 512)
	stream := yarsa.Encrypt(&right.PublicKey, data)

	// Units from the larger modulus may not fit the smaller one.
	for _, c := range stream {
		if c.Cmp(wrong.N) >= 0 {
			t.Skip("cipher units exceed the wrong modulus")
		}
	}

	got, err := yarsa.Decrypt(wrong, stream)

	require.Nil(t, err)
	assert.Len(t, got, len(data))
	assert.NotEqual(t, data, got)
}

func TestStream_ParallelMatchesSequential(t *testing.T) {
	t.Parallel()

	key := newKey(t, "parallel")
	data := randomBytes(t, 777)
	ctx := context.Background()

	sequential := yarsa.Encrypt(&key.PublicKey, data)

	for _, workers := range []int{0, 1, 3, 8, 1000} {
		stream, err := yarsa.EncryptParallel(ctx, &key.PublicKey, data, workers)
		require.Nil(t, err)

		assert.True(t, sequential.Equal(stream), "workers=%d", workers)

		got, err := yarsa.DecryptParallel(ctx, key, stream, workers)
		require.Nil(t, err)

		assert.Equal(t, data, got, "workers=%d", workers)
	}
}

func TestStream_ParallelHonoursCancellation(t *testing.T) {
	t.Parallel()

	key := newKey(t, "cancel")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := yarsa.EncryptParallel(ctx, &key.PublicKey, []byte("cancelled"), 2)

	require.NotNil(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStream_ParallelPropagatesInvariant(t *testing.T) {
	t.Parallel()

	key := newKey(t, "parallel-invariant")

	stream := yarsa.Encrypt(&key.PublicKey, randomBytes(t, 64))
	stream[40] = big.NewInt(-1)

	_, err := yarsa.DecryptParallel(context.Background(), key, stream, 4)

	assert.ErrorIs(t, err, yaerrors.ErrInvariantViolation)
}

func TestCipherStream_Equal(t *testing.T) {
	t.Parallel()

	a := yarsa.CipherStream{big.NewInt(1), big.NewInt(2)}

	assert.True(t, a.Equal(yarsa.CipherStream{big.NewInt(1), big.NewInt(2)}))
	assert.False(t, a.Equal(yarsa.CipherStream{big.NewInt(1)}))
	assert.False(t, a.Equal(yarsa.CipherStream{big.NewInt(1), big.NewInt(3)}))
}

func BenchmarkEncrypt(b *testing.B) {
	key := newKey(b, "bench")
	data := randomBytes(b, 4096)

	b.SetBytes(int64(len(data)))

	for b.Loop() {
		_ = yarsa.Encrypt(&key.PublicKey, data)
	}
}

func BenchmarkDecrypt(b *testing.B) {
	key := newKey(b, "bench")
	stream := yarsa.Encrypt(&key.PublicKey, randomBytes(b, 4096))

	b.SetBytes(int64(len(stream)))

	for b.Loop() {
		_, _ = yarsa.Decrypt(key, stream)
	}
}
