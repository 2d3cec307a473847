package yastream_test

import (
	"bytes"
	"math/big"
	"net/http"
	"testing"

	"github.com/YaCodeDev/GoYaRSABench/yaerrors"
	"github.com/YaCodeDev/GoYaRSABench/yarsa"
	"github.com/YaCodeDev/GoYaRSABench/yastream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encryptedStream(t *testing.T, plain []byte) (*yarsa.KeyPair, yarsa.CipherStream) {
	t.Helper()

	key, err := yarsa.GenerateKeyPair(yarsa.KeyOpts{Seed: []byte("yastream")})
	require.Nil(t, err)

	return key, yarsa.Encrypt(&key.PublicKey, plain)
}

func TestMarshal_DecryptsAfterRoundTrip(t *testing.T) {
	t.Parallel()

	plain := []byte("The quick brown fox jumps over the lazy dog")
	key, stream := encryptedStream(t, plain)

	blob, err := yastream.Marshal(stream)
	require.Nil(t, err)

	back, err := yastream.Unmarshal(blob)
	require.Nil(t, err)

	assert.True(t, stream.Equal(back))

	got, err := yarsa.Decrypt(key, back)
	require.Nil(t, err)
	assert.Equal(t, plain, got)
}

func TestMarshalText(t *testing.T) {
	t.Parallel()

	_, stream := encryptedStream(t, bytes.Repeat([]byte{0x00, 0xFF, 0x41}, 300))

	text, err := yastream.MarshalText(stream)
	require.Nil(t, err)

	for _, ch := range text {
		assert.True(t, ch < 0x80 && ch != '\n', "unexpected byte %q in text form", ch)
	}

	// Trailing newline written by text editors is tolerated.
	back, err := yastream.UnmarshalText(append(text, '\n'))
	require.Nil(t, err)

	assert.True(t, stream.Equal(back))
}

func TestMarshal_ZeroAndEmpty(t *testing.T) {
	t.Parallel()

	t.Run("[Stream] empty", func(t *testing.T) {
		t.Parallel()

		blob, err := yastream.Marshal(yarsa.CipherStream{})
		require.Nil(t, err)

		back, err := yastream.Unmarshal(blob)
		require.Nil(t, err)
		assert.Empty(t, back)
	})

	t.Run("[Stream] zero unit", func(t *testing.T) {
		t.Parallel()

		blob, err := yastream.Marshal(yarsa.CipherStream{big.NewInt(0), big.NewInt(1)})
		require.Nil(t, err)

		back, err := yastream.Unmarshal(blob)
		require.Nil(t, err)
		require.Len(t, back, 2)
		assert.Equal(t, int64(0), back[0].Int64())
		assert.Equal(t, int64(1), back[1].Int64())
	})
}

func TestMarshal_RejectsBadUnits(t *testing.T) {
	t.Parallel()

	_, err := yastream.Marshal(yarsa.CipherStream{big.NewInt(1), nil})
	assert.ErrorIs(t, err, yaerrors.ErrInvariantViolation)

	_, err = yastream.Marshal(yarsa.CipherStream{big.NewInt(-5)})
	assert.ErrorIs(t, err, yastream.ErrNegativeUnit)
	assert.Equal(t, http.StatusBadRequest, err.Code())
}

func TestUnmarshal_Garbage(t *testing.T) {
	t.Parallel()

	_, err := yastream.Unmarshal([]byte("definitely not gzip"))
	require.NotNil(t, err)
	assert.Equal(t, http.StatusBadRequest, err.Code())

	_, err = yastream.UnmarshalText([]byte("###"))
	require.NotNil(t, err)
	assert.Equal(t, http.StatusBadRequest, err.Code())
}

func TestCodec_DecodedSizeLimit(t *testing.T) {
	t.Parallel()

	_, stream := encryptedStream(t, bytes.Repeat([]byte("z"), 4096))

	blob, err := yastream.Marshal(stream)
	require.Nil(t, err)

	codec := &yastream.Codec{MaxDecodedSize: 128}

	_, err = codec.Unmarshal(blob)
	assert.ErrorIs(t, err, yastream.ErrDecodedPayloadTooLarge)
}

func TestCodec_CompressionLevelsAgree(t *testing.T) {
	t.Parallel()

	_, stream := encryptedStream(t, []byte("levels"))

	fast, err := (&yastream.Codec{Level: 1}).Marshal(stream)
	require.Nil(t, err)

	best, err := (&yastream.Codec{Level: 9}).Marshal(stream)
	require.Nil(t, err)

	fromFast, err := yastream.Unmarshal(fast)
	require.Nil(t, err)

	fromBest, err := yastream.Unmarshal(best)
	require.Nil(t, err)

	assert.True(t, fromFast.Equal(fromBest))
}
