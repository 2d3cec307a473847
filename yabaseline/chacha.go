package yabaseline

import (
	"fmt"
	"net/http"

	"github.com/YaCodeDev/GoYaRSABench/yaerrors"
	"golang.org/x/crypto/chacha20"
)

// ChaCha20 is the unauthenticated ChaCha20 stream cipher. The sealed form is
// nonce || keystream XOR plaintext, so its length is len(plain) + 12.
type ChaCha20 struct {
	key []byte
}

func NewChaCha20(key []byte) (*ChaCha20, yaerrors.Error) {
	if len(key) != chacha20.KeySize {
		return nil, yaerrors.Configuration(
			fmt.Sprintf("[CHACHA] key must be %d bytes, got %d", chacha20.KeySize, len(key)),
		)
	}

	return &ChaCha20{key: append([]byte{}, key...)}, nil
}

func NewRandomChaCha20() (*ChaCha20, yaerrors.Error) {
	key, err := randomBytes(chacha20.KeySize, "chacha20 key")
	if err != nil {
		return nil, err
	}

	return NewChaCha20(key)
}

func (c *ChaCha20) Name() string {
	return "chacha20"
}

func (c *ChaCha20) Encrypt(plain []byte) ([]byte, yaerrors.Error) {
	nonce, yaErr := randomBytes(chacha20.NonceSize, "nonce")
	if yaErr != nil {
		return nil, yaErr.Wrap("[CHACHA] could not encrypt")
	}

	sealed := make([]byte, chacha20.NonceSize+len(plain))
	copy(sealed, nonce)

	if err := c.xor(nonce, sealed[chacha20.NonceSize:], plain); err != nil {
		return nil, err
	}

	return sealed, nil
}

func (c *ChaCha20) Decrypt(sealed []byte) ([]byte, yaerrors.Error) {
	if len(sealed) < chacha20.NonceSize {
		return nil, yaerrors.FromString(
			http.StatusBadRequest,
			fmt.Sprintf("[CHACHA] invalid ciphertext length %d", len(sealed)),
		)
	}

	plain := make([]byte, len(sealed)-chacha20.NonceSize)

	if err := c.xor(sealed[:chacha20.NonceSize], plain, sealed[chacha20.NonceSize:]); err != nil {
		return nil, err
	}

	return plain, nil
}

func (c *ChaCha20) xor(nonce, dst, src []byte) yaerrors.Error {
	stream, err := chacha20.NewUnauthenticatedCipher(c.key, nonce)
	if err != nil {
		return yaerrors.FromError(
			http.StatusInternalServerError,
			err,
			"[CHACHA] could not create new cipher",
		)
	}

	stream.XORKeyStream(dst, src)

	return nil
}
