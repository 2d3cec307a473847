// Package yabaseline provides reference ciphers that the benchmark runs next to
// the textbook RSA engine, all behind one opaque byte-in byte-out contract.
//
//   - AESCBC: AES-256-CBC with a random IV prefix and PKCS#7 padding.
//   - ChaCha20: unauthenticated ChaCha20 stream with a random nonce prefix.
//   - RSAOAEP: RSA OAEP-SHA256 over chunks that fit one OAEP block.
//   - Textbook: the byte-wise textbook engine, ciphertext serialized by yastream.
//
// Example:
//
//	c, err := yabaseline.NewRandomAESCBC()
//	if err != nil {
//	    return err
//	}
//
//	sealed, err := c.Encrypt(data)
//	plain, err := c.Decrypt(sealed)
package yabaseline

import (
	"crypto/rand"
	"io"
	"net/http"

	"github.com/YaCodeDev/GoYaRSABench/yaerrors"
)

// Cipher is the contract every baseline satisfies. Decrypt(Encrypt(x)) == x.
type Cipher interface {
	Name() string
	Encrypt(plain []byte) ([]byte, yaerrors.Error)
	Decrypt(sealed []byte) ([]byte, yaerrors.Error)
}

func randomBytes(n int, what string) ([]byte, yaerrors.Error) {
	buf := make([]byte, n)

	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return nil, yaerrors.FromError(
			http.StatusInternalServerError,
			err,
			"[BASELINE] failed to read random "+what,
		)
	}

	return buf, nil
}
