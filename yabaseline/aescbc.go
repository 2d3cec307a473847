package yabaseline

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"io"
	"net/http"

	"github.com/YaCodeDev/GoYaRSABench/yaerrors"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/sha3"
)

const (
	AESKeySize = 32

	aesKeyInfo = "yarsabench aes-256-cbc"
)

// AESCBC is AES-256-CBC. The sealed form is IV || ciphertext.
type AESCBC struct {
	block cipher.Block
}

// NewAESCBC creates the cipher from a 32-byte key.
func NewAESCBC(key []byte) (*AESCBC, yaerrors.Error) {
	if len(key) != AESKeySize {
		return nil, yaerrors.Configuration(
			fmt.Sprintf("[AES] key must be %d bytes, got %d", AESKeySize, len(key)),
		)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, yaerrors.FromError(
			http.StatusInternalServerError,
			err,
			"[AES] could not create new cipher",
		)
	}

	return &AESCBC{block: block}, nil
}

// NewRandomAESCBC creates the cipher with a fresh random key.
func NewRandomAESCBC() (*AESCBC, yaerrors.Error) {
	key, err := randomBytes(AESKeySize, "aes key")
	if err != nil {
		return nil, err
	}

	return NewAESCBC(key)
}

// DeriveAESKey expands secret and salt into an AES-256 key with HKDF over SHA3-256.
// The same inputs always give the same key, so a seeded run can rebuild it.
func DeriveAESKey(secret, salt []byte) ([]byte, yaerrors.Error) {
	key := make([]byte, AESKeySize)

	if _, err := io.ReadFull(hkdf.New(sha3.New256, secret, salt, []byte(aesKeyInfo)), key); err != nil {
		return nil, yaerrors.FromError(
			http.StatusInternalServerError,
			err,
			"[AES] failed to derive key",
		)
	}

	return key, nil
}

func (a *AESCBC) Name() string {
	return "aes-256-cbc"
}

func (a *AESCBC) Encrypt(plain []byte) ([]byte, yaerrors.Error) {
	padded := padPKCS7(plain, aes.BlockSize)

	iv, err := randomBytes(aes.BlockSize, "iv")
	if err != nil {
		return nil, err.Wrap("[AES] could not encrypt")
	}

	sealed := make([]byte, aes.BlockSize+len(padded))
	copy(sealed, iv)

	cipher.NewCBCEncrypter(a.block, iv).CryptBlocks(sealed[aes.BlockSize:], padded)

	return sealed, nil
}

func (a *AESCBC) Decrypt(sealed []byte) ([]byte, yaerrors.Error) {
	if len(sealed) < 2*aes.BlockSize || len(sealed)%aes.BlockSize != 0 {
		return nil, yaerrors.FromString(
			http.StatusBadRequest,
			fmt.Sprintf("[AES] invalid ciphertext length %d", len(sealed)),
		)
	}

	iv := sealed[:aes.BlockSize]
	plain := make([]byte, len(sealed)-aes.BlockSize)

	cipher.NewCBCDecrypter(a.block, iv).CryptBlocks(plain, sealed[aes.BlockSize:])

	out, err := unpadPKCS7(plain, aes.BlockSize)
	if err != nil {
		return nil, yaerrors.FromError(
			http.StatusBadRequest,
			err,
			"[AES] could not decrypt",
		)
	}

	return out, nil
}
