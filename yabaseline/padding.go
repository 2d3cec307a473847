package yabaseline

import (
	"bytes"
	"errors"
)

var ErrInvalidPadding = errors.New("invalid PKCS7 padding")

// padPKCS7 always appends between 1 and blockSize bytes.
func padPKCS7(data []byte, blockSize int) []byte {
	size := blockSize - len(data)%blockSize

	out := make([]byte, len(data), len(data)+size)
	copy(out, data)

	return append(out, bytes.Repeat([]byte{byte(size)}, size)...)
}

func unpadPKCS7(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrInvalidPadding
	}

	size := int(data[len(data)-1])
	if size == 0 || size > blockSize {
		return nil, ErrInvalidPadding
	}

	for _, b := range data[len(data)-size:] {
		if int(b) != size {
			return nil, ErrInvalidPadding
		}
	}

	return data[:len(data)-size], nil
}
