package yarsa

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"runtime"

	"github.com/YaCodeDev/GoYaRSABench/yaerrors"
	"golang.org/x/sync/errgroup"
)

// CipherStream is the ordered list of cipher units, one per plaintext byte.
type CipherStream []*big.Int

// Equal reports whether both streams hold the same units in the same order.
func (s CipherStream) Equal(other CipherStream) bool {
	if len(s) != len(other) {
		return false
	}

	for i := range s {
		if s[i].Cmp(other[i]) != 0 {
			return false
		}
	}

	return true
}

// Encrypt maps every byte of data through EncryptUnit, preserving order.
// len(result) == len(data); an empty input yields an empty stream.
func Encrypt(pub *PublicKey, data []byte) CipherStream {
	stream := make(CipherStream, len(data))

	for i, b := range data {
		stream[i] = EncryptUnit(pub, b)
	}

	return stream
}

// Decrypt is the inverse of Encrypt. Each decrypted integer is truncated to its
// low byte, so a mismatched key silently produces wrong bytes. The only error is
// a unit outside [0, n).
func Decrypt(key *KeyPair, stream CipherStream) ([]byte, yaerrors.Error) {
	out := make([]byte, len(stream))

	for i, c := range stream {
		m, err := DecryptUnit(key, c)
		if err != nil {
			return nil, err.Wrap(fmt.Sprintf("[RSA] failed to decrypt unit %d", i))
		}

		out[i] = lowByte(m)
	}

	return out, nil
}

// EncryptParallel produces the same stream as Encrypt by splitting data into
// index-labelled slices that workers encrypt independently. workers <= 0 means GOMAXPROCS.
func EncryptParallel(
	ctx context.Context,
	pub *PublicKey,
	data []byte,
	workers int,
) (CipherStream, yaerrors.Error) {
	stream := make(CipherStream, len(data))

	err := forEachSlice(ctx, len(data), workers, func(start, end int) yaerrors.Error {
		for i := start; i < end; i++ {
			stream[i] = EncryptUnit(pub, data[i])
		}

		return nil
	})
	if err != nil {
		return nil, err.Wrap("[RSA] parallel encryption failed")
	}

	return stream, nil
}

// DecryptParallel produces the same bytes as Decrypt using index-labelled slices.
func DecryptParallel(
	ctx context.Context,
	key *KeyPair,
	stream CipherStream,
	workers int,
) ([]byte, yaerrors.Error) {
	out := make([]byte, len(stream))

	err := forEachSlice(ctx, len(stream), workers, func(start, end int) yaerrors.Error {
		for i := start; i < end; i++ {
			m, err := DecryptUnit(key, stream[i])
			if err != nil {
				return err.Wrap(fmt.Sprintf("[RSA] failed to decrypt unit %d", i))
			}

			out[i] = lowByte(m)
		}

		return nil
	})
	if err != nil {
		return nil, err.Wrap("[RSA] parallel decryption failed")
	}

	return out, nil
}

// forEachSlice partitions [0, total) into at most workers contiguous slices and
// runs fn on each in its own goroutine. Slices never overlap, so fn may write
// results straight into its own index range.
func forEachSlice(
	ctx context.Context,
	total int,
	workers int,
	fn func(start, end int) yaerrors.Error,
) yaerrors.Error {
	if total == 0 {
		return nil
	}

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	workers = min(workers, total)
	size := (total + workers - 1) / workers

	group, groupCtx := errgroup.WithContext(ctx)

	for start := 0; start < total; start += size {
		end := min(start+size, total)

		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return yaerrors.FromError(
					http.StatusRequestTimeout,
					err,
					fmt.Sprintf("[RSA] slice [%d, %d) cancelled", start, end),
				)
			}

			if err := fn(start, end); err != nil {
				return err
			}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		if yaErr, ok := err.(yaerrors.Error); ok {
			return yaErr
		}

		return yaerrors.Invariant(err.Error())
	}

	return nil
}

// lowByte returns the least significant byte of a non-negative integer.
func lowByte(v *big.Int) byte {
	words := v.Bits()
	if len(words) == 0 {
		return 0
	}

	return byte(words[0])
}
