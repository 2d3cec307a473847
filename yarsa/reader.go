package yarsa

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"hash"
)

// DeterministicReader is an io.Reader producing HMAC-SHA256(seed, counter) blocks,
// with the 64-bit counter encoded big-endian and incremented per 32-byte block.
// The same seed always produces the same byte stream, which makes benchmark
// runs with a seeded key pair reproducible.
//
// It is not safe for concurrent use.
//
// Usage:
//
//	r := yarsa.NewDeterministicReader([]byte("bench-seed"))
//	key, _ := yarsa.Derive(p, q, &yarsa.DeriveOpts{Reader: r})
type DeterministicReader struct {
	mac     hash.Hash
	counter uint64
	buf     [sha256.Size]byte
	pos     int
}

// NewDeterministicReader constructs a reader over a private copy of seed.
func NewDeterministicReader(seed []byte) *DeterministicReader {
	return &DeterministicReader{
		mac: hmac.New(sha256.New, append([]byte{}, seed...)),
		pos: sha256.Size,
	}
}

// Read fills p entirely and never fails.
func (r *DeterministicReader) Read(p []byte) (int, error) {
	written := 0

	for written < len(p) {
		if r.pos == len(r.buf) {
			r.refill()
		}

		n := copy(p[written:], r.buf[r.pos:])
		r.pos += n
		written += n
	}

	return written, nil
}

func (r *DeterministicReader) refill() {
	var ctr [8]byte

	binary.BigEndian.PutUint64(ctr[:], r.counter)

	r.mac.Reset()
	r.mac.Write(ctr[:])
	r.mac.Sum(r.buf[:0])

	r.pos = 0
	r.counter++
}
