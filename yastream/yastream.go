// Package yastream serializes yarsa cipher streams for storage and transport.
//
// Binary form: every unit is written as its minimal big-endian byte slice, the
// slice list is MessagePack-encoded and the result is gzip-compressed. Text form
// is the binary form in standard base64, suitable for a .txt ciphertext dump.
//
// Example:
//
//	blob, err := yastream.Marshal(stream)
//	if err != nil {
//	    log.Fatalf("marshal failed: %v", err)
//	}
//
//	back, err := yastream.Unmarshal(blob)
package yastream

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"

	"github.com/YaCodeDev/GoYaRSABench/yaerrors"
	"github.com/YaCodeDev/GoYaRSABench/yarsa"
	"github.com/klauspost/compress/gzip"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	DefaultCompression          = gzip.DefaultCompression
	DefaultMaxDecodedSize int64 = 256 << 20 // 256 MiB

	formatVersion uint8 = 1
)

var (
	ErrDecodedPayloadTooLarge = errors.New("decoded payload exceeds configured limit")
	ErrUnsupportedVersion     = errors.New("unsupported stream format version")
	ErrNegativeUnit           = errors.New("negative cipher unit")
)

type wireStream struct {
	Version uint8    `msgpack:"v"`
	Units   [][]byte `msgpack:"u"`
}

// Codec holds compression settings.
//   - Level: gzip level, DefaultCompression if zero.
//   - MaxDecodedSize: upper bound for decompressed bytes, DefaultMaxDecodedSize if <= 0.
type Codec struct {
	Level          int
	MaxDecodedSize int64
}

func NewCodec() *Codec {
	return &Codec{
		Level:          DefaultCompression,
		MaxDecodedSize: DefaultMaxDecodedSize,
	}
}

// Marshal encodes a stream with the default codec.
func Marshal(stream yarsa.CipherStream) ([]byte, yaerrors.Error) {
	return NewCodec().Marshal(stream)
}

// Unmarshal decodes a stream produced by Marshal with the default codec.
func Unmarshal(data []byte) (yarsa.CipherStream, yaerrors.Error) {
	return NewCodec().Unmarshal(data)
}

// MarshalText encodes a stream with the default codec and base64.
func MarshalText(stream yarsa.CipherStream) ([]byte, yaerrors.Error) {
	return NewCodec().MarshalText(stream)
}

// UnmarshalText reverses MarshalText.
func UnmarshalText(text []byte) (yarsa.CipherStream, yaerrors.Error) {
	return NewCodec().UnmarshalText(text)
}

func (c *Codec) Marshal(stream yarsa.CipherStream) ([]byte, yaerrors.Error) {
	wire := wireStream{
		Version: formatVersion,
		Units:   make([][]byte, len(stream)),
	}

	for i, unit := range stream {
		if unit == nil {
			return nil, yaerrors.Invariant(fmt.Sprintf("[STREAM] unit %d is nil", i))
		}

		if unit.Sign() < 0 {
			return nil, yaerrors.FromError(
				http.StatusBadRequest,
				ErrNegativeUnit,
				fmt.Sprintf("[STREAM] unit %d cannot be encoded", i),
			)
		}

		wire.Units[i] = unit.Bytes()
	}

	packed, err := msgpack.Marshal(&wire)
	if err != nil {
		return nil, yaerrors.FromError(
			http.StatusInternalServerError,
			err,
			"[STREAM] failed to marshal units using message pack format",
		)
	}

	return c.zip(packed)
}

func (c *Codec) Unmarshal(data []byte) (yarsa.CipherStream, yaerrors.Error) {
	packed, yaErr := c.unzip(data)
	if yaErr != nil {
		return nil, yaErr.Wrap("[STREAM] failed to unmarshal")
	}

	var wire wireStream

	if err := msgpack.Unmarshal(packed, &wire); err != nil {
		return nil, yaerrors.FromError(
			http.StatusBadRequest,
			err,
			"[STREAM] failed to decode message pack payload",
		)
	}

	if wire.Version != formatVersion {
		return nil, yaerrors.FromError(
			http.StatusBadRequest,
			ErrUnsupportedVersion,
			fmt.Sprintf("[STREAM] got version %d, want %d", wire.Version, formatVersion),
		)
	}

	stream := make(yarsa.CipherStream, len(wire.Units))
	for i, unit := range wire.Units {
		stream[i] = new(big.Int).SetBytes(unit)
	}

	return stream, nil
}

func (c *Codec) MarshalText(stream yarsa.CipherStream) ([]byte, yaerrors.Error) {
	raw, err := c.Marshal(stream)
	if err != nil {
		return nil, err
	}

	text := make([]byte, base64.StdEncoding.EncodedLen(len(raw)))
	base64.StdEncoding.Encode(text, raw)

	return text, nil
}

func (c *Codec) UnmarshalText(text []byte) (yarsa.CipherStream, yaerrors.Error) {
	raw := make([]byte, base64.StdEncoding.DecodedLen(len(text)))

	n, err := base64.StdEncoding.Decode(raw, bytes.TrimSpace(text))
	if err != nil {
		return nil, yaerrors.FromError(
			http.StatusBadRequest,
			err,
			"[STREAM] failed to decode base64 text",
		)
	}

	return c.Unmarshal(raw[:n])
}

func (c *Codec) zip(payload []byte) ([]byte, yaerrors.Error) {
	level := c.Level
	if level == 0 {
		level = DefaultCompression
	}

	var buf bytes.Buffer

	w, err := gzip.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, yaerrors.FromError(
			http.StatusInternalServerError,
			err,
			"[STREAM] failed to create gzip writer",
		)
	}

	if _, err := w.Write(payload); err != nil {
		return nil, yaerrors.FromError(
			http.StatusInternalServerError,
			err,
			"[STREAM] failed to write payload to gzip writer",
		)
	}

	if err := w.Close(); err != nil {
		return nil, yaerrors.FromError(
			http.StatusInternalServerError,
			err,
			"[STREAM] failed to close gzip writer",
		)
	}

	return buf.Bytes(), nil
}

func (c *Codec) unzip(compressed []byte) ([]byte, yaerrors.Error) {
	r, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, yaerrors.FromError(
			http.StatusBadRequest,
			err,
			"[STREAM] failed to create gzip reader",
		)
	}
	defer r.Close()

	limit := c.MaxDecodedSize
	if limit <= 0 {
		limit = DefaultMaxDecodedSize
	}

	var out bytes.Buffer

	if _, err := io.Copy(&out, io.LimitReader(r, limit+1)); err != nil {
		return nil, yaerrors.FromError(
			http.StatusBadRequest,
			err,
			"[STREAM] failed to read from gzip stream",
		)
	}

	if int64(out.Len()) > limit {
		return nil, yaerrors.FromError(
			http.StatusRequestEntityTooLarge,
			ErrDecodedPayloadTooLarge,
			"[STREAM] decompressed payload is too large",
		)
	}

	return out.Bytes(), nil
}
