// Package valueparser turns configuration strings into typed Go values.
//
// Types implementing encoding.TextUnmarshaler (yalogger.Level for instance) parse
// themselves. time.Duration accepts both "10ms" and a bare nanosecond count.
// Slices other than []byte are split on DefaultEntrySeparator.
package valueparser

import (
	"encoding"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/YaCodeDev/GoYaRSABench/yaerrors"
)

var (
	durationType        = reflect.TypeFor[time.Duration]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// ParseValue converts value to T.
//
// Example usage:
//
//	size, err := valueparser.ParseValue[int]("190")
//	if err != nil {
//		// Handle error
//	}
func ParseValue[T ParsableType](value string) (T, yaerrors.Error) {
	var out T

	if err := ParseInto(value, reflect.ValueOf(&out).Elem()); err != nil {
		return out, err
	}

	return out, nil
}

// ParseInto parses value and stores it in dst, which must be settable.
func ParseInto(value string, dst reflect.Value) yaerrors.Error {
	if dst.CanAddr() && dst.Addr().Type().Implements(textUnmarshalerType) {
		unmarshaler, _ := dst.Addr().Interface().(encoding.TextUnmarshaler)

		if err := unmarshaler.UnmarshalText([]byte(value)); err != nil {
			return invalid(value, dst.Type(), err)
		}

		return nil
	}

	if dst.Type() == durationType {
		return parseDuration(value, dst)
	}

	switch dst.Kind() {
	case reflect.String:
		dst.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		parsed, err := strconv.ParseInt(value, 10, dst.Type().Bits())
		if err != nil {
			return invalid(value, dst.Type(), err)
		}

		dst.SetInt(parsed)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		parsed, err := strconv.ParseUint(value, 10, dst.Type().Bits())
		if err != nil {
			return invalid(value, dst.Type(), err)
		}

		dst.SetUint(parsed)

	case reflect.Float32, reflect.Float64:
		parsed, err := strconv.ParseFloat(value, dst.Type().Bits())
		if err != nil {
			return invalid(value, dst.Type(), err)
		}

		dst.SetFloat(parsed)

	case reflect.Bool:
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return invalid(value, dst.Type(), err)
		}

		dst.SetBool(parsed)

	case reflect.Slice:
		if dst.Type().Elem().Kind() == reflect.Uint8 {
			dst.SetBytes([]byte(value))

			return nil
		}

		return parseSlice(value, dst)

	default:
		return yaerrors.FromError(
			http.StatusInternalServerError,
			ErrUnsupportedType,
			"parse value: unsupported type "+dst.Type().String(),
		)
	}

	return nil
}

func parseDuration(value string, dst reflect.Value) yaerrors.Error {
	if nanos, err := strconv.ParseInt(value, 10, 64); err == nil {
		dst.SetInt(nanos)

		return nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return invalid(value, dst.Type(), err)
	}

	dst.SetInt(int64(parsed))

	return nil
}

func parseSlice(value string, dst reflect.Value) yaerrors.Error {
	if value == "" {
		dst.Set(reflect.MakeSlice(dst.Type(), 0, 0))

		return nil
	}

	parts := strings.Split(value, DefaultEntrySeparator)
	out := reflect.MakeSlice(dst.Type(), len(parts), len(parts))

	for i, part := range parts {
		trimmed := strings.TrimSpace(part)

		if err := ParseInto(trimmed, out.Index(i)); err != nil {
			return err.Wrap(fmt.Sprintf("parse array: failed to parse part '%s'", trimmed))
		}
	}

	dst.Set(out)

	return nil
}

func invalid(value string, typ reflect.Type, cause error) yaerrors.Error {
	return yaerrors.FromError(
		http.StatusBadRequest,
		fmt.Errorf("%w: %w", ErrInvalidValue, cause),
		fmt.Sprintf("parse value: %q is not a valid %s", value, typ),
	)
}
