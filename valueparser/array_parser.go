package valueparser

import (
	"reflect"

	"github.com/YaCodeDev/GoYaRSABench/yaerrors"
)

// ParseArray splits a string by DefaultEntrySeparator and parses each part into T.
// If the string is empty, it returns an empty slice.
//
// Example usage:
//
//	sizes, err := valueparser.ParseArray[int]("64, 190, 4096")
//	if err != nil {
//		// Handle error
//	}
func ParseArray[T ParsableType](str string) ([]T, yaerrors.Error) {
	var out []T

	if err := parseSlice(str, reflect.ValueOf(&out).Elem()); err != nil {
		return nil, err
	}

	return out, nil
}
