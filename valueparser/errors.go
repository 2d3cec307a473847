package valueparser

import (
	"errors"
)

var (
	ErrUnsupportedType = errors.New("unsupported type")
	ErrInvalidValue    = errors.New("invalid value")
)
