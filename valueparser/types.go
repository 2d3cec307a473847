package valueparser

// DefaultEntrySeparator splits slice values such as "1,2,3".
const DefaultEntrySeparator = ","

// ParsableType is a type constraint that allows for any type that can be parsed from a string.
// It includes basic types like string, int, float, and bool,
// as well as slices of bytes (for byte arrays).
type ParsableType interface {
	~string | ~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64 | ~bool | ~[]byte
}
