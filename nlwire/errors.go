package nlwire

import "fmt"

// TruncatedError signals that fewer bytes remained in the buffer than a
// value declared or required. It carries the offending byte offset for
// diagnostics.
type TruncatedError struct {
	Expected int
	Got      int
	Offset   int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("nlwire: truncated at offset %d: expected %d bytes, got %d", e.Offset, e.Expected, e.Got)
}

// TrailingBytesError signals that a sized decode (DecodeExact, DecodeList,
// or one of the ...WithInput decoders) was given a declared size and the
// bytes it parsed did not come out to exactly that many.
type TrailingBytesError struct {
	N      int
	Offset int
}

func (e *TrailingBytesError) Error() string {
	return fmt.Sprintf("nlwire: %d trailing byte(s) at offset %d", e.N, e.Offset)
}

// BadMagicError signals an unexpected fixed/magic value, e.g. a header
// field required to be a specific constant.
type BadMagicError struct {
	Field  string
	Offset int
}

func (e *BadMagicError) Error() string {
	return fmt.Sprintf("nlwire: bad magic for %s at offset %d", e.Field, e.Offset)
}

// InvalidEnumError signals a discriminant byte/word that does not match any
// known variant of a tagged enumeration. Forward-compatible decoders should
// prefer an UnrecognizedVariant fallback over this error; it is reserved for
// enumerations with no such fallback.
type InvalidEnumError struct {
	Value  uint64
	Offset int
}

func (e *InvalidEnumError) Error() string {
	return fmt.Sprintf("nlwire: invalid enum value %d at offset %d", e.Value, e.Offset)
}
