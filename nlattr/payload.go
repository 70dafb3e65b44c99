package nlattr

import (
	"fmt"

	"github.com/m-lab/go-netlink/nlwire"
)

// SizeMismatchPolicy controls what GetAttrPayloadAs-style scalar decoders do
// when a payload is the wrong length for the requested type: either
// zero-pad or error, depending on which policy the caller picks.
type SizeMismatchPolicy int

const (
	// ErrorOnMismatch fails decoding if the payload length does not
	// exactly match the requested type's size. It is the zero value of
	// SizeMismatchPolicy.
	ErrorOnMismatch SizeMismatchPolicy = iota
	// ZeroPadOnMismatch right-pads a short payload with zero bytes (and
	// truncates a long one) before decoding, for tolerant parsing of
	// forward-compatible kernels that shrink or grow a fixed field.
	ZeroPadOnMismatch
)

func fit(b []byte, n int, policy SizeMismatchPolicy) ([]byte, error) {
	if len(b) == n {
		return b, nil
	}
	if policy == ErrorOnMismatch {
		return nil, fmt.Errorf("nlattr: payload is %d bytes, want %d", len(b), n)
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// PayloadUint8 builds a 1-byte payload.
func PayloadUint8(v uint8) []byte { return []byte{v} }

// PayloadUint16 builds a host-order 2-byte payload.
func PayloadUint16(v uint16) []byte {
	buf := nlwire.NewWriteBuffer(2)
	buf.WriteUint16(nlwire.NativeEndian(), v)
	return buf.Bytes
}

// PayloadUint32 builds a host-order 4-byte payload.
func PayloadUint32(v uint32) []byte {
	buf := nlwire.NewWriteBuffer(4)
	buf.WriteUint32(nlwire.NativeEndian(), v)
	return buf.Bytes
}

// PayloadUint64 builds a host-order 8-byte payload.
func PayloadUint64(v uint64) []byte {
	buf := nlwire.NewWriteBuffer(8)
	buf.WriteUint64(nlwire.NativeEndian(), v)
	return buf.Bytes
}

// PayloadString builds a NUL-terminated string payload, the convention most
// netlink families use for string attributes (e.g. CTRL_ATTR_FAMILY_NAME).
func PayloadString(s string) []byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return b
}

// AsUint8 decodes a 1-byte payload.
func AsUint8(b []byte, policy SizeMismatchPolicy) (uint8, error) {
	b, err := fit(b, 1, policy)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// AsUint16 decodes a host-order 2-byte payload.
func AsUint16(b []byte, policy SizeMismatchPolicy) (uint16, error) {
	b, err := fit(b, 2, policy)
	if err != nil {
		return 0, err
	}
	return nlwire.NativeEndian().Uint16(b), nil
}

// AsUint32 decodes a host-order 4-byte payload.
func AsUint32(b []byte, policy SizeMismatchPolicy) (uint32, error) {
	b, err := fit(b, 4, policy)
	if err != nil {
		return 0, err
	}
	return nlwire.NativeEndian().Uint32(b), nil
}

// AsUint64 decodes a host-order 8-byte payload.
func AsUint64(b []byte, policy SizeMismatchPolicy) (uint64, error) {
	b, err := fit(b, 8, policy)
	if err != nil {
		return 0, err
	}
	return nlwire.NativeEndian().Uint64(b), nil
}

// AsString decodes a NUL-terminated (or bare) string payload, trimming a
// single trailing NUL if present.
func AsString(b []byte) string {
	if n := len(b); n > 0 && b[n-1] == 0 {
		b = b[:n-1]
	}
	return string(b)
}

// AsBytes returns the payload unmodified, for attributes whose value is an
// opaque byte string.
func AsBytes(b []byte) []byte {
	return b
}
