package nlwire

// Encoder is implemented by any fixed-layout netlink value that can
// serialize itself into a Buffer. Implementations append bytes to buf.Bytes
// and return the number of bytes written (not including any padding the
// caller's container subsequently adds) or a codec error.
//
// Individual items must not emit their own trailing alignment padding --
// padding after each item is the enclosing container's job, not the
// item's. An attribute's length field never counts its own padding; a
// message's length counts its payload as written (including the padding
// its attribute list emits) but never the padding after the message.
type Encoder interface {
	EncodeNL(buf *Buffer) (int, error)
}

// Decoder is implemented by any fixed-layout netlink value that can parse
// itself from a Buffer. DecodeNL reads from buf.Bytes starting at buf.Offset
// and advances the cursor past everything it consumes.
type Decoder interface {
	DecodeNL(buf *Buffer) error
}

// SizedDecoder decodes a value whose size is known up front from an
// enclosing header (e.g. an attribute's payload length): parse exactly that
// many bytes, failing with a TruncatedError or TrailingBytesError otherwise.
type SizedDecoder interface {
	DecodeSizedNL(buf *Buffer, size int) error
}

// DecodeExact runs a SizedDecoder and enforces that it consumed exactly
// size bytes, converting any short read into TrailingBytesError.
func DecodeExact(d SizedDecoder, buf *Buffer, size int) error {
	start := buf.Offset
	if buf.Len() < size {
		return &TruncatedError{Expected: size, Got: buf.Len(), Offset: start}
	}
	if err := d.DecodeSizedNL(buf, size); err != nil {
		return err
	}
	consumed := buf.Offset - start
	if consumed < size {
		return &TrailingBytesError{N: size - consumed, Offset: buf.Offset}
	}
	if consumed > size {
		// A decoder that overruns its declared size is a programming
		// error, not a wire error, but we still fail closed rather than
		// silently accept it.
		return &TrailingBytesError{N: consumed - size, Offset: buf.Offset}
	}
	return nil
}

// Sizer is implemented by values whose on-wire length can be computed
// without serializing them, used for size accounting.
type Sizer interface {
	SizeNL() int
}
