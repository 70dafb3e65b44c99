package nlattr

import "github.com/m-lab/go-netlink/nlwire"

// item is satisfied by Attr and Rtattr: both are plain 4-byte-aligned TLVs
// with an identical wire shape, differing only in which family uses them.
type item interface {
	UnpaddedSize() int
	PaddedSize() int
	TypeOnly() uint16
	EncodeNL(buf *nlwire.Buffer) (int, error)
}

// itemDecoder is satisfied by *Attr and *Rtattr; Go generics need the
// pointer-receiver method expressed as a separate type parameter because
// DecodeNL mutates the value.
type itemDecoder[T any] interface {
	*T
	DecodeNL(buf *nlwire.Buffer) error
}

// List is an ordered, 4-byte-aligned sequence of attributes. GenlBuffer is
// List[Attr]; RtBuffer is List[Rtattr]. Iteration preserves on-wire order
// and duplicate attribute types are permitted and surfaced in order.
type List[T item] []T

// Append adds an attribute to the end of the list, preserving on-wire
// order.
func (l *List[T]) Append(a T) {
	*l = append(*l, a)
}

// UnpaddedSize returns the sum of every item's nla_len, i.e. the bytes the
// list would occupy with no alignment padding. An enclosing header's length
// field counts the list as EncodeNL writes it, which is PaddedSize.
func (l List[T]) UnpaddedSize() int {
	n := 0
	for _, a := range l {
		n += a.UnpaddedSize()
	}
	return n
}

// PaddedSize returns the sum of every item's padded on-wire footprint, i.e.
// the actual number of bytes the list occupies in a datagram.
func (l List[T]) PaddedSize() int {
	n := 0
	for _, a := range l {
		n += a.PaddedSize()
	}
	return n
}

// EncodeNL serializes every item in order, emitting the alignment padding
// between them that each item's own EncodeNL deliberately omits.
func (l List[T]) EncodeNL(buf *nlwire.Buffer) (int, error) {
	start := len(buf.Bytes)
	for _, a := range l {
		if _, err := a.EncodeNL(buf); err != nil {
			return len(buf.Bytes) - start, err
		}
		buf.WritePad()
	}
	return len(buf.Bytes) - start, nil
}

// DecodeList reads a sequence of attributes occupying exactly size bytes of
// buf, consuming the inter-item padding along the way. It is the
// entry point for attribute containers: the declared size normally comes
// from an enclosing header or, for a nested attribute, from the parent
// attribute's own payload length.
func DecodeList[T any, PT itemDecoder[T]](buf *nlwire.Buffer, size int) (List[T], error) {
	if buf.Len() < size {
		return nil, &nlwire.TruncatedError{Expected: size, Got: buf.Len(), Offset: buf.Offset}
	}
	end := buf.Offset + size
	var out List[T]
	for buf.Offset < end {
		var v T
		p := PT(&v)
		if err := p.DecodeNL(buf); err != nil {
			return out, err
		}
		out = append(out, v)
		if buf.Offset < end {
			if err := buf.SkipPad(); err != nil {
				return out, err
			}
		}
	}
	if buf.Offset != end {
		return out, &nlwire.TrailingBytesError{N: buf.Offset - end, Offset: buf.Offset}
	}
	return out, nil
}
