// Package nlattr implements netlink attributes (generic-netlink Attr and
// routing Rtattr) as 4-byte-aligned type-length-value items, plus the
// ordered containers and attribute-handle lookup API this package
// describes.
package nlattr

import (
	"fmt"

	"github.com/m-lab/go-netlink/nlwire"
)

// Bit layout of the attribute type field, shared by genl Attr and route
// Rtattr: the top two bits are out-of-band flags, the rest is the family's
// attribute type enumeration.
const (
	NLA_F_NESTED        uint16 = 1 << 15
	NLA_F_NET_BYTEORDER uint16 = 1 << 14
	typeMask            uint16 = NLA_F_NESTED | NLA_F_NET_BYTEORDER
)

// headerLen is the on-wire size of an attribute header: nla_len (u16) +
// nla_type (u16).
const headerLen = 4

// Attr is a single type-length-value attribute. Type carries the raw wire
// value including the NESTED/NET_BYTEORDER flag bits; use TypeOnly to mask
// them off before comparing against a family's constant catalog.
type Attr struct {
	Type    uint16
	Payload []byte
}

// TypeOnly returns Type with the NESTED and NET_BYTEORDER flag bits masked
// off, for comparison against family-specific attribute constants.
func (a Attr) TypeOnly() uint16 {
	return a.Type &^ typeMask
}

// IsNested reports whether the NESTED flag bit is set.
func (a Attr) IsNested() bool {
	return a.Type&NLA_F_NESTED != 0
}

// IsNetByteOrder reports whether the NET_BYTEORDER flag bit is set.
func (a Attr) IsNetByteOrder() bool {
	return a.Type&NLA_F_NET_BYTEORDER != 0
}

// UnpaddedSize returns the attribute's nla_len: the header plus the payload,
// not including trailing alignment padding.
func (a Attr) UnpaddedSize() int {
	return headerLen + len(a.Payload)
}

// PaddedSize returns the attribute's full on-wire footprint, including the
// padding a container emits after it.
func (a Attr) PaddedSize() int {
	return nlwire.AlignUp(a.UnpaddedSize())
}

// EncodeNL writes the attribute header and payload. The container is
// responsible for adding trailing padding afterwards; see List.EncodeNL.
func (a Attr) EncodeNL(buf *nlwire.Buffer) (int, error) {
	start := len(buf.Bytes)
	nlaLen := a.UnpaddedSize()
	if nlaLen > 0xFFFF {
		return 0, fmt.Errorf("nlattr: payload too large for nla_len: %d bytes", len(a.Payload))
	}
	buf.WriteUint16(nlwire.NativeEndian(), uint16(nlaLen))
	buf.WriteUint16(nlwire.NativeEndian(), a.Type)
	buf.WriteBytes(a.Payload)
	return len(buf.Bytes) - start, nil
}

// DecodeNL reads one attribute (header + payload) from buf, without
// consuming the trailing padding; callers iterating a sequence of
// attributes should use List.DecodeNL instead, which handles padding
// between items.
func (a *Attr) DecodeNL(buf *nlwire.Buffer) error {
	offset := buf.Offset
	nlaLen, err := buf.ReadUint16(nlwire.NativeEndian())
	if err != nil {
		return err
	}
	typ, err := buf.ReadUint16(nlwire.NativeEndian())
	if err != nil {
		return err
	}
	if int(nlaLen) < headerLen {
		return &nlwire.TruncatedError{Expected: headerLen, Got: int(nlaLen), Offset: offset}
	}
	payloadLen := int(nlaLen) - headerLen
	payload, err := buf.ReadBytes(payloadLen)
	if err != nil {
		return err
	}
	a.Type = typ
	a.Payload = payload
	return nil
}
