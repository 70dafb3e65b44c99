package nlattr

import (
	"fmt"

	"github.com/m-lab/go-netlink/nlwire"
)

// Rtattr is the routing-family counterpart of Attr: wire-identical
// (u16 len | u16 type | payload | pad) but kept as its own Go type so route,
// netfilter, and other non-genl payloads get their own container type
// (List[Rtattr]), distinct from the generic-netlink List[Attr].
type Rtattr struct {
	Type    uint16
	Payload []byte
}

// TypeOnly masks off the NESTED/NET_BYTEORDER flag bits.
func (a Rtattr) TypeOnly() uint16 {
	return a.Type &^ typeMask
}

// IsNested reports whether the NESTED flag bit is set.
func (a Rtattr) IsNested() bool {
	return a.Type&NLA_F_NESTED != 0
}

// UnpaddedSize returns the header plus payload length, excluding padding.
func (a Rtattr) UnpaddedSize() int {
	return headerLen + len(a.Payload)
}

// PaddedSize returns the full on-wire footprint including trailing padding.
func (a Rtattr) PaddedSize() int {
	return nlwire.AlignUp(a.UnpaddedSize())
}

// EncodeNL writes the attribute header and payload; trailing padding is the
// container's job.
func (a Rtattr) EncodeNL(buf *nlwire.Buffer) (int, error) {
	start := len(buf.Bytes)
	rtaLen := a.UnpaddedSize()
	if rtaLen > 0xFFFF {
		return 0, fmt.Errorf("nlattr: payload too large for rta_len: %d bytes", len(a.Payload))
	}
	buf.WriteUint16(nlwire.NativeEndian(), uint16(rtaLen))
	buf.WriteUint16(nlwire.NativeEndian(), a.Type)
	buf.WriteBytes(a.Payload)
	return len(buf.Bytes) - start, nil
}

// DecodeNL reads one attribute's header and payload, not its padding.
func (a *Rtattr) DecodeNL(buf *nlwire.Buffer) error {
	offset := buf.Offset
	rtaLen, err := buf.ReadUint16(nlwire.NativeEndian())
	if err != nil {
		return err
	}
	typ, err := buf.ReadUint16(nlwire.NativeEndian())
	if err != nil {
		return err
	}
	if int(rtaLen) < headerLen {
		return &nlwire.TruncatedError{Expected: headerLen, Got: int(rtaLen), Offset: offset}
	}
	payload, err := buf.ReadBytes(int(rtaLen) - headerLen)
	if err != nil {
		return err
	}
	a.Type = typ
	a.Payload = payload
	return nil
}
