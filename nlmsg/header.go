// Package nlmsg implements the outer netlink message: the fixed Nlmsghdr
// header, the message-type and flag enumerations, and the payload variants
// (generic netlink, route/other family, error/ack, done, raw) below.
package nlmsg

import (
	"github.com/m-lab/go-netlink/nlwire"
)

// HeaderLen is the on-wire size of Nlmsghdr: u32 len | u16 type | u16 flags
// | u32 seq | u32 pid.
const HeaderLen = 16

// Header is the outer netlink message header (Nlmsghdr), in host byte
// order on the wire.
type Header struct {
	// Len is the total message length, header included. For an encoded
	// message it equals HeaderLen plus the payload bytes as written
	// (including the padding after the payload's own attributes); it
	// never includes the padding a datagram adds between messages.
	Len   uint32
	Type  Type
	Flags Flags
	Seq   uint32
	Pid   uint32
}

// EncodeNL writes the header fields in host byte order.
func (h Header) EncodeNL(buf *nlwire.Buffer) (int, error) {
	start := len(buf.Bytes)
	order := nlwire.NativeEndian()
	buf.WriteUint32(order, h.Len)
	buf.WriteUint16(order, uint16(h.Type))
	buf.WriteUint16(order, uint16(h.Flags))
	buf.WriteUint32(order, h.Seq)
	buf.WriteUint32(order, h.Pid)
	return len(buf.Bytes) - start, nil
}

// DecodeNL reads a header in host byte order and validates the minimum
// length invariant (length >= 16).
func (h *Header) DecodeNL(buf *nlwire.Buffer) error {
	order := nlwire.NativeEndian()
	offset := buf.Offset
	if buf.Len() < HeaderLen {
		return &nlwire.TruncatedError{Expected: HeaderLen, Got: buf.Len(), Offset: offset}
	}
	length, err := buf.ReadUint32(order)
	if err != nil {
		return err
	}
	typ, err := buf.ReadUint16(order)
	if err != nil {
		return err
	}
	flags, err := buf.ReadUint16(order)
	if err != nil {
		return err
	}
	seq, err := buf.ReadUint32(order)
	if err != nil {
		return err
	}
	pid, err := buf.ReadUint32(order)
	if err != nil {
		return err
	}
	if length < HeaderLen {
		return &nlwire.TruncatedError{Expected: HeaderLen, Got: int(length), Offset: offset}
	}
	h.Len = length
	h.Type = Type(typ)
	h.Flags = Flags(flags)
	h.Seq = seq
	h.Pid = pid
	return nil
}

// PayloadLen returns the number of unpadded payload bytes this header
// declares, i.e. Len minus the header itself.
func (h Header) PayloadLen() int {
	if int(h.Len) < HeaderLen {
		return 0
	}
	return int(h.Len) - HeaderLen
}
