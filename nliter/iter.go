// Package nliter implements the restartable, non-blocking iterator that
// walks successive netlink messages filling a single receive buffer,
// classifying each as Data, Ack, Done, or Error.
package nliter

import (
	"github.com/m-lab/go-netlink/nlmsg"
	"github.com/m-lab/go-netlink/nlwire"
)

// Kind tags which variant an Item is.
type Kind int

const (
	// KindData is a family-specific data frame, caller-typed.
	KindData Kind = iota
	// KindAck is an ERROR frame with code 0.
	KindAck
	// KindDone is a MULTI dump's terminator.
	KindDone
	// KindError is an ERROR frame with a non-zero (negative errno) code.
	KindError
)

// Item is one message surfaced by MessageIter.Next.
type Item struct {
	Kind   Kind
	Header nlmsg.Header

	// Raw is always populated: the undecoded payload bytes for this
	// message, so a caller can apply family-specific decoding regardless
	// of Kind.
	Raw []byte

	// Error/Done are populated when Kind is KindError/KindAck or
	// KindDone, respectively.
	Error *nlmsg.ErrorMsg
	Done  *nlmsg.DoneMsg
}

// MessageIter walks successive Nlmsghdr-framed messages in a filled
// receive buffer. It never blocks -- filling the buffer via a prior Recv is
// the caller's job -- and it is restartable: construct a fresh one over the
// same byte slice to walk it again.
type MessageIter struct {
	buf       *nlwire.Buffer
	extAck    bool
	exhausted bool
}

// New wraps a filled buffer of length n (as returned by nlsock.Conn.Recv)
// for iteration. extAck must reflect whether the owning socket enabled
// NETLINK_EXT_ACK, since that determines whether ERROR/DONE frames are
// parsed with a TLV trailer.
func New(data []byte, extAck bool) *MessageIter {
	return &MessageIter{buf: nlwire.NewBuffer(data), extAck: extAck}
}

// Next returns the next message in the buffer, or ok=false once the buffer
// is exhausted. It is bounded by buffer length and therefore always
// terminates.
func (it *MessageIter) Next() (Item, bool, error) {
	if it.exhausted || it.buf.Len() == 0 {
		it.exhausted = true
		return Item{}, false, nil
	}

	var hdr nlmsg.Header
	if err := hdr.DecodeNL(it.buf); err != nil {
		it.exhausted = true
		return Item{}, false, err
	}

	payloadLen := hdr.PayloadLen()
	if it.buf.Len() < payloadLen {
		it.exhausted = true
		return Item{}, false, &nlwire.TruncatedError{Expected: payloadLen, Got: it.buf.Len(), Offset: it.buf.Offset}
	}
	rawStart := it.buf.Offset
	raw, err := it.buf.ReadBytes(payloadLen)
	if err != nil {
		it.exhausted = true
		return Item{}, false, err
	}
	// Messages within a datagram are individually padded to a 4-byte
	// boundary; skip that padding before the next header, but do not
	// fail if we're at the very end of the buffer.
	if it.buf.Len() > 0 {
		if err := it.buf.SkipPad(); err != nil {
			it.exhausted = true
			return Item{}, false, err
		}
	}

	item := Item{Header: hdr, Raw: raw}
	switch hdr.Type {
	case nlmsg.ERROR:
		errBuf := nlwire.NewBuffer(it.buf.Bytes[rawStart : rawStart+payloadLen])
		em, derr := nlmsg.DecodeErrorMsgWithInput(errBuf, payloadLen, it.extAck)
		if derr != nil {
			it.exhausted = true
			return Item{}, false, derr
		}
		item.Error = em
		if em.IsAck() {
			item.Kind = KindAck
		} else {
			item.Kind = KindError
		}
	case nlmsg.DONE:
		doneBuf := nlwire.NewBuffer(it.buf.Bytes[rawStart : rawStart+payloadLen])
		dm, derr := nlmsg.DecodeDoneMsgWithInput(doneBuf, payloadLen, it.extAck)
		if derr != nil {
			it.exhausted = true
			return Item{}, false, derr
		}
		item.Done = dm
		item.Kind = KindDone
	default:
		item.Kind = KindData
	}
	return item, true, nil
}

// Reset rewinds the iterator to the start of its buffer, for the
// restartable requirement -- constructing a fresh iterator
// over the same buffer is equivalent and usually clearer, but Reset avoids
// a reallocation.
func (it *MessageIter) Reset() {
	it.buf.Offset = 0
	it.exhausted = false
}
