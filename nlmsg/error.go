package nlmsg

import (
	"github.com/m-lab/go-netlink/nlwire"
	"golang.org/x/sys/unix"
)

// ErrorMsg is the payload of an ERROR-type message: a signed errno (0 means
// ACK) followed by the original request's header, and -- if the receiving
// socket enabled extended ACKs -- a TLV trailer.
type ErrorMsg struct {
	// Errno is the kernel's reported error, negated Linux errno, or 0 for
	// a plain ACK.
	Errno int32
	// Req is the header of the request this is a response to, echoed back
	// by the kernel.
	Req Header
	// ExtAck is non-nil only when the payload was decoded with
	// extended ACKs enabled and a trailer was present; Header.Flags is
	// not consulted.
	ExtAck *ExtAck
}

// IsAck reports whether this is a plain acknowledgement (errno == 0) rather
// than an error.
func (e ErrorMsg) IsAck() bool {
	return e.Errno == 0
}

// AsErrno returns e.Errno as a Go syscall.Errno for comparison against
// standard errno sentinels (e.g. unix.ENOENT), or nil if this is an ACK.
func (e ErrorMsg) AsErrno() error {
	if e.Errno == 0 {
		return nil
	}
	return unix.Errno(-e.Errno)
}

// EncodeNL serializes the error code and echoed request header, followed
// by the extended-ACK trailer when ExtAck is non-nil, matching
// DecodeErrorMsgWithInput's expectations.
func (e ErrorMsg) EncodeNL(buf *nlwire.Buffer) (int, error) {
	start := len(buf.Bytes)
	buf.WriteInt32(nlwire.NativeEndian(), e.Errno)
	if _, err := e.Req.EncodeNL(buf); err != nil {
		return len(buf.Bytes) - start, err
	}
	if e.ExtAck != nil {
		if _, err := e.ExtAck.EncodeNL(buf); err != nil {
			return len(buf.Bytes) - start, err
		}
	}
	return len(buf.Bytes) - start, nil
}

// DecodeErrorMsgWithInput parses an ERROR payload of exactly size bytes.
// extAckEnabled must reflect whether the owning socket turned on
// NETLINK_EXT_ACK, since the kernel only appends the TLV trailer in that
// case and there is no other signal in the payload itself.
func DecodeErrorMsgWithInput(buf *nlwire.Buffer, size int, extAckEnabled bool) (*ErrorMsg, error) {
	end := buf.Offset + size
	if buf.Len() < size {
		return nil, &nlwire.TruncatedError{Expected: size, Got: buf.Len(), Offset: buf.Offset}
	}
	errno, err := buf.ReadInt32(nlwire.NativeEndian())
	if err != nil {
		return nil, err
	}
	var req Header
	if err := req.DecodeNL(buf); err != nil {
		return nil, err
	}
	e := &ErrorMsg{Errno: errno, Req: req}
	if extAckEnabled && buf.Offset < end {
		extAckBytes, err := buf.ReadBytes(end - buf.Offset)
		if err != nil {
			return nil, err
		}
		ea, err := DecodeExtAck(extAckBytes)
		if err != nil {
			return nil, err
		}
		e.ExtAck = ea
	} else if buf.Offset != end {
		return nil, &nlwire.TrailingBytesError{N: end - buf.Offset, Offset: buf.Offset}
	}
	return e, nil
}
