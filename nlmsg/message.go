package nlmsg

import (
	"fmt"

	"github.com/m-lab/go-netlink/nlwire"
)

// Payload is implemented by every payload variant (GenlMsg, RouteMsg,
// ErrorMsg, DoneMsg, RawMsg): something that can serialize itself into a
// Buffer. Message adds no padding after the payload; padding between
// messages in one datagram is the caller's job.
type Payload interface {
	EncodeNL(buf *nlwire.Buffer) (int, error)
}

// Message pairs a Header with its typed Payload -- the unit the socket
// layer sends and the router dispatches.
type Message struct {
	Header  Header
	Payload Payload
}

// EncodeNL serializes Header and Payload, fixing up Header.Len to the
// length invariant: hdr.length == 16 + payload bytes written (any
// attribute padding the payload emits is counted). It does not add
// trailing padding between messages; callers
// writing more than one message into a single datagram must pad between
// them with nlwire.Buffer.WritePad.
func (m Message) EncodeNL(buf *nlwire.Buffer) (int, error) {
	start := len(buf.Bytes)
	headerPos := len(buf.Bytes)
	// Write a placeholder header; Len is unknown until we see how much
	// payload the caller's Payload emits.
	if _, err := m.Header.EncodeNL(buf); err != nil {
		return 0, err
	}
	payloadStart := len(buf.Bytes)
	if m.Payload != nil {
		if _, err := m.Payload.EncodeNL(buf); err != nil {
			return len(buf.Bytes) - start, err
		}
	}
	payloadLen := len(buf.Bytes) - payloadStart
	total := HeaderLen + payloadLen
	if total > 0xFFFFFFFF {
		return len(buf.Bytes) - start, fmt.Errorf("nlmsg: message too large: %d bytes", total)
	}
	nlwire.NativeEndian().PutUint32(buf.Bytes[headerPos:headerPos+4], uint32(total))
	return len(buf.Bytes) - start, nil
}

// ParsedMessage is the result of decoding one datagram frame: the header
// plus a family-tagged union of which payload variant it carried. Exactly
// one of the typed fields is non-nil, selected by Header.Type, mirroring
// the tagged payload variants below.
type ParsedMessage struct {
	Header Header

	Error *ErrorMsg // Header.Type == ERROR
	Done  *DoneMsg  // Header.Type == DONE
	Genl  *GenlMsg  // Header.Type is a genl family id (caller-supplied)
	Route *RouteMsg // Header.Type is a route/other family message kind
	Raw   *RawMsg   // fallback: caller did not ask for typed decoding
}
