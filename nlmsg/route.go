package nlmsg

import (
	"github.com/m-lab/go-netlink/nlattr"
	"github.com/m-lab/go-netlink/nlwire"
)

// RouteMsg is the payload shape shared by the route, netfilter, and most
// other non-genl families: a fixed-size, family-defined struct (opaque
// bytes here, since family layouts are out of this library's scope)
// followed by a sequence of Rtattr attributes.
type RouteMsg struct {
	// Fixed holds the family-specific fixed-layout struct verbatim (e.g.
	// ifinfomsg, rtmsg, ndmsg); this library does not know its shape, only
	// that it precedes the attribute list.
	Fixed []byte
	Attrs nlattr.List[nlattr.Rtattr]
}

// Handle returns an attribute Handle over the message's Rtattr list.
func (r RouteMsg) Handle() nlattr.Handle[nlattr.Rtattr, *nlattr.Rtattr] {
	return nlattr.NewHandle[nlattr.Rtattr, *nlattr.Rtattr](r.Attrs)
}

// EncodeNL serializes the fixed struct followed by the attribute list.
func (r RouteMsg) EncodeNL(buf *nlwire.Buffer) (int, error) {
	start := len(buf.Bytes)
	buf.WriteBytes(r.Fixed)
	if _, err := r.Attrs.EncodeNL(buf); err != nil {
		return len(buf.Bytes) - start, err
	}
	return len(buf.Bytes) - start, nil
}

// DecodeRouteMsgWithInput parses a route/other-family payload of exactly
// size bytes. fixedLen is the caller-supplied size of the family's fixed
// struct (e.g. unix.SizeofIfInfomsg), since this library treats it as
// opaque.
func DecodeRouteMsgWithInput(buf *nlwire.Buffer, size, fixedLen int) (*RouteMsg, error) {
	if size < fixedLen {
		return nil, &nlwire.TruncatedError{Expected: fixedLen, Got: size, Offset: buf.Offset}
	}
	if buf.Len() < size {
		return nil, &nlwire.TruncatedError{Expected: size, Got: buf.Len(), Offset: buf.Offset}
	}
	fixed, err := buf.ReadBytes(fixedLen)
	if err != nil {
		return nil, err
	}
	attrs, err := nlattr.DecodeList[nlattr.Rtattr, *nlattr.Rtattr](buf, size-fixedLen)
	if err != nil {
		return nil, err
	}
	return &RouteMsg{Fixed: fixed, Attrs: attrs}, nil
}
