package nlmsg

import (
	"github.com/m-lab/go-netlink/nlattr"
	"github.com/m-lab/go-netlink/nlwire"
)

// GenlHeaderLen is the size of the fixed generic-netlink sub-header: cmd
// (u8), version (u8), reserved (u16).
const GenlHeaderLen = 4

// GenlMsg is the payload of a generic-netlink message: a 4-byte sub-header
// followed by a sequence of Attr attributes.
type GenlMsg struct {
	Cmd     uint8
	Version uint8
	Attrs   nlattr.List[nlattr.Attr]
}

// Handle returns an attribute Handle over the message's attribute list.
func (g GenlMsg) Handle() nlattr.Handle[nlattr.Attr, *nlattr.Attr] {
	return nlattr.NewHandle[nlattr.Attr, *nlattr.Attr](g.Attrs)
}

// EncodeNL serializes the sub-header and the attribute list (including
// inter-attribute padding).
func (g GenlMsg) EncodeNL(buf *nlwire.Buffer) (int, error) {
	start := len(buf.Bytes)
	order := nlwire.NativeEndian()
	buf.WriteBytes([]byte{g.Cmd, g.Version})
	// reserved
	buf.WriteUint16(order, 0)
	if _, err := g.Attrs.EncodeNL(buf); err != nil {
		return len(buf.Bytes) - start, err
	}
	return len(buf.Bytes) - start, nil
}

// DecodeGenlMsgWithInput parses a generic-netlink payload of exactly size
// bytes.
func DecodeGenlMsgWithInput(buf *nlwire.Buffer, size int) (*GenlMsg, error) {
	if size < GenlHeaderLen {
		return nil, &nlwire.TruncatedError{Expected: GenlHeaderLen, Got: size, Offset: buf.Offset}
	}
	if buf.Len() < size {
		return nil, &nlwire.TruncatedError{Expected: size, Got: buf.Len(), Offset: buf.Offset}
	}
	cmdVerBytes, err := buf.ReadBytes(2)
	if err != nil {
		return nil, err
	}
	cmd, version := cmdVerBytes[0], cmdVerBytes[1]
	if _, err := buf.ReadUint16(nlwire.NativeEndian()); err != nil { // reserved
		return nil, err
	}
	attrs, err := nlattr.DecodeList[nlattr.Attr, *nlattr.Attr](buf, size-GenlHeaderLen)
	if err != nil {
		return nil, err
	}
	return &GenlMsg{Cmd: cmd, Version: version, Attrs: attrs}, nil
}
