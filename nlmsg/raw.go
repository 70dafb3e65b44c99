package nlmsg

import "github.com/m-lab/go-netlink/nlwire"

// RawMsg is an opaque, unparsed payload -- the fallback for message types
// this library's caller does not (yet) know how to decode.
type RawMsg struct {
	Bytes []byte
}

// EncodeNL writes the raw bytes verbatim.
func (r RawMsg) EncodeNL(buf *nlwire.Buffer) (int, error) {
	buf.WriteBytes(r.Bytes)
	return len(r.Bytes), nil
}

// DecodeRawMsgWithInput reads exactly size bytes without interpreting them.
func DecodeRawMsgWithInput(buf *nlwire.Buffer, size int) (*RawMsg, error) {
	b, err := buf.ReadBytes(size)
	if err != nil {
		return nil, err
	}
	return &RawMsg{Bytes: append([]byte(nil), b...)}, nil
}
