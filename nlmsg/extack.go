package nlmsg

import (
	"github.com/m-lab/go-netlink/nlattr"
	"github.com/m-lab/go-netlink/nlwire"
)

// Extended-ACK attribute types, as carried in the TLV trailer of an
// ERROR/DONE frame when FlagAckTlvs is set.
const (
	ExtAckUnused uint16 = iota
	ExtAckMsg
	ExtAckOffset
	ExtAckCookie
	ExtAckPolicy
	ExtAckMissType
	ExtAckMissNest
)

// ExtAck is the optional, human-readable diagnostic trailer on an
// ERROR/DONE frame: message text, the byte offset of the offending field,
// the type of a missing attribute, and opaque policy info.
type ExtAck struct {
	Msg          string
	Offset       uint32
	HasOffset    bool
	MissType     uint16
	HasMissType  bool
	MissNest     uint16
	HasMissNest  bool
	PolicyCookie []byte
}

// DecodeExtAck parses the TLV trailer following an error/done status code.
// It is lenient: unrecognized attribute types are ignored so a newer kernel
// can add fields without breaking older clients.
func DecodeExtAck(b []byte) (*ExtAck, error) {
	buf := nlwire.NewBuffer(b)
	attrs, err := nlattr.DecodeList[nlattr.Attr, *nlattr.Attr](buf, len(b))
	if err != nil {
		return nil, err
	}
	ea := &ExtAck{}
	for _, a := range attrs {
		switch a.TypeOnly() {
		case ExtAckMsg:
			ea.Msg = nlattr.AsString(a.Payload)
		case ExtAckOffset:
			v, err := nlattr.AsUint32(a.Payload, nlattr.ErrorOnMismatch)
			if err == nil {
				ea.Offset = v
				ea.HasOffset = true
			}
		case ExtAckMissType:
			v, err := nlattr.AsUint16(a.Payload, nlattr.ErrorOnMismatch)
			if err == nil {
				ea.MissType = v
				ea.HasMissType = true
			}
		case ExtAckMissNest:
			v, err := nlattr.AsUint16(a.Payload, nlattr.ErrorOnMismatch)
			if err == nil {
				ea.MissNest = v
				ea.HasMissNest = true
			}
		case ExtAckPolicy, ExtAckCookie:
			ea.PolicyCookie = append([]byte(nil), a.Payload...)
		}
	}
	return ea, nil
}

// EncodeNL serializes the ExtAck as a TLV list, mainly useful for tests that
// round-trip a synthetic kernel reply.
func (ea *ExtAck) EncodeNL(buf *nlwire.Buffer) (int, error) {
	var l nlattr.List[nlattr.Attr]
	if ea.Msg != "" {
		l.Append(nlattr.Attr{Type: ExtAckMsg, Payload: nlattr.PayloadString(ea.Msg)})
	}
	if ea.HasOffset {
		l.Append(nlattr.Attr{Type: ExtAckOffset, Payload: nlattr.PayloadUint32(ea.Offset)})
	}
	if ea.HasMissType {
		l.Append(nlattr.Attr{Type: ExtAckMissType, Payload: nlattr.PayloadUint16(ea.MissType)})
	}
	if ea.HasMissNest {
		l.Append(nlattr.Attr{Type: ExtAckMissNest, Payload: nlattr.PayloadUint16(ea.MissNest)})
	}
	if len(ea.PolicyCookie) > 0 {
		l.Append(nlattr.Attr{Type: ExtAckPolicy, Payload: ea.PolicyCookie})
	}
	return l.EncodeNL(buf)
}
