package nlmsg

import "github.com/m-lab/go-netlink/nlwire"

// DoneMsg is the payload of a DONE-type message: the terminator of a MULTI
// dump. Status is a 32-bit code (conventionally 0) with an optional
// extended-ACK TLV trailer, exactly mirroring ErrorMsg's shape.
type DoneMsg struct {
	Status int32
	ExtAck *ExtAck
}

// EncodeNL serializes the status code and optional trailer.
func (d DoneMsg) EncodeNL(buf *nlwire.Buffer) (int, error) {
	start := len(buf.Bytes)
	buf.WriteInt32(nlwire.NativeEndian(), d.Status)
	if d.ExtAck != nil {
		if _, err := d.ExtAck.EncodeNL(buf); err != nil {
			return len(buf.Bytes) - start, err
		}
	}
	return len(buf.Bytes) - start, nil
}

// DecodeDoneMsgWithInput parses a DONE payload of exactly size bytes.
func DecodeDoneMsgWithInput(buf *nlwire.Buffer, size int, extAckEnabled bool) (*DoneMsg, error) {
	end := buf.Offset + size
	if buf.Len() < size {
		return nil, &nlwire.TruncatedError{Expected: size, Got: buf.Len(), Offset: buf.Offset}
	}
	status, err := buf.ReadInt32(nlwire.NativeEndian())
	if err != nil {
		return nil, err
	}
	d := &DoneMsg{Status: status}
	if extAckEnabled && buf.Offset < end {
		extAckBytes, err := buf.ReadBytes(end - buf.Offset)
		if err != nil {
			return nil, err
		}
		ea, err := DecodeExtAck(extAckBytes)
		if err != nil {
			return nil, err
		}
		d.ExtAck = ea
	} else if buf.Offset != end {
		return nil, &nlwire.TrailingBytesError{N: end - buf.Offset, Offset: buf.Offset}
	}
	return d, nil
}
