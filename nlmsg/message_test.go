package nlmsg

import (
	"testing"

	"github.com/go-test/deep"
	"github.com/m-lab/go-netlink/nlattr"
	"github.com/m-lab/go-netlink/nlwire"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{Len: 16, Type: DONE, Flags: FlagMulti, Seq: 42, Pid: 1000}
	buf := nlwire.NewWriteBuffer(16)
	if _, err := h.EncodeNL(buf); err != nil {
		t.Fatal(err)
	}
	if len(buf.Bytes) != HeaderLen {
		t.Fatalf("encoded header is %d bytes, want %d", len(buf.Bytes), HeaderLen)
	}
	rb := nlwire.NewBuffer(buf.Bytes)
	var got Header
	if err := got.DecodeNL(rb); err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(got, h); diff != nil {
		t.Error(diff)
	}
}

func TestHeaderRejectsShortLength(t *testing.T) {
	buf := nlwire.NewWriteBuffer(16)
	h := Header{Len: 4}
	if _, err := h.EncodeNL(buf); err != nil {
		t.Fatal(err)
	}
	var got Header
	if err := got.DecodeNL(nlwire.NewBuffer(buf.Bytes)); err == nil {
		t.Fatal("expected error decoding header with length < 16")
	}
}

func TestMessageLengthInvariant(t *testing.T) {
	genl := GenlMsg{Cmd: 1, Version: 1}
	genl.Attrs.Append(nlattr.Attr{Type: 1, Payload: []byte("hello")})

	msg := Message{
		Header:  Header{Type: Type(17), Flags: FlagRequest, Seq: 5, Pid: 100},
		Payload: genl,
	}
	buf := nlwire.NewWriteBuffer(64)
	if _, err := msg.EncodeNL(buf); err != nil {
		t.Fatal(err)
	}

	var h Header
	rb := nlwire.NewBuffer(buf.Bytes)
	if err := h.DecodeNL(rb); err != nil {
		t.Fatal(err)
	}
	wantPayload := GenlHeaderLen + genl.Attrs.UnpaddedSize()
	if int(h.Len) != HeaderLen+wantPayload {
		t.Errorf("hdr.Len = %d, want %d", h.Len, HeaderLen+wantPayload)
	}

	decoded, err := DecodeGenlMsgWithInput(rb, h.PayloadLen())
	if err != nil {
		t.Fatal(err)
	}
	a, ok := decoded.Handle().GetAttr(1)
	if !ok || string(a.Payload) != "hello" {
		t.Errorf("round tripped attribute missing or wrong: %+v", decoded.Attrs)
	}
}

func TestErrorMsgRoundTripWithExtAck(t *testing.T) {
	orig := ErrorMsg{
		Errno: -2, // -ENOENT
		Req:   Header{Len: 16, Type: Type(20), Seq: 7, Pid: 55},
		ExtAck: &ExtAck{
			Msg:         "unknown family",
			HasMissType: true,
			MissType:    3,
		},
	}
	buf := nlwire.NewWriteBuffer(64)
	if _, err := orig.EncodeNL(buf); err != nil {
		t.Fatal(err)
	}
	rb := nlwire.NewBuffer(buf.Bytes)
	got, err := DecodeErrorMsgWithInput(rb, len(buf.Bytes), true)
	if err != nil {
		t.Fatal(err)
	}
	if got.Errno != -2 || got.IsAck() {
		t.Errorf("unexpected errno: %+v", got)
	}
	if got.ExtAck == nil || got.ExtAck.Msg != "unknown family" {
		t.Errorf("ext ack not round tripped: %+v", got.ExtAck)
	}
	if !got.ExtAck.HasMissType || got.ExtAck.MissType != 3 {
		t.Errorf("miss-type not round tripped: %+v", got.ExtAck)
	}
}

func TestBuilderRequiresTypeAndPayload(t *testing.T) {
	if _, err := NewBuilder().Build(); err != ErrMissingType {
		t.Errorf("expected ErrMissingType, got %v", err)
	}
	if _, err := NewBuilder().Type(DONE).Build(); err != ErrMissingPayload {
		t.Errorf("expected ErrMissingPayload, got %v", err)
	}
	msg, err := NewBuilder().Type(Type(18)).AddFlags(FlagRequest).Payload(RawMsg{}).Build()
	if err != nil {
		t.Fatal(err)
	}
	if msg.Header.Type != Type(18) || !msg.Header.Flags.Has(FlagRequest) {
		t.Errorf("builder did not apply fields: %+v", msg.Header)
	}
}

func TestFlagsString(t *testing.T) {
	f := FlagRequest.Union(FlagDump)
	if got := f.String(); got != "REQUEST|ROOT|MATCH" {
		t.Errorf("Flags.String() = %q", got)
	}
}
