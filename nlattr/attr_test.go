package nlattr

import (
	"testing"

	"github.com/go-test/deep"
	"github.com/m-lab/go-netlink/nlwire"
)

func TestAttrRoundTrip(t *testing.T) {
	a := Attr{Type: 1, Payload: []byte("hello")}
	buf := nlwire.NewWriteBuffer(16)
	n, err := a.EncodeNL(buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != a.UnpaddedSize() {
		t.Errorf("EncodeNL wrote %d bytes, want %d (unpadded)", n, a.UnpaddedSize())
	}

	rb := nlwire.NewBuffer(buf.Bytes)
	var got Attr
	if err := got.DecodeNL(rb); err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(got, a); diff != nil {
		t.Error(diff)
	}
}

func TestAttrPaddingFootprint(t *testing.T) {
	// A 5-byte string payload has nla_len=9 and on-wire footprint 12
	// (pad 3); two such attributes back to back occupy 24 bytes.
	a := Attr{Type: 1, Payload: []byte("hello")}
	if a.UnpaddedSize() != 9 {
		t.Errorf("UnpaddedSize = %d, want 9", a.UnpaddedSize())
	}
	if a.PaddedSize() != 12 {
		t.Errorf("PaddedSize = %d, want 12", a.PaddedSize())
	}

	var l List[Attr]
	l.Append(a)
	l.Append(a)
	buf := nlwire.NewWriteBuffer(32)
	if _, err := l.EncodeNL(buf); err != nil {
		t.Fatal(err)
	}
	if len(buf.Bytes) != 24 {
		t.Errorf("two attrs occupy %d bytes, want 24", len(buf.Bytes))
	}
	if len(buf.Bytes)%nlwire.Align != 0 {
		t.Errorf("cursor not aligned: %d", len(buf.Bytes))
	}
}

func TestNestedAttrRoundTrip(t *testing.T) {
	// Build Attr{type=2|NESTED, payload=[Attr{type=3, payload=u32
	// 0xDEADBEEF}]}.
	var inner List[Attr]
	inner.Append(Attr{Type: 3, Payload: PayloadUint32(0xDEADBEEF)})

	innerBuf := nlwire.NewWriteBuffer(16)
	if _, err := inner.EncodeNL(innerBuf); err != nil {
		t.Fatal(err)
	}

	outer := Attr{Type: 2 | NLA_F_NESTED, Payload: innerBuf.Bytes}
	if !outer.IsNested() {
		t.Fatal("expected NESTED flag set")
	}

	outerBuf := nlwire.NewWriteBuffer(32)
	if _, err := outer.EncodeNL(outerBuf); err != nil {
		t.Fatal(err)
	}

	rb := nlwire.NewBuffer(outerBuf.Bytes)
	var decodedOuter Attr
	if err := decodedOuter.DecodeNL(rb); err != nil {
		t.Fatal(err)
	}

	h := NewHandle[Attr, *Attr](List[Attr]{decodedOuter})
	nested, err := GetNested[Attr, *Attr](h, 2)
	if err != nil {
		t.Fatal(err)
	}
	innerAttr, ok := nested.GetAttr(3)
	if !ok {
		t.Fatal("expected nested attribute type 3")
	}
	got, err := AsUint32(innerAttr.Payload, ErrorOnMismatch)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0xDEADBEEF {
		t.Errorf("got %#x, want 0xDEADBEEF", got)
	}
}

func TestGetAttrMissing(t *testing.T) {
	h := NewHandle[Attr, *Attr](List[Attr]{{Type: 1, Payload: []byte{1}}})
	if _, ok := h.GetAttr(99); ok {
		t.Error("expected GetAttr(99) to miss")
	}
	_, err := GetAttrPayloadAs[Attr, *Attr, uint32](h, 99, func(b []byte) (uint32, error) {
		return AsUint32(b, ErrorOnMismatch)
	})
	if _, ok := err.(*ErrMissingAttr); !ok {
		t.Errorf("expected ErrMissingAttr, got %v (%T)", err, err)
	}
}

func TestDuplicateAttrTypesPreserveOrder(t *testing.T) {
	l := List[Attr]{
		{Type: 1, Payload: []byte("a")},
		{Type: 1, Payload: []byte("b")},
	}
	h := NewHandle[Attr, *Attr](l)
	got, ok := h.GetAttr(1)
	if !ok || string(got.Payload) != "a" {
		t.Errorf("GetAttr should return first match in order, got %+v", got)
	}
	if len(h.Items()) != 2 {
		t.Errorf("expected both duplicates preserved, got %d", len(h.Items()))
	}
}
