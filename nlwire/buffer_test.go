package nlwire

import (
	"encoding/binary"
	"testing"

	"github.com/go-test/deep"
)

func TestPadLen(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, 0},
		{1, 3},
		{2, 2},
		{3, 1},
		{4, 0},
		{5, 3},
		{9, 3},
		{12, 0},
	}
	for _, tt := range tests {
		if got := PadLen(tt.n); got != tt.want {
			t.Errorf("PadLen(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestWritePadAlignsCursor(t *testing.T) {
	b := NewWriteBuffer(16)
	b.WriteBytes([]byte("hello")) // 5 bytes
	b.WritePad()
	if len(b.Bytes)%Align != 0 {
		t.Errorf("buffer length %d not aligned to %d", len(b.Bytes), Align)
	}
	if len(b.Bytes) != 8 {
		t.Errorf("len = %d, want 8", len(b.Bytes))
	}
}

func TestUint32RoundTrip(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian, NativeEndian()} {
		wb := NewWriteBuffer(4)
		wb.WriteUint32(order, 0xDEADBEEF)
		rb := NewBuffer(wb.Bytes)
		got, err := rb.ReadUint32(order)
		if err != nil {
			t.Fatalf("ReadUint32: %v", err)
		}
		if got != 0xDEADBEEF {
			t.Errorf("got %#x, want %#x", got, uint32(0xDEADBEEF))
		}
		if rb.Len() != 0 {
			t.Errorf("expected cursor to consume whole buffer, %d bytes remain", rb.Len())
		}
	}
}

func TestReadTruncated(t *testing.T) {
	rb := NewBuffer([]byte{1, 2})
	_, err := rb.ReadUint32(NativeEndian())
	if err == nil {
		t.Fatal("expected TruncatedError, got nil")
	}
	if diff := deep.Equal(err, &TruncatedError{Expected: 4, Got: 2, Offset: 0}); diff != nil {
		t.Error(diff)
	}
}

func TestDecodeExactEnforcesSize(t *testing.T) {
	d := &fixedSizeThing{n: 2}
	buf := NewBuffer([]byte{1, 2, 3, 4})
	if err := DecodeExact(d, buf, 4); err == nil {
		t.Fatal("expected trailing bytes error")
	}
}

type fixedSizeThing struct{ n int }

func (f *fixedSizeThing) DecodeSizedNL(buf *Buffer, size int) error {
	_, err := buf.ReadBytes(f.n)
	return err
}
