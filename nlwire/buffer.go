// Package nlwire implements the low level netlink wire codec: a cursor-based
// byte buffer, NLA_ALIGNTO padding, and host/network byte order primitives.
// Everything in this package is pure -- it never touches a socket.
package nlwire

import (
	"encoding/binary"
	"unsafe"
)

// Align is the NLA_ALIGNTO alignment granularity used throughout netlink:
// every attribute and every message within a datagram is padded up to a
// multiple of this many bytes.
const Align = 4

// Buffer is a contiguous byte region plus a read or write cursor. All codec
// operations in this package advance Offset; alignment padding is produced
// or consumed against Offset mod Align.
type Buffer struct {
	Bytes  []byte
	Offset int
}

// NewBuffer wraps b for reading starting at offset 0.
func NewBuffer(b []byte) *Buffer {
	return &Buffer{Bytes: b}
}

// NewWriteBuffer returns an empty Buffer ready to grow via Write*.
func NewWriteBuffer(sizeHint int) *Buffer {
	return &Buffer{Bytes: make([]byte, 0, sizeHint)}
}

// Len returns the number of unread bytes remaining.
func (b *Buffer) Len() int {
	return len(b.Bytes) - b.Offset
}

// Remaining returns a slice view of the unread tail without advancing the
// cursor.
func (b *Buffer) Remaining() []byte {
	return b.Bytes[b.Offset:]
}

// Advance moves the read cursor forward n bytes. It does not bounds check;
// callers must have validated Len() >= n first.
func (b *Buffer) Advance(n int) {
	b.Offset += n
}

// PadLen returns the number of zero bytes needed to bring n up to a
// multiple of Align.
func PadLen(n int) int {
	return (Align - n%Align) % Align
}

// AlignUp rounds n up to the next multiple of Align.
func AlignUp(n int) int {
	return n + PadLen(n)
}

// WritePad appends the padding bytes needed to bring the buffer's current
// length to a multiple of Align.
func (b *Buffer) WritePad() {
	n := PadLen(len(b.Bytes))
	for i := 0; i < n; i++ {
		b.Bytes = append(b.Bytes, 0)
	}
}

// SkipPad advances the read cursor past the padding bytes following the
// value just read, returning an error if they are not there.
func (b *Buffer) SkipPad() error {
	n := PadLen(b.Offset)
	if b.Len() < n {
		return &TruncatedError{Expected: n, Got: b.Len(), Offset: b.Offset}
	}
	b.Offset += n
	return nil
}

// native is the host byte order. Linux netlink headers and attribute
// headers are always host-endian; this is computed once like
// nl.NativeEndian() in vishvananda/netlink, but without the extra
// dependency.
var native = func() binary.ByteOrder {
	var x uint16 = 1
	buf := (*[2]byte)(unsafe.Pointer(&x))
	if buf[0] == 1 {
		return binary.LittleEndian
	}
	return binary.BigEndian
}()

// NativeEndian returns the host byte order used for netlink and attribute
// headers.
func NativeEndian() binary.ByteOrder {
	return native
}

// WriteUint16 appends v in the given byte order.
func (b *Buffer) WriteUint16(order binary.ByteOrder, v uint16) {
	var tmp [2]byte
	order.PutUint16(tmp[:], v)
	b.Bytes = append(b.Bytes, tmp[:]...)
}

// WriteUint32 appends v in the given byte order.
func (b *Buffer) WriteUint32(order binary.ByteOrder, v uint32) {
	var tmp [4]byte
	order.PutUint32(tmp[:], v)
	b.Bytes = append(b.Bytes, tmp[:]...)
}

// WriteUint64 appends v in the given byte order.
func (b *Buffer) WriteUint64(order binary.ByteOrder, v uint64) {
	var tmp [8]byte
	order.PutUint64(tmp[:], v)
	b.Bytes = append(b.Bytes, tmp[:]...)
}

// WriteInt32 appends v in the given byte order.
func (b *Buffer) WriteInt32(order binary.ByteOrder, v int32) {
	b.WriteUint32(order, uint32(v))
}

// WriteBytes appends raw bytes with no length prefix and no padding.
func (b *Buffer) WriteBytes(p []byte) {
	b.Bytes = append(b.Bytes, p...)
}

// ReadUint16 reads a uint16 in the given byte order and advances the cursor.
func (b *Buffer) ReadUint16(order binary.ByteOrder) (uint16, error) {
	if b.Len() < 2 {
		return 0, &TruncatedError{Expected: 2, Got: b.Len(), Offset: b.Offset}
	}
	v := order.Uint16(b.Bytes[b.Offset:])
	b.Offset += 2
	return v, nil
}

// ReadUint32 reads a uint32 in the given byte order and advances the cursor.
func (b *Buffer) ReadUint32(order binary.ByteOrder) (uint32, error) {
	if b.Len() < 4 {
		return 0, &TruncatedError{Expected: 4, Got: b.Len(), Offset: b.Offset}
	}
	v := order.Uint32(b.Bytes[b.Offset:])
	b.Offset += 4
	return v, nil
}

// ReadUint64 reads a uint64 in the given byte order and advances the cursor.
func (b *Buffer) ReadUint64(order binary.ByteOrder) (uint64, error) {
	if b.Len() < 8 {
		return 0, &TruncatedError{Expected: 8, Got: b.Len(), Offset: b.Offset}
	}
	v := order.Uint64(b.Bytes[b.Offset:])
	b.Offset += 8
	return v, nil
}

// ReadInt32 reads an int32 in the given byte order and advances the cursor.
func (b *Buffer) ReadInt32(order binary.ByteOrder) (int32, error) {
	v, err := b.ReadUint32(order)
	return int32(v), err
}

// ReadBytes reads n raw bytes without copying, returning a slice into the
// underlying buffer, and advances the cursor.
func (b *Buffer) ReadBytes(n int) ([]byte, error) {
	if b.Len() < n {
		return nil, &TruncatedError{Expected: n, Got: b.Len(), Offset: b.Offset}
	}
	v := b.Bytes[b.Offset : b.Offset+n]
	b.Offset += n
	return v, nil
}
