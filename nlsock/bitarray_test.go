package nlsock

import (
	"reflect"
	"testing"
)

func TestNetlinkBitArraySetClear(t *testing.T) {
	a := NewNetlinkBitArray()
	a.Set(3)
	a.Set(40) // exercises the >32 case that needs the getsockopt path
	if !a.IsSet(3) || !a.IsSet(40) {
		t.Fatal("expected both groups set")
	}
	if a.IsSet(4) {
		t.Fatal("group 4 should not be set")
	}
	want := []uint32{3, 40}
	if got := a.Groups(); !reflect.DeepEqual(got, want) {
		t.Errorf("Groups() = %v, want %v", got, want)
	}
	a.Clear(3)
	if a.IsSet(3) {
		t.Fatal("group 3 should be cleared")
	}
}

func TestNetlinkBitArrayFromWords(t *testing.T) {
	a := NetlinkBitArrayFromWords([]uint32{0b101})
	if !a.IsSet(0) || a.IsSet(1) || !a.IsSet(2) {
		t.Errorf("unexpected bits from words: %v", a.Groups())
	}
}
