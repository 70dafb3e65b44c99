package nliter

import (
	"testing"

	"github.com/go-test/deep"
	"github.com/m-lab/go-netlink/nlmsg"
	"github.com/m-lab/go-netlink/nlwire"
)

func encodeMessage(t *testing.T, typ nlmsg.Type, flags nlmsg.Flags, seq, pid uint32, payload nlmsg.Payload) []byte {
	t.Helper()
	b := nlmsg.Builder{}
	msg, err := b.Type(typ).Flags(flags).Seq(seq).Pid(pid).Payload(payload).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	buf := nlwire.NewWriteBuffer(64)
	if _, err := msg.EncodeNL(buf); err != nil {
		t.Fatalf("EncodeNL: %v", err)
	}
	return buf.Bytes
}

func TestIterClassifiesAckDoneErrorData(t *testing.T) {
	ack := encodeMessage(t, nlmsg.ERROR, 0, 1, 100, &nlmsg.ErrorMsg{Errno: 0, Req: nlmsg.Header{Len: nlmsg.HeaderLen, Type: 16, Seq: 1, Pid: 100}})
	errMsg := encodeMessage(t, nlmsg.ERROR, 0, 2, 100, &nlmsg.ErrorMsg{Errno: -2, Req: nlmsg.Header{Len: nlmsg.HeaderLen, Type: 16, Seq: 2, Pid: 100}})
	done := encodeMessage(t, nlmsg.DONE, nlmsg.FlagMulti, 3, 100, &nlmsg.DoneMsg{Status: 0})
	data := encodeMessage(t, 16, nlmsg.FlagMulti, 4, 100, &nlmsg.RawMsg{Bytes: []byte{1, 2, 3, 4}})

	var all []byte
	all = append(all, ack...)
	all = append(all, errMsg...)
	all = append(all, done...)
	all = append(all, data...)

	it := New(all, false)
	var kinds []Kind
	for {
		item, ok, err := it.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		kinds = append(kinds, item.Kind)
	}
	want := []Kind{KindAck, KindError, KindDone, KindData}
	if diff := deep.Equal(kinds, want); diff != nil {
		t.Errorf("kinds mismatch: %v", diff)
	}
}

func TestIterResetReplaysSameSequence(t *testing.T) {
	data := encodeMessage(t, 16, 0, 1, 7, &nlmsg.RawMsg{Bytes: []byte{9, 9}})
	it := New(data, false)
	first, ok, err := it.Next()
	if err != nil || !ok {
		t.Fatalf("first Next: ok=%v err=%v", ok, err)
	}
	it.Reset()
	second, ok, err := it.Next()
	if err != nil || !ok {
		t.Fatalf("second Next: ok=%v err=%v", ok, err)
	}
	if diff := deep.Equal(first, second); diff != nil {
		t.Errorf("replay mismatch: %v", diff)
	}
}

func TestIterEmptyBufferYieldsNothing(t *testing.T) {
	it := New(nil, false)
	_, ok, err := it.Next()
	if err != nil {
		t.Fatalf("Next on empty buffer: %v", err)
	}
	if ok {
		t.Fatal("expected no items from an empty buffer")
	}
}

func TestIterTruncatedHeaderErrors(t *testing.T) {
	it := New([]byte{1, 2, 3}, false)
	_, _, err := it.Next()
	if err == nil {
		t.Fatal("expected a truncation error for a 3-byte buffer")
	}
}
