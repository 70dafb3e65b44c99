//go:build linux

package nlsock

import (
	"testing"

	"github.com/m-lab/go/rtx"
	"golang.org/x/sys/unix"
)

// TestOpenBindRoute exercises a real AF_NETLINK socket end to end rather
// than mocking one. It is skipped in sandboxes that deny AF_NETLINK; once
// open, subsequent calls are expected to succeed and use rtx.Must.
func TestOpenBindRoute(t *testing.T) {
	c, err := Open(unix.NETLINK_ROUTE)
	if err != nil {
		t.Skipf("netlink socket unavailable in this environment: %v", err)
	}
	defer c.Close()

	if c.Pid() == 0 {
		t.Error("expected kernel to assign a non-zero port id")
	}

	rtx.Must(c.SetRcvBuf(64*1024), "SetRcvBuf")
}

func TestOpenWithExtAck(t *testing.T) {
	c, err := Open(unix.NETLINK_ROUTE, WithExtAck())
	if err != nil {
		t.Skipf("netlink socket unavailable in this environment: %v", err)
	}
	defer c.Close()
	if !c.ExtAckEnabled() {
		t.Error("expected ExtAckEnabled() after WithExtAck")
	}
}

func TestSendRecvRouteDump(t *testing.T) {
	c, err := Open(unix.NETLINK_ROUTE)
	if err != nil {
		t.Skipf("netlink socket unavailable in this environment: %v", err)
	}
	defer c.Close()

	// RTM_GETLINK dump: header plus a zeroed ifinfomsg-sized payload.
	hdr := make([]byte, 16+16) // Nlmsghdr + minimal ifinfomsg-sized filler
	order := unix.NativeEndian
	order.PutUint32(hdr[0:4], uint32(len(hdr)))
	order.PutUint16(hdr[4:6], uint16(unix.RTM_GETLINK))
	order.PutUint16(hdr[6:8], uint16(unix.NLM_F_REQUEST|unix.NLM_F_DUMP))
	order.PutUint32(hdr[8:12], 1)
	order.PutUint32(hdr[12:16], c.Pid())

	_, err = c.Send(hdr)
	rtx.Must(err, "Send")

	buf := make([]byte, DefaultRcvBuf)
	n, truncated, err := c.Recv(buf)
	rtx.Must(err, "Recv")
	if truncated {
		t.Error("did not expect truncation for a small dump buffer")
	}
	if n < 16 {
		t.Errorf("expected at least one full header back, got %d bytes", n)
	}
}
