//go:build linux

package nlsock

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// Conn is a bound AF_NETLINK datagram socket. Send is safe for concurrent
// use (guarded internally); Recv is not meant to be called concurrently by
// multiple goroutines, matching the single demultiplexer owner model a
// Router builds on top of a Conn.
type Conn struct {
	fd       int
	family   int
	pid      uint32
	groups   *NetlinkBitArray
	extAck   bool
	blocking bool

	sendMu sync.Mutex
	mu     sync.Mutex
	closed bool
}

// Open creates and binds an AF_NETLINK socket for the given protocol
// family (e.g. unix.NETLINK_ROUTE, unix.NETLINK_GENERIC).
func Open(family int, opts ...Option) (*Conn, error) {
	cfg := newConfig(opts)

	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_RAW|unix.SOCK_CLOEXEC, family)
	if err != nil {
		return nil, fmt.Errorf("nlsock: socket: %w", err)
	}

	c := &Conn{fd: fd, family: family, groups: NewNetlinkBitArray(), blocking: !cfg.NonBlocking}

	if err := c.bind(cfg); err != nil {
		unix.Close(fd)
		return nil, err
	}
	if cfg.NonBlocking {
		if err := unix.SetNonblock(fd, true); err != nil {
			unix.Close(fd)
			return nil, fmt.Errorf("nlsock: set nonblock: %w", err)
		}
	}
	if cfg.ExtAck {
		if err := c.enableExtAckLocked(); err != nil {
			unix.Close(fd)
			return nil, err
		}
	}
	if cfg.StrictCheck {
		if err := c.enableStrictCheckingLocked(); err != nil {
			unix.Close(fd)
			return nil, err
		}
	}
	if err := c.setRcvBufLocked(cfg.RcvBufSize); err != nil {
		unix.Close(fd)
		return nil, err
	}
	return c, nil
}

func (c *Conn) bind(cfg Config) error {
	sa := &unix.SockaddrNetlink{Family: unix.AF_NETLINK, Pid: cfg.Pid}
	for _, g := range cfg.Groups {
		c.groups.Set(g)
	}
	sa.Groups = c.groups.LegacyMask()
	if err := unix.Bind(c.fd, sa); err != nil {
		return fmt.Errorf("nlsock: bind: %w", err)
	}
	addr, err := unix.Getsockname(c.fd)
	if err != nil {
		return fmt.Errorf("nlsock: getsockname: %w", err)
	}
	bound, ok := addr.(*unix.SockaddrNetlink)
	if !ok {
		return fmt.Errorf("nlsock: getsockname returned unexpected address type %T", addr)
	}
	c.pid = bound.Pid
	for _, g := range cfg.Groups {
		if g > 32 {
			if err := c.addMembershipLocked(g); err != nil {
				return err
			}
		}
	}
	return nil
}

// Pid returns the bound port id, assigned by the kernel at bind time if
// the caller did not pin one.
func (c *Conn) Pid() uint32 {
	return c.pid
}

// Send writes one fully serialized message as a single datagram. Send is
// stateless: the socket does not remember what it sent.
func (c *Conn) Send(b []byte) (int, error) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.isClosed() {
		return 0, ErrClosed
	}
	sa := &unix.SockaddrNetlink{Family: unix.AF_NETLINK}
	if err := unix.Sendto(c.fd, b, 0, sa); err != nil {
		if err == unix.EAGAIN {
			return 0, fmt.Errorf("nlsock: send: %w", unix.EWOULDBLOCK)
		}
		return 0, fmt.Errorf("nlsock: send: %w", err)
	}
	return len(b), nil
}

// Recv reads exactly one datagram into buf. If the datagram was larger
// than len(buf), truncated is true and the kernel has discarded the excess
// (MSG_TRUNC semantics).
func (c *Conn) Recv(buf []byte) (n int, truncated bool, err error) {
	if c.isClosed() {
		return 0, false, ErrClosed
	}
	n, _, flags, _, err := unix.Recvmsg(c.fd, buf, nil, 0)
	if err != nil {
		if err == unix.EAGAIN {
			return 0, false, fmt.Errorf("nlsock: recv: %w", unix.EWOULDBLOCK)
		}
		return 0, false, fmt.Errorf("nlsock: recv: %w", err)
	}
	truncated = flags&unix.MSG_TRUNC != 0
	return n, truncated, nil
}

// Fd returns the underlying file descriptor, for use with unix.Poll by a
// non-blocking demultiplexer.
func (c *Conn) Fd() int {
	return c.fd
}

func (c *Conn) addMembershipLocked(group uint32) error {
	if err := unix.SetsockoptInt(c.fd, unix.SOL_NETLINK, unix.NETLINK_ADD_MEMBERSHIP, int(group)); err != nil {
		return fmt.Errorf("nlsock: add membership %d: %w", group, err)
	}
	c.groups.Set(group)
	return nil
}

// AddMcastMembership joins multicast group.
func (c *Conn) AddMcastMembership(group uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addMembershipLocked(group)
}

// DropMcastMembership leaves multicast group.
func (c *Conn) DropMcastMembership(group uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := unix.SetsockoptInt(c.fd, unix.SOL_NETLINK, unix.NETLINK_DROP_MEMBERSHIP, int(group)); err != nil {
		return fmt.Errorf("nlsock: drop membership %d: %w", group, err)
	}
	c.groups.Clear(group)
	return nil
}

// ListMcastMemberships returns the set of groups this socket currently
// belongs to, as tracked locally (mirroring NETLINK_LIST_MEMBERSHIPS).
func (c *Conn) ListMcastMemberships() *NetlinkBitArray {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := NewNetlinkBitArray()
	for _, g := range c.groups.Groups() {
		out.Set(g)
	}
	return out
}

func (c *Conn) enableExtAckLocked() error {
	if err := unix.SetsockoptInt(c.fd, unix.SOL_NETLINK, unix.NETLINK_EXT_ACK, 1); err != nil {
		return fmt.Errorf("nlsock: enable ext ack: %w", err)
	}
	c.extAck = true
	return nil
}

// EnableExtAck turns on NETLINK_EXT_ACK so error/done frames may carry a
// TLV diagnostic trailer.
func (c *Conn) EnableExtAck(enable bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !enable {
		c.extAck = false
		return unix.SetsockoptInt(c.fd, unix.SOL_NETLINK, unix.NETLINK_EXT_ACK, 0)
	}
	return c.enableExtAckLocked()
}

// ExtAckEnabled reports whether this socket has extended ACKs turned on.
func (c *Conn) ExtAckEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.extAck
}

func (c *Conn) enableStrictCheckingLocked() error {
	if err := unix.SetsockoptInt(c.fd, unix.SOL_NETLINK, unix.NETLINK_CAP_ACK, 1); err != nil {
		return fmt.Errorf("nlsock: enable strict checking: %w", err)
	}
	return nil
}

// EnableStrictChecking turns on NETLINK_CAP_ACK, truncating successful ACK
// payloads to just the error code.
func (c *Conn) EnableStrictChecking(enable bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := 0
	if enable {
		v = 1
	}
	if err := unix.SetsockoptInt(c.fd, unix.SOL_NETLINK, unix.NETLINK_CAP_ACK, v); err != nil {
		return fmt.Errorf("nlsock: set strict checking: %w", err)
	}
	return nil
}

func (c *Conn) setRcvBufLocked(n int) error {
	if err := unix.SetsockoptInt(c.fd, unix.SOL_SOCKET, unix.SO_RCVBUF, n); err != nil {
		// Fall back to SO_RCVBUFFORCE, which can exceed the
		// administratively configured ceiling (needs CAP_NET_ADMIN).
		if fErr := unix.SetsockoptInt(c.fd, unix.SOL_SOCKET, unix.SO_RCVBUFFORCE, n); fErr != nil {
			return fmt.Errorf("nlsock: set rcvbuf %d: %w", n, err)
		}
	}
	return nil
}

// SetRcvBuf resizes the socket's receive buffer.
func (c *Conn) SetRcvBuf(n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setRcvBufLocked(n)
}

func (c *Conn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Close releases the underlying file descriptor. Subsequent operations
// return ErrClosed; any goroutine blocked in Recv observes the descriptor
// close as an error, which a Router relies on to unwind its receive loop
// on shutdown.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return unix.Close(c.fd)
}
