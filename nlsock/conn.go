package nlsock

import "errors"

// Errors returned across both the linux and non-linux Conn implementations.
var (
	// ErrNotSupported is returned by Open and by every fallible Conn
	// operation on a non-Linux GOOS, since AF_NETLINK is Linux-specific.
	ErrNotSupported = errors.New("nlsock: netlink sockets are only supported on linux")
	// ErrClosed is returned by operations on a Conn after Close.
	ErrClosed = errors.New("nlsock: use of closed connection")
)

// DefaultRcvBuf is the default receive buffer size a Conn requests via
// SO_RCVBUF, and the size of the buffer a Router allocates for Recv.
const DefaultRcvBuf = 32 * 1024

// Config holds the options a Conn is opened with. It is populated by
// Option functions rather than exposed as CLI flags: this library has no
// main of its own.
type Config struct {
	Pid           uint32
	Groups        []uint32
	NonBlocking   bool
	ExtAck        bool
	StrictCheck   bool
	RcvBufSize    int
}

// Option configures a Conn at Open time.
type Option func(*Config)

// WithPid pins the socket's port id instead of letting the kernel assign
// one at bind time.
func WithPid(pid uint32) Option {
	return func(c *Config) { c.Pid = pid }
}

// WithGroups subscribes to the given multicast groups at bind time.
func WithGroups(groups ...uint32) Option {
	return func(c *Config) { c.Groups = append(c.Groups, groups...) }
}

// WithNonBlocking puts the socket in non-blocking mode (O_NONBLOCK), for
// cooperative/async callers that poll rather than block in Recv.
func WithNonBlocking() Option {
	return func(c *Config) { c.NonBlocking = true }
}

// WithExtAck enables NETLINK_EXT_ACK, so ERROR/DONE frames carry the
// extended-ACK TLV trailer.
func WithExtAck() Option {
	return func(c *Config) { c.ExtAck = true }
}

// WithStrictCheck enables NETLINK_CAP_ACK at Open time (see
// Conn.EnableStrictChecking).
func WithStrictCheck() Option {
	return func(c *Config) { c.StrictCheck = true }
}

// WithRcvBuf sets the SO_RCVBUF size in bytes.
func WithRcvBuf(n int) Option {
	return func(c *Config) { c.RcvBufSize = n }
}

func newConfig(opts []Option) Config {
	cfg := Config{RcvBufSize: DefaultRcvBuf}
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}
