// Package nlrouter implements the concurrency core: a single goroutine
// demultiplexes a netlink socket's incoming datagrams to the request (or
// multicast subscription) each frame belongs to, allocating sequence
// numbers and validating that every reply carries this router's own bound
// port id in its pid field.
//
// A single-consumer loop owning one socket for the lifetime of a dump
// request would check sequence number, peer pid, and message type by hand
// in a tight loop. Router keeps that same validation but lets many
// concurrent callers share one socket, each with their own sequence number
// and response channel.
package nlrouter

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/m-lab/go-netlink/nliter"
	"github.com/m-lab/go-netlink/nlmetrics"
	"github.com/m-lab/go-netlink/nlmsg"
	"github.com/m-lab/go-netlink/nlsock"
	"github.com/m-lab/go-netlink/nlwire"
)

// ErrRouterClosed is returned by Request and Subscribe once Close has run.
var ErrRouterClosed = errors.New("nlrouter: router is closed")

// ErrDumpInterrupted is delivered to every pending request when the kernel
// reports a receive buffer overrun (an OVERRUN-type frame): any in-flight
// dump may have lost messages to the overrun and must be retried from
// scratch.
var ErrDumpInterrupted = errors.New("nlrouter: kernel reported a receive buffer overrun, dump interrupted")

// errBox carries a terminal error from the demultiplexer goroutine to a
// ResponseStream's consumer, set at most once before the channel backing
// the stream is closed.
type errBox struct {
	mu  sync.Mutex
	err error
}

func (b *errBox) set(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err == nil {
		b.err = err
	}
}

func (b *errBox) get() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// conn is the subset of *nlsock.Conn the router needs, so tests can supply
// a fake transport instead of a real AF_NETLINK socket.
type conn interface {
	Pid() uint32
	Send([]byte) (int, error)
	Recv([]byte) (int, bool, error)
	ExtAckEnabled() bool
	Close() error
}

type pendingEntry struct {
	ch     chan *nliter.Item
	family string
	start  time.Time
	errBox *errBox
}

type subscription struct {
	group uint32
	ch    chan *nliter.Item
}

// Router owns the receive side of one netlink socket. Exactly one
// goroutine, started by New, ever calls Recv on the underlying connection;
// every other method is safe to call concurrently.
type Router struct {
	c   conn
	pid uint32

	seq uint32 // accessed via sync/atomic

	mu      sync.Mutex
	pending map[uint32]*pendingEntry
	subs    []*subscription
	closed  bool

	recvBufSize int
	stopped     chan struct{}
}

// New starts a Router over an already-open, already-bound connection. The
// caller must not call Recv on c again; Router takes over the receive side
// and closes c when Close is called.
func New(c conn) *Router {
	r := &Router{
		c:           c,
		pid:         c.Pid(),
		pending:     make(map[uint32]*pendingEntry),
		recvBufSize: nlsock.DefaultRcvBuf,
		stopped:     make(chan struct{}),
	}
	go r.run()
	return r
}

// NextSeq allocates the next sequence number for a request built outside
// Request (e.g. a message sent on a fire-and-forget basis without waiting
// for a reply).
func (r *Router) NextSeq() uint32 {
	return atomic.AddUint32(&r.seq, 1)
}

// Request stamps msg with a fresh sequence number and the router's bound
// port id, sends it, and returns a ResponseStream that yields every reply
// sharing that sequence number until a terminal frame (Ack, Error, or
// Done) arrives. family labels the request latency metric.
func (r *Router) Request(ctx context.Context, msg nlmsg.Message, family string) (*ResponseStream, error) {
	seq := r.NextSeq()
	msg.Header.Seq = seq
	msg.Header.Pid = r.pid
	msg.Header.Flags = msg.Header.Flags.Union(nlmsg.FlagRequest)

	ch := make(chan *nliter.Item, 16)
	eb := &errBox{}
	entry := &pendingEntry{ch: ch, family: family, start: time.Now(), errBox: eb}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrRouterClosed
	}
	r.pending[seq] = entry
	r.mu.Unlock()
	nlmetrics.PendingRequestGauge.Inc()

	buf := nlwire.NewWriteBuffer(64)
	if _, err := msg.EncodeNL(buf); err != nil {
		r.finishPending(seq, true)
		return nil, fmt.Errorf("nlrouter: encode request: %w", err)
	}
	if _, err := r.c.Send(buf.Bytes); err != nil {
		r.finishPending(seq, true)
		return nil, fmt.Errorf("nlrouter: send request: %w", err)
	}

	return newResponseStream(ch, func() { r.finishPending(seq, true) }, eb), nil
}

// Subscribe adds an entry for group to the multicast subscription table.
// Group membership on the socket itself (NETLINK_ADD_MEMBERSHIP) is the
// caller's responsibility, normally done once at Conn.Open time. Every
// multicast frame (seq 0) the router receives is delivered to every
// subscriber: frames are not filtered by group, and group only labels the
// delivery metric.
func (r *Router) Subscribe(group uint32) (*ResponseStream, error) {
	ch := make(chan *nliter.Item, 64)
	sub := &subscription{group: group, ch: ch}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrRouterClosed
	}
	r.subs = append(r.subs, sub)
	r.mu.Unlock()

	return newResponseStream(ch, func() { r.removeSubscription(sub) }, nil), nil
}

func (r *Router) removeSubscription(sub *subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.subs {
		if s == sub {
			r.subs = append(r.subs[:i], r.subs[i+1:]...)
			close(sub.ch)
			return
		}
	}
}

// finishPending removes seq from the pending table and, if closeChan is
// true (the normal case -- either the dispatch loop saw a terminal frame,
// or the caller cancelled via ResponseStream.Close), closes the channel so
// readers observe end-of-stream. The delete-and-close happens in the same
// r.mu critical section dispatch uses to send on entry.ch, so a send can
// never race a close of the same channel: whichever of dispatch's send or
// finishPending's close acquires r.mu first determines whether the other
// still finds the entry in the table at all.
func (r *Router) finishPending(seq uint32, closeChan bool) {
	r.mu.Lock()
	entry, ok := r.pending[seq]
	if ok {
		delete(r.pending, seq)
		if closeChan {
			close(entry.ch)
		}
	}
	r.mu.Unlock()
	if !ok {
		return
	}
	nlmetrics.PendingRequestGauge.Dec()
	nlmetrics.RequestLatencyHistogram.With(prometheus.Labels{"family": entry.family}).Observe(time.Since(entry.start).Seconds())
}

// run is the single demultiplexer goroutine: it owns the connection's
// receive half for the Router's entire lifetime.
func (r *Router) run() {
	defer close(r.stopped)
	defer nlmetrics.RouterShutdownCount.Inc()

	buf := make([]byte, r.recvBufSize)
	for {
		n, truncated, err := r.c.Recv(buf)
		if err != nil {
			r.shutdown()
			return
		}
		if truncated {
			log.Printf("nlrouter: datagram truncated to %d bytes, some attributes may be lost", n)
		}
		frame := make([]byte, n)
		copy(frame, buf[:n])
		it := nliter.New(frame, r.c.ExtAckEnabled())
		for {
			item, ok, iterErr := it.Next()
			if iterErr != nil {
				log.Printf("nlrouter: malformed frame: %v", iterErr)
				break
			}
			if !ok {
				break
			}
			r.dispatch(item)
		}
	}
}

// dispatch routes one decoded message to its pending request or multicast
// subscribers, checking sequence number, peer pid, and message kind against
// a long-lived table instead of a single in-flight request.
func (r *Router) dispatch(item nliter.Item) {
	if item.Header.Type == nlmsg.OVERRUN {
		r.handleOverrun()
		return
	}

	seq := item.Header.Seq

	if seq != 0 && item.Header.Pid != r.pid {
		nlmetrics.SpoofedPeerCount.Inc()
		log.Printf("nlrouter: dropping frame with unexpected pid %d (want %d)", item.Header.Pid, r.pid)
		return
	}

	if seq == 0 {
		r.dispatchMulticast(item)
		return
	}

	if item.Header.Flags.Has(nlmsg.FlagDumpIntr) {
		nlmetrics.DumpInterruptedCount.Inc()
	}

	// The lookup and the send share r.mu with finishPending's delete-and-close,
	// so a concurrent ResponseStream.Close can never close entry.ch between
	// the moment dispatch finds the entry and the moment it sends on it.
	r.mu.Lock()
	entry, ok := r.pending[seq]
	if ok {
		select {
		case entry.ch <- &item:
		default:
			log.Printf("nlrouter: response channel full for seq %d, dropping frame", seq)
		}
	}
	r.mu.Unlock()
	if !ok {
		nlmetrics.OrphanReplyCount.Inc()
		return
	}

	if terminal(item) {
		r.finishPending(seq, true)
	}
}

// terminal reports whether item ends its request's ResponseStream: Ack and
// Error always terminate; Done terminates a MULTI dump; a non-MULTI Data
// frame is itself the entire, single-message reply.
func terminal(item nliter.Item) bool {
	switch item.Kind {
	case nliter.KindAck, nliter.KindError, nliter.KindDone:
		return true
	default:
		return !item.Header.Flags.Has(nlmsg.FlagMulti)
	}
}

// dispatchMulticast delivers item to every current subscriber. The entire
// iteration runs under r.mu, the same lock removeSubscription closes a
// subscriber's channel under, so a subscriber's channel cannot be closed
// between being read out of r.subs and being sent on.
func (r *Router) dispatchMulticast(item nliter.Item) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subs {
		nlmetrics.MulticastDeliveredCount.With(prometheus.Labels{"group": fmt.Sprint(s.group)}).Inc()
		select {
		case s.ch <- &item:
		default:
			log.Printf("nlrouter: multicast subscriber channel full for group %d, dropping frame", s.group)
		}
	}
}

// handleOverrun resets every pending request when the kernel reports a
// receive buffer overrun: any in-flight dump may have lost frames between
// the overrun and the kernel resuming delivery, so none of them can be
// trusted to complete and all must be retried from scratch by the caller.
func (r *Router) handleOverrun() {
	r.mu.Lock()
	pending := r.pending
	r.pending = make(map[uint32]*pendingEntry)
	for _, entry := range pending {
		entry.errBox.set(ErrDumpInterrupted)
		close(entry.ch)
	}
	r.mu.Unlock()

	for _, entry := range pending {
		nlmetrics.PendingRequestGauge.Dec()
		nlmetrics.RequestLatencyHistogram.With(prometheus.Labels{"family": entry.family}).Observe(time.Since(entry.start).Seconds())
	}
	if len(pending) > 0 {
		nlmetrics.DumpInterruptedCount.Add(float64(len(pending)))
	}
	log.Printf("nlrouter: kernel reported a receive buffer overrun, reset %d pending request(s)", len(pending))
}

func (r *Router) shutdown() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	pending := r.pending
	r.pending = make(map[uint32]*pendingEntry)
	subs := r.subs
	r.subs = nil
	r.mu.Unlock()

	for _, entry := range pending {
		close(entry.ch)
	}
	for _, s := range subs {
		close(s.ch)
	}
}

// Close stops the router and releases the underlying connection. Any
// ResponseStream still open observes end-of-stream.
func (r *Router) Close() error {
	err := r.c.Close()
	<-r.stopped
	r.shutdown()
	return err
}
