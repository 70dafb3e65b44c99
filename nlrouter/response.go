package nlrouter

import (
	"context"
	"io"
	"sync"

	"github.com/m-lab/go-netlink/nliter"
)

// ResponseStream yields the sequence of messages belonging to one request
// or multicast subscription, in arrival order. Go has no destructor to hook
// cancellation-on-drop onto, so the idiom here is explicit: a caller who
// stops reading before io.EOF must call Close to release the router's
// tracking for this stream: cancellation releases the pending-table slot
// without waiting for a terminal frame.
type ResponseStream struct {
	ch     chan *nliter.Item
	cancel func()
	once   sync.Once

	// errBox, if non-nil, carries a terminal error the router wants
	// delivered in place of a plain io.EOF -- e.g. ErrDumpInterrupted when
	// the kernel reported a receive buffer overrun. Multicast subscription
	// streams have no errBox: they only ever end with io.EOF.
	errBox *errBox
}

func newResponseStream(ch chan *nliter.Item, cancel func(), eb *errBox) *ResponseStream {
	return &ResponseStream{ch: ch, cancel: cancel, errBox: eb}
}

// Recv blocks until the next message arrives, the stream ends normally
// (io.EOF), or ctx is cancelled. Once the stream has ended (io.EOF or a
// terminal error such as ErrDumpInterrupted), further calls to Recv
// continue to return the same terminal result; a ctx error does not end
// the stream.
func (s *ResponseStream) Recv(ctx context.Context) (*nliter.Item, error) {
	select {
	case item, ok := <-s.ch:
		if !ok {
			if s.errBox != nil {
				if err := s.errBox.get(); err != nil {
					return nil, err
				}
			}
			return nil, io.EOF
		}
		return item, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close cancels the stream, idempotently. Safe to call more than once and
// safe to call after the stream has already ended normally.
func (s *ResponseStream) Close() {
	s.once.Do(s.cancel)
}

// Collect drains the stream to completion (io.EOF) or ctx cancellation,
// returning every item received. It is a convenience for the common case of
// a bounded dump a caller wants gathered into a slice rather than iterated
// by hand.
func (s *ResponseStream) Collect(ctx context.Context) ([]*nliter.Item, error) {
	var items []*nliter.Item
	for {
		item, err := s.Recv(ctx)
		if err == io.EOF {
			return items, nil
		}
		if err != nil {
			return items, err
		}
		items = append(items, item)
	}
}
