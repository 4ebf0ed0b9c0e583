package protocol

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
)

// Conn is one end of a bidirectional message channel between the
// orchestrator and the executor's context.
type Conn interface {
	// Send delivers a message to the peer, or fails when the channel is
	// closed or the context expires.
	Send(ctx context.Context, msg Message) error

	// Recv returns the stream of messages from the peer. Readers pair it
	// with a context or deadline; a silent peer simply never sends.
	Recv() <-chan Message

	// Close tears down this end of the channel.
	Close() error
}

// ErrConnClosed is returned by Send after either end has closed.
var ErrConnClosed = eris.New("protocol: connection closed")

type pipeConn struct {
	in     chan Message
	out    chan Message
	done   chan struct{}
	closed *sync.Once
}

// Pipe creates an in-process connected pair of Conns with the given buffer
// per direction. Messages sent on one end arrive on the other's Recv.
func Pipe(buffer int) (Conn, Conn) {
	ab := make(chan Message, buffer)
	ba := make(chan Message, buffer)
	done := make(chan struct{})
	once := &sync.Once{}

	a := &pipeConn{in: ba, out: ab, done: done, closed: once}
	b := &pipeConn{in: ab, out: ba, done: done, closed: once}
	return a, b
}

func (c *pipeConn) Send(ctx context.Context, msg Message) error {
	select {
	case <-c.done:
		return ErrConnClosed
	default:
	}

	select {
	case c.out <- msg:
		return nil
	case <-c.done:
		return ErrConnClosed
	case <-ctx.Done():
		return eris.Wrap(ctx.Err(), "protocol: send")
	}
}

func (c *pipeConn) Recv() <-chan Message {
	return c.in
}

// Close tears down both directions; a pipe has no half-open state.
func (c *pipeConn) Close() error {
	c.closed.Do(func() { close(c.done) })
	return nil
}
