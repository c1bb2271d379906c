// Package pipe provides in-memory connections.
// Writes block until the counterpart has read every byte, like [net.Pipe].
package pipe

import (
	"sync"
	"time"

	"httpwrap/transport"

	"github.com/benbjohnson/clock"
)

type conn struct {
	incoming chan []byte // chunks written by the counterpart.
	consumed chan int    // bytes the counterpart consumed from our write.

	writeMu sync.Mutex

	closed    chan struct{}
	closeOnce sync.Once

	readDeadline, writeDeadline *deadline

	peer *conn
	addr transport.Addr
}

var _ transport.Conn = (*conn)(nil)

// NewPair creates two connected in-memory connections.
func NewPair(a1, a2 transport.Addr, clock clock.Clock) (c1, c2 transport.Conn) {
	p1, p2 := newConn(a1, clock), newConn(a2, clock)
	p1.peer, p2.peer = p2, p1
	return p1, p2
}

func newConn(addr transport.Addr, clock clock.Clock) *conn {
	return &conn{
		incoming:      make(chan []byte),
		consumed:      make(chan int),
		closed:        make(chan struct{}),
		readDeadline:  newDeadline(clock),
		writeDeadline: newDeadline(clock),
		addr:          addr,
	}
}

func (c *conn) LocalAddr() transport.Addr  { return c.addr }
func (c *conn) RemoteAddr() transport.Addr { return c.peer.addr }

func (c *conn) SetReadDeadLine(t time.Time)  { c.readDeadline.set(t) }
func (c *conn) SetWriteDeadLine(t time.Time) { c.writeDeadline.set(t) }

func (c *conn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *conn) Read(b []byte) (int, error) {
	if err := c.usable(c.readDeadline); err != nil {
		return 0, err
	}

	select {
	case chunk := <-c.incoming:
		n := copy(b, chunk)
		c.peer.consumed <- n
		return n, nil
	case <-c.closed:
		return 0, transport.ErrConnClosed
	case <-c.peer.closed:
		return 0, transport.ErrConnClosed
	case <-c.readDeadline.wait():
		return 0, transport.ErrDeadLineExceeded
	}
}

func (c *conn) Write(b []byte) (int, error) {
	if err := c.usable(c.writeDeadline); err != nil {
		return 0, err
	}
	if len(b) == 0 {
		return 0, nil
	}

	// Concurrent writes must not interleave.
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	written := 0
	for len(b) > 0 {
		select {
		case c.peer.incoming <- b:
			n := <-c.consumed
			b = b[n:]
			written += n
		case <-c.closed:
			return written, transport.ErrConnClosed
		case <-c.peer.closed:
			return written, transport.ErrConnClosed
		case <-c.writeDeadline.wait():
			return written, transport.ErrDeadLineExceeded
		}
	}

	return written, nil
}

func (c *conn) usable(d *deadline) error {
	switch {
	case isDone(c.closed), isDone(c.peer.closed):
		return transport.ErrConnClosed
	case isDone(d.wait()):
		return transport.ErrDeadLineExceeded
	}
	return nil
}

// deadline is a channel closed once the configured time passes.
type deadline struct {
	clock clock.Clock

	mu      sync.Mutex
	timer   *clock.Timer
	expired chan struct{}
}

func newDeadline(clock clock.Clock) *deadline {
	return &deadline{clock: clock, expired: make(chan struct{})}
}

// set arms the deadline. Zero t disarms it.
func (d *deadline) set(t time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if isDone(d.expired) {
		d.expired = make(chan struct{})
	}
	if t.IsZero() {
		return
	}

	expired := d.expired
	wait := d.clock.Until(t)
	if wait <= 0 {
		close(expired)
		return
	}
	d.timer = d.clock.AfterFunc(wait, func() { close(expired) })
}

func (d *deadline) wait() <-chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.expired
}

func isDone(c <-chan struct{}) bool {
	select {
	case <-c:
		return true
	default:
		return false
	}
}
