package pipe

import (
	"context"
	"sync"

	"httpwrap/transport"

	"github.com/benbjohnson/clock"
)

type dialRequest struct {
	conn     transport.Conn
	accepted chan bool
}

// Network is an in-memory network of listeners keyed by address.
type Network struct {
	clock clock.Clock

	mu        sync.Mutex
	listeners map[transport.Addr]*Listener
	dialerSeq uint16
}

var _ transport.ConnDialer = (*Network)(nil)

func NewNetwork(clock clock.Clock) *Network {
	return &Network{
		clock:     clock,
		listeners: make(map[transport.Addr]*Listener),
	}
}

func (nw *Network) Dial(ctx context.Context, addr transport.Addr) (transport.Conn, error) {
	nw.mu.Lock()
	l, ok := nw.listeners[addr]
	nw.dialerSeq++
	local := transport.Addr{Host: "pipe", Port: nw.dialerSeq}
	nw.mu.Unlock()

	if !ok {
		return nil, transport.ErrNetUnreachable
	}

	c1, c2 := NewPair(local, addr, nw.clock)
	req := dialRequest{conn: c2, accepted: make(chan bool, 1)}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-l.closed:
		return nil, transport.ErrConnRefused
	case l.requests <- req:
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case ok := <-req.accepted:
		if !ok {
			return nil, transport.ErrConnRefused
		}
	}

	return c1, nil
}

func (nw *Network) Listen(addr transport.Addr) (*Listener, error) {
	nw.mu.Lock()
	defer nw.mu.Unlock()

	if _, ok := nw.listeners[addr]; ok {
		return nil, transport.ErrAddrAlreadyInUse
	}

	l := &Listener{
		addr:     addr,
		network:  nw,
		requests: make(chan dialRequest),
		closed:   make(chan struct{}),
	}
	nw.listeners[addr] = l

	return l, nil
}

type Listener struct {
	addr    transport.Addr
	network *Network

	requests chan dialRequest
	closed   chan struct{}
	once     sync.Once
}

var _ transport.ConnListener = (*Listener)(nil)

func (l *Listener) Addr() transport.Addr { return l.addr }

func (l *Listener) Accept(ctx context.Context) (transport.Conn, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-l.closed:
		return nil, transport.ErrConnListenerClosed
	case req := <-l.requests:
		req.accepted <- true
		return req.conn, nil
	}
}

func (l *Listener) Close() error {
	err := transport.ErrConnListenerClosed
	l.once.Do(func() {
		close(l.closed)

		l.network.mu.Lock()
		delete(l.network.listeners, l.addr)
		l.network.mu.Unlock()

		err = nil
	})
	return err
}
