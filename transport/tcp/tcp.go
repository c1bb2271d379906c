// Package tcp adapts operating system TCP sockets to [transport.Conn].
package tcp

import (
	"context"
	"io"
	"net"
	"os"
	"strconv"
	"syscall"
	"time"

	"httpwrap/transport"

	"github.com/pkg/errors"
)

type Dialer struct {
	d net.Dialer
}

var _ transport.ConnDialer = (*Dialer)(nil)

func NewDialer() *Dialer { return &Dialer{} }

func (d *Dialer) Dial(ctx context.Context, addr transport.Addr) (transport.Conn, error) {
	c, err := d.d.DialContext(ctx, "tcp", addr.String())
	if err != nil {
		return nil, translate(err)
	}
	return Wrap(c), nil
}

// Listener accepts TCP connections.
type Listener struct {
	l net.Listener
}

var _ transport.ConnListener = (*Listener)(nil)

func Listen(ctx context.Context, addr transport.Addr) (*Listener, error) {
	var lc net.ListenConfig
	l, err := lc.Listen(ctx, "tcp", addr.String())
	if err != nil {
		return nil, translate(err)
	}
	return &Listener{l: l}, nil
}

func (l *Listener) Addr() transport.Addr { return toAddr(l.l.Addr()) }

func (l *Listener) Accept(ctx context.Context) (transport.Conn, error) {
	type result struct {
		c   net.Conn
		err error
	}
	ch := make(chan result, 1)
	go func() {
		c, err := l.l.Accept()
		ch <- result{c, err}
	}()

	select {
	case <-ctx.Done():
		// The pending Accept returns once the listener closes.
		return nil, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			if errors.Is(r.err, net.ErrClosed) {
				return nil, transport.ErrConnListenerClosed
			}
			return nil, r.err
		}
		return Wrap(r.c), nil
	}
}

func (l *Listener) Close() error {
	if err := l.l.Close(); err != nil {
		return translate(err)
	}
	return nil
}

// Wrap adapts c. Peer shutdown is reported as [transport.ErrConnClosed].
func Wrap(c net.Conn) transport.Conn { return &conn{c: c} }

type conn struct {
	c net.Conn
}

func (c *conn) Read(p []byte) (int, error) {
	n, err := c.c.Read(p)
	return n, translate(err)
}

func (c *conn) Write(p []byte) (int, error) {
	n, err := c.c.Write(p)
	return n, translate(err)
}

func (c *conn) Close() error { return translate(c.c.Close()) }

func (c *conn) LocalAddr() transport.Addr  { return toAddr(c.c.LocalAddr()) }
func (c *conn) RemoteAddr() transport.Addr { return toAddr(c.c.RemoteAddr()) }

func (c *conn) SetReadDeadLine(t time.Time)  { _ = c.c.SetReadDeadline(t) }
func (c *conn) SetWriteDeadLine(t time.Time) { _ = c.c.SetWriteDeadline(t) }

func toAddr(a net.Addr) transport.Addr {
	host, port, err := net.SplitHostPort(a.String())
	if err != nil {
		return transport.Addr{Host: a.String()}
	}
	p, _ := strconv.ParseUint(port, 10, 16)
	return transport.Addr{Host: host, Port: uint16(p)}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF),
		errors.Is(err, net.ErrClosed),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.EPIPE):
		return errors.Wrap(transport.ErrConnClosed, err.Error())
	case errors.Is(err, os.ErrDeadlineExceeded):
		return transport.ErrDeadLineExceeded
	case errors.Is(err, syscall.ECONNREFUSED):
		return transport.ErrConnRefused
	case errors.Is(err, syscall.ENETUNREACH), errors.Is(err, syscall.EHOSTUNREACH):
		return transport.ErrNetUnreachable
	case errors.Is(err, syscall.EADDRINUSE):
		return transport.ErrAddrAlreadyInUse
	}
	return err
}
