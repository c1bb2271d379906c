package tcp

import (
	"context"
	"io"
	"testing"
	"time"

	"httpwrap/transport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func listenLoopback(t *testing.T) *Listener {
	l, err := Listen(context.Background(), transport.Addr{Host: "127.0.0.1"})
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestDialAndExchange(t *testing.T) {
	defer goleak.VerifyNone(t)

	l := listenLoopback(t)

	accepted := make(chan transport.Conn, 1)
	go func() {
		c, err := l.Accept(context.Background())
		assert.NoError(t, err)
		accepted <- c
	}()

	client, err := NewDialer().Dial(context.Background(), l.Addr())
	require.NoError(t, err)
	server := <-accepted

	assert.Equal(t, client.LocalAddr(), server.RemoteAddr())
	assert.Equal(t, l.Addr(), client.RemoteAddr())

	_, err = client.Write([]byte("ping"))
	require.NoError(t, err)

	buf := make([]byte, 4)
	_, err = io.ReadFull(server, buf)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf))

	require.NoError(t, server.Close())

	_, err = client.Read(buf)
	assert.ErrorIs(t, err, transport.ErrConnClosed)
	require.NoError(t, client.Close())
}

func TestReadDeadline(t *testing.T) {
	l := listenLoopback(t)
	go func() {
		c, err := l.Accept(context.Background())
		if err == nil {
			defer c.Close()
			time.Sleep(200 * time.Millisecond)
		}
	}()

	client, err := NewDialer().Dial(context.Background(), l.Addr())
	require.NoError(t, err)
	defer client.Close()

	client.SetReadDeadLine(time.Now().Add(20 * time.Millisecond))
	_, err = client.Read(make([]byte, 1))
	assert.ErrorIs(t, err, transport.ErrDeadLineExceeded)
}

func TestDialRefused(t *testing.T) {
	l := listenLoopback(t)
	addr := l.Addr()
	require.NoError(t, l.Close())

	_, err := NewDialer().Dial(context.Background(), addr)
	assert.ErrorIs(t, err, transport.ErrConnRefused)
}

func TestAcceptAfterClose(t *testing.T) {
	l := listenLoopback(t)
	require.NoError(t, l.Close())

	_, err := l.Accept(context.Background())
	assert.ErrorIs(t, err, transport.ErrConnListenerClosed)
}
