// Package conntest holds a behavioural suite shared by [transport.Conn]
// implementations.
package conntest

import (
	"bytes"
	"io"
	"sync"
	"time"

	"httpwrap/transport"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
)

// PairFunc creates two connected conns.
type PairFunc func(clock clock.Clock) (c1, c2 transport.Conn)

// ConnTestSuite checks conns produced by NewPair.
// Embedders set NewPair before the suite runs.
type ConnTestSuite struct {
	suite.Suite

	NewPair PairFunc

	C1, C2 transport.Conn
	Clock  clock.Clock

	watchdog *time.Timer
}

func (s *ConnTestSuite) SetupTest() {
	s.Require().NotNil(s.NewPair, "NewPair must be set")

	s.Clock = clock.New()
	s.C1, s.C2 = s.NewPair(s.Clock)

	t := s.T()
	s.watchdog = time.AfterFunc(2*time.Second, func() {
		t.Error("test did not finish in time")
		_ = s.C1.Close()
		_ = s.C2.Close()
	})
}

func (s *ConnTestSuite) TearDownTest() {
	defer goleak.VerifyNone(s.T())
	s.watchdog.Stop()
	s.NoError(s.C1.Close())
	s.NoError(s.C2.Close())
}

func (s *ConnTestSuite) TestPartialReads() {
	data := []byte("HTTP/1.1 200 OK\r\n")

	var wg sync.WaitGroup
	defer wg.Wait()

	wg.Add(1)
	go func() {
		defer wg.Done()
		n, err := s.C1.Write(data)
		s.NoError(err)
		s.Equal(len(data), n)
	}()

	got := make([]byte, len(data))
	_, err := io.ReadFull(s.C2, got[:4])
	s.Require().NoError(err)
	_, err = io.ReadFull(s.C2, got[4:])
	s.Require().NoError(err)
	s.Equal(data, got)
}

func (s *ConnTestSuite) TestConcurrentWritesDoNotInterleave() {
	chunk := []byte("0123456789")
	const writers = 8

	var wg sync.WaitGroup
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := s.C1.Write(chunk)
			s.NoError(err)
			s.Equal(len(chunk), n)
		}()
	}

	go func() {
		wg.Wait()
		_ = s.C1.Close()
	}()

	var received []byte
	buf := make([]byte, 3)
	for {
		n, err := s.C2.Read(buf)
		received = append(received, buf[:n]...)
		if err != nil {
			s.ErrorIs(err, transport.ErrConnClosed)
			break
		}
	}

	s.Equal(bytes.Repeat(chunk, writers), received)
}

func (s *ConnTestSuite) TestUseAfterClose() {
	s.Require().NoError(s.C1.Close())

	for _, c := range []transport.Conn{s.C1, s.C2} {
		n, err := c.Read(make([]byte, 4))
		s.ErrorIs(err, transport.ErrConnClosed)
		s.Zero(n)

		n, err = c.Write([]byte("x"))
		s.ErrorIs(err, transport.ErrConnClosed)
		s.Zero(n)
	}
}

func (s *ConnTestSuite) TestCloseUnblocksRead() {
	done := make(chan error, 1)
	go func() {
		_, err := s.C1.Read(make([]byte, 1))
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	s.Require().NoError(s.C2.Close())
	s.ErrorIs(<-done, transport.ErrConnClosed)
}

func (s *ConnTestSuite) TestCloseUnblocksWrite() {
	done := make(chan error, 1)
	go func() {
		_, err := s.C1.Write([]byte("nobody reads this"))
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	s.Require().NoError(s.C1.Close())
	s.ErrorIs(<-done, transport.ErrConnClosed)
}

func (s *ConnTestSuite) TestDeadlines() {
	testcases := []struct {
		desc string
		op   func() (int, error)
		arm  func(time.Time)
	}{
		{
			desc: "read",
			op:   func() (int, error) { return s.C1.Read(make([]byte, 1)) },
			arm:  s.C1.SetReadDeadLine,
		},
		{
			desc: "write",
			op:   func() (int, error) { return s.C1.Write([]byte("x")) },
			arm:  s.C1.SetWriteDeadLine,
		},
	}

	for _, tc := range testcases {
		s.Run(tc.desc+" past", func() {
			tc.arm(s.Clock.Now().Add(-time.Second))
			n, err := tc.op()
			s.ErrorIs(err, transport.ErrDeadLineExceeded)
			s.Zero(n)
			tc.arm(time.Time{})
		})
		s.Run(tc.desc+" expires while blocked", func() {
			tc.arm(s.Clock.Now().Add(30 * time.Millisecond))
			n, err := tc.op()
			s.ErrorIs(err, transport.ErrDeadLineExceeded)
			s.Zero(n)
			tc.arm(time.Time{})
		})
	}
}

func (s *ConnTestSuite) TestAddr() {
	s.Equal(s.C1.LocalAddr(), s.C2.RemoteAddr())
	s.Equal(s.C2.LocalAddr(), s.C1.RemoteAddr())
}
