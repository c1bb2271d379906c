package pipe

import (
	"testing"

	"httpwrap/transport"
	"httpwrap/transport/conntest"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/suite"
)

func TestPipeConnSuite(t *testing.T) {
	suite.Run(t, &conntest.ConnTestSuite{
		NewPair: func(clock clock.Clock) (transport.Conn, transport.Conn) {
			return NewPair(
				transport.Addr{Host: "a", Port: 1},
				transport.Addr{Host: "b", Port: 2},
				clock,
			)
		},
	})
}
