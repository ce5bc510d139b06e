package testutil

import (
	"net"
	"testing"
)

// PipeConn creates a connected net.Pipe pair, closed when the test ends.
// The server end reports a TCP remote address so it can back a client.
func PipeConn(t testing.TB) (client, server net.Conn) {
	t.Helper()

	s, c := net.Pipe()

	t.Cleanup(func() {
		_ = s.Close()
		_ = c.Close()
	})

	return c, addrConn{Conn: s, remote: TCPAddr("10.0.0.2:50000")}
}

// addrConn overrides the remote address of a net.Conn.
type addrConn struct {
	net.Conn
	remote net.Addr
}

func (c addrConn) RemoteAddr() net.Addr { return c.remote }

// FakeAddr implements net.Addr for tests.
type FakeAddr struct {
	NetworkName string
	AddrString  string
}

func (f FakeAddr) Network() string { return f.NetworkName }
func (f FakeAddr) String() string  { return f.AddrString }

// TCPAddr creates a FakeAddr for a TCP endpoint.
func TCPAddr(addr string) FakeAddr {
	return FakeAddr{NetworkName: "tcp", AddrString: addr}
}
