package testutil

import (
	"bytes"
	"io"
	"net"
	"sync"
	"time"

	"github.com/udisondev/mabigo/internal/protocol"
)

// MockConn is an in-memory net.Conn. Reads drain the data given to
// NewMockConn and then return io.EOF; writes are recorded.
// Safe for use by a reader and a writer goroutine at once.
type MockConn struct {
	mu         sync.Mutex
	readBuf    []byte
	writeBuf   bytes.Buffer
	writeCount int
	closed     bool
}

// NewMockConn creates a MockConn that will read input.
func NewMockConn(input ...[]byte) *MockConn {
	return &MockConn{readBuf: bytes.Join(input, nil)}
}

// Read reads from the preloaded input.
func (m *MockConn) Read(b []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, net.ErrClosed
	}
	if len(m.readBuf) == 0 {
		return 0, io.EOF
	}
	n := copy(b, m.readBuf)
	m.readBuf = m.readBuf[n:]
	return n, nil
}

// Write records b.
func (m *MockConn) Write(b []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, net.ErrClosed
	}
	m.writeCount++
	return m.writeBuf.Write(b)
}

// Written returns a copy of everything written so far.
func (m *MockConn) Written() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return bytes.Clone(m.writeBuf.Bytes())
}

// Messages decodes everything written so far as framed messages.
func (m *MockConn) Messages() ([]protocol.Message, error) {
	return DecodeMessages(m.Written())
}

// WriteCount returns the number of Write calls.
func (m *MockConn) WriteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writeCount
}

// Close marks the connection closed.
func (m *MockConn) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// IsClosed reports whether Close was called.
func (m *MockConn) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *MockConn) LocalAddr() net.Addr  { return TCPAddr("127.0.0.1:11020") }
func (m *MockConn) RemoteAddr() net.Addr { return TCPAddr("192.168.1.100:12345") }

func (m *MockConn) SetDeadline(time.Time) error      { return nil }
func (m *MockConn) SetReadDeadline(time.Time) error  { return nil }
func (m *MockConn) SetWriteDeadline(time.Time) error { return nil }

// DecodeMessages splits raw into framed messages.
func DecodeMessages(raw []byte) ([]protocol.Message, error) {
	r := bytes.NewReader(raw)
	buf := make([]byte, protocol.MaxMessageSize)
	var out []protocol.Message
	for {
		msg, err := protocol.ReadMessage(r, buf)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		msg.Body = bytes.Clone(msg.Body)
		out = append(out, msg)
	}
}

// Frame encodes m with its length prefix.
func Frame(m protocol.Message) []byte {
	return protocol.AppendMessage(nil, m)
}
