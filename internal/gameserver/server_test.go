package gameserver

import (
	"context"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/mabigo/internal/config"
	"github.com/udisondev/mabigo/internal/model"
	"github.com/udisondev/mabigo/internal/protocol"
	"github.com/udisondev/mabigo/internal/protocol/op"
	"github.com/udisondev/mabigo/internal/testutil"
)

func startServer(t *testing.T, f *fixture) (*Server, context.CancelFunc, <-chan error) {
	t.Helper()

	cfg := config.DefaultChannelServer()
	cfg.ReadTimeout = 5 * time.Second
	srv := NewServer(cfg, f.store, testutil.SkillCatalog(), f.world)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	require.Eventually(t, func() bool { return srv.Addr() != nil }, time.Second, 10*time.Millisecond)
	return srv, cancel, done
}

func dial(t *testing.T, srv *Server) net.Conn {
	t.Helper()
	conn, err := net.DialTimeout("tcp", srv.Addr().String(), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))
	return conn
}

func readUntil(t *testing.T, conn net.Conn, code uint32) protocol.Message {
	t.Helper()
	buf := make([]byte, protocol.MaxMessageSize)
	for {
		msg, err := protocol.ReadMessage(conn, buf)
		require.NoError(t, err)
		if msg.Op == code {
			return msg
		}
	}
}

func TestServer_LoginAndSecurityViolation(t *testing.T) {
	f := newFixture(t)
	srv, cancel, done := startServer(t, f)
	defer cancel()

	conn := dial(t, srv)
	require.NoError(t, protocol.WriteMessage(conn, loginMessage(testAccount, testSessionKey, testCharacter)))

	reply := readUntil(t, conn, op.ChannelLoginR)
	assert.Equal(t, byte(1), reply.Body[0])
	require.Eventually(t, func() bool { return srv.ClientManager().Count() == 1 }, time.Second, 10*time.Millisecond)

	// Acting on the NPC is not allowed: the server drops the connection.
	require.NoError(t, protocol.WriteMessage(conn, skillAdvanceMessage(testNPC, model.SkillDefense)))

	buf := make([]byte, protocol.MaxMessageSize)
	for {
		_, err := protocol.ReadMessage(conn, buf)
		if err != nil {
			assert.ErrorIs(t, err, io.EOF)
			break
		}
	}

	require.Eventually(t, func() bool { return f.store.saveCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Zero(t, srv.ClientManager().Count())
	assert.Nil(t, f.region.GetCreature(testCharacter))
	assert.NotNil(t, f.region.GetCreature(testNPC))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_ShutdownSavesConnectedClients(t *testing.T) {
	f := newFixture(t)
	srv, cancel, done := startServer(t, f)

	conn := dial(t, srv)
	require.NoError(t, protocol.WriteMessage(conn, loginMessage(testAccount, testSessionKey, testCharacter)))
	readUntil(t, conn, op.ChannelLoginR)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	assert.Equal(t, 1, f.store.saveCount())
	assert.Zero(t, srv.ClientManager().Count())
	assert.Nil(t, f.region.GetCreature(testCharacter))
}

func TestServer_RejectsBeforeLogin(t *testing.T) {
	f := newFixture(t)
	srv, cancel, _ := startServer(t, f)
	defer cancel()

	conn := dial(t, srv)
	require.NoError(t, protocol.WriteMessage(conn, skillAdvanceMessage(testCharacter, model.SkillDefense)))

	_, err := protocol.ReadMessage(conn, make([]byte, protocol.MaxMessageSize))
	assert.ErrorIs(t, err, io.EOF)
	assert.Zero(t, f.store.saveCount())
}

func TestServer_SaveAll(t *testing.T) {
	f := newFixture(t)
	srv := NewServer(config.DefaultChannelServer(), f.store, testutil.SkillCatalog(), f.world)

	loggedIn, _ := newTestClient(t, f.store)
	f.manager = srv.ClientManager()
	f.handler = srv.handler
	login(t, f, loggedIn)

	srv.saveAll(context.Background())
	assert.Equal(t, 1, f.store.saveCount())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, srv.RunAutosave(ctx, time.Hour))
	assert.NoError(t, srv.RunAutosave(ctx, 0))
}

func TestHandleConnection_Pipe(t *testing.T) {
	f := newFixture(t)
	srv := NewServer(config.DefaultChannelServer(), f.store, testutil.SkillCatalog(), f.world)
	client, server := testutil.PipeConn(t)
	require.NoError(t, client.SetDeadline(time.Now().Add(5*time.Second)))

	done := make(chan struct{})
	go func() {
		defer close(done)
		handleConnection(context.Background(), srv, server)
	}()

	require.NoError(t, protocol.WriteMessage(client, loginMessage(testAccount, testSessionKey, testCharacter)))
	reply := readUntil(t, client, op.ChannelLoginR)
	assert.Equal(t, byte(1), reply.Body[0])

	require.NoError(t, protocol.WriteMessage(client, protocol.Message{Op: op.DisconnectRequest, EntityID: testCharacter}))
	readUntil(t, client, op.DisconnectRequestR)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("connection handler did not return")
	}
	assert.Zero(t, srv.ClientManager().Count())
	assert.Equal(t, 1, f.store.saveCount())
	assert.Nil(t, f.region.GetCreature(testCharacter))
}

func waitClosed(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatalf("%s did not finish", what)
	}
}

func TestServer_AutosaveDuringDisconnect(t *testing.T) {
	f := newFixture(t)
	srv := NewServer(config.DefaultChannelServer(), f.store, testutil.SkillCatalog(), f.world)
	f.manager = srv.ClientManager()
	f.handler = srv.handler

	c, _ := newTestClient(t, f.store)
	login(t, f, c)

	// The autosave blocks inside the store until released.
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	f.store.setSaveHook(func(*model.Account) {
		once.Do(func() {
			close(entered)
			<-release
		})
	})

	autosaved := make(chan struct{})
	go func() {
		defer close(autosaved)
		srv.saveAll(context.Background())
	}()
	waitClosed(t, entered, "autosave")

	disconnected := make(chan struct{})
	go func() {
		defer close(disconnected)
		OnDisconnection(context.Background(), c, srv.ClientManager())
	}()

	select {
	case <-disconnected:
		t.Fatal("cleanup finished while an account save was running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	waitClosed(t, autosaved, "autosave")
	waitClosed(t, disconnected, "disconnect")

	// Both saves saw the full skill set; the cleanup save is the last one.
	assert.Equal(t, []int{2, 2}, f.store.savedSkills())

	saved, err := c.SaveAccount(context.Background())
	require.NoError(t, err)
	assert.False(t, saved)
	srv.saveAll(context.Background())
	assert.Equal(t, 2, f.store.saveCount())
}
