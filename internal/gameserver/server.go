package gameserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/udisondev/mabigo/internal/config"
	"github.com/udisondev/mabigo/internal/model"
	"github.com/udisondev/mabigo/internal/protocol"
	"github.com/udisondev/mabigo/internal/world"
)

const defaultSaveTimeout = 3 * time.Second

// Server is the channel server that accepts game client connections.
type Server struct {
	cfg      config.ChannelServer
	accounts AccountStore

	readPool  *BytePool
	writePool *BytePool
	handler   *Handler

	clientManager *ClientManager

	listener net.Listener
	mu       sync.Mutex
}

// NewServer creates a new channel server.
func NewServer(cfg config.ChannelServer, accounts AccountStore, catalog model.SkillCatalog, w *world.World) *Server {
	clientMgr := NewClientManager()
	return &Server{
		cfg:           cfg,
		accounts:      accounts,
		readPool:      NewBytePool(protocol.MaxMessageSize),
		writePool:     NewBytePool(512),
		handler:       NewHandler(accounts, catalog, w, clientMgr),
		clientManager: clientMgr,
	}
}

// Addr returns the address the server is listening on.
// Returns nil if the server hasn't started yet.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// ClientManager returns the client manager for this server.
func (s *Server) ClientManager() *ClientManager {
	return s.clientManager
}

// Run begins listening for client connections on cfg.BindAddress:cfg.Port.
// Blocks until ctx is cancelled and every connection has been cleaned up.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.BindAddress, s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections from ln until ctx is cancelled.
// Used directly by tests with custom listeners.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	slog.Info("channel server started", "address", ln.Addr())

	var wg sync.WaitGroup
	acceptLoop(ctx, &wg, s, ln)
	wg.Wait()

	// Connections clean up after themselves; anything left is a client
	// whose read loop never started.
	s.clientManager.ForEachClient(func(c *ChannelClient) bool {
		s.disconnect(ctx, c)
		return true
	})

	slog.Info("channel server stopped")
	return nil
}

func acceptLoop(ctx context.Context, wg *sync.WaitGroup, srv *Server, ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			slog.Error("failed to accept new connection", "error", err)
			continue
		}

		if tcpConn, ok := conn.(*net.TCPConn); ok {
			if err := tcpConn.SetKeepAlive(true); err != nil {
				slog.Warn("set keepalive failed", "error", err)
			}
			if err := tcpConn.SetKeepAlivePeriod(30 * time.Second); err != nil {
				slog.Warn("set keepalive period failed", "error", err)
			}
		}

		wg.Go(func() {
			handleConnection(ctx, srv, conn)
		})
	}
}

// RunAutosave saves every logged in account each interval until ctx is cancelled.
func (s *Server) RunAutosave(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.saveAll(ctx)
		}
	}
}

// saveAll saves the account of every logged in client.
func (s *Server) saveAll(ctx context.Context) {
	timeout := s.cfg.SaveTimeout
	if timeout <= 0 {
		timeout = defaultSaveTimeout
	}

	saved := 0
	s.clientManager.ForEachClient(func(c *ChannelClient) bool {
		saveCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		ok, err := c.SaveAccount(saveCtx)
		if err != nil {
			slog.Error("autosave failed", "client", c.IP(), "error", err)
			return true
		}
		if ok {
			saved++
		}
		return true
	})

	if saved > 0 {
		slog.Debug("autosave complete", "accounts", saved)
	}
}

// disconnect runs the disconnection sequence with a context that outlives
// server shutdown, so accounts are still saved.
func (s *Server) disconnect(ctx context.Context, client *ChannelClient) {
	timeout := s.cfg.SaveTimeout
	if timeout <= 0 {
		timeout = defaultSaveTimeout
	}
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	OnDisconnection(saveCtx, client, s.clientManager)
}

func handleConnection(ctx context.Context, srv *Server, conn net.Conn) {
	defer conn.Close()

	client, err := NewChannelClient(conn, srv.accounts, srv.writePool, srv.cfg.SendQueueSize, srv.cfg.WriteTimeout)
	if err != nil {
		slog.Error("failed to create channel client", "error", err)
		return
	}

	slog.Info("new channel client connection", "remote", client.IP())

	client.StartWriter()
	defer func() {
		if err := client.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			slog.Debug("closing client connection", "client", client.IP(), "error", err)
		}
		srv.disconnect(ctx, client)
	}()

	stop := context.AfterFunc(ctx, func() {
		conn.Close()
	})
	defer stop()

	readTimeout := srv.cfg.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = defaultReadTimeout
	}

	for {
		keepOpen, err := handleMessage(ctx, srv, client, readTimeout)
		if err != nil {
			var violation *SecurityViolation
			switch {
			case errors.As(err, &violation):
				slog.Warn("security violation, disconnecting",
					"account", violation.Account,
					"entity", fmt.Sprintf("0x%016X", violation.EntityID),
					"reason", violation.Reason,
					"client", client.IP())
			case errors.Is(err, io.EOF):
				slog.Info("client closed connection", "account", client.AccountID(), "client", client.IP())
			case ctx.Err() != nil:
			default:
				slog.Error("message handling error", "error", err, "client", client.IP())
			}
			return
		}
		if !keepOpen {
			return
		}
	}
}

func handleMessage(ctx context.Context, srv *Server, client *ChannelClient, readTimeout time.Duration) (bool, error) {
	readBuf := srv.readPool.Get(protocol.MaxMessageSize)
	defer srv.readPool.Put(readBuf)

	if err := client.Conn().SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
		return false, fmt.Errorf("setting read deadline: %w", err)
	}

	msg, err := protocol.ReadMessage(client.Conn(), readBuf)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return false, err
		}
		return false, fmt.Errorf("reading message: %w", err)
	}

	return srv.handler.HandleMessage(ctx, client, msg)
}
