package gameserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/udisondev/mabigo/internal/gameserver/serverpackets"
	"github.com/udisondev/mabigo/internal/model"
	"github.com/udisondev/mabigo/internal/protocol"
)

// Default write queue / timeout constants.
// Overridden by config values when available.
const (
	defaultSendQueueSize = 256
	defaultWriteTimeout  = 5 * time.Second
	defaultReadTimeout   = 120 * time.Second
)

var (
	errSendQueueFull = errors.New("send queue full")
	errClientClosed  = errors.New("client closed")
)

// AccountSaver persists an account and its live characters.
type AccountSaver interface {
	SaveAccount(ctx context.Context, account *model.Account) error
}

// ChannelClient is one connection to the channel server and the set of
// creatures it is allowed to act upon.
//
// Every creature id arriving from the network must be resolved through
// GetCreatureSafe: the creatures map is the complete authorization set of
// the connection.
type ChannelClient struct {
	conn  net.Conn
	ip    string
	saver AccountSaver

	state atomic.Int32

	// saveMu serializes account saves with CleanUp, so no save runs after
	// the creatures are disposed.
	saveMu sync.Mutex

	mu          sync.Mutex
	account     *model.Account
	controlling *model.Creature
	creatures   map[int64]*model.Creature
	npcSession  *model.NpcSession

	sendCh    chan []byte
	closeCh   chan struct{}
	closeOnce sync.Once
	pumping   atomic.Bool
	pumpDone  chan struct{}

	writePool    *BytePool
	writeTimeout time.Duration
}

// NewChannelClient creates the client state for conn.
// saver may be nil, in which case accounts are not persisted on cleanup.
func NewChannelClient(conn net.Conn, saver AccountSaver, writePool *BytePool, sendQueueSize int, writeTimeout time.Duration) (*ChannelClient, error) {
	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		return nil, fmt.Errorf("splitting host port: %w", err)
	}

	if sendQueueSize <= 0 {
		sendQueueSize = defaultSendQueueSize
	}
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	if writePool == nil {
		writePool = NewBytePool(protocol.LengthPrefixSize + protocol.MessageHeaderSize + 256)
	}

	c := &ChannelClient{
		conn:         conn,
		ip:           host,
		saver:        saver,
		creatures:    make(map[int64]*model.Creature),
		npcSession:   model.NewNpcSession(),
		sendCh:       make(chan []byte, sendQueueSize),
		closeCh:      make(chan struct{}),
		pumpDone:     make(chan struct{}),
		writePool:    writePool,
		writeTimeout: writeTimeout,
	}
	c.state.Store(int32(ClientStateConnected))
	return c, nil
}

// Conn returns the underlying network connection.
func (c *ChannelClient) Conn() net.Conn {
	return c.conn
}

// IP returns the client's remote IP address.
func (c *ChannelClient) IP() string {
	return c.ip
}

// State returns the current connection state.
func (c *ChannelClient) State() ClientConnectionState {
	return ClientConnectionState(c.state.Load())
}

// SetState sets the connection state.
func (c *ChannelClient) SetState(s ClientConnectionState) {
	c.state.Store(int32(s))
}

// Account returns the bound account, or nil before login and after cleanup.
func (c *ChannelClient) Account() *model.Account {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.account
}

// SetAccount binds the account.
func (c *ChannelClient) SetAccount(a *model.Account) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.account = a
}

// AccountID returns the bound account's id ("" if none).
func (c *ChannelClient) AccountID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.account == nil {
		return ""
	}
	return c.account.ID
}

// Controlling returns the primary creature, or nil.
func (c *ChannelClient) Controlling() *model.Creature {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controlling
}

// SetControlling sets the primary creature. It should be owned by the client.
func (c *ChannelClient) SetControlling(cr *model.Creature) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controlling = cr
}

// NpcSession returns the dialog sub-session of this connection.
func (c *ChannelClient) NpcSession() *model.NpcSession {
	return c.npcSession
}

// AddCreature makes cr owned by this client.
func (c *ChannelClient) AddCreature(cr *model.Creature) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.creatures[cr.EntityID()] = cr
}

// RemoveCreature drops ownership of the creature with entityID.
func (c *ChannelClient) RemoveCreature(entityID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.creatures, entityID)
	if c.controlling != nil && c.controlling.EntityID() == entityID {
		c.controlling = nil
	}
}

// Creatures returns a snapshot of the owned creatures.
func (c *ChannelClient) Creatures() []*model.Creature {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*model.Creature, 0, len(c.creatures))
	for _, cr := range c.creatures {
		out = append(out, cr)
	}
	return out
}

// CreatureCount returns the number of owned creatures.
func (c *ChannelClient) CreatureCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.creatures)
}

// GetCreature returns the owned creature with entityID.
// Only for trusted callers; ids from the network go through GetCreatureSafe.
func (c *ChannelClient) GetCreature(entityID int64) (*model.Creature, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cr, ok := c.creatures[entityID]
	return cr, ok
}

// GetCreatureSafe returns the owned creature with entityID, or a
// *SecurityViolation if the client does not own it.
func (c *ChannelClient) GetCreatureSafe(entityID int64) (*model.Creature, error) {
	cr, ok := c.GetCreature(entityID)
	if !ok {
		return nil, &SecurityViolation{
			Account:  c.AccountID(),
			EntityID: entityID,
			Reason:   "creature not owned by client",
		}
	}
	return cr, nil
}

// CleanUp saves the account and releases every owned creature.
//
// The client state is swapped out under the lock before any side effect, so
// concurrent and repeated calls save and dispose at most once. Steps run in
// order: save account, then per creature in a region clear its open dialog and
// remove it from the region, then dispose every creature. Failures are logged
// and never stop the remaining steps.
func (c *ChannelClient) CleanUp(ctx context.Context) {
	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	c.mu.Lock()
	account := c.account
	creatures := c.creatures
	c.account = nil
	c.controlling = nil
	c.creatures = make(map[int64]*model.Creature)
	c.mu.Unlock()

	if account != nil && c.saver != nil {
		if err := c.saver.SaveAccount(ctx, account); err != nil {
			slog.Error("failed to save account on cleanup",
				"account", account.ID,
				"error", err)
		}
	}

	for _, cr := range creatures {
		region := cr.Region()
		if region == nil {
			continue
		}
		guard("leave region", cr, func() {
			if ctrl := cr.Controller(); ctrl != nil {
				if npc := ctrl.NpcSession(); npc != nil && npc.HasDialog() {
					npc.Clear()
				}
			}
			region.RemoveCreature(cr)
		})
	}

	for _, cr := range creatures {
		guard("dispose", cr, cr.Dispose)
	}

	if account != nil {
		slog.Debug("client cleaned up", "account", account.ID, "creatures", len(creatures))
	}
}

// SaveAccount persists the bound account. It is a no-op once CleanUp has
// taken the account, and waits for a running CleanUp to finish.
func (c *ChannelClient) SaveAccount(ctx context.Context) (bool, error) {
	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	account := c.Account()
	if account == nil || c.saver == nil {
		return false, nil
	}
	if err := c.saver.SaveAccount(ctx, account); err != nil {
		return false, fmt.Errorf("saving account %q: %w", account.ID, err)
	}
	return true, nil
}

// guard runs one cleanup step for cr, logging instead of propagating a panic.
func guard(step string, cr *model.Creature, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("cleanup step failed",
				"step", step,
				"creature", cr.EntityID(),
				"panic", r)
		}
	}()
	fn()
}

// NotifyTrainingProgress sends the updated skill to the client.
func (c *ChannelClient) NotifyTrainingProgress(cr *model.Creature, skill *model.Skill, gained float64) {
	msg := serverpackets.SkillTrainingUp{
		EntityID: cr.EntityID(),
		Info:     skill.Info(),
		Gained:   float32(gained),
	}.Message()
	if err := c.Send(msg); err != nil {
		slog.Debug("training notification dropped",
			"creature", cr.EntityID(),
			"skill", skill.ID(),
			"error", err)
	}
}

// StartWriter starts the writer goroutine.
func (c *ChannelClient) StartWriter() {
	c.pumping.Store(true)
	go c.writePump()
}

// writePump is a dedicated writer goroutine for this client.
// Reads framed messages from sendCh and writes them to conn.
// Queued messages are batched into one net.Buffers write.
// On close, messages already queued are still written.
func (c *ChannelClient) writePump() {
	defer close(c.pumpDone)

	bufs := make(net.Buffers, 0, 64)
	poolBufs := make([][]byte, 0, 64)

	defer func() {
		for {
			select {
			case pkt := <-c.sendCh:
				c.writePool.Put(pkt)
			default:
				return
			}
		}
	}()

	for {
		select {
		case pkt := <-c.sendCh:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
				slog.Warn("set write deadline failed", "client", c.ip, "error", err)
				c.writePool.Put(pkt)
				return
			}

			queued := len(c.sendCh)
			if queued == 0 {
				_, err := c.conn.Write(pkt)
				c.writePool.Put(pkt)
				if err != nil {
					slog.Warn("write failed", "client", c.ip, "error", err)
					return
				}
				continue
			}

			bufs = bufs[:0]
			poolBufs = poolBufs[:0]
			bufs = append(bufs, pkt)
			poolBufs = append(poolBufs, pkt)
			for range queued {
				p := <-c.sendCh
				bufs = append(bufs, p)
				poolBufs = append(poolBufs, p)
			}

			_, err := bufs.WriteTo(c.conn)
			for _, b := range poolBufs {
				c.writePool.Put(b)
			}
			if err != nil {
				slog.Warn("batch write failed", "client", c.ip, "error", err)
				return
			}

		case <-c.closeCh:
			c.flush()
			return
		}
	}
}

// flush writes whatever is left in the queue, stopping at the first error.
func (c *ChannelClient) flush() {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return
	}
	for {
		select {
		case pkt := <-c.sendCh:
			_, err := c.conn.Write(pkt)
			c.writePool.Put(pkt)
			if err != nil {
				return
			}
		default:
			return
		}
	}
}

// Send frames m and queues it for async delivery.
// Non-blocking: a full queue disconnects the client.
func (c *ChannelClient) Send(m protocol.Message) error {
	select {
	case <-c.closeCh:
		return errClientClosed
	default:
	}

	n := protocol.LengthPrefixSize + protocol.MessageHeaderSize + len(m.Body)
	if n > protocol.LengthPrefixSize+protocol.MaxMessageSize {
		return fmt.Errorf("sending %d bytes: %w", n, protocol.ErrMessageTooLarge)
	}
	buf := protocol.AppendMessage(c.writePool.Get(n)[:0], m)

	select {
	case c.sendCh <- buf:
		return nil
	default:
		c.writePool.Put(buf)
		slog.Warn("send queue full, disconnecting slow client", "client", c.ip)
		c.CloseAsync()
		return errSendQueueFull
	}
}

// CloseAsync signals the writePump to stop without blocking.
// Safe to call multiple times.
func (c *ChannelClient) CloseAsync() {
	c.closeOnce.Do(func() {
		c.state.Store(int32(ClientStateDisconnected))
		close(c.closeCh)
	})
}

// Close stops the writePump, waits for queued messages to be written
// (bounded by the write timeout) and closes the connection.
func (c *ChannelClient) Close() error {
	c.CloseAsync()
	if c.pumping.Load() {
		select {
		case <-c.pumpDone:
		case <-time.After(c.writeTimeout):
		}
	}
	return c.conn.Close()
}

// Kill terminates the connection. Cleanup follows from the read loop exiting.
func (c *ChannelClient) Kill() {
	slog.Info("killing client connection", "client", c.ip, "account", c.AccountID())
	if err := c.Close(); err != nil {
		slog.Debug("closing killed connection", "client", c.ip, "error", err)
	}
}

var _ model.Controller = (*ChannelClient)(nil)
