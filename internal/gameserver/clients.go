package gameserver

import "sync"

// ClientManager tracks logged in channel clients by account id.
// Thread-safe for concurrent access.
type ClientManager struct {
	mu      sync.RWMutex
	clients map[string]*ChannelClient
}

// NewClientManager creates a new client manager.
func NewClientManager() *ClientManager {
	return &ClientManager{
		clients: make(map[string]*ChannelClient, 256),
	}
}

// Register adds a client under accountID.
// Returns false and leaves the registry unchanged if the account already has a client.
func (cm *ClientManager) Register(accountID string, client *ChannelClient) bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if _, ok := cm.clients[accountID]; ok {
		return false
	}
	cm.clients[accountID] = client
	return true
}

// Unregister removes the client of accountID if it is client.
func (cm *ClientManager) Unregister(accountID string, client *ChannelClient) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.clients[accountID] == client {
		delete(cm.clients, accountID)
	}
}

// GetClient returns the client for accountID, or nil.
func (cm *ClientManager) GetClient(accountID string) *ChannelClient {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.clients[accountID]
}

// Count returns the number of logged in clients.
func (cm *ClientManager) Count() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.clients)
}

// ForEachClient iterates over a snapshot of the clients.
// If fn returns false, iteration stops.
func (cm *ClientManager) ForEachClient(fn func(*ChannelClient) bool) {
	cm.mu.RLock()
	snapshot := make([]*ChannelClient, 0, len(cm.clients))
	for _, c := range cm.clients {
		snapshot = append(snapshot, c)
	}
	cm.mu.RUnlock()

	for _, c := range snapshot {
		if !fn(c) {
			return
		}
	}
}
