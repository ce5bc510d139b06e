package model

import "sync"

// NpcSession holds the state of an open NPC dialog.
type NpcSession struct {
	mu     sync.Mutex
	target *Creature
	dialog string
}

// NewNpcSession creates a session with no open dialog.
func NewNpcSession() *NpcSession {
	return &NpcSession{}
}

// Start opens the dialog keyed dialog with target.
func (n *NpcSession) Start(target *Creature, dialog string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.target = target
	n.dialog = dialog
}

// Target returns the NPC talked to, or nil.
func (n *NpcSession) Target() *Creature {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.target
}

// Dialog returns the key of the open dialog ("" if none).
func (n *NpcSession) Dialog() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.dialog
}

// HasDialog reports whether a dialog is open.
func (n *NpcSession) HasDialog() bool {
	return n.Dialog() != ""
}

// Clear closes the dialog.
func (n *NpcSession) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.target = nil
	n.dialog = ""
}
