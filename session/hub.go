package session

import (
	"sync"

	"github.com/alterationx10/spider/actor"
	"github.com/alterationx10/spider/ws"
)

// Event is the typed envelope tell'd to a session actor: a decoded
// frame payload plus a handle back to the connection it arrived on, so
// the actor's OnMsg can send outgoing messages through it, per
// spec.md §4.12.
type Event struct {
	ConnID  string
	Conn    *ws.Conn
	Payload any
}

// Hub binds one actor per WebSocket connection id, per SPEC_FULL.md
// §6.9.
type Hub struct {
	system *actor.System

	mu    sync.Mutex
	conns map[string]*ws.Conn
}

// NewHub returns a Hub driving actors through system.
func NewHub(system *actor.System) *Hub {
	return &Hub{system: system, conns: make(map[string]*ws.Conn)}
}

// Bind registers a session actor for connID (e.g. on OnConnect),
// constructed from props, and remembers its connection.
func (h *Hub) Bind(connID string, conn *ws.Conn, props actor.Props) error {
	h.mu.Lock()
	h.conns[connID] = conn
	h.mu.Unlock()
	return h.system.ActorOf(connID, props)
}

// Dispatch tells the connID actor an Event wrapping payload.
func (h *Hub) Dispatch(connID string, payload any) error {
	h.mu.Lock()
	conn := h.conns[connID]
	h.mu.Unlock()
	return h.system.Tell(connID, Event{ConnID: connID, Conn: conn, Payload: payload})
}

// Unbind delivers a PoisonPill to the connID actor and forgets its
// connection, per spec.md §4.12's "on-close delivers a PoisonPill".
func (h *Hub) Unbind(connID string) error {
	h.mu.Lock()
	delete(h.conns, connID)
	h.mu.Unlock()
	return h.system.Tell(connID, actor.PoisonPill)
}
