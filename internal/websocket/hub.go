// Package websocket pushes change notifications to connected clients so open
// pages (the roster, the attendance sheet for a day) refresh without polling.
package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Notice is one change notification. Attendance notices always carry the
// affected day so clients showing that date know to re-fetch it; notices for
// other entities carry just the record id.
type Notice struct {
	Type   string `json:"type"` // "<entity>_<action>"
	Entity string `json:"entity"`
	Action string `json:"action"`
	ID     int64  `json:"id,omitempty"`
	Date   string `json:"date,omitempty"` // YYYY-MM-DD
}

// Actions carried by notices.
const (
	ActionCreated    = "created"
	ActionUpdated    = "updated"
	ActionDeleted    = "deleted"
	ActionReconciled = "reconciled"
)

func notice(entity, action string, id int64, date string) Notice {
	return Notice{
		Type:   entity + "_" + action,
		Entity: entity,
		Action: action,
		ID:     id,
		Date:   date,
	}
}

// MemberNotice reports a change to the membership roster.
func MemberNotice(action string, id int64) Notice {
	return notice("member", action, id, "")
}

// AttendanceNotice reports a change to one day's attendance. A reconcile
// replaces the whole day, so it carries the date with a zero id.
func AttendanceNotice(action string, id int64, day string) Notice {
	return notice("attendance", action, id, day)
}

// EventNotice reports a change to the events calendar.
func EventNotice(action string, id int64) Notice {
	return notice("event", action, id, "")
}

// TransactionNotice reports a change to the finance ledger.
func TransactionNotice(action string, id int64) Notice {
	return notice("transaction", action, id, "")
}

// MinuteNotice reports a change to the meeting minutes.
func MinuteNotice(action string, id int64) Notice {
	return notice("minute", action, id, "")
}

// Hub tracks connected clients and fans notices out to them. A closed hub
// rejects new registrations; clients connecting during shutdown are turned
// away instead of lingering.
type Hub struct {
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[*Client]struct{}
	closed  bool
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client. It reports false when the hub has been closed, in
// which case the client must not be used.
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	h.logger.Debug("client connected", "clients", len(h.clients))
	return true
}

// Unregister removes a client and closes its outbox. Safe to call for a
// client the hub no longer tracks.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.outbox)
		h.logger.Debug("client disconnected", "clients", len(h.clients))
	}
}

// Broadcast queues the notice for every connected client. Clients whose
// outbox is full are skipped; a stalled reader never blocks a mutation.
func (h *Hub) Broadcast(n Notice) {
	payload, err := json.Marshal(n)
	if err != nil {
		h.logger.Error("encode notice", "type", n.Type, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	skipped := 0
	for c := range h.clients {
		select {
		case c.outbox <- payload:
		default:
			skipped++
		}
	}
	if skipped > 0 {
		h.logger.Debug("skipped slow clients", "type", n.Type, "count", skipped)
	}
}

// Close disconnects every client and rejects future registrations. Called at
// server shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.outbox)
	}
	h.logger.Debug("hub closed")
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
