package websocket

import (
	"encoding/json"
	"log/slog"
	"testing"
)

func newTestHub() *Hub {
	return NewHub(slog.New(slog.DiscardHandler))
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := newTestHub()
	c := NewClient(hub, nil)

	if !hub.Register(c) {
		t.Fatal("register on open hub should succeed")
	}
	if hub.ClientCount() != 1 {
		t.Fatalf("client count = %d, want 1", hub.ClientCount())
	}

	hub.Unregister(c)
	if hub.ClientCount() != 0 {
		t.Errorf("client count = %d, want 0", hub.ClientCount())
	}

	// Unregistering twice must not panic on a closed channel.
	hub.Unregister(c)
}

func TestHubBroadcast(t *testing.T) {
	hub := newTestHub()
	a := NewClient(hub, nil)
	b := NewClient(hub, nil)
	hub.Register(a)
	hub.Register(b)

	hub.Broadcast(MemberNotice(ActionCreated, 7))

	for name, c := range map[string]*Client{"a": a, "b": b} {
		select {
		case data := <-c.outbox:
			var n Notice
			if err := json.Unmarshal(data, &n); err != nil {
				t.Fatalf("client %s: unmarshal: %v", name, err)
			}
			if n.Type != "member_created" || n.ID != 7 {
				t.Errorf("client %s: notice = %+v", name, n)
			}
		default:
			t.Errorf("client %s received nothing", name)
		}
	}
}

func TestHubBroadcastSkipsFullOutbox(t *testing.T) {
	hub := newTestHub()
	c := NewClient(hub, nil)
	hub.Register(c)

	// Fill the outbox and then one more; the overflow notice is skipped
	// rather than blocking the hub.
	for i := 0; i <= outboxSize; i++ {
		hub.Broadcast(AttendanceNotice(ActionUpdated, int64(i), "2024-01-10"))
	}

	if len(c.outbox) != outboxSize {
		t.Errorf("buffered = %d, want %d", len(c.outbox), outboxSize)
	}
}

func TestHubClose(t *testing.T) {
	hub := newTestHub()
	a := NewClient(hub, nil)
	b := NewClient(hub, nil)
	hub.Register(a)
	hub.Register(b)

	hub.Close()

	if hub.ClientCount() != 0 {
		t.Errorf("client count = %d, want 0 after close", hub.ClientCount())
	}
	if _, ok := <-a.outbox; ok {
		t.Error("client outbox should be closed")
	}

	if hub.Register(NewClient(hub, nil)) {
		t.Error("register on closed hub should be rejected")
	}

	// Closing twice must not panic.
	hub.Close()

	// Broadcast to a closed hub is a no-op.
	hub.Broadcast(MemberNotice(ActionDeleted, 1))
}

func TestNoticeConstructors(t *testing.T) {
	n := AttendanceNotice(ActionReconciled, 0, "2024-01-10")
	if n.Type != "attendance_reconciled" {
		t.Errorf("type = %q", n.Type)
	}
	if n.Date != "2024-01-10" {
		t.Errorf("date = %q", n.Date)
	}
	if n.ID != 0 {
		t.Errorf("id = %d, want 0 for a whole-day notice", n.ID)
	}

	m := MemberNotice(ActionDeleted, 12)
	if m.Type != "member_deleted" || m.ID != 12 || m.Date != "" {
		t.Errorf("notice = %+v", m)
	}
}
