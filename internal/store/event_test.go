package store

import (
	"errors"
	"testing"
	"time"

	"github.com/dukerupert/parish/internal/database"
)

func setupEventTestDB(t *testing.T) *EventStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewEventStore(db)
}

func TestEventCRUD(t *testing.T) {
	es := setupEventTestDB(t)

	date := time.Date(2024, 3, 31, 10, 0, 0, 0, time.UTC)
	event, err := es.Create("Easter Service", date, "Sunrise service", "Main hall")
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	if event.Title != "Easter Service" {
		t.Errorf("title = %q", event.Title)
	}
	if !event.Date.Equal(date) {
		t.Errorf("date = %v, want %v", event.Date, date)
	}

	got, err := es.GetByID(event.ID)
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if got == nil || got.Location != "Main hall" {
		t.Errorf("got = %+v", got)
	}

	if err := es.Delete(event.ID); err != nil {
		t.Fatalf("delete event: %v", err)
	}
	got, err = es.GetByID(event.ID)
	if err != nil {
		t.Fatalf("get deleted event: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestEventListOrderedByDate(t *testing.T) {
	es := setupEventTestDB(t)

	later := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	earlier := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	if _, err := es.Create("Later", later, "", ""); err != nil {
		t.Fatalf("create later: %v", err)
	}
	if _, err := es.Create("Earlier", earlier, "", ""); err != nil {
		t.Fatalf("create earlier: %v", err)
	}

	events, err := es.List()
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 2 || events[0].Title != "Earlier" {
		t.Errorf("events = %v, want date order", events)
	}
}

func TestEventValidation(t *testing.T) {
	es := setupEventTestDB(t)

	_, err := es.Create("", time.Now(), "", "")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("missing title: expected ValidationError, got %v", err)
	}

	_, err = es.Create("Potluck", time.Time{}, "", "")
	if !errors.As(err, &ve) {
		t.Fatalf("zero date: expected ValidationError, got %v", err)
	}
}

func TestEventDeleteNotFound(t *testing.T) {
	es := setupEventTestDB(t)

	if err := es.Delete(9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
