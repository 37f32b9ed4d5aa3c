package store

import (
	"errors"
	"testing"
	"time"

	"github.com/dukerupert/parish/internal/database"
)

func setupTestDB(t *testing.T) *MemberStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewMemberStore(db)
}

func TestMemberCreate(t *testing.T) {
	ms := setupTestDB(t)

	bday := time.Date(1980, 5, 20, 0, 0, 0, 0, time.UTC)
	m, err := ms.Create("Alice", "Mwangi", "555-0100", &bday, "12 Chapel Rd")
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	if m.ID == 0 {
		t.Error("expected non-zero id")
	}
	if m.FirstName != "Alice" || m.LastName != "Mwangi" {
		t.Errorf("name = %q %q, want Alice Mwangi", m.FirstName, m.LastName)
	}
	if m.Birthday == nil || !m.Birthday.Equal(bday) {
		t.Errorf("birthday = %v, want %v", m.Birthday, bday)
	}
	if m.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
}

func TestMemberCreateValidation(t *testing.T) {
	ms := setupTestDB(t)

	cases := []struct {
		name       string
		first      string
		last       string
	}{
		{"missing first name", "", "Mwangi"},
		{"missing last name", "Alice", ""},
		{"whitespace first name", "   ", "Mwangi"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ms.Create(tc.first, tc.last, "", nil, "")
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestMemberListInsertionOrder(t *testing.T) {
	ms := setupTestDB(t)

	names := []string{"Zoe", "Alice", "Mark"}
	for _, n := range names {
		if _, err := ms.Create(n, "Smith", "", nil, ""); err != nil {
			t.Fatalf("create %s: %v", n, err)
		}
	}

	members, err := ms.List()
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 3 {
		t.Fatalf("got %d members, want 3", len(members))
	}
	for i, n := range names {
		if members[i].FirstName != n {
			t.Errorf("members[%d] = %q, want %q", i, members[i].FirstName, n)
		}
	}
}

func TestMemberGetByIDNotFound(t *testing.T) {
	ms := setupTestDB(t)

	m, err := ms.GetByID(9999)
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if m != nil {
		t.Error("expected nil for nonexistent member")
	}
}

func TestMemberDelete(t *testing.T) {
	ms := setupTestDB(t)

	m, err := ms.Create("Alice", "Mwangi", "", nil, "")
	if err != nil {
		t.Fatalf("create member: %v", err)
	}

	if err := ms.Delete(m.ID); err != nil {
		t.Fatalf("delete member: %v", err)
	}

	got, err := ms.GetByID(m.ID)
	if err != nil {
		t.Fatalf("get deleted member: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestMemberDeleteNotFound(t *testing.T) {
	ms := setupTestDB(t)

	err := ms.Delete(9999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
