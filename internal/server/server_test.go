package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dukerupert/parish/internal/backup"
	"github.com/dukerupert/parish/internal/database"
	"github.com/dukerupert/parish/internal/model"
)

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	srv := New(db, backup.Config{}, slog.New(slog.DiscardHandler))
	return srv.Router()
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func createMember(t *testing.T, router http.Handler, first, last string) model.Member {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/members", map[string]string{
		"first_name": first,
		"last_name":  last,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create member: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	return decode[model.Member](t, rec)
}

func TestHealthEndpoint(t *testing.T) {
	router := setupRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode[map[string]string](t, rec)
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestMemberEndpoints(t *testing.T) {
	router := setupRouter(t)

	m := createMember(t, router, "Grace", "Wanjiru")
	if m.ID == 0 || m.FirstName != "Grace" {
		t.Errorf("member = %+v", m)
	}

	rec := doJSON(t, router, http.MethodPost, "/api/members", map[string]string{"first_name": "NoLast"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing last name: status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/members", nil)
	members := decode[[]model.Member](t, rec)
	if len(members) != 1 {
		t.Errorf("members = %v, want one", members)
	}

	rec = doJSON(t, router, http.MethodDelete, "/api/members/99999", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete unknown: status = %d, want 404", rec.Code)
	}

	rec = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/members/%d", m.ID), nil)
	if rec.Code != http.StatusOK {
		t.Errorf("delete: status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestAttendanceDuplicateConflict(t *testing.T) {
	router := setupRouter(t)
	m := createMember(t, router, "Grace", "Wanjiru")

	body := map[string]any{"member_id": m.ID, "date": "2024-01-10", "status": "present"}
	rec := doJSON(t, router, http.MethodPost, "/api/attendance", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first create: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/api/attendance", body)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate: status = %d, want 409", rec.Code)
	}
}

func TestBulkAttendanceFlow(t *testing.T) {
	router := setupRouter(t)
	grace := createMember(t, router, "Grace", "Wanjiru")
	createMember(t, router, "Peter", "Kamau")

	rec := doJSON(t, router, http.MethodPost, "/api/attendance/bulk", map[string]any{
		"date": "2024-01-10",
		"records": []map[string]any{
			{"member_id": grace.ID, "status": "late", "notes": "traffic"},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("bulk: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decode[struct {
		Records []model.AttendanceRecord `json:"records"`
	}](t, rec)
	if len(resp.Records) != 2 {
		t.Fatalf("records = %d, want full roster of 2", len(resp.Records))
	}

	rec = doJSON(t, router, http.MethodGet, "/api/attendance?date=2024-01-10", nil)
	entries := decode[[]model.AttendanceEntry](t, rec)
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	byName := make(map[string]model.AttendanceEntry)
	for _, e := range entries {
		byName[e.FirstName] = e
	}
	if byName["Grace"].Status != model.StatusLate || byName["Grace"].Notes != "traffic" {
		t.Errorf("grace = %+v", byName["Grace"])
	}
	if byName["Peter"].Status != model.StatusAbsent {
		t.Errorf("peter = %+v, want absent (omitted from bulk body)", byName["Peter"])
	}
}

func TestBulkAttendanceInvalidStatus(t *testing.T) {
	router := setupRouter(t)
	m := createMember(t, router, "Grace", "Wanjiru")

	rec := doJSON(t, router, http.MethodPost, "/api/attendance/bulk", map[string]any{
		"date": "2024-01-10",
		"records": []map[string]any{
			{"member_id": m.ID, "status": "vacationing"},
		},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAttendanceUpdateNotFound(t *testing.T) {
	router := setupRouter(t)

	status := "late"
	rec := doJSON(t, router, http.MethodPut, "/api/attendance/424242", map[string]any{"status": status})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestMemberDeleteCascadesOverHTTP(t *testing.T) {
	router := setupRouter(t)
	grace := createMember(t, router, "Grace", "Wanjiru")
	peter := createMember(t, router, "Peter", "Kamau")

	rec := doJSON(t, router, http.MethodPost, "/api/attendance/bulk", map[string]any{
		"date": "2024-01-10",
		"records": []map[string]any{
			{"member_id": grace.ID, "status": "present"},
			{"member_id": peter.ID, "status": "present"},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("bulk: status = %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/members/%d", peter.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: status = %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/attendance?date=2024-01-10", nil)
	entries := decode[[]model.AttendanceEntry](t, rec)
	if len(entries) != 1 || entries[0].MemberID != grace.ID {
		t.Errorf("entries = %v, want grace only", entries)
	}
}

func TestTransactionSummaryEndpoint(t *testing.T) {
	router := setupRouter(t)

	for _, tx := range []map[string]any{
		{"amount": 1000, "type": "donation", "category": "tithe"},
		{"amount": 250, "type": "expense", "category": "utilities"},
	} {
		rec := doJSON(t, router, http.MethodPost, "/api/transactions", tx)
		if rec.Code != http.StatusCreated {
			t.Fatalf("create transaction: status = %d, body = %s", rec.Code, rec.Body.String())
		}
	}

	rec := doJSON(t, router, http.MethodGet, "/api/transactions/summary", nil)
	sum := decode[model.TransactionSummary](t, rec)
	if sum.Donations != 1000 || sum.Expenses != 250 || sum.Balance != 750 {
		t.Errorf("summary = %+v", sum)
	}
}

func TestBackupStatusDisabled(t *testing.T) {
	router := setupRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/backup/status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	status := decode[backup.Status](t, rec)
	if status.State != backup.StateDisabled {
		t.Errorf("state = %q, want disabled (no credentials configured)", status.State)
	}
}
