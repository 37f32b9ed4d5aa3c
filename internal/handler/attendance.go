package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/parish/internal/attendance"
	"github.com/dukerupert/parish/internal/model"
	"github.com/dukerupert/parish/internal/store"
	"github.com/dukerupert/parish/internal/websocket"
)

type AttendanceHandler struct {
	store  *store.AttendanceStore
	svc    *attendance.Service
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewAttendanceHandler(s *store.AttendanceStore, svc *attendance.Service, hub *websocket.Hub, logger *slog.Logger) *AttendanceHandler {
	return &AttendanceHandler{store: s, svc: svc, hub: hub, logger: logger}
}

func (h *AttendanceHandler) broadcast(n websocket.Notice) {
	if h.hub != nil {
		h.hub.Broadcast(n)
	}
}

// Create inserts a single attendance record. A duplicate (member, date) pair
// is a 409; the client should update the existing record instead.
func (h *AttendanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID int64  `json:"member_id"`
		Date     string `json:"date"`
		Status   string `json:"status"`
		Notes    string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	rec, err := h.store.Create(req.MemberID, req.Date, req.Status, req.Notes)
	if err != nil {
		h.logger.Error("create attendance", "member_id", req.MemberID, "date", req.Date, "error", err)
		writeError(w, err, "failed to create attendance record")
		return
	}

	h.broadcast(websocket.AttendanceNotice(websocket.ActionCreated, rec.ID, rec.Day))
	writeJSON(w, http.StatusCreated, rec)
}

// ListByDate returns the date's records joined with member names. Records
// whose member has been deleted are not returned.
func (h *AttendanceHandler) ListByDate(w http.ResponseWriter, r *http.Request) {
	day := r.URL.Query().Get("date")

	entries, err := h.store.FindByDate(day)
	if err != nil {
		writeError(w, err, "failed to list attendance")
		return
	}
	if entries == nil {
		entries = []model.AttendanceEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

type bulkRecord struct {
	MemberID int64  `json:"member_id"`
	Status   string `json:"status"`
	Notes    string `json:"notes"`
}

// Bulk replaces the date's attendance with the submitted roster statuses.
// Members omitted from the body are recorded absent.
func (h *AttendanceHandler) Bulk(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date    string       `json:"date"`
		Records []bulkRecord `json:"records"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	entries := make(map[int64]attendance.Entry, len(req.Records))
	for _, rec := range req.Records {
		entries[rec.MemberID] = attendance.Entry{Status: rec.Status, Notes: rec.Notes}
	}

	created, err := h.svc.Reconcile(req.Date, entries)
	if err != nil {
		h.logger.Error("bulk reconcile", "date", req.Date, "error", err)
		writeError(w, err, "failed to update attendance")
		return
	}

	h.broadcast(websocket.AttendanceNotice(websocket.ActionReconciled, 0, req.Date))
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "attendance updated successfully",
		"records": created,
	})
}

// Update patches one record by identifier. It never creates a record and
// never falls back to a (member, date) lookup.
func (h *AttendanceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req struct {
		Status *string `json:"status"`
		Notes  *string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	rec, err := h.store.Update(id, store.UpdatePatch{Status: req.Status, Notes: req.Notes})
	if err != nil {
		h.logger.Error("update attendance", "id", id, "error", err)
		writeError(w, err, "failed to update attendance record")
		return
	}

	h.broadcast(websocket.AttendanceNotice(websocket.ActionUpdated, id, rec.Day))
	writeJSON(w, http.StatusOK, rec)
}
