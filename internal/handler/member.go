package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/parish/internal/attendance"
	"github.com/dukerupert/parish/internal/model"
	"github.com/dukerupert/parish/internal/store"
	"github.com/dukerupert/parish/internal/websocket"
)

type MemberHandler struct {
	store  *store.MemberStore
	svc    *attendance.Service
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewMemberHandler(s *store.MemberStore, svc *attendance.Service, hub *websocket.Hub, logger *slog.Logger) *MemberHandler {
	return &MemberHandler{store: s, svc: svc, hub: hub, logger: logger}
}

func (h *MemberHandler) broadcast(n websocket.Notice) {
	if h.hub != nil {
		h.hub.Broadcast(n)
	}
}

type memberRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Birthday  string `json:"birthday"`
	Address   string `json:"address"`
}

func (h *MemberHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	var birthday *time.Time
	if req.Birthday != "" {
		t, err := time.Parse("2006-01-02", req.Birthday)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "birthday must be YYYY-MM-DD"})
			return
		}
		birthday = &t
	}

	member, err := h.store.Create(req.FirstName, req.LastName, req.Phone, birthday, req.Address)
	if err != nil {
		h.logger.Error("create member", "error", err)
		writeError(w, err, "failed to create member")
		return
	}

	h.broadcast(websocket.MemberNotice(websocket.ActionCreated, member.ID))
	writeJSON(w, http.StatusCreated, member)
}

func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	members, err := h.store.List()
	if err != nil {
		h.logger.Error("list members", "error", err)
		writeError(w, err, "failed to list members")
		return
	}
	if members == nil {
		members = []model.Member{}
	}
	writeJSON(w, http.StatusOK, members)
}

// Delete removes a member along with every attendance record referencing
// them, via the attendance service cascade.
func (h *MemberHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.svc.DeleteMember(id); err != nil {
		h.logger.Error("delete member", "member_id", id, "error", err)
		writeError(w, err, "failed to delete member")
		return
	}

	h.broadcast(websocket.MemberNotice(websocket.ActionDeleted, id))
	writeJSON(w, http.StatusOK, map[string]string{"message": "member and attendance records deleted"})
}
