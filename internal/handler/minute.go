package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/parish/internal/model"
	"github.com/dukerupert/parish/internal/store"
	"github.com/dukerupert/parish/internal/websocket"
)

type MinuteHandler struct {
	store  *store.MinuteStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewMinuteHandler(s *store.MinuteStore, hub *websocket.Hub, logger *slog.Logger) *MinuteHandler {
	return &MinuteHandler{store: s, hub: hub, logger: logger}
}

func (h *MinuteHandler) broadcast(n websocket.Notice) {
	if h.hub != nil {
		h.hub.Broadcast(n)
	}
}

func (h *MinuteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string `json:"title"`
		Content     string `json:"content"`
		FileURL     string `json:"file_url"`
		MeetingDate string `json:"meeting_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	var meetingDate *time.Time
	if req.MeetingDate != "" {
		t, err := time.Parse("2006-01-02", req.MeetingDate)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "meeting_date must be YYYY-MM-DD"})
			return
		}
		meetingDate = &t
	}

	minute, err := h.store.Create(req.Title, req.Content, req.FileURL, meetingDate)
	if err != nil {
		h.logger.Error("create minute", "error", err)
		writeError(w, err, "failed to create minutes")
		return
	}

	h.broadcast(websocket.MinuteNotice(websocket.ActionCreated, minute.ID))
	writeJSON(w, http.StatusCreated, minute)
}

func (h *MinuteHandler) List(w http.ResponseWriter, r *http.Request) {
	minutes, err := h.store.List()
	if err != nil {
		h.logger.Error("list minutes", "error", err)
		writeError(w, err, "failed to list minutes")
		return
	}
	if minutes == nil {
		minutes = []model.Minute{}
	}
	writeJSON(w, http.StatusOK, minutes)
}

func (h *MinuteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	minute, err := h.store.GetByID(id)
	if err != nil {
		writeError(w, err, "failed to get minutes")
		return
	}
	if minute == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "minutes not found"})
		return
	}
	writeJSON(w, http.StatusOK, minute)
}

func (h *MinuteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.store.Delete(id); err != nil {
		writeError(w, err, "failed to delete minutes")
		return
	}

	h.broadcast(websocket.MinuteNotice(websocket.ActionDeleted, id))
	w.WriteHeader(http.StatusNoContent)
}
