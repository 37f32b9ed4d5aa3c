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

type EventHandler struct {
	store  *store.EventStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewEventHandler(s *store.EventStore, hub *websocket.Hub, logger *slog.Logger) *EventHandler {
	return &EventHandler{store: s, hub: hub, logger: logger}
}

func (h *EventHandler) broadcast(n websocket.Notice) {
	if h.hub != nil {
		h.hub.Broadcast(n)
	}
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string    `json:"title"`
		Date        time.Time `json:"date"`
		Description string    `json:"description"`
		Location    string    `json:"location"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	event, err := h.store.Create(req.Title, req.Date, req.Description, req.Location)
	if err != nil {
		h.logger.Error("create event", "error", err)
		writeError(w, err, "failed to create event")
		return
	}

	h.broadcast(websocket.EventNotice(websocket.ActionCreated, event.ID))
	writeJSON(w, http.StatusCreated, event)
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.store.List()
	if err != nil {
		h.logger.Error("list events", "error", err)
		writeError(w, err, "failed to list events")
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	event, err := h.store.GetByID(id)
	if err != nil {
		writeError(w, err, "failed to get event")
		return
	}
	if event == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "event not found"})
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.store.Delete(id); err != nil {
		writeError(w, err, "failed to delete event")
		return
	}

	h.broadcast(websocket.EventNotice(websocket.ActionDeleted, id))
	w.WriteHeader(http.StatusNoContent)
}
