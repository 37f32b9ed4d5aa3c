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

type TransactionHandler struct {
	store  *store.TransactionStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewTransactionHandler(s *store.TransactionStore, hub *websocket.Hub, logger *slog.Logger) *TransactionHandler {
	return &TransactionHandler{store: s, hub: hub, logger: logger}
}

func (h *TransactionHandler) broadcast(n websocket.Notice) {
	if h.hub != nil {
		h.hub.Broadcast(n)
	}
}

func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount      float64   `json:"amount"`
		Type        string    `json:"type"`
		Category    string    `json:"category"`
		Description string    `json:"description"`
		Date        time.Time `json:"date"`
		CreatedBy   *int64    `json:"created_by"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	tx, err := h.store.Create(req.Amount, req.Type, req.Category, req.Description, req.Date, req.CreatedBy)
	if err != nil {
		h.logger.Error("create transaction", "error", err)
		writeError(w, err, "failed to create transaction")
		return
	}

	h.broadcast(websocket.TransactionNotice(websocket.ActionCreated, tx.ID))
	writeJSON(w, http.StatusCreated, tx)
}

func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	txs, err := h.store.List()
	if err != nil {
		h.logger.Error("list transactions", "error", err)
		writeError(w, err, "failed to list transactions")
		return
	}
	if txs == nil {
		txs = []model.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (h *TransactionHandler) Summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.store.Summary()
	if err != nil {
		h.logger.Error("transaction summary", "error", err)
		writeError(w, err, "failed to compute summary")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.store.Delete(id); err != nil {
		writeError(w, err, "failed to delete transaction")
		return
	}

	h.broadcast(websocket.TransactionNotice(websocket.ActionDeleted, id))
	w.WriteHeader(http.StatusNoContent)
}
