package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/parish/internal/attendance"
	"github.com/dukerupert/parish/internal/backup"
	"github.com/dukerupert/parish/internal/handler"
	"github.com/dukerupert/parish/internal/middleware"
	"github.com/dukerupert/parish/internal/store"
	ws "github.com/dukerupert/parish/internal/websocket"
)

// API rate limits, matching the original deployment's 100 requests per
// 15-minute window per client.
const (
	rateLimitMax    = 100
	rateLimitWindow = 15 * time.Minute
)

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	memberH       *handler.MemberHandler
	attendanceH   *handler.AttendanceHandler
	eventH        *handler.EventHandler
	transactionH  *handler.TransactionHandler
	minuteH       *handler.MinuteHandler
	backupH       *handler.BackupHandler
	rateLimiter   *middleware.RateLimiter
	backupManager *backup.Manager
	logger        *slog.Logger
}

func New(db *sql.DB, backupCfg backup.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	memberStore := store.NewMemberStore(db)
	attendanceStore := store.NewAttendanceStore(db)
	eventStore := store.NewEventStore(db)
	transactionStore := store.NewTransactionStore(db)
	minuteStore := store.NewMinuteStore(db)
	backupStore := store.NewBackupStore(db)

	svc := attendance.NewService(memberStore, attendanceStore, logger.With("component", "attendance"))

	backupMgr := backup.NewManager(backupCfg, db, backupStore, logger.With("component", "backup"))

	return &Server{
		db:            db,
		hub:           hub,
		memberH:       handler.NewMemberHandler(memberStore, svc, hub, logger.With("component", "member")),
		attendanceH:   handler.NewAttendanceHandler(attendanceStore, svc, hub, logger.With("component", "attendance_handler")),
		eventH:        handler.NewEventHandler(eventStore, hub, logger.With("component", "event")),
		transactionH:  handler.NewTransactionHandler(transactionStore, hub, logger.With("component", "transaction")),
		minuteH:       handler.NewMinuteHandler(minuteStore, hub, logger.With("component", "minute")),
		backupH:       handler.NewBackupHandler(backupMgr, backupStore, logger.With("component", "backup_handler")),
		rateLimiter:   middleware.NewRateLimiter(),
		backupManager: backupMgr,
		logger:        logger,
	}
}

// BackupManager returns the backup manager for lifecycle control.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Hub returns the websocket hub for shutdown control.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /api", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Church System API"})
	})

	// Member routes
	mux.HandleFunc("POST /api/members", s.memberH.Create)
	mux.HandleFunc("GET /api/members", s.memberH.List)
	mux.HandleFunc("DELETE /api/members/{id}", s.memberH.Delete)

	// Attendance routes
	mux.HandleFunc("POST /api/attendance", s.attendanceH.Create)
	mux.HandleFunc("GET /api/attendance", s.attendanceH.ListByDate)
	mux.HandleFunc("POST /api/attendance/bulk", s.attendanceH.Bulk)
	mux.HandleFunc("PUT /api/attendance/{id}", s.attendanceH.Update)

	// Event routes
	mux.HandleFunc("POST /api/events", s.eventH.Create)
	mux.HandleFunc("GET /api/events", s.eventH.List)
	mux.HandleFunc("GET /api/events/{id}", s.eventH.Get)
	mux.HandleFunc("DELETE /api/events/{id}", s.eventH.Delete)

	// Transaction routes
	mux.HandleFunc("POST /api/transactions", s.transactionH.Create)
	mux.HandleFunc("GET /api/transactions", s.transactionH.List)
	mux.HandleFunc("GET /api/transactions/summary", s.transactionH.Summary)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.transactionH.Delete)

	// Minute routes
	mux.HandleFunc("POST /api/minutes", s.minuteH.Create)
	mux.HandleFunc("GET /api/minutes", s.minuteH.List)
	mux.HandleFunc("GET /api/minutes/{id}", s.minuteH.Get)
	mux.HandleFunc("DELETE /api/minutes/{id}", s.minuteH.Delete)

	// Backup routes
	mux.HandleFunc("POST /api/backup/run", s.backupH.Run)
	mux.HandleFunc("GET /api/backup/status", s.backupH.Status)
	mux.HandleFunc("GET /api/backup/history", s.backupH.History)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))

	rl := middleware.RateLimit(s.rateLimiter, middleware.RealIP, rateLimitMax, rateLimitWindow)
	logged := middleware.RequestLogger(s.logger.With("component", "http"))

	return logged(rl(mux))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
