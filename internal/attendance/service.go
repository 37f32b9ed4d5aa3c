// Package attendance implements roster-wide attendance reconciliation: the
// bulk operation that replaces a day's records with a fresh set covering the
// current membership roster.
package attendance

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/dukerupert/parish/internal/model"
	"github.com/dukerupert/parish/internal/store"
)

// Entry is one member's submitted status for a day.
type Entry struct {
	Status string
	Notes  string
}

// PartialWriteError reports a reconcile that deleted the day's prior records
// but failed before re-inserting the full roster. The day's attendance is
// inconsistent; callers should re-fetch and re-submit rather than retry
// blindly.
type PartialWriteError struct {
	Day     string
	Written int
	Err     error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("partial attendance write for %s: %d records written: %v", e.Day, e.Written, e.Err)
}

func (e *PartialWriteError) Unwrap() error { return e.Err }

// Service coordinates bulk reconciliation and the member-deletion cascade.
type Service struct {
	members *store.MemberStore
	records *store.AttendanceStore
	logger  *slog.Logger

	// Per-day locks serialize reconciliations within this process. The map
	// grows by one entry per distinct day edited over the process lifetime,
	// which is small enough to never reclaim.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(members *store.MemberStore, records *store.AttendanceStore, logger *slog.Logger) *Service {
	return &Service{
		members: members,
		records: records,
		logger:  logger,
		locks:   make(map[string]*sync.Mutex),
	}
}

func (s *Service) dayLock(day string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[day]
	if !ok {
		l = &sync.Mutex{}
		s.locks[day] = l
	}
	return l
}

// resolve returns the status and notes to persist for a roster member. A
// member absent from the submitted entries is recorded as absent: the client
// submits the full roster, so omission means the member was not marked.
func resolve(memberID int64, entries map[int64]Entry) Entry {
	if e, ok := entries[memberID]; ok {
		if e.Status == "" {
			e.Status = model.StatusAbsent
		}
		return e
	}
	return Entry{Status: model.StatusAbsent}
}

// Reconcile replaces the day's attendance with one record per member of the
// current roster. Submitted entries win; everyone else is recorded absent.
// Prior records for the day are dropped wholesale, including records for
// members that have since left the roster. Record identifiers are not stable
// across reconciles of the same day.
//
// Validation failures leave the day untouched. If the insert phase fails
// after the delete, the error is a *PartialWriteError and the day holds a
// partial record set.
//
// Reconciles for the same day are serialized within this process. Two
// processes reconciling the same day can still interleave; the per-record
// uniqueness constraint holds regardless, but the replace as a whole is not
// isolated across processes.
func (s *Service) Reconcile(day string, entries map[int64]Entry) ([]model.AttendanceRecord, error) {
	if err := store.ParseDay(day); err != nil {
		return nil, err
	}
	for memberID, e := range entries {
		if e.Status != "" && !model.ValidStatus(e.Status) {
			return nil, &store.ValidationError{Msg: fmt.Sprintf("invalid status %q for member %d", e.Status, memberID)}
		}
	}

	lock := s.dayLock(day)
	lock.Lock()
	defer lock.Unlock()

	roster, err := s.members.List()
	if err != nil {
		return nil, fmt.Errorf("resolve roster: %w", err)
	}
	sort.Slice(roster, func(i, j int) bool { return roster[i].ID < roster[j].ID })

	deleted, err := s.records.DeleteByDate(day)
	if err != nil {
		return nil, fmt.Errorf("clear day: %w", err)
	}

	created := make([]model.AttendanceRecord, 0, len(roster))
	for _, m := range roster {
		e := resolve(m.ID, entries)
		rec, err := s.records.Create(m.ID, day, e.Status, e.Notes)
		if err != nil {
			s.logger.Error("reconcile aborted mid-insert",
				"day", day, "deleted", deleted, "written", len(created), "roster", len(roster), "error", err)
			return nil, &PartialWriteError{Day: day, Written: len(created), Err: err}
		}
		created = append(created, *rec)
	}

	s.logger.Info("attendance reconciled", "day", day, "deleted", deleted, "created", len(created))
	return created, nil
}

// DeleteMember removes a member and every attendance record referencing
// them. The member's existence is verified first so dependent records are
// never deleted for an id that does not exist; the cascade and the member
// delete are still two statements, so a failure between them leaves the
// member without attendance history.
func (s *Service) DeleteMember(id int64) error {
	m, err := s.members.GetByID(id)
	if err != nil {
		return fmt.Errorf("verify member: %w", err)
	}
	if m == nil {
		return fmt.Errorf("member %d: %w", id, store.ErrNotFound)
	}

	removed, err := s.records.DeleteByMember(id)
	if err != nil {
		return fmt.Errorf("cascade attendance: %w", err)
	}

	if err := s.members.Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) && removed > 0 {
			s.logger.Warn("member vanished after cascade", "member_id", id, "records_removed", removed)
		}
		return err
	}

	s.logger.Info("member deleted", "member_id", id, "records_removed", removed)
	return nil
}
