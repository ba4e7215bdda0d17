// Package appointment books, reschedules, confirms and cancels sessions
// between students and psychologists. A session occupies exactly one hour
// and a psychologist holds at most one active session per starting time;
// the storage layer enforces that with a partial unique index, so two
// concurrent bookings for the same slot resolve to one winner and one
// ErrSlotTaken.
package appointment

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/psyconnect/psyconnect_backend/internal/events"
	"github.com/psyconnect/psyconnect_backend/internal/model"
	"github.com/psyconnect/psyconnect_backend/internal/store"
)

// Store is the slice of appointment persistence this service needs.
type Store interface {
	Create(ctx context.Context, a *model.Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	List(ctx context.Context, f store.ListFilter) ([]*model.Appointment, error)
	ExistsActiveAt(ctx context.Context, psychologistID uuid.UUID, at time.Time) (bool, error)
	ListActiveInRange(ctx context.Context, psychologistID uuid.UUID, from, to time.Time) ([]*model.Appointment, error)
	Reschedule(ctx context.Context, id uuid.UUID, newDate time.Time) (*model.Appointment, error)
	Confirm(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	Cancel(ctx context.Context, id uuid.UUID, reason *string) (*model.Appointment, error)
}

// AvailabilityReader answers whether a psychologist has declared or blocked
// time around a given instant.
type AvailabilityReader interface {
	FindBlockedCovering(ctx context.Context, psychologistID uuid.UUID, at time.Time) (*model.AvailabilitySlot, error)
	ListAvailableOverlapping(ctx context.Context, psychologistID uuid.UUID, from, to time.Time) ([]*model.AvailabilitySlot, error)
}

// UserReader resolves participant records for display-name enrichment.
type UserReader interface {
	GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.User, error)
}

// CaseLinker attaches a confirmed appointment to the active case between
// its participants, opening one when none exists.
type CaseLinker interface {
	LinkConfirmed(ctx context.Context, a *model.Appointment) (*model.Case, error)
}

type BookRequest struct {
	StudentID      uuid.UUID      `json:"studentId"`
	PsychologistID uuid.UUID      `json:"psychologistId"`
	Date           time.Time      `json:"date"`
	Priority       model.Priority `json:"priority"`
}

type ListRequest struct {
	StudentID      *uuid.UUID
	PsychologistID *uuid.UUID
	Limit          int
	Offset         int
}

// Detail is an appointment enriched with participant display names.
type Detail struct {
	model.Appointment
	StudentName      string `json:"studentName,omitempty"`
	PsychologistName string `json:"psychologistName,omitempty"`
}

// FreeWindow is a stretch of declared availability with no active
// appointment inside it.
type FreeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type Service interface {
	Book(ctx context.Context, req BookRequest) (*model.Appointment, error)
	Modify(ctx context.Context, id uuid.UUID, newDate time.Time) (*model.Appointment, error)
	Confirm(ctx context.Context, id uuid.UUID) (*model.Appointment, *model.Case, error)
	Cancel(ctx context.Context, id uuid.UUID, reason *string) (*model.Appointment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Detail, error)
	List(ctx context.Context, req ListRequest) ([]*Detail, error)
	FreeSlots(ctx context.Context, psychologistID uuid.UUID, from, to time.Time) ([]FreeWindow, error)
}

type service struct {
	store        Store
	availability AvailabilityReader
	users        UserReader
	cases        CaseLinker
	publisher    events.Publisher
}

func New(st Store, av AvailabilityReader, users UserReader, cases CaseLinker, pub events.Publisher) Service {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &service{store: st, availability: av, users: users, cases: cases, publisher: pub}
}

func (s *service) Book(ctx context.Context, req BookRequest) (*model.Appointment, error) {
	if req.StudentID == uuid.Nil || req.PsychologistID == uuid.Nil {
		return nil, ErrInvalidID
	}
	if req.Date.IsZero() {
		return nil, ErrInvalidDate
	}
	if req.Priority == "" {
		req.Priority = model.PriorityRegular
	}
	if !req.Priority.Valid() {
		return nil, ErrInvalidPriority
	}

	if err := s.checkSlot(ctx, req.PsychologistID, req.Date); err != nil {
		return nil, err
	}

	a := &model.Appointment{
		ID:             uuid.New(),
		StudentID:      req.StudentID,
		PsychologistID: req.PsychologistID,
		Date:           req.Date.UTC(),
		Status:         model.StatusPending,
		Priority:       req.Priority,
	}
	if err := s.store.Create(ctx, a); err != nil {
		if store.IsConflict(err) {
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("creating appointment: %w", err)
	}

	s.publisher.AppointmentCreated(a)
	return a, nil
}

// checkSlot rejects instants the psychologist has blocked or already holds
// an active appointment at. The appointment check is advisory only; the
// unique index makes the final call at insert time.
func (s *service) checkSlot(ctx context.Context, psychologistID uuid.UUID, at time.Time) error {
	blocked, err := s.availability.FindBlockedCovering(ctx, psychologistID, at)
	if err != nil && !store.IsNotFound(err) {
		return fmt.Errorf("checking blocked time: %w", err)
	}
	if blocked != nil {
		return ErrSlotBlocked
	}

	taken, err := s.store.ExistsActiveAt(ctx, psychologistID, at)
	if err != nil {
		return fmt.Errorf("checking slot: %w", err)
	}
	if taken {
		return ErrSlotTaken
	}
	return nil
}

// Modify moves an appointment to a new time. The new slot goes through the
// same gauntlet as a fresh booking, and the appointment drops back to
// pending so the psychologist can re-confirm it.
func (s *service) Modify(ctx context.Context, id uuid.UUID, newDate time.Time) (*model.Appointment, error) {
	if newDate.IsZero() {
		return nil, ErrInvalidDate
	}

	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading appointment: %w", err)
	}
	if current.Status == model.StatusCancelled {
		return nil, ErrAlreadyCancelled
	}

	if err := s.checkSlot(ctx, current.PsychologistID, newDate); err != nil {
		return nil, err
	}

	updated, err := s.store.Reschedule(ctx, id, newDate.UTC())
	if err != nil {
		switch {
		case store.IsConflict(err):
			return nil, ErrSlotTaken
		case store.IsNotFound(err):
			// Lost a race with a concurrent cancellation.
			return nil, ErrAlreadyCancelled
		}
		return nil, fmt.Errorf("rescheduling appointment: %w", err)
	}
	return updated, nil
}

// Confirm moves a pending appointment to confirmed and links it into the
// participants' case. Confirming an appointment that is already confirmed
// re-runs the linkage, which is idempotent, so retried requests are safe.
func (s *service) Confirm(ctx context.Context, id uuid.UUID) (*model.Appointment, *model.Case, error) {
	a, err := s.store.Confirm(ctx, id)
	if err != nil {
		if !store.IsNotFound(err) {
			return nil, nil, fmt.Errorf("confirming appointment: %w", err)
		}
		a, err = s.store.GetByID(ctx, id)
		if err != nil {
			if store.IsNotFound(err) {
				return nil, nil, ErrNotFound
			}
			return nil, nil, fmt.Errorf("loading appointment: %w", err)
		}
		if a.Status != model.StatusConfirmed {
			return nil, nil, ErrAlreadyCancelled
		}
	}

	c, err := s.cases.LinkConfirmed(ctx, a)
	if err != nil {
		return nil, nil, fmt.Errorf("linking case: %w", err)
	}

	s.publisher.AppointmentConfirmed(a)
	return a, c, nil
}

func (s *service) Cancel(ctx context.Context, id uuid.UUID, reason *string) (*model.Appointment, error) {
	a, err := s.store.Cancel(ctx, id, reason)
	if err != nil {
		if !store.IsNotFound(err) {
			return nil, fmt.Errorf("cancelling appointment: %w", err)
		}
		if _, getErr := s.store.GetByID(ctx, id); getErr != nil {
			return nil, ErrNotFound
		}
		return nil, ErrAlreadyCancelled
	}

	s.publisher.AppointmentCancelled(a)
	return a, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Detail, error) {
	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading appointment: %w", err)
	}
	details, err := s.enrich(ctx, []*model.Appointment{a})
	if err != nil {
		return nil, err
	}
	return details[0], nil
}

func (s *service) List(ctx context.Context, req ListRequest) ([]*Detail, error) {
	appts, err := s.store.List(ctx, store.ListFilter{
		StudentID:      req.StudentID,
		PsychologistID: req.PsychologistID,
		Limit:          req.Limit,
		Offset:         req.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}
	return s.enrich(ctx, appts)
}

// enrich resolves participant names in one batch. Participants that no
// longer resolve leave their name empty rather than failing the listing.
func (s *service) enrich(ctx context.Context, appts []*model.Appointment) ([]*Detail, error) {
	ids := make([]uuid.UUID, 0, len(appts)*2)
	seen := make(map[uuid.UUID]struct{}, len(appts)*2)
	for _, a := range appts {
		for _, id := range []uuid.UUID{a.StudentID, a.PsychologistID} {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}

	var users map[uuid.UUID]*model.User
	if len(ids) > 0 && s.users != nil {
		var err error
		users, err = s.users.GetMany(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("resolving participants: %w", err)
		}
	}

	details := make([]*Detail, len(appts))
	for i, a := range appts {
		d := &Detail{Appointment: *a}
		if u, ok := users[a.StudentID]; ok {
			d.StudentName = u.DisplayName()
		}
		if u, ok := users[a.PsychologistID]; ok {
			d.PsychologistName = u.DisplayName()
		}
		details[i] = d
	}
	return details, nil
}

// FreeSlots returns the psychologist's declared availability within
// [from, to) with the hours held by active appointments punched out.
func (s *service) FreeSlots(ctx context.Context, psychologistID uuid.UUID, from, to time.Time) ([]FreeWindow, error) {
	if !to.After(from) {
		return nil, ErrInvalidRange
	}

	slots, err := s.availability.ListAvailableOverlapping(ctx, psychologistID, from, to)
	if err != nil {
		return nil, fmt.Errorf("listing availability: %w", err)
	}
	busy, err := s.store.ListActiveInRange(ctx, psychologistID, from, to)
	if err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}

	type span struct{ start, end time.Time }
	taken := make([]span, len(busy))
	for i, a := range busy {
		taken[i] = span{start: a.Date, end: a.End()}
	}
	sort.Slice(taken, func(i, j int) bool { return taken[i].start.Before(taken[j].start) })

	var free []FreeWindow
	for _, slot := range slots {
		start, end := slot.Start, slot.End
		if start.Before(from) {
			start = from
		}
		if end.After(to) {
			end = to
		}
		cursor := start
		for _, t := range taken {
			if !t.end.After(cursor) || !t.start.Before(end) {
				continue
			}
			if t.start.After(cursor) {
				free = append(free, FreeWindow{Start: cursor, End: t.start})
			}
			if t.end.After(cursor) {
				cursor = t.end
			}
		}
		if cursor.Before(end) {
			free = append(free, FreeWindow{Start: cursor, End: end})
		}
	}
	return free, nil
}
