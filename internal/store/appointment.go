package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/psyconnect/psyconnect_backend/internal/model"
)

type AppointmentStore struct {
	pool *pgxpool.Pool
}

func NewAppointmentStore(pool *pgxpool.Pool) *AppointmentStore {
	return &AppointmentStore{pool: pool}
}

const appointmentColumns = `id, student_id, psychologist_id, date, status, priority, cancel_reason, created_at, updated_at`

func scanAppointment(row pgx.Row) (*model.Appointment, error) {
	var a model.Appointment
	err := row.Scan(
		&a.ID,
		&a.StudentID,
		&a.PsychologistID,
		&a.Date,
		&a.Status,
		&a.Priority,
		&a.CancelReason,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// Create inserts a new appointment. The partial unique index on
// (psychologist_id, date) over non-cancelled rows makes the insert the
// authoritative conflict check: a concurrent booking of the same instant
// surfaces here as ErrConflict, never as a double booking.
func (s *AppointmentStore) Create(ctx context.Context, a *model.Appointment) error {
	query := `
		INSERT INTO appointments (student_id, psychologist_id, date, status, priority)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := s.pool.QueryRow(
		ctx, query,
		a.StudentID,
		a.PsychologistID,
		a.Date,
		a.Status,
		a.Priority,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("create appointment: %w", err)
	}

	return nil
}

func (s *AppointmentStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	a, err := scanAppointment(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get appointment by id: %w", err)
	}
	return a, nil
}

// ListFilter narrows List results. Nil fields are ignored.
type ListFilter struct {
	StudentID      *uuid.UUID
	PsychologistID *uuid.UUID
	Limit          int
	Offset         int
}

func (s *AppointmentStore) List(ctx context.Context, f ListFilter) ([]*model.Appointment, error) {
	var (
		conds []string
		args  []any
	)
	if f.StudentID != nil {
		args = append(args, *f.StudentID)
		conds = append(conds, "student_id = $"+strconv.Itoa(len(args)))
	}
	if f.PsychologistID != nil {
		args = append(args, *f.PsychologistID)
		conds = append(conds, "psychologist_id = $"+strconv.Itoa(len(args)))
	}

	query := `SELECT ` + appointmentColumns + ` FROM appointments`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY date DESC"

	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += " OFFSET $" + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	var appts []*model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appts = append(appts, a)
	}

	return appts, rows.Err()
}

// ExistsActiveAt reports whether a non-cancelled appointment occupies the
// exact instant. Used for the friendly pre-check; Create remains the
// race-proof authority.
func (s *AppointmentStore) ExistsActiveAt(ctx context.Context, psychologistID uuid.UUID, date time.Time) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM appointments
			WHERE psychologist_id = $1 AND date = $2 AND status <> 'cancelled'
		)
	`

	var exists bool
	if err := s.pool.QueryRow(ctx, query, psychologistID, date).Scan(&exists); err != nil {
		return false, fmt.Errorf("check active appointment: %w", err)
	}
	return exists, nil
}

// ListActiveInRange returns non-cancelled appointments whose occupied hour
// intersects [from, to), ordered by date.
func (s *AppointmentStore) ListActiveInRange(ctx context.Context, psychologistID uuid.UUID, from, to time.Time) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE psychologist_id = $1
		  AND status <> 'cancelled'
		  AND date < $3
		  AND date + interval '1 hour' > $2
		ORDER BY date
	`

	rows, err := s.pool.Query(ctx, query, psychologistID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list active appointments: %w", err)
	}
	defer rows.Close()

	var appts []*model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appts = append(appts, a)
	}

	return appts, rows.Err()
}

// Reschedule moves a non-cancelled appointment to a new instant and resets it
// to pending, in one conditional write. Returns ErrNotFound when the row is
// missing or already cancelled, ErrConflict when the target instant is taken.
func (s *AppointmentStore) Reschedule(ctx context.Context, id uuid.UUID, date time.Time) (*model.Appointment, error) {
	query := `
		UPDATE appointments
		SET date = $2, status = 'pending', updated_at = now()
		WHERE id = $1 AND status <> 'cancelled'
		RETURNING ` + appointmentColumns

	a, err := scanAppointment(s.pool.QueryRow(ctx, query, id, date))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		if err == ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reschedule appointment: %w", err)
	}
	return a, nil
}

// Confirm transitions pending → confirmed. Returns ErrNotFound when no
// pending row matches; the caller distinguishes missing from wrong-state.
func (s *AppointmentStore) Confirm(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		UPDATE appointments
		SET status = 'confirmed', updated_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + appointmentColumns

	a, err := scanAppointment(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("confirm appointment: %w", err)
	}
	return a, nil
}

// Cancel transitions any non-cancelled appointment to cancelled, recording
// the reason. Cancelled rows are untouched, keeping the operation idempotent.
func (s *AppointmentStore) Cancel(ctx context.Context, id uuid.UUID, reason *string) (*model.Appointment, error) {
	query := `
		UPDATE appointments
		SET status = 'cancelled', cancel_reason = $2, updated_at = now()
		WHERE id = $1 AND status <> 'cancelled'
		RETURNING ` + appointmentColumns

	a, err := scanAppointment(s.pool.QueryRow(ctx, query, id, reason))
	if err != nil {
		if err == ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("cancel appointment: %w", err)
	}
	return a, nil
}
