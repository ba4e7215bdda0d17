package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/psyconnect/psyconnect_backend/internal/model"
)

type CaseStore struct {
	pool *pgxpool.Pool
}

func NewCaseStore(pool *pgxpool.Pool) *CaseStore {
	return &CaseStore{pool: pool}
}

// caseColumns includes the linked appointment ids aggregated in link order.
const caseColumns = `
	c.id, c.student_id, c.psychologist_id, c.status, c.priority, c.archived,
	c.notes, c.created_at, c.updated_at,
	COALESCE(
		(SELECT array_agg(ca.appointment_id ORDER BY ca.linked_at)
		 FROM case_appointments ca WHERE ca.case_id = c.id),
		'{}'
	)`

func scanCase(row pgx.Row) (*model.Case, error) {
	var c model.Case
	err := row.Scan(
		&c.ID,
		&c.StudentID,
		&c.PsychologistID,
		&c.Status,
		&c.Priority,
		&c.Archived,
		&c.Notes,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.AppointmentIDs,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Create inserts a new active case. The partial unique index over
// non-archived (student_id, psychologist_id) rows surfaces a concurrent
// create as ErrConflict so linkage can re-read instead of duplicating.
func (s *CaseStore) Create(ctx context.Context, c *model.Case) error {
	query := `
		INSERT INTO cases (student_id, psychologist_id, status, priority, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := s.pool.QueryRow(
		ctx, query,
		c.StudentID,
		c.PsychologistID,
		c.Status,
		c.Priority,
		c.Notes,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("create case: %w", err)
	}

	return nil
}

func (s *CaseStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases c WHERE c.id = $1`

	c, err := scanCase(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get case: %w", err)
	}
	return c, nil
}

// FindActive returns the single non-archived case for the pair, or ErrNotFound.
func (s *CaseStore) FindActive(ctx context.Context, studentID, psychologistID uuid.UUID) (*model.Case, error) {
	query := `
		SELECT ` + caseColumns + `
		FROM cases c
		WHERE c.student_id = $1 AND c.psychologist_id = $2 AND NOT c.archived
	`

	c, err := scanCase(s.pool.QueryRow(ctx, query, studentID, psychologistID))
	if err != nil {
		if err == ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find active case: %w", err)
	}
	return c, nil
}

// CaseFilter narrows List results. Nil fields are ignored.
type CaseFilter struct {
	StudentID      *uuid.UUID
	PsychologistID *uuid.UUID
	Archived       *bool
	Limit          int
	Offset         int
}

func (s *CaseStore) List(ctx context.Context, f CaseFilter) ([]*model.Case, error) {
	var (
		conds []string
		args  []any
	)
	if f.StudentID != nil {
		args = append(args, *f.StudentID)
		conds = append(conds, "c.student_id = $"+strconv.Itoa(len(args)))
	}
	if f.PsychologistID != nil {
		args = append(args, *f.PsychologistID)
		conds = append(conds, "c.psychologist_id = $"+strconv.Itoa(len(args)))
	}
	if f.Archived != nil {
		args = append(args, *f.Archived)
		conds = append(conds, "c.archived = $"+strconv.Itoa(len(args)))
	}

	query := `SELECT ` + caseColumns + ` FROM cases c`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY c.created_at DESC"

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
		return nil, fmt.Errorf("list cases: %w", err)
	}
	defer rows.Close()

	var cases []*model.Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan case: %w", err)
		}
		cases = append(cases, c)
	}

	return cases, rows.Err()
}

// AdvanceStatus moves an active case's status forward. The WHERE clause only
// matches forward transitions, so a concurrent or repeated advance is a no-op
// rather than a regression.
func (s *CaseStore) AdvanceStatus(ctx context.Context, id uuid.UUID, next model.CaseStatus) error {
	query := `
		UPDATE cases
		SET status = $2, updated_at = now()
		WHERE id = $1
		  AND NOT archived
		  AND array_position(ARRAY['pending','in_progress','resolved'], status)
		    < array_position(ARRAY['pending','in_progress','resolved'], $2::text)
	`

	if _, err := s.pool.Exec(ctx, query, id, next); err != nil {
		return fmt.Errorf("advance case status: %w", err)
	}
	return nil
}

// AppendAppointment links an appointment to a case. ON CONFLICT keeps the
// append idempotent under retried confirms.
func (s *CaseStore) AppendAppointment(ctx context.Context, caseID, appointmentID uuid.UUID) error {
	query := `
		INSERT INTO case_appointments (case_id, appointment_id)
		VALUES ($1, $2)
		ON CONFLICT (case_id, appointment_id) DO NOTHING
	`

	if _, err := s.pool.Exec(ctx, query, caseID, appointmentID); err != nil {
		return fmt.Errorf("link appointment to case: %w", err)
	}
	return nil
}

// SetNotes replaces the case notes (already encrypted by the service layer).
func (s *CaseStore) SetNotes(ctx context.Context, id uuid.UUID, notes *string) error {
	query := `UPDATE cases SET notes = $2, updated_at = now() WHERE id = $1 AND NOT archived`

	result, err := s.pool.Exec(ctx, query, id, notes)
	if err != nil {
		return fmt.Errorf("set case notes: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Archive closes the active lineage for the case's pair. Archived cases are
// never matched by FindActive again.
func (s *CaseStore) Archive(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE cases SET archived = TRUE, updated_at = now() WHERE id = $1 AND NOT archived`

	result, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("archive case: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
