// Package casefile tracks the longer-lived record between a student and a
// psychologist. Confirming an appointment folds it into the pair's active
// case, opening one when none exists; notes are encrypted at rest.
package casefile

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/psyconnect/psyconnect_backend/internal/model"
	"github.com/psyconnect/psyconnect_backend/internal/store"
	"github.com/psyconnect/psyconnect_backend/pkg/crypto"
)

// Store is the slice of case persistence this service needs.
type Store interface {
	Create(ctx context.Context, c *model.Case) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Case, error)
	FindActive(ctx context.Context, studentID, psychologistID uuid.UUID) (*model.Case, error)
	List(ctx context.Context, f store.CaseFilter) ([]*model.Case, error)
	AdvanceStatus(ctx context.Context, id uuid.UUID, next model.CaseStatus) error
	AppendAppointment(ctx context.Context, caseID, appointmentID uuid.UUID) error
	SetNotes(ctx context.Context, id uuid.UUID, notes *string) error
	Archive(ctx context.Context, id uuid.UUID) error
}

type ListRequest struct {
	StudentID      *uuid.UUID
	PsychologistID *uuid.UUID
	Archived       *bool
	Limit          int
	Offset         int
}

type Service interface {
	LinkConfirmed(ctx context.Context, a *model.Appointment) (*model.Case, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Case, error)
	List(ctx context.Context, req ListRequest) ([]*model.Case, error)
	UpdateNotes(ctx context.Context, id uuid.UUID, notes string) (*model.Case, error)
	Resolve(ctx context.Context, id uuid.UUID) (*model.Case, error)
	Archive(ctx context.Context, id uuid.UUID) error
}

type service struct {
	store    Store
	notesKey []byte
}

// New builds the case service. notesKey is the 32-byte AES key protecting
// case notes; pass nil to store notes in the clear (development only).
func New(st Store, notesKey []byte) Service {
	return &service{store: st, notesKey: notesKey}
}

// LinkConfirmed attaches a confirmed appointment to the pair's active case.
// The whole flow is idempotent: re-linking the same appointment changes
// nothing, and losing the creation race to a concurrent confirmation simply
// adopts the winner's case.
func (s *service) LinkConfirmed(ctx context.Context, a *model.Appointment) (*model.Case, error) {
	if a.Status != model.StatusConfirmed {
		return nil, ErrNotConfirmed
	}

	c, err := s.store.FindActive(ctx, a.StudentID, a.PsychologistID)
	if err != nil {
		if !store.IsNotFound(err) {
			return nil, fmt.Errorf("finding active case: %w", err)
		}
		c = &model.Case{
			ID:             uuid.New(),
			StudentID:      a.StudentID,
			PsychologistID: a.PsychologistID,
			Status:         model.CasePending,
			Priority:       a.Priority,
		}
		if err := s.store.Create(ctx, c); err != nil {
			if !store.IsConflict(err) {
				return nil, fmt.Errorf("creating case: %w", err)
			}
			c, err = s.store.FindActive(ctx, a.StudentID, a.PsychologistID)
			if err != nil {
				return nil, fmt.Errorf("finding active case: %w", err)
			}
		}
	}

	if c.Status == model.CasePending {
		if err := s.store.AdvanceStatus(ctx, c.ID, model.CaseInProgress); err != nil && !store.IsNotFound(err) {
			return nil, fmt.Errorf("advancing case: %w", err)
		}
	}
	if err := s.store.AppendAppointment(ctx, c.ID, a.ID); err != nil {
		return nil, fmt.Errorf("linking appointment: %w", err)
	}

	c, err = s.store.GetByID(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("reloading case: %w", err)
	}
	return s.reveal(c)
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*model.Case, error) {
	c, err := s.store.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading case: %w", err)
	}
	return s.reveal(c)
}

func (s *service) List(ctx context.Context, req ListRequest) ([]*model.Case, error) {
	cases, err := s.store.List(ctx, store.CaseFilter{
		StudentID:      req.StudentID,
		PsychologistID: req.PsychologistID,
		Archived:       req.Archived,
		Limit:          req.Limit,
		Offset:         req.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("listing cases: %w", err)
	}
	for i, c := range cases {
		if cases[i], err = s.reveal(c); err != nil {
			return nil, err
		}
	}
	return cases, nil
}

func (s *service) UpdateNotes(ctx context.Context, id uuid.UUID, notes string) (*model.Case, error) {
	stored := &notes
	if s.notesKey != nil && notes != "" {
		sealed, err := crypto.Encrypt(s.notesKey, notes)
		if err != nil {
			return nil, fmt.Errorf("encrypting notes: %w", err)
		}
		stored = &sealed
	}
	if notes == "" {
		stored = nil
	}

	if err := s.store.SetNotes(ctx, id, stored); err != nil {
		if store.IsNotFound(err) {
			return nil, s.notFoundOrArchived(ctx, id)
		}
		return nil, fmt.Errorf("updating notes: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *service) Resolve(ctx context.Context, id uuid.UUID) (*model.Case, error) {
	if err := s.store.AdvanceStatus(ctx, id, model.CaseResolved); err != nil {
		if store.IsNotFound(err) {
			c, getErr := s.store.GetByID(ctx, id)
			if getErr != nil {
				return nil, ErrNotFound
			}
			if c.Status == model.CaseResolved {
				return s.reveal(c)
			}
			return nil, ErrInvalidStatus
		}
		return nil, fmt.Errorf("resolving case: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *service) Archive(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Archive(ctx, id); err != nil {
		if store.IsNotFound(err) {
			return s.notFoundOrArchived(ctx, id)
		}
		return fmt.Errorf("archiving case: %w", err)
	}
	return nil
}

// notFoundOrArchived disambiguates a conditional update that matched no
// rows: the case is either gone or already archived.
func (s *service) notFoundOrArchived(ctx context.Context, id uuid.UUID) error {
	c, err := s.store.GetByID(ctx, id)
	if err != nil {
		return ErrNotFound
	}
	if c.Archived {
		return ErrArchived
	}
	return ErrNotFound
}

// reveal decrypts the notes field in place before handing the case out.
func (s *service) reveal(c *model.Case) (*model.Case, error) {
	if c.Notes == nil || s.notesKey == nil {
		return c, nil
	}
	plain, err := crypto.Decrypt(s.notesKey, *c.Notes)
	if err != nil {
		return nil, fmt.Errorf("decrypting notes: %w", err)
	}
	c.Notes = &plain
	return c, nil
}
