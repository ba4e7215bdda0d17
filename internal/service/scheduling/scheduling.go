// Package scheduling manages the availability windows a psychologist
// publishes. A window is either open for booking or blocked with a reason;
// blocked windows always win over open ones when they overlap.
package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/psyconnect/psyconnect_backend/internal/model"
	"github.com/psyconnect/psyconnect_backend/internal/store"
)

// Store is the slice of availability persistence this service needs.
type Store interface {
	Create(ctx context.Context, s *model.AvailabilitySlot) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.AvailabilitySlot, error)
	ListByPsychologist(ctx context.Context, psychologistID uuid.UUID, from, to *time.Time) ([]*model.AvailabilitySlot, error)
	Update(ctx context.Context, s *model.AvailabilitySlot) error
	Delete(ctx context.Context, psychologistID, id uuid.UUID) error
}

type SlotRequest struct {
	Start  time.Time        `json:"start"`
	End    time.Time        `json:"end"`
	Status model.SlotStatus `json:"status"`
	Reason *string          `json:"reason,omitempty"`
}

type Service interface {
	AddSlot(ctx context.Context, psychologistID uuid.UUID, req SlotRequest) (*model.AvailabilitySlot, error)
	ListSlots(ctx context.Context, psychologistID uuid.UUID, from, to *time.Time) ([]*model.AvailabilitySlot, error)
	UpdateSlot(ctx context.Context, psychologistID, slotID uuid.UUID, req SlotRequest) (*model.AvailabilitySlot, error)
	DeleteSlot(ctx context.Context, psychologistID, slotID uuid.UUID) error
}

type service struct {
	store Store
}

func New(st Store) Service {
	return &service{store: st}
}

func validate(req SlotRequest) error {
	if req.Start.IsZero() || req.End.IsZero() || !req.End.After(req.Start) {
		return ErrInvalidRange
	}
	if !req.Status.Valid() {
		return ErrInvalidStatus
	}
	if req.Status == model.SlotBlocked && (req.Reason == nil || *req.Reason == "") {
		return ErrReasonRequired
	}
	return nil
}

func (s *service) AddSlot(ctx context.Context, psychologistID uuid.UUID, req SlotRequest) (*model.AvailabilitySlot, error) {
	if req.Status == "" {
		req.Status = model.SlotAvailable
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	slot := &model.AvailabilitySlot{
		ID:             uuid.New(),
		PsychologistID: psychologistID,
		Start:          req.Start.UTC(),
		End:            req.End.UTC(),
		Status:         req.Status,
		Reason:         req.Reason,
	}
	if slot.Status == model.SlotAvailable {
		slot.Reason = nil
	}
	if err := s.store.Create(ctx, slot); err != nil {
		return nil, fmt.Errorf("creating availability slot: %w", err)
	}
	return slot, nil
}

func (s *service) ListSlots(ctx context.Context, psychologistID uuid.UUID, from, to *time.Time) ([]*model.AvailabilitySlot, error) {
	if from != nil && to != nil && !to.After(*from) {
		return nil, ErrInvalidRange
	}
	slots, err := s.store.ListByPsychologist(ctx, psychologistID, from, to)
	if err != nil {
		return nil, fmt.Errorf("listing availability slots: %w", err)
	}
	return slots, nil
}

func (s *service) UpdateSlot(ctx context.Context, psychologistID, slotID uuid.UUID, req SlotRequest) (*model.AvailabilitySlot, error) {
	slot, err := s.store.GetByID(ctx, slotID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading availability slot: %w", err)
	}
	if slot.PsychologistID != psychologistID {
		return nil, ErrNotFound
	}

	if !req.Start.IsZero() {
		slot.Start = req.Start.UTC()
	}
	if !req.End.IsZero() {
		slot.End = req.End.UTC()
	}
	if req.Status != "" {
		slot.Status = req.Status
	}
	if req.Reason != nil {
		slot.Reason = req.Reason
	}
	if slot.Status == model.SlotAvailable {
		slot.Reason = nil
	}
	if err := validate(SlotRequest{Start: slot.Start, End: slot.End, Status: slot.Status, Reason: slot.Reason}); err != nil {
		return nil, err
	}

	if err := s.store.Update(ctx, slot); err != nil {
		if store.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("updating availability slot: %w", err)
	}
	return slot, nil
}

func (s *service) DeleteSlot(ctx context.Context, psychologistID, slotID uuid.UUID) error {
	if err := s.store.Delete(ctx, psychologistID, slotID); err != nil {
		if store.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("deleting availability slot: %w", err)
	}
	return nil
}
