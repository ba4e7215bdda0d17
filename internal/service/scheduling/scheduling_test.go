package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/psyconnect/psyconnect_backend/internal/model"
	"github.com/psyconnect/psyconnect_backend/internal/store"
)

type fakeStore struct {
	slots map[uuid.UUID]*model.AvailabilitySlot
}

func newFakeStore() *fakeStore {
	return &fakeStore{slots: make(map[uuid.UUID]*model.AvailabilitySlot)}
}

func (f *fakeStore) Create(_ context.Context, s *model.AvailabilitySlot) error {
	cp := *s
	f.slots[s.ID] = &cp
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*model.AvailabilitySlot, error) {
	s, ok := f.slots[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStore) ListByPsychologist(_ context.Context, psychologistID uuid.UUID, from, to *time.Time) ([]*model.AvailabilitySlot, error) {
	var out []*model.AvailabilitySlot
	for _, s := range f.slots {
		if s.PsychologistID != psychologistID {
			continue
		}
		if from != nil && to != nil && !s.Overlaps(*from, *to) {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeStore) Update(_ context.Context, s *model.AvailabilitySlot) error {
	if _, ok := f.slots[s.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *s
	f.slots[s.ID] = &cp
	return nil
}

func (f *fakeStore) Delete(_ context.Context, psychologistID, id uuid.UUID) error {
	s, ok := f.slots[id]
	if !ok || s.PsychologistID != psychologistID {
		return store.ErrNotFound
	}
	delete(f.slots, id)
	return nil
}

func TestAddSlot(t *testing.T) {
	psychologist := uuid.New()
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	reason := "conference"

	tests := []struct {
		name    string
		req     SlotRequest
		wantErr error
	}{
		{
			name: "open slot",
			req:  SlotRequest{Start: start, End: start.Add(4 * time.Hour)},
		},
		{
			name: "blocked slot with reason",
			req:  SlotRequest{Start: start.Add(24 * time.Hour), End: start.Add(28 * time.Hour), Status: model.SlotBlocked, Reason: &reason},
		},
		{
			name:    "blocked slot without reason",
			req:     SlotRequest{Start: start, End: start.Add(time.Hour), Status: model.SlotBlocked},
			wantErr: ErrReasonRequired,
		},
		{
			name:    "end before start",
			req:     SlotRequest{Start: start, End: start.Add(-time.Hour)},
			wantErr: ErrInvalidRange,
		},
		{
			name:    "zero start",
			req:     SlotRequest{End: start},
			wantErr: ErrInvalidRange,
		},
		{
			name:    "unknown status",
			req:     SlotRequest{Start: start, End: start.Add(time.Hour), Status: "busy"},
			wantErr: ErrInvalidStatus,
		},
	}

	svc := New(newFakeStore())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot, err := svc.AddSlot(context.Background(), psychologist, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("AddSlot() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && slot.Status == "" {
				t.Errorf("AddSlot() left status empty")
			}
		})
	}
}

func TestUpdateSlot(t *testing.T) {
	st := newFakeStore()
	svc := New(st)
	psychologist := uuid.New()
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	slot, err := svc.AddSlot(context.Background(), psychologist, SlotRequest{Start: start, End: start.Add(4 * time.Hour)})
	if err != nil {
		t.Fatalf("AddSlot() error = %v", err)
	}

	reason := "emergency leave"
	updated, err := svc.UpdateSlot(context.Background(), psychologist, slot.ID, SlotRequest{Status: model.SlotBlocked, Reason: &reason})
	if err != nil {
		t.Fatalf("UpdateSlot() error = %v", err)
	}
	if updated.Status != model.SlotBlocked || updated.Reason == nil || *updated.Reason != reason {
		t.Errorf("UpdateSlot() = %+v, want blocked with reason", updated)
	}

	// Reverting to available drops the stale reason.
	updated, err = svc.UpdateSlot(context.Background(), psychologist, slot.ID, SlotRequest{Status: model.SlotAvailable})
	if err != nil {
		t.Fatalf("UpdateSlot() error = %v", err)
	}
	if updated.Reason != nil {
		t.Errorf("UpdateSlot() kept reason %q on available slot", *updated.Reason)
	}

	if _, err := svc.UpdateSlot(context.Background(), uuid.New(), slot.ID, SlotRequest{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateSlot() by wrong psychologist error = %v, want ErrNotFound", err)
	}
	if _, err := svc.UpdateSlot(context.Background(), psychologist, uuid.New(), SlotRequest{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateSlot() unknown slot error = %v, want ErrNotFound", err)
	}
}

func TestDeleteSlot(t *testing.T) {
	st := newFakeStore()
	svc := New(st)
	psychologist := uuid.New()
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	slot, err := svc.AddSlot(context.Background(), psychologist, SlotRequest{Start: start, End: start.Add(time.Hour)})
	if err != nil {
		t.Fatalf("AddSlot() error = %v", err)
	}

	if err := svc.DeleteSlot(context.Background(), uuid.New(), slot.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteSlot() by wrong psychologist error = %v, want ErrNotFound", err)
	}
	if err := svc.DeleteSlot(context.Background(), psychologist, slot.ID); err != nil {
		t.Fatalf("DeleteSlot() error = %v", err)
	}
	if err := svc.DeleteSlot(context.Background(), psychologist, slot.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteSlot() twice error = %v, want ErrNotFound", err)
	}
}

func TestListSlots(t *testing.T) {
	st := newFakeStore()
	svc := New(st)
	psychologist := uuid.New()
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	if _, err := svc.AddSlot(context.Background(), psychologist, SlotRequest{Start: start, End: start.Add(time.Hour)}); err != nil {
		t.Fatalf("AddSlot() error = %v", err)
	}

	from, to := start.Add(-time.Hour), start.Add(2*time.Hour)
	slots, err := svc.ListSlots(context.Background(), psychologist, &from, &to)
	if err != nil {
		t.Fatalf("ListSlots() error = %v", err)
	}
	if len(slots) != 1 {
		t.Errorf("ListSlots() = %d slots, want 1", len(slots))
	}

	if _, err := svc.ListSlots(context.Background(), psychologist, &to, &from); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("ListSlots() inverted range error = %v, want ErrInvalidRange", err)
	}
}
