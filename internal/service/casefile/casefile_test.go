package casefile

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/psyconnect/psyconnect_backend/internal/model"
	"github.com/psyconnect/psyconnect_backend/internal/store"
)

type fakeStore struct {
	cases map[uuid.UUID]*model.Case
}

func newFakeStore() *fakeStore {
	return &fakeStore{cases: make(map[uuid.UUID]*model.Case)}
}

func (f *fakeStore) Create(_ context.Context, c *model.Case) error {
	for _, existing := range f.cases {
		if !existing.Archived && existing.StudentID == c.StudentID && existing.PsychologistID == c.PsychologistID {
			return store.ErrConflict
		}
	}
	cp := *c
	f.cases[c.ID] = &cp
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*model.Case, error) {
	c, ok := f.cases[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *c
	cp.AppointmentIDs = append([]uuid.UUID(nil), c.AppointmentIDs...)
	return &cp, nil
}

func (f *fakeStore) FindActive(_ context.Context, studentID, psychologistID uuid.UUID) (*model.Case, error) {
	for id, c := range f.cases {
		if !c.Archived && c.StudentID == studentID && c.PsychologistID == psychologistID {
			return f.GetByID(context.Background(), id)
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) List(_ context.Context, filter store.CaseFilter) ([]*model.Case, error) {
	var out []*model.Case
	for id, c := range f.cases {
		if filter.StudentID != nil && c.StudentID != *filter.StudentID {
			continue
		}
		if filter.PsychologistID != nil && c.PsychologistID != *filter.PsychologistID {
			continue
		}
		if filter.Archived != nil && c.Archived != *filter.Archived {
			continue
		}
		cp, _ := f.GetByID(context.Background(), id)
		out = append(out, cp)
	}
	return out, nil
}

func (f *fakeStore) AdvanceStatus(_ context.Context, id uuid.UUID, next model.CaseStatus) error {
	c, ok := f.cases[id]
	if !ok || c.Archived || !c.Status.CanAdvanceTo(next) {
		return store.ErrNotFound
	}
	c.Status = next
	return nil
}

func (f *fakeStore) AppendAppointment(_ context.Context, caseID, appointmentID uuid.UUID) error {
	c, ok := f.cases[caseID]
	if !ok {
		return store.ErrNotFound
	}
	if !c.HasAppointment(appointmentID) {
		c.AppointmentIDs = append(c.AppointmentIDs, appointmentID)
	}
	return nil
}

func (f *fakeStore) SetNotes(_ context.Context, id uuid.UUID, notes *string) error {
	c, ok := f.cases[id]
	if !ok || c.Archived {
		return store.ErrNotFound
	}
	c.Notes = notes
	return nil
}

func (f *fakeStore) Archive(_ context.Context, id uuid.UUID) error {
	c, ok := f.cases[id]
	if !ok || c.Archived {
		return store.ErrNotFound
	}
	c.Archived = true
	return nil
}

func confirmed(studentID, psychologistID uuid.UUID) *model.Appointment {
	return &model.Appointment{
		ID:             uuid.New(),
		StudentID:      studentID,
		PsychologistID: psychologistID,
		Status:         model.StatusConfirmed,
		Priority:       model.PriorityEmergency,
	}
}

func TestLinkConfirmed(t *testing.T) {
	st := newFakeStore()
	svc := New(st, nil)
	student, psychologist := uuid.New(), uuid.New()

	a := confirmed(student, psychologist)
	c, err := svc.LinkConfirmed(context.Background(), a)
	if err != nil {
		t.Fatalf("LinkConfirmed() error = %v", err)
	}
	if c.Status != model.CaseInProgress {
		t.Errorf("case status = %s, want in_progress", c.Status)
	}
	if c.Priority != model.PriorityEmergency {
		t.Errorf("case priority = %s, want copied from appointment", c.Priority)
	}
	if !c.HasAppointment(a.ID) {
		t.Errorf("case does not reference appointment %s", a.ID)
	}

	// A second confirmed appointment between the same pair joins the same case.
	b := confirmed(student, psychologist)
	c2, err := svc.LinkConfirmed(context.Background(), b)
	if err != nil {
		t.Fatalf("LinkConfirmed() error = %v", err)
	}
	if c2.ID != c.ID {
		t.Errorf("second link opened new case %s, want %s", c2.ID, c.ID)
	}
	if len(c2.AppointmentIDs) != 2 {
		t.Errorf("case has %d appointments, want 2", len(c2.AppointmentIDs))
	}

	// Re-linking the same appointment changes nothing.
	c3, err := svc.LinkConfirmed(context.Background(), b)
	if err != nil {
		t.Fatalf("LinkConfirmed() retry error = %v", err)
	}
	if len(c3.AppointmentIDs) != 2 {
		t.Errorf("retried link duplicated ids: %v", c3.AppointmentIDs)
	}
}

func TestLinkRejectsUnconfirmed(t *testing.T) {
	svc := New(newFakeStore(), nil)
	a := confirmed(uuid.New(), uuid.New())
	a.Status = model.StatusPending

	if _, err := svc.LinkConfirmed(context.Background(), a); !errors.Is(err, ErrNotConfirmed) {
		t.Fatalf("LinkConfirmed() error = %v, want ErrNotConfirmed", err)
	}
}

func TestArchiveStartsNewLineage(t *testing.T) {
	st := newFakeStore()
	svc := New(st, nil)
	student, psychologist := uuid.New(), uuid.New()

	c, err := svc.LinkConfirmed(context.Background(), confirmed(student, psychologist))
	if err != nil {
		t.Fatalf("LinkConfirmed() error = %v", err)
	}
	if err := svc.Archive(context.Background(), c.ID); err != nil {
		t.Fatalf("Archive() error = %v", err)
	}
	if err := svc.Archive(context.Background(), c.ID); !errors.Is(err, ErrArchived) {
		t.Errorf("Archive() twice error = %v, want ErrArchived", err)
	}

	c2, err := svc.LinkConfirmed(context.Background(), confirmed(student, psychologist))
	if err != nil {
		t.Fatalf("LinkConfirmed() after archive error = %v", err)
	}
	if c2.ID == c.ID {
		t.Errorf("link after archive reused case %s, want a fresh one", c.ID)
	}
}

func TestResolve(t *testing.T) {
	st := newFakeStore()
	svc := New(st, nil)

	c, err := svc.LinkConfirmed(context.Background(), confirmed(uuid.New(), uuid.New()))
	if err != nil {
		t.Fatalf("LinkConfirmed() error = %v", err)
	}

	resolved, err := svc.Resolve(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if resolved.Status != model.CaseResolved {
		t.Errorf("Resolve() status = %s, want resolved", resolved.Status)
	}

	// Resolving again is a no-op success; the status cannot move forward
	// but it already is where the caller wants it.
	again, err := svc.Resolve(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("Resolve() twice error = %v", err)
	}
	if again.Status != model.CaseResolved {
		t.Errorf("Resolve() twice status = %s", again.Status)
	}

	if _, err := svc.Resolve(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve() unknown error = %v, want ErrNotFound", err)
	}
}

func TestNotesRoundTripEncrypted(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	st := newFakeStore()
	svc := New(st, key)

	c, err := svc.LinkConfirmed(context.Background(), confirmed(uuid.New(), uuid.New()))
	if err != nil {
		t.Fatalf("LinkConfirmed() error = %v", err)
	}

	notes := "weekly sessions, reassess in a month"
	updated, err := svc.UpdateNotes(context.Background(), c.ID, notes)
	if err != nil {
		t.Fatalf("UpdateNotes() error = %v", err)
	}
	if updated.Notes == nil || *updated.Notes != notes {
		t.Errorf("UpdateNotes() returned %v, want decrypted %q", updated.Notes, notes)
	}

	// What the store holds must not be the plaintext.
	raw := st.cases[c.ID].Notes
	if raw == nil || *raw == notes {
		t.Errorf("stored notes are not encrypted")
	}

	if err := svc.Archive(context.Background(), c.ID); err != nil {
		t.Fatalf("Archive() error = %v", err)
	}
	if _, err := svc.UpdateNotes(context.Background(), c.ID, "more"); !errors.Is(err, ErrArchived) {
		t.Errorf("UpdateNotes() on archived error = %v, want ErrArchived", err)
	}
}
