package model

import (
	"time"

	"github.com/google/uuid"
)

type CaseStatus string

const (
	CasePending    CaseStatus = "pending"
	CaseInProgress CaseStatus = "in_progress"
	CaseResolved   CaseStatus = "resolved"
)

func (s CaseStatus) Valid() bool {
	switch s {
	case CasePending, CaseInProgress, CaseResolved:
		return true
	}
	return false
}

// rank orders case statuses so transitions can be checked for forward motion.
func (s CaseStatus) rank() int {
	switch s {
	case CasePending:
		return 0
	case CaseInProgress:
		return 1
	case CaseResolved:
		return 2
	}
	return -1
}

// CanAdvanceTo reports whether moving to next is a forward transition.
// Case status never regresses.
func (s CaseStatus) CanAdvanceTo(next CaseStatus) bool {
	return next.Valid() && next.rank() > s.rank()
}

// Case is the longer-lived record tying one student and one psychologist
// across appointments. At most one non-archived case exists per
// (student, psychologist) pair; archiving starts a new lineage.
type Case struct {
	ID             uuid.UUID   `json:"id"`
	StudentID      uuid.UUID   `json:"student_id"`
	PsychologistID uuid.UUID   `json:"psychologist_id"`
	Status         CaseStatus  `json:"status"`
	Priority       Priority    `json:"priority"`
	Archived       bool        `json:"archived"`
	AppointmentIDs []uuid.UUID `json:"appointments"`
	Notes          *string     `json:"notes,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// HasAppointment reports whether id is already linked to the case.
func (c *Case) HasAppointment(id uuid.UUID) bool {
	for _, a := range c.AppointmentIDs {
		if a == id {
			return true
		}
	}
	return false
}
