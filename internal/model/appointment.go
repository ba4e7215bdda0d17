package model

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentDuration is the fixed session length. An appointment occupies
// [Date, Date+AppointmentDuration) on the psychologist's calendar.
const AppointmentDuration = time.Hour

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the status change is legal.
// Cancelled is terminal; confirm is only reachable from pending; modify
// resets any non-cancelled appointment back to pending.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	if s == StatusCancelled {
		return false
	}
	switch next {
	case StatusPending:
		return true
	case StatusConfirmed:
		return s == StatusPending
	case StatusCancelled:
		return s == StatusPending || s == StatusConfirmed
	}
	return false
}

type Priority string

const (
	PriorityRegular   Priority = "regular"
	PriorityEmergency Priority = "emergency"
)

func (p Priority) Valid() bool {
	return p == PriorityRegular || p == PriorityEmergency
}

type Appointment struct {
	ID             uuid.UUID         `json:"id"`
	StudentID      uuid.UUID         `json:"student_id"`
	PsychologistID uuid.UUID         `json:"psychologist_id"`
	Date           time.Time         `json:"date"`
	Status         AppointmentStatus `json:"status"`
	Priority       Priority          `json:"priority"`
	CancelReason   *string           `json:"reason_for_cancellation,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// End returns the exclusive end of the occupied calendar window.
func (a *Appointment) End() time.Time {
	return a.Date.Add(AppointmentDuration)
}
