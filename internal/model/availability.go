package model

import (
	"time"

	"github.com/google/uuid"
)

type SlotStatus string

const (
	SlotAvailable SlotStatus = "available"
	SlotBlocked   SlotStatus = "blocked"
)

func (s SlotStatus) Valid() bool {
	return s == SlotAvailable || s == SlotBlocked
}

// AvailabilitySlot is a psychologist-declared time window. Slots are not
// deduplicated or merged; overlapping slots for the same psychologist may
// coexist. A blocked slot carries the reason it was blocked.
type AvailabilitySlot struct {
	ID             uuid.UUID  `json:"id"`
	PsychologistID uuid.UUID  `json:"psychologist_id"`
	Start          time.Time  `json:"start"`
	End            time.Time  `json:"end"`
	Status         SlotStatus `json:"status"`
	Reason         *string    `json:"reason,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Contains reports whether t falls inside [Start, End).
func (s *AvailabilitySlot) Contains(t time.Time) bool {
	return !t.Before(s.Start) && t.Before(s.End)
}

// Overlaps reports whether [from, to) intersects the slot window.
func (s *AvailabilitySlot) Overlaps(from, to time.Time) bool {
	return s.Start.Before(to) && from.Before(s.End)
}
