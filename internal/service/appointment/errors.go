package appointment

import "errors"

var (
	ErrNotFound         = errors.New("appointment not found")
	ErrSlotBlocked      = errors.New("psychologist has blocked this time")
	ErrSlotTaken        = errors.New("another appointment already occupies this time")
	ErrAlreadyCancelled = errors.New("appointment is already cancelled")
	ErrInvalidPriority  = errors.New("priority must be regular or emergency")
	ErrInvalidDate      = errors.New("appointment date is required")
	ErrInvalidID        = errors.New("student and psychologist ids are required")
	ErrInvalidRange     = errors.New("end must be after start")
)
