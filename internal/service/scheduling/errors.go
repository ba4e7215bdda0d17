package scheduling

import "errors"

var (
	ErrNotFound       = errors.New("availability slot not found")
	ErrInvalidRange   = errors.New("end must be after start")
	ErrInvalidStatus  = errors.New("status must be available or blocked")
	ErrReasonRequired = errors.New("blocked slots require a reason")
)
