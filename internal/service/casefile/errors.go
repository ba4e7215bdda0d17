package casefile

import "errors"

var (
	ErrNotFound      = errors.New("case not found")
	ErrArchived      = errors.New("case is archived")
	ErrInvalidStatus = errors.New("case status can only move forward")
	ErrNotConfirmed  = errors.New("only confirmed appointments join a case")
)
