package workbench

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyQuery       = errors.New("query is empty")
	ErrEmptyMessage     = errors.New("message is empty")
	ErrEmptySelection   = errors.New("no cards selected")
	ErrNotReady         = errors.New("chat session already has messages")
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrMessageNotFound  = errors.New("message not found")
	ErrNotAnswer        = errors.New("message is not an answer")
	ErrCardNotFound     = errors.New("card not found")
	ErrPageOutOfRange   = errors.New("page out of range")
	ErrInvalidPageSize  = errors.New("invalid page size")
	ErrBusy             = errors.New("action already in progress")
	ErrValidation       = errors.New("validation failed")
)

// CollaboratorError wraps a failed call to the card API or the chat
// responder. State is left untouched when one is returned.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}
