package services

import (
	"errors"
	"fmt"

	"github.com/yukikurage/project-task-api/internal/logging"
	"gorm.io/gorm"
)

// Error kinds. Every error returned by this package unwraps to exactly one of
// these, so callers branch with errors.Is instead of reading messages.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrNotEligible     = errors.New("not eligible")
	ErrConflict        = errors.New("conflict")
	ErrStorage         = errors.New("storage error")
)

// kindError carries a specific message while unwrapping to its kind.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func newKindError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

var (
	ErrTaskIDRequired      = newKindError(ErrInvalidInput, "task id is required")
	ErrUserIDRequired      = newKindError(ErrInvalidInput, "user id is required")
	ErrProjectIDRequired   = newKindError(ErrInvalidInput, "project id is required")
	ErrTitleRequired       = newKindError(ErrInvalidInput, "title is required")
	ErrNameRequired        = newKindError(ErrInvalidInput, "project name is required")
	ErrDescriptionRequired = newKindError(ErrInvalidInput, "description is required")
	ErrInvalidPriority     = newKindError(ErrInvalidInput, "priority must be LOW, MEDIUM or HIGH")
	ErrInvalidStatus       = newKindError(ErrInvalidInput, "status must be TODO, IN_PROGRESS or DONE")
	ErrInvalidRole         = newKindError(ErrInvalidInput, "role must be USER or ADMIN")
	ErrInvalidDeadline     = newKindError(ErrInvalidInput, "deadline must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
	ErrTaskAlreadyDone     = newKindError(ErrInvalidInput, "a completed task cannot be reopened")
	ErrEmailRequired       = newKindError(ErrInvalidInput, "email is required")
	ErrPasswordTooShort    = newKindError(ErrInvalidInput, "password too short")

	ErrNotAuthenticated   = newKindError(ErrUnauthenticated, "authentication required")
	ErrInvalidCredentials = newKindError(ErrUnauthenticated, "invalid email or password")

	ErrTaskNotFound    = newKindError(ErrNotFound, "task not found")
	ErrProjectNotFound = newKindError(ErrNotFound, "project not found")
	ErrUserNotFound    = newKindError(ErrNotFound, "user not found")

	ErrAssigneeNotInProject = newKindError(ErrNotEligible, "user is not a member or admin of the task's project")

	ErrAlreadyAssigned = newKindError(ErrConflict, "user is already assigned to this task")
	ErrAlreadyMember   = newKindError(ErrConflict, "user is already a member of this project")
	ErrAlreadyAdmin    = newKindError(ErrConflict, "user is already an admin of this project")
	ErrEmailTaken      = newKindError(ErrConflict, "email already registered")
)

// forbidden names the rule that denied the action.
func forbidden(rule string) error {
	return newKindError(ErrForbidden, rule)
}

// StorageError wraps a persistence fault. Its message is safe to show; the
// cause is only logged.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s failed", e.Op)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// storageError logs err and wraps it under op.
func storageError(op string, err error) error {
	logging.Logger.WithError(err).WithField("op", op).Error("storage operation failed")
	return &StorageError{Op: op, Err: err}
}

// notFoundOr maps a missing record to notFound and anything else to a
// StorageError.
func notFoundOr(notFound error, op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return storageError(op, err)
}

// passThrough keeps errors this package already classified and wraps the
// rest as storage faults. It is used on errors returned from a transaction.
func passThrough(op string, err error) error {
	if err == nil {
		return nil
	}
	var kerr *kindError
	var serr *StorageError
	if errors.As(err, &kerr) || errors.As(err, &serr) {
		return err
	}
	return storageError(op, err)
}
