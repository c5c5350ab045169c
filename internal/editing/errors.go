package editing

import (
	"errors"
	"fmt"

	"github.com/debemdeboas/editorial/internal/model"
)

var (
	// ErrInvalidState matches every error raised because an action is not
	// possible in the editable's current state, including stale revisions.
	ErrInvalidState  = errors.New("action not possible")
	ErrStaleRevision = errors.New("revision is not the latest revision of the editable")

	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("not allowed")

	ErrServiceNotConnected     = errors.New("no editing service is connected")
	ErrServiceAlreadyConnected = errors.New("an editing service is already connected")
)

type InvalidStateError struct {
	Op     string
	State  model.EditableState
	Reason string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s not possible in state %s: %s", e.Op, e.State, e.Reason)
}

func (e *InvalidStateError) Is(target error) bool {
	return target == ErrInvalidState
}

type StaleRevisionError struct {
	Op     string
	Given  model.RevisionID
	Latest model.RevisionID
}

func (e *StaleRevisionError) Error() string {
	return fmt.Sprintf("%s: revision %s is not the latest revision (%s)", e.Op, e.Given, e.Latest)
}

func (e *StaleRevisionError) Is(target error) bool {
	return target == ErrStaleRevision || target == ErrInvalidState
}

type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalidInput(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
