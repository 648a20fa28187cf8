package tenants

import (
	"errors"
	"fmt"

	"github.com/dalemusser/tenanthub/internal/app/system/retry"
)

// Error kinds. Use errors.Is against these; the concrete *Error carries
// a client-safe message.
var (
	ErrConflict           = errors.New("conflict")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
	ErrStoreUnavailable   = errors.New("store unavailable")
)

// Client-facing messages.
const (
	msgOrgExists        = "Organization already exists"
	msgNewOrgExists     = "New Organization name already exists"
	msgAdminExists      = "Admin email already registered"
	msgOrgNotFound      = "Organization not found"
	msgBadLogin         = "Incorrect email or password"
	msgBadToken         = "Could not validate credentials"
	msgForbiddenUpdate  = "Not authorized to modify this organization"
	msgForbiddenDelete  = "Not authorized to delete this organization"
	msgStoreUnavailable = "Service temporarily unavailable"
)

// Error is a classified lifecycle failure.
type Error struct {
	kind  error
	msg   string
	cause error
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}

func newError(kind error, msg string) error {
	return &Error{kind: kind, msg: msg}
}

func invalidInput(err error) error {
	return &Error{kind: ErrInvalidInput, msg: err.Error(), cause: err}
}

// storeError classifies an unexpected store failure. Transient ones
// (already retried once) become ErrStoreUnavailable.
func storeError(step string, err error) error {
	if retry.IsTransient(err) {
		return &Error{kind: ErrStoreUnavailable, msg: msgStoreUnavailable, cause: err}
	}
	return fmt.Errorf("%s: %w", step, err)
}
