// internal/app/teams/errors.go
package teams

import (
	"errors"
	"fmt"
)

// NotFoundError reports that a referenced document does not exist.
// Features surface it as 404.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %s does not exist", e.Resource, e.ID)
}

// ValidationError reports a violated business rule. Features surface
// it as 400; the caller must correct the input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// IntegrityError reports that a later step of a multi-step mutation
// failed after an earlier step committed. The engine has already run
// its compensating rollback; if the rollback itself failed, Rollback
// carries that error and the inconsistency needs manual reconciliation.
type IntegrityError struct {
	Op       string
	Err      error
	Rollback error
}

func (e *IntegrityError) Error() string {
	if e.Rollback != nil {
		return fmt.Sprintf("%s failed: %v (rollback also failed: %v)", e.Op, e.Err, e.Rollback)
	}
	return fmt.Sprintf("%s failed: %v (rolled back)", e.Op, e.Err)
}

func (e *IntegrityError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
