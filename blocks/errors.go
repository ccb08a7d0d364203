package blocks

import (
	"errors"
	"fmt"
)

// common errors
var (
	ErrInvalidBlockNumber = errors.New("invalid block number, must be greater than 0")
	ErrMissingCloseTime   = errors.New("ledger header has no close time")
	ErrUnknownDuplicate   = errors.New("not well known transaction duplicate is detected")
	ErrRetryRequired      = errors.New("node didn't return last validated ledger, retry required")
)

// ValidationError request argument is invalid, never retried
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on '%v': %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IntegrationError node or ledger data failure, the caller should retry the whole operation
type IntegrationError struct {
	Op  string
	Err error
}

func (e *IntegrationError) Error() string {
	return fmt.Sprintf("%v: %v", e.Op, e.Err)
}

func (e *IntegrationError) Unwrap() error {
	return e.Err
}

func integrationError(op string, err error) error {
	return &IntegrationError{Op: op, Err: err}
}

// IsValidationError is validation error
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// IsIntegrationError is integration error
func IsIntegrationError(err error) bool {
	var ierr *IntegrationError
	return errors.As(err, &ierr)
}

// IsRetryRequired consensus state is not available yet
func IsRetryRequired(err error) bool {
	return errors.Is(err, ErrRetryRequired)
}
