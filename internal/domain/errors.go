package domain

import (
	"errors"
	"fmt"
)

// Stable machine-readable error codes returned to capture devices. Offline
// clients branch on these to decide whether to retry, discard, or alert the
// operator, so they must never change.
const (
	CodeCardNotFound        = "CARD_NOT_FOUND"
	CodeBusNotFound         = "BUS_NOT_FOUND"
	CodeAlreadyTappedIn     = "ALREADY_TAPPED_IN"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeNoActiveJourney     = "NO_ACTIVE_JOURNEY"
	CodeSeatTaken           = "SEAT_TAKEN"
	CodeDuplicateEvent      = "DUPLICATE_EVENT"
	CodeBatchTooLarge       = "BATCH_TOO_LARGE"
)

type NotFoundError struct {
	Resource string
	Code     string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Code  string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

type ConflictError struct {
	Resource string
	Code     string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// InsufficientBalanceError is a precondition failure raised at tap-in so the
// rider is warned before starting a journey they cannot pay for.
type InsufficientBalanceError struct {
	Balance  string
	Required string
}

func (e InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: have %s, need %s", e.Balance, e.Required)
}

type UnauthorizedError struct {
	Msg string
}

func (e UnauthorizedError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "not authorized"
}

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsInsufficientBalance(err error) bool {
	var target InsufficientBalanceError
	return errors.As(err, &target)
}

func IsUnauthorized(err error) bool {
	var target UnauthorizedError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}

// ErrorCode extracts the stable code carried by a domain error, empty when
// the error has none.
func ErrorCode(err error) string {
	var nf NotFoundError
	if errors.As(err, &nf) {
		return nf.Code
	}
	var cf ConflictError
	if errors.As(err, &cf) {
		return cf.Code
	}
	var ve ValidationError
	if errors.As(err, &ve) {
		return ve.Code
	}
	if IsInsufficientBalance(err) {
		return CodeInsufficientBalance
	}
	return ""
}

// IsDuplicateEvent reports whether err is the conflict raised when an
// offline id has already been applied. Callers treat it as a replay, not a
// failure.
func IsDuplicateEvent(err error) bool {
	var cf ConflictError
	return errors.As(err, &cf) && cf.Code == CodeDuplicateEvent
}
