// internal/game/errors.go
package game

import (
	"errors"
	"fmt"
)

// ReasonCode identifies why a submission was rejected. Codes are stable and
// safe to forward to clients.
type ReasonCode string

const (
	CodeGameAlreadyOver       ReasonCode = "GameAlreadyOver"
	CodeNotYourTurn           ReasonCode = "NotYourTurn"
	CodeNotYourResponse       ReasonCode = "NotYourResponse"
	CodeActionBudgetExhausted ReasonCode = "ActionBudgetExhausted"
	CodeMalformedPayload      ReasonCode = "MalformedPayload"
	CodeInvalidPlacement      ReasonCode = "InvalidPlacement"
	CodeNotFound              ReasonCode = "NotFound"
	CodeNoSuchSet             ReasonCode = "NoSuchSet"
	CodeNotEligible           ReasonCode = "NotEligible"
	CodeAlreadyPending        ReasonCode = "AlreadyPending"
	CodeNoCounterAvailable    ReasonCode = "NoCounterAvailable"
)

// ValidationError rejects a single submission and leaves game state
// untouched. It is always recoverable; the client may correct and resubmit.
type ValidationError struct {
	Code   ReasonCode
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Reason)
}

func validationf(code ReasonCode, format string, args ...interface{}) error {
	return &ValidationError{Code: code, Reason: fmt.Sprintf(format, args...)}
}

// IntegrityError marks a corrupted reference (unknown card id, card missing
// from the set that is supposed to hold it). The submission is rejected and
// prior state stays authoritative; the condition indicates a bug, not a bad
// client request.
type IntegrityError struct {
	Reason string
}

func (e *IntegrityError) Error() string {
	return "integrity: " + e.Reason
}

func integrityf(format string, args ...interface{}) error {
	return &IntegrityError{Reason: fmt.Sprintf(format, args...)}
}

// AsValidation unwraps err as a ValidationError, if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}

// IsIntegrity reports whether err is an IntegrityError.
func IsIntegrity(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie)
}
