// Package gameerr defines the recoverable error conditions raised by room and
// game operations. A gameerr.Error never terminates a connection; it is
// reported to the originating client only and leaves all state unchanged.
package gameerr

import (
	"errors"
	"fmt"
)

// Code classifies a recoverable failure.
type Code string

const (
	MalformedMessage     Code = "MalformedMessage"
	UnknownAction        Code = "UnknownAction"
	RoomNotFound         Code = "RoomNotFound"
	WrongGameTypeForRoom Code = "WrongGameTypeForRoom"
	UnknownPlayer        Code = "UnknownPlayer"
	NotYourTurn          Code = "NotYourTurn"
	IllegalMove          Code = "IllegalMove"
	RoomFull             Code = "RoomFull"
	MissingRequiredField Code = "MissingRequiredField"
)

// Error is a coded, client-visible failure.
type Error struct {
	Code    Code
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New creates an Error with a formatted message.
//
// Postcondition: Returns a non-nil *Error carrying code.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the Code of the first *Error in err's chain, or "" if none.
func CodeOf(err error) Code {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Code
	}
	return ""
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// MessageOf returns the client-facing message for err. Uncoded errors fall
// back to err.Error().
func MessageOf(err error) string {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Message
	}
	return err.Error()
}
