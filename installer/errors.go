package installer

import (
	"fmt"
	"strings"
)

// Code identifies the class of an installer failure
type Code int64

const (
	// CodeValidation is returned for malformed scripts
	CodeValidation Code = 1000
	// CodeScripting is returned when a script section has the wrong shape
	CodeScripting Code = 1001
	// CodeUnresolvedRequires is returned when the base game of a
	// `requires` script is not in the library
	CodeUnresolvedRequires Code = 1002
	// CodeAuthentication is returned when a provider needs a session we don't have
	CodeAuthentication Code = 2000
	// CodeDiscovery is returned when an executable could not be auto-detected
	CodeDiscovery Code = 3000
	// CodePersistence is returned when the config file or game record can't be written
	CodePersistence Code = 4000
)

var codeMessages = map[Code]string{
	CodeValidation:         "The install script is invalid.",
	CodeScripting:          "The install script has an invalid section.",
	CodeUnresolvedRequires: "The game this script requires is not installed.",
	CodeAuthentication:     "You are not authenticated to the service.",
	CodeDiscovery:          "No executable could be found for this game.",
	CodePersistence:        "The game could not be saved.",
}

func (code Code) String() string {
	if msg, ok := codeMessages[code]; ok {
		return msg
	}
	return fmt.Sprintf("installer error %d", code)
}

// Error is a classified installer failure. Data carries the
// faulty value, if any.
type Error struct {
	Code    Code
	Message string
	Data    interface{}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code.String()
	}
	return e.Message
}

type causer interface {
	Cause() error
}

// AsError digs through wrapped errors until it finds an *Error.
func AsError(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}

	if ie, ok := err.(*Error); ok {
		return ie, true
	}

	if se, ok := err.(causer); ok {
		return AsError(se.Cause())
	}

	return nil, false
}

// HasCode returns true if err is (or wraps) an *Error with that code
func HasCode(err error, code Code) bool {
	ie, ok := AsError(err)
	return ok && ie.Code == code
}

func validationError(findings []string) *Error {
	return &Error{
		Code:    CodeValidation,
		Message: fmt.Sprintf("invalid script: %s", strings.Join(findings, "; ")),
		Data:    findings,
	}
}

func scriptingError(message string, faulty interface{}) *Error {
	return &Error{
		Code:    CodeScripting,
		Message: fmt.Sprintf("%s: %v", message, faulty),
		Data:    faulty,
	}
}

func authenticationError(serviceID string) *Error {
	return &Error{
		Code:    CodeAuthentication,
		Message: fmt.Sprintf("You are not authenticated to %s", serviceID),
		Data:    serviceID,
	}
}

func discoveryError(targetPath string, cause error) *Error {
	msg := fmt.Sprintf("could not find an executable in %s", targetPath)
	if cause != nil {
		msg = fmt.Sprintf("%s: %s", msg, cause.Error())
	}
	return &Error{
		Code:    CodeDiscovery,
		Message: msg,
		Data:    targetPath,
	}
}

func persistenceError(what string, cause error) *Error {
	return &Error{
		Code:    CodePersistence,
		Message: fmt.Sprintf("%s: %s", what, cause.Error()),
		Data:    cause,
	}
}
