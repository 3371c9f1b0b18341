package core

import (
	"errors"
	"fmt"
	"strings"
)

// Error ids reported to chart hosts.
const (
	UnknownFunctionErrorID = "unknownOTSCFunction"
	UnknownBuilderErrorID  = "unknownOTSCBuilder"
)

var (
	// ErrUnknownFunction is matched by every *UnknownFunctionError.
	ErrUnknownFunction = errors.New("unknown series function")

	// ErrUnknownBuilder is matched by every *UnknownBuilderError.
	ErrUnknownBuilder = errors.New("unknown series builder")
)

// UnknownFunctionError is returned when a chart definition calls a function
// that is not registered.
type UnknownFunctionError struct {
	FunctionName string
	Path         []string
}

func (e *UnknownFunctionError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("%s: %q", ErrUnknownFunction, e.FunctionName)
	}
	return fmt.Sprintf("%s: %q (in %s)", ErrUnknownFunction, e.FunctionName, strings.Join(e.Path, " > "))
}

// ID returns the error id.
func (e *UnknownFunctionError) ID() string { return UnknownFunctionErrorID }

// Unwrap makes errors.Is(err, ErrUnknownFunction) work.
func (e *UnknownFunctionError) Unwrap() error { return ErrUnknownFunction }

// UnknownBuilderError is returned when a chart definition uses an unregistered builder type.
type UnknownBuilderError struct {
	BuilderType string
}

func (e *UnknownBuilderError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownBuilder, e.BuilderType)
}

// ID returns the error id.
func (e *UnknownBuilderError) ID() string { return UnknownBuilderErrorID }

// Unwrap makes errors.Is(err, ErrUnknownBuilder) work.
func (e *UnknownBuilderError) Unwrap() error { return ErrUnknownBuilder }
