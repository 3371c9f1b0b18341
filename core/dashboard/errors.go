package dashboard

import (
	"errors"
	"fmt"
)

// ErrInvalidSpec is returned (wrapped in *SpecError) for specs which cannot
// be turned into a model.
var ErrInvalidSpec = errors.New("invalid dashboard spec")

// ErrInvalidTree is returned for edits which would break the element tree,
// such as attaching an element below itself.
var ErrInvalidTree = errors.New("invalid dashboard tree edit")

// SpecError points at the part of a spec which could not be loaded.
type SpecError struct {
	Path   string
	Reason string
}

func (e *SpecError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidSpec, e.Reason)
	}
	return fmt.Sprintf("%s at %s: %s", ErrInvalidSpec, e.Path, e.Reason)
}

func (e *SpecError) Unwrap() error {
	return ErrInvalidSpec
}

func specErrorf(path, format string, args ...any) error {
	return &SpecError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

func indexPath(path, field string, i int) string {
	return fmt.Sprintf("%s.%s[%d]", path, field, i)
}
