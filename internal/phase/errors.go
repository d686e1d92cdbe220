package phase

import (
	"fmt"
	"strings"
)

// NotFoundError reports a missing project, phase, or task.
type NotFoundError struct {
	Kind string // "project", "phase", or "task"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("phase: %s not found: %s", e.Kind, e.ID)
}

// ValidationError reports one or more blocking problems with a write.
// The write is aborted; Problems are human-readable and safe to surface.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "phase: validation failed: " + strings.Join(e.Problems, "; ")
}

func validationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Problems: []string{fmt.Sprintf(format, args...)}}
}
