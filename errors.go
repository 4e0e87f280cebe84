// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package doctree

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedDocument is reported when a backend cannot parse its input.
	// Errors returned by NewReader for parse failures match this value.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrRequiredValueNotPresent is reported by a required read when the
	// addressed node is missing, null, or has no usable value.
	ErrRequiredValueNotPresent = errors.New("required value not present")

	// ErrTooDeep is reported by a backend when its input nests more deeply
	// than its configured limit.
	ErrTooDeep = errors.New("maximum nesting depth exceeded")
)

// DefaultMaxDepth is the nesting limit used by backends whose options do not
// specify one.
const DefaultMaxDepth = 1000

// MalformedError is the concrete type of errors reported by NewReader when
// the backend could not parse its input.
type MalformedError struct {
	Format string // the name of the backend
	Err    error  // the error reported by the backend
}

// Error satisfies the error interface.
func (m *MalformedError) Error() string {
	return fmt.Sprintf("malformed %s document: %v", m.Format, m.Err)
}

// Unwrap supports error wrapping.
func (m *MalformedError) Unwrap() error { return m.Err }

// Is reports whether target is ErrMalformedDocument.
func (m *MalformedError) Is(target error) bool { return target == ErrMalformedDocument }

// PathError records an error and the document path at which it occurred.
type PathError struct {
	Path string
	Err  error
}

// Error satisfies the error interface.
func (p *PathError) Error() string { return fmt.Sprintf("at %s: %v", p.Path, p.Err) }

// Unwrap supports error wrapping.
func (p *PathError) Unwrap() error { return p.Err }

// TypeError is reported when a typed read finds a value that cannot be
// coerced to the requested type.
type TypeError struct {
	Path string // the path of the value
	Want string // the requested type
	Got  Kind   // the kind of the value found
}

// Error satisfies the error interface.
func (t *TypeError) Error() string {
	return fmt.Sprintf("at %s: cannot read %v as %s", t.Path, t.Got, t.Want)
}

// RangeError is reported when a numeric value does not fit the requested
// type. Values are never silently truncated.
type RangeError struct {
	Path  string // the path of the value
	Value Value  // the value found
	Type  string // the requested type
}

// Error satisfies the error interface.
func (r *RangeError) Error() string {
	return fmt.Sprintf("at %s: value %v out of range for %s", r.Path, r.Value, r.Type)
}

// ShapeError is reported by a Writer when a write conflicts with the shape
// already recorded at its node, for example writing a field into a list.
type ShapeError struct {
	Path    string
	Message string
}

// Error satisfies the error interface.
func (s *ShapeError) Error() string { return fmt.Sprintf("at %s: %s", s.Path, s.Message) }

func requiredError(n *Node) error {
	return &PathError{Path: n.Path(), Err: ErrRequiredValueNotPresent}
}
