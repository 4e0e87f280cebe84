// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package doctree

// A Format is a wire-format backend. It converts between encoded bytes and
// document values. A Format must be safe for concurrent use.
type Format interface {
	// Name reports a short name for the format, such as "json".
	Name() string

	// Parse decodes data as a single document. Empty input (for text formats,
	// input containing only whitespace) yields Null. Input nested more deeply
	// than the backend permits reports an error matching ErrTooDeep.
	Parse(data []byte) (Value, error)

	// Serialize encodes v as a document. A nil v yields an empty document.
	// Serialize fails only if v contains a value the format cannot express.
	Serialize(v Value) ([]byte, error)
}
